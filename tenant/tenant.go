package tenant

// SentinelID is the historical placeholder tenant id used before any real
// artist tenant existed. Rows parked under it are considered unassigned and
// are the target of repair remaps.
const SentinelID = "default"

// Resolve returns the effective tenant id for a request.
// Resolution order: explicit id, then the configured main tenant id, then
// the sentinel. Pure function; callers thread the main tenant id in rather
// than reading it from process state.
func Resolve(explicitID, mainTenantID string) string {
	if explicitID != "" {
		return explicitID
	}
	if mainTenantID != "" {
		return mainTenantID
	}
	return SentinelID
}

// IsSentinel reports whether id is the reserved placeholder tenant.
func IsSentinel(id string) bool {
	return id == SentinelID
}
