// Package repair implements the operator-invoked consistency operations:
// per-tenant audits, bulk tenant remaps, and direct settings corrections.
// Every operation is independent; none runs on a schedule, and none mutates
// data beyond what the operator explicitly asked for.
package repair

import (
	"database/sql"
	"fmt"

	"github.com/camden-git/gallerybackend/database"
	"github.com/camden-git/gallerybackend/metrics"
	"github.com/camden-git/gallerybackend/repository"
	"github.com/camden-git/gallerybackend/tenant"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Runner executes repair operations against the repositories and, for the
// read-only probes, straight against the store.
type Runner struct {
	Settings repository.SettingsRepositoryInterface
	Artworks repository.ArtworkRepositoryInterface
	SQLDB    *sql.DB
	Logger   *zap.Logger
}

// NewRunner creates a Runner. The logger must not be nil; repairs have no
// undo, so their before/after trail is the only record of what happened.
func NewRunner(settings repository.SettingsRepositoryInterface, artworks repository.ArtworkRepositoryInterface, sqlDB *sql.DB, logger *zap.Logger) *Runner {
	return &Runner{Settings: settings, Artworks: artworks, SQLDB: sqlDB, Logger: logger}
}

func newRunID() string {
	return uuid.NewString()
}

// AuditReport is the outcome of a counts-by-tenant audit.
type AuditReport struct {
	RunID        string                    `json:"run_id"`
	Counts       []database.TenantRowCount `json:"counts"`
	SentinelRows int64                     `json:"sentinel_rows"`

	// Issues lists observed tenant-ownership violations: artworks pointing
	// at a tenant with no settings record. Reported, never auto-corrected.
	Issues []*repository.InconsistentStateError `json:"issues,omitempty"`
}

// Consistent reports whether the audit found no ownership violations and no
// rows parked at the sentinel.
func (r *AuditReport) Consistent() bool {
	return len(r.Issues) == 0 && r.SentinelRows == 0
}

// AuditByTenant counts artworks grouped by tenant id and cross-checks each
// tenant against the settings table. Read-only, always safe to re-run.
func (r *Runner) AuditByTenant() (*AuditReport, error) {
	runID := newRunID()
	log := r.Logger.With(zap.String("run_id", runID), zap.String("operation", "audit"))

	counts, err := database.ListArtworkTenantCounts(r.SQLDB)
	if err != nil {
		metrics.RecordRepairRun("audit", "error")
		return nil, &repository.StoreError{Op: "audit artworks by tenant", Err: err}
	}

	settingsIDs, err := r.Settings.ListTenantIDs()
	if err != nil {
		metrics.RecordRepairRun("audit", "error")
		return nil, err
	}
	known := make(map[string]bool, len(settingsIDs))
	for _, id := range settingsIDs {
		known[id] = true
	}

	report := &AuditReport{RunID: runID, Counts: counts}
	for _, c := range counts {
		if tenant.IsSentinel(c.TenantID) {
			report.SentinelRows = c.Count
			continue
		}
		if !known[c.TenantID] {
			report.Issues = append(report.Issues, &repository.InconsistentStateError{
				TenantID: c.TenantID,
				Detail:   fmt.Sprintf("%d artworks but no settings record", c.Count),
			})
		}
	}

	log.Info("audit complete",
		zap.Int("tenants", len(counts)),
		zap.Int64("sentinel_rows", report.SentinelRows),
		zap.Int("issues", len(report.Issues)))
	metrics.RecordRepairRun("audit", "ok")
	return report, nil
}

// RemapResult records a completed tenant remap.
type RemapResult struct {
	RunID        string `json:"run_id"`
	FromTenantID string `json:"from_tenant_id"`
	ToTenantID   string `json:"to_tenant_id"`
	BeforeSource int64  `json:"before_source_rows"`
	BeforeTarget int64  `json:"before_target_rows"`
	RowsChanged  int64  `json:"rows_changed"`
	AfterSource  int64  `json:"after_source_rows"`
	AfterTarget  int64  `json:"after_target_rows"`
	// TargetHasSettings is false when the remap re-homed rows onto a tenant
	// that has no settings record yet; the operator is warned, not blocked.
	TargetHasSettings bool `json:"target_has_settings"`
}

// Remap re-homes every artwork from one tenant id to another, logging row
// counts before and after. Re-running after full success is a no-op (zero
// rows remain at the source); after a failure the state is unknown and the
// operator must re-audit before retrying.
func (r *Runner) Remap(fromTenantID, toTenantID string) (*RemapResult, error) {
	runID := newRunID()
	log := r.Logger.With(
		zap.String("run_id", runID),
		zap.String("operation", "remap"),
		zap.String("from", fromTenantID),
		zap.String("to", toTenantID))

	beforeSource, err := database.CountArtworksForTenant(r.SQLDB, fromTenantID)
	if err != nil {
		metrics.RecordRepairRun("remap", "error")
		return nil, &repository.StoreError{Op: "count source rows before remap", Err: err}
	}
	beforeTarget, err := database.CountArtworksForTenant(r.SQLDB, toTenantID)
	if err != nil {
		metrics.RecordRepairRun("remap", "error")
		return nil, &repository.StoreError{Op: "count target rows before remap", Err: err}
	}
	targetHasSettings, err := database.SettingsExists(r.SQLDB, toTenantID)
	if err != nil {
		metrics.RecordRepairRun("remap", "error")
		return nil, &repository.StoreError{Op: "probe target settings before remap", Err: err}
	}
	if !targetHasSettings {
		log.Warn("target tenant has no settings record; rows will be orphaned until one is created")
	}

	log.Info("remap starting", zap.Int64("source_rows", beforeSource), zap.Int64("target_rows", beforeTarget))

	changed, err := r.Artworks.ReassignTenant(fromTenantID, toTenantID)
	if err != nil {
		log.Error("remap failed; state unknown, re-audit before retrying", zap.Error(err))
		metrics.RecordRepairRun("remap", "error")
		return nil, err
	}

	afterSource, err := database.CountArtworksForTenant(r.SQLDB, fromTenantID)
	if err != nil {
		metrics.RecordRepairRun("remap", "error")
		return nil, &repository.StoreError{Op: "count source rows after remap", Err: err}
	}
	afterTarget, err := database.CountArtworksForTenant(r.SQLDB, toTenantID)
	if err != nil {
		metrics.RecordRepairRun("remap", "error")
		return nil, &repository.StoreError{Op: "count target rows after remap", Err: err}
	}

	log.Info("remap complete",
		zap.Int64("rows_changed", changed),
		zap.Int64("source_rows", afterSource),
		zap.Int64("target_rows", afterTarget))
	metrics.RecordRepairRun("remap", "ok")
	metrics.RecordReassignedRows(changed)

	return &RemapResult{
		RunID:             runID,
		FromTenantID:      fromTenantID,
		ToTenantID:        toTenantID,
		BeforeSource:      beforeSource,
		BeforeTarget:      beforeTarget,
		RowsChanged:       changed,
		AfterSource:       afterSource,
		AfterTarget:       afterTarget,
		TargetHasSettings: targetHasSettings,
	}, nil
}

// ForceSet overwrites named settings columns on a known tenant, bypassing
// the admin workflow's validation. Operator-only; it logs every before and
// after value since there is no undo.
func (r *Runner) ForceSet(tenantID string, fields map[string]interface{}) error {
	runID := newRunID()
	log := r.Logger.With(
		zap.String("run_id", runID),
		zap.String("operation", "force_set"),
		zap.String("tenant_id", tenantID))

	before, after, err := r.Settings.ForceUpdate(tenantID, fields)
	if err != nil {
		if before != nil {
			log.Error("force-set failed after load; record may be partially updated",
				zap.Any("before", before), zap.Error(err))
		} else {
			log.Error("force-set failed", zap.Error(err))
		}
		metrics.RecordRepairRun("force_set", "error")
		return err
	}

	log.Info("force-set complete",
		zap.Any("fields", fields),
		zap.Any("before", before),
		zap.Any("after", after))
	metrics.RecordRepairRun("force_set", "ok")
	return nil
}

// ColumnProbe is the result of checking one column's presence in the live
// schema.
type ColumnProbe struct {
	Table   string `json:"table"`
	Column  string `json:"column"`
	Present bool   `json:"present"`
}

// ProbeColumns checks that the given settings columns exist in the live
// schema. The settings table grew fields ad hoc over time, so older database
// files may predate a column a correction wants to touch.
func (r *Runner) ProbeColumns(table string, columns []string) ([]ColumnProbe, error) {
	probes := make([]ColumnProbe, 0, len(columns))
	for _, col := range columns {
		present, err := database.TableHasColumn(r.SQLDB, table, col)
		if err != nil {
			metrics.RecordRepairRun("probe", "error")
			return nil, &repository.StoreError{Op: fmt.Sprintf("probe column %s.%s", table, col), Err: err}
		}
		probes = append(probes, ColumnProbe{Table: table, Column: col, Present: present})
	}
	metrics.RecordRepairRun("probe", "ok")
	return probes, nil
}

// SentinelRows counts artwork rows still parked at the sentinel tenant.
// A tenant's data must not be treated as complete while this is non-zero.
func (r *Runner) SentinelRows() (int64, error) {
	count, err := database.CountArtworksForTenant(r.SQLDB, tenant.SentinelID)
	if err != nil {
		return 0, &repository.StoreError{Op: "count sentinel rows", Err: err}
	}
	return count, nil
}
