package database

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// TenantRowCount is one row of a per-tenant count probe.
type TenantRowCount struct {
	TenantID string
	Count    int64
}

// ListArtworkTenantCounts counts artwork rows grouped by tenant id.
// Read-only; used by consistency audits, which go straight at the rows
// rather than through the ORM.
func ListArtworkTenantCounts(db *sql.DB) ([]TenantRowCount, error) {
	queryBuilder := psql.Select("tenant_id", "COUNT(*)").
		From("artworks").
		GroupBy("tenant_id").
		OrderBy("tenant_id ASC")

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL for ListArtworkTenantCounts: %w", err)
	}

	rows, err := db.Query(sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query artwork tenant counts: %w", err)
	}
	defer rows.Close()

	var counts []TenantRowCount
	for rows.Next() {
		var c TenantRowCount
		if err := rows.Scan(&c.TenantID, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan artwork tenant count row: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating artwork tenant counts: %w", err)
	}
	return counts, nil
}

// CountArtworksForTenant counts the artwork rows owned by a single tenant,
// used to assert the sentinel holds no leftover rows before a tenant's data
// is treated as complete.
func CountArtworksForTenant(db *sql.DB, tenantID string) (int64, error) {
	queryBuilder := psql.Select("COUNT(*)").
		From("artworks").
		Where(sq.Eq{"tenant_id": tenantID})

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build SQL for CountArtworksForTenant: %w", err)
	}

	var count int64
	if err := db.QueryRow(sqlStr, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count artworks for tenant %s: %w", tenantID, err)
	}
	return count, nil
}

// SettingsExists reports whether a settings row is present for the tenant.
func SettingsExists(db *sql.DB, tenantID string) (bool, error) {
	queryBuilder := psql.Select("COUNT(*)").
		From("settings").
		Where(sq.Eq{"tenant_id": tenantID})

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build SQL for SettingsExists: %w", err)
	}

	var count int64
	if err := db.QueryRow(sqlStr, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to probe settings for tenant %s: %w", tenantID, err)
	}
	return count > 0, nil
}

// TableHasColumn probes the live schema for a column. The settings table
// grew fields ad hoc over time, so repair tooling checks a column exists
// before force-updating it on an older database file.
func TableHasColumn(db *sql.DB, table, column string) (bool, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, fmt.Errorf("failed to read table info for %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid     int
			name    string
			colType string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
			return false, fmt.Errorf("failed to scan table info for %s: %w", table, err)
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}
