package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/moklgydocs/mokpermissions/internal/entities"
	"github.com/moklgydocs/mokpermissions/internal/repositories"
)

// PostgresGrantRepository implements GrantRepository using PostgreSQL.
type PostgresGrantRepository struct {
	db *sql.DB
}

// NewPostgresGrantRepository creates a new PostgreSQL grant repository.
// The returned value also implements repositories.BatchGrantRepository.
func NewPostgresGrantRepository(db *sql.DB) *PostgresGrantRepository {
	return &PostgresGrantRepository{db: db}
}

// storeErr marks a driver failure as entities.ErrStoreUnavailable while
// keeping the underlying error matchable.
func storeErr(op string, err error) error {
	return fmt.Errorf("failed to %s: %w: %w", op, entities.ErrStoreUnavailable, err)
}

// Get retrieves the explicit status for one permission and holder.
func (r *PostgresGrantRepository) Get(ctx context.Context, tenantID, permissionName, providerName, providerKey string) (entities.GrantStatus, error) {
	query := `
		SELECT is_granted
		FROM permission_grants
		WHERE tenant_id = $1
			AND permission_name = $2
			AND provider_name = $3
			AND provider_key = $4
	`
	var isGranted bool
	err := r.db.QueryRowContext(ctx, query, tenantID, permissionName, providerName, providerKey).Scan(&isGranted)
	if err == sql.ErrNoRows {
		return entities.StatusUndefined, nil
	}
	if err != nil {
		return entities.StatusUndefined, storeErr("get grant", err)
	}
	if isGranted {
		return entities.StatusGranted, nil
	}
	return entities.StatusProhibited, nil
}

// GetAll retrieves every grant record for a holder.
func (r *PostgresGrantRepository) GetAll(ctx context.Context, tenantID, providerName, providerKey string) ([]*entities.PermissionGrant, error) {
	query := `
		SELECT permission_name, is_granted, created_at
		FROM permission_grants
		WHERE tenant_id = $1
			AND provider_name = $2
			AND provider_key = $3
		ORDER BY permission_name
	`
	rows, err := r.db.QueryContext(ctx, query, tenantID, providerName, providerKey)
	if err != nil {
		return nil, storeErr("read grants", err)
	}
	defer rows.Close()

	var grants []*entities.PermissionGrant
	for rows.Next() {
		grant := &entities.PermissionGrant{
			ProviderName: providerName,
			ProviderKey:  providerKey,
			TenantID:     tenantID,
		}
		var isGranted bool
		if err := rows.Scan(&grant.PermissionName, &isGranted, &grant.CreatedAt); err != nil {
			return nil, storeErr("scan grant", err)
		}
		grant.Status = entities.StatusProhibited
		if isGranted {
			grant.Status = entities.StatusGranted
		}
		grants = append(grants, grant)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate grants", err)
	}

	return grants, nil
}

// Set upserts a grant record. An existing record for the same key is
// replaced (last write wins).
func (r *PostgresGrantRepository) Set(ctx context.Context, tenantID string, grant *entities.PermissionGrant) error {
	if err := grant.Validate(); err != nil {
		return fmt.Errorf("invalid grant: %w", err)
	}

	query := `
		INSERT INTO permission_grants (
			tenant_id, permission_name, provider_name, provider_key, is_granted, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (tenant_id, permission_name, provider_name, provider_key)
		DO UPDATE SET is_granted = EXCLUDED.is_granted
	`
	_, err := r.db.ExecContext(ctx, query,
		tenantID, grant.PermissionName, grant.ProviderName, grant.ProviderKey,
		grant.Status == entities.StatusGranted, time.Now(),
	)
	if err != nil {
		return storeErr("set grant", err)
	}
	return nil
}

// Delete removes a grant record. Absent records are not an error.
func (r *PostgresGrantRepository) Delete(ctx context.Context, tenantID, permissionName, providerName, providerKey string) error {
	query := `
		DELETE FROM permission_grants
		WHERE tenant_id = $1
			AND permission_name = $2
			AND provider_name = $3
			AND provider_key = $4
	`
	_, err := r.db.ExecContext(ctx, query, tenantID, permissionName, providerName, providerKey)
	if err != nil {
		return storeErr("delete grant", err)
	}
	return nil
}

// SetMany upserts one record per permission name in a single transaction.
func (r *PostgresGrantRepository) SetMany(ctx context.Context, tenantID string, permissionNames []string, providerName, providerKey string, status entities.GrantStatus) error {
	if len(permissionNames) == 0 {
		return nil
	}
	if providerKey == "" {
		return fmt.Errorf("%w: provider key is required", entities.ErrInvalidHolderKey)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("begin transaction", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO permission_grants (
			tenant_id, permission_name, provider_name, provider_key, is_granted, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (tenant_id, permission_name, provider_name, provider_key)
		DO UPDATE SET is_granted = EXCLUDED.is_granted
	`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return storeErr("prepare statement", err)
	}
	defer stmt.Close()

	now := time.Now()
	for _, name := range permissionNames {
		_, err := stmt.ExecContext(ctx,
			tenantID, name, providerName, providerKey,
			status == entities.StatusGranted, now,
		)
		if err != nil {
			return storeErr("set grant", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return storeErr("commit transaction", err)
	}
	return nil
}

// DeleteMany removes the records for the given permission names in a single
// transaction.
func (r *PostgresGrantRepository) DeleteMany(ctx context.Context, tenantID string, permissionNames []string, providerName, providerKey string) error {
	if len(permissionNames) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("begin transaction", err)
	}
	defer tx.Rollback()

	query := `
		DELETE FROM permission_grants
		WHERE tenant_id = $1
			AND permission_name = $2
			AND provider_name = $3
			AND provider_key = $4
	`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return storeErr("prepare statement", err)
	}
	defer stmt.Close()

	for _, name := range permissionNames {
		if _, err := stmt.ExecContext(ctx, tenantID, name, providerName, providerKey); err != nil {
			return storeErr("delete grant", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return storeErr("commit transaction", err)
	}
	return nil
}

var (
	_ repositories.GrantRepository      = (*PostgresGrantRepository)(nil)
	_ repositories.BatchGrantRepository = (*PostgresGrantRepository)(nil)
)
