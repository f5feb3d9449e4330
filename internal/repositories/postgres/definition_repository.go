package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/moklgydocs/mokpermissions/internal/entities"
	"github.com/moklgydocs/mokpermissions/internal/repositories"
)

// PostgresDefinitionRepository implements DefinitionRepository using
// PostgreSQL.
type PostgresDefinitionRepository struct {
	db *sql.DB
}

// NewPostgresDefinitionRepository creates a new PostgreSQL definition
// repository.
func NewPostgresDefinitionRepository(db *sql.DB) repositories.DefinitionRepository {
	return &PostgresDefinitionRepository{db: db}
}

// List retrieves all permission definition records.
func (r *PostgresDefinitionRepository) List(ctx context.Context) ([]*entities.PermissionDefinitionRecord, error) {
	query := `
		SELECT name, display_name, description, parent_name, group_name,
			is_granted_by_default, created_at, updated_at
		FROM permission_definitions
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, storeErr("list permission definitions", err)
	}
	defer rows.Close()

	var records []*entities.PermissionDefinitionRecord
	for rows.Next() {
		var rec entities.PermissionDefinitionRecord
		var parentName, groupName sql.NullString
		err := rows.Scan(
			&rec.Name, &rec.DisplayName, &rec.Description, &parentName, &groupName,
			&rec.IsGrantedByDefault, &rec.CreatedAt, &rec.UpdatedAt,
		)
		if err != nil {
			return nil, storeErr("scan permission definition", err)
		}
		rec.ParentName = parentName.String
		rec.GroupName = groupName.String
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate permission definitions", err)
	}

	return records, nil
}

// Save upserts the given records by name in a single transaction.
func (r *PostgresDefinitionRepository) Save(ctx context.Context, records []*entities.PermissionDefinitionRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("begin transaction", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO permission_definitions (
			name, display_name, description, parent_name, group_name,
			is_granted_by_default, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		ON CONFLICT (name)
		DO UPDATE SET
			display_name = EXCLUDED.display_name,
			description = EXCLUDED.description,
			parent_name = EXCLUDED.parent_name,
			group_name = EXCLUDED.group_name,
			is_granted_by_default = EXCLUDED.is_granted_by_default,
			updated_at = EXCLUDED.updated_at
	`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return storeErr("prepare statement", err)
	}
	defer stmt.Close()

	now := time.Now()
	for _, rec := range records {
		_, err := stmt.ExecContext(ctx,
			rec.Name, rec.DisplayName, rec.Description,
			sql.NullString{String: rec.ParentName, Valid: rec.ParentName != ""},
			sql.NullString{String: rec.GroupName, Valid: rec.GroupName != ""},
			rec.IsGrantedByDefault, now,
		)
		if err != nil {
			return storeErr("save permission definition", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return storeErr("commit transaction", err)
	}
	return nil
}

// PostgresUserRoleRepository implements UserRoleRepository using PostgreSQL.
// The identity subsystem owns writes to the underlying table.
type PostgresUserRoleRepository struct {
	db *sql.DB
}

// NewPostgresUserRoleRepository creates a new PostgreSQL user-role
// repository.
func NewPostgresUserRoleRepository(db *sql.DB) repositories.UserRoleRepository {
	return &PostgresUserRoleRepository{db: db}
}

// RolesOf returns the role ids held by the user within the tenant.
func (r *PostgresUserRoleRepository) RolesOf(ctx context.Context, tenantID, userID string) ([]string, error) {
	query := `
		SELECT role_id
		FROM user_roles
		WHERE tenant_id = $1 AND user_id = $2
		ORDER BY created_at
	`
	rows, err := r.db.QueryContext(ctx, query, tenantID, userID)
	if err != nil {
		return nil, storeErr("read user roles", err)
	}
	defer rows.Close()

	var roles []string
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, storeErr("scan user role", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate user roles", err)
	}

	return roles, nil
}
