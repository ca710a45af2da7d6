package repository

import (
	"context"

	"case_coordination_service/internal/coordination/domain"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// UserDirectory resolves an authenticated user id to a full identity.
// Returns (nil, nil) when the user does not exist.
type UserDirectory interface {
	GetByID(ctx context.Context, userID string) (*domain.Identity, error)
}

// CaseAccessResolver answers the role-specific authorization queries used to
// compute a connection's dynamic rooms. One method per strategy so each role
// declares exactly the query it issues.
type CaseAccessResolver interface {
	// ListCaseIDsForParent cases belonging to the parent's children
	ListCaseIDsForParent(ctx context.Context, userID string) ([]string, error)
	// ListClientIDsForProfessional clients with an appointment with the professional
	ListClientIDsForProfessional(ctx context.Context, userID string) ([]string, error)
	// ListCaseIDsForTenant every case in the tenant, LA roles only
	ListCaseIDsForTenant(ctx context.Context, tenantID string) ([]string, error)
}

type accessRepository struct {
	db *pgxpool.Pool
}

// NewAccessRepository create a read-only adapter over the platform's relational store
func NewAccessRepository(db *pgxpool.Pool) (UserDirectory, CaseAccessResolver) {
	r := &accessRepository{db: db}
	return r, r
}

func (r *accessRepository) GetByID(ctx context.Context, userID string) (*domain.Identity, error) {
	row := r.db.QueryRow(ctx,
		"SELECT id, name, role, tenant_id FROM users WHERE id = $1", userID)

	var identity domain.Identity
	err := row.Scan(&identity.UserID, &identity.Name, &identity.Role, &identity.TenantID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &identity, nil
}

func (r *accessRepository) ListCaseIDsForParent(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.Query(ctx,
		"SELECT c.id FROM cases c JOIN children ch ON c.child_id = ch.id WHERE ch.parent_id = $1", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIDs(rows)
}

func (r *accessRepository) ListClientIDsForProfessional(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.Query(ctx,
		"SELECT DISTINCT client_id FROM appointments WHERE professional_id = $1", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIDs(rows)
}

func (r *accessRepository) ListCaseIDsForTenant(ctx context.Context, tenantID string) ([]string, error) {
	rows, err := r.db.Query(ctx,
		"SELECT id FROM cases WHERE tenant_id = $1", tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIDs(rows)
}

func scanIDs(rows pgx.Rows) ([]string, error) {
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
