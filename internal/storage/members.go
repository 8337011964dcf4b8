package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// Tenant is one organization.
type Tenant struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
	Plan string `json:"plan" db:"plan"`
}

// Membership links a user to a tenant with a role.
type Membership struct {
	TenantID   string `json:"tenant_id" db:"tenant_id"`
	TenantName string `json:"tenant_name" db:"tenant_name"`
	Plan       string `json:"plan" db:"plan"`
	Role       string `json:"role" db:"role"`
	FullName   string `json:"full_name" db:"full_name"`
}

// CreateTenant inserts a tenant, ignoring an existing row with the same
// id so seeding is idempotent.
func (s *Store) CreateTenant(ctx context.Context, t *Tenant) error {
	if t.Plan == "" {
		t.Plan = "Pro"
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO tenants (id, name, plan) VALUES (?, ?, ?)`,
		t.ID, t.Name, t.Plan)
	if err != nil {
		return fmt.Errorf("failed to create tenant: %w", err)
	}
	return nil
}

// GetTenant fetches one tenant.
func (s *Store) GetTenant(ctx context.Context, id string) (*Tenant, error) {
	var t Tenant
	err := s.db.GetContext(ctx, &t, `SELECT id, name, plan FROM tenants WHERE id = ?`, id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	return &t, nil
}

// AddMember upserts a user's membership in a tenant.
func (s *Store) AddMember(ctx context.Context, tenantID, userID, role, fullName string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_tenants (user_id, tenant_id, role, full_name) VALUES (?, ?, ?, ?)
		 ON CONFLICT (user_id, tenant_id) DO UPDATE SET role = excluded.role, full_name = excluded.full_name`,
		userID, tenantID, role, fullName)
	if err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}
	return nil
}

// ListMemberships returns every tenant the user belongs to, joined with
// the tenant's name and plan.
func (s *Store) ListMemberships(ctx context.Context, userID string) ([]*Membership, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ut.tenant_id, COALESCE(t.name, ''), COALESCE(t.plan, ''), ut.role, COALESCE(ut.full_name, '')
		 FROM user_tenants ut
		 LEFT JOIN tenants t ON t.id = ut.tenant_id
		 WHERE ut.user_id = ?
		 ORDER BY ut.tenant_id`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	defer rows.Close()

	memberships := []*Membership{}
	for rows.Next() {
		var m Membership
		if err := rows.Scan(&m.TenantID, &m.TenantName, &m.Plan, &m.Role, &m.FullName); err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		memberships = append(memberships, &m)
	}
	return memberships, rows.Err()
}

// Member is one row of a tenant's roster.
type Member struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ListMembers returns every user in the tenant.
func (s *Store) ListMembers(ctx context.Context, tenantID string) ([]*Member, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, COALESCE(full_name, '') FROM user_tenants WHERE tenant_id = ? ORDER BY user_id`,
		tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	members := []*Member{}
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.ID, &m.Name); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, &m)
	}
	return members, rows.Err()
}

// GetMembership returns the user's membership in one tenant, or
// ErrNotFound.
func (s *Store) GetMembership(ctx context.Context, tenantID, userID string) (*Membership, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT ut.tenant_id, COALESCE(t.name, ''), COALESCE(t.plan, ''), ut.role, COALESCE(ut.full_name, '')
		 FROM user_tenants ut
		 LEFT JOIN tenants t ON t.id = ut.tenant_id
		 WHERE ut.tenant_id = ? AND ut.user_id = ?`,
		tenantID, userID)

	var m Membership
	err := row.Scan(&m.TenantID, &m.TenantName, &m.Plan, &m.Role, &m.FullName)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	return &m, nil
}
