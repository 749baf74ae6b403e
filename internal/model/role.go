package model

import "context"

// RemoteRole is a role that already exists in the target system.
type RemoteRole struct {
	Name string `json:"name"`
}

// RoleClient defines the role operations of the target management API.
// LoadAllRoles is called once per run; the returned set is treated as a
// frozen snapshot for the duration of reconciliation.
type RoleClient interface {
	LoadAllRoles(ctx context.Context) ([]RemoteRole, error)
	CreateRole(ctx context.Context, name string) error
}
