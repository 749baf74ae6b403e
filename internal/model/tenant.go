package model

import "context"

// RemoteTenant is a tenant that already exists in the target system.
// Migrated tenants carry the source group name as both id and name.
type RemoteTenant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TenantClient defines the tenant operations of the target management API.
type TenantClient interface {
	LoadAllTenants(ctx context.Context) ([]RemoteTenant, error)
	CreateTenant(ctx context.Context, name, id string) error
}
