package service

import (
	"context"

	"github.com/juju/collections/set"

	"github.com/idmigrate/keycloak-descope/internal/export"
	"github.com/idmigrate/keycloak-descope/internal/logger"
	"github.com/idmigrate/keycloak-descope/internal/model"
)

// Reconcile creates the roles and tenants of a realm export that are missing
// from the target project. Both passes share one shape: load the remote name
// set, collect the exported name set, create the difference.
type Reconcile struct {
	source  model.ExportSource
	roles   model.RoleClient
	tenants model.TenantClient
	logger  *logger.Logger
}

func NewReconcile(
	source model.ExportSource,
	roles model.RoleClient,
	tenants model.TenantClient,
	logger *logger.Logger,
) *Reconcile {
	return &Reconcile{
		source:  source,
		roles:   roles,
		tenants: tenants,
		logger:  logger,
	}
}

// ReconcileRoles creates every exported role name missing from the target.
// Exported names union realm-level and client-level roles across all realm
// export files. Every failure is logged and scoped to its own entity; the
// pass never aborts.
func (s *Reconcile) ReconcileRoles(ctx context.Context, realm string) model.ReconcileResult {
	remote := set.NewStrings()
	roles, err := s.roles.LoadAllRoles(ctx)
	if err != nil {
		s.logger.Error("Reconcile service: failed to load remote roles, assuming none", "error", err)
	}
	for _, role := range roles {
		remote.Add(role.Name)
	}

	exported := set.NewStrings()
	for _, doc := range s.realmExports(ctx, realm) {
		for _, role := range doc.Roles.Realm {
			exported.Add(role.Name)
		}
		for _, clientRoles := range doc.Roles.Client {
			for _, role := range clientRoles {
				exported.Add(role.Name)
			}
		}
	}

	var result model.ReconcileResult
	for _, name := range exported.Difference(remote).SortedValues() {
		if err := s.roles.CreateRole(ctx, name); err != nil {
			s.logger.Error("Reconcile service: failed to create role", "role", name, "error", err)
			result.Failed++
			continue
		}
		s.logger.Info("Reconcile service: created role", "role", name)
		result.Created++
	}

	return result
}

// ReconcileTenants creates one tenant per exported group name missing from
// the target, with the group name as both tenant id and tenant name. Group
// names union across all realm export files, the same way roles do.
func (s *Reconcile) ReconcileTenants(ctx context.Context, realm string) model.ReconcileResult {
	remote := set.NewStrings()
	tenants, err := s.tenants.LoadAllTenants(ctx)
	if err != nil {
		s.logger.Error("Reconcile service: failed to load remote tenants, assuming none", "error", err)
	}
	for _, tenant := range tenants {
		remote.Add(tenant.ID)
	}

	exported := set.NewStrings()
	for _, doc := range s.realmExports(ctx, realm) {
		for _, group := range doc.Groups {
			exported.Add(group.Name)
		}
	}

	var result model.ReconcileResult
	for _, name := range exported.Difference(remote).SortedValues() {
		if err := s.tenants.CreateTenant(ctx, name, name); err != nil {
			s.logger.Error("Reconcile service: failed to create tenant", "tenant", name, "error", err)
			result.Failed++
			continue
		}
		s.logger.Info("Reconcile service: created tenant", "tenant", name)
		result.Created++
	}

	return result
}

// realmExports reads every realm export file of realm. Unreadable files are
// logged and skipped.
func (s *Reconcile) realmExports(ctx context.Context, realm string) []model.RealmExport {
	listed, err := s.source.List(ctx)
	if err != nil {
		s.logger.Error("Reconcile service: failed to list export files", "error", err)
		return nil
	}

	var docs []model.RealmExport
	for _, name := range export.RealmFileNames(listed, realm) {
		doc, err := s.readRealmExport(ctx, name)
		if err != nil {
			s.logger.Error("Reconcile service: failed to read realm export", "file", name, "error", err)
			continue
		}
		docs = append(docs, doc)
	}

	return docs
}

func (s *Reconcile) readRealmExport(ctx context.Context, name string) (model.RealmExport, error) {
	rc, err := s.source.Open(ctx, name)
	if err != nil {
		return model.RealmExport{}, err
	}
	defer rc.Close()

	return export.ReadRealmExport(rc)
}
