package service

import (
	"context"

	"github.com/idmigrate/keycloak-descope/internal/logger"
	"github.com/idmigrate/keycloak-descope/internal/model"
)

// Runner executes one full migration of a realm.
type Runner struct {
	reconcile *Reconcile
	migrate   *Migrate
	reporter  model.Reporter
	logger    *logger.Logger
}

func NewRunner(
	reconcile *Reconcile,
	migrate *Migrate,
	reporter model.Reporter,
	logger *logger.Logger,
) *Runner {
	return &Runner{
		reconcile: reconcile,
		migrate:   migrate,
		reporter:  reporter,
		logger:    logger,
	}
}

// Run migrates roles, then tenants, then users. Reconciliation finishes
// before the first user batch is submitted: user records reference role
// names and tenant ids that must already exist remotely.
func (s *Runner) Run(ctx context.Context, realm string) model.Summary {
	var summary model.Summary

	roles := s.reconcile.ReconcileRoles(ctx, realm)
	summary.RolesCreated = roles.Created
	s.reporter.Printf("Created %d roles in Descope", roles.Created)

	tenants := s.reconcile.ReconcileTenants(ctx, realm)
	summary.TenantsCreated = tenants.Created
	s.reporter.Printf("Created %d groups in Descope", tenants.Created)

	for _, outcome := range s.migrate.MigrateUsers(ctx, realm) {
		summary.FilesProcessed++
		summary.UsersProcessed += outcome.Submitted
		summary.UsersSkipped += outcome.Skipped
		summary.UsersDeactivated += outcome.Deactivated
		if outcome.OK() {
			summary.UsersCreated += outcome.Submitted
		} else {
			summary.FilesFailed++
		}
	}

	s.reporter.Printf("Migration complete. Total users processed: %d", summary.UsersProcessed)
	s.logger.Info("Migration run: finished",
		"realm", realm,
		"roles_created", summary.RolesCreated,
		"tenants_created", summary.TenantsCreated,
		"users_processed", summary.UsersProcessed,
		"users_created", summary.UsersCreated,
		"users_skipped", summary.UsersSkipped,
		"users_deactivated", summary.UsersDeactivated,
		"files_processed", summary.FilesProcessed,
		"files_failed", summary.FilesFailed)

	return summary
}
