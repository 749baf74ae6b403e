package service

import (
	"context"
	"sync"

	"github.com/juju/collections/set"
	"golang.org/x/sync/errgroup"

	"github.com/idmigrate/keycloak-descope/internal/export"
	"github.com/idmigrate/keycloak-descope/internal/logger"
	"github.com/idmigrate/keycloak-descope/internal/mapper"
	"github.com/idmigrate/keycloak-descope/internal/model"
)

// Migrate submits the user export files of a realm to the target, one batch
// per file. Files are independent of each other; the order inside one file
// is fixed: map every user, submit the batch, deactivate the disabled users.
type Migrate struct {
	source   model.ExportSource
	users    model.UserClient
	reporter model.Reporter
	workers  int
	logger   *logger.Logger
}

func NewMigrate(
	source model.ExportSource,
	users model.UserClient,
	reporter model.Reporter,
	workers int,
	logger *logger.Logger,
) *Migrate {
	if workers < 1 {
		workers = 1
	}

	return &Migrate{
		source:   source,
		users:    users,
		reporter: reporter,
		workers:  workers,
		logger:   logger,
	}
}

// MigrateUsers processes every user export file of realm and returns one
// outcome per file. With workers > 1 files are processed concurrently; the
// returned slice always follows listing order.
func (s *Migrate) MigrateUsers(ctx context.Context, realm string) []model.FileOutcome {
	s.reporter.Printf("Starting user migration...")

	listed, err := s.source.List(ctx)
	if err != nil {
		s.logger.Error("Migrate service: failed to list export files", "error", err)
		return nil
	}
	files := export.UserFileNames(listed, realm)

	progress := newProgress(s.reporter)

	outcomes := make([]model.FileOutcome, len(files))

	if s.workers == 1 {
		for i, name := range files {
			outcomes[i] = s.processFile(ctx, name)
			progress.Add(outcomes[i].Submitted)
		}
		return outcomes
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, name := range files {
		i, name := i, name
		g.Go(func() error {
			outcomes[i] = s.processFile(gctx, name)
			progress.Add(outcomes[i].Submitted)
			return nil
		})
	}
	// Workers never return errors; per-file failures live in the outcomes.
	_ = g.Wait()

	return outcomes
}

// processFile runs one file through the fixed map, submit, deactivate order.
// Deactivation is unconditional once a batch response has been received:
// disabled users must not stay active even when creation was rejected.
func (s *Migrate) processFile(ctx context.Context, name string) model.FileOutcome {
	outcome := model.FileOutcome{File: name}

	users, err := s.readUsers(ctx, name)
	if err != nil {
		s.logger.Error("Migrate service: failed to read users export", "file", name, "error", err)
		outcome.Err = err
		return outcome
	}

	batch, disabled, skipped := s.buildBatch(users, name)
	outcome.Skipped = skipped

	if len(batch) == 0 {
		s.logger.Info("Migrate service: no users to submit", "file", name)
		return outcome
	}

	outcome.Submitted = len(batch)
	res, err := s.users.BatchCreateUsers(ctx, model.BatchCreateRequest{Users: batch})
	if err != nil {
		// No response received, so no deactivation either.
		s.logger.Error("Migrate service: failed to submit batch", "file", name, "count", len(batch), "error", err)
		outcome.Err = err
		return outcome
	}

	outcome.StatusCode = res.StatusCode
	if res.OK() {
		s.logger.Info("Migrate service: successfully created users", "file", name, "count", len(batch))
	} else {
		s.logger.Error("Migrate service: failed to create users",
			"file", name,
			"count", len(batch),
			"status", res.StatusCode,
			"body", string(res.Body))
	}

	for _, loginID := range disabled {
		if err := s.users.DeactivateUser(ctx, loginID); err != nil {
			s.logger.Error("Migrate service: failed to deactivate user", "login_id", loginID, "error", err)
			continue
		}
		outcome.Deactivated++
		s.logger.Info("Migrate service: deactivated user", "login_id", loginID)
	}

	return outcome
}

// buildBatch maps exported users to target users. Records without a usable
// login id and records repeating a login id already in the batch are skipped;
// a failed credential transcode only drops the password, not the user.
func (s *Migrate) buildBatch(users []model.ExportedUser, file string) ([]model.TargetUser, []string, int) {
	var (
		batch    []model.TargetUser
		disabled []string
		skipped  int
	)

	seen := set.NewStrings()
	for _, user := range users {
		mapped, err := mapper.MapUser(user)
		if err != nil {
			s.logger.Error("Migrate service: skipping user record", "file", file, "error", err)
			skipped++
			continue
		}
		if seen.Contains(mapped.User.LoginID) {
			s.logger.Error("Migrate service: skipping user record",
				"file", file,
				"login_id", mapped.User.LoginID,
				"error", model.ErrDuplicateLoginID)
			skipped++
			continue
		}
		seen.Add(mapped.User.LoginID)

		if mapped.CredentialErr != nil {
			s.logger.Warn("Migrate service: user migrates without a password",
				"file", file,
				"login_id", mapped.User.LoginID,
				"error", mapped.CredentialErr)
		}

		batch = append(batch, mapped.User)
		if mapped.Disabled {
			disabled = append(disabled, mapped.User.LoginID)
		}
	}

	return batch, disabled, skipped
}

func (s *Migrate) readUsers(ctx context.Context, name string) ([]model.ExportedUser, error) {
	rc, err := s.source.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return export.ReadUsersExport(rc)
}

// progress prints a console line each time the running user total crosses a
// new multiple of ten.
type progress struct {
	mu       sync.Mutex
	total    int
	lastTens int
	reporter model.Reporter
}

func newProgress(reporter model.Reporter) *progress {
	return &progress{reporter: reporter}
}

func (p *progress) Add(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.total += n
	if tens := p.total / 10; tens > p.lastTens {
		p.reporter.Printf("Processed %d users...", p.total)
		p.lastTens = tens
	}
}
