package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/idmigrate/keycloak-descope/internal/logger"
	"github.com/idmigrate/keycloak-descope/internal/mocks"
	"github.com/idmigrate/keycloak-descope/internal/model"
	"github.com/idmigrate/keycloak-descope/internal/testutil"
)

func usersDoc(t *testing.T, users []model.ExportedUser) string {
	t.Helper()

	doc, err := json.Marshal(map[string]any{"users": users})
	require.NoError(t, err)

	return string(doc)
}

func manyUsers(prefix string, n int) []model.ExportedUser {
	users := make([]model.ExportedUser, n)
	for i := range users {
		users[i] = model.ExportedUser{Username: fmt.Sprintf("%s-%d", prefix, i)}
	}
	return users
}

func okResult() model.BatchCreateResult {
	return model.BatchCreateResult{StatusCode: http.StatusOK, Body: []byte(`{}`)}
}

func TestMigrate_BatchPerFile(t *testing.T) {
	ctx := context.Background()
	src := &fakeSource{files: map[string]string{
		"acme-users-0.json": usersDoc(t, []model.ExportedUser{{Username: "alice"}, {Username: "bob"}}),
		"acme-users-1.json": usersDoc(t, []model.ExportedUser{{Username: "carol"}}),
		"acme-realm.json":   `{"groups": []}`,
		"notes.txt":         "ignore me",
	}}
	users := &mocks.UserClient{}

	var reqs []model.BatchCreateRequest
	users.On("BatchCreateUsers", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			reqs = append(reqs, args.Get(1).(model.BatchCreateRequest))
		}).
		Return(okResult(), nil)

	s := NewMigrate(src, users, &testutil.CaptureReporter{}, 1, testutil.MakeNoopLogger())

	outcomes := s.MigrateUsers(ctx, "acme")

	require.Len(t, outcomes, 2)
	assert.Equal(t, "acme-users-0.json", outcomes[0].File)
	assert.Equal(t, 2, outcomes[0].Submitted)
	assert.Equal(t, "acme-users-1.json", outcomes[1].File)
	assert.Equal(t, 1, outcomes[1].Submitted)
	assert.True(t, outcomes[0].OK())
	assert.True(t, outcomes[1].OK())

	require.Len(t, reqs, 2)
	assert.Equal(t, "alice", reqs[0].Users[0].LoginID)
	assert.Equal(t, "bob", reqs[0].Users[1].LoginID)
	assert.Equal(t, "carol", reqs[1].Users[0].LoginID)
	assert.False(t, reqs[0].Invite)
	assert.False(t, reqs[0].SendMail)
	assert.False(t, reqs[0].SendSMS)
}

func TestMigrate_DisabledUsersDeactivatedAfterBatch(t *testing.T) {
	ctx := context.Background()
	enabled := false
	src := &fakeSource{files: map[string]string{
		"acme-users-0.json": usersDoc(t, []model.ExportedUser{
			{Username: "alice"},
			{Username: "bob", Enabled: &enabled},
		}),
	}}
	users := &mocks.UserClient{}

	var order []string
	users.On("BatchCreateUsers", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { order = append(order, "batch") }).
		Return(model.BatchCreateResult{StatusCode: http.StatusBadRequest, Body: []byte(`{"errorCode":"E011002"}`)}, nil)
	users.On("DeactivateUser", mock.Anything, "bob").
		Run(func(mock.Arguments) { order = append(order, "deactivate") }).
		Return(nil).Once()

	s := NewMigrate(src, users, &testutil.CaptureReporter{}, 1, testutil.MakeNoopLogger())

	outcomes := s.MigrateUsers(ctx, "acme")

	require.Len(t, outcomes, 1)
	assert.Equal(t, 2, outcomes[0].Submitted)
	assert.Equal(t, 1, outcomes[0].Deactivated)
	assert.Equal(t, http.StatusBadRequest, outcomes[0].StatusCode)
	assert.False(t, outcomes[0].OK())

	// Deactivation follows the batch response even when creation was rejected.
	assert.Equal(t, []string{"batch", "deactivate"}, order)
	users.AssertExpectations(t)
	users.AssertNotCalled(t, "DeactivateUser", mock.Anything, "alice")
}

func TestMigrate_TransportFailureSkipsDeactivation(t *testing.T) {
	ctx := context.Background()
	enabled := false
	src := &fakeSource{files: map[string]string{
		"acme-users-0.json": usersDoc(t, []model.ExportedUser{{Username: "bob", Enabled: &enabled}}),
		"acme-users-1.json": usersDoc(t, []model.ExportedUser{{Username: "carol"}}),
	}}
	users := &mocks.UserClient{}

	users.On("BatchCreateUsers", mock.Anything, mock.MatchedBy(func(req model.BatchCreateRequest) bool {
		return req.Users[0].LoginID == "bob"
	})).Return(model.BatchCreateResult{}, errors.New("connection refused"))
	users.On("BatchCreateUsers", mock.Anything, mock.MatchedBy(func(req model.BatchCreateRequest) bool {
		return req.Users[0].LoginID == "carol"
	})).Return(okResult(), nil)

	s := NewMigrate(src, users, &testutil.CaptureReporter{}, 1, testutil.MakeNoopLogger())

	outcomes := s.MigrateUsers(ctx, "acme")

	require.Len(t, outcomes, 2)
	assert.Error(t, outcomes[0].Err)
	assert.False(t, outcomes[0].OK())
	assert.Equal(t, 0, outcomes[0].Deactivated)
	assert.True(t, outcomes[1].OK())

	users.AssertNotCalled(t, "DeactivateUser", mock.Anything, mock.Anything)
}

func TestMigrate_MalformedFileIsolated(t *testing.T) {
	ctx := context.Background()
	src := &fakeSource{files: map[string]string{
		"acme-users-bad.json":  `{"records": []}`,
		"acme-users-good.json": usersDoc(t, []model.ExportedUser{{Username: "alice"}}),
	}}
	users := &mocks.UserClient{}
	users.On("BatchCreateUsers", mock.Anything, mock.Anything).Return(okResult(), nil).Once()

	var buf bytes.Buffer
	log := &logger.Logger{Logger: slog.New(slog.NewTextHandler(&buf, nil))}

	s := NewMigrate(src, users, &testutil.CaptureReporter{}, 1, log)

	outcomes := s.MigrateUsers(ctx, "acme")

	require.Len(t, outcomes, 2)
	assert.ErrorIs(t, outcomes[0].Err, model.ErrMalformedExport)
	assert.Equal(t, 0, outcomes[0].Submitted)
	assert.True(t, outcomes[1].OK())
	assert.Equal(t, 1, outcomes[1].Submitted)

	assert.Equal(t, 1, strings.Count(buf.String(), "acme-users-bad.json"))
	users.AssertExpectations(t)
}

func TestMigrate_SkipsRecordsWithoutLoginID(t *testing.T) {
	ctx := context.Background()
	src := &fakeSource{files: map[string]string{
		"acme-users-0.json": usersDoc(t, []model.ExportedUser{{}, {Username: "alice"}}),
	}}
	users := &mocks.UserClient{}

	var req model.BatchCreateRequest
	users.On("BatchCreateUsers", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { req = args.Get(1).(model.BatchCreateRequest) }).
		Return(okResult(), nil).Once()

	s := NewMigrate(src, users, &testutil.CaptureReporter{}, 1, testutil.MakeNoopLogger())

	outcomes := s.MigrateUsers(ctx, "acme")

	require.Len(t, outcomes, 1)
	assert.Equal(t, 1, outcomes[0].Submitted)
	assert.Equal(t, 1, outcomes[0].Skipped)

	require.Len(t, req.Users, 1)
	assert.Equal(t, "alice", req.Users[0].LoginID)
}

func TestMigrate_SkipsDuplicateLoginIDs(t *testing.T) {
	ctx := context.Background()
	src := &fakeSource{files: map[string]string{
		"acme-users-0.json": usersDoc(t, []model.ExportedUser{
			{Username: "alice", Email: "a@example.com"},
			{Username: "alice", Email: "a2@example.com"},
		}),
	}}
	users := &mocks.UserClient{}

	var req model.BatchCreateRequest
	users.On("BatchCreateUsers", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { req = args.Get(1).(model.BatchCreateRequest) }).
		Return(okResult(), nil).Once()

	s := NewMigrate(src, users, &testutil.CaptureReporter{}, 1, testutil.MakeNoopLogger())

	outcomes := s.MigrateUsers(ctx, "acme")

	require.Len(t, outcomes, 1)
	assert.Equal(t, 1, outcomes[0].Submitted)
	assert.Equal(t, 1, outcomes[0].Skipped)
	require.Len(t, req.Users, 1)
	assert.Equal(t, "a@example.com", req.Users[0].AdditionalIdentifiers[0])
}

func TestMigrate_BadCredentialKeepsUser(t *testing.T) {
	ctx := context.Background()
	src := &fakeSource{files: map[string]string{
		"acme-users-0.json": usersDoc(t, []model.ExportedUser{{
			Username: "alice",
			Credentials: []model.ExportedCredential{{
				Type:           "password",
				CredentialData: `{"additionalParameters":{"memory":["lots"]}}`,
			}},
		}}),
	}}
	users := &mocks.UserClient{}

	var req model.BatchCreateRequest
	users.On("BatchCreateUsers", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { req = args.Get(1).(model.BatchCreateRequest) }).
		Return(okResult(), nil).Once()

	s := NewMigrate(src, users, &testutil.CaptureReporter{}, 1, testutil.MakeNoopLogger())

	outcomes := s.MigrateUsers(ctx, "acme")

	require.Len(t, outcomes, 1)
	assert.Equal(t, 1, outcomes[0].Submitted)
	assert.Equal(t, 0, outcomes[0].Skipped)

	require.Len(t, req.Users, 1)
	assert.Equal(t, "alice", req.Users[0].LoginID)
	assert.Nil(t, req.Users[0].HashedPassword)
}

func TestMigrate_EmptyUsersFileSubmitsNothing(t *testing.T) {
	ctx := context.Background()
	src := &fakeSource{files: map[string]string{
		"acme-users-0.json": `{"users": []}`,
	}}
	users := &mocks.UserClient{}

	s := NewMigrate(src, users, &testutil.CaptureReporter{}, 1, testutil.MakeNoopLogger())

	outcomes := s.MigrateUsers(ctx, "acme")

	require.Len(t, outcomes, 1)
	assert.Equal(t, 0, outcomes[0].Submitted)
	assert.True(t, outcomes[0].OK())
	users.AssertNotCalled(t, "BatchCreateUsers", mock.Anything, mock.Anything)
}

func TestMigrate_OpenFailureIsolated(t *testing.T) {
	ctx := context.Background()
	src := &mocks.ExportSource{}
	users := &mocks.UserClient{}

	src.On("List", mock.Anything).Return([]string{"acme-users-0.json"}, nil)
	src.On("Open", mock.Anything, "acme-users-0.json").Return(nil, errors.New("permission denied"))

	s := NewMigrate(src, users, &testutil.CaptureReporter{}, 1, testutil.MakeNoopLogger())

	outcomes := s.MigrateUsers(ctx, "acme")

	require.Len(t, outcomes, 1)
	assert.Error(t, outcomes[0].Err)
	users.AssertNotCalled(t, "BatchCreateUsers", mock.Anything, mock.Anything)
}

func TestMigrate_ListFailure(t *testing.T) {
	ctx := context.Background()
	src := &mocks.ExportSource{}
	users := &mocks.UserClient{}

	src.On("List", mock.Anything).Return(nil, errors.New("no such directory"))

	s := NewMigrate(src, users, &testutil.CaptureReporter{}, 1, testutil.MakeNoopLogger())

	outcomes := s.MigrateUsers(ctx, "acme")

	assert.Nil(t, outcomes)
	users.AssertNotCalled(t, "BatchCreateUsers", mock.Anything, mock.Anything)
}

func TestMigrate_ProgressOnTensBoundaries(t *testing.T) {
	ctx := context.Background()
	src := &fakeSource{files: map[string]string{
		"acme-users-0.json": usersDoc(t, manyUsers("a", 12)),
		"acme-users-1.json": usersDoc(t, manyUsers("b", 3)),
		"acme-users-2.json": usersDoc(t, manyUsers("c", 10)),
	}}
	users := &mocks.UserClient{}
	users.On("BatchCreateUsers", mock.Anything, mock.Anything).Return(okResult(), nil)

	reporter := &testutil.CaptureReporter{}
	s := NewMigrate(src, users, reporter, 1, testutil.MakeNoopLogger())

	s.MigrateUsers(ctx, "acme")

	assert.Equal(t, []string{
		"Starting user migration...",
		"Processed 12 users...",
		"Processed 25 users...",
	}, reporter.Lines())
}

func TestMigrate_ParallelWorkersKeepListingOrder(t *testing.T) {
	ctx := context.Background()
	src := &fakeSource{files: map[string]string{
		"acme-users-0.json": usersDoc(t, []model.ExportedUser{{Username: "alice"}}),
		"acme-users-1.json": usersDoc(t, []model.ExportedUser{{Username: "bob"}}),
		"acme-users-2.json": usersDoc(t, []model.ExportedUser{{Username: "carol"}}),
	}}
	users := &mocks.UserClient{}
	users.On("BatchCreateUsers", mock.Anything, mock.Anything).Return(okResult(), nil)

	s := NewMigrate(src, users, &testutil.CaptureReporter{}, 3, testutil.MakeNoopLogger())

	outcomes := s.MigrateUsers(ctx, "acme")

	require.Len(t, outcomes, 3)
	assert.Equal(t, "acme-users-0.json", outcomes[0].File)
	assert.Equal(t, "acme-users-1.json", outcomes[1].File)
	assert.Equal(t, "acme-users-2.json", outcomes[2].File)
	for _, outcome := range outcomes {
		assert.True(t, outcome.OK())
		assert.Equal(t, 1, outcome.Submitted)
	}
	users.AssertNumberOfCalls(t, "BatchCreateUsers", 3)
}
