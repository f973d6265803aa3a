package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/worksite/pms-workflow/internal/application/port"
	"github.com/worksite/pms-workflow/internal/domain/entity"
	"github.com/worksite/pms-workflow/internal/domain/workflow"
	sqlitedb "github.com/worksite/pms-workflow/internal/infrastructure/persistence/sqlite"
	"github.com/worksite/pms-workflow/pkg/database"
)

func setupDB(t *testing.T) *sqlitedb.DB {
	t.Helper()

	logger := zap.NewNop()
	sqlDB, err := database.Open(database.Config{
		Path: filepath.Join(t.TempDir(), "test.db"),
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	migrator := database.NewMigrator(sqlDB, logger)
	require.NoError(t, migrator.RunMigrations("../../../../migrations"))

	return sqlitedb.NewDB(sqlDB, logger)
}

func seedUsers(t *testing.T, users *UserRepository) {
	t.Helper()
	ctx := context.Background()

	supervisor := &entity.User{ID: "supervisor", Name: "Supervisor"}
	require.NoError(t, users.UpsertUser(ctx, supervisor))

	sup := "supervisor"
	requester := &entity.User{ID: "requester", Name: "Requester", SupervisorID: &sup}
	require.NoError(t, users.UpsertUser(ctx, requester))
}

func newRequest(createdBy string) *entity.Request {
	now := time.Now().UTC().Truncate(time.Second)
	return &entity.Request{
		RequestNumber: entity.NewRequestNumber(now),
		Status:        workflow.StatusDraft,
		CreatedBy:     createdBy,
		Item:          "Cement 42.5",
		Quantity:      decimal.RequireFromString("12.5"),
		Unit:          entity.UnitTon,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestRequestRepository_CreateAndGet(t *testing.T) {
	db := setupDB(t)
	logger := zap.NewNop()
	users := NewUserRepository(db, logger)
	seedUsers(t, users)

	repo := NewRequestRepository(db, logger)
	ctx := context.Background()

	request := newRequest("requester")
	require.NoError(t, repo.Create(ctx, request))
	require.NotZero(t, request.ID)

	got, err := repo.GetByID(ctx, request.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, request.RequestNumber, got.RequestNumber)
	assert.Equal(t, workflow.StatusDraft, got.Status)
	assert.True(t, got.Quantity.Equal(decimal.RequireFromString("12.5")))
	assert.Nil(t, got.NextApprover)
	assert.Nil(t, got.SubmittedAt)
	assert.Equal(t, int64(1), got.Version)

	byNumber, err := repo.GetByNumber(ctx, request.RequestNumber)
	require.NoError(t, err)
	require.NotNil(t, byNumber)
	assert.Equal(t, request.ID, byNumber.ID)

	missing, err := repo.GetByID(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRequestRepository_SaveWithHistory(t *testing.T) {
	db := setupDB(t)
	logger := zap.NewNop()
	users := NewUserRepository(db, logger)
	seedUsers(t, users)

	repo := NewRequestRepository(db, logger)
	histories := NewHistoryRepository(db, logger)
	ctx := context.Background()

	request := newRequest("requester")
	require.NoError(t, repo.Create(ctx, request))

	now := time.Now().UTC().Truncate(time.Second)
	next := "supervisor"
	request.Status = workflow.StatusPending
	request.NextApprover = &next
	request.SubmittedAt = &now
	request.UpdatedAt = now
	request.Version = 2

	history := &entity.ApprovalHistory{
		RequestID:      request.ID,
		Action:         workflow.TransitionSubmit,
		ActorID:        "requester",
		ActorName:      "Requester",
		PreviousStatus: workflow.StatusDraft,
		NewStatus:      workflow.StatusPending,
		CreatedAt:      now,
	}

	require.NoError(t, repo.SaveWithHistory(ctx, request, history, 1))
	assert.NotZero(t, history.ID)

	got, err := repo.GetByID(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusPending, got.Status)
	require.NotNil(t, got.NextApprover)
	assert.Equal(t, "supervisor", *got.NextApprover)
	require.NotNil(t, got.SubmittedAt)
	assert.Equal(t, int64(2), got.Version)

	entries, err := histories.GetByRequestID(ctx, request.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, workflow.TransitionSubmit, entries[0].Action)
	assert.Equal(t, workflow.StatusDraft, entries[0].PreviousStatus)
	assert.Equal(t, workflow.StatusPending, entries[0].NewStatus)
}

func TestRequestRepository_SaveWithHistory_StaleVersion(t *testing.T) {
	db := setupDB(t)
	logger := zap.NewNop()
	users := NewUserRepository(db, logger)
	seedUsers(t, users)

	repo := NewRequestRepository(db, logger)
	histories := NewHistoryRepository(db, logger)
	ctx := context.Background()

	request := newRequest("requester")
	require.NoError(t, repo.Create(ctx, request))

	stale := *request
	stale.Status = workflow.StatusPending
	stale.Version = 2

	history := &entity.ApprovalHistory{
		RequestID:      request.ID,
		Action:         workflow.TransitionSubmit,
		ActorID:        "requester",
		PreviousStatus: workflow.StatusDraft,
		NewStatus:      workflow.StatusPending,
		CreatedAt:      time.Now().UTC(),
	}

	// Save against a version that no longer matches
	err := repo.SaveWithHistory(ctx, &stale, history, 7)
	assert.ErrorIs(t, err, workflow.ErrConcurrentModification)

	// The losing save persisted nothing
	got, gerr := repo.GetByID(ctx, request.ID)
	require.NoError(t, gerr)
	assert.Equal(t, workflow.StatusDraft, got.Status)
	assert.Equal(t, int64(1), got.Version)

	entries, herr := histories.GetByRequestID(ctx, request.ID)
	require.NoError(t, herr)
	assert.Empty(t, entries)
}

func TestRequestRepository_List(t *testing.T) {
	db := setupDB(t)
	logger := zap.NewNop()
	users := NewUserRepository(db, logger)
	seedUsers(t, users)

	repo := NewRequestRepository(db, logger)
	ctx := context.Background()

	draft := newRequest("requester")
	require.NoError(t, repo.Create(ctx, draft))

	pending := newRequest("requester")
	pending.Status = workflow.StatusPending
	next := "supervisor"
	pending.NextApprover = &next
	require.NoError(t, repo.Create(ctx, pending))

	mine, err := repo.List(ctx, port.RequestFilter{CreatedBy: "requester"})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	inbox, err := repo.List(ctx, port.RequestFilter{
		NextApprover: "supervisor",
		Statuses:     []workflow.Status{workflow.StatusPending, workflow.StatusInReview},
	})
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, pending.RequestNumber, inbox[0].RequestNumber)

	page, err := repo.List(ctx, port.RequestFilter{CreatedBy: "requester", Limit: 1})
	require.NoError(t, err)
	assert.Len(t, page, 1)
}

func TestRequestRepository_DeleteDraft(t *testing.T) {
	db := setupDB(t)
	logger := zap.NewNop()
	users := NewUserRepository(db, logger)
	seedUsers(t, users)

	repo := NewRequestRepository(db, logger)
	ctx := context.Background()

	draft := newRequest("requester")
	require.NoError(t, repo.Create(ctx, draft))
	require.NoError(t, repo.DeleteDraft(ctx, draft.ID))

	got, err := repo.GetByID(ctx, draft.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	// A non-draft row is left alone
	pending := newRequest("requester")
	pending.Status = workflow.StatusPending
	require.NoError(t, repo.Create(ctx, pending))
	err = repo.DeleteDraft(ctx, pending.ID)
	assert.ErrorIs(t, err, port.ErrRequestNotFound)
}

func TestUserRepository_GetUser(t *testing.T) {
	db := setupDB(t)
	logger := zap.NewNop()
	users := NewUserRepository(db, logger)
	seedUsers(t, users)
	ctx := context.Background()

	requester, err := users.GetUser(ctx, "requester")
	require.NoError(t, err)
	require.NotNil(t, requester.SupervisorID)
	assert.Equal(t, "supervisor", *requester.SupervisorID)

	supervisor, err := users.GetUser(ctx, "supervisor")
	require.NoError(t, err)
	assert.Nil(t, supervisor.SupervisorID)

	_, err = users.GetUser(ctx, "ghost")
	assert.ErrorIs(t, err, port.ErrUserNotFound)
}

func TestDocumentRepository_CreateAndList(t *testing.T) {
	db := setupDB(t)
	logger := zap.NewNop()
	users := NewUserRepository(db, logger)
	seedUsers(t, users)

	requests := NewRequestRepository(db, logger)
	docs := NewDocumentRepository(db, logger)
	ctx := context.Background()

	request := newRequest("requester")
	require.NoError(t, requests.Create(ctx, request))

	doc := &entity.Document{
		ID:         uuid.NewString(),
		RequestID:  request.ID,
		UploadedBy: "requester",
		Type:       entity.DocumentQuote,
		FileName:   "quote.pdf",
		FileSize:   1024,
		FileType:   "application/pdf",
		CreatedAt:  time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, docs.Create(ctx, doc))

	listed, err := docs.GetByRequestID(ctx, request.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, doc.ID, listed[0].ID)
	assert.Equal(t, entity.DocumentQuote, listed[0].Type)
}
