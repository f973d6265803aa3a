package report

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/worksite/pms-workflow/internal/application/port"
	"github.com/worksite/pms-workflow/internal/domain/entity"
	"github.com/worksite/pms-workflow/internal/domain/workflow"
)

type mockRequestRepo struct {
	completed []*entity.Request
}

func (m *mockRequestRepo) Create(ctx context.Context, request *entity.Request) error { return nil }
func (m *mockRequestRepo) GetByID(ctx context.Context, id int64) (*entity.Request, error) {
	return nil, nil
}
func (m *mockRequestRepo) GetByNumber(ctx context.Context, requestNumber string) (*entity.Request, error) {
	return nil, nil
}
func (m *mockRequestRepo) List(ctx context.Context, filter port.RequestFilter) ([]*entity.Request, error) {
	return nil, nil
}
func (m *mockRequestRepo) ListCompletedBetween(ctx context.Context, from, to time.Time) ([]*entity.Request, error) {
	return m.completed, nil
}
func (m *mockRequestRepo) SaveWithHistory(ctx context.Context, request *entity.Request, history *entity.ApprovalHistory, expectedVersion int64) error {
	return nil
}
func (m *mockRequestRepo) DeleteDraft(ctx context.Context, id int64) error { return nil }

type mockHistoryRepo struct {
	entries map[int64][]*entity.ApprovalHistory
}

func (m *mockHistoryRepo) GetByRequestID(ctx context.Context, requestID int64) ([]*entity.ApprovalHistory, error) {
	return m.entries[requestID], nil
}

func TestArchiver_Export(t *testing.T) {
	submitted := time.Date(2026, time.May, 2, 9, 0, 0, 0, time.UTC)
	completed := time.Date(2026, time.May, 20, 16, 0, 0, 0, time.UTC)

	request := &entity.Request{
		ID:            1,
		RequestNumber: "REQ-2026-1A2B3C",
		Status:        workflow.StatusCompleted,
		CreatedBy:     "requester",
		Item:          "Scaffolding clamps",
		Quantity:      decimal.RequireFromString("200"),
		Unit:          entity.UnitPieces,
		SubmittedAt:   &submitted,
		UpdatedAt:     completed,
	}

	requestRepo := &mockRequestRepo{completed: []*entity.Request{request}}
	historyRepo := &mockHistoryRepo{entries: map[int64][]*entity.ApprovalHistory{
		1: {
			{
				RequestID:      1,
				Action:         workflow.TransitionSubmit,
				ActorID:        "requester",
				ActorName:      "Requester",
				PreviousStatus: workflow.StatusDraft,
				NewStatus:      workflow.StatusPending,
				CreatedAt:      submitted,
			},
			{
				RequestID:      1,
				Action:         workflow.TransitionApprove,
				ActorID:        "supervisor",
				ActorName:      "Supervisor",
				PreviousStatus: workflow.StatusPending,
				NewStatus:      workflow.StatusApproved,
				Level:          1,
				CreatedAt:      submitted.Add(24 * time.Hour),
			},
		},
	}}

	archiver := NewArchiver(requestRepo, historyRepo, zap.NewNop())

	var buf bytes.Buffer
	count, err := archiver.Export(context.Background(),
		time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC),
		&buf)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	number, err := f.GetCellValue(summarySheet, "A2")
	require.NoError(t, err)
	assert.Equal(t, "REQ-2026-1A2B3C", number)

	item, err := f.GetCellValue(summarySheet, "B2")
	require.NoError(t, err)
	assert.Equal(t, "Scaffolding clamps", item)

	action, err := f.GetCellValue(historySheet, "B2")
	require.NoError(t, err)
	assert.Equal(t, "SUBMIT", action)

	action, err = f.GetCellValue(historySheet, "B3")
	require.NoError(t, err)
	assert.Equal(t, "APPROVE", action)
}

func TestArchiver_Export_Empty(t *testing.T) {
	archiver := NewArchiver(&mockRequestRepo{}, &mockHistoryRepo{}, zap.NewNop())

	var buf bytes.Buffer
	count, err := archiver.Export(context.Background(), time.Now().Add(-time.Hour), time.Now(), &buf)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.NotZero(t, buf.Len(), "an empty archive still carries the header sheets")
}
