package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryan0dhankhar/crm/internal/domain"
)

func TestDealCreateDefaultsToFirstStage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	deal, err := f.deals.Create(ctx, CreateDealInput{Name: "Website redesign", Value: ptr(5000.0)})
	require.NoError(t, err)
	assert.Equal(t, ptr("stage_1"), deal.StageID)
	assert.Equal(t, 10, deal.Probability)
	assert.Equal(t, domain.DealStatusOpen, deal.Status)
	assert.Equal(t, domain.DefaultCurrency, deal.Currency)
	assert.Nil(t, deal.ActualCloseDate)
}

func TestDealCreateInTerminalStage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	deal, err := f.deals.Create(ctx, CreateDealInput{Name: "Signed", StageID: ptr("stage_5"), Probability: ptr(80)})
	require.NoError(t, err)
	assert.Equal(t, domain.DealStatusWon, deal.Status)
	assert.Equal(t, 80, deal.Probability, "explicit probability wins on create")
	require.NotNil(t, deal.ActualCloseDate)
}

func TestDealCreateValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.deals.Create(ctx, CreateDealInput{Name: "Negative", Value: ptr(-1.0)})
	msg, ok := domain.Message(err)
	require.True(t, ok)
	assert.Equal(t, "value must be at least 0", msg)

	_, err = f.deals.Create(ctx, CreateDealInput{Name: "Odd", ExpectedCloseDate: ptr("next tuesday")})
	msg, _ = domain.Message(err)
	assert.Equal(t, "expected_close_date must be an ISO-8601 date", msg)
}

func TestMoveStageWonThenReopen(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	deal, err := f.deals.Create(ctx, CreateDealInput{Name: "Renewal"})
	require.NoError(t, err)

	f.advance(24 * time.Hour)
	won, err := f.deals.MoveStage(ctx, deal.ID, "stage_5")
	require.NoError(t, err)
	assert.Equal(t, domain.DealStatusWon, won.Status)
	assert.Equal(t, 100, won.Probability)
	require.NotNil(t, won.ActualCloseDate)
	assert.Equal(t, domain.FormatTimestamp(epoch.Add(24*time.Hour)), *won.ActualCloseDate)

	reopened, err := f.deals.MoveStage(ctx, deal.ID, "stage_2")
	require.NoError(t, err)
	assert.Equal(t, domain.DealStatusOpen, reopened.Status)
	assert.Nil(t, reopened.ActualCloseDate)
	assert.Equal(t, 25, reopened.Probability)

	lost, err := f.deals.MoveStage(ctx, deal.ID, "stage_6")
	require.NoError(t, err)
	assert.Equal(t, domain.DealStatusLost, lost.Status)
	assert.NotNil(t, lost.ActualCloseDate)
}

func TestMoveStageOverwritesProbability(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	hot, err := f.pipeline.Create(ctx, CreateStageInput{Name: "Verbal yes", Probability: ptr(90)})
	require.NoError(t, err)

	deal, err := f.deals.Create(ctx, CreateDealInput{Name: "Expansion", Probability: ptr(10)})
	require.NoError(t, err)
	assert.Equal(t, 10, deal.Probability)

	moved, err := f.deals.MoveStage(ctx, deal.ID, hot.ID)
	require.NoError(t, err)
	assert.Equal(t, 90, moved.Probability)
	assert.Equal(t, domain.DealStatusOpen, moved.Status)
}

func TestMoveStageIsRepeatable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	deal, err := f.deals.Create(ctx, CreateDealInput{Name: "Twice"})
	require.NoError(t, err)

	first, err := f.deals.MoveStage(ctx, deal.ID, "stage_3")
	require.NoError(t, err)
	f.advance(time.Minute)
	second, err := f.deals.MoveStage(ctx, deal.ID, "stage_3")
	require.NoError(t, err)

	assert.NotEqual(t, first.UpdatedAt, second.UpdatedAt)
	second.UpdatedAt = first.UpdatedAt
	assert.Equal(t, first, second)
}

func TestMoveStageUnknownStage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	deal, err := f.deals.Create(ctx, CreateDealInput{Name: "Lost in space"})
	require.NoError(t, err)
	_, err = f.deals.MoveStage(ctx, deal.ID, "stage_5")
	require.NoError(t, err)

	moved, err := f.deals.MoveStage(ctx, deal.ID, "stage_nowhere")
	require.NoError(t, err)
	assert.Equal(t, ptr("stage_nowhere"), moved.StageID)
	assert.Equal(t, 0, moved.Probability)
	assert.Equal(t, domain.DealStatusOpen, moved.Status)
	assert.Nil(t, moved.ActualCloseDate)
}

func TestMoveStageUnknownStageStrict(t *testing.T) {
	t.Setenv("FLAG_STRICT_STAGE_TRANSITIONS", "true")
	ctx := context.Background()
	f := newFixture(t)

	deal, err := f.deals.Create(ctx, CreateDealInput{Name: "Strict"})
	require.NoError(t, err)

	_, err = f.deals.MoveStage(ctx, deal.ID, "stage_nowhere")
	assert.True(t, errors.Is(err, domain.ErrBadRequest))

	stored, err := f.deals.Get(ctx, deal.ID)
	require.NoError(t, err)
	assert.Equal(t, ptr("stage_1"), stored.StageID)
}

func TestMoveStageErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.deals.MoveStage(ctx, "deal_missing", "stage_1")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	deal, err := f.deals.Create(ctx, CreateDealInput{Name: "Blank"})
	require.NoError(t, err)
	_, err = f.deals.MoveStage(ctx, deal.ID, " ")
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestDealUpdateStageRunsTransition(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	deal, err := f.deals.Create(ctx, CreateDealInput{Name: "Via update", Value: ptr(100.0)})
	require.NoError(t, err)

	updated, err := f.deals.Update(ctx, deal.ID, UpdateDealInput{
		StageID: domain.Some("stage_6"),
		Value:   domain.Some(250.0),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.DealStatusLost, updated.Status)
	assert.Equal(t, 0, updated.Probability)
	assert.Equal(t, 250.0, updated.Value)
	assert.NotNil(t, updated.ActualCloseDate)

	_, err = f.deals.Update(ctx, deal.ID, UpdateDealInput{StageID: domain.Null[string]()})
	assert.True(t, errors.Is(err, domain.ErrBadRequest))

	kept, err := f.deals.Update(ctx, deal.ID, UpdateDealInput{Notes: domain.Some("lost on price")})
	require.NoError(t, err)
	assert.Equal(t, domain.DealStatusLost, kept.Status)
}

func TestPipelineBoard(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.deals.Create(ctx, CreateDealInput{Name: "A", Value: ptr(100.0)})
	require.NoError(t, err)
	_, err = f.deals.Create(ctx, CreateDealInput{Name: "B", Value: ptr(250.0)})
	require.NoError(t, err)
	_, err = f.deals.Create(ctx, CreateDealInput{Name: "C", Value: ptr(40.0), StageID: ptr("stage_3")})
	require.NoError(t, err)

	board, err := f.deals.Pipeline(ctx, domain.DealFilter{})
	require.NoError(t, err)
	require.Len(t, board, 6)

	assert.Equal(t, "stage_1", board[0].ID)
	assert.Len(t, board[0].Deals, 2)
	assert.Equal(t, 350.0, board[0].TotalValue)
	assert.Len(t, board[2].Deals, 1)
	assert.NotNil(t, board[1].Deals)
	assert.Empty(t, board[1].Deals)
}

func TestStageCreateAppendsAndInfersOutcome(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	before, err := f.pipeline.List(ctx)
	require.NoError(t, err)
	require.Len(t, before, 6)

	st, err := f.pipeline.Create(ctx, CreateStageInput{Name: "Closed Won"})
	require.NoError(t, err)
	assert.Equal(t, 7, st.Position)
	assert.Equal(t, domain.OutcomeWon, st.Outcome)
	assert.Equal(t, domain.DefaultStageColor, st.Color)

	after, err := f.pipeline.List(ctx)
	require.NoError(t, err)
	assert.Len(t, after, 7, "create must invalidate the cached stage list")

	renamed, err := f.pipeline.Update(ctx, st.ID, UpdateStageInput{Name: domain.Some("Signed"), Probability: domain.Some(95)})
	require.NoError(t, err)
	assert.Equal(t, "Signed", renamed.Name)
	assert.Equal(t, domain.OutcomeWon, renamed.Outcome, "renaming keeps the explicit outcome")

	_, err = f.pipeline.Update(ctx, st.ID, UpdateStageInput{Outcome: domain.Some("maybe")})
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestStageRenamedToClosedNameBecomesTerminal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	st, err := f.pipeline.Create(ctx, CreateStageInput{Name: "Won", Probability: ptr(100)})
	require.NoError(t, err)
	require.Equal(t, domain.OutcomeOpen, st.Outcome)

	renamed, err := f.pipeline.Update(ctx, st.ID, UpdateStageInput{Name: domain.Some("Closed Won")})
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeWon, renamed.Outcome)

	deal, err := f.deals.Create(ctx, CreateDealInput{Name: "Rollout"})
	require.NoError(t, err)
	moved, err := f.deals.MoveStage(ctx, deal.ID, st.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DealStatusWon, moved.Status)
	assert.NotNil(t, moved.ActualCloseDate)

	explicit, err := f.pipeline.Update(ctx, st.ID, UpdateStageInput{Name: domain.Some("Closed Lost"), Outcome: domain.Some(domain.OutcomeOpen)})
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeOpen, explicit.Outcome, "an explicit outcome wins over the name")
}

func TestStageReorder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	stages, err := f.pipeline.Reorder(ctx, ReorderStagesInput{StageIDs: []string{"stage_6", "stage_5", "stage_1"}})
	require.NoError(t, err)

	positions := map[string]int{}
	for _, st := range stages {
		positions[st.ID] = st.Position
	}
	assert.Equal(t, 1, positions["stage_6"])
	assert.Equal(t, 2, positions["stage_5"])
	assert.Equal(t, 1, positions["stage_1"])
	assert.Equal(t, 3, positions["stage_3"], "omitted stages keep their position")

	_, err = f.pipeline.Reorder(ctx, ReorderStagesInput{})
	assert.True(t, errors.Is(err, domain.ErrBadRequest))

	unchanged, err := f.pipeline.Reorder(ctx, ReorderStagesInput{StageIDs: []string{}})
	require.NoError(t, err)
	assert.Len(t, unchanged, 6)
	assert.Equal(t, stages, unchanged)
}

func TestStageDeleteGuard(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	deal, err := f.deals.Create(ctx, CreateDealInput{Name: "Anchor", StageID: ptr("stage_2")})
	require.NoError(t, err)

	err = f.pipeline.Delete(ctx, "stage_2")
	require.Error(t, err)
	msg, _ := domain.Message(err)
	assert.Equal(t, "Cannot delete stage with 1 deals. Move or delete deals first.", msg)

	stages, err := f.pipeline.List(ctx)
	require.NoError(t, err)
	assert.Len(t, stages, 6)
	stored, err := f.deals.Get(ctx, deal.ID)
	require.NoError(t, err)
	assert.Equal(t, ptr("stage_2"), stored.StageID)

	require.NoError(t, f.pipeline.Delete(ctx, "stage_4"))
	stages, err = f.pipeline.List(ctx)
	require.NoError(t, err)
	require.Len(t, stages, 5)
	for _, st := range stages {
		assert.NotEqual(t, "stage_4", st.ID)
	}

	assert.True(t, errors.Is(f.pipeline.Delete(ctx, "stage_4"), domain.ErrNotFound))
}
