package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipehub/backend/internal/adapter"
	"github.com/pageza/recipehub/backend/internal/logging"
	"github.com/pageza/recipehub/backend/internal/mocks"
	"github.com/pageza/recipehub/backend/internal/models"
	"github.com/pageza/recipehub/backend/internal/testhelpers"
	"github.com/pageza/recipehub/backend/internal/types"
)

func newModeration(backend *mocks.MockBackendStore, audit IAuditService) *ModerationService {
	return NewModerationService(backend, adapter.New(adapter.DefaultRewrite), audit, nil, logging.Discard(), time.Second)
}

func pendingQueue() []json.RawMessage {
	return []json.RawMessage{
		testhelpers.BackendRecord(7, 3, "Stew", "Public", 0),
		testhelpers.BackendRecord(9, 4, "Pie", "Public", 0),
	}
}

func pendingIDs(t *testing.T, svc *ModerationService) []int {
	t.Helper()
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return append([]int(nil), svc.order...)
}

func TestListPending(t *testing.T) {
	backend := new(mocks.MockBackendStore)
	backend.On("ListPending", mock.Anything).Return(pendingQueue(), nil)
	svc := newModeration(backend, nil)

	listing, err := svc.ListPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"user:7", "user:9"}, keys(listing.Recipes))
	assert.True(t, svc.State(7).Pending)
}

func TestDecline_UnknownRecipeLeavesQueueUnchanged(t *testing.T) {
	backend := new(mocks.MockBackendStore)
	backend.On("ListPending", mock.Anything).Return(pendingQueue(), nil)
	svc := newModeration(backend, nil)

	_, err := svc.Decline(context.Background(), 42, admin)

	var notFound *types.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, 42, notFound.RecipeID)
	assert.Equal(t, []int{7, 9}, pendingIDs(t, svc))
	backend.AssertNotCalled(t, "Decline", mock.Anything, mock.Anything)
}

func TestApprove_RemovesFromQueueWithoutReload(t *testing.T) {
	backend := new(mocks.MockBackendStore)
	backend.On("ListPending", mock.Anything).Return(pendingQueue(), nil).Once()
	backend.On("Approve", mock.Anything, 7).Return(nil).Once()
	svc := newModeration(backend, nil)

	outcome, err := svc.Approve(context.Background(), 7, admin)
	require.NoError(t, err)
	assert.True(t, outcome.Changed)
	assert.Equal(t, types.ApprovalApproved, outcome.State)
	assert.Equal(t, []int{9}, pendingIDs(t, svc))
	assert.False(t, svc.State(7).Pending)
	backend.AssertNumberOfCalls(t, "ListPending", 1)
}

func TestApprove_ConcurrentCallsApplyOnce(t *testing.T) {
	backend := new(mocks.MockBackendStore)
	release := make(chan struct{})
	backend.On("ListPending", mock.Anything).Return(pendingQueue(), nil)
	backend.On("Approve", mock.Anything, 7).Run(func(mock.Arguments) { <-release }).Return(nil)
	svc := newModeration(backend, nil)
	_, err := svc.ListPending(context.Background())
	require.NoError(t, err)

	type result struct {
		outcome *types.ModerationOutcome
		err     error
	}
	first := make(chan result, 1)
	go func() {
		o, err := svc.Approve(context.Background(), 7, admin)
		first <- result{o, err}
	}()
	require.Eventually(t, func() bool { return svc.State(7).InFlight }, time.Second, 5*time.Millisecond)

	_, err = svc.Approve(context.Background(), 7, admin)
	var inProgress *types.OperationInProgressError
	require.ErrorAs(t, err, &inProgress)

	close(release)
	res := <-first
	require.NoError(t, res.err)
	assert.True(t, res.outcome.Changed)

	again, err := svc.Approve(context.Background(), 7, admin)
	require.NoError(t, err)
	assert.False(t, again.Changed)
	assert.Equal(t, types.ApprovalApproved, again.State)

	backend.AssertNumberOfCalls(t, "Approve", 1)
}

func TestDecline_AfterApproveIsInvalid(t *testing.T) {
	backend := new(mocks.MockBackendStore)
	backend.On("ListPending", mock.Anything).Return(pendingQueue(), nil)
	backend.On("Approve", mock.Anything, 7).Return(nil)
	svc := newModeration(backend, nil)

	_, err := svc.Approve(context.Background(), 7, admin)
	require.NoError(t, err)

	_, err = svc.Decline(context.Background(), 7, admin)
	var invalid *types.InvalidTransitionError
	assert.ErrorAs(t, err, &invalid)
	backend.AssertNotCalled(t, "Decline", mock.Anything, mock.Anything)
}

func TestApprove_BackendNotFound(t *testing.T) {
	backend := new(mocks.MockBackendStore)
	backend.On("ListPending", mock.Anything).Return(pendingQueue(), nil)
	backend.On("Approve", mock.Anything, 9).Return(&types.ServerError{Op: "approve recipe", Status: 404, Message: "Recipe not found or already approved."})
	svc := newModeration(backend, nil)

	_, err := svc.Approve(context.Background(), 9, admin)
	assert.True(t, types.IsNotFound(err))

	state := svc.State(9)
	assert.True(t, state.Pending)
	assert.False(t, state.InFlight)
	assert.Equal(t, "Recipe not found or already approved.", state.Error)
}

func TestApprove_AlreadyApprovedInEarlierRunIsNoop(t *testing.T) {
	backend := new(mocks.MockBackendStore)
	backend.On("ListPending", mock.Anything).Return([]json.RawMessage{}, nil)
	backend.On("ListApproved", mock.Anything).Return([]json.RawMessage{
		testhelpers.BackendRecord(7, 3, "Stew", "Public", 1),
	}, nil)
	svc := newModeration(backend, nil)

	outcome, err := svc.Approve(context.Background(), 7, admin)
	require.NoError(t, err)
	assert.False(t, outcome.Changed)
	assert.Equal(t, types.ApprovalApproved, outcome.State)

	// remembered afterwards
	_, err = svc.Approve(context.Background(), 7, admin)
	require.NoError(t, err)
	backend.AssertNumberOfCalls(t, "ListApproved", 1)
	backend.AssertNotCalled(t, "Approve", mock.Anything, mock.Anything)

	_, err = svc.Decline(context.Background(), 7, admin)
	var invalid *types.InvalidTransitionError
	assert.ErrorAs(t, err, &invalid)
}

func TestApprove_UnknownRecipeChecksApprovedListing(t *testing.T) {
	backend := new(mocks.MockBackendStore)
	backend.On("ListPending", mock.Anything).Return(pendingQueue(), nil)
	backend.On("ListApproved", mock.Anything).Return([]json.RawMessage{
		testhelpers.BackendRecord(8, 3, "Soup", "Public", 1),
	}, nil)
	svc := newModeration(backend, nil)

	_, err := svc.Approve(context.Background(), 42, admin)
	var notFound *types.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, 42, notFound.RecipeID)
	backend.AssertNotCalled(t, "Approve", mock.Anything, mock.Anything)
}

func TestApprove_ApprovedLookupFailureKeepsNotFound(t *testing.T) {
	backend := new(mocks.MockBackendStore)
	backend.On("ListPending", mock.Anything).Return(pendingQueue(), nil)
	backend.On("ListApproved", mock.Anything).Return(nil, &types.NetworkError{Op: "list approved recipes", Err: errors.New("refused")})
	svc := newModeration(backend, nil)

	_, err := svc.Approve(context.Background(), 42, admin)
	assert.True(t, types.IsNotFound(err))
}

func TestApprove_NetworkErrorRecordedPerItem(t *testing.T) {
	backend := new(mocks.MockBackendStore)
	backend.On("ListPending", mock.Anything).Return(pendingQueue(), nil)
	backend.On("Decline", mock.Anything, 7).Return(&types.NetworkError{Op: "decline recipe", Err: errors.New("timeout")}).Once()
	backend.On("Decline", mock.Anything, 7).Return(nil).Once()
	svc := newModeration(backend, nil)

	_, err := svc.Decline(context.Background(), 7, admin)
	var netErr *types.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.NotEmpty(t, svc.State(7).Error)
	assert.Empty(t, svc.State(9).Error)

	outcome, err := svc.Decline(context.Background(), 7, admin)
	require.NoError(t, err)
	assert.Equal(t, types.ApprovalDeclined, outcome.State)
	assert.Empty(t, svc.State(7).Error)
}

func TestApprove_NotCancelledWithCaller(t *testing.T) {
	backend := new(mocks.MockBackendStore)
	backend.On("ListPending", mock.Anything).Return(pendingQueue(), nil)
	backend.On("Approve", mock.Anything, 7).Return(nil).Run(func(args mock.Arguments) {
		ctx := args.Get(0).(context.Context)
		assert.NoError(t, ctx.Err())
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
	})
	svc := newModeration(backend, nil)
	_, err := svc.ListPending(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = svc.Approve(ctx, 7, admin)
	require.NoError(t, err)
}

func TestModeration_RequiresAdmin(t *testing.T) {
	backend := new(mocks.MockBackendStore)
	svc := newModeration(backend, nil)

	_, err := svc.Approve(context.Background(), 7, ann)
	var forbidden *types.ForbiddenError
	assert.ErrorAs(t, err, &forbidden)
	backend.AssertNotCalled(t, "ListPending", mock.Anything)
}

func TestModeration_WritesAudit(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	audit := NewAuditService(db)
	backend := new(mocks.MockBackendStore)
	backend.On("ListPending", mock.Anything).Return(pendingQueue(), nil)
	backend.On("Approve", mock.Anything, 7).Return(nil)
	svc := newModeration(backend, audit)

	_, err := svc.Approve(context.Background(), 7, admin)
	require.NoError(t, err)
	_, err = svc.Decline(context.Background(), 42, admin)
	require.Error(t, err)

	events, err := audit.List(context.Background(), models.ModerationEventFilters{})
	require.NoError(t, err)
	require.Len(t, events, 2)

	outcomes := map[int]string{}
	for _, e := range events {
		outcomes[e.RecipeID] = e.Outcome
		assert.Equal(t, admin.UserID, e.AdminUserID)
	}
	assert.Equal(t, map[int]string{7: "success", 42: "not_found"}, outcomes)
}

func TestModeration_AuditFailureDoesNotFailAction(t *testing.T) {
	audit := new(mocks.MockAuditService)
	audit.On("Record", mock.Anything, mock.Anything).Return(errors.New("disk full"))
	backend := new(mocks.MockBackendStore)
	backend.On("ListPending", mock.Anything).Return(pendingQueue(), nil)
	backend.On("Approve", mock.Anything, 7).Return(nil)

	_, err := newModeration(backend, audit).Approve(context.Background(), 7, admin)
	require.NoError(t, err)
	audit.AssertCalled(t, "Record", mock.Anything, mock.MatchedBy(func(e *models.ModerationEvent) bool {
		return e.RecipeID == 7 && e.Action == "approve"
	}))
}
