package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pageza/recipehub/backend/internal/adapter"
	"github.com/pageza/recipehub/backend/internal/approval"
	"github.com/pageza/recipehub/backend/internal/client"
	"github.com/pageza/recipehub/backend/internal/metrics"
	"github.com/pageza/recipehub/backend/internal/models"
	"github.com/pageza/recipehub/backend/internal/types"
)

// ModerationService tracks the pending queue and runs approve/decline calls.
// At most one call per recipe id is outstanding at a time.
type ModerationService struct {
	backend BackendStore
	adapter *adapter.Adapter
	audit   IAuditService
	metrics *metrics.Metrics
	log     logrus.FieldLogger
	timeout time.Duration

	mu       sync.Mutex
	loaded   bool
	pending  map[int]types.Recipe
	order    []int
	inFlight map[int]types.ModerationAction
	errs     map[int]string
	resolved map[int]types.ApprovalState
}

// NewModerationService creates a new ModerationService. audit may be nil.
func NewModerationService(backend BackendStore, a *adapter.Adapter, audit IAuditService, m *metrics.Metrics, log logrus.FieldLogger, timeout time.Duration) *ModerationService {
	if timeout <= 0 {
		timeout = client.DefaultTimeout
	}
	return &ModerationService{
		backend:  backend,
		adapter:  a,
		audit:    audit,
		metrics:  m,
		log:      log.WithField("component", "moderation"),
		timeout:  timeout,
		pending:  make(map[int]types.Recipe),
		inFlight: make(map[int]types.ModerationAction),
		errs:     make(map[int]string),
		resolved: make(map[int]types.ApprovalState),
	}
}

// ListPending reloads the queue of public recipes awaiting review and
// replaces the local pending set.
func (s *ModerationService) ListPending(ctx context.Context) (*types.Listing, error) {
	records, err := s.backend.ListPending(ctx)
	s.metrics.ObserveSource(types.SourceUserSubmitted, "list_pending", err)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending recipes: %w", err)
	}

	recipes, warnings := s.adapter.NormalizeAll(types.SourceUserSubmitted, records)
	for _, w := range warnings {
		s.log.WithError(w.Err).Warn("skipping malformed pending record")
	}

	queue := make([]types.Recipe, 0, len(recipes))
	s.mu.Lock()
	s.pending = make(map[int]types.Recipe, len(recipes))
	s.order = s.order[:0]
	for _, r := range recipes {
		if r.Visibility != types.VisibilityPublic || r.Approval != types.ApprovalPending {
			continue
		}
		if _, dup := s.pending[r.ID]; dup {
			continue
		}
		s.pending[r.ID] = r
		s.order = append(s.order, r.ID)
		// back in the queue after an owner edit
		delete(s.resolved, r.ID)
		queue = append(queue, r)
	}
	for id := range s.errs {
		if _, ok := s.pending[id]; !ok {
			delete(s.errs, id)
		}
	}
	s.loaded = true
	s.mu.Unlock()

	s.log.WithField("count", len(queue)).Debug("pending queue loaded")
	return &types.Listing{Recipes: queue, Warnings: warnings}, nil
}

// Approve marks a pending recipe approved
func (s *ModerationService) Approve(ctx context.Context, recipeID int, admin types.Caller) (*types.ModerationOutcome, error) {
	return s.moderate(ctx, recipeID, admin, types.ActionApprove)
}

// Decline marks a pending recipe declined
func (s *ModerationService) Decline(ctx context.Context, recipeID int, admin types.Caller) (*types.ModerationOutcome, error) {
	return s.moderate(ctx, recipeID, admin, types.ActionDecline)
}

// State reports the tracking state of one recipe
func (s *ModerationService) State(recipeID int) types.ItemState {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, pending := s.pending[recipeID]
	_, inFlight := s.inFlight[recipeID]
	return types.ItemState{
		RecipeID: recipeID,
		Pending:  pending,
		InFlight: inFlight,
		Error:    s.errs[recipeID],
	}
}

func (s *ModerationService) moderate(ctx context.Context, recipeID int, admin types.Caller, action types.ModerationAction) (*types.ModerationOutcome, error) {
	if !admin.IsAdmin() {
		return nil, &types.ForbiddenError{Reason: "only admins can moderate recipes"}
	}

	s.mu.Lock()
	loaded := s.loaded
	s.mu.Unlock()
	if !loaded {
		if _, err := s.ListPending(ctx); err != nil {
			return nil, err
		}
	}

	target, err := s.begin(recipeID, action)
	if types.IsNotFound(err) && action == types.ActionApprove && s.alreadyApproved(ctx, recipeID) {
		target, err = nil, nil
	}
	if err != nil {
		s.finish(ctx, recipeID, admin, action, metrics.Outcome(err), err)
		return nil, err
	}
	if target == nil {
		// already resolved the same way
		state := approval.Target(action)
		s.finish(ctx, recipeID, admin, action, "noop", nil)
		return &types.ModerationOutcome{RecipeID: recipeID, Action: action, State: state, Changed: false}, nil
	}

	// Once sent the call is not cancelled with the caller, only bounded.
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()
	if action == types.ActionApprove {
		err = s.backend.Approve(callCtx, recipeID)
	} else {
		err = s.backend.Decline(callCtx, recipeID)
	}
	err = normalizeModerationError(recipeID, err)

	s.mu.Lock()
	delete(s.inFlight, recipeID)
	if err != nil {
		s.errs[recipeID] = failureMessage(action, err)
	} else {
		delete(s.pending, recipeID)
		s.removeFromOrder(recipeID)
		delete(s.errs, recipeID)
		s.resolved[recipeID] = *target
	}
	s.mu.Unlock()

	s.finish(ctx, recipeID, admin, action, metrics.Outcome(err), err)
	if err != nil {
		return nil, fmt.Errorf("failed to %s recipe %d: %w", action, recipeID, err)
	}
	return &types.ModerationOutcome{RecipeID: recipeID, Action: action, State: *target, Changed: true}, nil
}

// begin claims recipeID for action. A nil state with a nil error means the
// recipe is already in the target state.
func (s *ModerationService) begin(recipeID int, action types.ModerationAction) (*types.ApprovalState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.inFlight[recipeID]; busy {
		return nil, &types.OperationInProgressError{RecipeID: recipeID, Action: action}
	}
	if state, ok := s.resolved[recipeID]; ok {
		r := types.Recipe{ID: recipeID, Source: types.SourceUserSubmitted, Visibility: types.VisibilityPublic, Approval: state}
		if _, _, err := approval.Apply(r, action); err != nil {
			return nil, err
		}
		return nil, nil
	}
	r, ok := s.pending[recipeID]
	if !ok {
		return nil, &types.NotFoundError{RecipeID: recipeID}
	}
	state, _, err := approval.Apply(r, action)
	if err != nil {
		return nil, err
	}

	s.inFlight[recipeID] = action
	delete(s.errs, recipeID)
	return &state, nil
}

// alreadyApproved looks recipeID up in the approved listing and remembers
// a hit. Declined recipes have no listing to check.
func (s *ModerationService) alreadyApproved(ctx context.Context, recipeID int) bool {
	records, err := s.backend.ListApproved(ctx)
	s.metrics.ObserveSource(types.SourceUserSubmitted, "list_approved", err)
	if err != nil {
		s.log.WithError(err).WithField("recipe_id", recipeID).Debug("approved lookup failed")
		return false
	}

	recipes, _ := s.adapter.NormalizeAll(types.SourceUserSubmitted, records)
	for _, r := range recipes {
		if r.ID != recipeID {
			continue
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, busy := s.inFlight[recipeID]; busy {
			return false
		}
		s.resolved[recipeID] = types.ApprovalApproved
		return true
	}
	return false
}

func (s *ModerationService) removeFromOrder(recipeID int) {
	for i, id := range s.order {
		if id == recipeID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}

// finish logs, counts and audits a terminal outcome
func (s *ModerationService) finish(ctx context.Context, recipeID int, admin types.Caller, action types.ModerationAction, label string, err error) {
	s.metrics.ObserveModeration(action, label)

	entry := s.log.WithFields(logrus.Fields{
		"recipe_id": recipeID,
		"action":    action,
		"admin_id":  admin.UserID,
		"outcome":   label,
	})
	if err != nil {
		entry.WithError(err).Warn("moderation failed")
	} else {
		entry.Info("moderation finished")
	}

	if s.audit == nil {
		return
	}
	event := &models.ModerationEvent{
		RecipeID:    recipeID,
		Action:      string(action),
		AdminUserID: admin.UserID,
		Outcome:     label,
	}
	if err != nil {
		event.Message = err.Error()
	}
	if auditErr := s.audit.Record(context.WithoutCancel(ctx), event); auditErr != nil {
		entry.WithError(auditErr).Error("failed to record moderation event")
	}
}

// normalizeModerationError turns the store's 404 into NotFoundError
func normalizeModerationError(recipeID int, err error) error {
	var serverErr *types.ServerError
	if errors.As(err, &serverErr) && serverErr.Status == http.StatusNotFound {
		return &types.NotFoundError{RecipeID: recipeID}
	}
	return err
}

func failureMessage(action types.ModerationAction, err error) string {
	var (
		netErr    *types.NetworkError
		serverErr *types.ServerError
	)
	switch {
	case types.IsNotFound(err):
		return "Recipe not found or already " + string(action) + "d."
	case errors.As(err, &netErr):
		return "Could not reach the recipe server. Try again."
	case errors.As(err, &serverErr) && serverErr.Message != "":
		return serverErr.Message
	default:
		return "Failed to " + string(action) + " recipe."
	}
}
