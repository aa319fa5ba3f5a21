package request

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// slotDuration is the queue-depth multiplier for the completion estimate:
// each pending request ahead in the same category adds one slot.
const slotDuration = 15 * time.Minute

// Service orchestrates request submission and departmental processing.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates the request queue service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Submit queues a new request and records its completion estimate:
// now plus fifteen minutes per request already pending in the category.
func (s *Service) Submit(ctx context.Context, username, category, details string) (*Request, error) {
	if username == "" || category == "" || details == "" {
		return nil, ErrValidation
	}

	pending, err := s.repo.CountPending(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("estimating queue depth: %w", err)
	}

	req := &Request{
		Username:            username,
		Category:            category,
		Details:             details,
		Status:              StatusPending,
		EstimatedCompletion: time.Now().UTC().Add(time.Duration(pending) * slotDuration).Truncate(time.Second),
	}

	if err := s.repo.Create(ctx, req); err != nil {
		return nil, err
	}

	s.logger.Info("request submitted",
		"id", req.ID,
		"username", username,
		"category", category,
		"queue_depth", pending,
	)
	return req, nil
}

// ListForUser returns the caller's own requests, newest first.
func (s *Service) ListForUser(ctx context.Context, username string) ([]Request, error) {
	return s.repo.ListByUser(ctx, username)
}

// ListPending returns the departmental queue in submission order.
func (s *Service) ListPending(ctx context.Context) ([]Request, error) {
	return s.repo.ListPending(ctx)
}

// Process resolves a pending request as approved or rejected.
func (s *Service) Process(ctx context.Context, id string, action string) (*Request, error) {
	status := Status(action)
	if !status.IsTerminal() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}

	if err := s.repo.Process(ctx, id, status); err != nil {
		return nil, err
	}

	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("request processed", "id", id, "status", string(status))
	return req, nil
}
