package service

import (
	"context"
	"fmt"
	"time"

	"github.com/cwrk-planet/relay-service/internal/domain"
	"github.com/cwrk-planet/relay-service/internal/postgres"

	"github.com/google/uuid"
)

// CallService owns the durable call record and its lifecycle transitions.
// The relay's signaling table is intentionally separate (pendency only).
type CallService struct {
	callRepo *postgres.CallRepository
}

func NewCallService(callRepo *postgres.CallRepository) *CallService {
	return &CallService{callRepo: callRepo}
}

// Initiate creates a ringing call record and returns it.
func (s *CallService) Initiate(ctx context.Context, callerID, recipientID string, callType domain.CallType) (*domain.Call, error) {
	c := &domain.Call{
		ID:          uuid.NewString(),
		CallerID:    callerID,
		RecipientID: recipientID,
		CallType:    callType,
		Status:      domain.CallInitiated,
		InitiatedAt: time.Now(),
	}
	if err := c.Ring(); err != nil {
		return nil, err
	}
	if err := s.callRepo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("callRepo.Create: %w", err)
	}
	return c, nil
}

func (s *CallService) Answer(ctx context.Context, id string) (*domain.Call, error) {
	return s.transition(ctx, id, func(c *domain.Call, now time.Time) error {
		return c.Answer(now)
	})
}

func (s *CallService) End(ctx context.Context, id, reason string) (*domain.Call, error) {
	return s.transition(ctx, id, func(c *domain.Call, now time.Time) error {
		return c.End(now, reason)
	})
}

func (s *CallService) Reject(ctx context.Context, id, reason string) (*domain.Call, error) {
	return s.transition(ctx, id, func(c *domain.Call, now time.Time) error {
		return c.Reject(now, reason)
	})
}

func (s *CallService) MarkAsMissed(ctx context.Context, id string) (*domain.Call, error) {
	return s.transition(ctx, id, func(c *domain.Call, now time.Time) error {
		return c.MarkMissed(now)
	})
}

func (s *CallService) transition(ctx context.Context, id string, apply func(*domain.Call, time.Time) error) (*domain.Call, error) {
	c, err := s.callRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(c, time.Now()); err != nil {
		return nil, err
	}
	if err := s.callRepo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}
