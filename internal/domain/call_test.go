package domain

import (
	"errors"
	"testing"
	"time"
)

func newRingingCall(t *testing.T) *Call {
	t.Helper()
	c := &Call{
		ID:          "c1",
		CallerID:    "alice",
		RecipientID: "bob",
		CallType:    CallTypeVideo,
		Status:      CallInitiated,
		InitiatedAt: time.Now(),
	}
	if err := c.Ring(); err != nil {
		t.Fatalf("Ring: %v", err)
	}
	return c
}

func TestCallAnswerThenEndComputesDuration(t *testing.T) {
	c := newRingingCall(t)

	answered := time.Now()
	if err := c.Answer(answered); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if c.Status != CallActive {
		t.Fatalf("expected active, got %v", c.Status)
	}

	ended := answered.Add(95 * time.Second)
	if err := c.End(ended, "ended"); err != nil {
		t.Fatalf("End: %v", err)
	}
	if c.Status != CallEnded {
		t.Fatalf("expected ended, got %v", c.Status)
	}
	if c.Duration == nil || *c.Duration != 95 {
		t.Fatalf("expected duration 95s, got %v", c.Duration)
	}
	if c.EndReason == nil || *c.EndReason != "ended" {
		t.Fatalf("expected end reason recorded, got %v", c.EndReason)
	}
}

func TestCallEndWithoutAnswerHasNoDuration(t *testing.T) {
	c := newRingingCall(t)
	if err := c.End(time.Now(), "disconnect"); err != nil {
		t.Fatalf("End: %v", err)
	}
	if c.Duration != nil {
		t.Fatalf("unanswered call must not have a duration, got %v", *c.Duration)
	}
}

func TestCallInvalidTransitions(t *testing.T) {
	c := newRingingCall(t)
	if err := c.End(time.Now(), "ended"); err != nil {
		t.Fatalf("End: %v", err)
	}

	if err := c.Answer(time.Now()); !errors.Is(err, ErrInvalidCallState) {
		t.Fatalf("answering an ended call: expected ErrInvalidCallState, got %v", err)
	}
	if err := c.End(time.Now(), "again"); !errors.Is(err, ErrInvalidCallState) {
		t.Fatalf("ending an ended call: expected ErrInvalidCallState, got %v", err)
	}
	if err := c.Reject(time.Now(), "late"); !errors.Is(err, ErrInvalidCallState) {
		t.Fatalf("rejecting an ended call: expected ErrInvalidCallState, got %v", err)
	}
	if err := c.MarkMissed(time.Now()); !errors.Is(err, ErrInvalidCallState) {
		t.Fatalf("missing an ended call: expected ErrInvalidCallState, got %v", err)
	}
}

func TestCallRejectAfterAnswerFails(t *testing.T) {
	c := newRingingCall(t)
	if err := c.Answer(time.Now()); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if err := c.Reject(time.Now(), "declined"); !errors.Is(err, ErrInvalidCallState) {
		t.Fatalf("expected ErrInvalidCallState, got %v", err)
	}
	if err := c.MarkMissed(time.Now()); !errors.Is(err, ErrInvalidCallState) {
		t.Fatalf("expected ErrInvalidCallState, got %v", err)
	}
}

func TestCallMarkMissed(t *testing.T) {
	c := newRingingCall(t)
	if err := c.MarkMissed(time.Now()); err != nil {
		t.Fatalf("MarkMissed: %v", err)
	}
	if c.Status != CallMissed {
		t.Fatalf("expected missed, got %v", c.Status)
	}
	if c.EndReason == nil || *c.EndReason != "missed" {
		t.Fatalf("expected reason missed, got %v", c.EndReason)
	}
}

func TestRingRequiresInitiated(t *testing.T) {
	c := newRingingCall(t)
	if err := c.Ring(); !errors.Is(err, ErrInvalidCallState) {
		t.Fatalf("expected ErrInvalidCallState, got %v", err)
	}
}
