package domain

import "time"

type CallType string

const (
	CallTypeAudio CallType = "audio"
	CallTypeVideo CallType = "video"
)

type CallStatus string

const (
	CallInitiated CallStatus = "initiated"
	CallRinging   CallStatus = "ringing"
	CallActive    CallStatus = "active"
	CallEnded     CallStatus = "ended"
	CallRejected  CallStatus = "rejected"
	CallMissed    CallStatus = "missed"
	CallDeclined  CallStatus = "declined"
	CallBusy      CallStatus = "busy"
	CallFailed    CallStatus = "failed"
)

// Call is the durable call record. It owns the full lifecycle, unlike the
// relay's in-memory session table which only tracks signaling pendency.
type Call struct {
	ID          string     `db:"id"`
	CallerID    string     `db:"caller_id"`
	RecipientID string     `db:"recipient_id"`
	CallType    CallType   `db:"call_type"`
	Status      CallStatus `db:"status"`
	InitiatedAt time.Time  `db:"initiated_at"`
	AnsweredAt  *time.Time `db:"answered_at"`
	EndedAt     *time.Time `db:"ended_at"`
	EndReason   *string    `db:"end_reason"`
	Duration    *int64     `db:"duration"` // seconds, answered calls only
}

func (c *Call) terminal() bool {
	switch c.Status {
	case CallEnded, CallRejected, CallMissed, CallDeclined, CallBusy, CallFailed:
		return true
	}
	return false
}

// Ring moves a freshly initiated call to ringing.
func (c *Call) Ring() error {
	if c.Status != CallInitiated {
		return ErrInvalidCallState
	}
	c.Status = CallRinging
	return nil
}

// Answer activates a ringing (or just-initiated) call.
func (c *Call) Answer(now time.Time) error {
	if c.Status != CallInitiated && c.Status != CallRinging {
		return ErrInvalidCallState
	}
	c.Status = CallActive
	c.AnsweredAt = &now
	return nil
}

// End terminates a call. Answered calls get a computed duration.
func (c *Call) End(now time.Time, reason string) error {
	if c.terminal() {
		return ErrInvalidCallState
	}
	c.Status = CallEnded
	c.EndedAt = &now
	c.EndReason = &reason
	if c.AnsweredAt != nil {
		d := int64(now.Sub(*c.AnsweredAt) / time.Second)
		c.Duration = &d
	}
	return nil
}

// Reject declines a call that was never answered.
func (c *Call) Reject(now time.Time, reason string) error {
	if c.Status != CallInitiated && c.Status != CallRinging {
		return ErrInvalidCallState
	}
	c.Status = CallRejected
	c.EndedAt = &now
	c.EndReason = &reason
	return nil
}

// MarkMissed closes an unanswered call as missed.
func (c *Call) MarkMissed(now time.Time) error {
	if c.Status != CallInitiated && c.Status != CallRinging {
		return ErrInvalidCallState
	}
	c.Status = CallMissed
	c.EndedAt = &now
	reason := "missed"
	c.EndReason = &reason
	return nil
}
