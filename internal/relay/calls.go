package relay

import (
	"context"
	"errors"
	"log/slog"

	"github.com/cwrk-planet/relay-service/internal/domain"
)

func (r *Router) handleInitiateCall(ctx context.Context, c Conn, p InitiateCallPayload) {
	uid := c.UserID()

	target, ok := r.presence.Lookup(p.TargetID)
	if !ok {
		_ = c.Send(Event{
			Type:    TypeCallRejected,
			Payload: CallClosedPayload{Reason: "User offline"},
		})
		return
	}

	callType := domain.CallType(p.CallType)
	if callType != domain.CallTypeVideo {
		callType = domain.CallTypeAudio
	}

	call, err := r.calls.Initiate(ctx, uid, p.TargetID, callType)
	if err != nil {
		slog.Error("call initiate failed", "caller", uid, "recipient", p.TargetID, "err", err)
		_ = c.Send(Event{
			Type:    TypeCallRejected,
			Payload: CallClosedPayload{Reason: "Call failed"},
		})
		return
	}

	r.sessions.Create(CallSession{
		ID:          call.ID,
		CallerID:    uid,
		RecipientID: p.TargetID,
		CallType:    callType,
	})

	_ = target.Send(Event{
		Type: TypeIncomingCall,
		Payload: IncomingCallPayload{
			CallID:   call.ID,
			CallerID: uid,
			CallType: string(callType),
			Offer:    p.Offer,
		},
	})
}

// handleAnswerCall relays the answer to the caller. The session stays in
// the table: ICE candidates may still follow, removal happens on end or
// reject only.
func (r *Router) handleAnswerCall(ctx context.Context, c Conn, p AnswerCallPayload) {
	sess, ok := r.sessions.Get(p.CallID)
	if !ok {
		return
	}

	if caller, present := r.presence.Lookup(sess.CallerID); present {
		_ = caller.Send(Event{
			Type:    TypeCallAnswered,
			Payload: CallAnsweredPayload{CallID: sess.ID, Answer: p.Answer},
		})
	}

	if _, err := r.calls.Answer(ctx, sess.ID); err != nil {
		slog.Warn("call answer transition failed", "call", sess.ID, "err", err)
	}
}

func (r *Router) handleRejectCall(ctx context.Context, c Conn, callID string) {
	sess, ok := r.sessions.Remove(callID)
	if !ok {
		return
	}

	if other, present := r.presence.Lookup(sess.Other(c.UserID())); present {
		_ = other.Send(Event{
			Type:    TypeCallRejected,
			Payload: CallClosedPayload{CallID: sess.ID, Reason: "declined"},
		})
	}

	if _, err := r.calls.Reject(ctx, sess.ID, "declined"); err != nil {
		slog.Warn("call reject transition failed", "call", sess.ID, "err", err)
	}
}

func (r *Router) handleEndCall(ctx context.Context, c Conn, callID string) {
	uid := c.UserID()

	sess, ok := r.sessions.Remove(callID)
	if !ok {
		return
	}

	if other, present := r.presence.Lookup(sess.Other(uid)); present {
		_ = other.Send(Event{
			Type:    TypeCallEnded,
			Payload: CallClosedPayload{CallID: sess.ID, Reason: "ended"},
		})
	}

	r.closeCallRecord(ctx, sess, uid)
}

// closeCallRecord resolves the durable record for a hangup. A caller
// abandoning a never-answered call produces a missed call (plus a
// best-effort notification when the recipient is gone); anything else is a
// plain end.
func (r *Router) closeCallRecord(ctx context.Context, sess CallSession, enderID string) {
	if enderID == sess.CallerID {
		if _, err := r.calls.MarkAsMissed(ctx, sess.ID); err == nil {
			if _, present := r.presence.Lookup(sess.RecipientID); !present {
				r.notify(domain.Notification{
					Recipient:   sess.RecipientID,
					Sender:      sess.CallerID,
					Type:        domain.NotificationTypeMissedCall,
					Title:       "Missed call",
					Message:     "You missed a " + string(sess.CallType) + " call",
					RelatedCall: sess.ID,
				})
			}
			return
		} else if !errors.Is(err, domain.ErrInvalidCallState) {
			slog.Warn("mark missed failed", "call", sess.ID, "err", err)
			return
		}
		// already answered, fall through to a normal end
	}
	if _, err := r.calls.End(ctx, sess.ID, "ended"); err != nil {
		slog.Warn("call end transition failed", "call", sess.ID, "err", err)
	}
}

// handleICECandidate is a stateless point-to-point relay; an absent target
// drops the candidate silently.
func (r *Router) handleICECandidate(c Conn, p ICECandidatePayload) {
	target, ok := r.presence.Lookup(p.TargetID)
	if !ok {
		return
	}
	_ = target.Send(Event{
		Type: TypeICECandidate,
		Payload: ICERelayPayload{
			CallID:    p.CallID,
			SenderID:  c.UserID(),
			Candidate: p.Candidate,
		},
	})
}
