package domain

import "errors"

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrUserBlocked          = errors.New("user is blocked")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrNotParticipant       = errors.New("user is not a conversation participant")
	ErrMessageNotFound      = errors.New("message not found")
	ErrCallNotFound         = errors.New("call not found")
	ErrInvalidCallState     = errors.New("invalid call state transition")
)
