package domain

// Notification is the payload handed to the external notification sink.
// Delivery is best-effort; the relay never waits on it.
type Notification struct {
	Recipient string `json:"recipient"`
	Sender    string `json:"sender"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Message   string `json:"message"`

	RelatedConversation string `json:"related_conversation,omitempty"`
	RelatedMessage      string `json:"related_message,omitempty"`
	RelatedCall         string `json:"related_call,omitempty"`
}

const (
	NotificationTypeMessage    = "message"
	NotificationTypeMissedCall = "missed_call"
)
