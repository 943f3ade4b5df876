package requests

// Event types delivered by the messaging platform.
const (
	EventTypeMessage  = "message"
	EventTypeFollow   = "follow"
	EventTypeUnfollow = "unfollow"
)

// Message payload types inside a message event.
const (
	MessageTypeText  = "text"
	MessageTypeImage = "image"
)

// WebhookEnvelope is the inbound event batch. Signature verification of the
// envelope happens upstream of this service.
type WebhookEnvelope struct {
	Destination string  `json:"destination"`
	Events      []Event `json:"events" binding:"required"`
}

// Event is one platform event.
type Event struct {
	Type       string        `json:"type" binding:"required"`
	ReplyToken string        `json:"replyToken"`
	Source     Source        `json:"source"`
	Message    *EventMessage `json:"message,omitempty"`
}

// Source identifies who triggered the event.
type Source struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
}

// EventMessage is the message payload of a message event.
type EventMessage struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}
