// Package messaging defines the port to the chat platform the conversation
// engine replies through.
package messaging

import "context"

// MaxReplyMessages is the platform cap on messages per reply call. Exceeding
// it is a caller error, rejected before any network call.
const MaxReplyMessages = 5

// MessageType discriminates outbound message payloads.
type MessageType string

const (
	MessageTypeText  MessageType = "text"
	MessageTypeImage MessageType = "image"
)

// Message is one outbound chat message, either plain text or an image
// reference.
type Message struct {
	Type       MessageType `json:"type"`
	Text       string      `json:"text,omitempty"`
	OriginalURL string     `json:"originalContentUrl,omitempty"`
	PreviewURL  string     `json:"previewImageUrl,omitempty"`
}

// NewText builds a plain-text message.
func NewText(text string) Message {
	return Message{Type: MessageTypeText, Text: text}
}

// NewImage builds an image-reference message.
func NewImage(originalURL, previewURL string) Message {
	return Message{Type: MessageTypeImage, OriginalURL: originalURL, PreviewURL: previewURL}
}

// Client is the messaging-platform collaborator.
type Client interface {
	// Reply sends 1..MaxReplyMessages messages in response to replyToken.
	Reply(ctx context.Context, replyToken string, messages []Message) error
	// DownloadMedia fetches the raw bytes of a media attachment by its
	// platform media ID.
	DownloadMedia(ctx context.Context, mediaID string) ([]byte, error)
}
