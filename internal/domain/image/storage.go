package image

import "context"

// TempStorage is the object-storage collaborator holding image bytes until
// the finished post is committed downstream.
type TempStorage interface {
	// Upload stores data under filename and returns an opaque storage key.
	Upload(ctx context.Context, filename string, data []byte, contentType string) (string, error)
	// Download fetches the bytes for a previously returned key.
	Download(ctx context.Context, key string) ([]byte, error)
	// Cleanup removes the object. Best effort: callers log failures and
	// never let them block the conversation.
	Cleanup(ctx context.Context, key string) error
}
