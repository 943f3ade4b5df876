// Package publish contains the hand-off of finished posts to the downstream
// commit component.
package publish

import (
	"context"

	"github.com/rs/zerolog"

	"chatpress/internal/domain/publisher"
)

// LogPublisher acknowledges finished posts and records them for operators.
// The component that commits posts to the content repository consumes them
// out of band; this service's responsibility ends at the hand-off.
type LogPublisher struct {
	log zerolog.Logger
}

// NewLogPublisher constructs the pass-through publisher.
func NewLogPublisher(log zerolog.Logger) *LogPublisher {
	return &LogPublisher{log: log.With().Str("component", "publisher").Logger()}
}

var _ publisher.Publisher = (*LogPublisher)(nil)

func (p *LogPublisher) Publish(_ context.Context, post publisher.Post) error {
	p.log.Info().
		Str("user_id", post.UserID).
		Str("title", post.Title).
		Str("image_path", post.ImagePath).
		Strs("tags", post.Tags).
		Time("completed_at", post.CompletedAt).
		Msg("post queued for publishing")
	return nil
}
