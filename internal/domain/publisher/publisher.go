// Package publisher defines the downstream hand-off for finished posts. The
// component that commits the post to a repository lives outside this service;
// only the contract is declared here.
package publisher

import (
	"context"
	"time"
)

// Post is the finished, validated record handed off for persistence.
type Post struct {
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	ImageKey    string    `json:"image_key"`
	ImagePath   string    `json:"image_path"`
	Tags        []string  `json:"tags"`
	CompletedAt time.Time `json:"completed_at"`
}

// Publisher receives completed posts.
type Publisher interface {
	Publish(ctx context.Context, post Post) error
}
