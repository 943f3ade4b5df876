// Package line implements the messaging-platform client against the LINE
// Messaging API.
package line

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"chatpress/internal/config"
	"chatpress/internal/domain/messaging"
)

// Client talks to the LINE reply and content endpoints.
type Client struct {
	api  *resty.Client
	data *resty.Client
	log  zerolog.Logger
}

// NewClient builds the HTTP clients for the reply API and the media content
// API, which live on separate hosts.
func NewClient(cfg *config.Config, log zerolog.Logger) *Client {
	auth := "Bearer " + cfg.ChannelToken

	api := resty.New().
		SetBaseURL(cfg.MessagingAPIBase).
		SetTimeout(cfg.MessagingTimeout).
		SetHeader("Authorization", auth)
	data := resty.New().
		SetBaseURL(cfg.MessagingDataBase).
		SetTimeout(cfg.MessagingTimeout).
		SetHeader("Authorization", auth)

	return &Client{
		api:  api,
		data: data,
		log:  log.With().Str("component", "line-client").Logger(),
	}
}

var _ messaging.Client = (*Client)(nil)

type replyRequest struct {
	ReplyToken string              `json:"replyToken"`
	Messages   []messaging.Message `json:"messages"`
}

// Reply sends up to messaging.MaxReplyMessages messages for replyToken.
// Exceeding the cap is a caller bug and is rejected before any network call.
func (c *Client) Reply(ctx context.Context, replyToken string, messages []messaging.Message) error {
	if len(messages) == 0 {
		return fmt.Errorf("reply requires at least one message")
	}
	if len(messages) > messaging.MaxReplyMessages {
		return fmt.Errorf("reply supports at most %d messages, got %d", messaging.MaxReplyMessages, len(messages))
	}

	resp, err := c.api.R().
		SetContext(ctx).
		SetBody(replyRequest{ReplyToken: replyToken, Messages: messages}).
		Post("/v2/bot/message/reply")
	if err != nil {
		return fmt.Errorf("send reply: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("send reply: status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

// DownloadMedia fetches the raw bytes of a media attachment.
func (c *Client) DownloadMedia(ctx context.Context, mediaID string) ([]byte, error) {
	resp, err := c.data.R().
		SetContext(ctx).
		Get(fmt.Sprintf("/v2/bot/message/%s/content", mediaID))
	if err != nil {
		return nil, fmt.Errorf("download media %s: %w", mediaID, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("download media %s: status %d", mediaID, resp.StatusCode())
	}
	return resp.Body(), nil
}
