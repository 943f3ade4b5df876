package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"chatpress/internal/domain/conversation"
	"chatpress/internal/infrastructure/metrics"
	"chatpress/internal/interfaces/httpserver/requests"
)

// ConversationService is the orchestrator surface the webhook layer needs.
type ConversationService interface {
	ProcessMessage(ctx context.Context, userID string, in conversation.Inbound, replyToken string) error
	HandleUserJoin(ctx context.Context, userID string, replyToken string) error
	HandleUserLeave(ctx context.Context, userID string) error
}

// WebhookHandler receives platform event batches and feeds them to the
// conversation orchestrator.
type WebhookHandler struct {
	service ConversationService
	log     zerolog.Logger
}

func NewWebhookHandler(service ConversationService, log zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		service: service,
		log:     log.With().Str("component", "webhook-handler").Logger(),
	}
}

// Handle processes one webhook delivery. The platform expects a 200 even when
// individual events fail; failures are logged and counted, never bounced.
func (h *WebhookHandler) Handle(c *gin.Context) {
	var envelope requests.WebhookEnvelope
	if err := c.ShouldBindJSON(&envelope); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unparseable event payload"})
		return
	}

	ctx := c.Request.Context()
	for _, event := range envelope.Events {
		h.handleEvent(ctx, event)
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *WebhookHandler) handleEvent(ctx context.Context, event requests.Event) {
	start := time.Now()
	status := "ok"
	defer func() {
		metrics.EventsTotal.WithLabelValues(event.Type, status).Inc()
		metrics.EventDuration.WithLabelValues(event.Type).Observe(time.Since(start).Seconds())
	}()

	var err error
	switch event.Type {
	case requests.EventTypeMessage:
		err = h.service.ProcessMessage(ctx, event.Source.UserID, toInbound(event.Message), event.ReplyToken)
	case requests.EventTypeFollow:
		err = h.service.HandleUserJoin(ctx, event.Source.UserID, event.ReplyToken)
	case requests.EventTypeUnfollow:
		err = h.service.HandleUserLeave(ctx, event.Source.UserID)
	default:
		status = "ignored"
		h.log.Debug().Str("event_type", event.Type).Msg("ignoring event type")
		return
	}
	if err != nil {
		status = "error"
		h.log.Error().Err(err).Str("event_type", event.Type).Str("user_id", event.Source.UserID).Msg("event handling failed")
	}
}

func toInbound(msg *requests.EventMessage) conversation.Inbound {
	if msg == nil {
		return conversation.Inbound{Type: conversation.InboundOther}
	}
	switch msg.Type {
	case requests.MessageTypeText:
		return conversation.Inbound{Type: conversation.InboundText, Text: msg.Text}
	case requests.MessageTypeImage:
		return conversation.Inbound{Type: conversation.InboundImage, MediaID: msg.ID}
	default:
		return conversation.Inbound{Type: conversation.InboundOther}
	}
}
