package conversation

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"chatpress/internal/domain/apperrors"
	"chatpress/internal/domain/image"
	"chatpress/internal/domain/messaging"
	"chatpress/internal/domain/publisher"
)

// Dispatching is the dispatcher dependency of the orchestrator.
type Dispatching interface {
	Dispatch(ctx context.Context, userID string, st *State, in Inbound) (Result, error)
}

// Service orchestrates one inbound event end to end: load state, dispatch,
// persist at most once, reply. State is read once at the start and written
// at most once at the end; there is no partial persistence.
type Service struct {
	store      SessionStore
	dispatcher Dispatching
	messenger  messaging.Client
	storage    image.TempStorage
	publisher  publisher.Publisher
	log        zerolog.Logger
	now        func() time.Time
}

// NewService constructs the orchestrator.
func NewService(
	store SessionStore,
	dispatcher Dispatching,
	messenger messaging.Client,
	storage image.TempStorage,
	pub publisher.Publisher,
	log zerolog.Logger,
) *Service {
	return &Service{
		store:      store,
		dispatcher: dispatcher,
		messenger:  messenger,
		storage:    storage,
		publisher:  pub,
		log:        log.With().Str("component", "conversation-service").Logger(),
		now:        time.Now,
	}
}

// ProcessMessage handles one inbound message from userID and replies through
// replyToken. Every failure path still produces a text reply; there is no
// separate error channel to the user.
func (s *Service) ProcessMessage(ctx context.Context, userID string, in Inbound, replyToken string) error {
	st, err := s.store.Get(ctx, userID)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("load session failed")
		s.replyText(ctx, replyToken, MsgTryAgainLater)
		return apperrors.NewExternal("session-store", "get", err)
	}
	if st == nil {
		// First contact, or the retention window expired the record.
		st = NewState(s.now())
	}

	res, err := s.dispatcher.Dispatch(ctx, userID, st, in)
	if err != nil {
		// Validation and processing failures never reach here; anything
		// else is an internal fault. The store is left untouched.
		s.log.Error().Err(err).Str("user_id", userID).Str("step", st.Step.String()).Msg("dispatch fault")
		s.replyText(ctx, replyToken, MsgStartOver)
		return err
	}

	if res.State != nil {
		if err := s.store.Set(ctx, userID, res.State); err != nil {
			if errors.Is(err, ErrVersionConflict) {
				s.log.Warn().Str("user_id", userID).Msg("concurrent write detected, dropping update")
				s.replyText(ctx, replyToken, MsgWriteConflict)
				return nil
			}
			s.log.Error().Err(err).Str("user_id", userID).Msg("persist session failed")
			s.replyText(ctx, replyToken, MsgTryAgainLater)
			return apperrors.NewExternal("session-store", "set", err)
		}
	}

	if res.Post != nil {
		if err := s.publisher.Publish(ctx, *res.Post); err != nil {
			// The conversation already completed for the user; the
			// downstream commit owns its own retries.
			s.log.Error().Err(err).Str("user_id", userID).Msg("publish hand-off failed")
		}
	}

	s.cleanup(ctx, res.CleanupKeys)

	return s.reply(ctx, replyToken, res.Replies)
}

// HandleUserJoin greets a user on first contact and provisions a fresh idle
// session.
func (s *Service) HandleUserJoin(ctx context.Context, userID string, replyToken string) error {
	if err := s.store.ResetToIdle(ctx, userID); err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("provision session failed")
		return apperrors.NewExternal("session-store", "reset", err)
	}
	return s.reply(ctx, replyToken, []messaging.Message{messaging.NewText(MsgWelcome)})
}

// HandleUserLeave removes the session when the user unregisters.
func (s *Service) HandleUserLeave(ctx context.Context, userID string) error {
	if err := s.store.Delete(ctx, userID); err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("delete session failed")
		return apperrors.NewExternal("session-store", "delete", err)
	}
	return nil
}

func (s *Service) reply(ctx context.Context, replyToken string, messages []messaging.Message) error {
	if len(messages) == 0 {
		return nil
	}
	if err := s.messenger.Reply(ctx, replyToken, messages); err != nil {
		// No automatic retry; backoff belongs to the messaging client.
		s.log.Error().Err(err).Msg("reply failed")
		return apperrors.NewExternal("messaging", "reply", err)
	}
	return nil
}

func (s *Service) replyText(ctx context.Context, replyToken, text string) {
	if err := s.messenger.Reply(ctx, replyToken, []messaging.Message{messaging.NewText(text)}); err != nil {
		s.log.Error().Err(err).Msg("failure reply not delivered")
	}
}

// cleanup removes temp-storage objects best effort. Failures are logged and
// swallowed so partial cleanup never blocks the conversation.
func (s *Service) cleanup(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := s.storage.Cleanup(ctx, key); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("temp image cleanup failed")
		}
	}
}
