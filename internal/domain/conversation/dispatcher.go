package conversation

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"chatpress/internal/config"
	"chatpress/internal/domain/apperrors"
	"chatpress/internal/domain/image"
	"chatpress/internal/domain/messaging"
	"chatpress/internal/domain/publisher"
)

// InboundType discriminates inbound message payloads.
type InboundType string

const (
	InboundText  InboundType = "text"
	InboundImage InboundType = "image"
	InboundOther InboundType = "other"
)

// Inbound is one normalized inbound chat message.
type Inbound struct {
	Type    InboundType
	Text    string
	MediaID string
}

// Result is the uniform outcome of dispatching one message: an optional new
// state (nil when nothing changed), the reply to send, and completion
// side effects for the orchestrator.
type Result struct {
	// State is the new state to persist, or nil for no state change.
	State *State
	// Replies is what to send back, 1..messaging.MaxReplyMessages entries.
	Replies []messaging.Message
	// Post is set when an affirmative confirmation completed the flow.
	Post *publisher.Post
	// CleanupKeys lists temp-storage objects that are no longer referenced
	// and may be removed best-effort.
	CleanupKeys []string
}

func textReply(texts ...string) []messaging.Message {
	msgs := make([]messaging.Message, 0, len(texts))
	for _, t := range texts {
		msgs = append(msgs, messaging.NewText(t))
	}
	return msgs
}

// Processor is the image-pipeline dependency of the dispatcher.
type Processor interface {
	Process(ctx context.Context, raw []byte) (*image.Processed, error)
}

// MediaDownloader is the slice of the messaging client the dispatcher needs.
type MediaDownloader interface {
	DownloadMedia(ctx context.Context, mediaID string) ([]byte, error)
}

// Dispatcher maps (step, inbound message) to (optional new state, reply).
// Validation and processing failures are converted to replies here; only
// internal faults escape as errors.
type Dispatcher struct {
	cfg      *config.Config
	pipeline Processor
	media    MediaDownloader
	log      zerolog.Logger
	now      func() time.Time
}

// NewDispatcher constructs the dispatcher.
func NewDispatcher(cfg *config.Config, pipeline Processor, media MediaDownloader, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		cfg:      cfg,
		pipeline: pipeline,
		media:    media,
		log:      log.With().Str("component", "dispatcher").Logger(),
		now:      time.Now,
	}
}

// Dispatch handles one inbound message for userID against the current state.
func (d *Dispatcher) Dispatch(ctx context.Context, userID string, st *State, in Inbound) (Result, error) {
	if missing := st.MissingFields(); len(missing) > 0 {
		// The step invariant is broken; this state was never produced by
		// a validated transition.
		return Result{}, apperrors.NewTransition(st.Step.String(), st.Step.String())
	}

	switch in.Type {
	case InboundText:
		return d.dispatchText(ctx, userID, st, in.Text)
	case InboundImage:
		return d.dispatchImage(ctx, st, in.MediaID)
	default:
		return Result{Replies: textReply(MsgUnsupportedType)}, nil
	}
}

func (d *Dispatcher) dispatchText(ctx context.Context, userID string, st *State, text string) (Result, error) {
	switch ParseCommand(text) {
	case CommandStart:
		return d.handleStartCommand(st)
	case CommandHelp:
		return Result{Replies: textReply(MsgHelp)}, nil
	case CommandCancel:
		return d.handleCancelCommand(st)
	}
	return d.handlerFor(st.Step)(ctx, userID, st, text)
}

// stepHandler processes a non-command text message at one step.
type stepHandler func(ctx context.Context, userID string, st *State, text string) (Result, error)

// handlerFor selects the per-step handler. Every step must have a case here;
// an unknown step is an internal fault.
func (d *Dispatcher) handlerFor(step Step) stepHandler {
	switch step {
	case StepIdle:
		return d.handleIdleText
	case StepWaitingTitle:
		return d.handleTitle
	case StepWaitingContent:
		return d.handleContent
	case StepWaitingImage:
		return d.handleTextDuringImage
	case StepWaitingTags:
		return d.handleTags
	case StepConfirming:
		return d.handleConfirmation
	default:
		return func(context.Context, string, *State, string) (Result, error) {
			return Result{}, apperrors.NewTransition(step.String(), "unknown")
		}
	}
}

func (d *Dispatcher) handleStartCommand(st *State) (Result, error) {
	if st.Step != StepIdle {
		return Result{Replies: textReply(MsgAlreadyWriting)}, nil
	}
	next := st.Clone()
	if err := next.Advance(StepWaitingTitle, d.now()); err != nil {
		return Result{}, err
	}
	return Result{State: next, Replies: textReply(MsgAskTitle)}, nil
}

func (d *Dispatcher) handleCancelCommand(st *State) (Result, error) {
	if !st.Step.CanCancel() {
		return Result{Replies: textReply(MsgNothingToCancel)}, nil
	}
	var cleanup []string
	if st.Data.ImageKey != "" {
		cleanup = append(cleanup, st.Data.ImageKey)
	}
	next := st.Clone()
	if err := next.ResetData(d.now()); err != nil {
		return Result{}, err
	}
	return Result{State: next, Replies: textReply(MsgCancelled), CleanupKeys: cleanup}, nil
}

func (d *Dispatcher) handleIdleText(_ context.Context, _ string, _ *State, _ string) (Result, error) {
	return Result{Replies: textReply(MsgIdleGuidance)}, nil
}

func (d *Dispatcher) handleTitle(_ context.Context, _ string, st *State, text string) (Result, error) {
	title := strings.TrimSpace(text)
	if title == "" {
		return Result{Replies: textReply(MsgTitleEmpty)}, nil
	}
	if utf8.RuneCountInString(title) > TitleMaxLen {
		return Result{Replies: textReply(MsgTitleTooLong)}, nil
	}
	next := st.Clone()
	next.Data.Title = title
	if err := next.Advance(next.Step.Next(), d.now()); err != nil {
		return Result{}, err
	}
	return Result{State: next, Replies: textReply(MsgAskContent)}, nil
}

func (d *Dispatcher) handleContent(_ context.Context, _ string, st *State, text string) (Result, error) {
	content := strings.TrimSpace(text)
	if content == "" {
		return Result{Replies: textReply(MsgContentEmpty)}, nil
	}
	if utf8.RuneCountInString(content) > ContentMaxLen {
		return Result{Replies: textReply(MsgContentTooLong)}, nil
	}
	next := st.Clone()
	next.Data.Content = content
	if err := next.Advance(next.Step.Next(), d.now()); err != nil {
		return Result{}, err
	}
	return Result{State: next, Replies: textReply(MsgAskImage)}, nil
}

func (d *Dispatcher) handleTextDuringImage(_ context.Context, _ string, _ *State, _ string) (Result, error) {
	return Result{Replies: textReply(MsgTextDuringImage)}, nil
}

func (d *Dispatcher) handleTags(_ context.Context, _ string, st *State, text string) (Result, error) {
	tags := ParseTagSelection(text, d.cfg.TagCatalogue)
	if len(tags) == 0 {
		return Result{Replies: textReply(MsgTagRetry, RenderTagMenu(d.cfg.TagCatalogue))}, nil
	}
	next := st.Clone()
	next.Data.Tags = tags
	if err := next.Advance(next.Step.Next(), d.now()); err != nil {
		return Result{}, err
	}
	return Result{State: next, Replies: textReply(RenderConfirmation(next.Data))}, nil
}

func (d *Dispatcher) handleConfirmation(_ context.Context, userID string, st *State, text string) (Result, error) {
	switch {
	case IsAffirmative(text):
		now := d.now()
		post := &publisher.Post{
			UserID:      userID,
			Title:       st.Data.Title,
			Content:     st.Data.Content,
			ImageKey:    st.Data.ImageKey,
			ImagePath:   st.Data.ImagePath,
			Tags:        append([]string(nil), st.Data.Tags...),
			CompletedAt: now,
		}
		next := st.Clone()
		if err := next.ResetData(now); err != nil {
			return Result{}, err
		}
		return Result{State: next, Replies: textReply(MsgCompleted), Post: post}, nil
	case IsNegative(text):
		var cleanup []string
		if st.Data.ImageKey != "" {
			cleanup = append(cleanup, st.Data.ImageKey)
		}
		next := st.Clone()
		if err := next.ResetData(d.now()); err != nil {
			return Result{}, err
		}
		return Result{State: next, Replies: textReply(MsgCancelled), CleanupKeys: cleanup}, nil
	default:
		return Result{Replies: textReply(MsgConfirmRetry)}, nil
	}
}

func (d *Dispatcher) dispatchImage(ctx context.Context, st *State, mediaID string) (Result, error) {
	if st.Step != StepWaitingImage {
		return Result{Replies: textReply(MsgImageOutsideStep)}, nil
	}

	raw, err := d.media.DownloadMedia(ctx, mediaID)
	if err != nil {
		d.log.Error().Err(err).Str("media_id", mediaID).Msg("media download failed")
		return Result{Replies: textReply(MsgImageFailed)}, nil
	}

	processed, err := d.pipeline.Process(ctx, raw)
	if err != nil {
		if ve := apperrors.AsValidation(err); ve != nil {
			return Result{Replies: textReply(ve.UserMessage)}, nil
		}
		d.log.Error().Err(err).Msg("image pipeline failed")
		return Result{Replies: textReply(MsgImageFailed)}, nil
	}

	next := st.Clone()
	next.Data.ImageKey = processed.StorageKey
	next.Data.ImagePath = processed.RelativePath
	if err := next.Advance(next.Step.Next(), d.now()); err != nil {
		return Result{}, err
	}
	return Result{
		State:   next,
		Replies: textReply(MsgImageSaved, RenderTagMenu(d.cfg.TagCatalogue)),
	}, nil
}
