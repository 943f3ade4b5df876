// Package image implements the validation and resize pipeline that turns a
// raw image payload into a storable artifact.
package image

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"chatpress/internal/config"
	"chatpress/internal/domain/apperrors"
)

// User-facing validation messages.
const (
	MsgImageEmpty       = "The image appears to be empty. Please send it again."
	MsgImageTooLarge    = "That image is too large. Please send one under 10 MB."
	MsgImageUnreadable  = "I couldn't read that image. Please send a JPEG, PNG, WebP or GIF."
	MsgImageUnsupported = "That format isn't supported. Please send a JPEG, PNG, WebP or GIF."
)

// Processed is the output of the pipeline: the final bytes plus everything
// the conversation needs to reference the image later.
type Processed struct {
	Data         []byte
	Filename     string
	RelativePath string
	StorageKey   string
	MimeType     string
	Size         int64
	Width        int
	Height       int
}

// Pipeline validates, conditionally resizes, names and uploads an image.
type Pipeline struct {
	cfg     *config.Config
	storage TempStorage
	log     zerolog.Logger
	now     func() time.Time
}

// NewPipeline constructs the pipeline against a temp-storage backend.
func NewPipeline(cfg *config.Config, storage TempStorage, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		storage: storage,
		log:     log.With().Str("component", "image-pipeline").Logger(),
		now:     time.Now,
	}
}

// Process runs the three stages in order: validate, resize-if-needed, name
// and place. The final bytes are uploaded to temp storage; cleaning the
// object up again is the caller's responsibility via Cleanup on the returned
// storage key.
func (p *Pipeline) Process(ctx context.Context, raw []byte) (*Processed, error) {
	meta, err := Validate(raw, p.cfg.ImageMaxBytes)
	if err != nil {
		return nil, err
	}

	data, resized, err := ResizeIfNeeded(raw, meta, p.cfg.ImageMaxDimension, p.cfg.ImageJPEGQuality)
	if err != nil {
		return nil, err
	}
	if resized {
		// The bytes changed, so the recorded MIME and size must come
		// from the re-encoded payload.
		meta, err = Validate(data, p.cfg.ImageMaxBytes)
		if err != nil {
			return nil, apperrors.NewProcessing("revalidate", err)
		}
	}

	now := p.now()
	filename := Filename(now, meta.Format)
	relPath := RelativePath(p.cfg.ImagePathRoot, now, filename)

	key, err := p.storage.Upload(ctx, filename, data, meta.MimeType)
	if err != nil {
		return nil, apperrors.NewProcessing("upload", err)
	}

	p.log.Info().
		Str("filename", filename).
		Str("mime", meta.MimeType).
		Int64("bytes", meta.Size).
		Bool("resized", resized).
		Msg("image processed")

	return &Processed{
		Data:         data,
		Filename:     filename,
		RelativePath: relPath,
		StorageKey:   key,
		MimeType:     meta.MimeType,
		Size:         meta.Size,
		Width:        meta.Width,
		Height:       meta.Height,
	}, nil
}
