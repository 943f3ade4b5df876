package image

import (
	"bytes"
	"fmt"
	stdimage "image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/webp"

	"chatpress/internal/domain/apperrors"
)

// supportedFormats maps normalized decode formats to their MIME types.
var supportedFormats = map[string]string{
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"webp": "image/webp",
	"gif":  "image/gif",
}

// Metadata is the result of validating an image payload without fully
// decoding it.
type Metadata struct {
	Format   string
	MimeType string
	Width    int
	Height   int
	Size     int64
}

// normalizeFormat collapses the jpg alias into jpeg.
func normalizeFormat(format string) string {
	if format == "jpg" {
		return "jpeg"
	}
	return format
}

// Validate checks that raw is a supported image within the size ceiling and
// returns its metadata. The size ceiling applies before any decoding so an
// oversized payload is rejected regardless of content.
func Validate(raw []byte, maxBytes int64) (*Metadata, error) {
	size := int64(len(raw))
	if size == 0 {
		return nil, apperrors.NewValidation(MsgImageEmpty)
	}
	if size >= maxBytes {
		return nil, apperrors.NewValidation(MsgImageTooLarge)
	}

	cfg, format, err := stdimage.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, apperrors.NewValidationCause(MsgImageUnreadable, err)
	}
	format = normalizeFormat(format)
	mime, ok := supportedFormats[format]
	if !ok {
		return nil, apperrors.NewValidation(MsgImageUnsupported)
	}

	// Belt and braces: the content sniffer must agree with the decoder.
	if detected := mimetype.Detect(raw); !detected.Is(mime) {
		return nil, apperrors.NewValidationCause(MsgImageUnsupported,
			fmt.Errorf("decoded %s but sniffed %s", format, detected.String()))
	}

	return &Metadata{
		Format:   format,
		MimeType: mime,
		Width:    cfg.Width,
		Height:   cfg.Height,
		Size:     size,
	}, nil
}
