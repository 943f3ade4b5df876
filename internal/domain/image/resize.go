package image

import (
	"bytes"

	"github.com/disintegration/imaging"

	"chatpress/internal/domain/apperrors"
)

// ResizeIfNeeded returns raw unchanged when both dimensions are within
// maxDimension. Otherwise it scales the image down preserving aspect ratio so
// neither dimension exceeds maxDimension (never upscaling) and re-encodes as
// JPEG at the given quality. The second return reports whether the bytes
// changed.
func ResizeIfNeeded(raw []byte, meta *Metadata, maxDimension, jpegQuality int) ([]byte, bool, error) {
	if meta.Width <= maxDimension && meta.Height <= maxDimension {
		return raw, false, nil
	}

	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		// Validate already decoded the header; a full-decode failure
		// is a transform fault, not bad input.
		return nil, false, apperrors.NewProcessing("decode", err)
	}

	resized := imaging.Fit(img, maxDimension, maxDimension, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, false, apperrors.NewProcessing("encode", err)
	}
	return buf.Bytes(), true, nil
}
