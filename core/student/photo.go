package student

import (
	"context"
	"encoding/base64"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
)

// MaxPhotoSize bounds what EncodePhoto reads.
const MaxPhotoSize = 5 << 20

var ErrPhotoTooLarge = errors.New("photo is too large")

// EncodePhoto reads `r` to the end and returns it as a "data:<mime>;base64,<data>" URL.
// It blocks until the read completes; ctx is only checked before and after it.
func EncodePhoto(ctx context.Context, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	content, err := io.ReadAll(io.LimitReader(r, MaxPhotoSize+1))
	if err != nil {
		return "", errors.Wrap(err, "reading photo")
	}
	if len(content) > MaxPhotoSize {
		return "", ErrPhotoTooLarge
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var url strings.Builder
	url.WriteString("data:")
	url.WriteString(strings.SplitN(mimetype.Detect(content).String(), ";", 2)[0]) // drop charset params
	url.WriteString(";base64,")
	url.WriteString(base64.StdEncoding.EncodeToString(content))
	return url.String(), nil
}
