package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/google/uuid"
	"github.com/nfnt/resize"
)

// ErrNotImage is returned when an upload cannot be decoded as an image.
var ErrNotImage = errors.New("uploaded file is not an image")

// maxUploadBytes bounds how much of an upload is read before decoding.
const maxUploadBytes = 10 << 20

// PreparedImage is an upload normalised for storage.
type PreparedImage struct {
	Data        []byte
	Ext         string
	ContentType string
	Width       int
	Height      int
}

// PrepareImage decodes r, scales it down to maxWidth keeping the aspect ratio
// and re-encodes it. PNG stays PNG; everything else becomes JPEG.
func PrepareImage(r io.Reader, maxWidth uint) (PreparedImage, error) {
	raw, err := io.ReadAll(io.LimitReader(r, maxUploadBytes+1))
	if err != nil {
		return PreparedImage{}, err
	}
	if len(raw) > maxUploadBytes {
		return PreparedImage{}, fmt.Errorf("%w: larger than %d bytes", ErrNotImage, maxUploadBytes)
	}
	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return PreparedImage{}, fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	if maxWidth > 0 && uint(img.Bounds().Dx()) > maxWidth {
		img = resize.Resize(maxWidth, 0, img, resize.Lanczos3)
	}

	var buf bytes.Buffer
	out := PreparedImage{Width: img.Bounds().Dx(), Height: img.Bounds().Dy()}
	if format == "png" {
		err = png.Encode(&buf, img)
		out.Ext, out.ContentType = ".png", "image/png"
	} else {
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90})
		out.Ext, out.ContentType = ".jpg", "image/jpeg"
	}
	if err != nil {
		return PreparedImage{}, err
	}
	out.Data = buf.Bytes()
	return out, nil
}

// NewPostImageName returns a fresh object name for a post image.
func NewPostImageName(ext string) string {
	return "posts/" + uuid.NewString() + ext
}

// SavePostImage prepares the upload and stores it, returning the object name.
func SavePostImage(ctx context.Context, st Storage, r io.Reader, maxWidth uint) (string, error) {
	img, err := PrepareImage(r, maxWidth)
	if err != nil {
		return "", err
	}
	name := NewPostImageName(img.Ext)
	if err := st.Save(ctx, name, bytes.NewReader(img.Data), img.ContentType); err != nil {
		return "", err
	}
	return name, nil
}
