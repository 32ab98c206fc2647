// Package media describes chat and post attachments independent of where
// they are stored.
package media

import (
	"context"
	"errors"
	"io"
	"strings"
)

const (
	KindImage = "image"
	KindAudio = "audio"
)

// ErrUnsupported is returned for content types other than image/* and audio/*.
var ErrUnsupported = errors.New("unsupported media type")

// Upload is one file headed for storage. Key is Folder + "/" + PublicID.
type Upload struct {
	Body        io.Reader
	Size        int64
	ContentType string
	Kind        string
	Folder      string
	PublicID    string
}

func (u Upload) Key() string {
	return strings.TrimSuffix(u.Folder, "/") + "/" + u.PublicID
}

// Uploader stores an upload and returns a URL clients can fetch it from.
type Uploader interface {
	Upload(ctx context.Context, u Upload) (string, error)
}

// KindForContentType maps a MIME type to an upload kind.
func KindForContentType(contentType string) (string, error) {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	switch {
	case strings.HasPrefix(ct, "image/"):
		return KindImage, nil
	case strings.HasPrefix(ct, "audio/"):
		return KindAudio, nil
	}
	return "", ErrUnsupported
}
