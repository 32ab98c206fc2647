package cloudinary

import (
	"context"
	"fmt"

	"nearby/pkg/media"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/cloudinary/cloudinary-go/v2/config"
)

const imageEager = "q_auto,f_auto,w_800,c_limit"

var eagerAsyncFalse = false

// Client uploads chat media to Cloudinary.
type Client struct {
	cloudName string
	uploader  *uploader.API
}

// Upload stores an image with an optimized eager rendition, or audio as a
// "video" resource (Cloudinary files audio under video).
func (c *Client) Upload(ctx context.Context, u media.Upload) (string, error) {
	params := uploader.UploadParams{Folder: u.Folder, PublicID: u.PublicID}
	switch u.Kind {
	case media.KindImage:
		params.Eager = imageEager
		params.EagerAsync = &eagerAsyncFalse
	case media.KindAudio:
		params.ResourceType = "video"
	default:
		return "", media.ErrUnsupported
	}
	result, err := c.uploader.Upload(ctx, u.Body, params)
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload: %s", result.Error.Message)
	}
	if u.Kind == media.KindImage && len(result.Eager) > 0 && result.Eager[0].SecureURL != "" {
		return result.Eager[0].SecureURL, nil
	}
	return result.SecureURL, nil
}

// NewClientFromParams builds a Client from Cloudinary cloud name, API key, and secret.
func NewClientFromParams(cloudName, apiKey, apiSecret string) (*Client, error) {
	cfg, err := config.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, err
	}
	up, err := uploader.NewWithConfiguration(cfg)
	if err != nil {
		return nil, err
	}
	return &Client{cloudName: cloudName, uploader: up}, nil
}
