// Package storage uploads listing media to Cloudinary.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"time"

	"EstateHub/config"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const (
	ResourceImage = "image"
	ResourceVideo = "video"
	ResourceRaw   = "raw"
)

var ErrNotConfigured = errors.New("media storage is not configured")

// MediaStore is what the listing handlers need from the CDN.
type MediaStore interface {
	Upload(ctx context.Context, name string, r io.Reader, resourceType string) (*Asset, error)
	Destroy(ctx context.Context, publicID, resourceType string) error
	SignUpload(now time.Time) (*Signature, error)
}

type Asset struct {
	URL          string `json:"url"`
	PublicID     string `json:"publicId"`
	ResourceType string `json:"resourceType"`
}

// Signature is handed to browsers that upload directly to the CDN.
type Signature struct {
	Signature string `json:"signature"`
	Timestamp int64  `json:"timestamp"`
	Folder    string `json:"folder"`
	APIKey    string `json:"apiKey"`
	CloudName string `json:"cloudName"`
}

// assetAPI is the subset of the SDK upload API used here.
type assetAPI interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}

type Cloudinary struct {
	api assetAPI
	cfg config.CloudinaryConfig
}

func NewCloudinary(cfg config.CloudinaryConfig) (*Cloudinary, error) {
	if !cfg.Enabled() {
		return nil, ErrNotConfigured
	}
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("init cloudinary: %w", err)
	}
	return &Cloudinary{api: &cld.Upload, cfg: cfg}, nil
}

func (c *Cloudinary) Upload(ctx context.Context, name string, r io.Reader, resourceType string) (*Asset, error) {
	res, err := c.api.Upload(ctx, r, uploader.UploadParams{
		Folder:       c.cfg.Folder,
		PublicID:     name,
		ResourceType: resourceType,
	})
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", name, err)
	}
	if res == nil || res.SecureURL == "" {
		return nil, fmt.Errorf("upload %s: no url returned", name)
	}
	return &Asset{URL: res.SecureURL, PublicID: res.PublicID, ResourceType: resourceType}, nil
}

func (c *Cloudinary) Destroy(ctx context.Context, publicID, resourceType string) error {
	if _, err := c.api.Destroy(ctx, uploader.DestroyParams{PublicID: publicID, ResourceType: resourceType}); err != nil {
		return fmt.Errorf("destroy %s: %w", publicID, err)
	}
	return nil
}

// SignUpload signs exactly folder and timestamp, the parameters the dashboard
// sends along with a direct upload.
func (c *Cloudinary) SignUpload(now time.Time) (*Signature, error) {
	ts := now.Unix()
	params := url.Values{}
	params.Set("folder", c.cfg.Folder)
	params.Set("timestamp", strconv.FormatInt(ts, 10))

	sig, err := api.SignParameters(params, c.cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("sign upload: %w", err)
	}
	return &Signature{
		Signature: sig,
		Timestamp: ts,
		Folder:    c.cfg.Folder,
		APIKey:    c.cfg.APIKey,
		CloudName: c.cfg.CloudName,
	}, nil
}

var _ MediaStore = (*Cloudinary)(nil)
