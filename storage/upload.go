package storage

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"EstateHub/logging"
	"EstateHub/utils"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const uploadedMediaKey = "uploaded_media"

// UploadedMedia holds the CDN URLs of files sent with a multipart request.
// Assets lists every upload so a failed request can remove them again.
type UploadedMedia struct {
	Images    []string
	Video     string
	Brochure  string
	Documents []string
	Assets    []Asset
}

// MediaFromContext returns what UploadMiddleware stored, or nil.
func MediaFromContext(c echo.Context) *UploadedMedia {
	m, _ := c.Get(uploadedMediaKey).(*UploadedMedia)
	return m
}

func formFiles(form *multipart.Form, names ...string) []*multipart.FileHeader {
	var out []*multipart.FileHeader
	for _, name := range names {
		out = append(out, form.File[name]...)
	}
	return out
}

// UploadMiddleware streams the files of a multipart request (images[], video,
// brochure, documents[]) to the media store before the handler runs. Other
// content types pass through untouched.
func UploadMiddleware(store MediaStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
				return next(c)
			}
			form, err := c.MultipartForm()
			if err != nil {
				return utils.BadRequest("Invalid multipart form", err)
			}

			images := formFiles(form, "images[]", "images")
			videos := formFiles(form, "video")
			brochures := formFiles(form, "brochure")
			documents := formFiles(form, "documents[]", "documents")
			if len(images)+len(videos)+len(brochures)+len(documents) == 0 {
				return next(c)
			}
			if store == nil {
				return utils.NewAPIError(http.StatusServiceUnavailable, "Media uploads are not available", ErrNotConfigured)
			}

			ctx := c.Request().Context()
			log := logging.FromContext(ctx)
			media := &UploadedMedia{Images: []string{}, Documents: []string{}}
			upload := func(fh *multipart.FileHeader, resourceType string) (string, error) {
				f, err := fh.Open()
				if err != nil {
					return "", err
				}
				defer f.Close()

				name := strings.TrimSuffix(filepath.Base(fh.Filename), filepath.Ext(fh.Filename))
				asset, err := store.Upload(ctx, fmt.Sprintf("%s-%s", name, uuid.NewString()[:8]), f, resourceType)
				if err != nil {
					return "", err
				}
				log.Debug("media uploaded", logging.Fields{"file": fh.Filename, "public_id": asset.PublicID})
				media.Assets = append(media.Assets, *asset)
				return asset.URL, nil
			}
			fail := func(message string, err error) error {
				Discard(ctx, store, media.Assets)
				return utils.Internal(message, err)
			}

			for _, fh := range images {
				u, err := upload(fh, ResourceImage)
				if err != nil {
					return fail("Failed to upload image", err)
				}
				media.Images = append(media.Images, u)
			}
			if len(videos) > 0 {
				if media.Video, err = upload(videos[0], ResourceVideo); err != nil {
					return fail("Failed to upload video", err)
				}
			}
			if len(brochures) > 0 {
				if media.Brochure, err = upload(brochures[0], ResourceRaw); err != nil {
					return fail("Failed to upload brochure", err)
				}
			}
			for _, fh := range documents {
				u, err := upload(fh, ResourceRaw)
				if err != nil {
					return fail("Failed to upload document", err)
				}
				media.Documents = append(media.Documents, u)
			}

			if !media.empty() {
				c.Set(uploadedMediaKey, media)
			}
			if err := next(c); err != nil {
				Discard(ctx, store, media.Assets)
				return err
			}
			return nil
		}
	}
}

// Discard removes uploaded assets. Failures are logged, not returned: the
// request has already failed for another reason.
func Discard(ctx context.Context, store MediaStore, assets []Asset) {
	if store == nil || len(assets) == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)
	log := logging.FromContext(ctx)
	for _, a := range assets {
		if err := store.Destroy(ctx, a.PublicID, a.ResourceType); err != nil {
			log.Warn("failed to remove uploaded media", logging.Fields{"public_id": a.PublicID, "error": err.Error()})
		}
	}
}
