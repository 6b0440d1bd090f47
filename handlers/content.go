package handlers

import (
	"net/http"
	"time"

	"EstateHub/models"
	"EstateHub/repository"
	"EstateHub/utils"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ContentController is the CRUD surface of one admin dashboard section.
type ContentController[T any, PT models.ContentPtr[T]] struct {
	name  string
	store repository.ContentStore[T]
}

// NewContentController builds a controller; name is used in messages ("Announcement").
func NewContentController[T any, PT models.ContentPtr[T]](name string, store repository.ContentStore[T]) *ContentController[T, PT] {
	return &ContentController[T, PT]{name: name, store: store}
}

func (cc *ContentController[T, PT]) List(c echo.Context) error {
	page, limit := utils.ParsePage(c)
	docs, total, err := cc.store.List(c.Request().Context(), page, limit)
	if err != nil {
		return utils.Internal("Failed to fetch "+cc.name, err)
	}
	return utils.SuccessList(c, docs, utils.NewPagination(total, page, limit))
}

func (cc *ContentController[T, PT]) Create(c echo.Context) error {
	doc := new(T)
	if err := bindAndValidate(c, doc); err != nil {
		return err
	}
	now := time.Now().UTC()
	PT(doc).Stamp(primitive.NewObjectID(), now, now)
	PT(doc).ApplyDefaults()

	if err := cc.store.Create(c.Request().Context(), doc); err != nil {
		return utils.Internal("Failed to create "+cc.name, err)
	}
	return utils.Success(c, http.StatusCreated, doc, cc.name+" created successfully")
}

// Update replaces the document, keeping its id and creation time.
func (cc *ContentController[T, PT]) Update(c echo.Context) error {
	id, err := utils.ParseObjectID(c.Param("id"), cc.name)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	existing, err := cc.store.Get(ctx, id)
	if err != nil {
		return apiError(err, cc.name+" not found", "Failed to fetch "+cc.name)
	}

	doc := new(T)
	if err := bindAndValidate(c, doc); err != nil {
		return err
	}
	PT(doc).Stamp(id, PT(existing).Created(), time.Now().UTC())
	PT(doc).ApplyDefaults()

	if err := cc.store.Replace(ctx, id, doc); err != nil {
		return apiError(err, cc.name+" not found", "Failed to update "+cc.name)
	}
	return utils.Success(c, http.StatusOK, doc, cc.name+" updated successfully")
}

func (cc *ContentController[T, PT]) Delete(c echo.Context) error {
	id, err := utils.ParseObjectID(c.Param("id"), cc.name)
	if err != nil {
		return err
	}
	if err := cc.store.Delete(c.Request().Context(), id); err != nil {
		return apiError(err, cc.name+" not found", "Failed to delete "+cc.name)
	}
	return utils.Success(c, http.StatusOK, nil, cc.name+" deleted successfully")
}
