package handlers

import (
	"errors"
	"net/http"

	"EstateHub/middleware"
	"EstateHub/models"
	"EstateHub/utils"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func currentUser(c echo.Context) *models.User {
	return middleware.CurrentUser(c)
}

// ListFavorites returns a page of the caller's favorite listings of this kind.
func (lc *ListingController) ListFavorites(c echo.Context) error {
	favs, err := lc.favorites.ListByUser(c.Request().Context(), currentUser(c).ID, lc.kind.DisplayName())
	if err != nil {
		return utils.Internal("Failed to fetch favorites", err)
	}
	ids := make([]primitive.ObjectID, len(favs))
	for i, f := range favs {
		ids[i] = f.PropertyID
	}
	return lc.listByIDs(c, ids)
}

func (lc *ListingController) AddFavorite(c echo.Context) error {
	id, err := utils.ParseObjectID(c.Param("id"), lc.kind.DisplayName())
	if err != nil {
		return err
	}
	user := currentUser(c)
	ctx := c.Request().Context()

	if _, err := lc.store.Get(ctx, id); err != nil {
		return apiError(err, lc.notFound(), "Failed to fetch "+string(lc.kind))
	}
	favorite := models.Favorite{UserID: user.ID, PropertyType: lc.kind.DisplayName(), PropertyID: id}
	if err := lc.favorites.Add(ctx, &favorite); err != nil {
		return apiError(err, lc.notFound(), "Failed to add favorite")
	}
	if lc.kind == models.KindLand {
		if err := lc.users.SetFavoriteLand(ctx, user.ID, id, true); err != nil {
			return utils.Internal("Failed to add favorite", err)
		}
	}
	return utils.Success(c, http.StatusCreated, favorite, "Added to favorites")
}

func (lc *ListingController) RemoveFavorite(c echo.Context) error {
	id, err := utils.ParseObjectID(c.Param("id"), lc.kind.DisplayName())
	if err != nil {
		return err
	}
	user := currentUser(c)
	ctx := c.Request().Context()

	err = lc.favorites.Remove(ctx, user.ID, lc.kind.DisplayName(), id)
	if errors.Is(err, models.ErrNotFound) {
		return utils.NotFound(lc.kind.DisplayName() + " not in favorites")
	}
	if err != nil {
		return utils.Internal("Failed to remove favorite", err)
	}
	if lc.kind == models.KindLand {
		if err := lc.users.SetFavoriteLand(ctx, user.ID, id, false); err != nil {
			return utils.Internal("Failed to remove favorite", err)
		}
	}
	return utils.Success(c, http.StatusOK, nil, "Removed from favorites")
}
