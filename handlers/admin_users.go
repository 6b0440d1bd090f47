package handlers

import (
	"net/http"

	"EstateHub/models"
	"EstateHub/utils"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"
)

const userDetailPayments = 50

type UserDetail struct {
	User      *models.User                `json:"user"`
	Purchased map[string][]models.Listing `json:"purchased"`
	Payments  []models.Payment            `json:"payments"`
}

func (ac *AdminController) ListUsers(c echo.Context) error {
	page, limit := utils.ParsePage(c)
	users, total, err := ac.users.List(c.Request().Context(), page, limit)
	if err != nil {
		return utils.Internal("Failed to fetch users", err)
	}
	return utils.SuccessList(c, users, utils.NewPagination(total, page, limit))
}

// GetUser joins the user's purchased listings of every kind and payment history.
func (ac *AdminController) GetUser(c echo.Context) error {
	id, err := utils.ParseObjectID(c.Param("id"), "user")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	user, err := ac.users.GetByID(ctx, id)
	if err != nil {
		return apiError(err, "User not found", "Failed to fetch user")
	}

	purchased := make([][]models.Listing, len(models.Kinds))
	var payments []models.Payment
	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range models.Kinds {
		g.Go(func() error {
			listings, err := ac.listings[kind].GetMany(gctx, user.Purchased(kind))
			purchased[i] = listings
			return err
		})
	}
	g.Go(func() error {
		var err error
		payments, _, err = ac.payments.ListByUser(gctx, id, 1, userDetailPayments)
		return err
	})
	if err := g.Wait(); err != nil {
		return utils.Internal("Failed to fetch user details", err)
	}

	detail := UserDetail{User: user, Purchased: make(map[string][]models.Listing, len(models.Kinds)), Payments: payments}
	for i, kind := range models.Kinds {
		detail.Purchased[kind.Plural()] = purchased[i]
	}
	return utils.Success(c, http.StatusOK, detail, "")
}

func (ac *AdminController) UpdateUserRole(c echo.Context) error {
	id, err := utils.ParseObjectID(c.Param("id"), "user")
	if err != nil {
		return err
	}
	var req models.UpdateRoleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	user, err := ac.users.UpdateRole(c.Request().Context(), id, req.Role)
	if err != nil {
		return apiError(err, "User not found", "Failed to update role")
	}
	return utils.Success(c, http.StatusOK, user, "User role updated successfully")
}

func (ac *AdminController) DeleteUser(c echo.Context) error {
	id, err := utils.ParseObjectID(c.Param("id"), "user")
	if err != nil {
		return err
	}
	if actor := currentUser(c); actor != nil && actor.ID == id {
		return utils.BadRequest("You cannot delete your own account", nil)
	}
	if err := ac.remover.Remove(c.Request().Context(), id); err != nil {
		return apiError(err, "User not found", "Failed to delete user")
	}
	ac.InvalidateDashboard()
	return utils.Success(c, http.StatusOK, nil, "User deleted successfully")
}
