package handlers_test

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"EstateHub/models"
	"EstateHub/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestListAvailablePaginatesSortedByPrice(t *testing.T) {
	env := newTestEnv(t)
	for _, p := range []float64{7, 3, 12, 1, 9, 5, 11, 2, 8, 10, 4, 6} {
		env.land(t, "Plot", p*1000, models.StatusAvailable)
	}
	env.land(t, "Gone", 500, models.StatusSold)

	rec := env.do(t, http.MethodGet, "/api/lands?page=2&limit=5&sortBy=price&sortOrder=asc", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	res := decode[[]models.Listing](t, rec)
	assert.True(t, res.Success)
	require.Len(t, res.Data, 5)
	for i, l := range res.Data {
		assert.Equal(t, float64(6+i)*1000, l.Price)
	}
	assert.Equal(t, &utils.Pagination{Total: 12, Page: 2, Limit: 5, Pages: 3}, res.Pagination)
}

func TestListAvailableIsCachedUntilMutation(t *testing.T) {
	env := newTestEnv(t)
	_, admin := env.user(t, "admin@test.io", "secret1", models.RoleAdmin)
	env.land(t, "First", 1000, models.StatusAvailable)

	first := decode[[]models.Listing](t, env.do(t, http.MethodGet, "/api/lands", nil, ""))
	assert.Equal(t, int64(1), first.Pagination.Total)

	// Written behind the controller's back: the cached page is still served.
	env.land(t, "Hidden", 2000, models.StatusAvailable)
	cached := decode[[]models.Listing](t, env.do(t, http.MethodGet, "/api/lands", nil, ""))
	assert.Equal(t, int64(1), cached.Pagination.Total)

	rec := env.do(t, http.MethodPost, "/api/lands", map[string]interface{}{
		"title": "Third", "location": "Tema", "price": 3000, "size": "1 acre",
	}, admin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	fresh := decode[[]models.Listing](t, env.do(t, http.MethodGet, "/api/lands", nil, ""))
	assert.Equal(t, int64(3), fresh.Pagination.Total)
}

func TestListAllIncludesEveryStatusForAdmins(t *testing.T) {
	env := newTestEnv(t)
	_, admin := env.user(t, "admin@test.io", "secret1", models.RoleAdmin)
	_, user := env.user(t, "user@test.io", "secret1", models.RoleUser)
	env.land(t, "A", 1000, models.StatusAvailable)
	env.land(t, "S", 1000, models.StatusSold)

	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, "/api/lands/all", nil, user).Code)
	res := decode[[]models.Listing](t, env.do(t, http.MethodGet, "/api/lands/all", nil, admin))
	assert.Len(t, res.Data, 2)
}

func TestCreateListingRejectsMissingFields(t *testing.T) {
	env := newTestEnv(t)
	_, admin := env.user(t, "admin@test.io", "secret1", models.RoleAdmin)

	for _, body := range []map[string]interface{}{
		{"location": "Accra", "price": 100, "size": "1 plot"},
		{"title": "No price", "location": "Accra", "size": "1 plot"},
		{"title": "No size", "location": "Accra", "price": 100},
	} {
		rec := env.do(t, http.MethodPost, "/api/lands", body, admin)
		assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		assert.False(t, decode[any](t, rec).Success)
	}
	n, _ := env.lands.Count(context.Background())
	assert.Zero(t, n)
}

func TestCreateHouseAndApartmentVariants(t *testing.T) {
	env := newTestEnv(t)
	_, admin := env.user(t, "admin@test.io", "secret1", models.RoleAdmin)
	base := map[string]interface{}{"title": "Villa", "location": "Accra", "price": 250000, "size": "4 plots"}

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/houses", base, admin).Code)

	base["bedrooms"], base["bathrooms"] = 4, 3
	rec := env.do(t, http.MethodPost, "/api/houses", base, admin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	house := decode[models.Listing](t, rec).Data
	assert.Equal(t, models.KindHouse, house.Kind)
	assert.Equal(t, models.StatusAvailable, house.Status)
	assert.Equal(t, 4, house.Bedrooms)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/apartments", base, admin).Code)
	base["floor"] = 2
	assert.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/apartments", base, admin).Code)
}

func TestListingMutationsRequireAdmin(t *testing.T) {
	env := newTestEnv(t)
	_, user := env.user(t, "user@test.io", "secret1", models.RoleUser)
	body := map[string]interface{}{"title": "Plot", "location": "Accra", "price": 100, "size": "1"}

	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodPost, "/api/lands", body, "").Code)
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodPost, "/api/lands", body, user).Code)
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodDelete, "/api/lands/"+primitive.NewObjectID().Hex(), nil, user).Code)
}

func TestUpdateEnforcesStatusTransitions(t *testing.T) {
	env := newTestEnv(t)
	_, admin := env.user(t, "admin@test.io", "secret1", models.RoleAdmin)
	l := env.land(t, "Plot", 1000, models.StatusAvailable)
	path := "/api/lands/" + l.ID.Hex()

	rec := env.do(t, http.MethodPut, path, map[string]interface{}{"status": "Reserved", "price": 1500}, admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[models.Listing](t, rec).Data
	assert.Equal(t, models.StatusReserved, updated.Status)
	assert.Equal(t, 1500.0, updated.Price)
	assert.Equal(t, "Plot", updated.Title)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPut, path, map[string]interface{}{"status": "For Rent"}, admin).Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodPut, path, map[string]interface{}{"status": "Sold"}, admin).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPut, path, map[string]interface{}{"status": "Available"}, admin).Code)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPut, "/api/lands/"+primitive.NewObjectID().Hex(), map[string]interface{}{"price": 1}, admin).Code)
}

func TestGetListing(t *testing.T) {
	env := newTestEnv(t)
	l := env.land(t, "Plot", 1000, models.StatusSold)

	rec := env.do(t, http.MethodGet, "/api/lands/"+l.ID.Hex(), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, l.ID, decode[models.Listing](t, rec).Data.ID)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/lands/not-an-id", nil, "").Code)
	rec = env.do(t, http.MethodGet, "/api/lands/"+primitive.NewObjectID().Hex(), nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Land not found", decode[any](t, rec).Message)
}

func TestSearchAndFilter(t *testing.T) {
	env := newTestEnv(t)
	env.land(t, "Beach front plot", 5000, models.StatusAvailable)
	env.land(t, "Hill view", 9000, models.StatusAvailable)
	env.land(t, "Farm land", 2000, models.StatusAvailable)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/lands/search?q=", nil, "").Code)

	res := decode[[]models.Listing](t, env.do(t, http.MethodGet, "/api/lands/search?q=BEACH", nil, ""))
	require.Len(t, res.Data, 1)
	assert.Equal(t, "Beach front plot", res.Data[0].Title)

	res = decode[[]models.Listing](t, env.do(t, http.MethodGet, "/api/lands/filter?minPrice=3000&maxPrice=9000&sortBy=price&sortOrder=desc", nil, ""))
	require.Len(t, res.Data, 2)
	assert.Equal(t, 9000.0, res.Data[0].Price)
	assert.Equal(t, 5000.0, res.Data[1].Price)
	assert.Equal(t, int64(2), res.Pagination.Total)
}

func TestFavoritesFlow(t *testing.T) {
	env := newTestEnv(t)
	u, token := env.user(t, "user@test.io", "secret1", models.RoleUser)
	l := env.land(t, "Plot", 1000, models.StatusAvailable)
	path := "/api/lands/favorites/" + l.ID.Hex()

	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodPost, path, nil, "").Code)
	assert.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, path, nil, token).Code)

	rec := env.do(t, http.MethodPost, path, nil, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, env.favorites.All(), 1)

	favs := decode[[]models.Listing](t, env.do(t, http.MethodGet, "/api/lands/favorites", nil, token))
	require.Len(t, favs.Data, 1)
	assert.Equal(t, l.ID, favs.Data[0].ID)
	assert.Equal(t, &utils.Pagination{Total: 1, Page: 1, Limit: 10, Pages: 1}, favs.Pagination)

	stored, _ := env.users.GetByID(context.Background(), u.ID)
	assert.Equal(t, []primitive.ObjectID{l.ID}, stored.FavoriteLands)

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodDelete, path, nil, token).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, path, nil, token).Code)
	stored, _ = env.users.GetByID(context.Background(), u.ID)
	assert.Empty(t, stored.FavoriteLands)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPost, "/api/lands/favorites/"+primitive.NewObjectID().Hex(), nil, token).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/lands/favorites/xyz", nil, token).Code)
}

func TestDeleteListingCascades(t *testing.T) {
	env := newTestEnv(t)
	_, admin := env.user(t, "admin@test.io", "secret1", models.RoleAdmin)
	buyer, token := env.user(t, "buyer@test.io", "secret1", models.RoleUser)
	l := env.land(t, "Plot", 1000, models.StatusAvailable)
	require.NoError(t, env.users.AddPurchased(context.Background(), buyer.ID, models.KindLand, l.ID))
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/lands/favorites/"+l.ID.Hex(), nil, token).Code)

	rec := env.do(t, http.MethodDelete, "/api/lands/"+l.ID.Hex(), nil, admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Land deleted successfully", decode[any](t, rec).Message)

	assert.Empty(t, env.favorites.All())
	stored, _ := env.users.GetByID(context.Background(), buyer.ID)
	assert.Empty(t, stored.PurchasedLands)
	assert.Empty(t, stored.FavoriteLands)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, "/api/lands/"+l.ID.Hex(), nil, admin).Code)
}

func TestMyListings(t *testing.T) {
	env := newTestEnv(t)
	buyer, token := env.user(t, "buyer@test.io", "secret1", models.RoleUser)
	l := env.land(t, "Mine", 1000, models.StatusSold)
	env.land(t, "Not mine", 1000, models.StatusAvailable)
	require.NoError(t, env.users.AddPurchased(context.Background(), buyer.ID, models.KindLand, l.ID))

	res := decode[[]models.Listing](t, env.do(t, http.MethodGet, "/api/lands/my-lands", nil, token))
	require.Len(t, res.Data, 1)
	assert.Equal(t, "Mine", res.Data[0].Title)

	assert.Equal(t, &utils.Pagination{Total: 1, Page: 1, Limit: 10, Pages: 1}, res.Pagination)

	res = decode[[]models.Listing](t, env.do(t, http.MethodGet, "/api/houses/my-houses", nil, token))
	assert.Empty(t, res.Data)
	require.NotNil(t, res.Pagination)
	assert.Zero(t, res.Pagination.Total)
}

func TestFavoritesArePaginated(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.user(t, "user@test.io", "secret1", models.RoleUser)
	for i, price := range []float64{300, 100, 200} {
		l := env.land(t, fmt.Sprintf("Plot %d", i), price, models.StatusAvailable)
		require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/lands/favorites/"+l.ID.Hex(), nil, token).Code)
	}

	res := decode[[]models.Listing](t, env.do(t, http.MethodGet, "/api/lands/favorites?page=2&limit=1&sortBy=price&sortOrder=asc", nil, token))
	require.Len(t, res.Data, 1)
	assert.Equal(t, 200.0, res.Data[0].Price)
	assert.Equal(t, &utils.Pagination{Total: 3, Page: 2, Limit: 1, Pages: 3}, res.Pagination)
}

func TestFilterRejectsMalformedPrice(t *testing.T) {
	env := newTestEnv(t)
	env.land(t, "Plot", 1000, models.StatusAvailable)

	for _, query := range []string{"minPrice=abc", "maxPrice=1e", "minPrice=10&maxPrice=cheap"} {
		rec := env.do(t, http.MethodGet, "/api/lands/filter?"+query, nil, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, query)
		assert.Contains(t, decode[any](t, rec).Message, "must be a number", query)
	}
}

func TestFailedCreateRemovesUploadedMedia(t *testing.T) {
	media := &fakeMedia{}
	env := newTestEnvWithMedia(t, media)
	_, admin := env.user(t, "admin@test.io", "secret1", models.RoleAdmin)

	rec := env.postMultipart(t, "/api/lands", `{"location":"Accra","price":100,"size":"1 plot"}`,
		map[string]string{"images": "front.jpg"}, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	require.Len(t, media.uploaded, 1)
	assert.Equal(t, media.uploaded, media.destroyed)
	count, err := env.lands.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCreateWithUploadedMedia(t *testing.T) {
	media := &fakeMedia{}
	env := newTestEnvWithMedia(t, media)
	_, admin := env.user(t, "admin@test.io", "secret1", models.RoleAdmin)

	rec := env.postMultipart(t, "/api/lands", `{"title":"Plot","location":"Accra","price":100,"size":"1 plot"}`,
		map[string]string{"images": "front.jpg", "brochure": "plan.pdf"}, admin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[models.Listing](t, rec).Data
	require.Len(t, created.Images, 1)
	assert.True(t, strings.HasPrefix(created.Images[0], "https://cdn.test/front-"))
	assert.True(t, strings.HasPrefix(created.BrochureURL, "https://cdn.test/plan-"))
	assert.Empty(t, media.destroyed)
}

func TestUploadSignatureWithoutMedia(t *testing.T) {
	env := newTestEnv(t)
	_, admin := env.user(t, "admin@test.io", "secret1", models.RoleAdmin)
	assert.Equal(t, http.StatusServiceUnavailable, env.do(t, http.MethodGet, "/api/lands/cloudinary-signature", nil, admin).Code)
}
