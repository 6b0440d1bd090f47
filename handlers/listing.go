package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"EstateHub/logging"
	"EstateHub/models"
	"EstateHub/repository"
	"EstateHub/services"
	"EstateHub/storage"
	"EstateHub/utils"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ListingController serves one listing kind. Lands, houses and apartments each
// get their own controller over their own store.
type ListingController struct {
	kind      models.Kind
	store     repository.ListingStore
	favorites repository.FavoriteStore
	users     repository.UserStore
	remover   *services.ListingRemover
	cache     *utils.Cache
	media     storage.MediaStore
	onChange  func()
}

// ListingDeps is shared by the controllers of every kind.
type ListingDeps struct {
	Favorites repository.FavoriteStore
	Users     repository.UserStore
	Remover   *services.ListingRemover
	// Cache and Media may be nil.
	Cache *utils.Cache
	Media storage.MediaStore
	// OnChange runs after every listing mutation; the admin dashboard uses it.
	OnChange func()
}

func NewListingController(store repository.ListingStore, deps ListingDeps) *ListingController {
	return &ListingController{
		kind:      store.Kind(),
		store:     store,
		favorites: deps.Favorites,
		users:     deps.Users,
		remover:   deps.Remover,
		cache:     deps.Cache,
		media:     deps.Media,
		onChange:  deps.OnChange,
	}
}

func (lc *ListingController) Kind() models.Kind { return lc.kind }

func (lc *ListingController) notFound() string { return lc.kind.DisplayName() + " not found" }

func (lc *ListingController) cacheNamespace() string { return "listings:" + lc.kind.Plural() }

type listingPage struct {
	Data       []models.Listing  `json:"data"`
	Pagination *utils.Pagination `json:"pagination"`
}

func parseFloatParam(c echo.Context, name string) (*float64, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, utils.BadRequest("Invalid "+name+": must be a number", err)
	}
	return &v, nil
}

func listingQuery(c echo.Context) repository.ListingQuery {
	page, limit := utils.ParsePage(c)
	return repository.ListingQuery{
		SortBy:    c.QueryParam("sortBy"),
		SortOrder: c.QueryParam("sortOrder"),
		Page:      page,
		Limit:     limit,
	}
}

func (lc *ListingController) list(c echo.Context, q repository.ListingQuery) error {
	listings, total, err := lc.store.List(c.Request().Context(), q)
	if err != nil {
		return apiError(err, lc.notFound(), "Failed to fetch "+lc.kind.Plural())
	}
	return utils.SuccessList(c, listings, utils.NewPagination(total, q.Page, q.Limit))
}

// ListAvailable returns Available listings, read through the Redis cache.
func (lc *ListingController) ListAvailable(c echo.Context) error {
	q := listingQuery(c)
	q.AvailableOnly = true
	if lc.cache == nil {
		return lc.list(c, q)
	}

	ctx := c.Request().Context()
	log := logging.FromContext(ctx)
	key, err := lc.cache.QueryKey(ctx, lc.cacheNamespace(), map[string]string{
		"page":      strconv.Itoa(q.Page),
		"limit":     strconv.Itoa(q.Limit),
		"sortBy":    q.SortField(),
		"ascending": strconv.FormatBool(q.Ascending()),
	})
	if err != nil {
		log.Warn("listing cache unavailable", logging.Fields{"error": err.Error()})
		return lc.list(c, q)
	}

	var cached listingPage
	if hit, err := lc.cache.GetCached(ctx, key, &cached); err == nil && hit {
		return utils.SuccessList(c, cached.Data, cached.Pagination)
	}

	listings, total, err := lc.store.List(ctx, q)
	if err != nil {
		return apiError(err, lc.notFound(), "Failed to fetch "+lc.kind.Plural())
	}
	page := listingPage{Data: listings, Pagination: utils.NewPagination(total, q.Page, q.Limit)}
	if err := lc.cache.SetCached(ctx, key, page); err != nil {
		log.Warn("failed to cache listings", logging.Fields{"error": err.Error()})
	}
	return utils.SuccessList(c, page.Data, page.Pagination)
}

// ListAll is the admin view: every status, no cache.
func (lc *ListingController) ListAll(c echo.Context) error {
	return lc.list(c, listingQuery(c))
}

func (lc *ListingController) Search(c echo.Context) error {
	term := strings.TrimSpace(c.QueryParam("q"))
	if term == "" {
		return utils.BadRequest("Search query is required", nil)
	}
	q := listingQuery(c)
	q.Search = term
	return lc.list(c, q)
}

func (lc *ListingController) Filter(c echo.Context) error {
	q := listingQuery(c)
	var err error
	if q.MinPrice, err = parseFloatParam(c, "minPrice"); err != nil {
		return err
	}
	if q.MaxPrice, err = parseFloatParam(c, "maxPrice"); err != nil {
		return err
	}
	q.Location = c.QueryParam("location")
	q.Size = c.QueryParam("size")
	return lc.list(c, q)
}

func (lc *ListingController) Get(c echo.Context) error {
	id, err := utils.ParseObjectID(c.Param("id"), lc.kind.DisplayName())
	if err != nil {
		return err
	}
	listing, err := lc.store.Get(c.Request().Context(), id)
	if err != nil {
		return apiError(err, lc.notFound(), "Failed to fetch "+string(lc.kind))
	}
	return utils.Success(c, http.StatusOK, listing, "")
}

func mergeMedia(l *models.Listing, media *storage.UploadedMedia) {
	if media == nil {
		return
	}
	l.Images = append(l.Images, media.Images...)
	l.Documents = append(l.Documents, media.Documents...)
	if media.Video != "" {
		l.Video = media.Video
	}
	if media.Brochure != "" {
		l.BrochureURL = media.Brochure
	}
}

func (lc *ListingController) invalidate(ctx context.Context) {
	if lc.onChange != nil {
		lc.onChange()
	}
	if lc.cache == nil {
		return
	}
	if err := lc.cache.Invalidate(ctx, lc.cacheNamespace()); err != nil {
		logging.FromContext(ctx).Warn("failed to invalidate listing cache", logging.Fields{"error": err.Error()})
	}
}

func (lc *ListingController) Create(c echo.Context) error {
	var listing models.Listing
	if err := bindBody(c, &listing); err != nil {
		return err
	}
	listing.ID = primitive.NilObjectID
	listing.Kind = lc.kind
	listing.CreatedAt, listing.UpdatedAt = time.Time{}, time.Time{}
	if listing.Status == "" {
		listing.Status = models.StatusAvailable
	}
	mergeMedia(&listing, storage.MediaFromContext(c))
	if err := listing.Validate(); err != nil {
		return apiError(err, lc.notFound(), "")
	}

	ctx := c.Request().Context()
	if err := lc.store.Insert(ctx, &listing); err != nil {
		return apiError(err, lc.notFound(), "Failed to create "+string(lc.kind))
	}
	lc.invalidate(ctx)
	logging.FromContext(ctx).Info("listing created", logging.Fields{"kind": string(lc.kind), "listing_id": listing.ID.Hex()})
	return utils.Success(c, http.StatusCreated, listing, lc.kind.DisplayName()+" created successfully")
}

// Update applies a partial update. A status change must follow the kind's
// transition table.
func (lc *ListingController) Update(c echo.Context) error {
	id, err := utils.ParseObjectID(c.Param("id"), lc.kind.DisplayName())
	if err != nil {
		return err
	}
	var patch models.ListingPatch
	if err := bindBody(c, &patch); err != nil {
		return err
	}

	ctx := c.Request().Context()
	listing, err := lc.store.Get(ctx, id)
	if err != nil {
		return apiError(err, lc.notFound(), "Failed to fetch "+string(lc.kind))
	}
	if patch.Status != nil {
		if err := lc.kind.CheckTransition(listing.Status, *patch.Status); err != nil {
			return apiError(err, lc.notFound(), "")
		}
	}
	if err := patch.Apply(listing); err != nil {
		return apiError(err, lc.notFound(), "")
	}
	mergeMedia(listing, storage.MediaFromContext(c))
	if err := listing.Validate(); err != nil {
		return apiError(err, lc.notFound(), "")
	}

	if err := lc.store.Update(ctx, listing); err != nil {
		return apiError(err, lc.notFound(), "Failed to update "+string(lc.kind))
	}
	lc.invalidate(ctx)
	return utils.Success(c, http.StatusOK, listing, lc.kind.DisplayName()+" updated successfully")
}

// Delete removes the listing with its favorites and user references.
func (lc *ListingController) Delete(c echo.Context) error {
	id, err := utils.ParseObjectID(c.Param("id"), lc.kind.DisplayName())
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if _, err := lc.remover.Remove(ctx, lc.kind, id); err != nil {
		return apiError(err, lc.notFound(), "Failed to delete "+string(lc.kind))
	}
	lc.invalidate(ctx)
	return utils.Success(c, http.StatusOK, nil, lc.kind.DisplayName()+" deleted successfully")
}

// MyListings returns a page of the listings of this kind the caller has purchased.
func (lc *ListingController) MyListings(c echo.Context) error {
	return lc.listByIDs(c, currentUser(c).Purchased(lc.kind))
}

// listByIDs pages through the given listings with the usual sort parameters.
// Ids of listings that no longer exist are skipped.
func (lc *ListingController) listByIDs(c echo.Context, ids []primitive.ObjectID) error {
	q := listingQuery(c)
	q.IDs = ids
	if q.IDs == nil {
		q.IDs = []primitive.ObjectID{}
	}
	return lc.list(c, q)
}

func (lc *ListingController) UploadSignature(c echo.Context) error {
	if lc.media == nil {
		return utils.NewAPIError(http.StatusServiceUnavailable, "Media uploads are not available", storage.ErrNotConfigured)
	}
	sig, err := lc.media.SignUpload(time.Now())
	if err != nil {
		return utils.Internal("Failed to sign upload", err)
	}
	return utils.Success(c, http.StatusOK, sig, "")
}
