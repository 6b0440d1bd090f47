package services

import (
	"context"
	"errors"
	"fmt"

	"EstateHub/logging"
	"EstateHub/models"
	"EstateHub/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ListingRemover deletes a listing together with everything that points at it.
//
// The steps run in order and each failure undoes the completed ones:
//  1. snapshot the listing and its favorites
//  2. delete the listing
//  3. delete its favorites (undo: re-insert the listing)
//  4. pull its id from users' purchased and favorite arrays
//     (undo: re-insert the favorites, then the listing)
type ListingRemover struct {
	listings  map[models.Kind]repository.ListingStore
	favorites repository.FavoriteStore
	users     repository.UserStore
}

func NewListingRemover(listings map[models.Kind]repository.ListingStore, favorites repository.FavoriteStore, users repository.UserStore) *ListingRemover {
	return &ListingRemover{listings: listings, favorites: favorites, users: users}
}

// Remove runs the cascade and returns the deleted listing.
func (r *ListingRemover) Remove(ctx context.Context, kind models.Kind, id primitive.ObjectID) (*models.Listing, error) {
	store, ok := r.listings[kind]
	if !ok {
		return nil, models.ErrInvalidKind
	}
	log := logging.FromContext(ctx).WithFields(logging.Fields{"kind": string(kind), "listing_id": id.Hex()})

	listing, err := store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	favs, err := r.favorites.ListByProperty(ctx, kind.DisplayName(), id)
	if err != nil {
		return nil, fmt.Errorf("snapshot favorites: %w", err)
	}

	if err := store.Delete(ctx, id); err != nil {
		return nil, fmt.Errorf("delete listing: %w", err)
	}

	restoreListing := func() error {
		if err := store.Restore(ctx, listing); err != nil {
			log.Error("restore listing failed", err, nil)
			return fmt.Errorf("restore listing: %w", err)
		}
		return nil
	}

	removed, err := r.favorites.DeleteByProperty(ctx, kind.DisplayName(), id)
	if err != nil {
		log.Warn("favorite cleanup failed, restoring listing", logging.Fields{"error": err.Error()})
		return nil, errors.Join(fmt.Errorf("delete favorites: %w", err), restoreListing())
	}

	if err := r.users.PullListing(ctx, kind, id); err != nil {
		log.Warn("user reference cleanup failed, restoring favorites and listing", logging.Fields{"error": err.Error()})
		var restoreFavs error
		if rerr := r.favorites.Restore(ctx, favs); rerr != nil {
			log.Error("restore favorites failed", rerr, logging.Fields{"count": len(favs)})
			restoreFavs = fmt.Errorf("restore favorites: %w", rerr)
		}
		return nil, errors.Join(fmt.Errorf("pull user references: %w", err), restoreFavs, restoreListing())
	}

	log.Info("listing deleted", logging.Fields{"favorites_removed": removed})
	return listing, nil
}
