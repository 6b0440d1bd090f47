package services

import (
	"context"
	"errors"
	"fmt"

	"EstateHub/logging"
	"EstateHub/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserRemover deletes an account and its favorites. When the favorites cannot
// be removed the account and the favorites snapshot are put back. Payments are
// kept as history.
type UserRemover struct {
	users     repository.UserStore
	favorites repository.FavoriteStore
}

func NewUserRemover(users repository.UserStore, favorites repository.FavoriteStore) *UserRemover {
	return &UserRemover{users: users, favorites: favorites}
}

func (r *UserRemover) Remove(ctx context.Context, id primitive.ObjectID) error {
	log := logging.FromContext(ctx).WithFields(logging.Fields{"user_id": id.Hex()})

	user, err := r.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	favorites, err := r.favorites.ListByUserAll(ctx, id)
	if err != nil {
		return fmt.Errorf("snapshot favorites: %w", err)
	}
	if err := r.users.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	removed, err := r.favorites.DeleteByUser(ctx, id)
	if err != nil {
		log.Warn("favorite cleanup failed, restoring user", logging.Fields{"error": err.Error()})
		errs := []error{fmt.Errorf("delete favorites: %w", err)}
		// DeleteMany can stop partway; put back whatever it removed.
		if rerr := r.favorites.Restore(ctx, favorites); rerr != nil {
			log.Error("restore favorites failed", rerr, nil)
			errs = append(errs, fmt.Errorf("restore favorites: %w", rerr))
		}
		if rerr := r.users.Restore(ctx, user); rerr != nil {
			log.Error("restore user failed", rerr, nil)
			errs = append(errs, fmt.Errorf("restore user: %w", rerr))
		}
		return errors.Join(errs...)
	}

	log.Info("user deleted", logging.Fields{"favorites_removed": removed})
	return nil
}
