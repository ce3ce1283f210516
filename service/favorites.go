package service

import (
	"context"
	"errors"
	"log"

	"simmarket/models"
)

// AddFavorite records that user favorited the listing. A second add of the same
// pair fails with models.ErrConflict and leaves the counter alone.
func (s Service) AddFavorite(
	ctx context.Context,
	user models.User,
	listingID int,
) error {
	err := s.repo.AddFavorite(ctx, user.ID, listingID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, models.ErrConflict):
		return fail(models.ErrConflict, "Already favorited")
	case errors.Is(err, models.ErrNotFound):
		return errListingNotFound
	default:
		return err
	}
}

// RemoveFavorite is a no-op for pairs that do not exist.
func (s Service) RemoveFavorite(
	ctx context.Context,
	user models.User,
	listingID int,
) error {
	removed, err := s.repo.RemoveFavorite(ctx, user.ID, listingID)
	if err != nil {
		return err
	}
	if !removed {
		log.Printf("favorite (%d, %d) not present, nothing removed", user.ID, listingID)
	}
	return nil
}

func (s Service) ListFavorites(
	ctx context.Context,
	user models.User,
) ([]models.Listing, error) {
	return s.repo.ListFavorites(ctx, user.ID)
}
