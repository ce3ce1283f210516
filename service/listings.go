package service

import (
	"context"
	"errors"
	"strings"

	"simmarket/models"
)

var errListingNotFound = fail(models.ErrNotFound, "Listing not found")

func (s Service) ListActive(
	ctx context.Context,
	filter models.ListingFilter,
) ([]models.Listing, error) {
	filter.Simulator = strings.TrimSpace(filter.Simulator)
	filter.AircraftType = strings.TrimSpace(filter.AircraftType)
	filter.Developer = strings.TrimSpace(filter.Developer)
	return s.repo.ListActiveListings(ctx, filter)
}

func (s Service) CreateListing(
	ctx context.Context,
	owner models.User,
	in models.NewListing,
) (models.Listing, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Simulator = strings.TrimSpace(in.Simulator)
	in.Developer = strings.TrimSpace(in.Developer)
	in.AircraftType = strings.TrimSpace(in.AircraftType)
	if in.Title == "" || in.Simulator == "" || in.Developer == "" || in.AircraftType == "" || in.PriceCredits <= 0 {
		return models.Listing{}, fail(models.ErrValidation, "Missing required fields")
	}

	listing, err := s.repo.CreateListing(ctx, owner.ID, in)
	if err != nil {
		return models.Listing{}, err
	}
	listing.SellerName = owner.Name
	return listing, nil
}

// GetListing returns the listing and counts the read as one view. Every call
// counts, repeated reads by the same user included.
func (s Service) GetListing(
	ctx context.Context,
	id int,
) (models.Listing, error) {
	listing, err := s.repo.ViewListing(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.Listing{}, errListingNotFound
		}
		return models.Listing{}, err
	}
	return listing, nil
}

// UpdateListing edits an active listing owned by owner. Missing, foreign and
// sold listings are indistinguishable to the caller.
func (s Service) UpdateListing(
	ctx context.Context,
	owner models.User,
	id int,
	upd models.ListingUpdate,
) (models.Listing, error) {
	if err := validateUpdate(&upd); err != nil {
		return models.Listing{}, err
	}
	listing, err := s.repo.UpdateListing(ctx, id, owner.ID, upd)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.Listing{}, errListingNotFound
		}
		return models.Listing{}, err
	}
	return listing, nil
}

func validateUpdate(upd *models.ListingUpdate) error {
	for _, field := range []*string{upd.Title, upd.Simulator, upd.Developer, upd.AircraftType} {
		if field == nil {
			continue
		}
		*field = strings.TrimSpace(*field)
		if *field == "" {
			return fail(models.ErrValidation, "Required fields cannot be empty")
		}
	}
	if upd.PriceCredits != nil && *upd.PriceCredits <= 0 {
		return fail(models.ErrValidation, "Price must be a positive number of credits")
	}
	return nil
}
