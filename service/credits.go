package service

import (
	"context"
	"errors"
	"fmt"

	"simmarket/models"
)

type PurchaseResponse struct {
	Success     bool               `json:"success"`
	Message     string             `json:"message"`
	Transaction models.Transaction `json:"transaction"`
}

type HistoryResponse struct {
	Received []models.Transaction `json:"received"`
	Sent     []models.Transaction `json:"sent"`
}

var (
	errListingUnavailable = fail(models.ErrNotFound, "Listing not found or not available")
	errSelfPurchase       = fail(models.ErrForbidden, "Cannot purchase your own listing")
	errInsufficientFunds  = fail(models.ErrInsufficientFunds, "Insufficient credits")
)

func (s Service) Balance(user models.User) int {
	return user.Credits
}

// PurchaseCredits tops up the balance. It stands in for a real payment flow.
func (s Service) PurchaseCredits(
	ctx context.Context,
	user models.User,
	amount int,
) (int, error) {
	if amount <= 0 {
		return 0, fail(models.ErrValidation, "Invalid amount")
	}
	credits, err := s.repo.AddUserCredits(ctx, user.ID, amount)
	if err != nil {
		return 0, fmt.Errorf("top up user %d: %w", user.ID, err)
	}
	return credits, nil
}

// Purchase buys the listing for buyer. The checks below reject the obvious
// failures early; the repository repeats them under row locks, so the outcome is
// either a full transfer with the listing sold or no change at all.
func (s Service) Purchase(
	ctx context.Context,
	buyer models.User,
	listingID int,
) (PurchaseResponse, error) {
	listing, err := s.repo.GetListingByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return PurchaseResponse{}, errListingUnavailable
		}
		return PurchaseResponse{}, err
	}
	if listing.Status != models.ListingActive {
		return PurchaseResponse{}, errListingUnavailable
	}
	if listing.UserID == buyer.ID {
		return PurchaseResponse{}, errSelfPurchase
	}
	if buyer.Credits < listing.PriceCredits {
		return PurchaseResponse{}, errInsufficientFunds
	}

	t, err := s.repo.PurchaseListing(ctx, buyer.ID, listingID)
	switch {
	case err == nil:
	case errors.Is(err, models.ErrNotFound):
		return PurchaseResponse{}, errListingUnavailable
	case errors.Is(err, models.ErrForbidden):
		return PurchaseResponse{}, errSelfPurchase
	case errors.Is(err, models.ErrInsufficientFunds):
		return PurchaseResponse{}, errInsufficientFunds
	default:
		return PurchaseResponse{}, fmt.Errorf("purchase listing %d: %w", listingID, err)
	}

	return PurchaseResponse{
		Success:     true,
		Message:     "Purchase successful",
		Transaction: t,
	}, nil
}

func (s Service) History(
	ctx context.Context,
	user models.User,
) (HistoryResponse, error) {
	received, sent, err := s.repo.GetUserTransactions(ctx, user.ID)
	if err != nil {
		return HistoryResponse{}, err
	}
	if received == nil {
		received = []models.Transaction{}
	}
	if sent == nil {
		sent = []models.Transaction{}
	}
	return HistoryResponse{Received: received, Sent: sent}, nil
}
