package service

import (
	"context"
	"time"

	"simmarket/models"
)

//go:generate mockgen -destination=./mocks/mock_repository.go -package=mocks simmarket/service Repository

type UserRepository interface {
	CreateUser(ctx context.Context, name, email, passwordHash string, credits int) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	GetUserByID(ctx context.Context, id int) (models.User, error)
	AddUserCredits(ctx context.Context, id, amount int) (int, error)
}

type ListingRepository interface {
	ListActiveListings(ctx context.Context, filter models.ListingFilter) ([]models.Listing, error)
	CreateListing(ctx context.Context, ownerID int, in models.NewListing) (models.Listing, error)
	GetListingByID(ctx context.Context, id int) (models.Listing, error)
	ViewListing(ctx context.Context, id int) (models.Listing, error)
	UpdateListing(ctx context.Context, id, ownerID int, upd models.ListingUpdate) (models.Listing, error)
}

type FavoriteRepository interface {
	AddFavorite(ctx context.Context, userID, listingID int) error
	RemoveFavorite(ctx context.Context, userID, listingID int) (bool, error)
	ListFavorites(ctx context.Context, userID int) ([]models.Listing, error)
}

type MessageRepository interface {
	CreateMessage(ctx context.Context, senderID, receiverID, listingID int, content string) (models.Message, error)
	ListMessages(ctx context.Context, userID int) ([]models.Message, error)
	MarkMessageRead(ctx context.Context, messageID, receiverID int) (models.Message, error)
	CountUnread(ctx context.Context, userID int) (int, error)
}

// LedgerRepository owns every operation that moves credits between users.
type LedgerRepository interface {
	PurchaseListing(ctx context.Context, buyerID, listingID int) (models.Transaction, error)
	GetUserTransactions(ctx context.Context, userID int) ([]models.Transaction, []models.Transaction, error)
}

type Repository interface {
	UserRepository
	ListingRepository
	FavoriteRepository
	MessageRepository
	LedgerRepository
}

type Service struct {
	repo          Repository
	jwtSecret     string
	tokenTTL      time.Duration
	signupCredits int
}

func NewService(repo Repository, jwtSecret string, tokenTTL time.Duration, signupCredits int) Service {
	return Service{
		repo:          repo,
		jwtSecret:     jwtSecret,
		tokenTTL:      tokenTTL,
		signupCredits: signupCredits,
	}
}
