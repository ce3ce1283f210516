package models

import "time"

const (
	ListingActive = "active"
	ListingSold   = "sold"
)

type User struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Credits   int       `json:"credits"`
	CreatedAt time.Time `json:"created_at"`
}

type Listing struct {
	ID           int       `json:"id"`
	UserID       int       `json:"user_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Simulator    string    `json:"simulator"`
	Developer    string    `json:"developer"`
	AircraftType string    `json:"aircraft_type"`
	PriceCredits int       `json:"price_credits"`
	Status       string    `json:"status"`
	Views        int       `json:"views"`
	Favorites    int       `json:"favorites"`
	SellerName   string    `json:"seller_name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// ListingFilter narrows ListActive; empty fields match everything.
type ListingFilter struct {
	Simulator    string
	AircraftType string
	Developer    string
}

type NewListing struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Simulator    string `json:"simulator"`
	Developer    string `json:"developer"`
	AircraftType string `json:"aircraft_type"`
	PriceCredits int    `json:"price_credits"`
}

// ListingUpdate carries a partial edit; nil fields are left untouched.
type ListingUpdate struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	Simulator    *string `json:"simulator"`
	Developer    *string `json:"developer"`
	AircraftType *string `json:"aircraft_type"`
	PriceCredits *int    `json:"price_credits"`
}

type Favorite struct {
	UserID    int       `json:"user_id"`
	ListingID int       `json:"listing_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Message struct {
	ID           int       `json:"id"`
	SenderID     int       `json:"sender_id"`
	ReceiverID   int       `json:"receiver_id"`
	ListingID    int       `json:"listing_id"`
	Content      string    `json:"content"`
	Read         bool      `json:"read"`
	CreatedAt    time.Time `json:"created_at"`
	SenderName   string    `json:"sender_name,omitempty"`
	ReceiverName string    `json:"receiver_name,omitempty"`
	ListingTitle string    `json:"listing_title,omitempty"`
}

// Transaction is one committed credit transfer from buyer to seller.
type Transaction struct {
	ID           int       `json:"id"`
	FromUserID   int       `json:"from_user_id"`
	ToUserID     int       `json:"to_user_id"`
	ListingID    int       `json:"listing_id"`
	Amount       int       `json:"amount"`
	CreatedAt    time.Time `json:"created_at"`
	OtherUser    string    `json:"other_user,omitempty"`
	ListingTitle string    `json:"listing_title,omitempty"`
}
