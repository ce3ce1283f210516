package repository

import (
	"context"
	"fmt"

	"simmarket/models"
)

const (
	lockListingQuery    = "SELECT user_id, price_credits, status FROM listings WHERE id = $1 FOR UPDATE"
	lockUsersQuery      = "SELECT id, credits FROM users WHERE id IN ($1, $2) ORDER BY id FOR UPDATE"
	debitQuery          = "UPDATE users SET credits = credits - $1 WHERE id = $2"
	creditQuery         = "UPDATE users SET credits = credits + $1 WHERE id = $2"
	markSoldQuery       = "UPDATE listings SET status = 'sold' WHERE id = $1"
	insertTransferQuery = "INSERT INTO transactions (from_user_id, to_user_id, listing_id, amount) " +
		"VALUES ($1, $2, $3, $4) RETURNING id, created_at"
	selectReceivedQuery = `SELECT t.id, t.from_user_id, t.to_user_id, t.listing_id, t.amount, t.created_at,
		u.name, l.title
		FROM transactions t
		JOIN users u ON u.id = t.from_user_id
		JOIN listings l ON l.id = t.listing_id
		WHERE t.to_user_id = $1
		ORDER BY t.created_at DESC, t.id DESC`
	selectSentQuery = `SELECT t.id, t.from_user_id, t.to_user_id, t.listing_id, t.amount, t.created_at,
		u.name, l.title
		FROM transactions t
		JOIN users u ON u.id = t.to_user_id
		JOIN listings l ON l.id = t.listing_id
		WHERE t.from_user_id = $1
		ORDER BY t.created_at DESC, t.id DESC`
)

// PurchaseListing moves the listing price from buyer to seller, marks the listing
// sold and records the transfer, all in one transaction. Every precondition is
// re-checked under row locks: the listing row first, then both user rows in id
// order so that concurrent purchases cannot deadlock each other.
func (r PostgresRepository) PurchaseListing(
	ctx context.Context,
	buyerID, listingID int,
) (models.Transaction, error) {
	tx, txCtx, cancel, err := r.beginAtomic(ctx)
	if err != nil {
		return models.Transaction{}, err
	}
	defer cancel()
	defer tx.Rollback()

	var sellerID, price int
	var status string
	err = tx.QueryRowContext(txCtx, lockListingQuery, listingID).Scan(&sellerID, &price, &status)
	if err != nil {
		return models.Transaction{}, translate(err, "lock listing")
	}
	if status != models.ListingActive {
		return models.Transaction{}, fmt.Errorf("listing %d is %s: %w", listingID, status, models.ErrNotFound)
	}
	if sellerID == buyerID {
		return models.Transaction{}, fmt.Errorf("listing %d belongs to buyer: %w", listingID, models.ErrForbidden)
	}

	balances, err := lockBalances(txCtx, tx, buyerID, sellerID)
	if err != nil {
		return models.Transaction{}, err
	}
	buyerCredits, ok := balances[buyerID]
	if !ok {
		return models.Transaction{}, fmt.Errorf("buyer %d: %w", buyerID, models.ErrNotFound)
	}
	if _, ok := balances[sellerID]; !ok {
		return models.Transaction{}, fmt.Errorf("seller %d: %w", sellerID, models.ErrNotFound)
	}
	if buyerCredits < price {
		return models.Transaction{}, fmt.Errorf("balance %d below price %d: %w", buyerCredits, price, models.ErrInsufficientFunds)
	}

	if _, err := tx.ExecContext(txCtx, debitQuery, price, buyerID); err != nil {
		return models.Transaction{}, translate(err, "debit buyer")
	}
	if _, err := tx.ExecContext(txCtx, creditQuery, price, sellerID); err != nil {
		return models.Transaction{}, translate(err, "credit seller")
	}
	if _, err := tx.ExecContext(txCtx, markSoldQuery, listingID); err != nil {
		return models.Transaction{}, translate(err, "mark listing sold")
	}

	t := models.Transaction{
		FromUserID: buyerID,
		ToUserID:   sellerID,
		ListingID:  listingID,
		Amount:     price,
	}
	err = tx.QueryRowContext(txCtx, insertTransferQuery, buyerID, sellerID, listingID, price).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return models.Transaction{}, translate(err, "record transfer")
	}

	if err := tx.Commit(); err != nil {
		return models.Transaction{}, translate(err, "commit purchase")
	}
	return t, nil
}

func lockBalances(ctx context.Context, q queryer, a, b int) (map[int]int, error) {
	rows, err := q.QueryContext(ctx, lockUsersQuery, a, b)
	if err != nil {
		return nil, translate(err, "lock users")
	}
	defer rows.Close()

	balances := make(map[int]int, 2)
	for rows.Next() {
		var id, credits int
		if err := rows.Scan(&id, &credits); err != nil {
			return nil, translate(err, "scan balance")
		}
		balances[id] = credits
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, "lock users")
	}
	return balances, nil
}

// GetUserTransactions returns the transfers a user received and sent, newest first.
func (r PostgresRepository) GetUserTransactions(
	ctx context.Context,
	userID int,
) ([]models.Transaction, []models.Transaction, error) {
	received, err := r.queryTransactions(ctx, selectReceivedQuery, userID)
	if err != nil {
		return nil, nil, err
	}
	sent, err := r.queryTransactions(ctx, selectSentQuery, userID)
	if err != nil {
		return nil, nil, err
	}
	return received, sent, nil
}

func (r PostgresRepository) queryTransactions(
	ctx context.Context,
	query string,
	userID int,
) ([]models.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, translate(err, "list transactions")
	}
	defer rows.Close()

	out := []models.Transaction{}
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(
			&t.ID,
			&t.FromUserID,
			&t.ToUserID,
			&t.ListingID,
			&t.Amount,
			&t.CreatedAt,
			&t.OtherUser,
			&t.ListingTitle,
		); err != nil {
			return nil, translate(err, "scan transaction")
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, "list transactions")
	}
	return out, nil
}
