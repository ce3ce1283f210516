package repository

import (
	"context"

	"simmarket/models"
)

const (
	insertFavoriteQuery   = "INSERT INTO favorites (user_id, listing_id) VALUES ($1, $2)"
	deleteFavoriteQuery   = "DELETE FROM favorites WHERE user_id = $1 AND listing_id = $2"
	incFavoriteCountQuery = "UPDATE listings SET favorites = favorites + 1 WHERE id = $1"
	decFavoriteCountQuery = "UPDATE listings SET favorites = favorites - 1 WHERE id = $1"
	selectFavoritesQuery  = "SELECT " + listingColumns + " FROM favorites f " +
		"JOIN listings l ON l.id = f.listing_id " +
		"JOIN users u ON u.id = l.user_id " +
		"WHERE f.user_id = $1 ORDER BY f.created_at DESC, l.id DESC"
)

// AddFavorite stores the (user, listing) pair and bumps the listing counter in
// one transaction. A duplicate pair yields models.ErrConflict.
func (r PostgresRepository) AddFavorite(
	ctx context.Context,
	userID, listingID int,
) error {
	tx, txCtx, cancel, err := r.beginAtomic(ctx)
	if err != nil {
		return err
	}
	defer cancel()
	defer tx.Rollback()

	if _, err := tx.ExecContext(txCtx, insertFavoriteQuery, userID, listingID); err != nil {
		return translate(err, "insert favorite")
	}
	if _, err := tx.ExecContext(txCtx, incFavoriteCountQuery, listingID); err != nil {
		return translate(err, "increment favorites")
	}
	if err := tx.Commit(); err != nil {
		return translate(err, "commit favorite")
	}
	return nil
}

// RemoveFavorite deletes the pair if present and reports whether a row went away.
// The counter only moves when a row was actually deleted.
func (r PostgresRepository) RemoveFavorite(
	ctx context.Context,
	userID, listingID int,
) (bool, error) {
	tx, txCtx, cancel, err := r.beginAtomic(ctx)
	if err != nil {
		return false, err
	}
	defer cancel()
	defer tx.Rollback()

	res, err := tx.ExecContext(txCtx, deleteFavoriteQuery, userID, listingID)
	if err != nil {
		return false, translate(err, "delete favorite")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, translate(err, "delete favorite")
	}
	if n == 0 {
		return false, nil
	}
	if _, err := tx.ExecContext(txCtx, decFavoriteCountQuery, listingID); err != nil {
		return false, translate(err, "decrement favorites")
	}
	if err := tx.Commit(); err != nil {
		return false, translate(err, "commit favorite removal")
	}
	return true, nil
}

func (r PostgresRepository) ListFavorites(
	ctx context.Context,
	userID int,
) ([]models.Listing, error) {
	rows, err := r.db.QueryContext(ctx, selectFavoritesQuery, userID)
	if err != nil {
		return nil, translate(err, "list favorites")
	}
	defer rows.Close()

	favorites := []models.Listing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		favorites = append(favorites, l)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, "list favorites")
	}
	return favorites, nil
}
