package repository

import (
	"context"
	"fmt"
	"strings"

	"simmarket/models"
)

const listingColumns = "l.id, l.user_id, l.title, l.description, l.simulator, l.developer, " +
	"l.aircraft_type, l.price_credits, l.status, l.views, l.favorites, l.created_at, u.name"

const (
	selectActiveListingsQuery = "SELECT " + listingColumns + " FROM listings l " +
		"JOIN users u ON u.id = l.user_id WHERE l.status = 'active'"
	insertListingQuery = "INSERT INTO listings " +
		"(user_id, title, description, simulator, developer, aircraft_type, price_credits, status) " +
		"VALUES ($1, $2, $3, $4, $5, $6, $7, 'active') RETURNING id, created_at"
	selectListingQuery = "SELECT " + listingColumns + " FROM listings l " +
		"JOIN users u ON u.id = l.user_id WHERE l.id = $1"
	viewListingQuery = "UPDATE listings l SET views = l.views + 1 FROM users u " +
		"WHERE l.id = $1 AND u.id = l.user_id RETURNING " + listingColumns
	lockOwnListingQuery = "SELECT title, description, simulator, developer, aircraft_type, price_credits " +
		"FROM listings WHERE id = $1 AND user_id = $2 AND status = 'active' FOR UPDATE"
	updateListingQuery = "UPDATE listings SET title = $1, description = $2, simulator = $3, " +
		"developer = $4, aircraft_type = $5, price_credits = $6 WHERE id = $7"
)

func (r PostgresRepository) ListActiveListings(
	ctx context.Context,
	filter models.ListingFilter,
) ([]models.Listing, error) {
	query, args := activeListingsQuery(filter)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translate(err, "list listings")
	}
	defer rows.Close()

	listings := []models.Listing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, "list listings")
	}
	return listings, nil
}

func activeListingsQuery(filter models.ListingFilter) (string, []any) {
	var b strings.Builder
	b.WriteString(selectActiveListingsQuery)
	var args []any
	add := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		fmt.Fprintf(&b, " AND l.%s = $%d", column, len(args))
	}
	add("simulator", filter.Simulator)
	add("aircraft_type", filter.AircraftType)
	add("developer", filter.Developer)
	b.WriteString(" ORDER BY l.created_at DESC, l.id DESC")
	return b.String(), args
}

func (r PostgresRepository) CreateListing(
	ctx context.Context,
	ownerID int,
	in models.NewListing,
) (models.Listing, error) {
	l := models.Listing{
		UserID:       ownerID,
		Title:        in.Title,
		Description:  in.Description,
		Simulator:    in.Simulator,
		Developer:    in.Developer,
		AircraftType: in.AircraftType,
		PriceCredits: in.PriceCredits,
		Status:       models.ListingActive,
	}
	err := r.db.QueryRowContext(
		ctx,
		insertListingQuery,
		ownerID, in.Title, in.Description, in.Simulator, in.Developer, in.AircraftType, in.PriceCredits,
	).Scan(&l.ID, &l.CreatedAt)
	if err != nil {
		return models.Listing{}, translate(err, "create listing")
	}
	return l, nil
}

// GetListingByID reads a listing without touching its view counter.
func (r PostgresRepository) GetListingByID(
	ctx context.Context,
	id int,
) (models.Listing, error) {
	return getListing(ctx, r.db, id)
}

// ViewListing bumps the view counter by one and returns the updated row.
func (r PostgresRepository) ViewListing(
	ctx context.Context,
	id int,
) (models.Listing, error) {
	return scanListing(r.db.QueryRowContext(ctx, viewListingQuery, id))
}

// UpdateListing applies the non-nil fields of upd. Rows that are missing, owned by
// someone else or already sold all report models.ErrNotFound.
func (r PostgresRepository) UpdateListing(
	ctx context.Context,
	id, ownerID int,
	upd models.ListingUpdate,
) (models.Listing, error) {
	tx, txCtx, cancel, err := r.beginAtomic(ctx)
	if err != nil {
		return models.Listing{}, err
	}
	defer cancel()
	defer tx.Rollback()

	var cur models.NewListing
	err = tx.QueryRowContext(txCtx, lockOwnListingQuery, id, ownerID).Scan(
		&cur.Title,
		&cur.Description,
		&cur.Simulator,
		&cur.Developer,
		&cur.AircraftType,
		&cur.PriceCredits,
	)
	if err != nil {
		return models.Listing{}, translate(err, "lock listing")
	}

	next := applyUpdate(cur, upd)
	_, err = tx.ExecContext(
		txCtx,
		updateListingQuery,
		next.Title, next.Description, next.Simulator, next.Developer, next.AircraftType, next.PriceCredits, id,
	)
	if err != nil {
		return models.Listing{}, translate(err, "update listing")
	}

	l, err := getListing(txCtx, tx, id)
	if err != nil {
		return models.Listing{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Listing{}, translate(err, "commit listing update")
	}
	return l, nil
}

func applyUpdate(cur models.NewListing, upd models.ListingUpdate) models.NewListing {
	if upd.Title != nil {
		cur.Title = *upd.Title
	}
	if upd.Description != nil {
		cur.Description = *upd.Description
	}
	if upd.Simulator != nil {
		cur.Simulator = *upd.Simulator
	}
	if upd.Developer != nil {
		cur.Developer = *upd.Developer
	}
	if upd.AircraftType != nil {
		cur.AircraftType = *upd.AircraftType
	}
	if upd.PriceCredits != nil {
		cur.PriceCredits = *upd.PriceCredits
	}
	return cur
}

func getListing(ctx context.Context, q queryer, id int) (models.Listing, error) {
	return scanListing(q.QueryRowContext(ctx, selectListingQuery, id))
}

func scanListing(row scanner) (models.Listing, error) {
	var l models.Listing
	err := row.Scan(
		&l.ID,
		&l.UserID,
		&l.Title,
		&l.Description,
		&l.Simulator,
		&l.Developer,
		&l.AircraftType,
		&l.PriceCredits,
		&l.Status,
		&l.Views,
		&l.Favorites,
		&l.CreatedAt,
		&l.SellerName,
	)
	if err != nil {
		return models.Listing{}, translate(err, "scan listing")
	}
	return l, nil
}
