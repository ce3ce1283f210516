package repository

import (
	"context"

	"simmarket/models"
)

const (
	insertUserQuery = "INSERT INTO users (name, email, password, credits) VALUES ($1, $2, $3, $4) " +
		"RETURNING id, created_at"
	selectUserByEmailQuery = "SELECT id, name, email, password, credits, created_at FROM users WHERE email=$1"
	selectUserByIDQuery    = "SELECT id, name, email, password, credits, created_at FROM users WHERE id=$1"
	addCreditsQuery        = "UPDATE users SET credits = credits + $1 WHERE id = $2 RETURNING credits"
)

func (r PostgresRepository) CreateUser(
	ctx context.Context,
	name, email, passwordHash string,
	credits int,
) (models.User, error) {
	u := models.User{
		Name:     name,
		Email:    email,
		Password: passwordHash,
		Credits:  credits,
	}
	err := r.db.QueryRowContext(
		ctx,
		insertUserQuery,
		name, email, passwordHash, credits,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		return models.User{}, translate(err, "create user")
	}
	return u, nil
}

func (r PostgresRepository) GetUserByEmail(
	ctx context.Context,
	email string,
) (models.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, selectUserByEmailQuery, email))
}

func (r PostgresRepository) GetUserByID(
	ctx context.Context,
	id int,
) (models.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, selectUserByIDQuery, id))
}

// AddUserCredits increases the balance by amount and returns the new balance.
func (r PostgresRepository) AddUserCredits(
	ctx context.Context,
	id, amount int,
) (int, error) {
	var credits int
	err := r.db.QueryRowContext(ctx, addCreditsQuery, amount, id).Scan(&credits)
	if err != nil {
		return 0, translate(err, "add credits")
	}
	return credits, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Credits, &u.CreatedAt)
	if err != nil {
		return models.User{}, translate(err, "get user")
	}
	return u, nil
}
