package store

import (
	"context"

	"github.com/tonife/walletcore/internal/domain"
)

const userColumns = `id, email, first_name, last_name, COALESCE(phone_number, ''), status, created_at, updated_at`

func (q *pgQuerier) scanUser(row interface{ Scan(dest ...any) error }) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.PhoneNumber, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, mapScanErr(err)
	}
	return &u, nil
}

func (q *pgQuerier) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return q.scanUser(q.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (q *pgQuerier) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return q.scanUser(q.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (q *pgQuerier) InsertUser(ctx context.Context, u *domain.User) error {
	_, err := q.db.Exec(ctx,
		`INSERT INTO users (id, email, first_name, last_name, phone_number, status)
		 VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6)`,
		u.ID, u.Email, u.FirstName, u.LastName, u.PhoneNumber, u.Status)
	return mapInsertErr(err)
}
