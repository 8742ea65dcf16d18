package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	pgx "github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/rosterhq/roster-backend/internal/user/domain"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const userColumns = `id, username, password, token, status, birthday, creation_date`

func (r *PgRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	rows, err := r.pool.Query(
		ctx,
		`SELECT `+userColumns+` FROM users ORDER BY id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Password, &u.Token, &u.Status, &u.Birthday, &u.CreationDate); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("rows iteration error: %w", rows.Err())
	}

	return users, nil
}

func (r *PgRepository) FindByID(ctx context.Context, id int64) (domain.User, error) {
	row := r.pool.QueryRow(
		ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		id,
	)
	return scanUser(row, "id")
}

func (r *PgRepository) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	row := r.pool.QueryRow(
		ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`,
		username,
	)
	return scanUser(row, "username")
}

func (r *PgRepository) Save(ctx context.Context, user domain.User) (domain.User, error) {
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO users (id, username, password, token, status, birthday, creation_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO UPDATE SET
		   username = EXCLUDED.username,
		   password = EXCLUDED.password,
		   token = EXCLUDED.token,
		   status = EXCLUDED.status,
		   birthday = EXCLUDED.birthday,
		   creation_date = EXCLUDED.creation_date`,
		user.ID,
		user.Username,
		user.Password,
		user.Token,
		string(user.Status),
		user.Birthday,
		user.CreationDate,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.User{}, ErrUsernameAlreadyExists
		}
		return domain.User{}, fmt.Errorf("failed to save user: %w", err)
	}
	return user, nil
}

func (r *PgRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM users`); err != nil {
		return fmt.Errorf("failed to delete users: %w", err)
	}
	return nil
}

func scanUser(row pgx.Row, key string) (domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Username, &u.Password, &u.Token, &u.Status, &u.Birthday, &u.CreationDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("failed to find user by %s: %w", key, err)
	}
	return u, nil
}
