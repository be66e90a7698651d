package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/dev0919/Fitness-App1/internal/domain"
)

const userColumns = `id, username, password, name, email, profile_picture, bio, created_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Username, &u.Password, &u.Name, &u.Email, &u.ProfilePicture, &u.Bio, &u.CreatedAt); err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, err
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}

// GetUser implements domain.UserRepository.
func (s *Store) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return scanUser(s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// FindUserByUsername matches case-insensitively.
func (s *Store) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return scanUser(s.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(btrim(username)) = lower(btrim($1))`, username))
}

// FindUserByEmail matches case-insensitively.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return scanUser(s.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(btrim(email)) = lower(btrim($1))`, email))
}

// CreateUser implements domain.UserRepository.
func (s *Store) CreateUser(ctx context.Context, user domain.User) (*domain.User, error) {
	if user.ProfilePicture == "" {
		user.ProfilePicture = domain.DefaultProfilePicture
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = s.now()
	}
	err := s.db.QueryRow(ctx,
		`INSERT INTO users (username, password, name, email, profile_picture, bio, created_at)
         VALUES ($1,$2,$3,$4,$5,$6,$7) RETURNING id`,
		user.Username, user.Password, user.Name, user.Email, user.ProfilePicture, user.Bio, user.CreatedAt,
	).Scan(&user.ID)
	if err != nil {
		return nil, mapError(err, "user")
	}
	return &user, nil
}

// UpdateUser implements domain.UserRepository.
func (s *Store) UpdateUser(ctx context.Context, id int64, patch domain.UserPatch) (*domain.User, error) {
	current, err := scanUser(s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id))
	if err != nil || current == nil {
		return nil, err
	}
	updated := current.Apply(patch)
	if _, err := s.db.Exec(ctx,
		`UPDATE users SET username = $2, name = $3, email = $4, profile_picture = $5, bio = $6 WHERE id = $1`,
		id, updated.Username, updated.Name, updated.Email, updated.ProfilePicture, updated.Bio,
	); err != nil {
		return nil, mapError(err, "user")
	}
	return &updated, nil
}
