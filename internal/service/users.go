package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dev0919/Fitness-App1/internal/auth"
	"github.com/dev0919/Fitness-App1/internal/domain"
)

// RegisterInput carries a new account.
type RegisterInput struct {
	Username string
	Password string
	Name     string
	Email    string
}

var validate = validator.New()

func validEmail(email string) bool {
	return validate.Var(email, "required,email") == nil
}

// Register creates an account. Usernames and emails are unique case-insensitively.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	switch {
	case in.Username == "":
		return nil, domain.InvalidArgumentf("username is required")
	case in.Password == "":
		return nil, domain.InvalidArgumentf("password is required")
	case in.Name == "":
		return nil, domain.InvalidArgumentf("name is required")
	case !validEmail(in.Email):
		return nil, domain.InvalidArgumentf("email is invalid")
	}

	hash, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}

	var created *domain.User
	err = s.store.Atomic(ctx, func(tx domain.Store) error {
		if err := ensureIdentityFree(ctx, tx, 0, &in.Username, &in.Email); err != nil {
			return err
		}
		created, err = tx.CreateUser(ctx, domain.User{
			Username:  in.Username,
			Password:  hash,
			Name:      in.Name,
			Email:     in.Email,
			CreatedAt: s.now(),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Authenticate checks a username and password pair.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.store.FindUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthenticated
	}
	ok, err := auth.CheckPassword(user.Password, password)
	if err != nil || !ok {
		return nil, domain.ErrUnauthenticated
	}
	return user, nil
}

// GetUser returns a user by id.
func (s *Service) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.NotFoundf("user %d", userID)
	}
	return user, nil
}

// UpdateProfile applies a partial profile update for the actor.
func (s *Service) UpdateProfile(ctx context.Context, actorID int64, patch domain.UserPatch) (*domain.User, error) {
	if patch.Username != nil {
		trimmed := strings.TrimSpace(*patch.Username)
		if trimmed == "" {
			return nil, domain.InvalidArgumentf("username must not be empty")
		}
		patch.Username = &trimmed
	}
	if patch.Email != nil {
		trimmed := strings.TrimSpace(*patch.Email)
		if !validEmail(trimmed) {
			return nil, domain.InvalidArgumentf("email is invalid")
		}
		patch.Email = &trimmed
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, domain.InvalidArgumentf("name must not be empty")
	}

	var updated *domain.User
	err := s.store.Atomic(ctx, func(tx domain.Store) error {
		if err := ensureIdentityFree(ctx, tx, actorID, patch.Username, patch.Email); err != nil {
			return err
		}
		var err error
		updated, err = tx.UpdateUser(ctx, actorID, patch)
		if err != nil {
			return err
		}
		if updated == nil {
			return domain.NotFoundf("user %d", actorID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ensureIdentityFree fails with Conflict when another user holds the username or email.
func ensureIdentityFree(ctx context.Context, users domain.UserRepository, selfID int64, username, email *string) error {
	if username != nil {
		holder, err := users.FindUserByUsername(ctx, *username)
		if err != nil {
			return err
		}
		if holder != nil && holder.ID != selfID {
			return domain.Conflictf("username %q is already taken", *username)
		}
	}
	if email != nil {
		holder, err := users.FindUserByEmail(ctx, *email)
		if err != nil {
			return err
		}
		if holder != nil && holder.ID != selfID {
			return domain.Conflictf("email %q is already registered", *email)
		}
	}
	return nil
}
