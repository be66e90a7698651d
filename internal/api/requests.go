package api

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/dev0919/Fitness-App1/internal/domain"
	"github.com/dev0919/Fitness-App1/internal/friends"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validationDetail flattens validator errors into one message.
func validationDetail(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}

// RegisterRequest is the payload for POST /v1/auth/register.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
}

// LoginRequest is the payload for POST /v1/auth/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse is returned by register and login.
type TokenResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *domain.User `json:"user"`
}

// ProfileRequest is the payload for PUT /v1/users/me.
type ProfileRequest struct {
	Name           *string `json:"name" validate:"omitempty,min=1"`
	Username       *string `json:"username" validate:"omitempty,min=1,max=64"`
	Email          *string `json:"email" validate:"omitempty,email"`
	ProfilePicture *string `json:"profilePicture" validate:"omitempty,url"`
	Bio            *string `json:"bio"`
}

func (p ProfileRequest) patch() domain.UserPatch {
	return domain.UserPatch{
		Name:           p.Name,
		Username:       p.Username,
		Email:          p.Email,
		ProfilePicture: p.ProfilePicture,
		Bio:            p.Bio,
	}
}

// WorkoutRequest is the payload for POST /v1/workouts.
type WorkoutRequest struct {
	Title       string  `json:"title" validate:"required"`
	Description *string `json:"description"`
	Duration    int     `json:"duration" validate:"gt=0"`
	Difficulty  string  `json:"difficulty" validate:"oneof=beginner intermediate advanced"`
	Type        string  `json:"type" validate:"oneof=strength cardio flexibility hiit crossfit"`
}

// WorkoutPatchRequest is the payload for PUT /v1/workouts/{id}.
type WorkoutPatchRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1"`
	Description *string `json:"description"`
	Duration    *int    `json:"duration" validate:"omitempty,gt=0"`
	Difficulty  *string `json:"difficulty" validate:"omitempty,oneof=beginner intermediate advanced"`
	Type        *string `json:"type" validate:"omitempty,oneof=strength cardio flexibility hiit crossfit"`
	Completed   *bool   `json:"completed"`
}

func (p WorkoutPatchRequest) patch() domain.WorkoutPatch {
	out := domain.WorkoutPatch{
		Title:       p.Title,
		Description: p.Description,
		Duration:    p.Duration,
		Completed:   p.Completed,
	}
	if p.Difficulty != nil {
		d := domain.Difficulty(*p.Difficulty)
		out.Difficulty = &d
	}
	if p.Type != nil {
		t := domain.WorkoutType(*p.Type)
		out.Type = &t
	}
	return out
}

// ExerciseRequest is the payload for POST /v1/workouts/{id}/exercises.
type ExerciseRequest struct {
	Name     string   `json:"name" validate:"required"`
	Sets     int      `json:"sets" validate:"gte=0"`
	Reps     int      `json:"reps" validate:"gte=0"`
	Weight   *float64 `json:"weight" validate:"omitempty,gte=0"`
	Duration *int     `json:"duration" validate:"omitempty,gte=0"`
	RestTime *int     `json:"restTime" validate:"omitempty,gte=0"`
	Notes    *string  `json:"notes"`
}

// ExercisePatchRequest is the payload for PUT /v1/exercises/{id}.
type ExercisePatchRequest struct {
	Name      *string  `json:"name" validate:"omitempty,min=1"`
	Sets      *int     `json:"sets" validate:"omitempty,gte=0"`
	Reps      *int     `json:"reps" validate:"omitempty,gte=0"`
	Weight    *float64 `json:"weight" validate:"omitempty,gte=0"`
	Duration  *int     `json:"duration" validate:"omitempty,gte=0"`
	RestTime  *int     `json:"restTime" validate:"omitempty,gte=0"`
	Notes     *string  `json:"notes"`
	Completed *bool    `json:"completed"`
}

func (p ExercisePatchRequest) patch() domain.ExercisePatch {
	return domain.ExercisePatch{
		Name:      p.Name,
		Sets:      p.Sets,
		Reps:      p.Reps,
		Weight:    p.Weight,
		Duration:  p.Duration,
		RestTime:  p.RestTime,
		Notes:     p.Notes,
		Completed: p.Completed,
	}
}

// GoalRequest is the payload for POST /v1/goals.
type GoalRequest struct {
	Title       string     `json:"title" validate:"required"`
	Description *string    `json:"description"`
	Type        string     `json:"type" validate:"oneof=workout_count weight time custom"`
	Target      float64    `json:"target" validate:"gt=0"`
	Current     float64    `json:"current" validate:"gte=0"`
	Deadline    *time.Time `json:"deadline"`
}

// GoalPatchRequest is the payload for PUT /v1/goals/{id}.
type GoalPatchRequest struct {
	Title       *string    `json:"title" validate:"omitempty,min=1"`
	Description *string    `json:"description"`
	Type        *string    `json:"type" validate:"omitempty,oneof=workout_count weight time custom"`
	Target      *float64   `json:"target" validate:"omitempty,gt=0"`
	Current     *float64   `json:"current" validate:"omitempty,gte=0"`
	Deadline    *time.Time `json:"deadline"`
}

func (p GoalPatchRequest) patch() domain.GoalPatch {
	out := domain.GoalPatch{
		Title:       p.Title,
		Description: p.Description,
		Target:      p.Target,
		Current:     p.Current,
		Deadline:    p.Deadline,
	}
	if p.Type != nil {
		t := domain.GoalType(*p.Type)
		out.Type = &t
	}
	return out
}

// FriendRequest is the payload for POST /v1/friends.
type FriendRequest struct {
	FriendID int64 `json:"friendId" validate:"required,gt=0"`
}

// FriendResponseRequest is the payload for PUT /v1/friends/{id}.
type FriendResponseRequest struct {
	Status string `json:"status" validate:"required,oneof=accepted rejected"`
}

// ImportContactsRequest is the payload for POST /v1/friends/import.
type ImportContactsRequest struct {
	Source   string            `json:"source" validate:"required"`
	Contacts []friends.Contact `json:"contacts" validate:"required,min=1,dive"`
}

// ActivityRequest is the payload for POST /v1/activities.
type ActivityRequest struct {
	Type     string          `json:"type"`
	Content  string          `json:"content" validate:"required"`
	Metadata domain.Metadata `json:"metadata"`
}

// ListResponse wraps collection results the same way for every list endpoint.
type ListResponse[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"nextCursor,omitempty"`
}

func list[T any](items []T) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Items: items}
}
