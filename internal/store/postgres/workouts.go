package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/dev0919/Fitness-App1/internal/domain"
)

const workoutColumns = `id, user_id, title, description, duration, difficulty, type, completed, created_at, updated_at, completed_at`

func scanWorkout(row pgx.Row) (*domain.Workout, error) {
	var w domain.Workout
	if err := row.Scan(&w.ID, &w.UserID, &w.Title, &w.Description, &w.Duration, &w.Difficulty, &w.Type, &w.Completed, &w.CreatedAt, &w.UpdatedAt, &w.CompletedAt); err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, err
	}
	w.CreatedAt = w.CreatedAt.UTC()
	w.UpdatedAt = w.UpdatedAt.UTC()
	if w.CompletedAt != nil {
		at := w.CompletedAt.UTC()
		w.CompletedAt = &at
	}
	return &w, nil
}

// GetWorkout implements domain.WorkoutRepository.
func (s *Store) GetWorkout(ctx context.Context, id int64) (*domain.Workout, error) {
	return scanWorkout(s.db.QueryRow(ctx, `SELECT `+workoutColumns+` FROM workouts WHERE id = $1`, id))
}

// ListWorkouts returns the user's workouts ordered by id.
func (s *Store) ListWorkouts(ctx context.Context, userID int64) ([]domain.Workout, error) {
	rows, err := s.db.Query(ctx, `SELECT `+workoutColumns+` FROM workouts WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Workout, 0)
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *w)
	}
	return out, rows.Err()
}

// CreateWorkout implements domain.WorkoutRepository.
func (s *Store) CreateWorkout(ctx context.Context, workout domain.Workout) (*domain.Workout, error) {
	if workout.CreatedAt.IsZero() {
		workout.CreatedAt = s.now()
	}
	if workout.UpdatedAt.IsZero() {
		workout.UpdatedAt = workout.CreatedAt
	}
	err := s.db.QueryRow(ctx,
		`INSERT INTO workouts (user_id, title, description, duration, difficulty, type, completed, created_at, updated_at, completed_at)
         VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10) RETURNING id`,
		workout.UserID, workout.Title, workout.Description, workout.Duration, workout.Difficulty, workout.Type,
		workout.Completed, workout.CreatedAt, workout.UpdatedAt, workout.CompletedAt,
	).Scan(&workout.ID)
	if err != nil {
		return nil, mapError(err, "workout")
	}
	return &workout, nil
}

// UpdateWorkout implements domain.WorkoutRepository.
func (s *Store) UpdateWorkout(ctx context.Context, id int64, patch domain.WorkoutPatch) (*domain.Workout, error) {
	current, err := scanWorkout(s.db.QueryRow(ctx, `SELECT `+workoutColumns+` FROM workouts WHERE id = $1 FOR UPDATE`, id))
	if err != nil || current == nil {
		return nil, err
	}
	updated := current.Apply(patch, s.now())
	if _, err := s.db.Exec(ctx,
		`UPDATE workouts SET title = $2, description = $3, duration = $4, difficulty = $5, type = $6,
                completed = $7, updated_at = $8, completed_at = $9
          WHERE id = $1`,
		id, updated.Title, updated.Description, updated.Duration, updated.Difficulty, updated.Type,
		updated.Completed, updated.UpdatedAt, updated.CompletedAt,
	); err != nil {
		return nil, mapError(err, "workout")
	}
	return &updated, nil
}

// DeleteWorkout implements domain.WorkoutRepository.
func (s *Store) DeleteWorkout(ctx context.Context, id int64) (bool, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM workouts WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

const exerciseColumns = `id, workout_id, name, sets, reps, weight, duration, rest_time, notes, completed`

func scanExercise(row pgx.Row) (*domain.Exercise, error) {
	var e domain.Exercise
	if err := row.Scan(&e.ID, &e.WorkoutID, &e.Name, &e.Sets, &e.Reps, &e.Weight, &e.Duration, &e.RestTime, &e.Notes, &e.Completed); err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

// GetExercise implements domain.ExerciseRepository.
func (s *Store) GetExercise(ctx context.Context, id int64) (*domain.Exercise, error) {
	return scanExercise(s.db.QueryRow(ctx, `SELECT `+exerciseColumns+` FROM exercises WHERE id = $1`, id))
}

// ListExercises returns the workout's exercises ordered by id.
func (s *Store) ListExercises(ctx context.Context, workoutID int64) ([]domain.Exercise, error) {
	rows, err := s.db.Query(ctx, `SELECT `+exerciseColumns+` FROM exercises WHERE workout_id = $1 ORDER BY id`, workoutID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Exercise, 0)
	for rows.Next() {
		e, err := scanExercise(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// CreateExercise implements domain.ExerciseRepository.
func (s *Store) CreateExercise(ctx context.Context, exercise domain.Exercise) (*domain.Exercise, error) {
	err := s.db.QueryRow(ctx,
		`INSERT INTO exercises (workout_id, name, sets, reps, weight, duration, rest_time, notes, completed)
         VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9) RETURNING id`,
		exercise.WorkoutID, exercise.Name, exercise.Sets, exercise.Reps, exercise.Weight,
		exercise.Duration, exercise.RestTime, exercise.Notes, exercise.Completed,
	).Scan(&exercise.ID)
	if err != nil {
		return nil, mapError(err, "exercise")
	}
	return &exercise, nil
}

// UpdateExercise implements domain.ExerciseRepository.
func (s *Store) UpdateExercise(ctx context.Context, id int64, patch domain.ExercisePatch) (*domain.Exercise, error) {
	current, err := scanExercise(s.db.QueryRow(ctx, `SELECT `+exerciseColumns+` FROM exercises WHERE id = $1 FOR UPDATE`, id))
	if err != nil || current == nil {
		return nil, err
	}
	updated := current.Apply(patch)
	if _, err := s.db.Exec(ctx,
		`UPDATE exercises SET name = $2, sets = $3, reps = $4, weight = $5, duration = $6, rest_time = $7,
                notes = $8, completed = $9
          WHERE id = $1`,
		id, updated.Name, updated.Sets, updated.Reps, updated.Weight, updated.Duration, updated.RestTime,
		updated.Notes, updated.Completed,
	); err != nil {
		return nil, mapError(err, "exercise")
	}
	return &updated, nil
}

// DeleteExercise implements domain.ExerciseRepository.
func (s *Store) DeleteExercise(ctx context.Context, id int64) (bool, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM exercises WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
