package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/dev0919/Fitness-App1/internal/domain"
)

const goalColumns = `id, user_id, title, description, type, target, current, completed, deadline, created_at`

func scanGoal(row pgx.Row) (*domain.Goal, error) {
	var g domain.Goal
	if err := row.Scan(&g.ID, &g.UserID, &g.Title, &g.Description, &g.Type, &g.Target, &g.Current, &g.Completed, &g.Deadline, &g.CreatedAt); err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, err
	}
	g.CreatedAt = g.CreatedAt.UTC()
	return &g, nil
}

// GetGoal implements domain.GoalRepository.
func (s *Store) GetGoal(ctx context.Context, id int64) (*domain.Goal, error) {
	return scanGoal(s.db.QueryRow(ctx, `SELECT `+goalColumns+` FROM goals WHERE id = $1`, id))
}

// ListGoals returns the user's goals ordered by id.
func (s *Store) ListGoals(ctx context.Context, userID int64) ([]domain.Goal, error) {
	rows, err := s.db.Query(ctx, `SELECT `+goalColumns+` FROM goals WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Goal, 0)
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *g)
	}
	return out, rows.Err()
}

// CreateGoal derives Completed from current and target before inserting.
func (s *Store) CreateGoal(ctx context.Context, goal domain.Goal) (*domain.Goal, error) {
	goal.Completed = goal.Current >= goal.Target
	if goal.CreatedAt.IsZero() {
		goal.CreatedAt = s.now()
	}
	err := s.db.QueryRow(ctx,
		`INSERT INTO goals (user_id, title, description, type, target, current, completed, deadline, created_at)
         VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9) RETURNING id`,
		goal.UserID, goal.Title, goal.Description, goal.Type, goal.Target, goal.Current, goal.Completed,
		goal.Deadline, goal.CreatedAt,
	).Scan(&goal.ID)
	if err != nil {
		return nil, mapError(err, "goal")
	}
	return &goal, nil
}

// UpdateGoal implements domain.GoalRepository.
func (s *Store) UpdateGoal(ctx context.Context, id int64, patch domain.GoalPatch) (*domain.Goal, error) {
	current, err := scanGoal(s.db.QueryRow(ctx, `SELECT `+goalColumns+` FROM goals WHERE id = $1 FOR UPDATE`, id))
	if err != nil || current == nil {
		return nil, err
	}
	updated := current.Apply(patch)
	if _, err := s.db.Exec(ctx,
		`UPDATE goals SET title = $2, description = $3, type = $4, target = $5, current = $6,
                completed = $7, deadline = $8
          WHERE id = $1`,
		id, updated.Title, updated.Description, updated.Type, updated.Target, updated.Current,
		updated.Completed, updated.Deadline,
	); err != nil {
		return nil, mapError(err, "goal")
	}
	return &updated, nil
}

// DeleteGoal implements domain.GoalRepository.
func (s *Store) DeleteGoal(ctx context.Context, id int64) (bool, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM goals WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
