package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"

	"github.com/dev0919/Fitness-App1/internal/domain"
	"github.com/dev0919/Fitness-App1/internal/events"
)

const friendColumns = `id, user_id, friend_id, status, created_at`

func scanFriendLink(row pgx.Row) (*domain.FriendLink, error) {
	var l domain.FriendLink
	if err := row.Scan(&l.ID, &l.UserID, &l.FriendID, &l.Status, &l.CreatedAt); err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, err
	}
	l.CreatedAt = l.CreatedAt.UTC()
	return &l, nil
}

// GetFriendLink implements domain.FriendRepository.
func (s *Store) GetFriendLink(ctx context.Context, id int64) (*domain.FriendLink, error) {
	return scanFriendLink(s.db.QueryRow(ctx, `SELECT `+friendColumns+` FROM friend_links WHERE id = $1`, id))
}

// FindFriendLink implements domain.FriendRepository.
func (s *Store) FindFriendLink(ctx context.Context, a, b int64) (*domain.FriendLink, error) {
	return scanFriendLink(s.db.QueryRow(ctx,
		`SELECT `+friendColumns+` FROM friend_links
          WHERE (user_id = $1 AND friend_id = $2) OR (user_id = $2 AND friend_id = $1)`, a, b))
}

// ListFriendLinks returns links involving userID ordered by id.
func (s *Store) ListFriendLinks(ctx context.Context, userID int64) ([]domain.FriendLink, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+friendColumns+` FROM friend_links WHERE user_id = $1 OR friend_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.FriendLink, 0)
	for rows.Next() {
		l, err := scanFriendLink(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

// CreateFriendLink maps a duplicate pair onto domain.ErrConflict.
func (s *Store) CreateFriendLink(ctx context.Context, link domain.FriendLink) (*domain.FriendLink, error) {
	if link.CreatedAt.IsZero() {
		link.CreatedAt = s.now()
	}
	err := s.db.QueryRow(ctx,
		`INSERT INTO friend_links (user_id, friend_id, status, created_at) VALUES ($1,$2,$3,$4) RETURNING id`,
		link.UserID, link.FriendID, link.Status, link.CreatedAt,
	).Scan(&link.ID)
	if err != nil {
		return nil, mapError(err, "friend link")
	}
	return &link, nil
}

// UpdateFriendLinkStatus implements domain.FriendRepository.
func (s *Store) UpdateFriendLinkStatus(ctx context.Context, id int64, status domain.FriendStatus) (*domain.FriendLink, error) {
	return scanFriendLink(s.db.QueryRow(ctx,
		`UPDATE friend_links SET status = $2 WHERE id = $1 RETURNING `+friendColumns, id, status))
}

// CreateActivity appends the activity and its ActivityRecorded outbox event in one unit of work.
func (s *Store) CreateActivity(ctx context.Context, activity domain.Activity) (*domain.Activity, error) {
	if activity.Timestamp.IsZero() {
		activity.Timestamp = s.now()
	}
	if activity.Metadata == nil {
		activity.Metadata = domain.Metadata{}
	}
	metadata, err := json.Marshal(activity.Metadata)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}

	err = s.Atomic(ctx, func(tx domain.Store) error {
		store := tx.(*Store)
		if err := store.db.QueryRow(ctx,
			`INSERT INTO activities (user_id, type, content, occurred_at, metadata) VALUES ($1,$2,$3,$4,$5) RETURNING id`,
			activity.UserID, activity.Type, activity.Content, activity.Timestamp, metadata,
		).Scan(&activity.ID); err != nil {
			return mapError(err, "activity")
		}
		return store.insertOutbox(ctx, "activity", activity.ID, events.TypeActivityRecorded, activity.UserID, events.ActivityRecorded{
			ActivityID: activity.ID,
			UserID:     activity.UserID,
			Type:       string(activity.Type),
			Content:    activity.Content,
			Metadata:   activity.Metadata,
			OccurredAt: activity.Timestamp,
		})
	})
	if err != nil {
		return nil, err
	}
	return &activity, nil
}

// ListActivities implements domain.ActivityRepository.
func (s *Store) ListActivities(ctx context.Context, userIDs ...int64) ([]domain.Activity, error) {
	out := make([]domain.Activity, 0)
	if len(userIDs) == 0 {
		return out, nil
	}
	rows, err := s.db.Query(ctx,
		`SELECT id, user_id, type, content, occurred_at, metadata FROM activities
          WHERE user_id = ANY($1)
          ORDER BY occurred_at DESC, id DESC`, userIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			a    domain.Activity
			meta []byte
		)
		if err := rows.Scan(&a.ID, &a.UserID, &a.Type, &a.Content, &a.Timestamp, &meta); err != nil {
			return nil, err
		}
		a.Timestamp = a.Timestamp.UTC()
		a.Metadata = domain.Metadata{}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &a.Metadata); err != nil {
				return nil, fmt.Errorf("decode metadata of activity %d: %w", a.ID, err)
			}
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// CreateAchievement appends the achievement and its AchievementEarned outbox event in one unit of work.
func (s *Store) CreateAchievement(ctx context.Context, achievement domain.Achievement) (*domain.Achievement, error) {
	if achievement.EarnedAt.IsZero() {
		achievement.EarnedAt = s.now()
	}
	err := s.Atomic(ctx, func(tx domain.Store) error {
		store := tx.(*Store)
		if err := store.db.QueryRow(ctx,
			`INSERT INTO achievements (user_id, title, description, icon, earned_at) VALUES ($1,$2,$3,$4,$5) RETURNING id`,
			achievement.UserID, achievement.Title, achievement.Description, achievement.Icon, achievement.EarnedAt,
		).Scan(&achievement.ID); err != nil {
			return mapError(err, "achievement")
		}
		return store.insertOutbox(ctx, "achievement", achievement.ID, events.TypeAchievementEarned, achievement.UserID, events.AchievementEarned{
			AchievementID: achievement.ID,
			UserID:        achievement.UserID,
			Title:         achievement.Title,
			Description:   achievement.Description,
			Icon:          achievement.Icon,
			EarnedAt:      achievement.EarnedAt,
		})
	})
	if err != nil {
		return nil, err
	}
	return &achievement, nil
}

// ListAchievements implements domain.AchievementRepository.
func (s *Store) ListAchievements(ctx context.Context, userID int64) ([]domain.Achievement, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, user_id, title, description, icon, earned_at FROM achievements
          WHERE user_id = $1
          ORDER BY earned_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Achievement, 0)
	for rows.Next() {
		var a domain.Achievement
		if err := rows.Scan(&a.ID, &a.UserID, &a.Title, &a.Description, &a.Icon, &a.EarnedAt); err != nil {
			return nil, err
		}
		a.EarnedAt = a.EarnedAt.UTC()
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) insertOutbox(ctx context.Context, aggregateType string, aggregateID int64, eventType string, userID int64, payload any) error {
	route, ok := events.RouteFor(eventType)
	if !ok {
		return fmt.Errorf("unknown event type: %s", eventType)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	id := strconv.FormatInt(aggregateID, 10)

	const stmt = `INSERT INTO outbox (aggregate_type, aggregate_id, event_type, topic, schema_subject, partition_key, payload, dedupe_key)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`

	_, err = s.db.Exec(ctx, stmt,
		aggregateType,
		id,
		eventType,
		route.Topic,
		route.SchemaSubject,
		events.PartitionKey(userID),
		body,
		fmt.Sprintf("%s:%s:%s", aggregateType, id, eventType),
	)
	return err
}
