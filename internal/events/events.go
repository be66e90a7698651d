// Package events defines the integration event payloads published through the outbox.
package events

import (
	"strconv"
	"time"
)

// Event types carried in the outbox and the event_type Kafka header.
const (
	TypeActivityRecorded  = "activity.recorded"
	TypeAchievementEarned = "achievement.earned"
)

// ActivityRecorded is emitted for every appended feed activity.
type ActivityRecorded struct {
	ActivityID int64          `json:"activity_id"`
	UserID     int64          `json:"user_id"`
	Type       string         `json:"type"`
	Content    string         `json:"content"`
	Metadata   map[string]any `json:"metadata"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// AchievementEarned is emitted when the rule engine awards an achievement.
type AchievementEarned struct {
	AchievementID int64     `json:"achievement_id"`
	UserID        int64     `json:"user_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Icon          string    `json:"icon"`
	EarnedAt      time.Time `json:"earned_at"`
}

// Kafka headers set on every published record.
const (
	HeaderEventType     = "event_type"
	HeaderSchemaSubject = "schema_subject"
)

// Route describes where an event type is published.
type Route struct {
	Topic         string
	SchemaSubject string
}

var routes = map[string]Route{
	TypeActivityRecorded: {
		Topic:         "social_activity_events",
		SchemaSubject: "social_activity_events-value",
	},
	TypeAchievementEarned: {
		Topic:         "achievement_events",
		SchemaSubject: "achievement_events-value",
	},
}

// RouteFor returns the route of eventType.
func RouteFor(eventType string) (Route, bool) {
	r, ok := routes[eventType]
	return r, ok
}

// Topics lists every topic the outbox publishes to.
func Topics() []string {
	return []string{routes[TypeActivityRecorded].Topic, routes[TypeAchievementEarned].Topic}
}

// PartitionKey keys events by user so a user's events stay ordered.
func PartitionKey(userID int64) string {
	return "user:" + strconv.FormatInt(userID, 10)
}
