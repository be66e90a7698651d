package outbox

import "github.com/dev0919/Fitness-App1/internal/events"

const activityRecordedSchema = `{
  "type": "object",
  "title": "ActivityRecorded",
  "properties": {
    "activity_id": {"type": "integer"},
    "user_id": {"type": "integer"},
    "type": {"type": "string"},
    "content": {"type": "string"},
    "metadata": {"type": ["object", "null"]},
    "occurred_at": {"type": "string", "format": "date-time"}
  },
  "required": ["activity_id", "user_id", "type", "content", "occurred_at"],
  "additionalProperties": false
}`

const achievementEarnedSchema = `{
  "type": "object",
  "title": "AchievementEarned",
  "properties": {
    "achievement_id": {"type": "integer"},
    "user_id": {"type": "integer"},
    "title": {"type": "string"},
    "description": {"type": "string"},
    "icon": {"type": "string"},
    "earned_at": {"type": "string", "format": "date-time"}
  },
  "required": ["achievement_id", "user_id", "title", "earned_at"],
  "additionalProperties": false
}`

// schemaCatalog maps event types to the JSON schema registered for their subject.
var schemaCatalog = map[string]string{
	events.TypeActivityRecorded:  activityRecordedSchema,
	events.TypeAchievementEarned: achievementEarnedSchema,
}
