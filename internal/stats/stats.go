// Package stats derives dashboard statistics from workout, goal and social records.
// Everything is recomputed on each call.
package stats

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/dev0919/Fitness-App1/internal/domain"
	"github.com/dev0919/Fitness-App1/internal/friends"
)

const (
	day = 24 * time.Hour

	weekWindow        = 7 * day
	monthWindow       = 30 * day
	threeMonthsWindow = 90 * day

	// dailySeriesDays is the length of the dailyActiveMinutes series.
	dailySeriesDays = 30

	dateLayout = "2006-01-02"
)

// Summary is the dashboard headline.
type Summary struct {
	TotalWorkouts         int `json:"totalWorkouts"`
	CompletedWorkouts     int `json:"completedWorkouts"`
	ActiveMinutes         int `json:"activeMinutes"`
	GoalProgress          int `json:"goalProgress"`
	FriendActivitiesCount int `json:"friendActivities"`
	AchievementsCount     int `json:"achievements"`
}

// WorkoutStats is the time-series view of a user's completed workouts.
type WorkoutStats struct {
	Summary            WorkoutSummary `json:"summary"`
	Trends             Trends         `json:"trends"`
	WorkoutsByType     []TypeCount    `json:"workoutsByType"`
	WorkoutsByDay      []DayCount     `json:"workoutsByDay"`
	DailyActiveMinutes []DailyMinutes `json:"dailyActiveMinutes"`
}

// WorkoutSummary aggregates over every completed workout.
type WorkoutSummary struct {
	TotalCompletedWorkouts int     `json:"totalCompletedWorkouts"`
	TotalActiveMinutes     int     `json:"totalActiveMinutes"`
	AvgWorkoutDuration     int     `json:"avgWorkoutDuration"`
	WorkoutsPerWeek        float64 `json:"workoutsPerWeek"`
	DaysActive             int     `json:"daysActive"`
	WeeklyTrend            int     `json:"weeklyTrend"`
}

// Trends counts completed workouts per trailing window.
type Trends struct {
	LastWeek        int `json:"lastWeek"`
	LastMonth       int `json:"lastMonth"`
	LastThreeMonths int `json:"lastThreeMonths"`
}

// TypeCount is one bucket of the workout type histogram.
type TypeCount struct {
	Type  domain.WorkoutType `json:"type"`
	Count int                `json:"count"`
}

// DayCount is one bucket of the day-of-week histogram.
type DayCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// DailyMinutes is one entry of the trailing daily series.
type DailyMinutes struct {
	Date    string `json:"date"`
	Minutes int    `json:"minutes"`
}

// Source is the read access the Aggregator needs.
type Source interface {
	domain.WorkoutRepository
	domain.GoalRepository
	domain.FriendRepository
	domain.ActivityRepository
	domain.AchievementRepository
}

// Aggregator loads records from a Source and computes statistics.
type Aggregator struct {
	source Source
	now    func() time.Time
}

// Option configures the Aggregator.
type Option func(*Aggregator)

// WithClock overrides the reference time.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		a.now = now
	}
}

// NewAggregator constructs an Aggregator.
func NewAggregator(source Source, opts ...Option) *Aggregator {
	a := &Aggregator{source: source, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SummaryStats computes the dashboard headline for userID.
func (a *Aggregator) SummaryStats(ctx context.Context, userID int64) (Summary, error) {
	workouts, err := a.source.ListWorkouts(ctx, userID)
	if err != nil {
		return Summary{}, fmt.Errorf("list workouts: %w", err)
	}
	goals, err := a.source.ListGoals(ctx, userID)
	if err != nil {
		return Summary{}, fmt.Errorf("list goals: %w", err)
	}
	friendIDs, err := friends.AcceptedFriendIDs(ctx, a.source, userID)
	if err != nil {
		return Summary{}, fmt.Errorf("list friends: %w", err)
	}
	friendActivities := 0
	if len(friendIDs) > 0 {
		items, err := a.source.ListActivities(ctx, friendIDs...)
		if err != nil {
			return Summary{}, fmt.Errorf("list friend activities: %w", err)
		}
		friendActivities = len(items)
	}
	achievements, err := a.source.ListAchievements(ctx, userID)
	if err != nil {
		return Summary{}, fmt.Errorf("list achievements: %w", err)
	}

	summary := ComputeSummary(workouts, goals)
	summary.FriendActivitiesCount = friendActivities
	summary.AchievementsCount = len(achievements)
	return summary, nil
}

// WorkoutStats computes the time-series view for userID.
func (a *Aggregator) WorkoutStats(ctx context.Context, userID int64) (WorkoutStats, error) {
	workouts, err := a.source.ListWorkouts(ctx, userID)
	if err != nil {
		return WorkoutStats{}, fmt.Errorf("list workouts: %w", err)
	}
	return ComputeWorkoutStats(workouts, a.now()), nil
}

// ComputeSummary derives the workout and goal counters of a Summary.
func ComputeSummary(workouts []domain.Workout, goals []domain.Goal) Summary {
	var s Summary
	s.TotalWorkouts = len(workouts)
	for _, w := range workouts {
		if w.Completed {
			s.CompletedWorkouts++
			s.ActiveMinutes += w.Duration
		}
	}

	var (
		active int
		ratio  float64
	)
	for _, g := range goals {
		if g.Completed || g.Target == 0 {
			continue
		}
		active++
		ratio += g.Current / g.Target
	}
	if active > 0 {
		s.GoalProgress = int(math.Round(ratio / float64(active) * 100))
	}
	return s
}

// ComputeWorkoutStats derives WorkoutStats from workouts relative to now. Calendar
// buckets are taken in UTC.
func ComputeWorkoutStats(workouts []domain.Workout, now time.Time) WorkoutStats {
	now = now.UTC()
	weekAgo := now.Add(-weekWindow)
	twoWeeksAgo := weekAgo.Add(-weekWindow)
	monthAgo := now.Add(-monthWindow)
	threeMonthsAgo := now.Add(-threeMonthsWindow)

	var (
		out       WorkoutStats
		byDay     [7]int
		byType    = map[domain.WorkoutType]int{}
		minutes   = map[string]int{}
		total     int
		completed int
		prevWeek  int
		earliest  time.Time
	)

	for _, w := range workouts {
		if !w.Completed {
			continue
		}
		completed++
		total += w.Duration

		at := w.EffectiveDate().UTC()
		if earliest.IsZero() || at.Before(earliest) {
			earliest = at
		}
		if w.Type != "" {
			byType[w.Type]++
		}
		minutes[at.Format(dateLayout)] += w.Duration

		if within(at, weekAgo, now) {
			out.Trends.LastWeek++
		}
		if within(at, monthAgo, now) {
			out.Trends.LastMonth++
			byDay[at.Weekday()]++
		}
		if within(at, threeMonthsAgo, now) {
			out.Trends.LastThreeMonths++
		}
		if !at.Before(twoWeeksAgo) && at.Before(weekAgo) {
			prevWeek++
		}
	}

	out.Summary.TotalCompletedWorkouts = completed
	out.Summary.TotalActiveMinutes = total
	out.Summary.WeeklyTrend = out.Trends.LastWeek - prevWeek
	if completed > 0 {
		out.Summary.AvgWorkoutDuration = int(math.Round(float64(total) / float64(completed)))
		weeks := max(1, int(math.Ceil(float64(completed)/4)))
		out.Summary.WorkoutsPerWeek = math.Round(float64(completed)/float64(weeks)*10) / 10
		out.Summary.DaysActive = int(math.Round(float64(now.Sub(earliest)) / float64(day)))
	}

	out.WorkoutsByType = make([]TypeCount, 0, len(byType))
	for t, n := range byType {
		out.WorkoutsByType = append(out.WorkoutsByType, TypeCount{Type: t, Count: n})
	}
	sort.Slice(out.WorkoutsByType, func(i, j int) bool {
		return out.WorkoutsByType[i].Type < out.WorkoutsByType[j].Type
	})

	out.WorkoutsByDay = make([]DayCount, 7)
	for i := range byDay {
		out.WorkoutsByDay[i] = DayCount{Day: time.Weekday(i).String(), Count: byDay[i]}
	}

	out.DailyActiveMinutes = make([]DailyMinutes, dailySeriesDays)
	for i := 0; i < dailySeriesDays; i++ {
		date := now.AddDate(0, 0, i-(dailySeriesDays-1)).Format(dateLayout)
		out.DailyActiveMinutes[i] = DailyMinutes{Date: date, Minutes: minutes[date]}
	}
	return out
}

func within(at, from, to time.Time) bool {
	return !at.Before(from) && !at.After(to)
}
