package domain

import "time"

// UserPatch carries a partial profile update. Nil fields are left untouched.
type UserPatch struct {
	Name           *string
	Username       *string
	Email          *string
	ProfilePicture *string
	Bio            *string
}

// Apply returns u with the patch applied.
func (u User) Apply(p UserPatch) User {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.ProfilePicture != nil {
		u.ProfilePicture = *p.ProfilePicture
	}
	if p.Bio != nil {
		bio := *p.Bio
		u.Bio = &bio
	}
	return u
}

// WorkoutPatch carries a partial workout update.
type WorkoutPatch struct {
	Title       *string
	Description *string
	Duration    *int
	Difficulty  *Difficulty
	Type        *WorkoutType
	Completed   *bool
}

// Apply returns w with the patch applied at now. completedAt follows the completed flag.
func (w Workout) Apply(p WorkoutPatch, now time.Time) Workout {
	if p.Title != nil {
		w.Title = *p.Title
	}
	if p.Description != nil {
		desc := *p.Description
		w.Description = &desc
	}
	if p.Duration != nil {
		w.Duration = *p.Duration
	}
	if p.Difficulty != nil {
		w.Difficulty = *p.Difficulty
	}
	if p.Type != nil {
		w.Type = *p.Type
	}
	if p.Completed != nil {
		switch {
		case *p.Completed && !w.Completed:
			at := now
			w.CompletedAt = &at
		case !*p.Completed:
			w.CompletedAt = nil
		}
		w.Completed = *p.Completed
	}
	w.UpdatedAt = now
	return w
}

// ExercisePatch carries a partial exercise update.
type ExercisePatch struct {
	Name      *string
	Sets      *int
	Reps      *int
	Weight    *float64
	Duration  *int
	RestTime  *int
	Notes     *string
	Completed *bool
}

// Apply returns e with the patch applied.
func (e Exercise) Apply(p ExercisePatch) Exercise {
	if p.Name != nil {
		e.Name = *p.Name
	}
	if p.Sets != nil {
		e.Sets = *p.Sets
	}
	if p.Reps != nil {
		e.Reps = *p.Reps
	}
	if p.Weight != nil {
		v := *p.Weight
		e.Weight = &v
	}
	if p.Duration != nil {
		v := *p.Duration
		e.Duration = &v
	}
	if p.RestTime != nil {
		v := *p.RestTime
		e.RestTime = &v
	}
	if p.Notes != nil {
		v := *p.Notes
		e.Notes = &v
	}
	if p.Completed != nil {
		e.Completed = *p.Completed
	}
	return e
}

// GoalPatch carries a partial goal update. Completion is derived, never patched.
type GoalPatch struct {
	Title       *string
	Description *string
	Type        *GoalType
	Target      *float64
	Current     *float64
	Deadline    *time.Time
}

// Apply returns g with the patch applied and completed recomputed from current and target.
func (g Goal) Apply(p GoalPatch) Goal {
	if p.Title != nil {
		g.Title = *p.Title
	}
	if p.Description != nil {
		desc := *p.Description
		g.Description = &desc
	}
	if p.Type != nil {
		g.Type = *p.Type
	}
	if p.Target != nil {
		g.Target = *p.Target
	}
	if p.Current != nil {
		g.Current = *p.Current
	}
	if p.Deadline != nil {
		d := *p.Deadline
		g.Deadline = &d
	}
	g.Completed = g.Current >= g.Target
	return g
}
