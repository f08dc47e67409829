// internal/domain/exercise.go
package domain

import (
	"time"
)

// Difficulty is the self-reported intensity level of an exercise.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "Beginner"
	DifficultyIntermediate Difficulty = "Intermediate"
	DifficultyAdvanced     Difficulty = "Advanced"
)

// Valid reports whether d is one of the known difficulty levels.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// Status is the completion state of a single exercise record.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// Exercise represents a single trackable activity in the user's list.
type Exercise struct {
	ID          string     `bson:"_id" json:"id"`
	Name        string     `bson:"name" json:"name"`
	Description string     `bson:"description,omitempty" json:"description"`
	Category    string     `bson:"category" json:"category"` // e.g., "Strength", "Cardio"
	Difficulty  Difficulty `bson:"difficulty" json:"difficulty"`
	Duration    int        `bson:"duration" json:"duration"` // minutes

	Completed     bool      `bson:"completed" json:"completed"`
	DateAdded     time.Time `bson:"dateAdded" json:"dateAdded"`
	CompletedDate string    `bson:"completedDate,omitempty" json:"completedDate,omitempty"` // YYYY-MM-DD, set iff Completed

	// --- Display payload, opaque to the store ---
	Image        string   `bson:"image,omitempty" json:"image,omitempty"`
	Calories     *int     `bson:"calories,omitempty" json:"calories,omitempty"`
	Sets         *int     `bson:"sets,omitempty" json:"sets,omitempty"`
	Reps         *int     `bson:"reps,omitempty" json:"reps,omitempty"`
	Distance     string   `bson:"distance,omitempty" json:"distance,omitempty"` // free text, e.g. "5.2 km"
	Equipment    []string `bson:"equipment,omitempty" json:"equipment,omitempty"`
	Instructions []string `bson:"instructions,omitempty" json:"instructions,omitempty"`
	Tips         []string `bson:"tips,omitempty" json:"tips,omitempty"`
}

// ExerciseInput carries everything a caller supplies when creating an exercise.
// ID, DateAdded and completion state are always assigned by the store.
type ExerciseInput struct {
	Name        string     `validate:"required"`
	Description string
	Category    string
	Difficulty  Difficulty `validate:"required,oneof=Beginner Intermediate Advanced"`
	Duration    int        `validate:"gt=0"`

	Image        string
	Calories     *int `validate:"omitempty,gte=0"`
	Sets         *int `validate:"omitempty,gte=0"`
	Reps         *int `validate:"omitempty,gte=0"`
	Distance     string
	Equipment    []string
	Instructions []string
	Tips         []string
}

// NewExercise builds a fresh Pending record from input.
func NewExercise(id string, input ExerciseInput, now time.Time) Exercise {
	return Exercise{
		ID:           id,
		Name:         input.Name,
		Description:  input.Description,
		Category:     input.Category,
		Difficulty:   input.Difficulty,
		Duration:     input.Duration,
		Completed:    false,
		DateAdded:    StoredTime(now),
		Image:        input.Image,
		Calories:     cloneInt(input.Calories),
		Sets:         cloneInt(input.Sets),
		Reps:         cloneInt(input.Reps),
		Distance:     input.Distance,
		Equipment:    cloneStrings(input.Equipment),
		Instructions: cloneStrings(input.Instructions),
		Tips:         cloneStrings(input.Tips),
	}
}

// Status returns the current lifecycle state of the record.
func (e *Exercise) Status() Status {
	if e.Completed {
		return StatusCompleted
	}
	return StatusPending
}

// ToggleComplete flips the record between Pending and Completed.
// Completing stamps CompletedDate with the UTC calendar date of now; reverting clears it.
func (e *Exercise) ToggleComplete(now time.Time) {
	e.Completed = !e.Completed
	if e.Completed {
		e.CompletedDate = CalendarDate(now)
	} else {
		e.CompletedDate = ""
	}
}

// Consistent reports whether CompletedDate is present exactly when the record is completed.
func (e *Exercise) Consistent() bool {
	return e.Completed == (e.CompletedDate != "")
}

// Clone returns a deep copy so callers never share slices or pointers with the store.
func (e Exercise) Clone() Exercise {
	e.Calories = cloneInt(e.Calories)
	e.Sets = cloneInt(e.Sets)
	e.Reps = cloneInt(e.Reps)
	e.Equipment = cloneStrings(e.Equipment)
	e.Instructions = cloneStrings(e.Instructions)
	e.Tips = cloneStrings(e.Tips)
	return e
}

// StoredTime is t in UTC at the millisecond precision every backend can keep.
// DateAdded always passes through it, so a record reads back exactly as it was created.
func StoredTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

// CalendarDate formats t as a UTC date without time of day.
func CalendarDate(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}

// FilterCompleted returns the completed records of exercises, preserving their relative order.
func FilterCompleted(exercises []Exercise) []Exercise {
	completed := make([]Exercise, 0, len(exercises))
	for _, ex := range exercises {
		if ex.Completed {
			completed = append(completed, ex)
		}
	}
	return completed
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}
