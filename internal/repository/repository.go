package repository

import (
	"alcyxob/exercise-tracker/internal/domain" // Import our defined domain models
	"context"
	"time"
)

// Error constants for repository layer
var (
	ErrNotFound      = RepositoryError("not found")
	ErrDuplicateID   = RepositoryError("duplicate id")
	ErrInvalidRecord = RepositoryError("invalid record")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// Clock supplies the current time to a repository. A nil Clock means time.Now.
type Clock func() time.Time

// Now returns the current time according to c.
func (c Clock) Now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

// ExerciseRepository owns the ordered collection of exercise records, newest first.
//
// Mutations on an unknown id are no-ops and report found=false rather than an error.
// Every returned record is a copy.
type ExerciseRepository interface {
	// Create assigns an id and dateAdded, forces Completed=false and prepends the record.
	// The returned record is identical to what later reads return.
	Create(ctx context.Context, input domain.ExerciseInput) (*domain.Exercise, error)
	GetByID(ctx context.Context, id string) (*domain.Exercise, error)
	ToggleComplete(ctx context.Context, id string) (ex *domain.Exercise, found bool, err error)
	Delete(ctx context.Context, id string) (found bool, err error)
	ListAll(ctx context.Context) ([]domain.Exercise, error)
	// ListCompleted is derived from the current state on every call.
	ListCompleted(ctx context.Context) ([]domain.Exercise, error)
	// Seed inserts fully formed records verbatim; they end up at the front in the given order.
	// DateAdded is stored through domain.StoredTime. Either all records are inserted or none are.
	Seed(ctx context.Context, exercises []domain.Exercise) error
}

// ValidateSeed checks a batch of seed records against each other and the existing ids.
func ValidateSeed(exercises []domain.Exercise, exists func(id string) bool) error {
	seen := make(map[string]struct{}, len(exercises))
	for i := range exercises {
		ex := &exercises[i]
		if ex.ID == "" || !ex.Consistent() {
			return ErrInvalidRecord
		}
		if _, dup := seen[ex.ID]; dup || exists(ex.ID) {
			return ErrDuplicateID
		}
		seen[ex.ID] = struct{}{}
	}
	return nil
}
