package memory

import (
	"alcyxob/exercise-tracker/internal/domain"
	"alcyxob/exercise-tracker/internal/repository"
	"context"
	"sync"

	"github.com/google/uuid"
)

// memoryExerciseRepository implements repository.ExerciseRepository over a slice.
// Index 0 is the newest record.
type memoryExerciseRepository struct {
	mu        sync.RWMutex
	exercises []domain.Exercise
	clock     repository.Clock
}

// NewMemoryExerciseRepository creates an empty in-process exercise store.
func NewMemoryExerciseRepository(clock repository.Clock) repository.ExerciseRepository {
	return &memoryExerciseRepository{clock: clock}
}

// Create prepends a new pending record. It never fails.
func (r *memoryExerciseRepository) Create(_ context.Context, input domain.ExerciseInput) (*domain.Exercise, error) {
	ex := domain.NewExercise(uuid.NewString(), input, r.clock.Now())

	r.mu.Lock()
	r.exercises = append([]domain.Exercise{ex}, r.exercises...)
	r.mu.Unlock()

	out := ex.Clone()
	return &out, nil
}

// GetByID returns a copy of the record with the given id.
func (r *memoryExerciseRepository) GetByID(_ context.Context, id string) (*domain.Exercise, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	out := r.exercises[i].Clone()
	return &out, nil
}

// ToggleComplete flips the completion state of exactly one record.
func (r *memoryExerciseRepository) ToggleComplete(_ context.Context, id string) (*domain.Exercise, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, false, nil
	}
	r.exercises[i].ToggleComplete(r.clock.Now())
	out := r.exercises[i].Clone()
	return &out, true, nil
}

// Delete removes the record permanently.
func (r *memoryExerciseRepository) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return false, nil
	}
	r.exercises = append(r.exercises[:i], r.exercises[i+1:]...)
	return true, nil
}

// ListAll returns a snapshot of every record, newest first.
func (r *memoryExerciseRepository) ListAll(_ context.Context) ([]domain.Exercise, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Exercise, len(r.exercises))
	for i := range r.exercises {
		out[i] = r.exercises[i].Clone()
	}
	return out, nil
}

// ListCompleted filters a fresh snapshot; nothing is cached between calls.
func (r *memoryExerciseRepository) ListCompleted(ctx context.Context) ([]domain.Exercise, error) {
	all, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return domain.FilterCompleted(all), nil
}

// Seed places the given records at the front, keeping their order.
func (r *memoryExerciseRepository) Seed(_ context.Context, exercises []domain.Exercise) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := repository.ValidateSeed(exercises, func(id string) bool { return r.indexOf(id) >= 0 })
	if err != nil {
		return err
	}

	seeded := make([]domain.Exercise, 0, len(exercises)+len(r.exercises))
	for _, ex := range exercises {
		ex = ex.Clone()
		ex.DateAdded = domain.StoredTime(ex.DateAdded)
		seeded = append(seeded, ex)
	}
	r.exercises = append(seeded, r.exercises...)
	return nil
}

// indexOf must be called with mu held.
func (r *memoryExerciseRepository) indexOf(id string) int {
	for i := range r.exercises {
		if r.exercises[i].ID == id {
			return i
		}
	}
	return -1
}
