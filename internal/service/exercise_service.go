package service

import (
	"alcyxob/exercise-tracker/internal/domain"
	"alcyxob/exercise-tracker/internal/repository" // Import repository package
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// --- Error Definitions ---
var (
	ErrExerciseNotFound = errors.New("exercise not found")
	ErrValidationFailed = errors.New("exercise validation failed")
)

// --- Service Interface ---
type ExerciseService interface {
	CreateExercise(ctx context.Context, input domain.ExerciseInput) (*domain.Exercise, error)
	GetExerciseByID(ctx context.Context, exerciseID string) (*domain.Exercise, error)
	ToggleComplete(ctx context.Context, exerciseID string) (*domain.Exercise, error)
	DeleteExercise(ctx context.Context, exerciseID string) error
	ListExercises(ctx context.Context) ([]domain.Exercise, error)
	ListCompletedExercises(ctx context.Context) ([]domain.Exercise, error)
	GetSummary(ctx context.Context) (domain.Summary, error)
	SeedSampleData(ctx context.Context) (int, error)
}

// --- Service Implementation ---

// exerciseService implements the ExerciseService interface.
type exerciseService struct {
	exerciseRepo repository.ExerciseRepository
	validate     *validator.Validate
	clock        repository.Clock
}

// NewExerciseService creates a new instance of exerciseService.
func NewExerciseService(exerciseRepo repository.ExerciseRepository, clock repository.Clock) ExerciseService {
	return &exerciseService{
		exerciseRepo: exerciseRepo,
		validate:     validator.New(),
		clock:        clock,
	}
}

// CreateExercise validates the input and stores a new pending exercise.
// An empty difficulty defaults to Beginner.
func (s *exerciseService) CreateExercise(ctx context.Context, input domain.ExerciseInput) (*domain.Exercise, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Difficulty == "" {
		input.Difficulty = domain.DifficultyBeginner
	}

	if err := s.validate.Struct(input); err != nil {
		return nil, validationError(err)
	}

	exercise, err := s.exerciseRepo.Create(ctx, input)
	if err != nil {
		return nil, err
	}
	log.Printf("INFO: Created exercise %s (%q)", exercise.ID, exercise.Name)
	return exercise, nil
}

// GetExerciseByID retrieves a single exercise.
func (s *exerciseService) GetExerciseByID(ctx context.Context, exerciseID string) (*domain.Exercise, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return exercise, nil
}

// ToggleComplete flips an exercise between pending and completed.
// An unknown id leaves the store untouched and is reported as ErrExerciseNotFound.
func (s *exerciseService) ToggleComplete(ctx context.Context, exerciseID string) (*domain.Exercise, error) {
	exercise, found, err := s.exerciseRepo.ToggleComplete(ctx, exerciseID)
	if err != nil {
		return nil, err
	}
	if !found {
		log.Printf("WARN: Toggle ignored, exercise %s does not exist", exerciseID)
		return nil, ErrExerciseNotFound
	}
	log.Printf("INFO: Exercise %s is now %s", exercise.ID, exercise.Status())
	return exercise, nil
}

// DeleteExercise removes an exercise. Deleting an unknown id succeeds without effect.
func (s *exerciseService) DeleteExercise(ctx context.Context, exerciseID string) error {
	found, err := s.exerciseRepo.Delete(ctx, exerciseID)
	if err != nil {
		return err
	}
	if !found {
		log.Printf("WARN: Delete ignored, exercise %s does not exist", exerciseID)
		return nil
	}
	log.Printf("INFO: Deleted exercise %s", exerciseID)
	return nil
}

// ListExercises returns every exercise, newest first.
func (s *exerciseService) ListExercises(ctx context.Context) ([]domain.Exercise, error) {
	return s.exerciseRepo.ListAll(ctx)
}

// ListCompletedExercises returns only completed exercises, newest first.
func (s *exerciseService) ListCompletedExercises(ctx context.Context) ([]domain.Exercise, error) {
	return s.exerciseRepo.ListCompleted(ctx)
}

// GetSummary aggregates completion figures from the current snapshot.
func (s *exerciseService) GetSummary(ctx context.Context) (domain.Summary, error) {
	exercises, err := s.exerciseRepo.ListAll(ctx)
	if err != nil {
		return domain.Summary{}, err
	}
	return domain.Summarize(exercises), nil
}

// SeedSampleData loads the starter exercises into an empty store.
// It returns the number of records inserted, which is zero if the store already has data.
func (s *exerciseService) SeedSampleData(ctx context.Context) (int, error) {
	existing, err := s.exerciseRepo.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}

	samples := domain.SampleExercises(uuid.NewString, s.clock.Now())
	if err := s.exerciseRepo.Seed(ctx, samples); err != nil {
		return 0, fmt.Errorf("seed sample data: %w", err)
	}
	return len(samples), nil
}

// validationError flattens validator output into a single wrapped ErrValidationFailed.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return fmt.Errorf("%w: %s", ErrValidationFailed, strings.Join(msgs, "; "))
}

func describeFieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "gt":
		return field + " must be greater than " + fe.Param()
	case "gte":
		return field + " must be at least " + fe.Param()
	case "oneof":
		return field + " must be one of: " + fe.Param()
	}
	return fmt.Sprintf("%s failed %s", field, fe.Tag())
}
