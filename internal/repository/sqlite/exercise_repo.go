package sqlite

import (
	"alcyxob/exercise-tracker/internal/domain"
	"alcyxob/exercise-tracker/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// exerciseRow is the table layout. Seq records insertion order; the newest row has the highest Seq.
type exerciseRow struct {
	Seq           uint   `gorm:"primaryKey;autoIncrement"`
	ExerciseID    string `gorm:"column:exercise_id;uniqueIndex;not null"`
	Name          string
	Description   string
	Category      string
	Difficulty    string
	Duration      int
	Completed     bool `gorm:"index"`
	DateAdded     time.Time
	CompletedDate string
	Image         string
	Calories      *int
	Sets          *int
	Reps          *int
	Distance      string
	Equipment     []string `gorm:"serializer:json"`
	Instructions  []string `gorm:"serializer:json"`
	Tips          []string `gorm:"serializer:json"`
}

func (exerciseRow) TableName() string { return "exercises" }

func rowFromDomain(ex domain.Exercise) exerciseRow {
	return exerciseRow{
		ExerciseID:    ex.ID,
		Name:          ex.Name,
		Description:   ex.Description,
		Category:      ex.Category,
		Difficulty:    string(ex.Difficulty),
		Duration:      ex.Duration,
		Completed:     ex.Completed,
		DateAdded:     domain.StoredTime(ex.DateAdded),
		CompletedDate: ex.CompletedDate,
		Image:         ex.Image,
		Calories:      ex.Calories,
		Sets:          ex.Sets,
		Reps:          ex.Reps,
		Distance:      ex.Distance,
		Equipment:     ex.Equipment,
		Instructions:  ex.Instructions,
		Tips:          ex.Tips,
	}
}

func (row exerciseRow) toDomain() domain.Exercise {
	return domain.Exercise{
		ID:            row.ExerciseID,
		Name:          row.Name,
		Description:   row.Description,
		Category:      row.Category,
		Difficulty:    domain.Difficulty(row.Difficulty),
		Duration:      row.Duration,
		Completed:     row.Completed,
		DateAdded:     row.DateAdded.UTC(),
		CompletedDate: row.CompletedDate,
		Image:         row.Image,
		Calories:      row.Calories,
		Sets:          row.Sets,
		Reps:          row.Reps,
		Distance:      row.Distance,
		Equipment:     row.Equipment,
		Instructions:  row.Instructions,
		Tips:          row.Tips,
	}
}

func rowsToDomain(rows []exerciseRow) []domain.Exercise {
	out := make([]domain.Exercise, len(rows))
	for i := range rows {
		out[i] = rows[i].toDomain()
	}
	return out
}

// sqliteExerciseRepository implements repository.ExerciseRepository with GORM.
type sqliteExerciseRepository struct {
	db    *gorm.DB
	clock repository.Clock
}

// NewSQLiteExerciseRepository creates an exercise store backed by db.
func NewSQLiteExerciseRepository(db *gorm.DB, clock repository.Clock) repository.ExerciseRepository {
	return &sqliteExerciseRepository{db: db, clock: clock}
}

func (r *sqliteExerciseRepository) Create(ctx context.Context, input domain.ExerciseInput) (*domain.Exercise, error) {
	row := rowFromDomain(domain.NewExercise(uuid.NewString(), input, r.clock.Now()))
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("create exercise: %w", err)
	}
	ex := row.toDomain()
	return &ex, nil
}

func (r *sqliteExerciseRepository) GetByID(ctx context.Context, id string) (*domain.Exercise, error) {
	var row exerciseRow
	err := r.db.WithContext(ctx).Where("exercise_id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get exercise: %w", err)
	}
	ex := row.toDomain()
	return &ex, nil
}

func (r *sqliteExerciseRepository) ToggleComplete(ctx context.Context, id string) (*domain.Exercise, bool, error) {
	var (
		ex    domain.Exercise
		found bool
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row exerciseRow
		if err := tx.Where("exercise_id = ?", id).First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		ex = row.toDomain()
		ex.ToggleComplete(r.clock.Now())
		found = true
		return tx.Model(&row).Updates(map[string]any{
			"completed":      ex.Completed,
			"completed_date": ex.CompletedDate,
		}).Error
	})
	if err != nil {
		return nil, false, fmt.Errorf("toggle exercise: %w", err)
	}
	if !found {
		return nil, false, nil
	}
	return &ex, true, nil
}

func (r *sqliteExerciseRepository) Delete(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Where("exercise_id = ?", id).Delete(&exerciseRow{})
	if result.Error != nil {
		return false, fmt.Errorf("delete exercise: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *sqliteExerciseRepository) ListAll(ctx context.Context) ([]domain.Exercise, error) {
	var rows []exerciseRow
	if err := r.db.WithContext(ctx).Order("seq DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	return rowsToDomain(rows), nil
}

func (r *sqliteExerciseRepository) ListCompleted(ctx context.Context) ([]domain.Exercise, error) {
	var rows []exerciseRow
	if err := r.db.WithContext(ctx).Where("completed = ?", true).Order("seq DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list completed exercises: %w", err)
	}
	return rowsToDomain(rows), nil
}

// Seed inserts the batch in reverse so the first record receives the highest Seq.
func (r *sqliteExerciseRepository) Seed(ctx context.Context, exercises []domain.Exercise) error {
	if len(exercises) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := make([]string, len(exercises))
		for i := range exercises {
			ids[i] = exercises[i].ID
		}
		var existing []string
		if err := tx.Model(&exerciseRow{}).Where("exercise_id IN ?", ids).Pluck("exercise_id", &existing).Error; err != nil {
			return fmt.Errorf("seed lookup: %w", err)
		}
		taken := make(map[string]bool, len(existing))
		for _, id := range existing {
			taken[id] = true
		}
		if err := repository.ValidateSeed(exercises, func(id string) bool { return taken[id] }); err != nil {
			return err
		}

		rows := make([]exerciseRow, 0, len(exercises))
		for i := len(exercises) - 1; i >= 0; i-- {
			rows = append(rows, rowFromDomain(exercises[i]))
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("seed exercises: %w", err)
		}
		return nil
	})
}
