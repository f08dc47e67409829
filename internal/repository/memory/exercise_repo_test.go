package memory

import (
	"alcyxob/exercise-tracker/internal/domain"
	"alcyxob/exercise-tracker/internal/repository"
	"alcyxob/exercise-tracker/internal/repository/repotest"
	"context"
	"sync"
	"testing"
)

func TestMemoryExerciseRepository(t *testing.T) {
	repotest.Run(t, func(t *testing.T, clock repository.Clock) repository.ExerciseRepository {
		return NewMemoryExerciseRepository(clock)
	})
}

// TestConcurrentCreates verifies that operations issued from many goroutines are serialised.
func TestConcurrentCreates(t *testing.T) {
	repo := NewMemoryExerciseRepository(nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ex, _ := repo.Create(ctx, domain.ExerciseInput{Name: "Burpees", Duration: 5})
			repo.ToggleComplete(ctx, ex.ID)
		}()
	}
	wg.Wait()

	all, _ := repo.ListAll(ctx)
	if len(all) != 50 {
		t.Fatalf("len = %d, want 50", len(all))
	}
	done, _ := repo.ListCompleted(ctx)
	if len(done) != 50 {
		t.Errorf("completed = %d, want 50", len(done))
	}
}
