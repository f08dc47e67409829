package main

import (
	"alcyxob/exercise-tracker/internal/config"
	"alcyxob/exercise-tracker/internal/domain"
	"alcyxob/exercise-tracker/internal/repository"
	"alcyxob/exercise-tracker/internal/repository/memory"
	"context"
	"errors"
	"testing"
)

var errStoreDown = errors.New("store unavailable")

// brokenRepository fails every listing, so seeding cannot decide whether the store is empty.
type brokenRepository struct {
	repository.ExerciseRepository
}

func (brokenRepository) ListAll(context.Context) ([]domain.Exercise, error) {
	return nil, errStoreDown
}

func seedConfig(seed bool) config.Config {
	var cfg config.Config
	cfg.Storage.Driver = config.DriverMemory
	cfg.Storage.SeedSampleData = seed
	return cfg
}

func TestNewExerciseServiceClosesStoreWhenSeedingFails(t *testing.T) {
	closed := 0
	open := func(config.Config) (repository.ExerciseRepository, func(), error) {
		return brokenRepository{memory.NewMemoryExerciseRepository(nil)}, func() { closed++ }, nil
	}

	svc, closeStore, err := newExerciseService(seedConfig(true), open)
	if !errors.Is(err, errStoreDown) {
		t.Fatalf("err = %v, want %v", err, errStoreDown)
	}
	if svc != nil || closeStore != nil {
		t.Error("expected no service and no close func on failure")
	}
	if closed != 1 {
		t.Errorf("store closed %d times, want 1", closed)
	}
}

func TestNewExerciseServiceSeedsAndLeavesStoreOpen(t *testing.T) {
	closed := 0
	open := func(config.Config) (repository.ExerciseRepository, func(), error) {
		return memory.NewMemoryExerciseRepository(nil), func() { closed++ }, nil
	}

	svc, closeStore, err := newExerciseService(seedConfig(true), open)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if closed != 0 {
		t.Fatalf("store closed early")
	}
	list, err := svc.ListExercises(context.Background())
	if err != nil {
		t.Fatalf("ListExercises: %v", err)
	}
	if len(list) != 3 {
		t.Errorf("seeded %d exercises, want 3", len(list))
	}
	closeStore()
	if closed != 1 {
		t.Errorf("store closed %d times, want 1", closed)
	}
}

func TestNewExerciseServiceReportsOpenFailure(t *testing.T) {
	open := func(config.Config) (repository.ExerciseRepository, func(), error) {
		return nil, nil, errStoreDown
	}
	if _, _, err := newExerciseService(seedConfig(false), open); !errors.Is(err, errStoreDown) {
		t.Errorf("err = %v, want %v", err, errStoreDown)
	}
}
