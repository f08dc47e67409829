// Package repotest holds the behavioural test suite every ExerciseRepository backend must pass.
package repotest

import (
	"alcyxob/exercise-tracker/internal/domain"
	"alcyxob/exercise-tracker/internal/repository"
	"context"
	"errors"
	"math/rand"
	"reflect"
	"strconv"
	"sync"
	"testing"
	"time"
)

// FakeClock is a manually advanced clock for deterministic tests.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFakeClock starts a clock at start.
func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Factory builds an empty repository driven by clock.
type Factory func(t *testing.T, clock repository.Clock) repository.ExerciseRepository

// Start is the initial time of every FakeClock the suite creates.
var Start = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

// Run executes the full contract suite against repositories built by newRepo.
func Run(t *testing.T, newRepo Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, repo repository.ExerciseRepository, clock *FakeClock)
	}{
		{"Scenario", testScenario},
		{"CreatePrepends", testCreatePrepends},
		{"DoubleToggleRestores", testDoubleToggleRestores},
		{"ToggleAffectsOnlyTarget", testToggleAffectsOnlyTarget},
		{"UnknownIDIsNoop", testUnknownIDIsNoop},
		{"DeleteIsPermanent", testDeleteIsPermanent},
		{"ListCompletedIsOrderedSubset", testListCompletedIsOrderedSubset},
		{"RandomOperationsKeepInvariants", testRandomOperations},
		{"SeedOrder", testSeedOrder},
		{"SeedRejectsBadBatches", testSeedRejects},
		{"ReturnedRecordsAreCopies", testReturnedRecordsAreCopies},
		{"CreatedRecordReadsBackUnchanged", testCreatedRecordReadsBackUnchanged},
		{"SeedStoresMillisecondDateAdded", testSeedStoresMillisecondDateAdded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := NewFakeClock(Start)
			tt.fn(t, newRepo(t, clock.Now), clock)
		})
	}
}

func pushups() domain.ExerciseInput {
	return domain.ExerciseInput{
		Name:        "Push-ups",
		Description: "Classic upper body exercise",
		Category:    "Strength",
		Difficulty:  domain.DifficultyBeginner,
		Duration:    10,
	}
}

func sampleInput(i int) domain.ExerciseInput {
	in := pushups()
	in.Name = "Exercise " + strconv.Itoa(i)
	in.Duration = 5 + i
	return in
}

func mustCreate(t *testing.T, repo repository.ExerciseRepository, in domain.ExerciseInput) *domain.Exercise {
	t.Helper()
	ex, err := repo.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return ex
}

func mustList(t *testing.T, repo repository.ExerciseRepository) []domain.Exercise {
	t.Helper()
	all, err := repo.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	return all
}

func mustListCompleted(t *testing.T, repo repository.ExerciseRepository) []domain.Exercise {
	t.Helper()
	done, err := repo.ListCompleted(context.Background())
	if err != nil {
		t.Fatalf("ListCompleted: %v", err)
	}
	return done
}

func mustToggle(t *testing.T, repo repository.ExerciseRepository, id string) *domain.Exercise {
	t.Helper()
	ex, found, err := repo.ToggleComplete(context.Background(), id)
	if err != nil {
		t.Fatalf("ToggleComplete: %v", err)
	}
	if !found {
		t.Fatalf("ToggleComplete(%q): not found", id)
	}
	return ex
}

func ids(list []domain.Exercise) []string {
	out := make([]string, len(list))
	for i := range list {
		out[i] = list[i].ID
	}
	return out
}

// normalize drops the time zone pointer so UTC instants compare equal under reflect.DeepEqual.
func normalize(ex domain.Exercise) domain.Exercise {
	ex.DateAdded = ex.DateAdded.UTC()
	return ex
}

func assertSame(t *testing.T, got, want domain.Exercise) {
	t.Helper()
	if g, w := normalize(got), normalize(want); !reflect.DeepEqual(g, w) {
		t.Errorf("record mismatch:\n got  %+v\n want %+v", g, w)
	}
}

func assertInvariants(t *testing.T, repo repository.ExerciseRepository) {
	t.Helper()
	all := mustList(t, repo)
	seen := make(map[string]bool, len(all))
	for _, ex := range all {
		if seen[ex.ID] {
			t.Fatalf("duplicate id %q", ex.ID)
		}
		seen[ex.ID] = true
		if !ex.Consistent() {
			t.Fatalf("record %q: completed=%v completedDate=%q", ex.ID, ex.Completed, ex.CompletedDate)
		}
	}
	if got, want := ids(mustListCompleted(t, repo)), ids(domain.FilterCompleted(all)); !reflect.DeepEqual(got, want) {
		t.Fatalf("ListCompleted = %v, want %v", got, want)
	}
}

func testScenario(t *testing.T, repo repository.ExerciseRepository, clock *FakeClock) {
	if n := len(mustList(t, repo)); n != 0 {
		t.Fatalf("new repository has %d records", n)
	}

	ex := mustCreate(t, repo, pushups())
	if n := len(mustList(t, repo)); n != 1 {
		t.Fatalf("ListAll len = %d, want 1", n)
	}
	if n := len(mustListCompleted(t, repo)); n != 0 {
		t.Fatalf("ListCompleted len = %d, want 0", n)
	}

	done := mustToggle(t, repo, ex.ID)
	if n := len(mustListCompleted(t, repo)); n != 1 {
		t.Fatalf("ListCompleted len = %d, want 1", n)
	}
	if want := domain.CalendarDate(clock.Now()); done.CompletedDate != want {
		t.Errorf("completedDate = %q, want %q", done.CompletedDate, want)
	}

	undone := mustToggle(t, repo, ex.ID)
	if n := len(mustListCompleted(t, repo)); n != 0 {
		t.Fatalf("ListCompleted len = %d, want 0", n)
	}
	if undone.CompletedDate != "" {
		t.Errorf("completedDate = %q, want empty", undone.CompletedDate)
	}

	found, err := repo.Delete(context.Background(), ex.ID)
	if err != nil || !found {
		t.Fatalf("Delete = %v, %v", found, err)
	}
	if n := len(mustList(t, repo)); n != 0 {
		t.Fatalf("ListAll len = %d, want 0", n)
	}
}

func testCreatePrepends(t *testing.T, repo repository.ExerciseRepository, clock *FakeClock) {
	var created []*domain.Exercise
	for i := 0; i < 4; i++ {
		in := sampleInput(i)
		cal := 50 * i
		in.Calories = &cal
		in.Tips = []string{"tip " + strconv.Itoa(i)}

		ex := mustCreate(t, repo, in)
		created = append(created, ex)

		want := domain.NewExercise(ex.ID, in, clock.Now())
		assertSame(t, *ex, want)

		all := mustList(t, repo)
		if len(all) != i+1 {
			t.Fatalf("len = %d, want %d", len(all), i+1)
		}
		assertSame(t, all[0], want)
		clock.Advance(time.Minute)
	}

	all := mustList(t, repo)
	for i := range all {
		if want := created[len(created)-1-i].ID; all[i].ID != want {
			t.Fatalf("order = %v, want newest first", ids(all))
		}
	}
	assertInvariants(t, repo)
}

func testDoubleToggleRestores(t *testing.T, repo repository.ExerciseRepository, clock *FakeClock) {
	for i := 0; i < 3; i++ {
		mustCreate(t, repo, sampleInput(i))
	}
	before := mustList(t, repo)

	for _, ex := range before {
		mustToggle(t, repo, ex.ID)
		clock.Advance(30 * time.Hour) // cross a date boundary between the two calls
		mustToggle(t, repo, ex.ID)
	}

	after := mustList(t, repo)
	if len(after) != len(before) {
		t.Fatalf("len = %d, want %d", len(after), len(before))
	}
	for i := range before {
		assertSame(t, after[i], before[i])
	}
}

func testToggleAffectsOnlyTarget(t *testing.T, repo repository.ExerciseRepository, _ *FakeClock) {
	for i := 0; i < 3; i++ {
		mustCreate(t, repo, sampleInput(i))
	}
	before := mustList(t, repo)
	target := before[1]

	mustToggle(t, repo, target.ID)

	after := mustList(t, repo)
	for i := range after {
		if after[i].ID == target.ID {
			if !after[i].Completed {
				t.Errorf("target not completed")
			}
			if !after[i].DateAdded.Equal(target.DateAdded) {
				t.Errorf("dateAdded changed from %v to %v", target.DateAdded, after[i].DateAdded)
			}
			continue
		}
		assertSame(t, after[i], before[i])
	}
}

func testUnknownIDIsNoop(t *testing.T, repo repository.ExerciseRepository, _ *FakeClock) {
	ctx := context.Background()
	mustCreate(t, repo, pushups())
	before := mustList(t, repo)

	ex, found, err := repo.ToggleComplete(ctx, "does-not-exist")
	if err != nil || found || ex != nil {
		t.Errorf("ToggleComplete(unknown) = %v, %v, %v", ex, found, err)
	}
	found, err = repo.Delete(ctx, "does-not-exist")
	if err != nil || found {
		t.Errorf("Delete(unknown) = %v, %v", found, err)
	}
	if _, err := repo.GetByID(ctx, "does-not-exist"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("GetByID(unknown) err = %v, want ErrNotFound", err)
	}

	after := mustList(t, repo)
	if len(after) != 1 {
		t.Fatalf("len = %d, want 1", len(after))
	}
	assertSame(t, after[0], before[0])
}

func testDeleteIsPermanent(t *testing.T, repo repository.ExerciseRepository, _ *FakeClock) {
	ctx := context.Background()
	keep := mustCreate(t, repo, sampleInput(1))
	gone := mustCreate(t, repo, sampleInput(2))
	mustToggle(t, repo, gone.ID)

	if found, err := repo.Delete(ctx, gone.ID); err != nil || !found {
		t.Fatalf("Delete = %v, %v", found, err)
	}

	if _, found, err := repo.ToggleComplete(ctx, gone.ID); err != nil || found {
		t.Errorf("toggle after delete: found=%v err=%v", found, err)
	}
	if found, err := repo.Delete(ctx, gone.ID); err != nil || found {
		t.Errorf("second delete: found=%v err=%v", found, err)
	}
	if _, err := repo.GetByID(ctx, gone.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("GetByID after delete err = %v", err)
	}
	if got := ids(mustList(t, repo)); !reflect.DeepEqual(got, []string{keep.ID}) {
		t.Errorf("ListAll ids = %v, want [%s]", got, keep.ID)
	}
	if n := len(mustListCompleted(t, repo)); n != 0 {
		t.Errorf("ListCompleted len = %d, want 0", n)
	}
}

func testListCompletedIsOrderedSubset(t *testing.T, repo repository.ExerciseRepository, _ *FakeClock) {
	var created []*domain.Exercise
	for i := 0; i < 6; i++ {
		created = append(created, mustCreate(t, repo, sampleInput(i)))
	}
	for _, i := range []int{0, 2, 3, 5} {
		mustToggle(t, repo, created[i].ID)
	}

	done := mustListCompleted(t, repo)
	want := []string{created[5].ID, created[3].ID, created[2].ID, created[0].ID}
	if got := ids(done); !reflect.DeepEqual(got, want) {
		t.Errorf("ListCompleted = %v, want %v", got, want)
	}
	for _, ex := range done {
		if !ex.Completed {
			t.Errorf("%q listed as completed but is pending", ex.ID)
		}
	}
	assertInvariants(t, repo)
}

// testRandomOperations drives the repository and a trivial model side by side.
func testRandomOperations(t *testing.T, repo repository.ExerciseRepository, clock *FakeClock) {
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))

	type entry struct {
		id        string
		completed bool
	}
	var model []entry // front = newest
	var deleted []string

	pick := func() string {
		switch {
		case len(model) > 0 && rng.Intn(4) > 0:
			return model[rng.Intn(len(model))].id
		case len(deleted) > 0 && rng.Intn(2) == 0:
			return deleted[rng.Intn(len(deleted))]
		}
		return "missing-" + strconv.Itoa(rng.Intn(100))
	}

	for step := 0; step < 60; step++ {
		clock.Advance(time.Duration(rng.Intn(20)) * time.Hour)
		switch op := rng.Intn(3); {
		case op == 0 || len(model) == 0:
			ex := mustCreate(t, repo, sampleInput(step))
			model = append([]entry{{id: ex.ID}}, model...)
		case op == 1:
			id := pick()
			_, found, err := repo.ToggleComplete(ctx, id)
			if err != nil {
				t.Fatalf("step %d: ToggleComplete: %v", step, err)
			}
			wantFound := false
			for i := range model {
				if model[i].id == id {
					model[i].completed = !model[i].completed
					wantFound = true
				}
			}
			if found != wantFound {
				t.Fatalf("step %d: ToggleComplete(%q) found=%v, want %v", step, id, found, wantFound)
			}
		default:
			id := pick()
			found, err := repo.Delete(ctx, id)
			if err != nil {
				t.Fatalf("step %d: Delete: %v", step, err)
			}
			wantFound := false
			for i := range model {
				if model[i].id == id {
					model = append(model[:i], model[i+1:]...)
					deleted = append(deleted, id)
					wantFound = true
					break
				}
			}
			if found != wantFound {
				t.Fatalf("step %d: Delete(%q) found=%v, want %v", step, id, found, wantFound)
			}
		}

		assertInvariants(t, repo)
		all := mustList(t, repo)
		if len(all) != len(model) {
			t.Fatalf("step %d: len = %d, want %d", step, len(all), len(model))
		}
		for i := range model {
			if all[i].ID != model[i].id || all[i].Completed != model[i].completed {
				t.Fatalf("step %d: position %d = {%s %v}, want %+v", step, i, all[i].ID, all[i].Completed, model[i])
			}
		}
	}
}

func seedRecords(prefix string, n int) []domain.Exercise {
	out := make([]domain.Exercise, n)
	for i := range out {
		out[i] = domain.NewExercise(prefix+strconv.Itoa(i), sampleInput(i), Start.Add(-time.Duration(i)*time.Hour))
	}
	return out
}

func testSeedOrder(t *testing.T, repo repository.ExerciseRepository, _ *FakeClock) {
	ctx := context.Background()
	existing := mustCreate(t, repo, pushups())

	seeds := seedRecords("seed-", 3)
	seeds[1].Completed = true
	seeds[1].CompletedDate = "2024-01-15"
	if err := repo.Seed(ctx, seeds); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	all := mustList(t, repo)
	want := []string{"seed-0", "seed-1", "seed-2", existing.ID}
	if got := ids(all); !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
	for i := range seeds {
		assertSame(t, all[i], seeds[i])
	}

	// Records created afterwards still go in front of the seeds.
	newest := mustCreate(t, repo, sampleInput(9))
	if all := mustList(t, repo); all[0].ID != newest.ID {
		t.Errorf("front = %q, want %q", all[0].ID, newest.ID)
	}
	assertInvariants(t, repo)
}

func testSeedRejects(t *testing.T, repo repository.ExerciseRepository, _ *FakeClock) {
	ctx := context.Background()
	if err := repo.Seed(ctx, seedRecords("base-", 1)); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	inconsistent := seedRecords("x-", 2)
	inconsistent[1].Completed = true

	emptyID := seedRecords("y-", 2)
	emptyID[0].ID = ""

	dupInBatch := seedRecords("z-", 2)
	dupInBatch[1].ID = dupInBatch[0].ID

	tests := []struct {
		name  string
		batch []domain.Exercise
		want  error
	}{
		{"completed without date", inconsistent, repository.ErrInvalidRecord},
		{"empty id", emptyID, repository.ErrInvalidRecord},
		{"duplicate within batch", dupInBatch, repository.ErrDuplicateID},
		{"duplicate of existing", append(seedRecords("w-", 1), seedRecords("base-", 1)...), repository.ErrDuplicateID},
	}
	for _, tt := range tests {
		if err := repo.Seed(ctx, tt.batch); !errors.Is(err, tt.want) {
			t.Errorf("%s: err = %v, want %v", tt.name, err, tt.want)
		}
	}

	if got := ids(mustList(t, repo)); !reflect.DeepEqual(got, []string{"base-0"}) {
		t.Errorf("rejected batches leaked records: %v", got)
	}
}

func testReturnedRecordsAreCopies(t *testing.T, repo repository.ExerciseRepository, _ *FakeClock) {
	ctx := context.Background()
	in := pushups()
	in.Tips = []string{"keep back straight"}
	ex := mustCreate(t, repo, in)

	ex.Tips[0] = "changed"
	ex.Completed = true

	all := mustList(t, repo)
	all[0].Tips[0] = "changed again"

	got, err := repo.GetByID(ctx, ex.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Completed || got.Tips[0] != "keep back straight" {
		t.Errorf("store was mutated through a returned record: %+v", got)
	}
}

func testCreatedRecordReadsBackUnchanged(t *testing.T, repo repository.ExerciseRepository, clock *FakeClock) {
	ctx := context.Background()
	clock.Advance(123456789 * time.Nanosecond)
	created := mustCreate(t, repo, pushups())

	if got := created.DateAdded.Nanosecond(); got%int(time.Millisecond) != 0 {
		t.Errorf("created dateAdded has sub-millisecond part: %v", created.DateAdded)
	}

	got, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	assertSame(t, *got, *created)
	assertSame(t, mustList(t, repo)[0], *created)

	toggled := mustToggle(t, repo, created.ID)
	if !toggled.DateAdded.Equal(created.DateAdded) {
		t.Errorf("toggle changed dateAdded: %v -> %v", created.DateAdded, toggled.DateAdded)
	}
}

func testSeedStoresMillisecondDateAdded(t *testing.T, repo repository.ExerciseRepository, _ *FakeClock) {
	ctx := context.Background()
	seed := seedRecords("fine-", 1)
	seed[0].DateAdded = Start.Add(987654321 * time.Nanosecond)
	if err := repo.Seed(ctx, seed); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	got, err := repo.GetByID(ctx, "fine-0")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	want := seed[0]
	want.DateAdded = Start.Add(987 * time.Millisecond)
	assertSame(t, *got, want)
}
