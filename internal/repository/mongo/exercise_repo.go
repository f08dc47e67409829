package mongo

import (
	"alcyxob/exercise-tracker/internal/domain"
	"alcyxob/exercise-tracker/internal/repository"
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	exerciseCollectionName = "exercises"
	counterCollectionName  = "counters"
	exerciseCounterID      = "exercises"
)

// exerciseDocument adds the insertion sequence to the stored record; higher is newer.
type exerciseDocument struct {
	domain.Exercise `bson:",inline"`
	Seq             int64 `bson:"seq"`
}

// mongoExerciseRepository implements repository.ExerciseRepository
type mongoExerciseRepository struct {
	collection *mongo.Collection
	counters   *mongo.Collection
	clock      repository.Clock
}

// NewMongoExerciseRepository creates a new Exercise repository backed by MongoDB.
func NewMongoExerciseRepository(db *mongo.Database, clock repository.Clock) repository.ExerciseRepository {
	return &mongoExerciseRepository{
		collection: db.Collection(exerciseCollectionName),
		counters:   db.Collection(counterCollectionName),
		clock:      clock,
	}
}

// nextSeq reserves n consecutive sequence numbers and returns the highest one.
func (r *mongoExerciseRepository) nextSeq(ctx context.Context, n int64) (int64, error) {
	var counter struct {
		Value int64 `bson:"value"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": exerciseCounterID},
		bson.M{"$inc": bson.M{"value": n}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("reserve sequence: %w", err)
	}
	return counter.Value, nil
}

// Create inserts a new pending exercise in front of all existing ones.
func (r *mongoExerciseRepository) Create(ctx context.Context, input domain.ExerciseInput) (*domain.Exercise, error) {
	seq, err := r.nextSeq(ctx, 1)
	if err != nil {
		return nil, err
	}

	doc := exerciseDocument{
		Exercise: domain.NewExercise(uuid.NewString(), input, r.clock.Now()),
		Seq:      seq,
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert exercise: %w", err)
	}
	ex := doc.Exercise.Clone()
	return &ex, nil
}

// GetByID retrieves an exercise by its ID.
func (r *mongoExerciseRepository) GetByID(ctx context.Context, id string) (*domain.Exercise, error) {
	var doc exerciseDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get exercise: %w", err)
	}
	return &doc.Exercise, nil
}

// ToggleComplete flips completion in a single atomic update pipeline.
// completedDate is written when the new state is completed and removed otherwise.
func (r *mongoExerciseRepository) ToggleComplete(ctx context.Context, id string) (*domain.Exercise, bool, error) {
	today := domain.CalendarDate(r.clock.Now())
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "completed", Value: bson.D{{Key: "$not", Value: bson.A{"$completed"}}}},
		}}},
		{{Key: "$set", Value: bson.D{
			{Key: "completedDate", Value: bson.D{{Key: "$cond", Value: bson.A{"$completed", today, "$$REMOVE"}}}},
		}}},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc exerciseDocument
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("toggle exercise: %w", err)
	}
	return &doc.Exercise, true, nil
}

// Delete removes an exercise.
func (r *mongoExerciseRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("delete exercise: %w", err)
	}
	return result.DeletedCount > 0, nil
}

// ListAll returns every exercise, newest first.
func (r *mongoExerciseRepository) ListAll(ctx context.Context) ([]domain.Exercise, error) {
	return r.find(ctx, bson.M{})
}

// ListCompleted returns the completed exercises, newest first.
func (r *mongoExerciseRepository) ListCompleted(ctx context.Context) ([]domain.Exercise, error) {
	return r.find(ctx, bson.M{"completed": true})
}

func (r *mongoExerciseRepository) find(ctx context.Context, filter bson.M) ([]domain.Exercise, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "seq", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []exerciseDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode exercises: %w", err)
	}

	exercises := make([]domain.Exercise, len(docs))
	for i := range docs {
		exercises[i] = docs[i].Exercise
	}
	return exercises, nil
}

// Seed validates the whole batch before inserting any of it. If a concurrent writer takes
// one of the ids between the check and the insert, the part already inserted is removed again.
func (r *mongoExerciseRepository) Seed(ctx context.Context, exercises []domain.Exercise) error {
	if len(exercises) == 0 {
		return nil
	}

	ids := make([]string, len(exercises))
	for i := range exercises {
		ids[i] = exercises[i].ID
	}
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return fmt.Errorf("seed lookup: %w", err)
	}
	var existing []struct {
		ID string `bson:"_id"`
	}
	if err := cursor.All(ctx, &existing); err != nil {
		return fmt.Errorf("seed lookup: %w", err)
	}
	taken := make(map[string]bool, len(existing))
	for _, e := range existing {
		taken[e.ID] = true
	}
	if err := repository.ValidateSeed(exercises, func(id string) bool { return taken[id] }); err != nil {
		return err
	}

	top, err := r.nextSeq(ctx, int64(len(exercises)))
	if err != nil {
		return err
	}
	docs := make([]exerciseDocument, len(exercises))
	for i, ex := range exercises {
		ex.DateAdded = domain.StoredTime(ex.DateAdded)
		docs[i] = exerciseDocument{Exercise: ex, Seq: top - int64(i)}
	}
	return r.insertBatch(ctx, docs)
}

// insertBatch inserts docs as a unit. On failure it deletes whatever part of the batch
// made it in, matching on both id and seq so records owned by other writers stay.
func (r *mongoExerciseRepository) insertBatch(ctx context.Context, docs []exerciseDocument) error {
	batch := make([]interface{}, len(docs))
	owned := make(bson.A, len(docs))
	for i, doc := range docs {
		batch[i] = doc
		owned[i] = bson.M{"_id": doc.ID, "seq": doc.Seq}
	}

	_, err := r.collection.InsertMany(ctx, batch)
	if err == nil {
		return nil
	}

	if _, cleanupErr := r.collection.DeleteMany(ctx, bson.M{"$or": owned}); cleanupErr != nil {
		log.Printf("ERROR: Failed to roll back partial seed batch: %v", cleanupErr)
	}
	if mongo.IsDuplicateKeyError(err) {
		return repository.ErrDuplicateID
	}
	return fmt.Errorf("seed exercises: %w", err)
}

// EnsureExerciseIndexes creates necessary indexes for the exercises collection.
func EnsureExerciseIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// List order
			Keys:    bson.D{{Key: "seq", Value: -1}},
			Options: options.Index().SetName("exercise_seq"),
		},
		{
			// Completed view
			Keys:    bson.D{{Key: "completed", Value: 1}, {Key: "seq", Value: -1}},
			Options: options.Index().SetName("exercise_completed_seq"),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
