package machineRepo

import (
	"context"
	"fmt"
	"time"

	"machly/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoMachineRepo implements MachineRepository using MongoDB.
type MongoMachineRepo struct {
	coll *mongo.Collection
}

// NewMongoMachineRepo creates a new instance of MachineRepository using MongoDB.
func NewMongoMachineRepo(db *mongo.Database) MachineRepository {
	repo := &MongoMachineRepo{coll: db.Collection("machines")}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create machine indexes: %v\n", err)
	}
	return repo
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoMachineRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "providerId", Value: 1}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "location", Value: "2dsphere"}}},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// GetByID retrieves a machine by its unique ID.
func (r *MongoMachineRepo) GetByID(id string) (*models.Machine, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var machine models.Machine
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&machine); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch machine with id %s: %w", id, err)
	}
	return &machine, nil
}

// GetByProvider retrieves all machines owned by a provider.
func (r *MongoMachineRepo) GetByProvider(providerID string) ([]models.Machine, error) {
	return r.find(bson.M{"providerId": providerID})
}

// GetAll retrieves machines, optionally filtered by category and active flag.
func (r *MongoMachineRepo) GetAll(category string, activeOnly bool) ([]models.Machine, error) {
	filter := bson.M{}
	if category != "" {
		filter["category"] = category
	}
	if activeOnly {
		filter["isActive"] = true
	}
	return r.find(filter)
}

func (r *MongoMachineRepo) find(filter bson.M) ([]models.Machine, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve machines: %w", err)
	}
	defer cursor.Close(ctx)

	var machines []models.Machine
	for cursor.Next(ctx) {
		var m models.Machine
		if err := cursor.Decode(&m); err != nil {
			return nil, fmt.Errorf("failed to decode machine: %w", err)
		}
		machines = append(machines, m)
	}
	return machines, cursor.Err()
}

// Create inserts a new machine document.
func (r *MongoMachineRepo) Create(machine *models.Machine) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	now := time.Now().UTC()
	machine.CreatedAt = now
	machine.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, machine); err != nil {
		return fmt.Errorf("failed to create machine: %w", err)
	}
	return nil
}

// Update replaces mutable listing fields. The calendar and the review
// aggregate have their own guarded write paths and are deliberately not
// touched here.
func (r *MongoMachineRepo) Update(machine *models.Machine) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"title":        machine.Title,
		"description":  machine.Description,
		"category":     machine.Category,
		"categoryData": machine.CategoryData,
		"location":     machine.Location,
		"updatedAt":    time.Now().UTC(),
	}}
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": machine.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to update machine with id %s: %w", machine.ID, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a machine, optionally restricted to its owning provider.
func (r *MongoMachineRepo) Delete(id, ownerID string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"id": id}
	if ownerID != "" {
		filter["providerId"] = ownerID
	}
	result, err := r.coll.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete machine with id %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AppendPhotos adds uploaded photo URLs to a machine.
func (r *MongoMachineRepo) AppendPhotos(id string, urls []string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	update := bson.M{
		"$push": bson.M{"photos": bson.M{"$each": urls}},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to append photos to machine %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ReplaceCalendar writes a new calendar guarded by the expected version.
// A concurrent writer bumps the version first, so the conditional match
// fails and the caller sees ErrVersionConflict instead of a lost update.
func (r *MongoMachineRepo) ReplaceCalendar(id string, calendar models.Calendar, expectedVersion int64) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"id": id, "calendarVersion": expectedVersion}
	update := bson.M{
		"$set": bson.M{"calendar": calendar, "updatedAt": time.Now().UTC()},
		"$inc": bson.M{"calendarVersion": 1},
	}
	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to replace calendar of machine %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		// Distinguish a missing machine from a stale version.
		n, countErr := r.coll.CountDocuments(ctx, bson.M{"id": id})
		if countErr == nil && n == 0 {
			return ErrNotFound
		}
		return ErrVersionConflict
	}
	return nil
}

// SetRating updates the denormalized review aggregate fields.
func (r *MongoMachineRepo) SetRating(id string, rating float64, reviewsCount int) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"rating":       rating,
		"reviewsCount": reviewsCount,
		"updatedAt":    time.Now().UTC(),
	}}
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update rating of machine %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetActive flips the listing's active flag.
func (r *MongoMachineRepo) SetActive(id string, active bool) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{"isActive": active, "updatedAt": time.Now().UTC()}}
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to toggle machine %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Count counts all machines.
func (r *MongoMachineRepo) Count() (int64, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count machines: %w", err)
	}
	return n, nil
}
