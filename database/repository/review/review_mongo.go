package reviewRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"machly/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no review matches the lookup.
var ErrNotFound = errors.New("review not found")

// ReviewRepository defines methods for review data access. The mutations
// recompute the machine's denormalized rating aggregate in the same
// transaction, so the aggregate can never drift from the stored reviews.
type ReviewRepository interface {
	// GetByID retrieves a review by its unique ID.
	GetByID(id string) (*models.Review, error)
	// GetByMachine retrieves a machine's reviews, newest first.
	GetByMachine(machineID string) ([]models.Review, error)
	// GetByBooking retrieves the review for a booking; (nil, nil) when absent.
	GetByBooking(bookingID string) (*models.Review, error)
	// CreateWithAggregate inserts the review and recomputes the machine's
	// rating and review count transactionally.
	CreateWithAggregate(ctx context.Context, review *models.Review) error
	// DeleteWithAggregate removes the review and recomputes the machine's
	// rating and review count transactionally.
	DeleteWithAggregate(ctx context.Context, review *models.Review) error
}

// MongoReviewRepo implements ReviewRepository using MongoDB.
type MongoReviewRepo struct {
	reviewColl  *mongo.Collection
	machineColl *mongo.Collection
}

// NewMongoReviewRepo creates a new instance of ReviewRepository using MongoDB.
func NewMongoReviewRepo(db *mongo.Database) ReviewRepository {
	repo := &MongoReviewRepo{
		reviewColl:  db.Collection("reviews"),
		machineColl: db.Collection("machines"),
	}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create review indexes: %v\n", err)
	}
	return repo
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoReviewRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "machineId", Value: 1}}},
		{Keys: bson.D{{Key: "bookingId", Value: 1}}, Options: options.Index().SetUnique(true)},
	}

	if _, err := r.reviewColl.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// GetByID retrieves a review by its unique ID.
func (r *MongoReviewRepo) GetByID(id string) (*models.Review, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var review models.Review
	if err := r.reviewColl.FindOne(ctx, bson.M{"id": id}).Decode(&review); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch review with id %s: %w", id, err)
	}
	return &review, nil
}

// GetByMachine retrieves a machine's reviews, newest first.
func (r *MongoReviewRepo) GetByMachine(machineID string) ([]models.Review, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.reviewColl.Find(ctx, bson.M{"machineId": machineID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve reviews: %w", err)
	}
	defer cursor.Close(ctx)

	var reviews []models.Review
	for cursor.Next(ctx) {
		var rv models.Review
		if err := cursor.Decode(&rv); err != nil {
			return nil, fmt.Errorf("failed to decode review: %w", err)
		}
		reviews = append(reviews, rv)
	}
	return reviews, cursor.Err()
}

// GetByBooking retrieves the review for a booking. Absence is not an error.
func (r *MongoReviewRepo) GetByBooking(bookingID string) (*models.Review, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var review models.Review
	if err := r.reviewColl.FindOne(ctx, bson.M{"bookingId": bookingID}).Decode(&review); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch review for booking %s: %w", bookingID, err)
	}
	return &review, nil
}

// recomputeAggregateTx recalculates the machine's mean rating and review
// count from the stored reviews and writes them, all inside the transaction.
func (r *MongoReviewRepo) recomputeAggregateTx(sc mongo.SessionContext, machineID string) error {
	cursor, err := r.reviewColl.Find(sc, bson.M{"machineId": machineID})
	if err != nil {
		return fmt.Errorf("failed to load reviews for aggregate: %w", err)
	}
	defer cursor.Close(sc)

	sum, count := 0, 0
	for cursor.Next(sc) {
		var rv models.Review
		if err := cursor.Decode(&rv); err != nil {
			return fmt.Errorf("failed to decode review: %w", err)
		}
		sum += rv.Rating
		count++
	}
	if err := cursor.Err(); err != nil {
		return fmt.Errorf("cursor error: %w", err)
	}

	rating := 0.0
	if count > 0 {
		rating = float64(sum) / float64(count)
	}

	update := bson.M{"$set": bson.M{
		"rating":       rating,
		"reviewsCount": count,
		"updatedAt":    time.Now().UTC(),
	}}
	if _, err := r.machineColl.UpdateOne(sc, bson.M{"id": machineID}, update); err != nil {
		return fmt.Errorf("failed to write rating aggregate: %w", err)
	}
	return nil
}

func (r *MongoReviewRepo) withTransaction(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	client := r.reviewColl.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	return mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := fn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	})
}

// CreateWithAggregate inserts the review and recomputes the machine's
// aggregate in a single transaction.
func (r *MongoReviewRepo) CreateWithAggregate(ctx context.Context, review *models.Review) error {
	return r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		if _, err := r.reviewColl.InsertOne(sc, review); err != nil {
			return fmt.Errorf("insert review failed: %w", err)
		}
		return r.recomputeAggregateTx(sc, review.MachineID)
	})
}

// DeleteWithAggregate removes the review and recomputes the machine's
// aggregate in a single transaction.
func (r *MongoReviewRepo) DeleteWithAggregate(ctx context.Context, review *models.Review) error {
	return r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		result, err := r.reviewColl.DeleteOne(sc, bson.M{"id": review.ID})
		if err != nil {
			return fmt.Errorf("delete review failed: %w", err)
		}
		if result.DeletedCount == 0 {
			return ErrNotFound
		}
		return r.recomputeAggregateTx(sc, review.MachineID)
	})
}
