package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"machly/models"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoBookingRepo implements BookingRepository using MongoDB. It holds the
// machines collection as well because the lifecycle writes span both.
type MongoBookingRepo struct {
	bookingColl *mongo.Collection
	machineColl *mongo.Collection
}

// NewMongoBookingRepo creates a new instance of BookingRepository using MongoDB.
func NewMongoBookingRepo(db *mongo.Database) BookingRepository {
	repo := &MongoBookingRepo{
		bookingColl: db.Collection("bookings"),
		machineColl: db.Collection("machines"),
	}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create booking indexes: %v\n", err)
	}
	return repo
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoBookingRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "machineId", Value: 1}}},
		{Keys: bson.D{{Key: "renterId", Value: 1}}},
		{Keys: bson.D{{Key: "providerId", Value: 1}}},
	}

	if _, err := r.bookingColl.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// GetByID retrieves a booking by its unique ID.
func (r *MongoBookingRepo) GetByID(id string) (*models.Booking, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var booking models.Booking
	if err := r.bookingColl.FindOne(ctx, bson.M{"id": id}).Decode(&booking); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch booking with id %s: %w", id, err)
	}
	return &booking, nil
}

// GetByRenter retrieves a renter's bookings, newest first.
func (r *MongoBookingRepo) GetByRenter(renterID string) ([]models.Booking, error) {
	return r.find(bson.M{"renterId": renterID}, true)
}

// GetByProvider retrieves a provider's bookings, newest first.
func (r *MongoBookingRepo) GetByProvider(providerID string) ([]models.Booking, error) {
	return r.find(bson.M{"providerId": providerID}, true)
}

// GetByMachine retrieves all bookings for one machine.
func (r *MongoBookingRepo) GetByMachine(machineID string) ([]models.Booking, error) {
	return r.find(bson.M{"machineId": machineID}, false)
}

// GetAll retrieves bookings, optionally filtered by status.
func (r *MongoBookingRepo) GetAll(status string) ([]models.Booking, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	return r.find(filter, true)
}

func (r *MongoBookingRepo) find(filter bson.M, newestFirst bool) ([]models.Booking, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	opts := options.Find()
	if newestFirst {
		opts.SetSort(bson.D{{Key: "createdAt", Value: -1}})
	}

	cursor, err := r.bookingColl.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	for cursor.Next(ctx) {
		var b models.Booking
		if err := cursor.Decode(&b); err != nil {
			return nil, fmt.Errorf("failed to decode booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, cursor.Err()
}

// Update replaces an existing booking document.
func (r *MongoBookingRepo) Update(booking *models.Booking) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	result, err := r.bookingColl.UpdateOne(ctx, bson.M{"id": booking.ID}, bson.M{"$set": booking})
	if err != nil {
		return fmt.Errorf("failed to update booking with id %s: %w", booking.ID, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// CountActiveForMachine counts Pending/Confirmed bookings on a machine.
func (r *MongoBookingRepo) CountActiveForMachine(machineID string) (int64, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{
		"machineId": machineID,
		"status":    bson.M{"$in": []string{models.BookingPending, models.BookingConfirmed}},
	}
	n, err := r.bookingColl.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count active bookings for machine %s: %w", machineID, err)
	}
	return n, nil
}

// Count counts all bookings.
func (r *MongoBookingRepo) Count() (int64, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	n, err := r.bookingColl.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return n, nil
}

// SumTotalPrices sums all booking totals in decimal arithmetic.
func (r *MongoBookingRepo) SumTotalPrices() (models.Money, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	cursor, err := r.bookingColl.Find(ctx, bson.M{})
	if err != nil {
		return models.ZeroMoney(), fmt.Errorf("failed to retrieve bookings for revenue sum: %w", err)
	}
	defer cursor.Close(ctx)

	total := decimal.Zero
	for cursor.Next(ctx) {
		var b models.Booking
		if err := cursor.Decode(&b); err != nil {
			return models.ZeroMoney(), fmt.Errorf("failed to decode booking: %w", err)
		}
		total = total.Add(b.TotalPrice.Decimal)
	}
	if err := cursor.Err(); err != nil {
		return models.ZeroMoney(), fmt.Errorf("cursor error: %w", err)
	}
	return models.NewMoney(total), nil
}
