package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"machly/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// withTransaction runs fn inside a Mongo session transaction.
func (r *MongoBookingRepo) withTransaction(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	client := r.bookingColl.Database().Client()
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

// replaceCalendarTx writes the machine's calendar inside the transaction,
// guarded by the expected calendar version.
func (r *MongoBookingRepo) replaceCalendarTx(sc mongo.SessionContext, machineID string, calendar models.Calendar, expectedVersion int64) error {
	filter := bson.M{"id": machineID, "calendarVersion": expectedVersion}
	update := bson.M{
		"$set": bson.M{"calendar": calendar, "updatedAt": time.Now().UTC()},
		"$inc": bson.M{"calendarVersion": 1},
	}
	result, err := r.machineColl.UpdateOne(sc, filter, update)
	if err != nil {
		return fmt.Errorf("calendar update failed: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrVersionConflict
	}
	return nil
}

// CreateWithReservation inserts the booking and writes the machine's new
// calendar in a single transaction. The caller has already appended the
// reserved entry to calendar and holds the per-machine lock.
func (r *MongoBookingRepo) CreateWithReservation(ctx context.Context, booking *models.Booking, calendar models.Calendar, expectedVersion int64) error {
	return r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		if _, err := r.bookingColl.InsertOne(sc, booking); err != nil {
			return fmt.Errorf("insert booking failed: %w", err)
		}
		return r.replaceCalendarTx(sc, booking.MachineID, calendar, expectedVersion)
	})
}

// ReleaseWithCalendar persists a booking update and the machine's new
// calendar in a single transaction (cancellation path).
func (r *MongoBookingRepo) ReleaseWithCalendar(ctx context.Context, booking *models.Booking, calendar models.Calendar, expectedVersion int64) error {
	return r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		result, err := r.bookingColl.UpdateOne(sc, bson.M{"id": booking.ID}, bson.M{"$set": booking})
		if err != nil {
			return fmt.Errorf("update booking failed: %w", err)
		}
		if result.MatchedCount == 0 {
			return ErrNotFound
		}
		return r.replaceCalendarTx(sc, booking.MachineID, calendar, expectedVersion)
	})
}
