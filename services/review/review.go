// Package review manages machine reviews and keeps the denormalized rating
// aggregates in step with them.
package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingRepo "machly/database/repository/booking"
	reviewRepo "machly/database/repository/review"
	"machly/models"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when the review does not exist.
	ErrNotFound = errors.New("review not found")
	// ErrBookingNotFound is returned when the reviewed booking does not exist.
	ErrBookingNotFound = errors.New("booking not found")
	// ErrForbidden is returned when the actor may not review or delete.
	ErrForbidden = errors.New("not permitted to act on this review")
	// ErrBookingNotFinished is returned when reviewing before checkout.
	ErrBookingNotFinished = errors.New("only finished bookings can be reviewed")
	// ErrAlreadyReviewed is returned on a second review for the same booking.
	ErrAlreadyReviewed = errors.New("booking already has a review")
	// ErrInvalidRating is returned for ratings outside 1..5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
)

// CreateRequest carries a renter's review of a finished booking.
type CreateRequest struct {
	BookingID string `json:"bookingId" binding:"required"`
	Rating    int    `json:"rating" binding:"required"`
	Comment   string `json:"comment"`
}

// ReviewService manages review creation, listing, and moderation.
type ReviewService interface {
	Create(ctx context.Context, actor models.Actor, req CreateRequest) (*models.Review, error)
	ListForMachine(machineID string) ([]models.Review, error)
	Delete(ctx context.Context, actor models.Actor, reviewID string) error
}

// DefaultReviewService implements ReviewService.
type DefaultReviewService struct {
	ReviewRepo  reviewRepo.ReviewRepository
	BookingRepo bookingRepo.BookingRepository
}

// NewDefaultReviewService wires a review service over the given repositories.
func NewDefaultReviewService(rr reviewRepo.ReviewRepository, br bookingRepo.BookingRepository) *DefaultReviewService {
	return &DefaultReviewService{ReviewRepo: rr, BookingRepo: br}
}

// Create records a review for a finished booking the actor rented. The
// machine's rating aggregate is recomputed in the same transaction as the
// insert.
func (s *DefaultReviewService) Create(ctx context.Context, actor models.Actor, req CreateRequest) (*models.Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, ErrInvalidRating
	}

	booking, err := s.BookingRepo.GetByID(req.BookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to fetch booking: %w", err)
	}
	if booking.RenterID != actor.ID {
		return nil, ErrForbidden
	}
	if booking.Status != models.BookingFinished {
		return nil, ErrBookingNotFinished
	}

	existing, err := s.ReviewRepo.GetByBooking(booking.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existing review: %w", err)
	}
	if existing != nil {
		return nil, ErrAlreadyReviewed
	}

	review := &models.Review{
		ID:        uuid.New().String(),
		MachineID: booking.MachineID,
		RenterID:  actor.ID,
		BookingID: booking.ID,
		Rating:    req.Rating,
		Comment:   req.Comment,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.ReviewRepo.CreateWithAggregate(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}
	return review, nil
}

// ListForMachine returns a machine's reviews, newest first.
func (s *DefaultReviewService) ListForMachine(machineID string) ([]models.Review, error) {
	reviews, err := s.ReviewRepo.GetByMachine(machineID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

// Delete removes a review. Moderation is admin-only; authors cannot retract
// their own reviews. The machine's rating aggregate is recomputed
// transactionally.
func (s *DefaultReviewService) Delete(ctx context.Context, actor models.Actor, reviewID string) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}

	review, err := s.ReviewRepo.GetByID(reviewID)
	if err != nil {
		if errors.Is(err, reviewRepo.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to fetch review: %w", err)
	}

	if err := s.ReviewRepo.DeleteWithAggregate(ctx, review); err != nil {
		if errors.Is(err, reviewRepo.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete review: %w", err)
	}
	return nil
}
