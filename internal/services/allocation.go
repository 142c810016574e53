package services

import (
	"context"

	"parkxcel/internal/billing"
	"parkxcel/internal/clock"
	"parkxcel/internal/logging"
	"parkxcel/internal/models"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// AllocationStore is the storage contract for binding spots to reservations.
// LowestAvailableSpotForUpdate must take a row-level lock on the returned
// spot so that two concurrent reserves can never pick the same one.
type AllocationStore interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetLot(ctx context.Context, lotID uint) (*models.ParkingLot, error)
	GetSpot(ctx context.Context, spotID uint) (*models.ParkingSpot, error)
	LowestAvailableSpotForUpdate(ctx context.Context, lotID uint) (*models.ParkingSpot, error)
	SaveSpot(ctx context.Context, spot *models.ParkingSpot) error
	CreateReservation(ctx context.Context, res *models.Reservation) error
	ActiveReservationForUpdate(ctx context.Context, userID, spotID uint) (*models.Reservation, error)
	SaveReservation(ctx context.Context, res *models.Reservation) error
}

// ReservationNotifier enqueues the out-of-band notifications that follow a
// successful reserve or release. Failures are logged, never surfaced: the
// booking itself has already committed.
type ReservationNotifier interface {
	BookingConfirmed(ctx context.Context, res *models.Reservation, lotName string) error
	ReceiptReady(ctx context.Context, res *models.Reservation, lotName string) error
}

var (
	reservationsCounter metric.Int64Counter
	releasesCounter     metric.Int64Counter
	revenueCounter      metric.Float64Counter
)

type AllocationService struct {
	store    AllocationStore
	clock    clock.Clock
	notifier ReservationNotifier
}

// NewAllocationService wires the engine; notifier may be nil when no job
// queue is configured.
func NewAllocationService(store AllocationStore, clk clock.Clock, notifier ReservationNotifier) *AllocationService {
	var err error
	reservationsCounter, err = meter.Int64Counter(
		"allocation.reservations.created",
		metric.WithDescription("Total number of reservations created"),
	)
	if err != nil {
		logging.Logger().Error().Err(err).Msg("failed to create reservations counter")
	}

	releasesCounter, err = meter.Int64Counter(
		"allocation.reservations.released",
		metric.WithDescription("Total number of reservations released"),
	)
	if err != nil {
		logging.Logger().Error().Err(err).Msg("failed to create releases counter")
	}

	revenueCounter, err = meter.Float64Counter(
		"allocation.revenue.total",
		metric.WithDescription("Total billed revenue"),
	)
	if err != nil {
		logging.Logger().Error().Err(err).Msg("failed to create revenue counter")
	}

	return &AllocationService{store: store, clock: clk, notifier: notifier}
}

// Reserve binds the available spot with the lowest identifier in the lot to
// a new active reservation. Selection and bind happen inside one transaction
// with the spot row locked, so a lot with one free spot gives exactly one of
// two concurrent callers the spot and the other ErrNoAvailableSpots.
func (s *AllocationService) Reserve(ctx context.Context, userID, lotID uint) (*models.Reservation, error) {
	ctx, span := tracer.Start(ctx, "allocation.reserve")
	defer span.End()

	if lotID == 0 {
		return nil, required("lot_id")
	}

	span.SetAttributes(
		attribute.Int64("user.id", int64(userID)),
		attribute.Int64("lot.id", int64(lotID)),
	)

	var (
		reservation models.Reservation
		lot         *models.ParkingLot
	)

	err := s.store.WithTx(ctx, func(txCtx context.Context) error {
		var err error
		lot, err = s.store.GetLot(txCtx, lotID)
		if err != nil {
			return err
		}

		spot, err := s.store.LowestAvailableSpotForUpdate(txCtx, lotID)
		if err != nil {
			return err
		}

		spot.Status = models.SpotOccupied
		if err := s.store.SaveSpot(txCtx, spot); err != nil {
			return err
		}

		reservation = models.Reservation{
			UserID:      userID,
			SpotID:      spot.ID,
			ParkingTime: s.clock.Now().UTC(),
			Status:      models.ReservationActive,
		}
		reservation.Spot = *spot

		return s.store.CreateReservation(txCtx, &reservation)
	})
	if err != nil {
		return nil, err
	}

	if reservationsCounter != nil {
		reservationsCounter.Add(ctx, 1)
	}

	span.SetAttributes(
		attribute.Int64("reservation.id", int64(reservation.ID)),
		attribute.Int64("spot.id", int64(reservation.SpotID)),
	)

	logging.Info(ctx).
		Uint("reservation_id", reservation.ID).
		Uint("user_id", userID).
		Uint("lot_id", lotID).
		Uint("spot_id", reservation.SpotID).
		Msg("spot reserved")

	if s.notifier != nil {
		if err := s.notifier.BookingConfirmed(ctx, &reservation, lot.LocationName); err != nil {
			logging.Warn(ctx).Err(err).Msg("failed to enqueue booking confirmation")
		}
	}

	return &reservation, nil
}

// Release ends the caller's active reservation on the spot: stamps the exit
// time, bills the occupancy, completes the reservation and frees the spot,
// all in one transaction. A second release of the same pair finds no active
// reservation and fails, so nothing is billed twice.
func (s *AllocationService) Release(ctx context.Context, userID, spotID uint) (*models.Reservation, error) {
	ctx, span := tracer.Start(ctx, "allocation.release")
	defer span.End()

	if spotID == 0 {
		return nil, required("spot_id")
	}

	span.SetAttributes(
		attribute.Int64("user.id", int64(userID)),
		attribute.Int64("spot.id", int64(spotID)),
	)

	var (
		reservation *models.Reservation
		lot         *models.ParkingLot
	)

	err := s.store.WithTx(ctx, func(txCtx context.Context) error {
		var err error
		reservation, err = s.store.ActiveReservationForUpdate(txCtx, userID, spotID)
		if err != nil {
			return err
		}

		spot, err := s.store.GetSpot(txCtx, spotID)
		if err != nil {
			return err
		}

		lot, err = s.store.GetLot(txCtx, spot.LotID)
		if err != nil {
			return err
		}

		exitTime := s.clock.Now().UTC()
		cost, err := billing.Compute(reservation.ParkingTime, exitTime, lot.Price)
		if err != nil {
			return err
		}

		reservation.ExitTime = &exitTime
		reservation.ParkingCost = cost
		reservation.Status = models.ReservationCompleted
		if err := s.store.SaveReservation(txCtx, reservation); err != nil {
			return err
		}

		spot.Status = models.SpotAvailable
		return s.store.SaveSpot(txCtx, spot)
	})
	if err != nil {
		return nil, err
	}

	if releasesCounter != nil {
		releasesCounter.Add(ctx, 1)
	}
	if revenueCounter != nil {
		revenueCounter.Add(ctx, reservation.ParkingCost)
	}

	span.SetAttributes(
		attribute.Int64("reservation.id", int64(reservation.ID)),
		attribute.Float64("reservation.cost", reservation.ParkingCost),
	)

	logging.Info(ctx).
		Uint("reservation_id", reservation.ID).
		Uint("user_id", userID).
		Uint("spot_id", spotID).
		Float64("cost", reservation.ParkingCost).
		Msg("spot released")

	if s.notifier != nil {
		if err := s.notifier.ReceiptReady(ctx, reservation, lot.LocationName); err != nil {
			logging.Warn(ctx).Err(err).Msg("failed to enqueue receipt")
		}
	}

	return reservation, nil
}
