package services

import (
	"context"

	"parkxcel/internal/logging"
	"parkxcel/internal/models"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// CatalogStore is the storage contract for lot and spot ownership. Mutating
// calls are only valid inside WithTx; a lot's capacity and its spot set
// change together or not at all.
type CatalogStore interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	CreateLot(ctx context.Context, lot *models.ParkingLot) error
	SaveLot(ctx context.Context, lot *models.ParkingLot) error
	DeleteLot(ctx context.Context, lotID uint) error
	GetLot(ctx context.Context, lotID uint) (*models.ParkingLot, error)
	ListLots(ctx context.Context) ([]models.ParkingLot, error)
	CreateSpots(ctx context.Context, spots []models.ParkingSpot) error
	DeleteSpots(ctx context.Context, spotIDs []uint) error
	DeleteLotSpots(ctx context.Context, lotID uint) error
	// AvailableSpotsForUpdate locks up to limit available spots of the lot,
	// lowest identifier first, so a concurrent reserve cannot grab one of
	// them mid-shrink.
	AvailableSpotsForUpdate(ctx context.Context, lotID uint, limit int) ([]models.ParkingSpot, error)
	CountSpots(ctx context.Context, lotID uint, status string) (int64, error)
}

var lotsCreatedCounter metric.Int64Counter

type CatalogService struct {
	store CatalogStore
}

func NewCatalogService(store CatalogStore) *CatalogService {
	var err error
	lotsCreatedCounter, err = meter.Int64Counter(
		"catalog.lots.created",
		metric.WithDescription("Total number of parking lots created"),
	)
	if err != nil {
		logging.Logger().Error().Err(err).Msg("failed to create lots counter")
	}

	return &CatalogService{store: store}
}

type CreateLotInput struct {
	LocationName  string  `json:"location_name"`
	Price         float64 `json:"price"`
	PinCode       string  `json:"pin_code"`
	NumberOfSpots int     `json:"number_of_spots"`
}

type UpdateLotInput struct {
	LocationName  *string  `json:"location_name"`
	Price         *float64 `json:"price"`
	PinCode       *string  `json:"pin_code"`
	NumberOfSpots *int     `json:"number_of_spots"`
}

func (s *CatalogService) CreateLot(ctx context.Context, input CreateLotInput) (*models.ParkingLot, error) {
	ctx, span := tracer.Start(ctx, "catalog.create_lot")
	defer span.End()

	if input.LocationName == "" {
		return nil, required("location_name")
	}
	if input.PinCode == "" {
		return nil, required("pin_code")
	}
	if input.Price <= 0 {
		return nil, mustBePositive("price")
	}
	if input.NumberOfSpots <= 0 {
		return nil, mustBePositive("number_of_spots")
	}

	lot := models.ParkingLot{
		LocationName:  input.LocationName,
		Price:         input.Price,
		PinCode:       input.PinCode,
		NumberOfSpots: input.NumberOfSpots,
	}

	err := s.store.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.store.CreateLot(txCtx, &lot); err != nil {
			return err
		}

		spots := make([]models.ParkingSpot, lot.NumberOfSpots)
		for i := range spots {
			spots[i] = models.ParkingSpot{LotID: lot.ID, Status: models.SpotAvailable}
		}
		return s.store.CreateSpots(txCtx, spots)
	})
	if err != nil {
		return nil, err
	}

	if lotsCreatedCounter != nil {
		lotsCreatedCounter.Add(ctx, 1)
	}

	span.SetAttributes(
		attribute.Int64("lot.id", int64(lot.ID)),
		attribute.Int("lot.spots", lot.NumberOfSpots),
	)

	logging.Info(ctx).
		Uint("lot_id", lot.ID).
		Str("location", lot.LocationName).
		Int("spots_created", lot.NumberOfSpots).
		Msg("parking lot created")

	return &lot, nil
}

func (s *CatalogService) EditLot(ctx context.Context, lotID uint, input UpdateLotInput) (*models.ParkingLot, error) {
	ctx, span := tracer.Start(ctx, "catalog.edit_lot")
	defer span.End()

	span.SetAttributes(attribute.Int64("lot.id", int64(lotID)))

	if input.Price != nil && *input.Price <= 0 {
		return nil, mustBePositive("price")
	}
	if input.NumberOfSpots != nil && *input.NumberOfSpots <= 0 {
		return nil, mustBePositive("number_of_spots")
	}

	var lot *models.ParkingLot

	err := s.store.WithTx(ctx, func(txCtx context.Context) error {
		var err error
		lot, err = s.store.GetLot(txCtx, lotID)
		if err != nil {
			return err
		}

		if input.LocationName != nil {
			lot.LocationName = *input.LocationName
		}
		if input.Price != nil {
			lot.Price = *input.Price
		}
		if input.PinCode != nil {
			lot.PinCode = *input.PinCode
		}

		if input.NumberOfSpots != nil {
			if err := s.resizeSpots(txCtx, lot, *input.NumberOfSpots); err != nil {
				return err
			}
			lot.NumberOfSpots = *input.NumberOfSpots
		}

		return s.store.SaveLot(txCtx, lot)
	})
	if err != nil {
		return nil, err
	}

	logging.Info(ctx).
		Uint("lot_id", lot.ID).
		Int("spots", lot.NumberOfSpots).
		Msg("parking lot updated")

	return lot, nil
}

// resizeSpots grows the lot with fresh available spots or shrinks it by
// deleting available spots, lowest identifier first. Shrinking fails when
// fewer available spots exist than the reduction asks for: occupied spots
// are never removed.
func (s *CatalogService) resizeSpots(ctx context.Context, lot *models.ParkingLot, newCount int) error {
	switch {
	case newCount > lot.NumberOfSpots:
		grow := newCount - lot.NumberOfSpots
		spots := make([]models.ParkingSpot, grow)
		for i := range spots {
			spots[i] = models.ParkingSpot{LotID: lot.ID, Status: models.SpotAvailable}
		}
		return s.store.CreateSpots(ctx, spots)

	case newCount < lot.NumberOfSpots:
		shrink := lot.NumberOfSpots - newCount
		available, err := s.store.AvailableSpotsForUpdate(ctx, lot.ID, shrink)
		if err != nil {
			return err
		}
		if len(available) < shrink {
			return ErrCapacityConflict
		}
		ids := make([]uint, shrink)
		for i, spot := range available[:shrink] {
			ids[i] = spot.ID
		}
		return s.store.DeleteSpots(ctx, ids)
	}

	return nil
}

func (s *CatalogService) DeleteLot(ctx context.Context, lotID uint) error {
	ctx, span := tracer.Start(ctx, "catalog.delete_lot")
	defer span.End()

	span.SetAttributes(attribute.Int64("lot.id", int64(lotID)))

	err := s.store.WithTx(ctx, func(txCtx context.Context) error {
		if _, err := s.store.GetLot(txCtx, lotID); err != nil {
			return err
		}

		occupied, err := s.store.CountSpots(txCtx, lotID, models.SpotOccupied)
		if err != nil {
			return err
		}
		if occupied > 0 {
			return ErrLotOccupied
		}

		if err := s.store.DeleteLotSpots(txCtx, lotID); err != nil {
			return err
		}
		return s.store.DeleteLot(txCtx, lotID)
	})
	if err != nil {
		return err
	}

	logging.Info(ctx).Uint("lot_id", lotID).Msg("parking lot deleted")
	return nil
}

func (s *CatalogService) ListLots(ctx context.Context) ([]models.ParkingLot, error) {
	ctx, span := tracer.Start(ctx, "catalog.list_lots")
	defer span.End()

	lots, err := s.store.ListLots(ctx)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("result.count", len(lots)))
	return lots, nil
}
