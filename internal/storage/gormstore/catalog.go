package gormstore

import (
	"context"

	"parkxcel/internal/models"
	"parkxcel/internal/services"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (s *Store) CreateLot(ctx context.Context, lot *models.ParkingLot) error {
	return s.conn(ctx).Create(lot).Error
}

func (s *Store) SaveLot(ctx context.Context, lot *models.ParkingLot) error {
	return s.conn(ctx).Save(lot).Error
}

func (s *Store) DeleteLot(ctx context.Context, lotID uint) error {
	return s.conn(ctx).Delete(&models.ParkingLot{}, lotID).Error
}

func (s *Store) GetLot(ctx context.Context, lotID uint) (*models.ParkingLot, error) {
	var lot models.ParkingLot
	if err := s.conn(ctx).First(&lot, lotID).Error; err != nil {
		return nil, notFound(err, services.ErrLotNotFound)
	}
	return &lot, nil
}

func (s *Store) ListLots(ctx context.Context) ([]models.ParkingLot, error) {
	var lots []models.ParkingLot
	err := s.conn(ctx).
		Preload("Spots", func(db *gorm.DB) *gorm.DB {
			return db.Order("parking_spots.id ASC")
		}).
		Order("id ASC").
		Find(&lots).Error
	if err != nil {
		return nil, err
	}
	return lots, nil
}

func (s *Store) CreateSpots(ctx context.Context, spots []models.ParkingSpot) error {
	if len(spots) == 0 {
		return nil
	}
	return s.conn(ctx).Create(&spots).Error
}

func (s *Store) DeleteSpots(ctx context.Context, spotIDs []uint) error {
	if len(spotIDs) == 0 {
		return nil
	}
	return s.conn(ctx).Delete(&models.ParkingSpot{}, spotIDs).Error
}

func (s *Store) DeleteLotSpots(ctx context.Context, lotID uint) error {
	return s.conn(ctx).Where("lot_id = ?", lotID).Delete(&models.ParkingSpot{}).Error
}

func (s *Store) AvailableSpotsForUpdate(ctx context.Context, lotID uint, limit int) ([]models.ParkingSpot, error) {
	var spots []models.ParkingSpot
	err := s.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("lot_id = ? AND status = ?", lotID, models.SpotAvailable).
		Order("id ASC").
		Limit(limit).
		Find(&spots).Error
	if err != nil {
		return nil, err
	}
	return spots, nil
}

func (s *Store) CountSpots(ctx context.Context, lotID uint, status string) (int64, error) {
	var count int64
	err := s.conn(ctx).
		Model(&models.ParkingSpot{}).
		Where("lot_id = ? AND status = ?", lotID, status).
		Count(&count).Error
	return count, err
}

func (s *Store) GetSpot(ctx context.Context, spotID uint) (*models.ParkingSpot, error) {
	var spot models.ParkingSpot
	if err := s.conn(ctx).First(&spot, spotID).Error; err != nil {
		return nil, notFound(err, services.ErrSpotNotFound)
	}
	return &spot, nil
}

func (s *Store) SaveSpot(ctx context.Context, spot *models.ParkingSpot) error {
	return s.conn(ctx).Save(spot).Error
}

// LowestAvailableSpotForUpdate locks the candidate row so the
// select-and-bind step of a reserve is serializable per lot.
func (s *Store) LowestAvailableSpotForUpdate(ctx context.Context, lotID uint) (*models.ParkingSpot, error) {
	var spot models.ParkingSpot
	err := s.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("lot_id = ? AND status = ?", lotID, models.SpotAvailable).
		Order("id ASC").
		First(&spot).Error
	if err != nil {
		return nil, notFound(err, services.ErrNoAvailableSpots)
	}
	return &spot, nil
}
