package gormstore

import (
	"context"

	"parkxcel/internal/models"
	"parkxcel/internal/services"

	"gorm.io/gorm/clause"
)

func (s *Store) CreateReservation(ctx context.Context, res *models.Reservation) error {
	return s.conn(ctx).Omit(clause.Associations).Create(res).Error
}

func (s *Store) SaveReservation(ctx context.Context, res *models.Reservation) error {
	return s.conn(ctx).Omit(clause.Associations).Save(res).Error
}

func (s *Store) ActiveReservationForUpdate(ctx context.Context, userID, spotID uint) (*models.Reservation, error) {
	var res models.Reservation
	err := s.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND spot_id = ? AND status = ?", userID, spotID, models.ReservationActive).
		First(&res).Error
	if err != nil {
		return nil, notFound(err, services.ErrNoActiveReservation)
	}
	return &res, nil
}

func (s *Store) ActiveReservationByUser(ctx context.Context, userID uint) (*models.Reservation, error) {
	var res models.Reservation
	err := s.conn(ctx).
		Where("user_id = ? AND status = ?", userID, models.ReservationActive).
		Order("parking_time DESC").
		First(&res).Error
	if err != nil {
		return nil, notFound(err, services.ErrNoActiveReservation)
	}
	return &res, nil
}

func (s *Store) ReservationsByUser(ctx context.Context, userID uint) ([]models.Reservation, error) {
	var reservations []models.Reservation
	err := s.conn(ctx).
		Where("user_id = ?", userID).
		Order("parking_time DESC").
		Find(&reservations).Error
	if err != nil {
		return nil, err
	}
	return reservations, nil
}

func (s *Store) AllReservations(ctx context.Context) ([]models.Reservation, error) {
	var reservations []models.Reservation
	err := s.conn(ctx).
		Order("parking_time DESC").
		Find(&reservations).Error
	if err != nil {
		return nil, err
	}
	return reservations, nil
}

func (s *Store) CountReservations(ctx context.Context, status string) (int64, error) {
	var count int64
	err := s.conn(ctx).
		Model(&models.Reservation{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

func (s *Store) SumCompletedCost(ctx context.Context) (float64, error) {
	var total float64
	err := s.conn(ctx).
		Model(&models.Reservation{}).
		Where("status = ?", models.ReservationCompleted).
		Select("COALESCE(SUM(parking_cost), 0)").
		Scan(&total).Error
	return total, err
}

func (s *Store) SumCompletedCostByLot(ctx context.Context, lotID uint) (float64, error) {
	var total float64
	err := s.conn(ctx).
		Model(&models.Reservation{}).
		Joins("JOIN parking_spots ON parking_spots.id = reservations.spot_id").
		Where("parking_spots.lot_id = ? AND reservations.status = ?", lotID, models.ReservationCompleted).
		Select("COALESCE(SUM(reservations.parking_cost), 0)").
		Scan(&total).Error
	return total, err
}
