package services

import (
	"context"
	"errors"
	"time"

	"parkxcel/internal/billing"
	"parkxcel/internal/models"

	"go.opentelemetry.io/otel/attribute"
)

// ReportStore is the read-only view the aggregator derives its summaries
// from. Nothing here mutates catalog or reservation state.
type ReportStore interface {
	ListLots(ctx context.Context) ([]models.ParkingLot, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	CountUsers(ctx context.Context) (int64, error)
	CountReservations(ctx context.Context, status string) (int64, error)
	SumCompletedCost(ctx context.Context) (float64, error)
	SumCompletedCostByLot(ctx context.Context, lotID uint) (float64, error)
	ReservationsByUser(ctx context.Context, userID uint) ([]models.Reservation, error)
	AllReservations(ctx context.Context) ([]models.Reservation, error)
	ActiveReservationByUser(ctx context.Context, userID uint) (*models.Reservation, error)
	GetSpot(ctx context.Context, spotID uint) (*models.ParkingSpot, error)
	GetLot(ctx context.Context, lotID uint) (*models.ParkingLot, error)
	GetUser(ctx context.Context, userID uint) (*models.User, error)
}

type ReportService struct {
	store ReportStore
}

func NewReportService(store ReportStore) *ReportService {
	return &ReportService{store: store}
}

type DashboardSummary struct {
	TotalLots          int64   `json:"total_lots"`
	TotalSpots         int64   `json:"total_spots"`
	OccupiedSpots      int64   `json:"occupied_spots"`
	AvailableSpots     int64   `json:"available_spots"`
	ActiveReservations int64   `json:"active_reservations"`
	TotalUsers         int64   `json:"total_users"`
	TotalRevenue       float64 `json:"total_revenue"`
}

func (s *ReportService) DashboardSummary(ctx context.Context) (*DashboardSummary, error) {
	ctx, span := tracer.Start(ctx, "reports.dashboard_summary")
	defer span.End()

	lots, err := s.store.ListLots(ctx)
	if err != nil {
		return nil, err
	}

	summary := DashboardSummary{TotalLots: int64(len(lots))}
	for _, lot := range lots {
		for _, spot := range lot.Spots {
			summary.TotalSpots++
			if spot.Status == models.SpotOccupied {
				summary.OccupiedSpots++
			}
		}
	}
	summary.AvailableSpots = summary.TotalSpots - summary.OccupiedSpots

	if summary.ActiveReservations, err = s.store.CountReservations(ctx, models.ReservationActive); err != nil {
		return nil, err
	}
	if summary.TotalUsers, err = s.store.CountUsers(ctx); err != nil {
		return nil, err
	}

	revenue, err := s.store.SumCompletedCost(ctx)
	if err != nil {
		return nil, err
	}
	summary.TotalRevenue = billing.Round2(revenue)

	span.SetAttributes(
		attribute.Int64("summary.total_lots", summary.TotalLots),
		attribute.Int64("summary.total_spots", summary.TotalSpots),
	)

	return &summary, nil
}

type LotRevenue struct {
	LotID   uint    `json:"lot_id"`
	LotName string  `json:"lot_name"`
	Revenue float64 `json:"revenue"`
}

func (s *ReportService) RevenueByLot(ctx context.Context) ([]LotRevenue, error) {
	ctx, span := tracer.Start(ctx, "reports.revenue_by_lot")
	defer span.End()

	lots, err := s.store.ListLots(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]LotRevenue, 0, len(lots))
	for _, lot := range lots {
		revenue, err := s.store.SumCompletedCostByLot(ctx, lot.ID)
		if err != nil {
			return nil, err
		}
		result = append(result, LotRevenue{
			LotID:   lot.ID,
			LotName: lot.LocationName,
			Revenue: billing.Round2(revenue),
		})
	}

	span.SetAttributes(attribute.Int("result.count", len(result)))
	return result, nil
}

// HistoryEntry is a reservation enriched with the lot name and spot id
// resolved at read time. A lot or spot that no longer exists leaves the
// enrichment absent instead of failing the report.
type HistoryEntry struct {
	ReservationID uint       `json:"reservation_id"`
	LotName       *string    `json:"lot_name"`
	SpotID        *uint      `json:"spot_id"`
	ParkingTime   time.Time  `json:"parking_time"`
	ExitTime      *time.Time `json:"exit_time"`
	Status        string     `json:"status"`
	ParkingCost   float64    `json:"parking_cost"`
}

type BookingRecord struct {
	HistoryEntry
	UserName  *string `json:"user_name"`
	UserEmail *string `json:"user_email"`
}

func (s *ReportService) UserHistory(ctx context.Context, userID uint) ([]HistoryEntry, error) {
	ctx, span := tracer.Start(ctx, "reports.user_history")
	defer span.End()

	span.SetAttributes(attribute.Int64("user.id", int64(userID)))

	reservations, err := s.store.ReservationsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	history := make([]HistoryEntry, len(reservations))
	for i, res := range reservations {
		history[i] = s.enrich(ctx, res)
	}
	return history, nil
}

func (s *ReportService) AllBookings(ctx context.Context) ([]BookingRecord, error) {
	ctx, span := tracer.Start(ctx, "reports.all_bookings")
	defer span.End()

	reservations, err := s.store.AllReservations(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]BookingRecord, len(reservations))
	for i, res := range reservations {
		record := BookingRecord{HistoryEntry: s.enrich(ctx, res)}
		if user, err := s.store.GetUser(ctx, res.UserID); err == nil {
			record.UserName = &user.Name
			record.UserEmail = &user.Email
		}
		records[i] = record
	}

	span.SetAttributes(attribute.Int("result.count", len(records)))
	return records, nil
}

func (s *ReportService) enrich(ctx context.Context, res models.Reservation) HistoryEntry {
	entry := HistoryEntry{
		ReservationID: res.ID,
		ParkingTime:   res.ParkingTime,
		ExitTime:      res.ExitTime,
		Status:        res.Status,
		ParkingCost:   res.ParkingCost,
	}

	spot, err := s.store.GetSpot(ctx, res.SpotID)
	if err != nil {
		return entry
	}
	entry.SpotID = &spot.ID

	lot, err := s.store.GetLot(ctx, spot.LotID)
	if err != nil {
		return entry
	}
	entry.LotName = &lot.LocationName

	return entry
}

type UserSummary struct {
	TotalParks int            `json:"total_parks"`
	TotalHours float64        `json:"total_hours"`
	TotalCost  float64        `json:"total_cost"`
	LotUsage   map[string]int `json:"lot_usage"`
}

func (s *ReportService) UserSummary(ctx context.Context, userID uint) (*UserSummary, error) {
	ctx, span := tracer.Start(ctx, "reports.user_summary")
	defer span.End()

	span.SetAttributes(attribute.Int64("user.id", int64(userID)))

	reservations, err := s.store.ReservationsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := UserSummary{
		TotalParks: len(reservations),
		LotUsage:   make(map[string]int),
	}

	for _, res := range reservations {
		if res.ExitTime == nil {
			continue
		}
		summary.TotalHours += res.ExitTime.Sub(res.ParkingTime).Hours()
		summary.TotalCost += res.ParkingCost

		entry := s.enrich(ctx, res)
		if entry.LotName != nil {
			summary.LotUsage[*entry.LotName]++
		}
	}

	summary.TotalHours = billing.Round2(summary.TotalHours)
	summary.TotalCost = billing.Round2(summary.TotalCost)

	return &summary, nil
}

type UserStatusEntry struct {
	UserID       uint       `json:"user_id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Roles        []string   `json:"roles"`
	Active       bool       `json:"active"`
	Status       string     `json:"current_status"`
	CurrentLot   *string    `json:"current_lot"`
	CurrentSpot  *uint      `json:"current_spot"`
	ParkingSince *time.Time `json:"parking_since"`
}

// ListUsers annotates every user with whether they are currently parked,
// and where.
func (s *ReportService) ListUsers(ctx context.Context) ([]UserStatusEntry, error) {
	ctx, span := tracer.Start(ctx, "reports.list_users")
	defer span.End()

	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]UserStatusEntry, len(users))
	for i, user := range users {
		entry := UserStatusEntry{
			UserID: user.ID,
			Name:   user.Name,
			Email:  user.Email,
			Roles:  user.RoleNames(),
			Active: user.Active,
			Status: "Not parked",
		}

		active, err := s.store.ActiveReservationByUser(ctx, user.ID)
		if err != nil && !errors.Is(err, ErrNoActiveReservation) {
			return nil, err
		}
		if active != nil {
			entry.Status = "Parked"
			since := active.ParkingTime
			entry.ParkingSince = &since
			if spot, err := s.store.GetSpot(ctx, active.SpotID); err == nil {
				entry.CurrentSpot = &spot.ID
				if lot, err := s.store.GetLot(ctx, spot.LotID); err == nil {
					entry.CurrentLot = &lot.LocationName
				}
			}
		}

		entries[i] = entry
	}

	span.SetAttributes(attribute.Int("result.count", len(entries)))
	return entries, nil
}
