package services

import (
	"context"
	"sort"
	"sync"

	"parkxcel/internal/models"
)

// fakeStore is an in-memory implementation of the storage contracts. WithTx
// holds a single mutex for the whole callback, which mirrors the row-lock
// serialization the real store gets from SELECT ... FOR UPDATE.
type fakeStore struct {
	mu sync.Mutex

	nextLotID  uint
	nextSpotID uint
	nextResID  uint
	nextUserID uint
	nextRoleID uint

	lots         map[uint]*models.ParkingLot
	spots        map[uint]*models.ParkingSpot
	reservations map[uint]*models.Reservation
	users        map[uint]*models.User
	roles        map[string]*models.Role
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		lots:         make(map[uint]*models.ParkingLot),
		spots:        make(map[uint]*models.ParkingSpot),
		reservations: make(map[uint]*models.Reservation),
		users:        make(map[uint]*models.User),
		roles:        make(map[string]*models.Role),
	}
}

func (f *fakeStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fn(ctx)
}

func (f *fakeStore) CreateLot(ctx context.Context, lot *models.ParkingLot) error {
	f.nextLotID++
	lot.ID = f.nextLotID
	stored := *lot
	f.lots[lot.ID] = &stored
	return nil
}

func (f *fakeStore) SaveLot(ctx context.Context, lot *models.ParkingLot) error {
	stored := *lot
	f.lots[lot.ID] = &stored
	return nil
}

func (f *fakeStore) DeleteLot(ctx context.Context, lotID uint) error {
	delete(f.lots, lotID)
	return nil
}

func (f *fakeStore) GetLot(ctx context.Context, lotID uint) (*models.ParkingLot, error) {
	lot, ok := f.lots[lotID]
	if !ok {
		return nil, ErrLotNotFound
	}
	copied := *lot
	return &copied, nil
}

func (f *fakeStore) ListLots(ctx context.Context) ([]models.ParkingLot, error) {
	lots := make([]models.ParkingLot, 0, len(f.lots))
	for _, lot := range f.lots {
		copied := *lot
		copied.Spots = f.lotSpots(lot.ID)
		lots = append(lots, copied)
	}
	sort.Slice(lots, func(i, j int) bool { return lots[i].ID < lots[j].ID })
	return lots, nil
}

func (f *fakeStore) lotSpots(lotID uint) []models.ParkingSpot {
	var spots []models.ParkingSpot
	for _, spot := range f.spots {
		if spot.LotID == lotID {
			spots = append(spots, *spot)
		}
	}
	sort.Slice(spots, func(i, j int) bool { return spots[i].ID < spots[j].ID })
	return spots
}

func (f *fakeStore) CreateSpots(ctx context.Context, spots []models.ParkingSpot) error {
	for i := range spots {
		f.nextSpotID++
		spots[i].ID = f.nextSpotID
		stored := spots[i]
		f.spots[stored.ID] = &stored
	}
	return nil
}

func (f *fakeStore) DeleteSpots(ctx context.Context, spotIDs []uint) error {
	for _, id := range spotIDs {
		delete(f.spots, id)
	}
	return nil
}

func (f *fakeStore) DeleteLotSpots(ctx context.Context, lotID uint) error {
	for id, spot := range f.spots {
		if spot.LotID == lotID {
			delete(f.spots, id)
		}
	}
	return nil
}

func (f *fakeStore) AvailableSpotsForUpdate(ctx context.Context, lotID uint, limit int) ([]models.ParkingSpot, error) {
	var available []models.ParkingSpot
	for _, spot := range f.lotSpots(lotID) {
		if spot.Status == models.SpotAvailable {
			available = append(available, spot)
		}
	}
	if len(available) > limit {
		available = available[:limit]
	}
	return available, nil
}

func (f *fakeStore) CountSpots(ctx context.Context, lotID uint, status string) (int64, error) {
	var count int64
	for _, spot := range f.spots {
		if spot.LotID == lotID && spot.Status == status {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) GetSpot(ctx context.Context, spotID uint) (*models.ParkingSpot, error) {
	spot, ok := f.spots[spotID]
	if !ok {
		return nil, ErrSpotNotFound
	}
	copied := *spot
	return &copied, nil
}

func (f *fakeStore) SaveSpot(ctx context.Context, spot *models.ParkingSpot) error {
	stored := *spot
	f.spots[spot.ID] = &stored
	return nil
}

func (f *fakeStore) LowestAvailableSpotForUpdate(ctx context.Context, lotID uint) (*models.ParkingSpot, error) {
	for _, spot := range f.lotSpots(lotID) {
		if spot.Status == models.SpotAvailable {
			copied := spot
			return &copied, nil
		}
	}
	return nil, ErrNoAvailableSpots
}

func (f *fakeStore) CreateReservation(ctx context.Context, res *models.Reservation) error {
	f.nextResID++
	res.ID = f.nextResID
	stored := *res
	f.reservations[res.ID] = &stored
	return nil
}

func (f *fakeStore) SaveReservation(ctx context.Context, res *models.Reservation) error {
	stored := *res
	f.reservations[res.ID] = &stored
	return nil
}

func (f *fakeStore) ActiveReservationForUpdate(ctx context.Context, userID, spotID uint) (*models.Reservation, error) {
	for _, res := range f.sortedReservations() {
		if res.UserID == userID && res.SpotID == spotID && res.Status == models.ReservationActive {
			copied := res
			return &copied, nil
		}
	}
	return nil, ErrNoActiveReservation
}

func (f *fakeStore) ActiveReservationByUser(ctx context.Context, userID uint) (*models.Reservation, error) {
	for _, res := range f.sortedReservations() {
		if res.UserID == userID && res.Status == models.ReservationActive {
			copied := res
			return &copied, nil
		}
	}
	return nil, ErrNoActiveReservation
}

func (f *fakeStore) sortedReservations() []models.Reservation {
	all := make([]models.Reservation, 0, len(f.reservations))
	for _, res := range f.reservations {
		all = append(all, *res)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all
}

func (f *fakeStore) ReservationsByUser(ctx context.Context, userID uint) ([]models.Reservation, error) {
	var result []models.Reservation
	for _, res := range f.sortedReservations() {
		if res.UserID == userID {
			result = append(result, res)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ParkingTime.After(result[j].ParkingTime)
	})
	return result, nil
}

func (f *fakeStore) AllReservations(ctx context.Context) ([]models.Reservation, error) {
	result := f.sortedReservations()
	sort.Slice(result, func(i, j int) bool {
		return result[i].ParkingTime.After(result[j].ParkingTime)
	})
	return result, nil
}

func (f *fakeStore) CountReservations(ctx context.Context, status string) (int64, error) {
	var count int64
	for _, res := range f.reservations {
		if res.Status == status {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) SumCompletedCost(ctx context.Context) (float64, error) {
	var sum float64
	for _, res := range f.reservations {
		if res.Status == models.ReservationCompleted {
			sum += res.ParkingCost
		}
	}
	return sum, nil
}

func (f *fakeStore) SumCompletedCostByLot(ctx context.Context, lotID uint) (float64, error) {
	var sum float64
	for _, res := range f.reservations {
		if res.Status != models.ReservationCompleted {
			continue
		}
		spot, ok := f.spots[res.SpotID]
		if !ok || spot.LotID != lotID {
			continue
		}
		sum += res.ParkingCost
	}
	return sum, nil
}

func (f *fakeStore) GetUser(ctx context.Context, userID uint) (*models.User, error) {
	user, ok := f.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, ErrUserNotFound
}

func (f *fakeStore) FindUserByName(ctx context.Context, name string) (*models.User, error) {
	for _, user := range f.users {
		if user.Name == name {
			copied := *user
			return &copied, nil
		}
	}
	return nil, ErrUserNotFound
}

func (f *fakeStore) FindUserByEmailOrName(ctx context.Context, identifier string) (*models.User, error) {
	for _, user := range f.users {
		if user.Email == identifier || user.Name == identifier {
			copied := *user
			return &copied, nil
		}
	}
	return nil, ErrUserNotFound
}

func (f *fakeStore) EnsureRole(ctx context.Context, name, description string) (*models.Role, error) {
	if role, ok := f.roles[name]; ok {
		copied := *role
		return &copied, nil
	}
	f.nextRoleID++
	role := &models.Role{ID: f.nextRoleID, Name: name, Description: description}
	f.roles[name] = role
	copied := *role
	return &copied, nil
}

func (f *fakeStore) CreateUser(ctx context.Context, user *models.User) error {
	f.nextUserID++
	user.ID = f.nextUserID
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeStore) ListUsers(ctx context.Context) ([]models.User, error) {
	users := make([]models.User, 0, len(f.users))
	for _, user := range f.users {
		users = append(users, *user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (f *fakeStore) CountUsers(ctx context.Context) (int64, error) {
	return int64(len(f.users)), nil
}
