package services

import (
	"context"
	"testing"
	"time"

	"parkxcel/internal/clock"
	"parkxcel/internal/models"

	"github.com/stretchr/testify/require"
)

type reportFixture struct {
	store      *fakeStore
	catalog    *CatalogService
	allocation *AllocationService
	reports    *ReportService
	clk        *clock.Fixed
}

func newReportFixture(t *testing.T) *reportFixture {
	t.Helper()
	store := newFakeStore()
	clk := clock.NewFixed(time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC))
	return &reportFixture{
		store:      store,
		catalog:    NewCatalogService(store),
		allocation: NewAllocationService(store, clk, nil),
		reports:    NewReportService(store),
		clk:        clk,
	}
}

func (f *reportFixture) addUser(t *testing.T, name, email string) *models.User {
	t.Helper()
	user := &models.User{Name: name, Email: email, Active: true}
	require.NoError(t, f.store.CreateUser(context.Background(), user))
	return user
}

func (f *reportFixture) addLot(t *testing.T, name string, price float64, spots int) *models.ParkingLot {
	t.Helper()
	lot, err := f.catalog.CreateLot(context.Background(), CreateLotInput{
		LocationName: name, Price: price, PinCode: "560001", NumberOfSpots: spots,
	})
	require.NoError(t, err)
	return lot
}

func TestDashboardSummary(t *testing.T) {
	ctx := context.Background()
	f := newReportFixture(t)

	user := f.addUser(t, "alice", "alice@example.com")
	f.addUser(t, "bob", "bob@example.com")

	lotA := f.addLot(t, "Lot A", 10, 3)
	f.addLot(t, "Lot B", 20, 2)

	res, err := f.allocation.Reserve(ctx, user.ID, lotA.ID)
	require.NoError(t, err)
	f.clk.Advance(2 * time.Hour)
	_, err = f.allocation.Release(ctx, user.ID, res.SpotID)
	require.NoError(t, err)

	_, err = f.allocation.Reserve(ctx, user.ID, lotA.ID)
	require.NoError(t, err)

	summary, err := f.reports.DashboardSummary(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), summary.TotalLots)
	require.Equal(t, int64(5), summary.TotalSpots)
	require.Equal(t, int64(1), summary.OccupiedSpots)
	require.Equal(t, int64(4), summary.AvailableSpots)
	require.Equal(t, int64(1), summary.ActiveReservations)
	require.Equal(t, int64(2), summary.TotalUsers)
	require.Equal(t, 20.0, summary.TotalRevenue)
}

func TestRevenueByLot(t *testing.T) {
	ctx := context.Background()
	f := newReportFixture(t)

	user := f.addUser(t, "alice", "alice@example.com")
	lotA := f.addLot(t, "Lot A", 10, 2)
	lotB := f.addLot(t, "Lot B", 30, 2)

	resA, err := f.allocation.Reserve(ctx, user.ID, lotA.ID)
	require.NoError(t, err)
	f.clk.Advance(time.Hour)
	_, err = f.allocation.Release(ctx, user.ID, resA.SpotID)
	require.NoError(t, err)

	resB, err := f.allocation.Reserve(ctx, user.ID, lotB.ID)
	require.NoError(t, err)
	f.clk.Advance(time.Hour)
	_, err = f.allocation.Release(ctx, user.ID, resB.SpotID)
	require.NoError(t, err)

	revenue, err := f.reports.RevenueByLot(ctx)
	require.NoError(t, err)
	require.Len(t, revenue, 2)
	require.Equal(t, "Lot A", revenue[0].LotName)
	require.Equal(t, 10.0, revenue[0].Revenue)
	require.Equal(t, "Lot B", revenue[1].LotName)
	require.Equal(t, 30.0, revenue[1].Revenue)
}

func TestUserHistory(t *testing.T) {
	ctx := context.Background()
	f := newReportFixture(t)

	user := f.addUser(t, "alice", "alice@example.com")
	lot := f.addLot(t, "Lot A", 10, 2)

	first, err := f.allocation.Reserve(ctx, user.ID, lot.ID)
	require.NoError(t, err)
	f.clk.Advance(time.Hour)
	_, err = f.allocation.Release(ctx, user.ID, first.SpotID)
	require.NoError(t, err)

	f.clk.Advance(time.Hour)
	second, err := f.allocation.Reserve(ctx, user.ID, lot.ID)
	require.NoError(t, err)

	history, err := f.reports.UserHistory(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)

	// newest first
	require.Equal(t, second.ID, history[0].ReservationID)
	require.Equal(t, models.ReservationActive, history[0].Status)
	require.Nil(t, history[0].ExitTime)

	require.Equal(t, first.ID, history[1].ReservationID)
	require.Equal(t, models.ReservationCompleted, history[1].Status)
	require.NotNil(t, history[1].ExitTime)
	require.Equal(t, 10.0, history[1].ParkingCost)
	require.NotNil(t, history[1].LotName)
	require.Equal(t, "Lot A", *history[1].LotName)
}

func TestUserHistoryToleratesMissingSpot(t *testing.T) {
	ctx := context.Background()
	f := newReportFixture(t)

	user := f.addUser(t, "alice", "alice@example.com")
	lot := f.addLot(t, "Lot A", 10, 1)

	res, err := f.allocation.Reserve(ctx, user.ID, lot.ID)
	require.NoError(t, err)
	f.clk.Advance(time.Hour)
	_, err = f.allocation.Release(ctx, user.ID, res.SpotID)
	require.NoError(t, err)

	// lot and spots removed after the fact; the record still reads back
	require.NoError(t, f.catalog.DeleteLot(ctx, lot.ID))

	history, err := f.reports.UserHistory(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Nil(t, history[0].SpotID)
	require.Nil(t, history[0].LotName)
	require.Equal(t, 10.0, history[0].ParkingCost)
}

func TestUserSummary(t *testing.T) {
	ctx := context.Background()
	f := newReportFixture(t)

	user := f.addUser(t, "alice", "alice@example.com")
	lotA := f.addLot(t, "Lot A", 10, 2)
	lotB := f.addLot(t, "Lot B", 20, 1)

	for i := 0; i < 2; i++ {
		res, err := f.allocation.Reserve(ctx, user.ID, lotA.ID)
		require.NoError(t, err)
		f.clk.Advance(time.Hour)
		_, err = f.allocation.Release(ctx, user.ID, res.SpotID)
		require.NoError(t, err)
	}

	resB, err := f.allocation.Reserve(ctx, user.ID, lotB.ID)
	require.NoError(t, err)
	f.clk.Advance(30 * time.Minute)
	_, err = f.allocation.Release(ctx, user.ID, resB.SpotID)
	require.NoError(t, err)

	// an active park is counted but not billed
	_, err = f.allocation.Reserve(ctx, user.ID, lotA.ID)
	require.NoError(t, err)

	summary, err := f.reports.UserSummary(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, 4, summary.TotalParks)
	require.Equal(t, 2.5, summary.TotalHours)
	require.Equal(t, 30.0, summary.TotalCost)
	require.Equal(t, map[string]int{"Lot A": 2, "Lot B": 1}, summary.LotUsage)
}

func TestListUsersStatus(t *testing.T) {
	ctx := context.Background()
	f := newReportFixture(t)

	parked := f.addUser(t, "alice", "alice@example.com")
	f.addUser(t, "bob", "bob@example.com")

	lot := f.addLot(t, "Lot A", 10, 1)
	res, err := f.allocation.Reserve(ctx, parked.ID, lot.ID)
	require.NoError(t, err)

	entries, err := f.reports.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	require.Equal(t, "Parked", entries[0].Status)
	require.NotNil(t, entries[0].CurrentLot)
	require.Equal(t, "Lot A", *entries[0].CurrentLot)
	require.NotNil(t, entries[0].CurrentSpot)
	require.Equal(t, res.SpotID, *entries[0].CurrentSpot)
	require.NotNil(t, entries[0].ParkingSince)

	require.Equal(t, "Not parked", entries[1].Status)
	require.Nil(t, entries[1].CurrentLot)
}

func TestAllBookings(t *testing.T) {
	ctx := context.Background()
	f := newReportFixture(t)

	alice := f.addUser(t, "alice", "alice@example.com")
	bob := f.addUser(t, "bob", "bob@example.com")
	lot := f.addLot(t, "Lot A", 10, 2)

	_, err := f.allocation.Reserve(ctx, alice.ID, lot.ID)
	require.NoError(t, err)
	f.clk.Advance(time.Minute)
	_, err = f.allocation.Reserve(ctx, bob.ID, lot.ID)
	require.NoError(t, err)

	bookings, err := f.reports.AllBookings(ctx)
	require.NoError(t, err)
	require.Len(t, bookings, 2)

	// newest first
	require.NotNil(t, bookings[0].UserName)
	require.Equal(t, "bob", *bookings[0].UserName)
	require.NotNil(t, bookings[1].UserName)
	require.Equal(t, "alice", *bookings[1].UserName)
}
