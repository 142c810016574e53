package services

import (
	"context"
	"testing"

	"parkxcel/internal/models"

	"github.com/stretchr/testify/require"
)

func newCatalogFixture(t *testing.T) (*CatalogService, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	return NewCatalogService(store), store
}

func validLotInput() CreateLotInput {
	return CreateLotInput{
		LocationName:  "Downtown Garage",
		Price:         10,
		PinCode:       "560001",
		NumberOfSpots: 5,
	}
}

func TestCreateLot(t *testing.T) {
	ctx := context.Background()

	t.Run("creates lot with matching spot set", func(t *testing.T) {
		svc, store := newCatalogFixture(t)

		lot, err := svc.CreateLot(ctx, validLotInput())
		require.NoError(t, err)
		require.NotZero(t, lot.ID)

		spots := store.lotSpots(lot.ID)
		require.Len(t, spots, 5)
		for _, spot := range spots {
			require.Equal(t, models.SpotAvailable, spot.Status)
		}
	})

	t.Run("rejects bad input", func(t *testing.T) {
		svc, _ := newCatalogFixture(t)

		cases := []struct {
			name   string
			mutate func(*CreateLotInput)
		}{
			{"empty location", func(in *CreateLotInput) { in.LocationName = "" }},
			{"empty pin code", func(in *CreateLotInput) { in.PinCode = "" }},
			{"zero price", func(in *CreateLotInput) { in.Price = 0 }},
			{"negative price", func(in *CreateLotInput) { in.Price = -1 }},
			{"zero spots", func(in *CreateLotInput) { in.NumberOfSpots = 0 }},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				input := validLotInput()
				tc.mutate(&input)
				_, err := svc.CreateLot(ctx, input)
				var ve *ValidationError
				require.ErrorAs(t, err, &ve)
			})
		}
	})
}

func TestEditLot(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown lot", func(t *testing.T) {
		svc, _ := newCatalogFixture(t)
		_, err := svc.EditLot(ctx, 99, UpdateLotInput{})
		require.ErrorIs(t, err, ErrLotNotFound)
	})

	t.Run("updates fields", func(t *testing.T) {
		svc, _ := newCatalogFixture(t)
		lot, err := svc.CreateLot(ctx, validLotInput())
		require.NoError(t, err)

		name := "Airport Lot"
		price := 25.5
		updated, err := svc.EditLot(ctx, lot.ID, UpdateLotInput{LocationName: &name, Price: &price})
		require.NoError(t, err)
		require.Equal(t, "Airport Lot", updated.LocationName)
		require.Equal(t, 25.5, updated.Price)
		require.Equal(t, 5, updated.NumberOfSpots)
	})

	t.Run("grow adds available spots", func(t *testing.T) {
		svc, store := newCatalogFixture(t)
		lot, err := svc.CreateLot(ctx, validLotInput())
		require.NoError(t, err)

		count := 8
		updated, err := svc.EditLot(ctx, lot.ID, UpdateLotInput{NumberOfSpots: &count})
		require.NoError(t, err)
		require.Equal(t, 8, updated.NumberOfSpots)
		require.Len(t, store.lotSpots(lot.ID), 8)
	})

	t.Run("shrink removes lowest available spots first", func(t *testing.T) {
		svc, store := newCatalogFixture(t)
		lot, err := svc.CreateLot(ctx, validLotInput())
		require.NoError(t, err)

		spots := store.lotSpots(lot.ID)
		store.spots[spots[0].ID].Status = models.SpotOccupied
		store.spots[spots[1].ID].Status = models.SpotOccupied

		count := 3
		_, err = svc.EditLot(ctx, lot.ID, UpdateLotInput{NumberOfSpots: &count})
		require.NoError(t, err)

		remaining := store.lotSpots(lot.ID)
		require.Len(t, remaining, 3)
		// the two occupied spots survive, the lowest available ids go
		require.Equal(t, spots[0].ID, remaining[0].ID)
		require.Equal(t, spots[1].ID, remaining[1].ID)
		require.Equal(t, spots[4].ID, remaining[2].ID)
	})

	t.Run("shrink below occupied count fails", func(t *testing.T) {
		svc, store := newCatalogFixture(t)
		lot, err := svc.CreateLot(ctx, validLotInput())
		require.NoError(t, err)

		spots := store.lotSpots(lot.ID)
		store.spots[spots[0].ID].Status = models.SpotOccupied
		store.spots[spots[1].ID].Status = models.SpotOccupied

		count := 2
		_, err = svc.EditLot(ctx, lot.ID, UpdateLotInput{NumberOfSpots: &count})
		require.ErrorIs(t, err, ErrCapacityConflict)
		require.Len(t, store.lotSpots(lot.ID), 5)
	})

	t.Run("rejects non-positive values", func(t *testing.T) {
		svc, _ := newCatalogFixture(t)
		lot, err := svc.CreateLot(ctx, validLotInput())
		require.NoError(t, err)

		zero := 0
		_, err = svc.EditLot(ctx, lot.ID, UpdateLotInput{NumberOfSpots: &zero})
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)

		badPrice := -5.0
		_, err = svc.EditLot(ctx, lot.ID, UpdateLotInput{Price: &badPrice})
		require.ErrorAs(t, err, &ve)
	})
}

func TestDeleteLot(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown lot", func(t *testing.T) {
		svc, _ := newCatalogFixture(t)
		require.ErrorIs(t, svc.DeleteLot(ctx, 42), ErrLotNotFound)
	})

	t.Run("occupied lot is protected", func(t *testing.T) {
		svc, store := newCatalogFixture(t)
		lot, err := svc.CreateLot(ctx, validLotInput())
		require.NoError(t, err)

		spots := store.lotSpots(lot.ID)
		store.spots[spots[2].ID].Status = models.SpotOccupied

		require.ErrorIs(t, svc.DeleteLot(ctx, lot.ID), ErrLotOccupied)
		require.Len(t, store.lotSpots(lot.ID), 5)
	})

	t.Run("empty lot is removed with its spots", func(t *testing.T) {
		svc, store := newCatalogFixture(t)
		lot, err := svc.CreateLot(ctx, validLotInput())
		require.NoError(t, err)

		require.NoError(t, svc.DeleteLot(ctx, lot.ID))
		require.Empty(t, store.lotSpots(lot.ID))

		lots, err := svc.ListLots(ctx)
		require.NoError(t, err)
		require.Empty(t, lots)
	})
}

func TestListLots(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCatalogFixture(t)

	first, err := svc.CreateLot(ctx, validLotInput())
	require.NoError(t, err)
	second, err := svc.CreateLot(ctx, CreateLotInput{
		LocationName: "Mall Parking", Price: 15, PinCode: "560002", NumberOfSpots: 3,
	})
	require.NoError(t, err)

	lots, err := svc.ListLots(ctx)
	require.NoError(t, err)
	require.Len(t, lots, 2)
	require.Equal(t, first.ID, lots[0].ID)
	require.Equal(t, second.ID, lots[1].ID)
	require.Len(t, lots[0].Spots, 5)
	require.Len(t, lots[1].Spots, 3)
}
