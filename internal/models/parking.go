package models

import (
	"time"
)

// Spot status values. A spot flips A->O only when an active reservation is
// bound to it, and O->A only when that reservation is released.
const (
	SpotAvailable = "A"
	SpotOccupied  = "O"
)

type ParkingLot struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	LocationName  string    `gorm:"not null" json:"location_name"`
	Price         float64   `gorm:"not null" json:"price"`
	PinCode       string    `gorm:"not null" json:"pin_code"`
	NumberOfSpots int       `gorm:"not null" json:"number_of_spots"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Spots []ParkingSpot `gorm:"foreignKey:LotID" json:"-"`
}

type ParkingSpot struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	LotID  uint   `gorm:"not null;index" json:"lot_id"`
	Status string `gorm:"type:varchar(1);not null;default:A" json:"status"`

	Reservations []Reservation `gorm:"foreignKey:SpotID" json:"-"`
}

func (s *ParkingSpot) StatusLabel() string {
	if s.Status == SpotOccupied {
		return "Occupied"
	}
	return "Available"
}

type SpotResponse struct {
	SpotID uint   `json:"spot_id"`
	Status string `json:"status"`
}

type LotResponse struct {
	LotID          uint           `json:"lot_id"`
	LocationName   string         `json:"location_name"`
	Price          float64        `json:"price"`
	PinCode        string         `json:"pin_code"`
	TotalSpots     int            `json:"total_spots"`
	AvailableSpots int            `json:"available_spots"`
	OccupiedSpots  int            `json:"occupied_spots"`
	Spots          []SpotResponse `json:"spots,omitempty"`
}

// ToResponse derives the availability counts from the loaded spot set, so
// the response always reflects current state rather than a stored figure.
func (l *ParkingLot) ToResponse(includeSpots bool) LotResponse {
	available := 0
	for _, s := range l.Spots {
		if s.Status == SpotAvailable {
			available++
		}
	}

	resp := LotResponse{
		LotID:          l.ID,
		LocationName:   l.LocationName,
		Price:          l.Price,
		PinCode:        l.PinCode,
		TotalSpots:     len(l.Spots),
		AvailableSpots: available,
		OccupiedSpots:  len(l.Spots) - available,
	}

	if includeSpots {
		resp.Spots = make([]SpotResponse, len(l.Spots))
		for i, s := range l.Spots {
			resp.Spots[i] = SpotResponse{SpotID: s.ID, Status: s.StatusLabel()}
		}
	}

	return resp
}
