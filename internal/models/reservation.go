package models

import (
	"time"
)

// Reservation status values. A reservation is created active and moves to
// completed exactly once, at release time; it is never reopened.
const (
	ReservationActive    = "active"
	ReservationCompleted = "completed"
)

type Reservation struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"not null;index" json:"user_id"`
	SpotID      uint       `gorm:"not null;index" json:"spot_id"`
	ParkingTime time.Time  `gorm:"not null" json:"parking_time"`
	ExitTime    *time.Time `json:"exit_time,omitempty"`
	ParkingCost float64    `gorm:"not null;default:0" json:"parking_cost"`
	Status      string     `gorm:"type:varchar(20);not null;default:active;index" json:"status"`

	User User        `gorm:"foreignKey:UserID" json:"-"`
	Spot ParkingSpot `gorm:"foreignKey:SpotID" json:"-"`
}

func (r *Reservation) IsActive() bool {
	return r.Status == ReservationActive
}
