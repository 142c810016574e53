// Package export renders reservation history for download.
package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"parkxcel/internal/services"
)

var historyHeader = []string{
	"Reservation ID", "Lot Name", "Spot ID", "Parking Time", "Exit Time", "Status", "Cost",
}

// WriteHistoryCSV streams a user's reservation history as CSV rows.
func WriteHistoryCSV(w io.Writer, history []services.HistoryEntry) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(historyHeader); err != nil {
		return err
	}

	for _, entry := range history {
		row := []string{
			strconv.FormatUint(uint64(entry.ReservationID), 10),
			stringOrEmpty(entry.LotName),
			spotOrEmpty(entry.SpotID),
			entry.ParkingTime.Format(time.RFC3339),
			timeOrEmpty(entry.ExitTime),
			entry.Status,
			strconv.FormatFloat(entry.ParkingCost, 'f', 2, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func spotOrEmpty(id *uint) string {
	if id == nil {
		return ""
	}
	return strconv.FormatUint(uint64(*id), 10)
}

func timeOrEmpty(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
