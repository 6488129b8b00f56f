package domain

import (
	"time"

	"gopkg.in/guregu/null.v4"
)

type ParkingOperation string

const (
	OperationEntry ParkingOperation = "entry"
	OperationExit  ParkingOperation = "exit"
)

// ParkingRecord is one parking session. A null ExitTime means the vehicle
// is currently parked (an "open" record).
type ParkingRecord struct {
	ID           int       `json:"id"`
	LicensePlate string    `json:"license_plate"`
	EntryTime    time.Time `json:"entry_time"`
	ExitTime     null.Time `json:"exit_time"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Vehicle *RegisteredVehicle `json:"vehicle,omitempty"`
}

type CreateParkingRecordDTO struct {
	LicensePlate string `json:"license_plate" binding:"required"`
}

// ObservationResponse is returned when a plate observation is recorded:
// the record that was opened or closed, and which of the two it was.
type ObservationResponse struct {
	Operation ParkingOperation `json:"operation"`
	Record    *ParkingRecord   `json:"record"`
}
