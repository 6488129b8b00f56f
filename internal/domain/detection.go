package domain

import "time"

// PlateCandidate is one plate string read out of an uploaded image by the
// recognition collaborator. Valid is false for low-confidence reads.
type PlateCandidate struct {
	Text       string
	Confidence float32
	Valid      bool
}

// ObservationResult reports what happened for a single candidate plate.
// Operation is one of "entry", "exit", "unregistered", "invalid", "error".
type ObservationResult struct {
	Plate      string  `json:"plate"`
	Operation  string  `json:"operation"`
	Valid      bool    `json:"valid"`
	Confidence float32 `json:"confidence,omitempty"`
	OwnerName  string  `json:"name,omitempty"`
	Company    string  `json:"companyName,omitempty"`
	Floor      string  `json:"companyFloor,omitempty"`
	Phone      string  `json:"phone,omitempty"`
	Message    string  `json:"message,omitempty"`
}

type DetectionResponse struct {
	DetectionID string              `json:"detection_id"`
	Results     []ObservationResult `json:"results"`
}

// ParkingNotification is broadcast to websocket clients when an observation
// opens or closes a parking record.
type ParkingNotification struct {
	DetectionID  string    `json:"detection_id"`
	LicensePlate string    `json:"license_plate"`
	Operation    string    `json:"operation"`
	OccurredAt   time.Time `json:"occurred_at"`
}
