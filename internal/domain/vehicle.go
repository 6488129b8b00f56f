package domain

import (
	"time"

	"gopkg.in/guregu/null.v4"
)

type RegisteredVehicle struct {
	LicensePlate string      `json:"license_plate"`
	OwnerName    string      `json:"owner_name"`
	PhoneNumber  string      `json:"phone_number"`
	Company      null.String `json:"company"`
	FloorNumber  null.String `json:"floor_number"`
	ImagePath    null.String `json:"image_path"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// CreateVehicleDTO is bound from the multipart form on vehicle registration.
type CreateVehicleDTO struct {
	LicensePlate string `form:"license_plate" binding:"required"`
	OwnerName    string `form:"owner_name" binding:"required"`
	PhoneNumber  string `form:"phone_number" binding:"required"`
	Company      string `form:"company"`
	FloorNumber  string `form:"floor_number"`
}

// UpdateVehicleDTO carries a partial update: nil fields are left untouched.
type UpdateVehicleDTO struct {
	OwnerName   *string `json:"owner_name"`
	PhoneNumber *string `json:"phone_number"`
	Company     *string `json:"company"`
	FloorNumber *string `json:"floor_number"`
}

// VehicleImportRow is one parsed row of a bulk import file. ImageRef names
// the image asset expected to already exist in the upload store.
type VehicleImportRow struct {
	LicensePlate string
	OwnerName    string
	PhoneNumber  string
	Company      string
	FloorNumber  string
	ImageRef     string
}
