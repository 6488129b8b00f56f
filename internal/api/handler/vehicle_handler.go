package handler

import (
	"encoding/csv"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/cuphut/Parking-App/internal/domain"
	"github.com/cuphut/Parking-App/internal/plate"
	"github.com/cuphut/Parking-App/internal/repository"
	"github.com/cuphut/Parking-App/internal/service"

	"github.com/gin-gonic/gin"
)

type VehicleHandler struct {
	vehicleService *service.VehicleService
}

func NewVehicleHandler(vehicleService *service.VehicleService) *VehicleHandler {
	return &VehicleHandler{vehicleService: vehicleService}
}

// POST /registered_vehicle/ (multipart form, optional image file)
func (h *VehicleHandler) Create(c *gin.Context) {
	var dto domain.CreateVehicleDTO
	if err := c.ShouldBind(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var (
		image     multipart.File
		imageName string
	)
	fileHeader, err := c.FormFile("image")
	if err == nil {
		image, err = fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "could not read uploaded image"})
			return
		}
		defer image.Close()
		imageName = fileHeader.Filename
	}

	var reader io.Reader
	if image != nil {
		reader = image
	}

	vehicle, err := h.vehicleService.Register(c.Request.Context(), dto, imageName, reader)
	if err != nil {
		if errors.Is(err, service.ErrDuplicatePlate) ||
			errors.Is(err, service.ErrInvalidImageFormat) ||
			errors.Is(err, plate.ErrInvalidPlateFormat) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not register vehicle"})
		return
	}
	c.JSON(http.StatusCreated, vehicle)
}

// POST /registered_vehicle/import (multipart CSV file)
//
// Expected columns: license_plate, owner_name, phone_number, company,
// floor_number, image_ref. A header row is skipped when present.
func (h *VehicleHandler) Import(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing import file"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read import file"})
		return
	}
	defer f.Close()

	rows, err := parseImportCSV(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed CSV: " + err.Error()})
		return
	}

	inserted, err := h.vehicleService.BulkImport(c.Request.Context(), rows)
	if err != nil {
		if errors.Is(err, service.ErrMissingAsset) || errors.Is(err, service.ErrEmptyImport) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not import vehicles"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"imported": inserted})
}

func parseImportCSV(r io.Reader) ([]domain.VehicleImportRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var rows []domain.VehicleImportRow
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(fields) == 0 || fields[0] == "" || fields[0] == "license_plate" {
			continue
		}

		row := domain.VehicleImportRow{LicensePlate: fields[0]}
		if len(fields) > 1 {
			row.OwnerName = fields[1]
		}
		if len(fields) > 2 {
			row.PhoneNumber = fields[2]
		}
		if len(fields) > 3 {
			row.Company = fields[3]
		}
		if len(fields) > 4 {
			row.FloorNumber = fields[4]
		}
		if len(fields) > 5 {
			row.ImageRef = fields[5]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// GET /registered_vehicle/vehicles
func (h *VehicleHandler) ListAll(c *gin.Context) {
	vehicles, err := h.vehicleService.ListAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list vehicles"})
		return
	}
	c.JSON(http.StatusOK, vehicles)
}

// GET /registered_vehicle/:license_plate
func (h *VehicleHandler) Get(c *gin.Context) {
	vehicle, err := h.vehicleService.Get(c.Request.Context(), c.Param("license_plate"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "vehicle not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch vehicle"})
		return
	}
	c.JSON(http.StatusOK, vehicle)
}

// PUT /registered_vehicle/:license_plate
func (h *VehicleHandler) Update(c *gin.Context) {
	var dto domain.UpdateVehicleDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vehicle, err := h.vehicleService.Update(c.Request.Context(), c.Param("license_plate"), dto)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "vehicle not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update vehicle"})
		return
	}
	c.JSON(http.StatusOK, vehicle)
}

// DELETE /registered_vehicle/:license_plate
func (h *VehicleHandler) Delete(c *gin.Context) {
	err := h.vehicleService.Delete(c.Request.Context(), c.Param("license_plate"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "vehicle not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete vehicle"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "vehicle deleted successfully"})
}
