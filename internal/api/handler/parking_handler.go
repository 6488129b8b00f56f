package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/cuphut/Parking-App/internal/domain"
	"github.com/cuphut/Parking-App/internal/repository"
	"github.com/cuphut/Parking-App/internal/service"

	"github.com/gin-gonic/gin"
)

type ParkingHandler struct {
	ledgerService *service.LedgerService
}

func NewParkingHandler(ledgerService *service.LedgerService) *ParkingHandler {
	return &ParkingHandler{ledgerService: ledgerService}
}

// POST /parking-lot/
//
// Records an observation for a plate: opens a record when the vehicle is
// out, closes the open record when it is in.
func (h *ParkingHandler) RecordObservation(c *gin.Context) {
	var dto domain.CreateParkingRecordDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, operation, err := h.ledgerService.RecordObservation(c.Request.Context(), dto.LicensePlate)
	if err != nil {
		if errors.Is(err, service.ErrVehicleNotRegistered) || errors.Is(err, service.ErrAlreadyClosed) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not record observation"})
		return
	}
	c.JSON(http.StatusCreated, domain.ObservationResponse{Operation: operation, Record: record})
}

// GET /parking-lot/
func (h *ParkingHandler) ListAll(c *gin.Context) {
	records, err := h.ledgerService.ListAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list parking records"})
		return
	}
	c.JSON(http.StatusOK, records)
}

// GET /parking-lot/no-exit-time
func (h *ParkingHandler) ListOpen(c *gin.Context) {
	records, err := h.ledgerService.ListOpen(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list open parking records"})
		return
	}
	c.JSON(http.StatusOK, records)
}

// GET /parking-lot/:id
func (h *ParkingHandler) GetByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid parking record id"})
		return
	}

	record, err := h.ledgerService.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "parking record not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch parking record"})
		return
	}
	c.JSON(http.StatusOK, record)
}

// PUT /parking-lot/exit/:id
func (h *ParkingHandler) Close(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid parking record id"})
		return
	}

	record, err := h.ledgerService.Close(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrAlreadyClosed) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "parking record not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not close parking record"})
		return
	}
	c.JSON(http.StatusOK, record)
}

// DELETE /parking-lot/:license_plate
func (h *ParkingHandler) DeleteByPlate(c *gin.Context) {
	err := h.ledgerService.DeleteByPlate(c.Request.Context(), c.Param("license_plate"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no parking records for plate"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete parking records"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "parking records deleted successfully"})
}
