package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cuphut/Parking-App/internal/domain"
	"github.com/cuphut/Parking-App/internal/plate"
	"github.com/cuphut/Parking-App/internal/repository"
	"github.com/cuphut/Parking-App/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrRecognitionTimeout marks a recognition call that exceeded its budget.
var ErrRecognitionTimeout = errors.New("plate recognition timed out")

// ParkingNotifier receives entry/exit events produced by the detection
// pipeline, e.g. to push them to websocket clients.
type ParkingNotifier interface {
	NotifyParkingEvent(event domain.ParkingNotification)
}

// DetectionService orchestrates an uploaded image through recognition,
// registry lookup and the parking ledger. It owns no decision logic of
// its own: candidates are resolved independently so one bad read never
// blocks the rest of the batch.
type DetectionService struct {
	reader   PlateReader
	vehicles *VehicleService
	ledger   *LedgerService
	notifier ParkingNotifier
	timeout  time.Duration
}

func NewDetectionService(reader PlateReader, vehicles *VehicleService, ledger *LedgerService,
	notifier ParkingNotifier, timeout time.Duration) *DetectionService {
	return &DetectionService{
		reader:   reader,
		vehicles: vehicles,
		ledger:   ledger,
		notifier: notifier,
		timeout:  timeout,
	}
}

func (s *DetectionService) ProcessImage(ctx context.Context, imageBytes []byte) (*domain.DetectionResponse, error) {
	// The recognition call runs outside any database transaction and under
	// its own deadline so a slow model cannot hold other requests up.
	readCtx, cancel := context.WithTimeout(ctx, s.timeout)
	candidates, err := s.reader.ReadPlates(readCtx, imageBytes)
	cancel()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", ErrRecognitionTimeout, err)
		}
		return nil, fmt.Errorf("reading plates: %w", err)
	}

	detectionID := uuid.NewString()
	results := make([]domain.ObservationResult, 0, len(candidates))
	for _, candidate := range candidates {
		results = append(results, s.resolveCandidate(ctx, detectionID, candidate))
	}

	logger.Log.Info("image processed",
		zap.String("detection_id", detectionID),
		zap.Int("candidates", len(candidates)),
	)
	return &domain.DetectionResponse{DetectionID: detectionID, Results: results}, nil
}

func (s *DetectionService) resolveCandidate(ctx context.Context, detectionID string,
	candidate domain.PlateCandidate) domain.ObservationResult {

	canonical := plate.Normalize(candidate.Text)
	display, err := plate.FormatDisplay(canonical)
	if err != nil {
		display = candidate.Text
	}

	result := domain.ObservationResult{
		Plate:      display,
		Confidence: candidate.Confidence,
	}

	if !candidate.Valid || err != nil {
		result.Operation = "invalid"
		result.Message = "plate could not be read reliably"
		return result
	}

	vehicle, err := s.vehicles.Get(ctx, canonical)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			result.Operation = "unregistered"
			result.Message = "vehicle is not registered"
			return result
		}
		logger.Log.Error("vehicle lookup failed",
			zap.String("plate", canonical), zap.Error(err))
		result.Operation = "error"
		result.Message = err.Error()
		return result
	}

	result.Valid = true
	result.OwnerName = vehicle.OwnerName
	result.Phone = vehicle.PhoneNumber
	result.Company = vehicle.Company.ValueOrZero()
	result.Floor = vehicle.FloorNumber.ValueOrZero()

	record, operation, err := s.ledger.RecordObservation(ctx, canonical)
	if err != nil {
		logger.Log.Error("observation failed",
			zap.String("plate", canonical), zap.Error(err))
		result.Operation = "error"
		result.Message = err.Error()
		return result
	}

	result.Operation = string(operation)
	if s.notifier != nil {
		occurredAt := record.EntryTime
		if record.ExitTime.Valid {
			occurredAt = record.ExitTime.Time
		}
		s.notifier.NotifyParkingEvent(domain.ParkingNotification{
			DetectionID:  detectionID,
			LicensePlate: canonical,
			Operation:    string(operation),
			OccurredAt:   occurredAt,
		})
	}
	return result
}
