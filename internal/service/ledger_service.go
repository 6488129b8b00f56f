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

	"go.uber.org/zap"
)

var (
	ErrVehicleNotRegistered = errors.New("vehicle is not registered")
	ErrAlreadyClosed        = errors.New("exit time already set")
)

// LedgerService drives the per-plate parking state machine. A plate is
// either out (no open record) or in (one record with a null exit time);
// each observation flips the state.
type LedgerService struct {
	recordRepo  repository.ParkingRecordRepository
	vehicleRepo repository.VehicleRepository
}

func NewLedgerService(recordRepo repository.ParkingRecordRepository,
	vehicleRepo repository.VehicleRepository) *LedgerService {
	return &LedgerService{recordRepo: recordRepo, vehicleRepo: vehicleRepo}
}

// RecordObservation decides entry versus exit from the presence of an
// open record: none means a new record is opened, one means it is closed.
// The partial unique index on open records backs this check against
// concurrent observations of the same plate.
func (s *LedgerService) RecordObservation(ctx context.Context, rawPlate string) (*domain.ParkingRecord, domain.ParkingOperation, error) {
	canonical := plate.Normalize(rawPlate)

	if _, err := s.vehicleRepo.FindByPlate(ctx, canonical); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrVehicleNotRegistered
		}
		return nil, "", fmt.Errorf("checking vehicle registration: %w", err)
	}

	open, err := s.recordRepo.FindOpenByPlate(ctx, canonical)
	if errors.Is(err, repository.ErrNoOpenRecord) {
		record, err := s.recordRepo.Create(ctx, &domain.ParkingRecord{
			LicensePlate: canonical,
			EntryTime:    time.Now().UTC(),
		})
		if err != nil {
			return nil, "", fmt.Errorf("opening parking record: %w", err)
		}
		logger.Log.Info("vehicle entered",
			zap.String("plate", canonical),
			zap.Int("record_id", record.ID),
		)
		return record, domain.OperationEntry, nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("looking up open record: %w", err)
	}

	record, err := s.recordRepo.SetExitTime(ctx, open.ID, time.Now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrRecordClosed) {
			return nil, "", ErrAlreadyClosed
		}
		return nil, "", fmt.Errorf("closing parking record: %w", err)
	}
	logger.Log.Info("vehicle exited",
		zap.String("plate", canonical),
		zap.Int("record_id", record.ID),
	)
	return record, domain.OperationExit, nil
}

func (s *LedgerService) GetByID(ctx context.Context, id int) (*domain.ParkingRecord, error) {
	return s.recordRepo.FindByID(ctx, id)
}

func (s *LedgerService) ListOpen(ctx context.Context) ([]domain.ParkingRecord, error) {
	return s.recordRepo.FindOpen(ctx)
}

func (s *LedgerService) ListAll(ctx context.Context) ([]domain.ParkingRecord, error) {
	return s.recordRepo.FindAll(ctx)
}

// Close sets the exit time of a specific record, the administrative
// counterpart of an exit observation.
func (s *LedgerService) Close(ctx context.Context, id int) (*domain.ParkingRecord, error) {
	record, err := s.recordRepo.SetExitTime(ctx, id, time.Now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrRecordClosed) {
			return nil, ErrAlreadyClosed
		}
		return nil, err
	}
	return record, nil
}

func (s *LedgerService) DeleteByPlate(ctx context.Context, rawPlate string) error {
	return s.recordRepo.DeleteByPlate(ctx, plate.Normalize(rawPlate))
}
