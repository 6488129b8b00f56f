package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cuphut/Parking-App/internal/domain"
	"github.com/cuphut/Parking-App/internal/plate"
	"github.com/cuphut/Parking-App/internal/repository"
	"github.com/cuphut/Parking-App/internal/storage"
	"github.com/cuphut/Parking-App/pkg/logger"

	"go.uber.org/zap"
	"gopkg.in/guregu/null.v4"
)

var (
	ErrDuplicatePlate     = errors.New("license plate already registered")
	ErrInvalidImageFormat = errors.New("invalid image format, only jpg, jpeg and png are allowed")
	ErrMissingAsset       = errors.New("referenced image asset not found")
	ErrEmptyImport        = errors.New("no vehicles eligible for import")
)

type VehicleService struct {
	vehicleRepo repository.VehicleRepository
	images      storage.ImageStore
}

func NewVehicleService(vehicleRepo repository.VehicleRepository, images storage.ImageStore) *VehicleService {
	return &VehicleService{vehicleRepo: vehicleRepo, images: images}
}

// Register creates a vehicle keyed by the canonical plate. When an image
// is supplied it is stored under a name derived from the plate, replacing
// any previous asset with the same name.
func (s *VehicleService) Register(ctx context.Context, dto domain.CreateVehicleDTO,
	imageName string, image io.Reader) (*domain.RegisteredVehicle, error) {

	canonical := plate.Normalize(dto.LicensePlate)
	if canonical == "" {
		return nil, plate.ErrInvalidPlateFormat
	}

	var ext string
	if image != nil {
		var ok bool
		ext, ok = storage.ValidExtension(imageName)
		if !ok {
			return nil, ErrInvalidImageFormat
		}
	}

	if _, err := s.vehicleRepo.FindByPlate(ctx, canonical); err == nil {
		return nil, ErrDuplicatePlate
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("checking plate: %w", err)
	}

	vehicle := &domain.RegisteredVehicle{
		LicensePlate: canonical,
		OwnerName:    dto.OwnerName,
		PhoneNumber:  dto.PhoneNumber,
		Company:      null.NewString(dto.Company, dto.Company != ""),
		FloorNumber:  null.NewString(dto.FloorNumber, dto.FloorNumber != ""),
	}

	if image != nil {
		ref, err := s.images.Save(canonical, ext, image)
		if err != nil {
			return nil, fmt.Errorf("storing vehicle image: %w", err)
		}
		vehicle.ImagePath = null.StringFrom(ref)
	}

	created, err := s.vehicleRepo.Create(ctx, vehicle)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			return nil, ErrDuplicatePlate
		}
		return nil, fmt.Errorf("creating vehicle: %w", err)
	}

	logger.Log.Info("vehicle registered", zap.String("plate", canonical))
	return created, nil
}

func (s *VehicleService) Get(ctx context.Context, rawPlate string) (*domain.RegisteredVehicle, error) {
	return s.vehicleRepo.FindByPlate(ctx, plate.Normalize(rawPlate))
}

func (s *VehicleService) ListAll(ctx context.Context) ([]domain.RegisteredVehicle, error) {
	return s.vehicleRepo.FindAll(ctx)
}

// Update applies a partial update: only the fields present in the DTO are
// replaced.
func (s *VehicleService) Update(ctx context.Context, rawPlate string, dto domain.UpdateVehicleDTO) (*domain.RegisteredVehicle, error) {
	canonical := plate.Normalize(rawPlate)

	vehicle, err := s.vehicleRepo.FindByPlate(ctx, canonical)
	if err != nil {
		return nil, err
	}

	if dto.OwnerName != nil {
		vehicle.OwnerName = *dto.OwnerName
	}
	if dto.PhoneNumber != nil {
		vehicle.PhoneNumber = *dto.PhoneNumber
	}
	if dto.Company != nil {
		vehicle.Company = null.NewString(*dto.Company, *dto.Company != "")
	}
	if dto.FloorNumber != nil {
		vehicle.FloorNumber = null.NewString(*dto.FloorNumber, *dto.FloorNumber != "")
	}

	return s.vehicleRepo.Update(ctx, vehicle)
}

// Delete removes the vehicle, its image asset (best effort) and, through
// the database cascade, all of its parking records.
func (s *VehicleService) Delete(ctx context.Context, rawPlate string) error {
	canonical := plate.Normalize(rawPlate)

	vehicle, err := s.vehicleRepo.FindByPlate(ctx, canonical)
	if err != nil {
		return err
	}

	if vehicle.ImagePath.Valid {
		if err := s.images.Remove(vehicle.ImagePath.String); err != nil {
			logger.Log.Warn("could not remove vehicle image",
				zap.String("plate", canonical),
				zap.String("ref", vehicle.ImagePath.String),
				zap.Error(err),
			)
		}
	}

	if err := s.vehicleRepo.Delete(ctx, canonical); err != nil {
		return err
	}
	logger.Log.Info("vehicle deleted", zap.String("plate", canonical))
	return nil
}

// BulkImport inserts a batch of vehicles. Rows whose plate is already
// registered are skipped silently; a row whose image asset cannot be
// located fails the whole batch.
func (s *VehicleService) BulkImport(ctx context.Context, rows []domain.VehicleImportRow) (int, error) {
	var batch []domain.RegisteredVehicle

	for _, row := range rows {
		canonical := plate.Normalize(row.LicensePlate)
		if canonical == "" {
			continue
		}

		_, err := s.vehicleRepo.FindByPlate(ctx, canonical)
		if err == nil {
			continue // already registered, leave the existing row untouched
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return 0, fmt.Errorf("checking plate %q: %w", canonical, err)
		}

		ref, err := s.images.Find(canonical)
		if err != nil {
			if errors.Is(err, storage.ErrAssetNotFound) {
				return 0, fmt.Errorf("%w: plate %q", ErrMissingAsset, canonical)
			}
			return 0, fmt.Errorf("locating image for plate %q: %w", canonical, err)
		}

		batch = append(batch, domain.RegisteredVehicle{
			LicensePlate: canonical,
			OwnerName:    row.OwnerName,
			PhoneNumber:  row.PhoneNumber,
			Company:      null.NewString(row.Company, row.Company != ""),
			FloorNumber:  null.NewString(row.FloorNumber, row.FloorNumber != ""),
			ImagePath:    null.StringFrom(ref),
		})
	}

	if len(batch) == 0 {
		return 0, ErrEmptyImport
	}

	inserted, err := s.vehicleRepo.CreateBatch(ctx, batch)
	if err != nil {
		return 0, err
	}
	logger.Log.Info("vehicles imported", zap.Int("count", inserted))
	return inserted, nil
}
