package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cuphut/Parking-App/internal/domain"
	"github.com/cuphut/Parking-App/internal/repository"
)

type pgVehicleRepository struct {
	db *sql.DB
}

func NewPgVehicleRepository(db *sql.DB) repository.VehicleRepository {
	return &pgVehicleRepository{db: db}
}

func (r *pgVehicleRepository) Create(ctx context.Context, vehicle *domain.RegisteredVehicle) (*domain.RegisteredVehicle, error) {
	query := `INSERT INTO registered_vehicles
	           (license_plate, owner_name, phone_number, company, floor_number, image_path, created_at, updated_at)
	           VALUES ($1, $2, $3, $4, $5, $6, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	           RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		vehicle.LicensePlate, vehicle.OwnerName, vehicle.PhoneNumber,
		vehicle.Company, vehicle.FloorNumber, vehicle.ImagePath,
	).Scan(&vehicle.CreatedAt, &vehicle.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: plate %q", repository.ErrDuplicateEntry, vehicle.LicensePlate)
		}
		return nil, fmt.Errorf("VehicleRepository.Create: %w", err)
	}
	vehicle.CreatedAt = vehicle.CreatedAt.In(time.UTC)
	vehicle.UpdatedAt = vehicle.UpdatedAt.In(time.UTC)
	return vehicle, nil
}

func (r *pgVehicleRepository) CreateBatch(ctx context.Context, vehicles []domain.RegisteredVehicle) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("VehicleRepository.CreateBatch: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO registered_vehicles
	           (license_plate, owner_name, phone_number, company, floor_number, image_path, created_at, updated_at)
	           VALUES ($1, $2, $3, $4, $5, $6, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`

	inserted := 0
	for _, vehicle := range vehicles {
		if _, err := tx.ExecContext(ctx, query,
			vehicle.LicensePlate, vehicle.OwnerName, vehicle.PhoneNumber,
			vehicle.Company, vehicle.FloorNumber, vehicle.ImagePath,
		); err != nil {
			if isUniqueViolation(err) {
				return 0, fmt.Errorf("%w: plate %q", repository.ErrDuplicateEntry, vehicle.LicensePlate)
			}
			return 0, fmt.Errorf("VehicleRepository.CreateBatch: %w", err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("VehicleRepository.CreateBatch (commit): %w", err)
	}
	return inserted, nil
}

func (r *pgVehicleRepository) FindByPlate(ctx context.Context, plate string) (*domain.RegisteredVehicle, error) {
	vehicle := &domain.RegisteredVehicle{}
	query := `SELECT license_plate, owner_name, phone_number, company, floor_number, image_path, created_at, updated_at
	           FROM registered_vehicles WHERE license_plate = $1`

	err := r.db.QueryRowContext(ctx, query, plate).Scan(
		&vehicle.LicensePlate, &vehicle.OwnerName, &vehicle.PhoneNumber,
		&vehicle.Company, &vehicle.FloorNumber, &vehicle.ImagePath,
		&vehicle.CreatedAt, &vehicle.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("VehicleRepository.FindByPlate: %w", err)
	}
	vehicle.CreatedAt = vehicle.CreatedAt.In(time.UTC)
	vehicle.UpdatedAt = vehicle.UpdatedAt.In(time.UTC)
	return vehicle, nil
}

func (r *pgVehicleRepository) FindAll(ctx context.Context) ([]domain.RegisteredVehicle, error) {
	query := `SELECT license_plate, owner_name, phone_number, company, floor_number, image_path, created_at, updated_at
	           FROM registered_vehicles`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("VehicleRepository.FindAll: %w", err)
	}
	defer rows.Close()

	var vehicles []domain.RegisteredVehicle
	for rows.Next() {
		var vehicle domain.RegisteredVehicle
		if err := rows.Scan(
			&vehicle.LicensePlate, &vehicle.OwnerName, &vehicle.PhoneNumber,
			&vehicle.Company, &vehicle.FloorNumber, &vehicle.ImagePath,
			&vehicle.CreatedAt, &vehicle.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("VehicleRepository.FindAll (scanning row): %w", err)
		}
		vehicle.CreatedAt = vehicle.CreatedAt.In(time.UTC)
		vehicle.UpdatedAt = vehicle.UpdatedAt.In(time.UTC)
		vehicles = append(vehicles, vehicle)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("VehicleRepository.FindAll (rows error): %w", err)
	}
	return vehicles, nil
}

func (r *pgVehicleRepository) Update(ctx context.Context, vehicle *domain.RegisteredVehicle) (*domain.RegisteredVehicle, error) {
	query := `UPDATE registered_vehicles
	           SET owner_name = $1, phone_number = $2, company = $3, floor_number = $4,
	               image_path = $5, updated_at = CURRENT_TIMESTAMP
	           WHERE license_plate = $6
	           RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		vehicle.OwnerName, vehicle.PhoneNumber, vehicle.Company,
		vehicle.FloorNumber, vehicle.ImagePath, vehicle.LicensePlate,
	).Scan(&vehicle.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("VehicleRepository.Update: %w", err)
	}
	vehicle.UpdatedAt = vehicle.UpdatedAt.In(time.UTC)
	return vehicle, nil
}

func (r *pgVehicleRepository) Delete(ctx context.Context, plate string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM registered_vehicles WHERE license_plate = $1`, plate)
	if err != nil {
		return fmt.Errorf("VehicleRepository.Delete: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("VehicleRepository.Delete: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
