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

type pgParkingRecordRepository struct {
	db *sql.DB
}

func NewPgParkingRecordRepository(db *sql.DB) repository.ParkingRecordRepository {
	return &pgParkingRecordRepository{db: db}
}

// Create relies on the partial unique index on (license_plate) WHERE
// exit_time IS NULL: a concurrent second entry for the same plate fails
// with a unique violation instead of producing two open records.
func (r *pgParkingRecordRepository) Create(ctx context.Context, record *domain.ParkingRecord) (*domain.ParkingRecord, error) {
	query := `INSERT INTO parking_records (license_plate, entry_time, exit_time, created_at, updated_at)
	           VALUES ($1, $2, NULL, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	           RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, record.LicensePlate, record.EntryTime).
		Scan(&record.ID, &record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: open record for plate %q", repository.ErrDuplicateEntry, record.LicensePlate)
		}
		return nil, fmt.Errorf("ParkingRecordRepository.Create: %w", err)
	}
	record.EntryTime = record.EntryTime.In(time.UTC)
	record.CreatedAt = record.CreatedAt.In(time.UTC)
	record.UpdatedAt = record.UpdatedAt.In(time.UTC)
	return record, nil
}

func (r *pgParkingRecordRepository) FindByID(ctx context.Context, id int) (*domain.ParkingRecord, error) {
	record := &domain.ParkingRecord{}
	query := `SELECT id, license_plate, entry_time, exit_time, created_at, updated_at
	           FROM parking_records WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&record.ID, &record.LicensePlate, &record.EntryTime, &record.ExitTime,
		&record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("ParkingRecordRepository.FindByID: %w", err)
	}
	normalizeRecordTimes(record)
	return record, nil
}

func (r *pgParkingRecordRepository) FindOpenByPlate(ctx context.Context, plate string) (*domain.ParkingRecord, error) {
	record := &domain.ParkingRecord{}
	query := `SELECT id, license_plate, entry_time, exit_time, created_at, updated_at
	           FROM parking_records
	           WHERE license_plate = $1 AND exit_time IS NULL
	           ORDER BY entry_time DESC LIMIT 1`

	err := r.db.QueryRowContext(ctx, query, plate).Scan(
		&record.ID, &record.LicensePlate, &record.EntryTime, &record.ExitTime,
		&record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNoOpenRecord
		}
		return nil, fmt.Errorf("ParkingRecordRepository.FindOpenByPlate: %w", err)
	}
	normalizeRecordTimes(record)
	return record, nil
}

const recordWithVehicleQuery = `
	SELECT p.id, p.license_plate, p.entry_time, p.exit_time, p.created_at, p.updated_at,
	       v.license_plate, v.owner_name, v.phone_number, v.company, v.floor_number, v.image_path,
	       v.created_at, v.updated_at
	  FROM parking_records p
	  JOIN registered_vehicles v ON v.license_plate = p.license_plate`

func (r *pgParkingRecordRepository) FindAll(ctx context.Context) ([]domain.ParkingRecord, error) {
	query := recordWithVehicleQuery + ` ORDER BY p.entry_time DESC`
	return r.queryRecordsWithVehicle(ctx, "FindAll", query)
}

func (r *pgParkingRecordRepository) FindOpen(ctx context.Context) ([]domain.ParkingRecord, error) {
	query := recordWithVehicleQuery + ` WHERE p.exit_time IS NULL ORDER BY p.entry_time DESC`
	return r.queryRecordsWithVehicle(ctx, "FindOpen", query)
}

func (r *pgParkingRecordRepository) queryRecordsWithVehicle(ctx context.Context, op, query string) ([]domain.ParkingRecord, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ParkingRecordRepository.%s: %w", op, err)
	}
	defer rows.Close()

	var records []domain.ParkingRecord
	for rows.Next() {
		var record domain.ParkingRecord
		var vehicle domain.RegisteredVehicle
		if err := rows.Scan(
			&record.ID, &record.LicensePlate, &record.EntryTime, &record.ExitTime,
			&record.CreatedAt, &record.UpdatedAt,
			&vehicle.LicensePlate, &vehicle.OwnerName, &vehicle.PhoneNumber,
			&vehicle.Company, &vehicle.FloorNumber, &vehicle.ImagePath,
			&vehicle.CreatedAt, &vehicle.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ParkingRecordRepository.%s (scanning row): %w", op, err)
		}
		normalizeRecordTimes(&record)
		vehicle.CreatedAt = vehicle.CreatedAt.In(time.UTC)
		vehicle.UpdatedAt = vehicle.UpdatedAt.In(time.UTC)
		record.Vehicle = &vehicle
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ParkingRecordRepository.%s (rows error): %w", op, err)
	}
	return records, nil
}

// SetExitTime only touches rows that are still open; losing a race to a
// concurrent close is reported as ErrRecordClosed.
func (r *pgParkingRecordRepository) SetExitTime(ctx context.Context, id int, exitTime time.Time) (*domain.ParkingRecord, error) {
	record := &domain.ParkingRecord{}
	query := `UPDATE parking_records
	           SET exit_time = $1, updated_at = CURRENT_TIMESTAMP
	           WHERE id = $2 AND exit_time IS NULL
	           RETURNING id, license_plate, entry_time, exit_time, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, exitTime, id).Scan(
		&record.ID, &record.LicensePlate, &record.EntryTime, &record.ExitTime,
		&record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			var exists bool
			checkErr := r.db.QueryRowContext(ctx,
				`SELECT EXISTS (SELECT 1 FROM parking_records WHERE id = $1)`, id).Scan(&exists)
			if checkErr != nil {
				return nil, fmt.Errorf("ParkingRecordRepository.SetExitTime: %w", checkErr)
			}
			if exists {
				return nil, repository.ErrRecordClosed
			}
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("ParkingRecordRepository.SetExitTime: %w", err)
	}
	normalizeRecordTimes(record)
	return record, nil
}

func (r *pgParkingRecordRepository) DeleteByPlate(ctx context.Context, plate string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM parking_records WHERE license_plate = $1`, plate)
	if err != nil {
		return fmt.Errorf("ParkingRecordRepository.DeleteByPlate: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ParkingRecordRepository.DeleteByPlate: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func normalizeRecordTimes(record *domain.ParkingRecord) {
	record.EntryTime = record.EntryTime.In(time.UTC)
	if record.ExitTime.Valid {
		record.ExitTime.Time = record.ExitTime.Time.In(time.UTC)
	}
	record.CreatedAt = record.CreatedAt.In(time.UTC)
	record.UpdatedAt = record.UpdatedAt.In(time.UTC)
}
