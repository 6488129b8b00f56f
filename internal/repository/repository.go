package repository

import (
	"context"
	"errors"
	"time"

	"github.com/cuphut/Parking-App/internal/domain"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEntry = errors.New("record already exists")
	ErrNoOpenRecord   = errors.New("no open parking record for the given plate")
	// ErrRecordClosed is returned when a guarded exit-time update finds the
	// record already closed.
	ErrRecordClosed = errors.New("parking record already closed")
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id int) (*domain.User, error)
	FindAll(ctx context.Context) ([]domain.User, error)
	UpdatePassword(ctx context.Context, username, passwordHash string) (*domain.User, error)
}

type VehicleRepository interface {
	Create(ctx context.Context, vehicle *domain.RegisteredVehicle) (*domain.RegisteredVehicle, error)
	// CreateBatch inserts all vehicles in one transaction and reports how
	// many rows were written.
	CreateBatch(ctx context.Context, vehicles []domain.RegisteredVehicle) (int, error)
	FindByPlate(ctx context.Context, plate string) (*domain.RegisteredVehicle, error)
	FindAll(ctx context.Context) ([]domain.RegisteredVehicle, error)
	Update(ctx context.Context, vehicle *domain.RegisteredVehicle) (*domain.RegisteredVehicle, error)
	// Delete removes the vehicle row; parking records cascade at the
	// database level.
	Delete(ctx context.Context, plate string) error
}

type ParkingRecordRepository interface {
	Create(ctx context.Context, record *domain.ParkingRecord) (*domain.ParkingRecord, error)
	FindByID(ctx context.Context, id int) (*domain.ParkingRecord, error)
	// FindOpenByPlate returns the record with a null exit time for the
	// plate, or ErrNoOpenRecord.
	FindOpenByPlate(ctx context.Context, plate string) (*domain.ParkingRecord, error)
	// FindAll returns every record joined with its vehicle, most recent
	// entry first.
	FindAll(ctx context.Context) ([]domain.ParkingRecord, error)
	// FindOpen returns records with a null exit time, same join and order
	// as FindAll.
	FindOpen(ctx context.Context) ([]domain.ParkingRecord, error)
	// SetExitTime closes a record. It only touches rows whose exit time is
	// still null; a record closed in the meantime yields ErrRecordClosed.
	SetExitTime(ctx context.Context, id int, exitTime time.Time) (*domain.ParkingRecord, error)
	DeleteByPlate(ctx context.Context, plate string) error
}
