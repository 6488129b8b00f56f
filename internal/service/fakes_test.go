package service

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/cuphut/Parking-App/internal/domain"
	"github.com/cuphut/Parking-App/internal/repository"
	"github.com/cuphut/Parking-App/internal/storage"
)

// In-memory repository fakes. They mirror the database behaviour the
// services rely on: sentinel errors, the single-open-record constraint
// and the cascade from vehicles to parking records.

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int
	users  map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[user.Username]; exists {
		return nil, repository.ErrDuplicateEntry
	}
	r.nextID++
	stored := *user
	stored.ID = r.nextID
	stored.CreatedAt = time.Now().UTC()
	stored.UpdatedAt = stored.CreatedAt
	r.users[stored.Username] = &stored
	out := stored
	return &out, nil
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *user
	return &out, nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id int) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.ID == id {
			out := *user
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) FindAll(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := make([]domain.User, 0, len(r.users))
	for _, user := range r.users {
		users = append(users, *user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, username, passwordHash string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	user.Password = passwordHash
	user.UpdatedAt = time.Now().UTC()
	out := *user
	return &out, nil
}

type fakeVehicleRepo struct {
	mu       sync.Mutex
	vehicles map[string]*domain.RegisteredVehicle
	// records, when set, receives the cascade on vehicle deletion the way
	// the foreign key does in the database.
	records *fakeRecordRepo
}

func newFakeVehicleRepo() *fakeVehicleRepo {
	return &fakeVehicleRepo{vehicles: make(map[string]*domain.RegisteredVehicle)}
}

func (r *fakeVehicleRepo) Create(_ context.Context, vehicle *domain.RegisteredVehicle) (*domain.RegisteredVehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.vehicles[vehicle.LicensePlate]; exists {
		return nil, repository.ErrDuplicateEntry
	}
	stored := *vehicle
	stored.CreatedAt = time.Now().UTC()
	stored.UpdatedAt = stored.CreatedAt
	r.vehicles[stored.LicensePlate] = &stored
	out := stored
	return &out, nil
}

func (r *fakeVehicleRepo) CreateBatch(ctx context.Context, vehicles []domain.RegisteredVehicle) (int, error) {
	for i := range vehicles {
		if _, err := r.Create(ctx, &vehicles[i]); err != nil {
			return 0, err
		}
	}
	return len(vehicles), nil
}

func (r *fakeVehicleRepo) FindByPlate(_ context.Context, plate string) (*domain.RegisteredVehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	vehicle, ok := r.vehicles[plate]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *vehicle
	return &out, nil
}

func (r *fakeVehicleRepo) FindAll(_ context.Context) ([]domain.RegisteredVehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	vehicles := make([]domain.RegisteredVehicle, 0, len(r.vehicles))
	for _, vehicle := range r.vehicles {
		vehicles = append(vehicles, *vehicle)
	}
	sort.Slice(vehicles, func(i, j int) bool { return vehicles[i].LicensePlate < vehicles[j].LicensePlate })
	return vehicles, nil
}

func (r *fakeVehicleRepo) Update(_ context.Context, vehicle *domain.RegisteredVehicle) (*domain.RegisteredVehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.vehicles[vehicle.LicensePlate]; !ok {
		return nil, repository.ErrNotFound
	}
	stored := *vehicle
	stored.UpdatedAt = time.Now().UTC()
	r.vehicles[stored.LicensePlate] = &stored
	out := stored
	return &out, nil
}

func (r *fakeVehicleRepo) Delete(_ context.Context, plate string) error {
	r.mu.Lock()
	if _, ok := r.vehicles[plate]; !ok {
		r.mu.Unlock()
		return repository.ErrNotFound
	}
	delete(r.vehicles, plate)
	r.mu.Unlock()

	if r.records != nil {
		r.records.dropByPlate(plate)
	}
	return nil
}

type fakeRecordRepo struct {
	mu      sync.Mutex
	nextID  int
	records []*domain.ParkingRecord
}

func newFakeRecordRepo() *fakeRecordRepo {
	return &fakeRecordRepo{}
}

func (r *fakeRecordRepo) Create(_ context.Context, record *domain.ParkingRecord) (*domain.ParkingRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.records {
		if existing.LicensePlate == record.LicensePlate && !existing.ExitTime.Valid {
			return nil, repository.ErrDuplicateEntry
		}
	}
	r.nextID++
	stored := *record
	stored.ID = r.nextID
	stored.CreatedAt = time.Now().UTC()
	stored.UpdatedAt = stored.CreatedAt
	r.records = append(r.records, &stored)
	out := stored
	return &out, nil
}

func (r *fakeRecordRepo) FindByID(_ context.Context, id int) (*domain.ParkingRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, record := range r.records {
		if record.ID == id {
			out := *record
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeRecordRepo) FindOpenByPlate(_ context.Context, plate string) (*domain.ParkingRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, record := range r.records {
		if record.LicensePlate == plate && !record.ExitTime.Valid {
			out := *record
			return &out, nil
		}
	}
	return nil, repository.ErrNoOpenRecord
}

func (r *fakeRecordRepo) FindAll(_ context.Context) ([]domain.ParkingRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.ParkingRecord, 0, len(r.records))
	for i := len(r.records) - 1; i >= 0; i-- {
		out = append(out, *r.records[i])
	}
	return out, nil
}

func (r *fakeRecordRepo) FindOpen(_ context.Context) ([]domain.ParkingRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ParkingRecord
	for i := len(r.records) - 1; i >= 0; i-- {
		if !r.records[i].ExitTime.Valid {
			out = append(out, *r.records[i])
		}
	}
	return out, nil
}

func (r *fakeRecordRepo) SetExitTime(_ context.Context, id int, exitTime time.Time) (*domain.ParkingRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, record := range r.records {
		if record.ID != id {
			continue
		}
		if record.ExitTime.Valid {
			return nil, repository.ErrRecordClosed
		}
		record.ExitTime.SetValid(exitTime)
		record.UpdatedAt = time.Now().UTC()
		out := *record
		return &out, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeRecordRepo) DeleteByPlate(_ context.Context, plate string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.records[:0]
	removed := 0
	for _, record := range r.records {
		if record.LicensePlate == plate {
			removed++
			continue
		}
		kept = append(kept, record)
	}
	r.records = kept
	if removed == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *fakeRecordRepo) dropByPlate(plate string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.records[:0]
	for _, record := range r.records {
		if record.LicensePlate != plate {
			kept = append(kept, record)
		}
	}
	r.records = kept
}

type fakeImageStore struct {
	mu    sync.Mutex
	saved map[string]string // plate -> ref
}

func newFakeImageStore() *fakeImageStore {
	return &fakeImageStore{saved: make(map[string]string)}
}

func (s *fakeImageStore) Save(plate, ext string, _ io.Reader) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ref := fmt.Sprintf("/uploads/vehicles/%s%s", plate, ext)
	s.saved[plate] = ref
	return ref, nil
}

func (s *fakeImageStore) Remove(ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for plate, stored := range s.saved {
		if stored == ref {
			delete(s.saved, plate)
		}
	}
	return nil
}

func (s *fakeImageStore) Find(plate string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ref, ok := s.saved[plate]
	if !ok {
		return "", storage.ErrAssetNotFound
	}
	return ref, nil
}

type fakeReader struct {
	candidates []domain.PlateCandidate
	err        error
	// block makes ReadPlates wait for the context deadline before
	// returning, to exercise the timeout path.
	block bool
}

func (r *fakeReader) ReadPlates(ctx context.Context, _ []byte) ([]domain.PlateCandidate, error) {
	if r.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if r.err != nil {
		return nil, r.err
	}
	return r.candidates, nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []domain.ParkingNotification
}

func (n *fakeNotifier) NotifyParkingEvent(event domain.ParkingNotification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *fakeNotifier) Events() []domain.ParkingNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]domain.ParkingNotification, len(n.events))
	copy(out, n.events)
	return out
}
