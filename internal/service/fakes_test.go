package service

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/staff-admin/internal/domain"
	"github.com/spec-kit/staff-admin/internal/repository"
)

type fakeAccounts struct {
	mu   sync.Mutex
	byID map[string]domain.Account
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{byID: map[string]domain.Account{}}
}

func (f *fakeAccounts) Create(_ context.Context, account *domain.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[account.ID] = *account
	return nil
}

func (f *fakeAccounts) UpdatePassword(_ context.Context, id, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	account.PasswordHash = hash
	f.byID[id] = account
	return nil
}

func (f *fakeAccounts) GetByUsername(_ context.Context, username string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, account := range f.byID {
		if account.Username == username {
			return &account, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeUnits struct {
	units []domain.Unit
}

func (f *fakeUnits) List(context.Context) ([]domain.Unit, error) {
	return f.units, nil
}

func (f *fakeUnits) Exists(_ context.Context, id string) (bool, error) {
	for _, u := range f.units {
		if u.ID == id {
			return true, nil
		}
	}
	return false, nil
}

type fakeStaff struct {
	mu      sync.Mutex
	records map[string]domain.StaffRecord
	order   []string
	// writeErr is returned by Create and Update when set.
	writeErr error
}

func newFakeStaff() *fakeStaff {
	return &fakeStaff{records: map[string]domain.StaffRecord{}}
}

func (f *fakeStaff) Create(_ context.Context, record *domain.StaffRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.records[record.ID] = *record
	f.order = append(f.order, record.ID)
	return nil
}

func (f *fakeStaff) Update(_ context.Context, record *domain.StaffRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	if _, ok := f.records[record.ID]; !ok {
		return pgx.ErrNoRows
	}
	f.records[record.ID] = *record
	return nil
}

func (f *fakeStaff) GetByID(_ context.Context, id string) (*domain.StaffRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &record, nil
}

func (f *fakeStaff) MSCBTaken(_ context.Context, mscb, exceptID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, record := range f.records {
		if record.MSCB == mscb && id != exceptID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStaff) List(_ context.Context, filter repository.StaffFilter) ([]domain.StaffRecord, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, 0, len(f.order))
	for i := len(f.order) - 1; i >= 0; i-- {
		ids = append(ids, f.order[i])
	}
	result := []domain.StaffRecord{}
	for i := filter.Offset; i < len(ids) && len(result) < filter.Limit; i++ {
		result = append(result, f.records[ids[i]])
	}
	return result, len(ids), nil
}
