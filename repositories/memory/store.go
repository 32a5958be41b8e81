// Package memory is an in-process store used for local development and tests.
// Every transaction holds one store-wide lock, which also serializes slot locks.
package memory

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Dosada05/slot-arena/models"
	"github.com/Dosada05/slot-arena/repositories"
)

type txKey struct{}

type state struct {
	slots  map[models.TournamentKey]*models.TournamentSlot
	regs   map[string]*models.Registration
	admins map[string]*models.Admin
}

func (s state) clone() state {
	return state{
		slots:  maps.Clone(s.slots),
		regs:   maps.Clone(s.regs),
		admins: maps.Clone(s.admins),
	}
}

type DB struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	data state
}

// NewStore returns a Store whose repositories share one in-memory database.
func NewStore() *repositories.Store {
	db := &DB{data: state{
		slots:  map[models.TournamentKey]*models.TournamentSlot{},
		regs:   map[string]*models.Registration{},
		admins: map[string]*models.Admin{},
	}}
	return &repositories.Store{
		Tournaments:   &tournamentRepo{db: db},
		Registrations: &registrationRepo{db: db},
		Admins:        &adminRepo{db: db},
		Tx:            db,
		Health:        db,
	}
}

func inTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(bool)
	return ok
}

// WithinTransaction restores the pre-transaction state when fn fails.
// Stored values are replaced, never mutated in place, so a shallow map copy is a full snapshot.
func (db *DB) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if inTx(ctx) {
		return fn(ctx)
	}

	db.txMu.Lock()
	defer db.txMu.Unlock()

	db.mu.RLock()
	snapshot := db.data.clone()
	db.mu.RUnlock()

	defer func() {
		if p := recover(); p != nil {
			db.restore(snapshot)
			panic(p)
		}
		if err != nil {
			db.restore(snapshot)
		}
	}()

	return fn(context.WithValue(ctx, txKey{}, true))
}

func (db *DB) restore(s state) {
	db.mu.Lock()
	db.data = s
	db.mu.Unlock()
}

func (db *DB) Ping(context.Context) error {
	return nil
}

// write applies fn under the data lock. Writes outside a transaction also take
// the transaction lock so a concurrent rollback cannot drop them.
func (db *DB) write(ctx context.Context, fn func(d *state) error) error {
	if !inTx(ctx) {
		db.txMu.Lock()
		defer db.txMu.Unlock()
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	return fn(&db.data)
}

func (db *DB) read(fn func(d *state) error) error {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return fn(&db.data)
}

func copySlot(s *models.TournamentSlot) *models.TournamentSlot {
	c := *s
	return &c
}

func copyRegistration(r *models.Registration) *models.Registration {
	c := *r
	c.Players = slices.Clone(r.Players)
	if c.Players == nil {
		c.Players = []models.Player{}
	}
	return &c
}

func copyAdmin(a *models.Admin) *models.Admin {
	c := *a
	c.Permissions = slices.Clone(a.Permissions)
	return &c
}

type tournamentRepo struct {
	db *DB
}

func (r *tournamentRepo) Create(ctx context.Context, s *models.TournamentSlot) error {
	return r.db.write(ctx, func(d *state) error {
		if _, ok := d.slots[s.Key()]; ok {
			return repositories.ErrTournamentExists
		}
		d.slots[s.Key()] = copySlot(s)
		return nil
	})
}

func (r *tournamentRepo) GetByKey(_ context.Context, key models.TournamentKey) (*models.TournamentSlot, error) {
	var out *models.TournamentSlot
	err := r.db.read(func(d *state) error {
		s, ok := d.slots[key]
		if !ok {
			return repositories.ErrTournamentNotFound
		}
		out = copySlot(s)
		return nil
	})
	return out, err
}

func (r *tournamentRepo) Lock(ctx context.Context, key models.TournamentKey) (*models.TournamentSlot, error) {
	if !inTx(ctx) {
		return nil, repositories.ErrLockOutsideTx
	}
	return r.GetByKey(ctx, key)
}

func (r *tournamentRepo) List(_ context.Context, gameType *models.GameType) ([]*models.TournamentSlot, error) {
	out := make([]*models.TournamentSlot, 0, 6)
	_ = r.db.read(func(d *state) error {
		for _, s := range d.slots {
			if gameType != nil && s.GameType != *gameType {
				continue
			}
			out = append(out, copySlot(s))
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *models.TournamentSlot) int {
		if c := strings.Compare(string(a.GameType), string(b.GameType)); c != 0 {
			return c
		}
		return slices.Index(models.TournamentTypes, a.TournamentType) - slices.Index(models.TournamentTypes, b.TournamentType)
	})
	return out, nil
}

func (r *tournamentRepo) Save(ctx context.Context, s *models.TournamentSlot) error {
	return r.db.write(ctx, func(d *state) error {
		if _, ok := d.slots[s.Key()]; !ok {
			return repositories.ErrTournamentNotFound
		}
		s.UpdatedAt = time.Now().UTC()
		d.slots[s.Key()] = copySlot(s)
		return nil
	})
}

func (r *tournamentRepo) SaveCounters(ctx context.Context, s *models.TournamentSlot) error {
	return r.db.write(ctx, func(d *state) error {
		stored, ok := d.slots[s.Key()]
		if !ok {
			return repositories.ErrTournamentNotFound
		}
		next := copySlot(stored)
		next.RegisteredCount = s.RegisteredCount
		next.ApprovedCount = s.ApprovedCount
		next.PendingCount = s.PendingCount
		next.RejectedCount = s.RejectedCount
		next.AvailableSlots = s.AvailableSlots
		next.IsFull = s.IsFull
		next.UpdatedAt = time.Now().UTC()
		s.UpdatedAt = next.UpdatedAt
		d.slots[s.Key()] = next
		return nil
	})
}

type registrationRepo struct {
	db *DB
}

func activeLeaderTaken(d *state, key models.TournamentKey, leaderGameID, exceptID string) bool {
	for _, reg := range d.regs {
		if reg.ID != exceptID && reg.Key() == key && reg.TeamLeader.GameID == leaderGameID && reg.Status.Active() {
			return true
		}
	}
	return false
}

func (r *registrationRepo) Create(ctx context.Context, reg *models.Registration) error {
	return r.db.write(ctx, func(d *state) error {
		if _, ok := d.slots[reg.Key()]; !ok {
			return repositories.ErrRegistrationTournamentInvalid
		}
		if _, ok := d.regs[reg.ID]; ok {
			return repositories.ErrRegistrationConflict
		}
		if reg.Status.Active() && activeLeaderTaken(d, reg.Key(), reg.TeamLeader.GameID, reg.ID) {
			return repositories.ErrRegistrationConflict
		}
		reg.UpdatedAt = reg.SubmittedAt
		d.regs[reg.ID] = copyRegistration(reg)
		return nil
	})
}

func (r *registrationRepo) GetByID(_ context.Context, id string) (*models.Registration, error) {
	var out *models.Registration
	err := r.db.read(func(d *state) error {
		reg, ok := d.regs[id]
		if !ok {
			return repositories.ErrRegistrationNotFound
		}
		out = copyRegistration(reg)
		return nil
	})
	return out, err
}

func (r *registrationRepo) FindActiveByLeader(_ context.Context, key models.TournamentKey, leaderGameID string) (*models.Registration, error) {
	var out *models.Registration
	err := r.db.read(func(d *state) error {
		for _, reg := range d.regs {
			if reg.Key() == key && reg.TeamLeader.GameID == leaderGameID && reg.Status.Active() {
				out = copyRegistration(reg)
				return nil
			}
		}
		return repositories.ErrRegistrationNotFound
	})
	return out, err
}

func (r *registrationRepo) List(_ context.Context, f models.RegistrationFilter) ([]*models.Registration, error) {
	out := make([]*models.Registration, 0)
	_ = r.db.read(func(d *state) error {
		for _, reg := range d.regs {
			if f.GameType != nil && reg.GameType != *f.GameType {
				continue
			}
			if f.TournamentType != nil && reg.TournamentType != *f.TournamentType {
				continue
			}
			if f.Status != nil && reg.Status != *f.Status {
				continue
			}
			out = append(out, copyRegistration(reg))
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *models.Registration) int {
		if c := b.SubmittedAt.Compare(a.SubmittedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (r *registrationRepo) UpdateDecision(ctx context.Context, reg *models.Registration) error {
	return r.db.write(ctx, func(d *state) error {
		stored, ok := d.regs[reg.ID]
		if !ok {
			return repositories.ErrRegistrationNotFound
		}
		if stored.Status != models.RegistrationPending {
			return repositories.ErrRegistrationNotPending
		}
		next := copyRegistration(stored)
		next.Status = reg.Status
		next.RejectionReason = reg.RejectionReason
		next.ApprovedAt = reg.ApprovedAt
		next.ApprovedBy = reg.ApprovedBy
		next.RejectedAt = reg.RejectedAt
		next.RejectedBy = reg.RejectedBy
		next.UpdatedAt = time.Now().UTC()
		reg.UpdatedAt = next.UpdatedAt
		d.regs[reg.ID] = next
		return nil
	})
}

func (r *registrationRepo) Delete(ctx context.Context, id string) error {
	return r.db.write(ctx, func(d *state) error {
		if _, ok := d.regs[id]; !ok {
			return repositories.ErrRegistrationNotFound
		}
		delete(d.regs, id)
		return nil
	})
}

func (r *registrationRepo) DeleteByTournament(ctx context.Context, key models.TournamentKey) (int64, error) {
	var deleted int64
	err := r.db.write(ctx, func(d *state) error {
		for id, reg := range d.regs {
			if reg.Key() == key {
				delete(d.regs, id)
				deleted++
			}
		}
		return nil
	})
	return deleted, err
}

func (r *registrationRepo) CountByStatus(_ context.Context, key models.TournamentKey) (models.StatusCounts, error) {
	var counts models.StatusCounts
	_ = r.db.read(func(d *state) error {
		for _, reg := range d.regs {
			if reg.Key() != key {
				continue
			}
			switch reg.Status {
			case models.RegistrationPending:
				counts.Pending++
			case models.RegistrationApproved:
				counts.Approved++
			case models.RegistrationRejected:
				counts.Rejected++
			}
		}
		return nil
	})
	return counts, nil
}

type adminRepo struct {
	db *DB
}

func (r *adminRepo) Create(ctx context.Context, admin *models.Admin) error {
	return r.db.write(ctx, func(d *state) error {
		for _, a := range d.admins {
			if a.ID == admin.ID || a.Username == admin.Username {
				return repositories.ErrAdminConflict
			}
			if a.Email != nil && admin.Email != nil && *a.Email == *admin.Email {
				return repositories.ErrAdminConflict
			}
		}
		d.admins[admin.ID] = copyAdmin(admin)
		return nil
	})
}

func (r *adminRepo) GetByID(_ context.Context, id string) (*models.Admin, error) {
	var out *models.Admin
	err := r.db.read(func(d *state) error {
		a, ok := d.admins[id]
		if !ok {
			return repositories.ErrAdminNotFound
		}
		out = copyAdmin(a)
		return nil
	})
	return out, err
}

func (r *adminRepo) GetByUsername(_ context.Context, username string) (*models.Admin, error) {
	var out *models.Admin
	err := r.db.read(func(d *state) error {
		for _, a := range d.admins {
			if a.Username == username {
				out = copyAdmin(a)
				return nil
			}
		}
		return repositories.ErrAdminNotFound
	})
	return out, err
}

func (r *adminRepo) Count(context.Context) (int, error) {
	var n int
	_ = r.db.read(func(d *state) error {
		n = len(d.admins)
		return nil
	})
	return n, nil
}

func (r *adminRepo) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.db.write(ctx, func(d *state) error {
		a, ok := d.admins[id]
		if !ok {
			return repositories.ErrAdminNotFound
		}
		next := copyAdmin(a)
		next.LastLogin = &at
		d.admins[id] = next
		return nil
	})
}
