package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablewise/restaurant-api/internal/domain"
	"github.com/tablewise/restaurant-api/internal/metrics"
	"github.com/tablewise/restaurant-api/internal/repository"
)

// fakeTableRepo keeps one table and its reservations in memory and applies
// the overlap rule the way the store does.
type fakeTableRepo struct {
	table        domain.Table
	reservations map[uint]domain.Reservation
	nextID       uint
	lastWindow   time.Duration
}

func newFakeTableRepo(capacity int) *fakeTableRepo {
	return &fakeTableRepo{
		table:        domain.Table{ID: 1, Number: 1, Capacity: capacity},
		reservations: map[uint]domain.Reservation{},
	}
}

func (f *fakeTableRepo) CreateTable(_ context.Context, table domain.Table) (domain.Table, error) {
	return table, nil
}

func (f *fakeTableRepo) FindTableByID(_ context.Context, id uint) (domain.Table, error) {
	if id != f.table.ID {
		return domain.Table{}, ErrTableNotFound
	}
	return f.table, nil
}

func (f *fakeTableRepo) FindTables(context.Context, domain.TableFilter) ([]domain.Table, error) {
	return []domain.Table{f.table}, nil
}

func (f *fakeTableRepo) UpdateTable(_ context.Context, table domain.Table) (domain.Table, error) {
	f.table = table
	return table, nil
}

func (f *fakeTableRepo) DeleteTable(context.Context, uint) error {
	return nil
}

func (f *fakeTableRepo) SaveReservation(_ context.Context, r domain.Reservation, window time.Duration, check repository.ReservationCheck) (domain.Reservation, error) {
	f.lastWindow = window
	if r.TableID != f.table.ID {
		return domain.Reservation{}, ErrTableNotFound
	}

	var previous *domain.Reservation
	if r.ID != 0 {
		p, ok := f.reservations[r.ID]
		if !ok {
			return domain.Reservation{}, ErrReservationNotFound
		}
		previous = &p
	}

	overlap, err := check(f.table, previous)
	if err != nil {
		return domain.Reservation{}, err
	}
	if overlap {
		for id, other := range f.reservations {
			if id == r.ID || !other.Blocks() {
				continue
			}
			if other.ScheduledAt.After(r.ScheduledAt.Add(-window)) && other.ScheduledAt.Before(r.ScheduledAt.Add(window)) {
				return domain.Reservation{}, domain.ErrReservationOverlap
			}
		}
	}

	if r.ID == 0 {
		f.nextID++
		r.ID = f.nextID
	}
	f.reservations[r.ID] = r
	return r, nil
}

func (f *fakeTableRepo) FindReservationByID(_ context.Context, id uint) (domain.Reservation, error) {
	r, ok := f.reservations[id]
	if !ok {
		return domain.Reservation{}, ErrReservationNotFound
	}
	return r, nil
}

func (f *fakeTableRepo) FindReservations(context.Context, domain.ReservationFilter) ([]domain.Reservation, error) {
	return nil, nil
}

func (f *fakeTableRepo) DeleteReservation(context.Context, uint) error {
	return nil
}

type fixedWindow time.Duration

func (w fixedWindow) Window() time.Duration {
	return time.Duration(w)
}

var dinner = time.Date(2026, 6, 1, 19, 0, 0, 0, time.UTC)

func reservationAt(at time.Time, party int) domain.Reservation {
	return domain.Reservation{TableID: 1, CustomerName: "Dupont", ScheduledAt: at, PartySize: party}
}

func TestReservationService_CreateReservation(t *testing.T) {
	ctx := context.Background()
	repo := newFakeTableRepo(4)
	svc := NewReservationService(repo, fixedWindow(2*time.Hour), metrics.New())

	first, err := svc.CreateReservation(ctx, reservationAt(dinner, 2))
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationPending, first.Status)
	assert.Equal(t, 2*time.Hour, repo.lastWindow)

	_, err = svc.CreateReservation(ctx, reservationAt(dinner.Add(90*time.Minute), 2))
	assert.ErrorIs(t, err, domain.ErrReservationOverlap)

	_, err = svc.CreateReservation(ctx, reservationAt(dinner.Add(2*time.Hour), 2))
	assert.NoError(t, err)

	_, err = svc.CreateReservation(ctx, reservationAt(dinner.Add(-5*time.Hour), 6))
	assert.ErrorIs(t, err, domain.ErrPartyExceedsCapacity)

	_, err = svc.CreateReservation(ctx, reservationAt(dinner.Add(-5*time.Hour), 0))
	assert.ErrorIs(t, err, domain.ErrPartySize)

	r := reservationAt(dinner.Add(-5*time.Hour), 2)
	r.CustomerName = ""
	_, err = svc.CreateReservation(ctx, r)
	assert.ErrorIs(t, err, ErrCustomerNameMissing)

	cancelled := reservationAt(dinner.Add(30*time.Minute), 2)
	cancelled.Status = domain.ReservationCancelled
	_, err = svc.CreateReservation(ctx, cancelled)
	assert.NoError(t, err, "cancelled reservations do not take part in overlap checks")
}

func TestReservationService_UpdateReservation(t *testing.T) {
	ctx := context.Background()
	repo := newFakeTableRepo(4)
	window := fixedWindow(2 * time.Hour)
	svc := NewReservationService(repo, window, metrics.New())

	early, err := svc.CreateReservation(ctx, reservationAt(dinner, 2))
	require.NoError(t, err)
	late, err := svc.CreateReservation(ctx, reservationAt(dinner.Add(3*time.Hour), 2))
	require.NoError(t, err)

	moved := dinner.Add(4 * time.Hour)
	_, err = svc.UpdateReservation(ctx, early.ID, domain.ReservationUpdate{ScheduledAt: &moved})
	assert.ErrorIs(t, err, domain.ErrReservationOverlap)

	confirmed := domain.ReservationConfirmed
	updated, err := svc.UpdateReservation(ctx, late.ID, domain.ReservationUpdate{Status: &confirmed})
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationConfirmed, updated.Status)

	pending := domain.ReservationPending
	_, err = svc.UpdateReservation(ctx, late.ID, domain.ReservationUpdate{Status: &pending})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	cancelled := domain.ReservationCancelled
	_, err = svc.UpdateReservation(ctx, early.ID, domain.ReservationUpdate{Status: &cancelled})
	require.NoError(t, err)
	_, err = svc.UpdateReservation(ctx, early.ID, domain.ReservationUpdate{Status: &confirmed})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	rescheduled := dinner.Add(-6 * time.Hour)
	_, err = svc.UpdateReservation(ctx, early.ID, domain.ReservationUpdate{ScheduledAt: &rescheduled})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = svc.UpdateReservation(ctx, early.ID, domain.ReservationUpdate{Status: &cancelled})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	stored, err := svc.GetReservation(ctx, early.ID)
	require.NoError(t, err)
	assert.True(t, dinner.Equal(stored.ScheduledAt))

	party := 9
	_, err = svc.UpdateReservation(ctx, late.ID, domain.ReservationUpdate{PartySize: &party})
	assert.ErrorIs(t, err, domain.ErrPartyExceedsCapacity)

	_, err = svc.UpdateReservation(ctx, 99, domain.ReservationUpdate{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
