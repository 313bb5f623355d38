package domain

import "time"

var (
	ErrTableNumber              = NewError(ErrInvalidArgument, "table number must be greater than zero")
	ErrTableCapacity            = NewError(ErrInvalidArgument, "capacity must be greater than zero")
	ErrPartySize                = NewError(ErrInvalidArgument, "party size must be greater than zero")
	ErrPartyExceedsCapacity     = NewError(ErrInvalidArgument, "party size exceeds table capacity")
	ErrReservationOverlap       = NewError(ErrConflict, "table already reserved around that time")
	ErrUnknownReservationStatus = NewError(ErrInvalidArgument, "unknown reservation status")
)

type Table struct {
	ID       uint   `json:"id"`
	Number   int    `json:"number"`
	Capacity int    `json:"capacity"`
	Location string `json:"location"`
}

func (t Table) Validate() error {
	if t.Number <= 0 {
		return ErrTableNumber
	}
	if t.Capacity <= 0 {
		return ErrTableCapacity
	}
	return nil
}

type TableUpdate struct {
	Number   *int
	Capacity *int
	Location *string
}

func (u TableUpdate) Apply(t Table) Table {
	if u.Number != nil {
		t.Number = *u.Number
	}
	if u.Capacity != nil {
		t.Capacity = *u.Capacity
	}
	if u.Location != nil {
		t.Location = *u.Location
	}
	return t
}

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationSeated    ReservationStatus = "seated"
	ReservationCompleted ReservationStatus = "completed"
	ReservationCancelled ReservationStatus = "cancelled"
)

var reservationStatusRank = map[ReservationStatus]int{
	ReservationPending:   0,
	ReservationConfirmed: 1,
	ReservationSeated:    2,
	ReservationCompleted: 3,
}

func (s ReservationStatus) Valid() bool {
	_, ok := reservationStatusRank[s]
	return ok || s == ReservationCancelled
}

func (s ReservationStatus) IsTerminal() bool {
	return s == ReservationCompleted || s == ReservationCancelled
}

func (s ReservationStatus) CanTransitionTo(next ReservationStatus) error {
	if !next.Valid() {
		return ErrUnknownReservationStatus
	}
	if s == next {
		return nil
	}
	if s.IsTerminal() {
		return Errorf(ErrInvalidTransition, "reservation is %s and can no longer change", s)
	}
	if next == ReservationCancelled {
		return nil
	}
	if reservationStatusRank[next] < reservationStatusRank[s] {
		return Errorf(ErrInvalidTransition, "cannot move reservation from %s back to %s", s, next)
	}
	return nil
}

type Reservation struct {
	ID            uint
	TableID       uint
	Table         *Table
	CustomerName  string
	CustomerPhone string
	CustomerEmail string
	ScheduledAt   time.Time
	PartySize     int
	Status        ReservationStatus
	Notes         string
	CreatedAt     time.Time
}

// IsActive reports whether the reservation is scheduled at or after now.
func (r Reservation) IsActive(now time.Time) bool {
	return !r.ScheduledAt.Before(now)
}

// Blocks reports whether the reservation takes part in overlap checks.
func (r Reservation) Blocks() bool {
	return r.Status != ReservationCancelled
}

// NeedsOverlapCheck reports whether saving r over previous (nil on create)
// must be checked against the table's other reservations: on create, when
// the table or time moves, and when it becomes confirmed.
func (r Reservation) NeedsOverlapCheck(previous *Reservation) bool {
	if !r.Blocks() {
		return false
	}
	if previous == nil {
		return true
	}
	if r.TableID != previous.TableID || !r.ScheduledAt.Equal(previous.ScheduledAt) {
		return true
	}
	return r.Status == ReservationConfirmed && previous.Status != ReservationConfirmed
}

// ReservationUpdate carries a partial reservation update. Nil means unchanged.
type ReservationUpdate struct {
	TableID       *uint
	CustomerName  *string
	CustomerPhone *string
	CustomerEmail *string
	ScheduledAt   *time.Time
	PartySize     *int
	Status        *ReservationStatus
	Notes         *string
}

func (u ReservationUpdate) Apply(r Reservation) Reservation {
	if u.TableID != nil {
		r.TableID = *u.TableID
		r.Table = nil
	}
	if u.CustomerName != nil {
		r.CustomerName = *u.CustomerName
	}
	if u.CustomerPhone != nil {
		r.CustomerPhone = *u.CustomerPhone
	}
	if u.CustomerEmail != nil {
		r.CustomerEmail = *u.CustomerEmail
	}
	if u.ScheduledAt != nil {
		r.ScheduledAt = *u.ScheduledAt
	}
	if u.PartySize != nil {
		r.PartySize = *u.PartySize
	}
	if u.Status != nil {
		r.Status = *u.Status
	}
	if u.Notes != nil {
		r.Notes = *u.Notes
	}
	return r
}
