package request

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/tablewise/restaurant-api/internal/domain"
)

const (
	timeLayout     = "15:04"
	scheduleLayout = domain.DateLayout + " " + timeLayout
)

type TableRequest struct {
	Number   int    `json:"number"`
	Capacity int    `json:"capacity"`
	Location string `json:"location"`
}

func (req *TableRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Number, validation.Required, validation.Min(1)),
		validation.Field(&req.Capacity, validation.Required, validation.Min(1)),
		validation.Field(&req.Location, validation.Length(0, 50)),
	)
}

func (req *TableRequest) Table() domain.Table {
	return domain.Table{
		Number:   req.Number,
		Capacity: req.Capacity,
		Location: req.Location,
	}
}

type UpdateTableRequest struct {
	Number   *int    `json:"number"`
	Capacity *int    `json:"capacity"`
	Location *string `json:"location"`
}

func (req *UpdateTableRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Number, validation.NilOrNotEmpty, validation.Min(1)),
		validation.Field(&req.Capacity, validation.NilOrNotEmpty, validation.Min(1)),
		validation.Field(&req.Location, validation.Length(0, 50)),
	)
}

func (req *UpdateTableRequest) Update() domain.TableUpdate {
	return domain.TableUpdate{
		Number:   req.Number,
		Capacity: req.Capacity,
		Location: req.Location,
	}
}

func reservationStatuses() []any {
	return []any{
		string(domain.ReservationPending),
		string(domain.ReservationConfirmed),
		string(domain.ReservationSeated),
		string(domain.ReservationCompleted),
		string(domain.ReservationCancelled),
	}
}

// ParseSchedule combines a YYYY-MM-DD date and an HH:MM time in loc.
func ParseSchedule(date, clock string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(scheduleLayout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date/time %q %q, expected YYYY-MM-DD and HH:MM", date, clock)
	}
	return t, nil
}

type ReservationRequest struct {
	TableID       uint   `json:"table_id"`
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	CustomerEmail string `json:"customer_email"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	PartySize     int    `json:"party_size"`
	Status        string `json:"status"`
	Notes         string `json:"notes"`
}

func (req *ReservationRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.TableID, validation.Required),
		validation.Field(&req.CustomerName, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.CustomerPhone, validation.Length(0, 20)),
		validation.Field(&req.CustomerEmail, is.Email),
		validation.Field(&req.Date, validation.Required, validation.Date(domain.DateLayout)),
		validation.Field(&req.Time, validation.Required, validation.Date(timeLayout)),
		validation.Field(&req.PartySize, validation.Required, validation.Min(1)),
		validation.Field(&req.Status, validation.In(reservationStatuses()...)),
	)
}

func (req *ReservationRequest) Reservation(loc *time.Location) (domain.Reservation, error) {
	at, err := ParseSchedule(req.Date, req.Time, loc)
	if err != nil {
		return domain.Reservation{}, err
	}

	return domain.Reservation{
		TableID:       req.TableID,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		CustomerEmail: req.CustomerEmail,
		ScheduledAt:   at,
		PartySize:     req.PartySize,
		Status:        domain.ReservationStatus(req.Status),
		Notes:         req.Notes,
	}, nil
}

type UpdateReservationRequest struct {
	TableID       *uint   `json:"table_id"`
	CustomerName  *string `json:"customer_name"`
	CustomerPhone *string `json:"customer_phone"`
	CustomerEmail *string `json:"customer_email"`
	Date          *string `json:"date"`
	Time          *string `json:"time"`
	PartySize     *int    `json:"party_size"`
	Status        *string `json:"status"`
	Notes         *string `json:"notes"`
}

func (req *UpdateReservationRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.TableID, validation.NilOrNotEmpty),
		validation.Field(&req.CustomerName, validation.NilOrNotEmpty, validation.Length(1, 100)),
		validation.Field(&req.CustomerPhone, validation.Length(0, 20)),
		validation.Field(&req.CustomerEmail, is.Email),
		validation.Field(&req.Date, validation.NilOrNotEmpty, validation.Date(domain.DateLayout)),
		validation.Field(&req.Time, validation.NilOrNotEmpty, validation.Date(timeLayout)),
		validation.Field(&req.PartySize, validation.NilOrNotEmpty, validation.Min(1)),
		validation.Field(&req.Status, validation.NilOrNotEmpty, validation.In(reservationStatuses()...)),
	)
}

// Reschedules reports whether the request moves the reservation in time.
func (req *UpdateReservationRequest) Reschedules() bool {
	return req.Date != nil || req.Time != nil
}

// Update builds the partial update. current is the stored schedule, used to
// fill in whichever of date and time the request leaves out.
func (req *UpdateReservationRequest) Update(current time.Time, loc *time.Location) (domain.ReservationUpdate, error) {
	update := domain.ReservationUpdate{
		TableID:       req.TableID,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		CustomerEmail: req.CustomerEmail,
		PartySize:     req.PartySize,
		Notes:         req.Notes,
	}
	if req.Status != nil {
		status := domain.ReservationStatus(*req.Status)
		update.Status = &status
	}

	if req.Reschedules() {
		local := current.In(loc)
		date, clock := local.Format(domain.DateLayout), local.Format(timeLayout)
		if req.Date != nil {
			date = *req.Date
		}
		if req.Time != nil {
			clock = *req.Time
		}
		at, err := ParseSchedule(date, clock, loc)
		if err != nil {
			return domain.ReservationUpdate{}, err
		}
		update.ScheduledAt = &at
	}

	return update, nil
}
