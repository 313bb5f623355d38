package response

import (
	"time"

	"github.com/tablewise/restaurant-api/internal/domain"
)

type LoginResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

type Status struct {
	Status string `json:"status"`
}

type StockTransaction struct {
	Transaction domain.StockTransaction `json:"transaction"`
	Stock       domain.Stock            `json:"stock"`
}

type Reservation struct {
	ID            uint                     `json:"id"`
	TableID       uint                     `json:"table_id"`
	Table         *domain.Table            `json:"table,omitempty"`
	CustomerName  string                   `json:"customer_name"`
	CustomerPhone string                   `json:"customer_phone"`
	CustomerEmail string                   `json:"customer_email"`
	Date          string                   `json:"date"`
	Time          string                   `json:"time"`
	PartySize     int                      `json:"party_size"`
	Status        domain.ReservationStatus `json:"status"`
	Notes         string                   `json:"notes"`
	CreatedAt     time.Time                `json:"created_at"`
	IsActive      bool                     `json:"is_active"`
}

// NewReservation renders date and time in the restaurant's local zone.
func NewReservation(r domain.Reservation, loc *time.Location, now time.Time) Reservation {
	at := r.ScheduledAt.In(loc)

	return Reservation{
		ID:            r.ID,
		TableID:       r.TableID,
		Table:         r.Table,
		CustomerName:  r.CustomerName,
		CustomerPhone: r.CustomerPhone,
		CustomerEmail: r.CustomerEmail,
		Date:          at.Format(domain.DateLayout),
		Time:          at.Format("15:04"),
		PartySize:     r.PartySize,
		Status:        r.Status,
		Notes:         r.Notes,
		CreatedAt:     r.CreatedAt,
		IsActive:      r.IsActive(now),
	}
}

func NewReservations(rs []domain.Reservation, loc *time.Location, now time.Time) []Reservation {
	views := make([]Reservation, 0, len(rs))
	for _, r := range rs {
		views = append(views, NewReservation(r, loc, now))
	}

	return views
}
