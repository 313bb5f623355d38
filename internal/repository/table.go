package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/tablewise/restaurant-api/internal/domain"
	"github.com/tablewise/restaurant-api/internal/repository/dao"
)

var (
	ErrTableNotFound       = dao.ErrTableNotFound
	ErrTableExists         = dao.ErrTableExists
	ErrReservationNotFound = dao.ErrReservationNotFound
)

type TableDAO interface {
	InsertTable(ctx context.Context, table dao.Table) (dao.Table, error)
	FindTableByID(ctx context.Context, id uint) (dao.Table, error)
	FindTables(ctx context.Context, filter domain.TableFilter) ([]dao.Table, error)
	UpdateTable(ctx context.Context, table dao.Table) (dao.Table, error)
	DeleteTable(ctx context.Context, id uint) error

	SaveReservation(ctx context.Context, r dao.Reservation, window time.Duration, check dao.ReservationCheck) (dao.Reservation, error)
	FindReservationByID(ctx context.Context, id uint) (dao.Reservation, error)
	FindReservations(ctx context.Context, filter domain.ReservationFilter) ([]dao.Reservation, error)
	DeleteReservation(ctx context.Context, id uint) error
}

// ReservationCheck is the domain form of dao.ReservationCheck.
type ReservationCheck func(table domain.Table, previous *domain.Reservation) (checkOverlap bool, err error)

type TableRepository struct {
	dao TableDAO
}

func NewTableRepository(dao TableDAO) *TableRepository {
	return &TableRepository{
		dao: dao,
	}
}

func (r *TableRepository) CreateTable(ctx context.Context, table domain.Table) (domain.Table, error) {
	created, err := r.dao.InsertTable(ctx, tableToDAO(table))
	if err != nil {
		return domain.Table{}, fmt.Errorf("r.dao.InsertTable -> %w", err)
	}

	return tableToDomain(created), nil
}

func (r *TableRepository) FindTableByID(ctx context.Context, id uint) (domain.Table, error) {
	found, err := r.dao.FindTableByID(ctx, id)
	if err != nil {
		return domain.Table{}, fmt.Errorf("r.dao.FindTableByID -> %w", err)
	}

	return tableToDomain(found), nil
}

func (r *TableRepository) FindTables(ctx context.Context, filter domain.TableFilter) ([]domain.Table, error) {
	found, err := r.dao.FindTables(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindTables -> %w", err)
	}

	tables := make([]domain.Table, 0, len(found))
	for _, t := range found {
		tables = append(tables, tableToDomain(t))
	}

	return tables, nil
}

func (r *TableRepository) UpdateTable(ctx context.Context, table domain.Table) (domain.Table, error) {
	updated, err := r.dao.UpdateTable(ctx, tableToDAO(table))
	if err != nil {
		return domain.Table{}, fmt.Errorf("r.dao.UpdateTable -> %w", err)
	}

	return tableToDomain(updated), nil
}

func (r *TableRepository) DeleteTable(ctx context.Context, id uint) error {
	if err := r.dao.DeleteTable(ctx, id); err != nil {
		return fmt.Errorf("r.dao.DeleteTable -> %w", err)
	}

	return nil
}

func (r *TableRepository) SaveReservation(ctx context.Context, reservation domain.Reservation, window time.Duration, check ReservationCheck) (domain.Reservation, error) {
	saved, err := r.dao.SaveReservation(ctx, reservationToDAO(reservation), window,
		func(table dao.Table, previous *dao.Reservation) (bool, error) {
			var prev *domain.Reservation
			if previous != nil {
				p := reservationToDomain(*previous)
				prev = &p
			}
			return check(tableToDomain(table), prev)
		})
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("r.dao.SaveReservation -> %w", err)
	}

	return reservationToDomain(saved), nil
}

func (r *TableRepository) FindReservationByID(ctx context.Context, id uint) (domain.Reservation, error) {
	found, err := r.dao.FindReservationByID(ctx, id)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("r.dao.FindReservationByID -> %w", err)
	}

	return reservationToDomain(found), nil
}

func (r *TableRepository) FindReservations(ctx context.Context, filter domain.ReservationFilter) ([]domain.Reservation, error) {
	found, err := r.dao.FindReservations(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindReservations -> %w", err)
	}

	reservations := make([]domain.Reservation, 0, len(found))
	for _, res := range found {
		reservations = append(reservations, reservationToDomain(res))
	}

	return reservations, nil
}

func (r *TableRepository) DeleteReservation(ctx context.Context, id uint) error {
	if err := r.dao.DeleteReservation(ctx, id); err != nil {
		return fmt.Errorf("r.dao.DeleteReservation -> %w", err)
	}

	return nil
}

func tableToDAO(t domain.Table) dao.Table {
	return dao.Table{
		ID:       t.ID,
		Number:   t.Number,
		Capacity: t.Capacity,
		Location: t.Location,
	}
}

func tableToDomain(t dao.Table) domain.Table {
	return domain.Table{
		ID:       t.ID,
		Number:   t.Number,
		Capacity: t.Capacity,
		Location: t.Location,
	}
}

func reservationToDAO(r domain.Reservation) dao.Reservation {
	return dao.Reservation{
		ID:            r.ID,
		TableID:       r.TableID,
		CustomerName:  r.CustomerName,
		CustomerPhone: r.CustomerPhone,
		CustomerEmail: r.CustomerEmail,
		ScheduledAt:   r.ScheduledAt.UTC(),
		PartySize:     r.PartySize,
		Status:        string(r.Status),
		Notes:         r.Notes,
	}
}

func reservationToDomain(r dao.Reservation) domain.Reservation {
	reservation := domain.Reservation{
		ID:            r.ID,
		TableID:       r.TableID,
		CustomerName:  r.CustomerName,
		CustomerPhone: r.CustomerPhone,
		CustomerEmail: r.CustomerEmail,
		ScheduledAt:   r.ScheduledAt.UTC(),
		PartySize:     r.PartySize,
		Status:        domain.ReservationStatus(r.Status),
		Notes:         r.Notes,
		CreatedAt:     r.CreatedAt,
	}
	if r.Table != nil {
		table := tableToDomain(*r.Table)
		reservation.Table = &table
	}

	return reservation
}
