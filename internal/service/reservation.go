package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tablewise/restaurant-api/internal/domain"
	"github.com/tablewise/restaurant-api/internal/metrics"
	"github.com/tablewise/restaurant-api/internal/repository"
)

var (
	ErrTableNotFound       = repository.ErrTableNotFound
	ErrReservationNotFound = repository.ErrReservationNotFound
	ErrCustomerNameMissing = domain.NewError(domain.ErrInvalidArgument, "customer name is required")
)

type TableRepository interface {
	CreateTable(ctx context.Context, table domain.Table) (domain.Table, error)
	FindTableByID(ctx context.Context, id uint) (domain.Table, error)
	FindTables(ctx context.Context, filter domain.TableFilter) ([]domain.Table, error)
	UpdateTable(ctx context.Context, table domain.Table) (domain.Table, error)
	DeleteTable(ctx context.Context, id uint) error

	SaveReservation(ctx context.Context, reservation domain.Reservation, window time.Duration, check repository.ReservationCheck) (domain.Reservation, error)
	FindReservationByID(ctx context.Context, id uint) (domain.Reservation, error)
	FindReservations(ctx context.Context, filter domain.ReservationFilter) ([]domain.Reservation, error)
	DeleteReservation(ctx context.Context, id uint) error
}

// OverlapWindow yields the current minimum spacing between reservations of
// one table. It may change while the server runs.
type OverlapWindow interface {
	Window() time.Duration
}

type ReservationService struct {
	repo    TableRepository
	window  OverlapWindow
	metrics *metrics.Metrics
}

func NewReservationService(repo TableRepository, window OverlapWindow, m *metrics.Metrics) *ReservationService {
	return &ReservationService{
		repo:    repo,
		window:  window,
		metrics: m,
	}
}

func (s *ReservationService) CreateTable(ctx context.Context, table domain.Table) (domain.Table, error) {
	if err := table.Validate(); err != nil {
		return domain.Table{}, err
	}

	created, err := s.repo.CreateTable(ctx, table)
	if err != nil {
		return domain.Table{}, fmt.Errorf("s.repo.CreateTable -> %w", err)
	}

	return created, nil
}

func (s *ReservationService) GetTable(ctx context.Context, id uint) (domain.Table, error) {
	table, err := s.repo.FindTableByID(ctx, id)
	if err != nil {
		return domain.Table{}, fmt.Errorf("s.repo.FindTableByID -> %w", err)
	}

	return table, nil
}

func (s *ReservationService) ListTables(ctx context.Context, filter domain.TableFilter) ([]domain.Table, error) {
	tables, err := s.repo.FindTables(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindTables -> %w", err)
	}

	return tables, nil
}

func (s *ReservationService) UpdateTable(ctx context.Context, id uint, update domain.TableUpdate) (domain.Table, error) {
	table, err := s.repo.FindTableByID(ctx, id)
	if err != nil {
		return domain.Table{}, fmt.Errorf("s.repo.FindTableByID -> %w", err)
	}

	table = update.Apply(table)
	if err = table.Validate(); err != nil {
		return domain.Table{}, err
	}

	updated, err := s.repo.UpdateTable(ctx, table)
	if err != nil {
		return domain.Table{}, fmt.Errorf("s.repo.UpdateTable -> %w", err)
	}

	return updated, nil
}

func (s *ReservationService) DeleteTable(ctx context.Context, id uint) error {
	if err := s.repo.DeleteTable(ctx, id); err != nil {
		return fmt.Errorf("s.repo.DeleteTable -> %w", err)
	}

	return nil
}

func validateReservation(r domain.Reservation) error {
	if r.CustomerName == "" {
		return ErrCustomerNameMissing
	}
	if r.PartySize <= 0 {
		return domain.ErrPartySize
	}
	if !r.Status.Valid() {
		return domain.ErrUnknownReservationStatus
	}
	return nil
}

// CreateReservation books a table. The party must fit the table and no other
// live reservation of the table may fall within the overlap window.
func (s *ReservationService) CreateReservation(ctx context.Context, reservation domain.Reservation) (domain.Reservation, error) {
	reservation.ID = 0
	if reservation.Status == "" {
		reservation.Status = domain.ReservationPending
	}
	if err := validateReservation(reservation); err != nil {
		return domain.Reservation{}, err
	}

	check := func(table domain.Table, _ *domain.Reservation) (bool, error) {
		if reservation.PartySize > table.Capacity {
			return false, domain.ErrPartyExceedsCapacity
		}
		return reservation.NeedsOverlapCheck(nil), nil
	}

	return s.save(ctx, reservation, check)
}

// UpdateReservation applies a partial update to a live reservation. Status
// moves follow the reservation state machine, and moving or confirming re-runs
// the overlap check. Completed and cancelled reservations are read-only.
func (s *ReservationService) UpdateReservation(ctx context.Context, id uint, update domain.ReservationUpdate) (domain.Reservation, error) {
	current, err := s.repo.FindReservationByID(ctx, id)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("s.repo.FindReservationByID -> %w", err)
	}

	reservation := update.Apply(current)
	if err = validateReservation(reservation); err != nil {
		return domain.Reservation{}, err
	}

	check := func(table domain.Table, previous *domain.Reservation) (bool, error) {
		if previous.Status.IsTerminal() {
			return false, domain.Errorf(domain.ErrInvalidTransition, "reservation is %s and can no longer change", previous.Status)
		}
		if err := previous.Status.CanTransitionTo(reservation.Status); err != nil {
			return false, err
		}
		if reservation.PartySize > table.Capacity {
			return false, domain.ErrPartyExceedsCapacity
		}
		return reservation.NeedsOverlapCheck(previous), nil
	}

	return s.save(ctx, reservation, check)
}

func (s *ReservationService) save(ctx context.Context, reservation domain.Reservation, check repository.ReservationCheck) (domain.Reservation, error) {
	saved, err := s.repo.SaveReservation(ctx, reservation, s.window.Window(), check)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("s.repo.SaveReservation -> %w", err)
	}

	s.metrics.ReservationsSaved.WithLabelValues(string(saved.Status)).Inc()
	zap.L().Info("reservation saved",
		zap.Uint("reservation_id", saved.ID),
		zap.Uint("table_id", saved.TableID),
		zap.Time("scheduled_at", saved.ScheduledAt),
		zap.String("status", string(saved.Status)),
	)

	return saved, nil
}

func (s *ReservationService) GetReservation(ctx context.Context, id uint) (domain.Reservation, error) {
	reservation, err := s.repo.FindReservationByID(ctx, id)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("s.repo.FindReservationByID -> %w", err)
	}

	return reservation, nil
}

func (s *ReservationService) ListReservations(ctx context.Context, filter domain.ReservationFilter) ([]domain.Reservation, error) {
	reservations, err := s.repo.FindReservations(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindReservations -> %w", err)
	}

	return reservations, nil
}

func (s *ReservationService) DeleteReservation(ctx context.Context, id uint) error {
	if err := s.repo.DeleteReservation(ctx, id); err != nil {
		return fmt.Errorf("s.repo.DeleteReservation -> %w", err)
	}

	return nil
}
