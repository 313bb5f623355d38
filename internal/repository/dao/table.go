package dao

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tablewise/restaurant-api/internal/domain"
)

var (
	ErrTableNotFound       = domain.NewError(domain.ErrNotFound, "table not found")
	ErrTableExists         = domain.NewError(domain.ErrConflict, "table with this number already exists")
	ErrReservationNotFound = domain.NewError(domain.ErrNotFound, "reservation not found")
)

type Table struct {
	ID       uint `gorm:"primaryKey"`
	Number   int  `gorm:"uniqueIndex;not null"`
	Capacity int  `gorm:"not null"`
	Location string
}

type Reservation struct {
	ID            uint   `gorm:"primaryKey"`
	TableID       uint   `gorm:"not null;index"`
	Table         *Table `gorm:"constraint:OnDelete:CASCADE"`
	CustomerName  string `gorm:"not null"`
	CustomerPhone string
	CustomerEmail string
	ScheduledAt   time.Time `gorm:"not null;index"`
	PartySize     int       `gorm:"not null"`
	Status        string    `gorm:"not null;default:pending"`
	Notes         string
	CreatedAt     time.Time
}

// ReservationCheck vets a reservation write against the locked table and the
// stored state (nil on insert). It reports whether the overlap rule applies.
type ReservationCheck func(table Table, previous *Reservation) (checkOverlap bool, err error)

type TableDAO struct {
	db *gorm.DB
}

func NewTableDAO(db *gorm.DB) *TableDAO {
	return &TableDAO{
		db: db,
	}
}

func (d *TableDAO) InsertTable(ctx context.Context, table Table) (Table, error) {
	if err := d.db.WithContext(ctx).Create(&table).Error; err != nil {
		if isUniqueViolation(err) {
			return Table{}, ErrTableExists
		}

		return Table{}, err
	}

	return table, nil
}

func (d *TableDAO) FindTableByID(ctx context.Context, id uint) (Table, error) {
	var table Table

	result := d.db.WithContext(ctx).First(&table, id)
	if result.Error != nil {
		if isNotFound(result.Error) {
			return Table{}, ErrTableNotFound
		}

		return Table{}, result.Error
	}

	return table, nil
}

func (d *TableDAO) FindTables(ctx context.Context, filter domain.TableFilter) ([]Table, error) {
	var tables []Table

	query := d.db.WithContext(ctx).Order("number")
	if filter.MinCapacity != nil {
		query = query.Where("capacity >= ?", *filter.MinCapacity)
	}
	if filter.Location != "" {
		query = query.Where("location = ?", filter.Location)
	}
	if err := query.Find(&tables).Error; err != nil {
		return nil, err
	}

	return tables, nil
}

func (d *TableDAO) UpdateTable(ctx context.Context, table Table) (Table, error) {
	result := d.db.WithContext(ctx).Model(&Table{ID: table.ID}).
		Select("number", "capacity", "location").
		Updates(&table)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return Table{}, ErrTableExists
		}

		return Table{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Table{}, ErrTableNotFound
	}

	return d.FindTableByID(ctx, table.ID)
}

// DeleteTable drops the table with its reservations and detaches its orders.
func (d *TableDAO) DeleteTable(ctx context.Context, id uint) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&Order{}).Where("table_id = ?", id).Update("table_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("table_id = ?", id).Delete(&Reservation{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&Table{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrTableNotFound
		}

		return nil
	})
}

// SaveReservation inserts r when its ID is zero and updates it otherwise.
// The target table row stays locked until commit so that two writers cannot
// both pass the overlap check for the same table.
func (d *TableDAO) SaveReservation(ctx context.Context, r Reservation, window time.Duration, check ReservationCheck) (Reservation, error) {
	var saved Reservation
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var previous *Reservation
		if r.ID != 0 {
			var current Reservation
			if err := tx.Clauses(lockForUpdate).First(&current, r.ID).Error; err != nil {
				if isNotFound(err) {
					return ErrReservationNotFound
				}
				return err
			}
			previous = &current
			r.CreatedAt = current.CreatedAt
		}

		var table Table
		if err := tx.Clauses(lockForUpdate).First(&table, r.TableID).Error; err != nil {
			if isNotFound(err) {
				return ErrTableNotFound
			}
			return err
		}

		checkOverlap, err := check(table, previous)
		if err != nil {
			return err
		}

		if checkOverlap {
			var count int64
			err = tx.Model(&Reservation{}).
				Where("table_id = ? AND status <> ? AND id <> ?", r.TableID, string(domain.ReservationCancelled), r.ID).
				Where("scheduled_at > ? AND scheduled_at < ?", r.ScheduledAt.Add(-window), r.ScheduledAt.Add(window)).
				Count(&count).Error
			if err != nil {
				return err
			}
			if count > 0 {
				return domain.ErrReservationOverlap
			}
		}

		r.Table = nil
		if err = tx.Save(&r).Error; err != nil {
			return err
		}

		return tx.Preload("Table").First(&saved, r.ID).Error
	})
	if err != nil {
		return Reservation{}, err
	}

	return saved, nil
}

func (d *TableDAO) FindReservationByID(ctx context.Context, id uint) (Reservation, error) {
	var reservation Reservation

	result := d.db.WithContext(ctx).Preload("Table").First(&reservation, id)
	if result.Error != nil {
		if isNotFound(result.Error) {
			return Reservation{}, ErrReservationNotFound
		}

		return Reservation{}, result.Error
	}

	return reservation, nil
}

func (d *TableDAO) FindReservations(ctx context.Context, filter domain.ReservationFilter) ([]Reservation, error) {
	var reservations []Reservation

	query := d.db.WithContext(ctx).Preload("Table").Order("scheduled_at").Order("id")
	if filter.TableID != nil {
		query = query.Where("table_id = ?", *filter.TableID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.From != nil {
		query = query.Where("scheduled_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("scheduled_at < ?", *filter.To)
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("(LOWER(customer_name) LIKE ? OR LOWER(customer_phone) LIKE ?)", pattern, pattern)
	}
	if err := query.Find(&reservations).Error; err != nil {
		return nil, err
	}

	return reservations, nil
}

func (d *TableDAO) DeleteReservation(ctx context.Context, id uint) error {
	result := d.db.WithContext(ctx).Delete(&Reservation{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrReservationNotFound
	}

	return nil
}
