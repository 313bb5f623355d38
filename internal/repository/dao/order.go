package dao

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tablewise/restaurant-api/internal/domain"
)

var (
	ErrOrderNotFound     = domain.NewError(domain.ErrNotFound, "order not found")
	ErrOrderItemNotFound = domain.NewError(domain.ErrNotFound, "order item not found")
	ErrPaymentNotFound   = domain.NewError(domain.ErrNotFound, "payment not found")
	ErrPaymentExists     = domain.NewError(domain.ErrConflict, "payment already exists for this order")
	ErrWaiterNotFound    = domain.NewError(domain.ErrNotFound, "waiter not found")
)

type Order struct {
	ID        uint   `gorm:"primaryKey"`
	TableID   *uint  `gorm:"index"`
	Table     *Table `gorm:"constraint:OnDelete:SET NULL"`
	WaiterID  *uint  `gorm:"index"`
	Waiter    *User  `gorm:"constraint:OnDelete:SET NULL"`
	Status    string `gorm:"not null;default:pending;index"`
	Notes     string
	Items     []OrderItem `gorm:"constraint:OnDelete:CASCADE"`
	Payment   *Payment    `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type OrderItem struct {
	ID       uint   `gorm:"primaryKey"`
	OrderID  uint   `gorm:"not null;index"`
	DishID   uint   `gorm:"not null;index"`
	Dish     *Dish  `gorm:"constraint:OnDelete:RESTRICT"`
	Quantity int    `gorm:"not null"`
	Status   string `gorm:"not null;default:pending"`
	Notes    string
}

type Payment struct {
	ID            uint            `gorm:"primaryKey"`
	OrderID       uint            `gorm:"uniqueIndex;not null"`
	Amount        decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Method        string          `gorm:"not null"`
	TransactionID string          `gorm:"not null;index"`
	Timestamp     time.Time       `gorm:"autoCreateTime"`
}

// OrderGuard vets a write against the current status of the locked order.
type OrderGuard func(status string) error

type OrderDAO struct {
	db *gorm.DB
}

func NewOrderDAO(db *gorm.DB) *OrderDAO {
	return &OrderDAO{
		db: db,
	}
}

func preloadOrder(db *gorm.DB) *gorm.DB {
	return db.Preload("Table").
		Preload("Waiter").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Items.Dish").
		Preload("Payment")
}

func findOrder(db *gorm.DB, id uint) (Order, error) {
	var order Order

	result := preloadOrder(db).First(&order, id)
	if result.Error != nil {
		if isNotFound(result.Error) {
			return Order{}, ErrOrderNotFound
		}

		return Order{}, result.Error
	}

	return order, nil
}

// lockOrder reads the order row under the given lock strength.
func lockOrder(tx *gorm.DB, id uint, strength clause.Locking) (Order, error) {
	var order Order

	result := tx.Clauses(strength).First(&order, id)
	if result.Error != nil {
		if isNotFound(result.Error) {
			return Order{}, ErrOrderNotFound
		}

		return Order{}, result.Error
	}

	return order, nil
}

func checkOrderRefs(tx *gorm.DB, tableID, waiterID *uint) error {
	var count int64
	if tableID != nil {
		if err := tx.Model(&Table{}).Where("id = ?", *tableID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrTableNotFound
		}
	}
	if waiterID != nil {
		if err := tx.Model(&User{}).Where("id = ?", *waiterID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrWaiterNotFound
		}
	}

	return nil
}

func (d *OrderDAO) Insert(ctx context.Context, order Order) (Order, error) {
	var created Order
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkOrderRefs(tx, order.TableID, order.WaiterID); err != nil {
			return err
		}

		order.Table, order.Waiter, order.Items, order.Payment = nil, nil, nil, nil
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		var err error
		created, err = findOrder(tx, order.ID)
		return err
	})
	if err != nil {
		return Order{}, err
	}

	return created, nil
}

func (d *OrderDAO) FindByID(ctx context.Context, id uint) (Order, error) {
	return findOrder(d.db.WithContext(ctx), id)
}

var orderOrdering = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
}

func (d *OrderDAO) FindAll(ctx context.Context, filter domain.OrderFilter) ([]Order, error) {
	var orders []Order

	query := preloadOrder(d.db.WithContext(ctx)).
		Order(orderBy(filter.Ordering, orderOrdering, "created_at DESC")).
		Order("id DESC")
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.TableID != nil {
		query = query.Where("table_id = ?", *filter.TableID)
	}
	if filter.WaiterID != nil {
		query = query.Where("waiter_id = ?", *filter.WaiterID)
	}
	if filter.Search != "" {
		query = query.Where("LOWER(notes) LIKE ?", likePattern(filter.Search))
	}
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}

	return orders, nil
}

// Update writes the order's table, status and notes. guard sees the stored
// status under an exclusive row lock. An empty status keeps the stored one.
func (d *OrderDAO) Update(ctx context.Context, order Order, guard OrderGuard) (Order, error) {
	var updated Order
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := lockOrder(tx, order.ID, lockForUpdate)
		if err != nil {
			return err
		}
		if err = guard(current.Status); err != nil {
			return err
		}
		if order.Status == "" {
			order.Status = current.Status
		}
		if err = checkOrderRefs(tx, order.TableID, nil); err != nil {
			return err
		}

		err = tx.Model(&current).
			Select("table_id", "status", "notes").
			Updates(&Order{TableID: order.TableID, Status: order.Status, Notes: order.Notes}).Error
		if err != nil {
			return err
		}

		updated, err = findOrder(tx, order.ID)
		return err
	})
	if err != nil {
		return Order{}, err
	}

	return updated, nil
}

func (d *OrderDAO) Delete(ctx context.Context, id uint) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockOrder(tx, id, lockForUpdate); err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", id).Delete(&Payment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", id).Delete(&OrderItem{}).Error; err != nil {
			return err
		}

		return tx.Delete(&Order{}, id).Error
	})
}

// AddItem appends an item to the order. The order row is share-locked so that
// concurrent adds proceed together while a payment in flight holds them off.
func (d *OrderDAO) AddItem(ctx context.Context, item OrderItem, guard OrderGuard) (OrderItem, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := lockOrder(tx, item.OrderID, lockForShare)
		if err != nil {
			return err
		}
		if err = guard(order.Status); err != nil {
			return err
		}

		var dish Dish
		if err = tx.First(&dish, item.DishID).Error; err != nil {
			if isNotFound(err) {
				return ErrDishNotFound
			}
			return err
		}
		if !dish.Available {
			return domain.ErrDishUnavailable
		}

		item.Dish = nil
		if err = tx.Create(&item).Error; err != nil {
			return err
		}

		return tx.Preload("Dish").First(&item, item.ID).Error
	})
	if err != nil {
		return OrderItem{}, err
	}

	return item, nil
}

// ItemGuard vets an item write given the locked order status and the stored item.
type ItemGuard func(orderStatus string, current OrderItem) error

func (d *OrderDAO) UpdateItem(ctx context.Context, item OrderItem, guard ItemGuard) (OrderItem, error) {
	var updated OrderItem
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := lockOrder(tx, item.OrderID, lockForUpdate)
		if err != nil {
			return err
		}

		var current OrderItem
		if err = tx.Where("order_id = ?", order.ID).First(&current, item.ID).Error; err != nil {
			if isNotFound(err) {
				return ErrOrderItemNotFound
			}
			return err
		}
		if err = guard(order.Status, current); err != nil {
			return err
		}

		err = tx.Model(&current).
			Select("quantity", "status", "notes").
			Updates(&OrderItem{Quantity: item.Quantity, Status: item.Status, Notes: item.Notes}).Error
		if err != nil {
			return err
		}
		if err = tx.Model(&order).Update("updated_at", time.Now().UTC()).Error; err != nil {
			return err
		}

		return tx.Preload("Dish").First(&updated, item.ID).Error
	})
	if err != nil {
		return OrderItem{}, err
	}

	return updated, nil
}

func (d *OrderDAO) FindItem(ctx context.Context, orderID, itemID uint) (OrderItem, error) {
	var item OrderItem

	result := d.db.WithContext(ctx).Preload("Dish").Where("order_id = ?", orderID).First(&item, itemID)
	if result.Error != nil {
		if isNotFound(result.Error) {
			return OrderItem{}, ErrOrderItemNotFound
		}

		return OrderItem{}, result.Error
	}

	return item, nil
}

func (d *OrderDAO) DeleteItem(ctx context.Context, orderID, itemID uint, guard OrderGuard) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := lockOrder(tx, orderID, lockForUpdate)
		if err != nil {
			return err
		}
		if err = guard(order.Status); err != nil {
			return err
		}

		result := tx.Where("order_id = ?", orderID).Delete(&OrderItem{}, itemID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrOrderItemNotFound
		}

		return tx.Model(&order).Update("updated_at", time.Now().UTC()).Error
	})
}

// PayOrder records the payment and flips the order to paidStatus in one
// transaction. The exclusive order lock makes concurrent attempts queue up
// behind each other; the unique index on order_id backs it up.
func (d *OrderDAO) PayOrder(ctx context.Context, payment Payment, paidStatus string, guard OrderGuard) (Payment, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := lockOrder(tx, payment.OrderID, lockForUpdate)
		if err != nil {
			return err
		}

		var count int64
		if err = tx.Model(&Payment{}).Where("order_id = ?", order.ID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrPaymentExists
		}
		if err = guard(order.Status); err != nil {
			return err
		}

		if err = tx.Create(&payment).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrPaymentExists
			}
			return err
		}

		return tx.Model(&order).Update("status", paidStatus).Error
	})
	if err != nil {
		return Payment{}, err
	}

	return payment, nil
}

func (d *OrderDAO) FindPaymentByID(ctx context.Context, id uint) (Payment, error) {
	var payment Payment

	result := d.db.WithContext(ctx).First(&payment, id)
	if result.Error != nil {
		if isNotFound(result.Error) {
			return Payment{}, ErrPaymentNotFound
		}

		return Payment{}, result.Error
	}

	return payment, nil
}

func (d *OrderDAO) FindPayments(ctx context.Context, filter domain.PaymentFilter) ([]Payment, error) {
	var payments []Payment

	query := d.db.WithContext(ctx).Order("timestamp DESC").Order("id DESC")
	if filter.OrderID != nil {
		query = query.Where("order_id = ?", *filter.OrderID)
	}
	if filter.Method != "" {
		query = query.Where("method = ?", string(filter.Method))
	}
	if filter.Search != "" {
		query = query.Where("LOWER(transaction_id) LIKE ?", likePattern(filter.Search))
	}
	if err := query.Find(&payments).Error; err != nil {
		return nil, err
	}

	return payments, nil
}
