package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/shopspring/decimal"

	"github.com/tablewise/restaurant-api/internal/domain"
)

type CreateOrderRequest struct {
	TableID  *uint  `json:"table_id"`
	WaiterID *uint  `json:"waiter_id"`
	Notes    string `json:"notes"`
}

func (req *CreateOrderRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.TableID, validation.NilOrNotEmpty),
		validation.Field(&req.WaiterID, validation.NilOrNotEmpty),
	)
}

func (req *CreateOrderRequest) Order() domain.Order {
	return domain.Order{
		TableID:  req.TableID,
		WaiterID: req.WaiterID,
		Notes:    req.Notes,
	}
}

type UpdateOrderRequest struct {
	TableID *uint   `json:"table_id"`
	Status  *string `json:"status"`
	Notes   *string `json:"notes"`
}

func (req *UpdateOrderRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.TableID, validation.NilOrNotEmpty),
		validation.Field(&req.Status, validation.NilOrNotEmpty),
	)
}

func (req *UpdateOrderRequest) Update() domain.OrderUpdate {
	update := domain.OrderUpdate{
		TableID: req.TableID,
		Notes:   req.Notes,
	}
	if req.Status != nil {
		status := domain.OrderStatus(*req.Status)
		update.Status = &status
	}
	return update
}

// AddItemRequest is checked by the order workflow itself so that a missing
// dish_id is reported before anything else.
type AddItemRequest struct {
	DishID   uint   `json:"dish_id"`
	Quantity *int   `json:"quantity"`
	Notes    string `json:"notes"`
}

func (req *AddItemRequest) Item() domain.OrderItem {
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	return domain.OrderItem{
		DishID:   req.DishID,
		Quantity: quantity,
		Notes:    req.Notes,
	}
}

type UpdateItemRequest struct {
	Quantity *int    `json:"quantity"`
	Status   *string `json:"status"`
	Notes    *string `json:"notes"`
}

func (req *UpdateItemRequest) Update() domain.OrderItemUpdate {
	update := domain.OrderItemUpdate{
		Quantity: req.Quantity,
		Notes:    req.Notes,
	}
	if req.Status != nil {
		status := domain.OrderItemStatus(*req.Status)
		update.Status = &status
	}
	return update
}

// PaymentRequest is checked by the payment workflow, which reports missing
// fields in the order amount, method, transaction_id.
type PaymentRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	Method        string          `json:"method"`
	TransactionID string          `json:"transaction_id"`
}

func (req *PaymentRequest) Payment() domain.Payment {
	return domain.Payment{
		Amount:        req.Amount,
		Method:        domain.PaymentMethod(req.Method),
		TransactionID: req.TransactionID,
	}
}
