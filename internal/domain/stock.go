package domain

import (
	"encoding/json"
	"time"
)

var (
	ErrInvalidStockTxType    = NewError(ErrInvalidArgument, "type must be one of in, out, adjustment")
	ErrStockQuantityPositive = NewError(ErrInvalidArgument, "quantity must be greater than zero")
	ErrAdjustmentZero        = NewError(ErrInvalidArgument, "adjustment quantity must not be zero")
	ErrIngredientRequired    = NewError(ErrInvalidArgument, "ingredient is required")
	ErrInsufficientStock     = NewError(ErrConflict, "insufficient stock")
)

type Stock struct {
	ID               uint        `json:"id"`
	IngredientID     uint        `json:"ingredient_id"`
	Ingredient       *Ingredient `json:"ingredient,omitempty"`
	Quantity         float64     `json:"quantity"`
	ReorderThreshold float64     `json:"reorder_threshold"`
	LastUpdated      time.Time   `json:"last_updated"`
}

// NeedsReorder reports whether the on-hand quantity is at or below the threshold.
func (s Stock) NeedsReorder() bool {
	return s.Quantity <= s.ReorderThreshold
}

func (s Stock) MarshalJSON() ([]byte, error) {
	type alias Stock
	return json.Marshal(struct {
		alias
		NeedsReorder bool `json:"needs_reorder"`
	}{
		alias:        alias(s),
		NeedsReorder: s.NeedsReorder(),
	})
}

type StockTransactionType string

const (
	StockIn         StockTransactionType = "in"
	StockOut        StockTransactionType = "out"
	StockAdjustment StockTransactionType = "adjustment"
)

func (t StockTransactionType) Valid() bool {
	switch t {
	case StockIn, StockOut, StockAdjustment:
		return true
	}
	return false
}

// StockTransaction is an append-only record of a stock-affecting event.
// For adjustments Quantity is a signed delta.
type StockTransaction struct {
	ID           uint                 `json:"id"`
	IngredientID uint                 `json:"ingredient_id"`
	Type         StockTransactionType `json:"type"`
	Quantity     float64              `json:"quantity"`
	Timestamp    time.Time            `json:"timestamp"`
	Notes        string               `json:"notes"`
	UserID       *uint                `json:"user_id"`
}

// Delta returns the signed change the transaction applies to on-hand stock.
func (t StockTransaction) Delta() (float64, error) {
	if t.IngredientID == 0 {
		return 0, ErrIngredientRequired
	}
	switch t.Type {
	case StockIn:
		if t.Quantity <= 0 {
			return 0, ErrStockQuantityPositive
		}
		return t.Quantity, nil
	case StockOut:
		if t.Quantity <= 0 {
			return 0, ErrStockQuantityPositive
		}
		return -t.Quantity, nil
	case StockAdjustment:
		if t.Quantity == 0 {
			return 0, ErrAdjustmentZero
		}
		return t.Quantity, nil
	}
	return 0, ErrInvalidStockTxType
}

// Apply returns the on-hand quantity after the transaction. Only adjustments
// may take stock below zero.
func (t StockTransaction) Apply(onHand float64) (float64, error) {
	delta, err := t.Delta()
	if err != nil {
		return 0, err
	}
	next := onHand + delta
	if t.Type == StockOut && next < 0 {
		return 0, ErrInsufficientStock
	}
	return next, nil
}
