package request

import (
	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/tablewise/restaurant-api/internal/domain"
)

type StockRequest struct {
	IngredientID     uint    `json:"ingredient_id"`
	Quantity         float64 `json:"quantity"`
	ReorderThreshold float64 `json:"reorder_threshold"`
}

func (req *StockRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.IngredientID, validation.Required),
		validation.Field(&req.Quantity, validation.Min(0.0)),
		validation.Field(&req.ReorderThreshold, validation.Min(0.0)),
	)
}

func (req *StockRequest) Stock() domain.Stock {
	return domain.Stock{
		IngredientID:     req.IngredientID,
		Quantity:         req.Quantity,
		ReorderThreshold: req.ReorderThreshold,
	}
}

// UpdateStockRequest only accepts the threshold. Quantity moves through the
// transaction ledger.
type UpdateStockRequest struct {
	ReorderThreshold *float64 `json:"reorder_threshold"`
}

func (req *UpdateStockRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.ReorderThreshold, validation.NotNil, validation.Min(0.0)),
	)
}

type StockTransactionRequest struct {
	IngredientID uint    `json:"ingredient_id"`
	Type         string  `json:"type"`
	Quantity     float64 `json:"quantity"`
	Notes        string  `json:"notes"`
}

func (req *StockTransactionRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.IngredientID, validation.Required),
		validation.Field(&req.Type, validation.Required,
			validation.In(string(domain.StockIn), string(domain.StockOut), string(domain.StockAdjustment))),
		validation.Field(&req.Quantity, validation.Required),
	)
}

func (req *StockTransactionRequest) Transaction() domain.StockTransaction {
	return domain.StockTransaction{
		IngredientID: req.IngredientID,
		Type:         domain.StockTransactionType(req.Type),
		Quantity:     req.Quantity,
		Notes:        req.Notes,
	}
}
