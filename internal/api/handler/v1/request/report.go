package request

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/shopspring/decimal"

	"github.com/tablewise/restaurant-api/internal/domain"
)

var errBlankDate = errors.New("cannot be blank")

func requiredDate(value any) error {
	d, _ := value.(domain.Date)
	if d.IsZero() {
		return errBlankDate
	}
	return nil
}

type DailySalesRequest struct {
	Date              domain.Date     `json:"date"`
	TotalOrders       int             `json:"total_orders"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
}

func (req *DailySalesRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Date, validation.By(requiredDate)),
		validation.Field(&req.TotalOrders, validation.Min(0)),
	)
}

func (req *DailySalesRequest) DailySales() domain.DailySales {
	return domain.DailySales{
		Date:              req.Date,
		TotalOrders:       req.TotalOrders,
		TotalRevenue:      req.TotalRevenue,
		AverageOrderValue: req.AverageOrderValue,
	}
}

type PopularDishRequest struct {
	DishID           uint            `json:"dish_id"`
	OrderCount       int             `json:"order_count"`
	RevenueGenerated decimal.Decimal `json:"revenue_generated"`
	PeriodStart      domain.Date     `json:"period_start"`
	PeriodEnd        domain.Date     `json:"period_end"`
}

func (req *PopularDishRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.DishID, validation.Required),
		validation.Field(&req.OrderCount, validation.Min(0)),
		validation.Field(&req.PeriodStart, validation.By(requiredDate)),
		validation.Field(&req.PeriodEnd, validation.By(requiredDate)),
	)
}

func (req *PopularDishRequest) PopularDish() domain.PopularDish {
	return domain.PopularDish{
		DishID:           req.DishID,
		OrderCount:       req.OrderCount,
		RevenueGenerated: req.RevenueGenerated,
		PeriodStart:      req.PeriodStart,
		PeriodEnd:        req.PeriodEnd,
	}
}
