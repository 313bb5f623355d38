package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const DateLayout = "2006-01-02"

var ErrPeriodOrder = NewError(ErrInvalidArgument, "period_end must not be before period_start")

// Date is a calendar day serialized as YYYY-MM-DD.
type Date struct {
	time.Time
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, Errorf(ErrInvalidArgument, "invalid date %q, expected YYYY-MM-DD", s)
	}
	return Date{Time: t}, nil
}

func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DailySales is a precomputed per-day aggregate written by the reporting job.
type DailySales struct {
	ID                uint            `json:"id"`
	Date              Date            `json:"date"`
	TotalOrders       int             `json:"total_orders"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
}

// PopularDish is a precomputed per-dish aggregate over a period.
type PopularDish struct {
	ID               uint            `json:"id"`
	DishID           uint            `json:"dish_id"`
	Dish             *Dish           `json:"dish,omitempty"`
	OrderCount       int             `json:"order_count"`
	RevenueGenerated decimal.Decimal `json:"revenue_generated"`
	PeriodStart      Date            `json:"period_start"`
	PeriodEnd        Date            `json:"period_end"`
}

func (p PopularDish) Validate() error {
	if p.PeriodEnd.Before(p.PeriodStart.Time) {
		return ErrPeriodOrder
	}
	return nil
}
