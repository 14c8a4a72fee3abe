// Package stockmath holds the inventory-control formulas used by the
// replenishment policies. Every function is pure; callers own persistence.
//
// Demand figures are annual, lead times and review periods are in days and
// the demand standard deviation is per day.
package stockmath

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

// DaysPerYear converts annual demand into daily demand
const DaysPerYear = 365.0

var (
	ErrZeroHoldingCost  = errors.New("holding cost must be greater than zero")
	ErrZeroLotSize      = errors.New("optimal lot size is zero")
	ErrZeroReviewPeriod = errors.New("review period must be greater than zero")
)

// FixedLot is the continuous-review result: lot size Q and reorder point R
type FixedLot struct {
	Q int `json:"optimal_lot"`
	R int `json:"reorder_point"`
}

// CostBreakdown splits the total inventory cost (CGI) into its components
type CostBreakdown struct {
	Holding  float64 `json:"holding_cost"`
	Ordering float64 `json:"ordering_cost"`
	Purchase float64 `json:"purchase_cost"`
	Total    float64 `json:"total_cost"`
}

// DailyDemand converts annual demand D into d
func DailyDemand(annualDemand float64) float64 {
	return annualDemand / DaysPerYear
}

// EOQAndReorderPoint computes Q = round(sqrt(2DS/H)) and R = round(d*L)
func EOQAndReorderPoint(demand, orderCost, holdingCost, leadTimeDays float64) (FixedLot, error) {
	if holdingCost <= 0 {
		return FixedLot{}, ErrZeroHoldingCost
	}

	q := math.Round(math.Sqrt((2 * demand * orderCost) / holdingCost))
	r := math.Round(DailyDemand(demand) * leadTimeDays)

	return FixedLot{Q: int(q), R: int(r)}, nil
}

// SafetyStockFixedLot = z * sigma * sqrt(L)
func SafetyStockFixedLot(z, stdDev, leadTimeDays float64) float64 {
	return z * stdDev * math.Sqrt(leadTimeDays)
}

// combinedStdDev is the demand deviation over the protection period T+L
func combinedStdDev(reviewPeriod, leadTimeDays, stdDev float64) float64 {
	return math.Sqrt((reviewPeriod + leadTimeDays) * stdDev * stdDev)
}

// SafetyStockFixedInterval = z * sqrt((T+L) * sigma^2)
func SafetyStockFixedInterval(reviewPeriod, leadTimeDays, z, stdDev float64) float64 {
	return z * combinedStdDev(reviewPeriod, leadTimeDays, stdDev)
}

// MaxInventory is the order-up-to level d(T+L) + z*sqrt((T+L)*sigma^2)
func MaxInventory(dailyDemand, reviewPeriod, leadTimeDays, z, stdDev float64) float64 {
	return dailyDemand*(reviewPeriod+leadTimeDays) + SafetyStockFixedInterval(reviewPeriod, leadTimeDays, z, stdDev)
}

// ReplenishmentQuantity is MaxInventory minus the inventory position.
// The result may be negative; callers clamp.
func ReplenishmentQuantity(dailyDemand, reviewPeriod, leadTimeDays, z, stdDev, inventoryPosition float64) float64 {
	return MaxInventory(dailyDemand, reviewPeriod, leadTimeDays, z, stdDev) - inventoryPosition
}

// OrderQuantity clamps and rounds a replenishment quantity to whole units
func OrderQuantity(raw float64) int {
	if raw <= 0 {
		return 0
	}
	return int(math.Round(raw))
}

// PurchaseCost = C * D
func PurchaseCost(unitPrice, annualDemand float64) float64 {
	return unitPrice * annualDemand
}

// TotalInventoryCost sums the three CGI components
func TotalInventoryCost(holding, ordering, purchase float64) float64 {
	return holding + ordering + purchase
}

// FixedLotCost computes CGI for a continuous-review policy with lot size q
func FixedLotCost(demand float64, q int, holdingCost, orderCost, unitPrice float64) (CostBreakdown, error) {
	if q <= 0 {
		return CostBreakdown{}, ErrZeroLotSize
	}
	lot := float64(q)

	c := CostBreakdown{
		Holding:  (lot / 2) * holdingCost,
		Ordering: (demand / lot) * orderCost,
		Purchase: PurchaseCost(unitPrice, demand),
	}
	c.Total = TotalInventoryCost(c.Holding, c.Ordering, c.Purchase)
	return c, nil
}

// FixedIntervalCost computes CGI for a periodic-review policy with period T days
func FixedIntervalCost(demand, reviewPeriodDays, holdingCost, orderCost, unitPrice float64) (CostBreakdown, error) {
	if reviewPeriodDays <= 0 {
		return CostBreakdown{}, ErrZeroReviewPeriod
	}
	years := reviewPeriodDays / DaysPerYear

	c := CostBreakdown{
		Holding:  (demand * years / 2) * holdingCost,
		Ordering: (1 / years) * orderCost,
		Purchase: PurchaseCost(unitPrice, demand),
	}
	c.Total = TotalInventoryCost(c.Holding, c.Ordering, c.Purchase)
	return c, nil
}

// Rounded returns the breakdown with every component rounded to cents
func (c CostBreakdown) Rounded() CostBreakdown {
	return CostBreakdown{
		Holding:  RoundMoney(c.Holding),
		Ordering: RoundMoney(c.Ordering),
		Purchase: RoundMoney(c.Purchase),
		Total:    RoundMoney(c.Total),
	}
}

// Money converts a float amount into a decimal rounded to 2 places
func Money(x float64) decimal.Decimal {
	return decimal.NewFromFloat(x).Round(2)
}

// RoundMoney rounds to 2 decimal places
func RoundMoney(x float64) float64 {
	return Money(x).InexactFloat64()
}

// RoundUnits rounds a derived stock level (safety stock, max inventory) to 2 places
func RoundUnits(x float64) float64 {
	return math.Round(x*100) / 100
}
