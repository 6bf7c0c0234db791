package trade

import "github.com/shopspring/decimal"

// AdditionalCosts are the costs allocated to a purchase line on top of its unit cost
type AdditionalCosts struct {
	Freight     decimal.Decimal `json:"freight_cost"`
	CustomsDuty decimal.Decimal `json:"customs_duty"`
	Other       decimal.Decimal `json:"other_costs"`
}

// Total sums all additional costs
func (c AdditionalCosts) Total() decimal.Decimal {
	return c.Freight.Add(c.CustomsDuty).Add(c.Other)
}

// IsNegative reports whether any component is negative
func (c AdditionalCosts) IsNegative() bool {
	return c.Freight.IsNegative() || c.CustomsDuty.IsNegative() || c.Other.IsNegative()
}

// LandedCost is the result of spreading additional costs over a purchase line
type LandedCost struct {
	LineTotal         decimal.Decimal `json:"line_total"`
	AdditionalPerUnit decimal.Decimal `json:"additional_cost_per_unit"`
	PerUnit           decimal.Decimal `json:"landed_cost_per_unit"`
	Total             decimal.Decimal `json:"total_landed_cost"`
}

// CalculateLandedCost spreads freight, duty and other costs evenly over quantity.
// With a non-positive quantity the additional cost per unit is zero.
func CalculateLandedCost(quantity, unitCost decimal.Decimal, costs AdditionalCosts) LandedCost {
	additional := decimal.Zero
	if quantity.IsPositive() {
		additional = costs.Total().Div(quantity).Round(4)
	}
	perUnit := unitCost.Add(additional)
	return LandedCost{
		LineTotal:         quantity.Mul(unitCost).Round(4),
		AdditionalPerUnit: additional,
		PerUnit:           perUnit,
		Total:             perUnit.Mul(quantity).Round(4),
	}
}
