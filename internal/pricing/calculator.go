package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/noah-isme/tour-inventory/internal/catalog"
)

// Component tags what the applied markup represents in a price breakdown.
type Component string

const (
	ComponentNone            Component = "none"
	ComponentOperatorMargin  Component = "operator_margin"
	ComponentAgentCommission Component = "agent_commission"
)

// Breakdown is the result of applying a policy to a net rate.
// GrossRate always equals NetRate plus AppliedMarkup.
type Breakdown struct {
	NetRate       decimal.Decimal  `json:"netRate"`
	AppliedMarkup decimal.Decimal  `json:"appliedMarkup"`
	GrossRate     decimal.Decimal  `json:"grossRate"`
	Strategy      catalog.Strategy `json:"strategy,omitempty"`
	Component     Component        `json:"component"`
}

// Price applies policy to baseNet. A nil policy, or one with an unknown
// strategy, applies no markup.
func Price(baseNet decimal.Decimal, policy *catalog.PricingPolicy) Breakdown {
	markup := decimal.Zero
	component := ComponentNone
	var strategy catalog.Strategy

	if policy != nil {
		switch policy.Strategy {
		case catalog.StrategyMarkupPct:
			markup = percentOf(baseNet, policy.Value)
			component = ComponentOperatorMargin
			strategy = policy.Strategy
		case catalog.StrategyAgentCommission:
			markup = percentOf(baseNet, policy.Value)
			component = ComponentAgentCommission
			strategy = policy.Strategy
		case catalog.StrategyGrossFixed:
			// negative markup is a deliberate markdown
			markup = policy.Value.Sub(baseNet)
			component = ComponentOperatorMargin
			strategy = policy.Strategy
		}
	}

	return Breakdown{
		NetRate:       baseNet,
		AppliedMarkup: markup,
		GrossRate:     baseNet.Add(markup),
		Strategy:      strategy,
		Component:     component,
	}
}

func percentOf(base, pct decimal.Decimal) decimal.Decimal {
	return base.Mul(pct).Shift(-2)
}
