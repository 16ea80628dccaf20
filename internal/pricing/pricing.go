// Package pricing classifies ticket-type demand and describes pricing
// strategies for the UI. Price computation itself lives in the backend
// pricing service; nothing here changes a price.
package pricing

// DemandTier buckets how sold-out a ticket type is.
type DemandTier string

const (
	TierLow    DemandTier = "LOW"
	TierMedium DemandTier = "MEDIUM"
	TierHigh   DemandTier = "HIGH"
)

// DemandLevel is a tier plus the user-facing copy shown next to it.
type DemandLevel struct {
	Tier      DemandTier `json:"tier"`
	Label     string     `json:"label"`
	ClassName string     `json:"class_name"`
	Message   string     `json:"message"`
}

// Classify maps a sold percentage to a demand level. Total over all inputs
// and monotonic: a higher percentage never yields a lower tier.
// Boundaries: <50 LOW, 50-74 MEDIUM, >=75 HIGH.
func Classify(soldPercentage float64) DemandLevel {
	switch {
	case soldPercentage >= 75:
		return DemandLevel{
			Tier:      TierHigh,
			Label:     "High Demand",
			ClassName: "demand-high",
			Message:   "Selling fast! Prices may increase",
		}
	case soldPercentage >= 50:
		return DemandLevel{
			Tier:      TierMedium,
			Label:     "Moderate Demand",
			ClassName: "demand-medium",
			Message:   "Good availability",
		}
	default:
		return DemandLevel{
			Tier:      TierLow,
			Label:     "Available",
			ClassName: "demand-low",
			Message:   "Plenty of tickets available",
		}
	}
}

// Pricing strategy identifiers as the backend names them.
const (
	StrategyDefault     = "DEFAULT"
	StrategyDemandBased = "DEMAND_BASED"
	StrategyTimeBased   = "TIME_BASED"
)

// StrategyDetails is display metadata for a pricing strategy.
type StrategyDetails struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
}

var strategyDetails = map[string]StrategyDetails{
	StrategyDefault: {
		Name:        "Default Pricing",
		Description: "Fixed price - no automatic adjustments",
		Icon:        "💰",
		Color:       "gray",
	},
	StrategyDemandBased: {
		Name:        "Demand-Based Pricing",
		Description: "Price increases as tickets sell out (dynamic)",
		Icon:        "📈",
		Color:       "blue",
	},
	StrategyTimeBased: {
		Name:        "Time-Based Pricing",
		Description: "Price changes based on time until event",
		Icon:        "⏰",
		Color:       "purple",
	},
}

// StrategyInfo returns the display metadata for a strategy kind. Unknown
// kinds fall back to the default strategy.
func StrategyInfo(kind string) StrategyDetails {
	if details, ok := strategyDetails[kind]; ok {
		return details
	}
	return strategyDetails[StrategyDefault]
}
