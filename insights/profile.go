package insights

import (
	"math"
	"time"
)

// Segment thresholds in days since the last order.
const (
	activeUpTo     = 30
	diminishedUpTo = 90
)

// segmentFor is a pure function of recency. Customers with no history carry
// recency 0 and therefore land in Active; that quirk is part of the contract.
func segmentFor(recency int) Segment {
	switch {
	case recency < activeUpTo:
		return SegmentActive
	case recency < diminishedUpTo:
		return SegmentDiminished
	default:
		return SegmentInactive
	}
}

// buildProfiles left-joins the customer master data with the order and
// delivery aggregates. Every customer yields exactly one profile, in master
// order; customers without history keep zero-valued metrics.
func buildProfiles(tables *Tables, asOf time.Time) []CustomerProfile {
	orderAgg := aggregateOrders(tables.Orders)
	deliveredCounts := aggregateDeliveries(tables.Deliveries)

	profiles := make([]CustomerProfile, 0, len(tables.Customers))
	for _, customer := range tables.Customers {
		profile := CustomerProfile{
			CustomerID:   customer.CustomerID,
			Name:         customer.Name,
			Phone:        customer.Phone,
			Address:      customer.Address,
			BusinessType: customer.BusinessType,
			Zone:         customer.Zone,
			Attendant:    customer.Attendant,
			Lat:          customer.Lat,
			Lon:          customer.Lon,
		}
		if stats, ok := orderAgg[customer.CustomerID]; ok {
			profile.LastOrderDate = stats.lastOrder
			profile.DominantPeriod = stats.dominantPeriod()
			profile.TotalSpend = stats.totalSpend
			profile.AverageTicket = stats.averageTicket()
			profile.OrderCount = stats.orderCount
		}
		profile.DeliveredCount = deliveredCounts[customer.CustomerID]
		profile.RecencyDays = recencyDays(asOf, profile.LastOrderDate)
		profile.DeliveryEffectiveness = clamp01(float64(profile.DeliveredCount) / float64(max(profile.OrderCount, 1)))
		profile.Segment = segmentFor(profile.RecencyDays)
		profile.ProjectedAnnualValue = round2(profile.AverageTicket * 365 / float64(max(profile.RecencyDays, 1)))
		profiles = append(profiles, profile)
	}
	return profiles
}

func clamp01(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
