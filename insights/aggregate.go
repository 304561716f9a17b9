package insights

import (
	"sort"
	"time"
)

// orderStats accumulates one customer's order lines.
type orderStats struct {
	lastOrder    time.Time
	totalSpend   float64
	orderCount   int
	periodCounts map[string]int
	periodSeen   map[string]int
	nextSeen     int
}

func aggregateOrders(orders []OrderRecord) map[string]*orderStats {
	stats := map[string]*orderStats{}
	for _, order := range orders {
		entry, exists := stats[order.CustomerID]
		if !exists {
			entry = &orderStats{periodCounts: map[string]int{}, periodSeen: map[string]int{}}
			stats[order.CustomerID] = entry
		}
		if entry.lastOrder.IsZero() || order.OrderDate.After(entry.lastOrder) {
			entry.lastOrder = order.OrderDate
		}
		if _, seen := entry.periodSeen[order.Period]; !seen {
			entry.periodSeen[order.Period] = entry.nextSeen
			entry.nextSeen++
		}
		entry.periodCounts[order.Period]++
		entry.totalSpend += order.Amount
		entry.orderCount++
	}
	return stats
}

// dominantPeriod returns the most frequent period; ties go to the period
// encountered first in input order.
func (s *orderStats) dominantPeriod() string {
	best := ""
	bestCount := -1
	bestSeen := 0
	for period, count := range s.periodCounts {
		seen := s.periodSeen[period]
		if count > bestCount || (count == bestCount && seen < bestSeen) {
			best = period
			bestCount = count
			bestSeen = seen
		}
	}
	return best
}

func (s *orderStats) averageTicket() float64 {
	if s.orderCount == 0 {
		return 0
	}
	return s.totalSpend / float64(s.orderCount)
}

func aggregateDeliveries(deliveries []DeliveryRecord) map[string]int {
	counts := map[string]int{}
	for _, delivery := range deliveries {
		counts[delivery.CustomerID]++
	}
	return counts
}

// productVolumes sums quantities per product, preserving first-seen order so
// ranking tie-breaks are reproducible across runs.
func productVolumes(orders []OrderRecord) []ProductVolume {
	index := map[string]int{}
	volumes := []ProductVolume{}
	for _, order := range orders {
		i, exists := index[order.Product]
		if !exists {
			i = len(volumes)
			index[order.Product] = i
			volumes = append(volumes, ProductVolume{Product: order.Product})
		}
		volumes[i].Quantity += order.Quantity
	}
	return volumes
}

// topProducts returns the n highest-volume products; ties keep first-seen order.
func topProducts(volumes []ProductVolume, n int) []ProductVolume {
	ranked := append([]ProductVolume{}, volumes...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Quantity > ranked[j].Quantity
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// bottomProducts returns the n lowest-volume products; ties keep first-seen order.
func bottomProducts(volumes []ProductVolume, n int) []ProductVolume {
	ranked := append([]ProductVolume{}, volumes...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Quantity < ranked[j].Quantity
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
