package insights

const recommendationSize = 5

// Recommendation carries the three product lists for one customer.
type Recommendation struct {
	CustomerID       string          `json:"customer_id"`
	Recommended      []ProductVolume `json:"recommended"`
	FrequentlyBought []ProductVolume `json:"frequently_bought"`
	Opportunities    []string        `json:"opportunities"`
}

// Recommend derives cohort-based product suggestions for one customer. Peers
// are the profiles sharing the target's business type and zone (the target
// included when it matches itself); the opportunity list holds products sold
// to anyone that the target never bought, in first-seen order. Empty lists
// are valid outcomes, not errors.
func Recommend(customerID string, profiles []CustomerProfile, orders []OrderRecord) (*Recommendation, error) {
	var target *CustomerProfile
	for i := range profiles {
		if profiles[i].CustomerID == customerID {
			target = &profiles[i]
			break
		}
	}
	if target == nil {
		return nil, ErrCustomerNotFound
	}

	peers := map[string]bool{}
	for _, profile := range profiles {
		if profile.BusinessType == target.BusinessType && profile.Zone == target.Zone {
			peers[profile.CustomerID] = true
		}
	}

	var peerOrders, ownOrders []OrderRecord
	owned := map[string]bool{}
	for _, order := range orders {
		if peers[order.CustomerID] {
			peerOrders = append(peerOrders, order)
		}
		if order.CustomerID == customerID {
			ownOrders = append(ownOrders, order)
			owned[order.Product] = true
		}
	}

	opportunities := []string{}
	seen := map[string]bool{}
	for _, order := range orders {
		if seen[order.Product] || owned[order.Product] {
			continue
		}
		seen[order.Product] = true
		opportunities = append(opportunities, order.Product)
		if len(opportunities) == recommendationSize {
			break
		}
	}

	return &Recommendation{
		CustomerID:       customerID,
		Recommended:      topProducts(productVolumes(peerOrders), recommendationSize),
		FrequentlyBought: topProducts(productVolumes(ownOrders), recommendationSize),
		Opportunities:    opportunities,
	}, nil
}
