package insights

import "time"

// Segment classifies a customer by purchase recency.
type Segment string

const (
	SegmentActive     Segment = "Active"
	SegmentDiminished Segment = "Diminished"
	SegmentInactive   Segment = "Inactive"
)

// Placeholder coordinates assigned when the customer sheet carries no usable
// lat/lon columns.
const (
	DefaultLat = 18.5
	DefaultLon = -69.9
)

// OrderRecord is one order line item. Period and Amount are derived at load
// time; records are immutable once loaded.
type OrderRecord struct {
	CustomerID  string    `json:"customer_id"`
	Product     string    `json:"product"`
	ProductCode string    `json:"product_code"`
	Quantity    int       `json:"quantity"`
	UnitPrice   float64   `json:"unit_price"`
	OrderDate   time.Time `json:"order_date"`
	Period      string    `json:"period"`
	Amount      float64   `json:"amount"`
}

// DeliveryRecord is one delivered line/order.
type DeliveryRecord struct {
	CustomerID   string    `json:"customer_id"`
	DeliveryDate time.Time `json:"delivery_date"`
	Period       string    `json:"period"`
}

// CustomerRecord is master reference data, one row per customer.
type CustomerRecord struct {
	CustomerID   string  `json:"customer_id"`
	Name         string  `json:"name"`
	Phone        string  `json:"phone"`
	Address      string  `json:"address"`
	BusinessType string  `json:"business_type"`
	Zone         string  `json:"zone"`
	Attendant    string  `json:"attendant"`
	Lat          float64 `json:"lat"`
	Lon          float64 `json:"lon"`
}

// CustomerProfile is the enriched per-customer row the pipeline derives. A
// zero LastOrderDate means the customer has no order history.
type CustomerProfile struct {
	CustomerID            string    `json:"customer_id"`
	Name                  string    `json:"name"`
	Phone                 string    `json:"phone"`
	Address               string    `json:"address"`
	BusinessType          string    `json:"business_type"`
	Zone                  string    `json:"zone"`
	Attendant             string    `json:"attendant"`
	Lat                   float64   `json:"lat"`
	Lon                   float64   `json:"lon"`
	LastOrderDate         time.Time `json:"last_order_date"`
	DominantPeriod        string    `json:"dominant_period"`
	TotalSpend            float64   `json:"total_spend"`
	AverageTicket         float64   `json:"average_ticket"`
	OrderCount            int       `json:"order_count"`
	DeliveredCount        int       `json:"delivered_count"`
	RecencyDays           int       `json:"recency_days"`
	DeliveryEffectiveness float64   `json:"delivery_effectiveness"`
	Segment               Segment   `json:"segment"`
	ProjectedAnnualValue  float64   `json:"projected_annual_value"`
}

// ProductVolume is a product with its summed ordered quantity.
type ProductVolume struct {
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
}

// DateRange holds the extreme observed dates of one record set.
type DateRange struct {
	Min time.Time `json:"min"`
	Max time.Time `json:"max"`
}

func (r DateRange) extend(value time.Time) DateRange {
	if r.Min.IsZero() || value.Before(r.Min) {
		r.Min = value
	}
	if r.Max.IsZero() || value.After(r.Max) {
		r.Max = value
	}
	return r
}

// Tables are the three validated source record sets.
type Tables struct {
	Orders     []OrderRecord
	Deliveries []DeliveryRecord
	Customers  []CustomerRecord
}

// Result is the output of one full pipeline run. Orders and Deliveries are
// carried through because the recommender consumes the raw order set.
type Result struct {
	AsOf           time.Time         `json:"as_of"`
	Profiles       []CustomerProfile `json:"profiles"`
	TopProducts    []ProductVolume   `json:"top_products"`
	BottomProducts []ProductVolume   `json:"bottom_products"`
	Orders         []OrderRecord     `json:"orders"`
	Deliveries     []DeliveryRecord  `json:"deliveries"`
	OrderDates     DateRange         `json:"order_dates"`
	DeliveryDates  DateRange         `json:"delivery_dates"`
}
