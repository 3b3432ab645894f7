package statsapi

import "fmt"

// Stats are the aggregate counters rendered as the dashboard's stat cards.
type Stats struct {
	TotalQuotes     int `json:"totalQuotes"`
	OpenWorkOrders  int `json:"openWorkOrders"`
	LowStockItems   int `json:"lowStockItems"`
	TodaysShipments int `json:"todaysShipments"`
}

func (s Stats) validate() error {
	for _, c := range []struct {
		field string
		value int
	}{
		{"totalQuotes", s.TotalQuotes},
		{"openWorkOrders", s.OpenWorkOrders},
		{"lowStockItems", s.LowStockItems},
		{"todaysShipments", s.TodaysShipments},
	} {
		if c.value < 0 {
			return &ValidationError{Path: "/dashboard/stats", Reason: fmt.Sprintf("%s is negative", c.field)}
		}
	}
	return nil
}

// RecentItem is a display record shared by the recent-orders and low-stock
// lists. The two backends return overlapping shapes; fields beyond this
// superset are ignored.
type RecentItem struct {
	ID        string `json:"id"`
	Name      string `json:"name,omitempty"`
	Status    string `json:"status,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// ValidationError reports a response that decoded but failed the client's
// schema checks. It is a rejection like any transport failure, but typed so
// callers can tell malformed data from an unreachable backend.
type ValidationError struct {
	Path   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid response from %s: %s", e.Path, e.Reason)
}
