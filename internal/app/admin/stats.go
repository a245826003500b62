package admin

import "github.com/jonasahlin/matbit/internal/domain"

// Stats is the dashboard summary folded from the cached datasets.
type Stats struct {
	TotalUsers  int `json:"total_users"`
	ActiveUsers int `json:"active_users"`

	TotalFoods     int `json:"total_foods"`
	AvailableFoods int `json:"available_foods"`

	TotalOrders    int                   `json:"total_orders"`
	OrdersByStatus map[domain.Status]int `json:"orders_by_status"`

	// CompletedRevenue is money already earned, PendingIncome is money on
	// orders still waiting to be picked up by the kitchen (status pending
	// only), PotentialIncome is their sum. Preparing, ready and cancelled
	// orders count toward none of them.
	CompletedRevenue float64 `json:"completed_revenue"`
	PendingIncome    float64 `json:"pending_income"`
	PotentialIncome  float64 `json:"potential_income"`
}

// Stats folds the cached users, orders and foods into dashboard numbers.
// It reads whatever the cache currently holds and never triggers a fetch.
func (s *Service) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := Stats{
		TotalUsers:     len(s.cachedUsers),
		TotalFoods:     len(s.cachedFoods),
		TotalOrders:    len(s.cachedOrders),
		OrdersByStatus: make(map[domain.Status]int),
	}

	for _, u := range s.cachedUsers {
		if u.Active {
			stats.ActiveUsers++
		}
	}
	for _, f := range s.cachedFoods {
		if f.Available {
			stats.AvailableFoods++
		}
	}

	completed := 0.0
	pending := 0.0
	for _, o := range s.cachedOrders {
		stats.OrdersByStatus[o.Status]++
		switch o.Status {
		case domain.StatusCompleted:
			completed += o.FinalTotal
		case domain.StatusPending:
			pending += o.FinalTotal
		}
	}
	stats.CompletedRevenue = domain.Round2(completed)
	stats.PendingIncome = domain.Round2(pending)
	stats.PotentialIncome = domain.Round2(completed + pending)

	return stats
}
