package domain

// DashboardSummary is the figures shown on the home page.
type DashboardSummary struct {
	TotalOrders    int     `json:"total_orders"`
	PendingOrders  int     `json:"pending_orders"`
	TotalRevenue   float64 `json:"total_revenue"`
	LowStockItems  int     `json:"low_stock_items"`
	TotalCustomers int     `json:"total_customers"`
	TotalProducts  int     `json:"total_products"`
}

// AdminStats is the figures shown on the admin dashboard.
type AdminStats struct {
	TotalUsers     int `json:"total_users"`
	ActiveUsers    int `json:"active_users"`
	AdminUsers     int `json:"admin_users"`
	TotalOrders    int `json:"total_orders"`
	TotalProducts  int `json:"total_products"`
	TotalCustomers int `json:"total_customers"`
}
