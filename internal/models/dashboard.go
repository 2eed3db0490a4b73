package models

type AdminDashboard struct {
	CoursesByStatus     map[string]int `json:"courses_by_status"`
	Students            int            `json:"students"`
	PendingRatings      int            `json:"pending_ratings"`
	PendingTransactions int            `json:"pending_transactions"`
	PendingPayments     int            `json:"pending_payments"`
	ApprovedRevenue     float64        `json:"approved_revenue"`
}

type StudentDashboard struct {
	Enrollments         []Enrollment   `json:"enrollments"`
	RatingsByStatus     map[string]int `json:"ratings_by_status"`
	PendingTransactions []Transaction  `json:"pending_transactions"`
}
