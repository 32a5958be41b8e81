package models

// TournamentBreakdown is one (game, format) row of the admin dashboard.
type TournamentBreakdown struct {
	TournamentKey
	Counts         StatusCounts `json:"counts"`
	Total          int          `json:"total"`
	MaxSlots       int          `json:"maxSlots"`
	AvailableSlots int          `json:"availableSlots"`
}

type DashboardStats struct {
	TotalRegistrations int                   `json:"totalRegistrations"`
	ApprovedCount      int                   `json:"approvedCount"`
	PendingCount       int                   `json:"pendingCount"`
	RejectedCount      int                   `json:"rejectedCount"`
	TotalSlots         int                   `json:"totalSlots"`
	AvailableSlots     int                   `json:"availableSlots"`
	ActiveTournaments  int                   `json:"activeTournaments"`
	Breakdown          []TournamentBreakdown `json:"gameBreakdown"`
}
