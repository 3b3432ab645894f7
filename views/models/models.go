package models

import "time"

// StatsView holds the four stat-card counters for template rendering.
type StatsView struct {
	TotalQuotes     int
	OpenWorkOrders  int
	LowStockItems   int
	TodaysShipments int
}

// ItemView is a row in the recent-orders or low-stock panels.
type ItemView struct {
	ID     string
	Name   string
	Status string
}

// ProjectView represents a project for template rendering.
type ProjectView struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// ProjectDetailView adds the rendered notes HTML for the detail modal.
type ProjectDetailView struct {
	ProjectView
	NotesHTML string
}

// DashboardView is everything the dashboard page renders.
type DashboardView struct {
	Stats        StatsView
	StatsDown    bool   // all stats calls failed
	LoadError    string // project list failed to load
	RecentOrders []ItemView
	LowStock     []ItemView
	Projects     []ProjectView
	UserEmail    string
}
