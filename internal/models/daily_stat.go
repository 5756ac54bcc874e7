package models

import "time"

// DailyStatSnapshot is the per-day change summary built by diffing active vessel ids
type DailyStatSnapshot struct {
	Date      string    `json:"date"` // 2006-01-02
	Total     int       `json:"total"`
	Added     int       `json:"added"`
	Removed   int       `json:"removed"`
	Updated   int       `json:"updated"` // ids present in both sets
	Baseline  bool      `json:"baseline,omitempty"`
	VesselIDs []int64   `json:"vessel_ids"`
	UpdatedAt time.Time `json:"updated_at"`
}

// VesselStatus is the sold/removed assessment for one vessel
type VesselStatus struct {
	VesselID int64  `json:"vessel_id"`
	IsActive bool   `json:"is_active"`
	IsSold   bool   `json:"is_sold"`
	Status   string `json:"status"`
}

// Facets are the distinct filter values across a full record list
type Facets struct {
	Builders   []string `json:"builders"`
	Categories []string `json:"categories"`
	Types      []string `json:"types"`
	Conditions []string `json:"conditions"`
}

// VesselCache is the refreshable list cache written when a run completes
type VesselCache struct {
	Vessels   []Vessel  `json:"vessels"`
	Facets    Facets    `json:"facets"`
	UpdatedAt time.Time `json:"updated_at"`
}
