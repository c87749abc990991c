package models

// StatsBucket is one group of expenses sharing a grouping key: a calendar
// day/month/year, or a category name when no period grouping applies.
// Unused key fields stay zero and are omitted from JSON.
type StatsBucket struct {
	Year     int     `json:"year,omitempty"`
	Month    int     `json:"month,omitempty"`
	Day      int     `json:"day,omitempty"`
	Category string  `json:"category,omitempty"`
	Total    float64 `json:"total"`
	Count    int     `json:"count"`
}
