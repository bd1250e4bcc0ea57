package models

// Business is one search hit. Read-only; never persisted.
type Business struct {
	Name     string  `json:"name"`
	Rating   float64 `json:"rating"`
	URL      string  `json:"url"`
	ImageURL string  `json:"image_url"`
}
