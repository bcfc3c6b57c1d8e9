package models

import "time"

type Policy struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Content     string    `json:"content"`
	Tags        []string  `json:"tags"`
	LastUpdated time.Time `json:"last_updated"`
}
