package model

import "time"

// Page is a standalone markdown page such as "about" or "privacy".
type Page struct {
	Title       string
	Slug        string
	Description string
	HTMLContent string
	LastUpdated *time.Time
}
