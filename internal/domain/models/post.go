package models

import "time"

// Post is the stored blog post row.
type Post struct {
	ID           int64
	Title        string
	Body         string
	Author       string
	LastModified time.Time
}
