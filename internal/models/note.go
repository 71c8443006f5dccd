// Package models defines the domain types for memo.
package models

import "time"

// DefaultTitle is used when a note is created with a blank title.
const DefaultTitle = "無題のメモ"

// Note is a user-authored memo. The JSON shape matches the records the
// browser app kept under the "memos" key, so existing data loads as-is.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Favorite  bool      `json:"favorite"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Touch sets UpdatedAt to now, never earlier than CreatedAt.
func (n *Note) Touch(now time.Time) {
	if now.Before(n.CreatedAt) {
		now = n.CreatedAt
	}
	n.UpdatedAt = now
}
