package model

// Announcement is a read-only notice published to everyone.
// Date is an ISO calendar date (YYYY-MM-DD).
type Announcement struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Date    string `json:"date"`
	Author  string `json:"author"`
}
