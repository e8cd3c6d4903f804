package models

// Show represents a TV show as presented to users
type Show struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Summary string `json:"summary"` // May contain HTML markup as provided by TVMaze
	Image   string `json:"image"`   // Medium image URL, or the configured default when TVMaze has none
}
