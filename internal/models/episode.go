package models

// Episode represents a single episode belonging to a show
type Episode struct {
	ID     int        `json:"id"`
	Name   string     `json:"name"`
	Season FlexNumber `json:"season"`
	Number FlexNumber `json:"number"`
}
