package models

import "time"

// CartSnapshotEvent carries a whole cart between storefront processes.
type CartSnapshotEvent struct {
	ID        string     `json:"id"`
	Origin    string     `json:"origin"`
	Revision  int64      `json:"revision"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"created_at"`
}
