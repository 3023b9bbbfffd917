package models

import "time"

// Warehouse is a storage location holding stock lots.
type Warehouse struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	Version     int64     `bson:"version" json:"version"`
	Name        string    `bson:"name" json:"name"`
	Location    string    `bson:"location,omitempty" json:"location,omitempty"`
	Capacity    float64   `bson:"capacity,omitempty" json:"capacity,omitempty"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}
