package models

import "time"

// Field is a cultivated plot of land subject to fumigation tasks.
type Field struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	Version   int64     `bson:"version" json:"version"`
	Name      string    `bson:"name" json:"name"`
	Location  string    `bson:"location,omitempty" json:"location,omitempty"`
	Size      float64   `bson:"size,omitempty" json:"size,omitempty"`
	CropType  string    `bson:"crop_type,omitempty" json:"crop_type,omitempty"`
	Status    string    `bson:"status,omitempty" json:"status,omitempty"`
	RiskLevel string    `bson:"risk_level,omitempty" json:"risk_level,omitempty"`
	Pests     []string  `bson:"pests,omitempty" json:"pests,omitempty"`
	Workers   []string  `bson:"workers,omitempty" json:"workers,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
