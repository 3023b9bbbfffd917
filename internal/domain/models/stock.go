package models

import "time"

// StockStatus enumerates the receiving states of a stock item.
type StockStatus string

const (
	// StockPurchased marks an item that has been bought but not yet delivered.
	StockPurchased StockStatus = "purchased"
	// StockReceived marks an item available in a warehouse.
	StockReceived StockStatus = "received"
)

// Valid reports whether s is a known stock status.
func (s StockStatus) Valid() bool {
	return s == StockPurchased || s == StockReceived
}

// Stock is an inventory lot of a single product held in a warehouse.
type Stock struct {
	ID           string      `bson:"_id,omitempty" json:"id"`
	Version      int64       `bson:"version" json:"version"`
	ProductName  string      `bson:"product_name" json:"product_name"`
	Quantity     float64     `bson:"quantity" json:"quantity"`
	Unit         string      `bson:"unit" json:"unit"`
	WarehouseID  string      `bson:"warehouse_id,omitempty" json:"warehouse_id,omitempty"`
	Status       StockStatus `bson:"status" json:"status"`
	Category     string      `bson:"category,omitempty" json:"category,omitempty"`
	PurchaseDate time.Time   `bson:"purchase_date" json:"purchase_date"`
	ExpiryDate   *time.Time  `bson:"expiry_date,omitempty" json:"expiry_date,omitempty"`
	CreatedAt    time.Time   `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time   `bson:"updated_at" json:"updated_at"`
}
