// internal/domain/models/metric.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Metric is one year of sustainability measurements for one user.
// (UserID, Year) is the natural key; the metrics collection carries a unique
// index on it.
type Metric struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID primitive.ObjectID `bson:"user_id" json:"user"`
	Year   int                `bson:"year" json:"year"`

	CarbonEmissions   float64 `bson:"carbon_emissions" json:"carbonEmissions"`     // tons CO2e
	EnergyConsumption float64 `bson:"energy_consumption" json:"energyConsumption"` // MWh
	WasteDistributed  float64 `bson:"waste_distributed" json:"wasteDistributed"`   // tons
	WaterUsage        float64 `bson:"water_usage" json:"waterUsage"`               // kiloliters

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// Measurements is the set of values an upsert writes for a (user, year).
type Measurements struct {
	CarbonEmissions   float64
	EnergyConsumption float64
	WasteDistributed  float64
	WaterUsage        float64
}
