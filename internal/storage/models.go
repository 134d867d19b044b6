// Package storage provides database models and repositories for the Chat Engine.
package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FuelType represents a vehicle's fuel type.
type FuelType string

const (
	FuelTypeGasoline FuelType = "gasoline"
	FuelTypeDiesel   FuelType = "diesel"
	FuelTypeHybrid   FuelType = "hybrid"
	FuelTypeElectric FuelType = "electric"
)

// Vehicle is a single car record in the inventory.
type Vehicle struct {
	ID           int64     `json:"id"`
	Manufacturer string    `json:"manufacturer"`
	Model        string    `json:"model"`
	Year         int       `json:"year"`
	Price        float64   `json:"price"`
	EngineInfo   string    `json:"engine_info"`
	Transmission string    `json:"transmission"`
	FuelType     string    `json:"fuel_type"`
	MPG          float64   `json:"mpg"`
	BodyType     string    `json:"body_type"`
	CreatedAt    time.Time `json:"created_at"`
}

// FullName returns the conventional "Year Manufacturer Model" form.
func (v *Vehicle) FullName() string {
	return fmt.Sprintf("%d %s %s", v.Year, v.Manufacturer, v.Model)
}

// IsElectric reports whether the vehicle runs on electricity alone.
func (v *Vehicle) IsElectric() bool {
	return strings.EqualFold(v.FuelType, string(FuelTypeElectric))
}

// Field is one attribute of a vehicle for prompt rendering.
type Field struct {
	Key   string
	Value string
}

// Fields returns the vehicle's attributes in a fixed order with
// human-readable keys. Internal bookkeeping fields (id, created_at) are
// excluded.
func (v *Vehicle) Fields() []Field {
	fields := []Field{
		{"manufacturer", v.Manufacturer},
		{"model", v.Model},
		{"year", fmt.Sprintf("%d", v.Year)},
	}
	if v.Price > 0 {
		fields = append(fields, Field{"price", fmt.Sprintf("%.0f", v.Price)})
	}
	if v.EngineInfo != "" {
		fields = append(fields, Field{"engine_info", v.EngineInfo})
	}
	if v.Transmission != "" {
		fields = append(fields, Field{"transmission", v.Transmission})
	}
	if v.FuelType != "" {
		fields = append(fields, Field{"fuel_type", v.FuelType})
	}
	if v.MPG > 0 {
		fields = append(fields, Field{"mpg", trimFloat(v.MPG)})
	}
	if v.BodyType != "" {
		fields = append(fields, Field{"body_type", v.BodyType})
	}
	return fields
}

func trimFloat(f float64) string {
	s := fmt.Sprintf("%.1f", f)
	return strings.TrimSuffix(s, ".0")
}

// Review is a stored or generated review of a vehicle.
type Review struct {
	ID         uuid.UUID `json:"id"`
	VehicleID  int64     `json:"car_id"`
	Title      string    `json:"review_title"`
	Text       string    `json:"review_text"`
	Rating     float64   `json:"rating"`
	Author     string    `json:"author"`
	Pros       []string  `json:"pros,omitempty"`
	Cons       []string  `json:"cons,omitempty"`
	ReviewDate time.Time `json:"review_date"`
}
