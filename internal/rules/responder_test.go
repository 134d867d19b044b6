package rules

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/astra-ai/astra/libs/chat-engine/internal/classify"
	"github.com/astra-ai/astra/libs/chat-engine/internal/storage"
)

func seededResponder() *Responder {
	return NewResponder(rand.New(rand.NewSource(42)))
}

func testVehicle() *storage.Vehicle {
	return &storage.Vehicle{
		ID:           1,
		Manufacturer: "Toyota",
		Model:        "Camry",
		Year:         2023,
		Price:        28855,
		EngineInfo:   "2.5L I4",
		Transmission: "automatic",
		FuelType:     "gasoline",
		MPG:          32,
		BodyType:     "sedan",
	}
}

func TestResponder_FuelEconomy_AboveAverage(t *testing.T) {
	r := seededResponder()
	v := testVehicle()
	v.MPG = 36

	resp := r.FuelEconomy(v)

	assert.Contains(t, resp, "36 MPG")
	assert.Contains(t, resp, "above average")
}

func TestResponder_FuelEconomy_Bands(t *testing.T) {
	r := seededResponder()

	cases := []struct {
		mpg      float64
		expected string
	}{
		{36, "above average for its class"},
		{27, "about average for its class"},
		{19, "balances fuel economy with performance"},
	}
	for _, tc := range cases {
		v := testVehicle()
		v.MPG = tc.mpg
		assert.Contains(t, r.FuelEconomy(v), tc.expected)
	}
}

func TestResponder_FuelEconomy_Electric(t *testing.T) {
	r := seededResponder()
	v := testVehicle()
	v.Manufacturer = "Tesla"
	v.Model = "Model 3"
	v.FuelType = "electric"
	v.MPG = 132

	resp := r.FuelEconomy(v)

	assert.Contains(t, resp, "MPGe")
	assert.NotContains(t, resp, "gets about 132 MPG,")
}

func TestResponder_FuelEconomy_DieselCaveat(t *testing.T) {
	r := seededResponder()
	v := testVehicle()
	v.FuelType = "diesel"
	v.MPG = 41

	resp := r.FuelEconomy(v)

	assert.Contains(t, resp, "diesel")
	assert.Contains(t, resp, "highway")
}

func TestResponder_FuelEconomy_NoFigure(t *testing.T) {
	r := seededResponder()
	v := testVehicle()
	v.MPG = 0

	resp := r.FuelEconomy(v)

	assert.Contains(t, resp, "don't have fuel economy figures")
	assert.Contains(t, resp, "2023 Toyota Camry")
}

func TestResponder_Specs_FormatsPrice(t *testing.T) {
	r := seededResponder()

	resp := r.Specs(testVehicle())

	assert.Contains(t, resp, "- Price: $28,855")
	assert.Contains(t, resp, "- Engine: 2.5L I4")
	assert.Contains(t, resp, "- Fuel economy: 32 MPG")
	assert.Contains(t, resp, "compare these numbers")
}

func TestResponder_Specs_TransmissionNote(t *testing.T) {
	r := seededResponder()
	v := testVehicle()
	v.Transmission = "CVT"

	resp := r.Specs(v)

	assert.Contains(t, resp, "continuously variable transmission")
}

func TestResponder_Features_IncludesInsights(t *testing.T) {
	r := seededResponder()
	v := testVehicle()

	resp := r.Features(v)

	assert.Contains(t, resp, "2023 Toyota Camry")
	assert.Contains(t, resp, manufacturerInsights["toyota"])
	assert.Contains(t, resp, modelInsights["camry"])
	assert.Contains(t, resp, "particular aspect")
	// No more than three body-type bullets.
	assert.LessOrEqual(t, strings.Count(resp, "\n- "), 3)
}

func TestResponder_Features_DeterministicWithSeed(t *testing.T) {
	first := NewResponder(rand.New(rand.NewSource(7))).Features(testVehicle())
	second := NewResponder(rand.New(rand.NewSource(7))).Features(testVehicle())

	assert.Equal(t, first, second)
}

func TestResponder_Features_PadsThinEntries(t *testing.T) {
	r := seededResponder()
	v := &storage.Vehicle{
		Manufacturer: "Obscure",
		Model:        "Unknown",
		Year:         2020,
		BodyType:     "van",
	}

	resp := r.Features(v)

	assert.Contains(t, resp, "Most modern trims also offer")
}

func TestResponder_Respond_GreetingWithoutVehicle(t *testing.T) {
	r := seededResponder()
	c := classify.Classification{QueryTypes: []string{"greeting"}, RoutingCategory: classify.CategoryGeneral}

	resp := r.Respond(c, nil)

	assert.Contains(t, resp, "Hello")
	assert.Contains(t, resp, "automotive assistant")
}

func TestResponder_Respond_GreetingWithVehicle(t *testing.T) {
	r := seededResponder()
	c := classify.Classification{QueryTypes: []string{"greeting"}}

	resp := r.Respond(c, testVehicle())

	assert.Contains(t, resp, "2023 Toyota Camry")
}

func TestResponder_Respond_FallsBackToGeneric(t *testing.T) {
	r := seededResponder()
	c := classify.Classification{QueryTypes: []string{"general"}}

	resp := r.Respond(c, nil)

	assert.Contains(t, resp, "general automotive question")
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "28,855", formatPrice(28855))
	assert.Equal(t, "1,234,567", formatPrice(1234567))
	assert.Equal(t, "900", formatPrice(900))
}
