package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifier_Classify_Greeting(t *testing.T) {
	c := NewClassifier()

	result := c.Classify("Hello there!", false)

	assert.Equal(t, []string{"greeting"}, result.QueryTypes)
	assert.Equal(t, CategoryGeneral, result.RoutingCategory)
	assert.InDelta(t, 0.75, result.Confidence, 0.001)
}

func TestClassifier_Classify_FuelEconomy(t *testing.T) {
	c := NewClassifier()

	result := c.Classify("What's the fuel economy like? Is it efficient?", false)

	assert.Contains(t, result.QueryTypes, "fuel_economy")
	assert.Equal(t, CategoryAutomotiveSpecific, result.RoutingCategory)
	assert.GreaterOrEqual(t, result.Confidence, 0.6)
}

func TestClassifier_Classify_MultipleLabels(t *testing.T) {
	c := NewClassifier()

	result := c.Classify("How does the horsepower compare to the price?", false)

	assert.Contains(t, result.QueryTypes, "specs")
	assert.Contains(t, result.QueryTypes, "comparison")
	assert.Contains(t, result.QueryTypes, "price")
	// Label order follows the declaration order of the pattern table.
	assert.Equal(t, "specs", result.Primary())
}

func TestClassifier_Classify_ConfidenceCappedAt095(t *testing.T) {
	c := NewClassifier()

	result := c.Classify("compare the specs price performance safety mpg fuel economy features", false)

	assert.InDelta(t, 0.95, result.Confidence, 0.001)
}

func TestClassifier_Classify_NoMatchFallsBackToGeneral(t *testing.T) {
	c := NewClassifier()

	result := c.Classify("zxqv unparseable gibberish", false)

	assert.Equal(t, []string{"general"}, result.QueryTypes)
	assert.Equal(t, CategoryGeneral, result.RoutingCategory)
	assert.InDelta(t, 0.3, result.Confidence, 0.001)
}

func TestClassifier_Classify_EmptyQuery(t *testing.T) {
	c := NewClassifier()

	result := c.Classify("", false)

	assert.NotEmpty(t, result.QueryTypes)
	assert.Equal(t, []string{"general"}, result.QueryTypes)
}

func TestClassifier_Classify_ContextualNeedsVehicle(t *testing.T) {
	c := NewClassifier()

	withVehicle := c.Classify("What do you think of this car, would you recommend it?", true)
	withoutVehicle := c.Classify("What do you think of this car, would you recommend it?", false)

	assert.Equal(t, CategoryAutomotiveContextual, withVehicle.RoutingCategory)
	assert.Equal(t, CategoryGeneral, withoutVehicle.RoutingCategory)
}

func TestClassifier_Classify_SpecificWinsOverContextual(t *testing.T) {
	c := NewClassifier()

	result := c.Classify("Would you recommend it for its safety?", true)

	assert.Equal(t, CategoryAutomotiveSpecific, result.RoutingCategory)
}

func TestClassifier_Classify_CaseInsensitive(t *testing.T) {
	c := NewClassifier()

	lower := c.Classify("what is the mpg", false)
	upper := c.Classify("WHAT IS THE MPG", false)

	assert.Equal(t, lower, upper)
}

func TestClassification_Has(t *testing.T) {
	c := Classification{QueryTypes: []string{"greeting", "price"}}

	assert.True(t, c.Has("price"))
	assert.False(t, c.Has("specs"))
}
