// Package classify provides rule-based classification of user queries into
// automotive topic labels and coarse routing categories.
package classify

import (
	"regexp"
	"strings"
)

// Routing categories consumed by the chat router when choosing a generation
// backend.
const (
	CategoryAutomotiveSpecific   = "automotive_specific"
	CategoryAutomotiveContextual = "automotive_contextual"
	CategoryGeneral              = "general"
)

// Classification is the result of classifying a single user query.
type Classification struct {
	QueryTypes      []string `json:"query_types"`
	RoutingCategory string   `json:"routing_category"`
	Confidence      float64  `json:"confidence"`
}

// Primary returns the highest-priority query type.
func (c Classification) Primary() string {
	if len(c.QueryTypes) == 0 {
		return "general"
	}
	return c.QueryTypes[0]
}

// Has reports whether the classification includes the given query type.
func (c Classification) Has(queryType string) bool {
	for _, t := range c.QueryTypes {
		if t == queryType {
			return true
		}
	}
	return false
}

// labelPattern pairs a query-type label with its keyword pattern. Order
// matters: labels are evaluated in declaration order and matches are appended
// in that order.
type labelPattern struct {
	label   string
	pattern *regexp.Regexp
}

var labelPatterns = []labelPattern{
	{"greeting", regexp.MustCompile(`\b(hello|hi|hey|greetings|good morning|good afternoon|good evening|howdy)\b`)},
	{"farewell", regexp.MustCompile(`\b(bye|goodbye|farewell|see you|thanks|thank you|cheers)\b`)},
	{"features", regexp.MustCompile(`\b(feature|features|option|options|equipment|come with|include|included)\b`)},
	{"specs", regexp.MustCompile(`\b(spec|specs|specification|specifications|horsepower|engine|transmission|torque|dimensions|weight)\b`)},
	{"fuel_economy", regexp.MustCompile(`\b(fuel|mpg|mileage|gas|economy|efficient|efficiency|consumption)\b`)},
	{"performance", regexp.MustCompile(`\b(performance|fast|speed|acceleration|handling|0-60|quick|powerful)\b`)},
	{"safety", regexp.MustCompile(`\b(safety|safe|airbag|airbags|crash|collision|rating|assist|braking)\b`)},
	{"interior", regexp.MustCompile(`\b(interior|seats|seating|cabin|dashboard|comfort|legroom|upholstery)\b`)},
	{"exterior", regexp.MustCompile(`\b(exterior|color|colors|paint|design|style|styling|looks|body)\b`)},
	{"reliability", regexp.MustCompile(`\b(reliability|reliable|durable|durability|last|lasting|maintenance|repairs)\b`)},
	{"comparison", regexp.MustCompile(`\b(compare|comparison|versus|vs|better|difference|differences|or)\b`)},
	{"price", regexp.MustCompile(`\b(price|cost|expensive|cheap|affordable|value|worth|budget)\b`)},
	{"recommendation", regexp.MustCompile(`\b(recommend|recommendation|suggest|suggestion|should i|best|advice)\b`)},
	{"technology", regexp.MustCompile(`\b(technology|tech|infotainment|screen|navigation|bluetooth|carplay|android auto)\b`)},
	{"opinion", regexp.MustCompile(`\b(think|opinion|feel|review|experience|like|love|hate)\b`)},
}

// specificTypes are answerable from stored vehicle attributes alone.
var specificTypes = map[string]bool{
	"features":     true,
	"specs":        true,
	"fuel_economy": true,
	"performance":  true,
	"safety":       true,
	"interior":     true,
	"exterior":     true,
	"reliability":  true,
	"technology":   true,
}

// contextualTypes need judgment grounded in a vehicle record.
var contextualTypes = map[string]bool{
	"opinion":        true,
	"recommendation": true,
	"comparison":     true,
	"price":          true,
}

// Classifier performs keyword classification of chat queries.
type Classifier struct{}

// NewClassifier creates a query classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify determines the query types, routing category and confidence for a
// user message. The optional hasVehicle flag indicates whether a vehicle
// record accompanies the query; it influences only the routing category,
// never the labels. The returned QueryTypes slice is never empty.
func (c *Classifier) Classify(query string, hasVehicle bool) Classification {
	normalized := strings.ToLower(strings.TrimSpace(query))

	var types []string
	matchCount := 0
	for _, lp := range labelPatterns {
		matches := lp.pattern.FindAllString(normalized, -1)
		if len(matches) > 0 {
			types = append(types, lp.label)
			matchCount += distinctCount(matches)
		}
	}

	if len(types) == 0 {
		return Classification{
			QueryTypes:      []string{"general"},
			RoutingCategory: CategoryGeneral,
			Confidence:      0.3,
		}
	}

	confidence := 0.6 + float64(matchCount)*0.15
	if confidence > 0.95 {
		confidence = 0.95
	}

	return Classification{
		QueryTypes:      types,
		RoutingCategory: deriveCategory(types, hasVehicle),
		Confidence:      confidence,
	}
}

// deriveCategory maps the label set onto a routing category. Specific labels
// win over contextual ones; contextual labels only count when a vehicle
// record is present.
func deriveCategory(types []string, hasVehicle bool) string {
	for _, t := range types {
		if specificTypes[t] {
			return CategoryAutomotiveSpecific
		}
	}
	if hasVehicle {
		for _, t := range types {
			if contextualTypes[t] {
				return CategoryAutomotiveContextual
			}
		}
	}
	return CategoryGeneral
}

func distinctCount(matches []string) int {
	seen := make(map[string]bool, len(matches))
	for _, m := range matches {
		seen[m] = true
	}
	return len(seen)
}
