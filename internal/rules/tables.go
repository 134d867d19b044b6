package rules

// Knowledge tables backing the template responder. Keys are lowercase and
// matched against normalized vehicle attributes.

var carFeatures = map[string][]string{
	"sedan": {
		"comfortable seating for five passengers",
		"a spacious trunk for daily errands",
		"balanced ride quality tuned for commuting",
		"good all-around visibility",
	},
	"suv": {
		"elevated seating with a commanding view of the road",
		"flexible cargo space with folding rear seats",
		"available all-wheel drive for rough weather",
		"generous passenger room in both rows",
	},
	"crossover": {
		"car-like handling with SUV practicality",
		"easy step-in height for passengers",
		"versatile cargo configurations",
	},
	"pickup": {
		"a durable bed for hauling cargo",
		"strong towing capability",
		"a high-strength frame built for work",
	},
	"coupe": {
		"sporty styling with a lower stance",
		"performance-tuned suspension",
		"a driver-focused cockpit",
	},
	"diesel": {
		"strong low-end torque for towing",
		"excellent highway fuel range",
	},
	"hybrid": {
		"seamless switching between gas and electric power",
		"regenerative braking that recovers energy",
		"excellent city fuel economy",
	},
	"electric": {
		"instant torque from a standstill",
		"near-silent operation",
		"home charging convenience",
	},
	"awd": {
		"confident traction in rain and snow",
		"stable cornering on loose surfaces",
	},
	"safety": {
		"automatic emergency braking",
		"lane-keeping assistance",
		"adaptive cruise control",
	},
	"luxury": {
		"premium cabin materials",
		"advanced driver comfort features",
	},
}

var engineInfo = map[string]string{
	"v6":           "The V6 engine offers a smooth balance of power and efficiency.",
	"v8":           "The V8 engine delivers strong acceleration and a distinctive sound.",
	"i4":           "The inline-four engine is compact, efficient and easy to maintain.",
	"turbocharged": "The turbocharger adds extra power without sacrificing everyday efficiency.",
	"diesel":       "The diesel engine provides exceptional torque and long-haul economy.",
	"hybrid":       "The hybrid powertrain pairs a gas engine with electric assistance for excellent economy.",
	"electric":     "The electric motor delivers instant, silent acceleration with zero tailpipe emissions.",
}

var transmissionInfo = map[string]string{
	"automatic":    "The automatic transmission shifts smoothly without driver input.",
	"manual":       "The manual transmission gives the driver full control over gear selection.",
	"cvt":          "The continuously variable transmission keeps the engine in its most efficient range.",
	"dual-clutch":  "The dual-clutch transmission delivers rapid, seamless gear changes.",
	"single-speed": "Electric vehicles use a single-speed gearbox, so there is no shifting at all.",
}

var specsExplanation = map[string]string{
	"mpg":              "MPG measures how many miles the vehicle travels per gallon of fuel.",
	"hp":               "Horsepower indicates the engine's peak power output.",
	"torque":           "Torque measures twisting force, which you feel as pulling power.",
	"0-60":             "The 0-60 mph time reflects how quickly the vehicle accelerates from a stop.",
	"cargo":            "Cargo volume tells you how much luggage space is available.",
	"towing":           "Towing capacity is the maximum trailer weight the vehicle can pull.",
	"ground clearance": "Ground clearance is the space between the chassis and the road.",
}

var manufacturerInsights = map[string]string{
	"bmw":    "BMW is known for sporty handling and driver-focused engineering.",
	"toyota": "Toyota has a long-standing reputation for reliability and resale value.",
	"honda":  "Honda vehicles are praised for efficiency and practical design.",
	"ford":   "Ford combines American durability with strong truck and performance heritage.",
	"tesla":  "Tesla leads in electric range and over-the-air software updates.",
}

var modelInsights = map[string]string{
	"x5":      "The X5 blends luxury appointments with genuine utility.",
	"camry":   "The Camry is one of the best-selling sedans thanks to its dependability.",
	"f-150":   "The F-150 has been America's best-selling truck for decades.",
	"model 3": "The Model 3 made long-range electric driving mainstream.",
}
