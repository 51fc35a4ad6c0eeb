package nlu

// Entity types produced by the providers. The attribute mapper owns the
// mapping from these to typed constraints.
const (
	EntityMake         = "make"
	EntityModel        = "model"
	EntityPriceMax     = "price_max"
	EntityPriceMin     = "price_min"
	EntityYearMin      = "year_min"
	EntityMileageMax   = "mileage_max"
	EntityFuelType     = "fuel_type"
	EntityBodyType     = "body_type"
	EntityTransmission = "transmission"
	EntityColor        = "color"
	EntityQuality      = "quality"
)

// knownMakes maps make names to their known models. Lookup keys are
// lowercase; values are the canonical forms the index stores.
var knownMakes = map[string][]string{
	"Toyota":     {"Camry", "Corolla", "RAV4", "Highlander", "Yaris", "Prius", "Supra", "Avensis", "Aygo"},
	"Honda":      {"Civic", "Accord", "CR-V", "Jazz", "HR-V"},
	"Ford":       {"Fiesta", "Focus", "Mustang", "Kuga", "Puma", "Mondeo", "Ranger"},
	"BMW":        {"1 Series", "3 Series", "5 Series", "7 Series", "X1", "X3", "X5", "M3", "M5", "i4", "iX"},
	"Mercedes":   {"A-Class", "C-Class", "E-Class", "S-Class", "GLA", "GLC", "GLE", "CLA"},
	"Audi":       {"A1", "A3", "A4", "A6", "Q2", "Q3", "Q5", "Q7", "e-tron", "TT"},
	"Volkswagen": {"Golf", "Polo", "Passat", "Tiguan", "T-Roc", "ID.3", "ID.4", "Touran"},
	"Nissan":     {"Micra", "Qashqai", "Juke", "Leaf", "X-Trail"},
	"Hyundai":    {"i10", "i20", "i30", "Tucson", "Kona", "Santa Fe", "Ioniq 5"},
	"Kia":        {"Picanto", "Ceed", "Sportage", "Sorento", "Niro", "EV6"},
	"Skoda":      {"Fabia", "Octavia", "Superb", "Kodiaq", "Karoq", "Enyaq"},
	"Seat":       {"Ibiza", "Leon", "Ateca", "Arona"},
	"Peugeot":    {"208", "308", "2008", "3008", "5008"},
	"Renault":    {"Clio", "Megane", "Captur", "Kadjar", "Zoe"},
	"Volvo":      {"V40", "V60", "V90", "XC40", "XC60", "XC90"},
	"Mazda":      {"Mazda2", "Mazda3", "Mazda6", "CX-3", "CX-5", "MX-5"},
	"Tesla":      {"Model 3", "Model Y", "Model S", "Model X"},
	"Vauxhall":   {"Corsa", "Astra", "Insignia", "Mokka", "Grandland"},
	"Fiat":       {"500", "Panda", "Tipo"},
	"Mini":       {"Cooper", "Countryman", "Clubman"},
}

// qualityAdjectives are qualitative terms matched semantically against
// listing descriptions rather than filtered exactly.
var qualityAdjectives = map[string]struct{}{
	"reliable":    {},
	"economical":  {},
	"efficient":   {},
	"spacious":    {},
	"sporty":      {},
	"fast":        {},
	"luxury":      {},
	"luxurious":   {},
	"comfortable": {},
	"safe":        {},
	"family":      {},
	"practical":   {},
	"clean":       {},
	"cheap":       {},
}

var fuelTypes = map[string]string{
	"petrol":   "petrol",
	"gasoline": "petrol",
	"diesel":   "diesel",
	"electric": "electric",
	"ev":       "electric",
	"hybrid":   "hybrid",
	"phev":     "hybrid",
}

var bodyTypes = map[string]string{
	"suv":         "suv",
	"crossover":   "suv",
	"hatchback":   "hatchback",
	"saloon":      "saloon",
	"sedan":       "saloon",
	"estate":      "estate",
	"wagon":       "estate",
	"coupe":       "coupe",
	"convertible": "convertible",
	"cabriolet":   "convertible",
	"van":         "van",
	"pickup":      "pickup",
}

var transmissions = map[string]string{
	"automatic": "automatic",
	"auto":      "automatic",
	"manual":    "manual",
}

var colors = map[string]struct{}{
	"black": {}, "white": {}, "silver": {}, "grey": {}, "gray": {},
	"blue": {}, "red": {}, "green": {}, "yellow": {}, "orange": {},
	"brown": {}, "beige": {},
}

// spellingCorrections maps common misspellings to the correct token.
var spellingCorrections = map[string]string{
	"dissel":    "diesel",
	"deisel":    "diesel",
	"petrl":     "petrol",
	"automattic": "automatic",
	"relaible":  "reliable",
	"reliabel":  "reliable",
	"economial": "economical",
	"volkswagon": "volkswagen",
	"mercedez":  "mercedes",
	"toyoto":    "toyota",
	"huyndai":   "hyundai",
	"skode":     "skoda",
}
