package aisle

import "strings"

// Store aisle names, in walking order. Shopping lists group items by
// these so a week's list reads front-of-store to back.
const (
	Produce  = "Produce"
	Meat     = "Meat & Seafood"
	Dairy    = "Dairy"
	Bakery   = "Bakery"
	Pantry   = "Pantry"
	Frozen   = "Frozen"
	Beverage = "Beverages"
	Other    = "Other"
)

// Order lists the aisles in the sequence shopping lists present them.
var Order = []string{Produce, Meat, Dairy, Bakery, Pantry, Frozen, Beverage, Other}

// Assign returns the aisle for an ingredient name. Matching is
// case-insensitive: exact match first, then substring match with the
// more specific keywords tried before the shorter ones. Unrecognized
// ingredients land in "Other".
func Assign(ingredient string) string {
	name := strings.ToLower(strings.TrimSpace(ingredient))
	if name == "" {
		return Other
	}

	if a, ok := exactMatch[name]; ok {
		return a
	}

	for _, entry := range substringMatches {
		if strings.Contains(name, entry.keyword) {
			return entry.aisle
		}
	}

	return Other
}

var exactMatch = map[string]string{
	// Produce
	"onion":        Produce,
	"onions":       Produce,
	"garlic":       Produce,
	"tomato":       Produce,
	"tomatoes":     Produce,
	"potato":       Produce,
	"potatoes":     Produce,
	"carrot":       Produce,
	"carrots":      Produce,
	"celery":       Produce,
	"lettuce":      Produce,
	"spinach":      Produce,
	"kale":         Produce,
	"broccoli":     Produce,
	"cucumber":     Produce,
	"mushrooms":    Produce,
	"zucchini":     Produce,
	"avocado":      Produce,
	"lemon":        Produce,
	"lemons":       Produce,
	"lime":         Produce,
	"limes":        Produce,
	"apple":        Produce,
	"apples":       Produce,
	"banana":       Produce,
	"bananas":      Produce,
	"ginger":       Produce,
	"cilantro":     Produce,
	"parsley":      Produce,
	"basil":        Produce,
	"scallions":    Produce,
	"green beans":  Produce,
	"bell pepper":  Produce,
	"bell peppers": Produce,

	// Meat & Seafood
	"chicken":       Meat,
	"beef":          Meat,
	"pork":          Meat,
	"turkey":        Meat,
	"bacon":         Meat,
	"sausage":       Meat,
	"ham":           Meat,
	"steak":         Meat,
	"salmon":        Meat,
	"shrimp":        Meat,
	"tuna":          Meat,
	"cod":           Meat,
	"lamb":          Meat,
	"ground beef":   Meat,
	"ground turkey": Meat,

	// Dairy
	"milk":           Dairy,
	"eggs":           Dairy,
	"egg":            Dairy,
	"butter":         Dairy,
	"cheese":         Dairy,
	"yogurt":         Dairy,
	"cream":          Dairy,
	"heavy cream":    Dairy,
	"sour cream":     Dairy,
	"cream cheese":   Dairy,
	"parmesan":       Dairy,
	"mozzarella":     Dairy,
	"cheddar":        Dairy,
	"feta":           Dairy,
	"cottage cheese": Dairy,

	// Bakery
	"bread":      Bakery,
	"baguette":   Bakery,
	"tortillas":  Bakery,
	"bagels":     Bakery,
	"buns":       Bakery,
	"rolls":      Bakery,
	"pita":       Bakery,
	"breadcrumbs": Bakery,

	// Pantry
	"rice":             Pantry,
	"pasta":            Pantry,
	"spaghetti":        Pantry,
	"flour":            Pantry,
	"sugar":            Pantry,
	"brown sugar":      Pantry,
	"salt":             Pantry,
	"pepper":           Pantry,
	"black pepper":     Pantry,
	"olive oil":        Pantry,
	"vegetable oil":    Pantry,
	"oil":              Pantry,
	"vinegar":          Pantry,
	"soy sauce":        Pantry,
	"honey":            Pantry,
	"peanut butter":    Pantry,
	"ketchup":          Pantry,
	"mustard":          Pantry,
	"mayonnaise":       Pantry,
	"oats":             Pantry,
	"cereal":           Pantry,
	"lentils":          Pantry,
	"chickpeas":        Pantry,
	"black beans":      Pantry,
	"canned tomatoes":  Pantry,
	"tomato paste":     Pantry,
	"chicken broth":    Pantry,
	"vegetable broth":  Pantry,
	"baking powder":    Pantry,
	"baking soda":      Pantry,
	"vanilla extract":  Pantry,
	"cumin":            Pantry,
	"paprika":          Pantry,
	"oregano":          Pantry,
	"cinnamon":         Pantry,
	"chili powder":     Pantry,
	"curry powder":     Pantry,
	"maple syrup":      Pantry,
	"salsa":            Pantry,
	"coconut milk":     Pantry,

	// Frozen
	"frozen peas":    Frozen,
	"frozen corn":    Frozen,
	"frozen berries": Frozen,
	"ice cream":      Frozen,
	"puff pastry":    Frozen,

	// Beverages
	"water":  Beverage,
	"juice":  Beverage,
	"coffee": Beverage,
	"tea":    Beverage,
	"wine":   Beverage,
	"beer":   Beverage,
}

type substringEntry struct {
	keyword string
	aisle   string
}

// Ordered with longer/more-specific keywords first so "cream cheese"
// wins over "cheese" and "coconut milk" over "milk".
var substringMatches = []substringEntry{
	// Pantry phrases that would otherwise hit Dairy/Produce keywords
	{"coconut milk", Pantry},
	{"almond milk", Pantry},
	{"oat milk", Pantry},
	{"tomato paste", Pantry},
	{"tomato sauce", Pantry},
	{"pasta sauce", Pantry},
	{"hot sauce", Pantry},
	{"soy sauce", Pantry},
	{"fish sauce", Pantry},
	{"worcestershire", Pantry},
	{"peanut butter", Pantry},
	{"olive oil", Pantry},
	{"sesame oil", Pantry},
	{"coconut oil", Pantry},
	{"maple syrup", Pantry},
	{"chicken broth", Pantry},
	{"beef broth", Pantry},
	{"vegetable broth", Pantry},
	{"chicken stock", Pantry},
	{"beef stock", Pantry},
	{"canned", Pantry},
	{"dried", Pantry},

	// Meat & Seafood
	{"chicken breast", Meat},
	{"chicken thigh", Meat},
	{"ground beef", Meat},
	{"ground turkey", Meat},
	{"pork chop", Meat},
	{"chicken", Meat},
	{"beef", Meat},
	{"pork", Meat},
	{"bacon", Meat},
	{"sausage", Meat},
	{"salmon", Meat},
	{"shrimp", Meat},
	{"fish", Meat},

	// Dairy
	{"cream cheese", Dairy},
	{"sour cream", Dairy},
	{"heavy cream", Dairy},
	{"greek yogurt", Dairy},
	{"yogurt", Dairy},
	{"cheese", Dairy},
	{"butter", Dairy},
	{"cream", Dairy},
	{"milk", Dairy},
	{"egg", Dairy},

	// Produce
	{"bell pepper", Produce},
	{"green onion", Produce},
	{"sweet potato", Produce},
	{"cherry tomato", Produce},
	{"lettuce", Produce},
	{"spinach", Produce},
	{"cabbage", Produce},
	{"cauliflower", Produce},
	{"squash", Produce},
	{"berries", Produce},
	{"berry", Produce},
	{"tomato", Produce},
	{"potato", Produce},
	{"onion", Produce},
	{"carrot", Produce},
	{"pepper", Produce},
	{"herb", Produce},
	{"fruit", Produce},

	// Bakery
	{"sourdough", Bakery},
	{"bread", Bakery},
	{"tortilla", Bakery},
	{"bagel", Bakery},
	{"bun", Bakery},
	{"roll", Bakery},
	{"crust", Bakery},

	// Pantry
	{"broth", Pantry},
	{"stock", Pantry},
	{"rice", Pantry},
	{"pasta", Pantry},
	{"noodle", Pantry},
	{"flour", Pantry},
	{"sugar", Pantry},
	{"oil", Pantry},
	{"vinegar", Pantry},
	{"sauce", Pantry},
	{"spice", Pantry},
	{"seasoning", Pantry},
	{"bean", Pantry},
	{"lentil", Pantry},
	{"nut", Pantry},
	{"seed", Pantry},

	// Frozen
	{"frozen", Frozen},
	{"ice cream", Frozen},

	// Beverages
	{"sparkling water", Beverage},
	{"juice", Beverage},
	{"coffee", Beverage},
	{"soda", Beverage},
	{"wine", Beverage},
	{"beer", Beverage},
}
