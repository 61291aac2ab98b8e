package client

import (
	"strings"
)

// CommonIngredients are offered as completions for the ingredient input
var CommonIngredients = []string{
	"chicken", "beef", "pork", "fish", "tomato", "onion", "garlic", "potato",
	"carrot", "broccoli", "spinach", "rice", "pasta", "cheese", "egg", "milk",
	"butter", "olive oil", "salt", "pepper", "flour", "sugar", "apple", "banana",
	"orange", "lemon", "lime", "avocado", "cucumber", "lettuce", "bell pepper", "mushroom",
	"zucchini", "eggplant", "corn", "peas", "beans", "lentils", "chickpeas", "quinoa",
	"oats", "bread", "yogurt", "cream", "sour cream", "mayonnaise", "mustard", "ketchup",
	"soy sauce", "vinegar", "honey", "maple syrup", "chocolate", "vanilla", "cinnamon", "cumin",
	"paprika", "oregano", "basil", "thyme", "rosemary", "ginger", "turmeric", "coconut milk",
	"almond milk", "tofu", "shrimp", "salmon", "tuna", "bacon", "ham", "sausage",
}

// Cuisines are the cuisines a search can be restricted to
var Cuisines = []string{
	"Italian", "French", "Chinese", "Japanese", "Mexican", "Indian",
	"Thai", "Spanish", "Greek", "Lebanese", "Turkish", "Moroccan",
	"Korean", "Vietnamese", "Peruvian", "Ethiopian", "Brazilian", "Caribbean",
	"German", "Argentinian", "Russian", "Iranian (Persian)",
}

// lastToken returns the text after the last comma
func lastToken(input string) string {
	if i := strings.LastIndex(input, ","); i >= 0 {
		return input[i+1:]
	}
	return input
}

// Suggest returns the common ingredients containing the last comma-separated
// token of input, ignoring case. Empty input has no suggestions.
func Suggest(input string) []string {
	if input == "" {
		return nil
	}
	needle := strings.ToLower(strings.TrimSpace(lastToken(input)))

	var out []string
	for _, ingredient := range CommonIngredients {
		if strings.Contains(strings.ToLower(ingredient), needle) {
			out = append(out, ingredient)
		}
	}
	return out
}

// ApplySuggestion replaces the last token of input with suggestion
func ApplySuggestion(input, suggestion string) string {
	parts := strings.Split(input, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	parts[len(parts)-1] = suggestion
	return strings.Join(parts, ", ")
}

// ToggleCuisine adds cuisine to selected or removes it if already present.
// selected is not modified.
func ToggleCuisine(selected []string, cuisine string) []string {
	out := make([]string, 0, len(selected)+1)
	found := false
	for _, c := range selected {
		if c == cuisine {
			found = true
			continue
		}
		out = append(out, c)
	}
	if !found {
		out = append(out, cuisine)
	}
	return out
}
