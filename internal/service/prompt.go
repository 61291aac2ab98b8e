package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/headcookai/headcook/internal/types"
)

const recipeSystemPrompt = "You are an expert chef and know all possible recipes. " +
	"You will only give recipes based on the ingredients provided. " +
	"You will not give any other response no matter what. " +
	"You will generate %d recipes using the provided ingredients. " +
	"You will give detailed instructions on how to make the recipes. Leave no step unexplained. " +
	"Format the response as a valid JSON array with objects containing 'name' and 'instructions' properties. " +
	"Do not include any markdown formatting or code block syntax in your response."

const imagePromptTemplate = "Create a realistic image of a plate of %s. " +
	"It should look appetizing and realistic. It should be a high quality image. " +
	"It should be a picture of a plate of food."

// RecipePrompt is the system instruction and user content of one generation request.
type RecipePrompt struct {
	System string
	User   string
}

// BuildRecipePrompt embeds the ingredients and, when present, a cuisine
// directive into the request content.
func BuildRecipePrompt(ingredients string, cuisines []string, count int) RecipePrompt {
	if count <= 0 {
		count = 3
	}

	var user strings.Builder
	user.WriteString("Ingredients: ")
	user.WriteString(strings.TrimSpace(ingredients))
	if len(cuisines) > 0 {
		user.WriteString("\nThe recipes must be from the following cuisine(s): ")
		user.WriteString(strings.Join(cuisines, ", "))
		user.WriteString(".")
	}

	return RecipePrompt{
		System: fmt.Sprintf(recipeSystemPrompt, count),
		User:   user.String(),
	}
}

// BuildImagePrompt returns the image request prompt for a recipe.
func BuildImagePrompt(recipeName string) string {
	return fmt.Sprintf(imagePromptTemplate, strings.TrimSpace(recipeName))
}

var (
	openingFence = regexp.MustCompile("^```[ \\t]*[a-zA-Z]*[ \\t]*\\r?\\n?")
	closingFence = regexp.MustCompile("\\r?\\n?[ \\t]*```$")
)

// StripCodeFences removes a markdown code fence wrapping model output.
// Backticks inside the content are kept. Applying it twice gives the same
// result as applying it once.
func StripCodeFences(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = openingFence.ReplaceAllString(content, "")
	content = closingFence.ReplaceAllString(content, "")
	return strings.TrimSpace(content)
}

type rawRecipe struct {
	Name         string          `json:"name"`
	Instructions json.RawMessage `json:"instructions"`
}

// ParseRecipes decodes model output into recipes. It accepts a bare JSON
// array or an object with a "recipes" array, and instructions given either as
// a string or as a list of steps.
func ParseRecipes(content string) ([]types.Recipe, error) {
	cleaned := StripCodeFences(content)

	var raw []rawRecipe
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		var wrapped struct {
			Recipes []rawRecipe `json:"recipes"`
		}
		if werr := json.Unmarshal([]byte(cleaned), &wrapped); werr != nil || wrapped.Recipes == nil {
			return nil, &ParseError{Content: cleaned, Err: err}
		}
		raw = wrapped.Recipes
	}

	recipes := make([]types.Recipe, 0, len(raw))
	for _, r := range raw {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			continue
		}
		instructions, err := decodeInstructions(r.Instructions)
		if err != nil {
			return nil, &ParseError{Content: cleaned, Err: fmt.Errorf("recipe %q: %w", name, err)}
		}
		recipes = append(recipes, types.Recipe{Name: name, Instructions: instructions})
	}

	if len(recipes) == 0 {
		return nil, ErrNoRecipes
	}
	return recipes, nil
}

func decodeInstructions(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return strings.TrimSpace(text), nil
	}

	var steps []string
	if err := json.Unmarshal(raw, &steps); err != nil {
		return "", fmt.Errorf("instructions are neither text nor a list of steps")
	}
	return strings.Join(steps, "\n"), nil
}
