package models

import (
	"encoding/base64"
	"math"
)

// Complexity values accepted by the backend
const (
	ComplexityEasy   = "easy"
	ComplexityMedium = "medium"
	ComplexityHard   = "hard"
)

// Ingredient represents one recipe component.
// Unit may be empty; Notes is nil when the backend omitted it.
type Ingredient struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	Notes    *string `json:"notes,omitempty"`
}

// NutritionProfile holds nutrition figures for a whole recipe or a target.
// Every field is independently optional.
type NutritionProfile struct {
	Calories     *int     `json:"calories,omitempty"`
	ProteinGrams *float64 `json:"proteinGrams,omitempty"`
	CarbsGrams   *float64 `json:"carbsGrams,omitempty"`
	FatGrams     *float64 `json:"fatGrams,omitempty"`
	FiberGrams   *float64 `json:"fiberGrams,omitempty"`
	SugarGrams   *float64 `json:"sugarGrams,omitempty"`
	SodiumMg     *float64 `json:"sodiumMg,omitempty"`
}

// IsEmpty reports whether no field is set
func (n *NutritionProfile) IsEmpty() bool {
	if n == nil {
		return true
	}
	return n.Calories == nil && n.ProteinGrams == nil && n.CarbsGrams == nil &&
		n.FatGrams == nil && n.FiberGrams == nil && n.SugarGrams == nil && n.SodiumMg == nil
}

// InstructionSection is a group of ordered steps. A nil SectionName means the
// steps are rendered ungrouped.
type InstructionSection struct {
	SectionName *string  `json:"sectionName,omitempty"`
	Steps       []string `json:"steps"`
}

// Recipe represents one generated recipe. It lives only as long as the view
// that requested it and is never persisted.
type Recipe struct {
	RecipeID        string               `json:"recipeId"`
	Title           string               `json:"title"`
	Description     string               `json:"description"`
	Ingredients     []Ingredient         `json:"ingredients"`
	Instructions    []InstructionSection `json:"instructions"`
	PrepTimeMinutes int                  `json:"prepTimeMinutes"`
	CookTimeMinutes int                  `json:"cookTimeMinutes"`
	Servings        int                  `json:"servings"`
	ServingSize     *string              `json:"servingSize,omitempty"`
	Nutrition       *NutritionProfile    `json:"nutrition,omitempty"`
	Citations       []string             `json:"citations,omitempty"`
	ImageBase64     *string              `json:"imageBase64,omitempty"`
}

// TotalTimeMinutes returns prep plus cook time
func (r *Recipe) TotalTimeMinutes() int {
	return r.PrepTimeMinutes + r.CookTimeMinutes
}

// EffectiveServings returns the divisor used for per-serving figures.
// The backend reports nutrition for the entire recipe; a non-positive serving
// count is treated as a single serving.
func (r *Recipe) EffectiveServings() int {
	if r.Servings <= 0 {
		return 1
	}
	return r.Servings
}

// PerServing divides the recipe nutrition by its servings. Fields absent on the
// recipe stay absent. Returns nil when the recipe carries no nutrition.
func (r *Recipe) PerServing() *NutritionProfile {
	if r.Nutrition == nil {
		return nil
	}
	s := float64(r.EffectiveServings())
	n := r.Nutrition
	out := &NutritionProfile{
		ProteinGrams: divide(n.ProteinGrams, s),
		CarbsGrams:   divide(n.CarbsGrams, s),
		FatGrams:     divide(n.FatGrams, s),
		FiberGrams:   divide(n.FiberGrams, s),
		SugarGrams:   divide(n.SugarGrams, s),
		SodiumMg:     divide(n.SodiumMg, s),
	}
	if n.Calories != nil {
		c := int(math.Round(float64(*n.Calories) / s))
		out.Calories = &c
	}
	return out
}

// Image decodes the base64 image sent with the recipe
func (r *Recipe) Image() ([]byte, error) {
	if r.ImageBase64 == nil || *r.ImageBase64 == "" {
		return nil, ErrNoImage
	}
	return base64.StdEncoding.DecodeString(*r.ImageBase64)
}

// GenerateRecipeRequest is what the form collects. Description is the only
// required field; the rest are optional refinements.
type GenerateRecipeRequest struct {
	Description          string            `json:"description"`
	Complexity           *string           `json:"complexity,omitempty"`
	TargetMacros         *NutritionProfile `json:"targetMacros,omitempty"`
	AvailableIngredients []Ingredient      `json:"availableIngredients,omitempty"`
}

func divide(v *float64, by float64) *float64 {
	if v == nil {
		return nil
	}
	out := *v / by
	return &out
}

// Ptr returns a pointer to v. Handy for filling optional fields.
func Ptr[T any](v T) *T {
	return &v
}
