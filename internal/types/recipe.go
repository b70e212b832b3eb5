package types

// NutritionProfile is the wire form of models.NutritionProfile
type NutritionProfile struct {
	Calories     *int     `json:"calories,omitempty"`
	ProteinGrams *float64 `json:"protein_grams,omitempty" validate:"omitempty,finite"`
	CarbsGrams   *float64 `json:"carbs_grams,omitempty" validate:"omitempty,finite"`
	FatGrams     *float64 `json:"fat_grams,omitempty" validate:"omitempty,finite"`
	FiberGrams   *float64 `json:"fiber_grams,omitempty" validate:"omitempty,finite"`
	SugarGrams   *float64 `json:"sugar_grams,omitempty" validate:"omitempty,finite"`
	SodiumMg     *float64 `json:"sodium_mg,omitempty" validate:"omitempty,finite"`
}

// Ingredient is the wire form of models.Ingredient
type Ingredient struct {
	Name     string  `json:"name" validate:"required,notblank"`
	Quantity float64 `json:"quantity" validate:"finite"`
	Unit     *string `json:"unit,omitempty"`
	Notes    *string `json:"notes,omitempty"`
}

// InstructionSection is the wire form of models.InstructionSection
type InstructionSection struct {
	SectionName *string  `json:"section_name,omitempty"`
	Steps       []string `json:"steps"`
}

// Recipe is the body returned by the recipe endpoints
type Recipe struct {
	RecipeID        string               `json:"recipe_id"`
	Title           string               `json:"title"`
	Description     string               `json:"description"`
	Ingredients     []Ingredient         `json:"ingredients"`
	Instructions    []InstructionSection `json:"instructions"`
	PrepTimeMinutes int                  `json:"prep_time_minutes"`
	CookTimeMinutes int                  `json:"cook_time_minutes"`
	Nutrition       *NutritionProfile    `json:"nutrition,omitempty"`
	Servings        int                  `json:"servings"`
	ServingSize     *string              `json:"serving_size,omitempty"`
	Citations       []string             `json:"citations,omitempty"`
	ImageBase64     *string              `json:"image_base64,omitempty"`
}

// HealthResponse is returned by the backend root endpoint
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}
