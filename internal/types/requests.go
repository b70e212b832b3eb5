package types

// GenerateRecipeRequest represents the request body for generating a recipe
type GenerateRecipeRequest struct {
	Description          string            `json:"description" validate:"required,notblank"`
	Complexity           *string           `json:"complexity,omitempty" validate:"omitempty,oneof=easy medium hard"`
	TargetMacros         *NutritionProfile `json:"target_macros,omitempty"`
	AvailableIngredients []Ingredient      `json:"available_ingredients,omitempty" validate:"omitempty,dive"`
}

// RegenerateRecipeRequest asks the backend for a fresh take on a recipe
type RegenerateRecipeRequest struct {
	RecipeID           string  `json:"recipe_id" validate:"required,notblank"`
	RegenerationReason *string `json:"regeneration_reason,omitempty"`
}

// ModifyRecipeRequest asks the backend to change a recipe
type ModifyRecipeRequest struct {
	RecipeID                 string `json:"recipe_id" validate:"required,notblank"`
	ModificationInstructions string `json:"modification_instructions" validate:"required,notblank"`
}

// GoogleAuthRequest carries the ID token issued by Google Identity Services
type GoogleAuthRequest struct {
	Credential string `json:"credential" validate:"required,notblank"`
}

// FacebookAuthRequest carries the Facebook login result
type FacebookAuthRequest struct {
	AccessToken string `json:"access_token" validate:"required,notblank"`
	UserID      string `json:"user_id" validate:"required,notblank"`
}
