package service

import (
	"github.com/pageza/snaptop/client/internal/models"
	"github.com/pageza/snaptop/client/internal/types"
)

// This file is the only place where domain names meet wire names. Every
// domain field has a wire counterpart; absent optionals stay absent in both
// directions.

func toWireRequest(req *models.GenerateRecipeRequest) *types.GenerateRecipeRequest {
	out := &types.GenerateRecipeRequest{
		Description:  req.Description,
		Complexity:   nonEmpty(req.Complexity),
		TargetMacros: toWireNutrition(req.TargetMacros),
	}
	if len(req.AvailableIngredients) > 0 {
		out.AvailableIngredients = make([]types.Ingredient, len(req.AvailableIngredients))
		for i, ing := range req.AvailableIngredients {
			out.AvailableIngredients[i] = toWireIngredient(ing)
		}
	}
	return out
}

func toWireNutrition(n *models.NutritionProfile) *types.NutritionProfile {
	if n.IsEmpty() {
		return nil
	}
	return &types.NutritionProfile{
		Calories:     n.Calories,
		ProteinGrams: n.ProteinGrams,
		CarbsGrams:   n.CarbsGrams,
		FatGrams:     n.FatGrams,
		FiberGrams:   n.FiberGrams,
		SugarGrams:   n.SugarGrams,
		SodiumMg:     n.SodiumMg,
	}
}

func toWireIngredient(ing models.Ingredient) types.Ingredient {
	out := types.Ingredient{
		Name:     ing.Name,
		Quantity: ing.Quantity,
		Notes:    nonEmpty(ing.Notes),
	}
	if ing.Unit != "" {
		unit := ing.Unit
		out.Unit = &unit
	}
	return out
}

func fromWireRecipe(r *types.Recipe) *models.Recipe {
	out := &models.Recipe{
		RecipeID:        r.RecipeID,
		Title:           r.Title,
		Description:     r.Description,
		PrepTimeMinutes: r.PrepTimeMinutes,
		CookTimeMinutes: r.CookTimeMinutes,
		Servings:        r.Servings,
		ServingSize:     r.ServingSize,
		Nutrition:       fromWireNutrition(r.Nutrition),
		ImageBase64:     r.ImageBase64,
	}
	out.Ingredients = make([]models.Ingredient, len(r.Ingredients))
	for i, ing := range r.Ingredients {
		out.Ingredients[i] = fromWireIngredient(ing)
	}
	out.Instructions = make([]models.InstructionSection, len(r.Instructions))
	for i, sec := range r.Instructions {
		steps := make([]string, len(sec.Steps))
		copy(steps, sec.Steps)
		out.Instructions[i] = models.InstructionSection{
			SectionName: nonEmpty(sec.SectionName),
			Steps:       steps,
		}
	}
	if r.Citations != nil {
		out.Citations = append([]string(nil), r.Citations...)
	}
	return out
}

func fromWireNutrition(n *types.NutritionProfile) *models.NutritionProfile {
	if n == nil {
		return nil
	}
	return &models.NutritionProfile{
		Calories:     n.Calories,
		ProteinGrams: n.ProteinGrams,
		CarbsGrams:   n.CarbsGrams,
		FatGrams:     n.FatGrams,
		FiberGrams:   n.FiberGrams,
		SugarGrams:   n.SugarGrams,
		SodiumMg:     n.SodiumMg,
	}
}

func fromWireIngredient(ing types.Ingredient) models.Ingredient {
	out := models.Ingredient{
		Name:     ing.Name,
		Quantity: ing.Quantity,
		Notes:    ing.Notes,
	}
	if ing.Unit != nil {
		out.Unit = *ing.Unit
	}
	return out
}

func fromWireAuth(resp *types.AuthResponse) *models.AuthResponse {
	return &models.AuthResponse{
		User: models.User{
			UserID:   resp.User.UserID,
			Email:    resp.User.Email,
			Name:     resp.User.Name,
			Picture:  nonEmpty(resp.User.Picture),
			Provider: resp.User.Provider,
		},
		Token: models.Token{
			AccessToken: resp.Token.AccessToken,
			TokenType:   resp.Token.TokenType,
		},
	}
}

// nonEmpty treats an empty string the same as an absent one
func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
