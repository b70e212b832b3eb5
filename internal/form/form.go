// Package form turns text typed by the user into recipe request fields.
package form

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/pageza/snaptop/client/internal/models"
)

// Macro field names accepted by ParseTargetMacros
const (
	FieldCalories = "calories"
	FieldProtein  = "protein"
	FieldCarbs    = "carbs"
	FieldFat      = "fat"
	FieldFiber    = "fiber"
	FieldSugar    = "sugar"
	FieldSodium   = "sodium"
)

// macroFields is the order fields are checked in
var macroFields = []string{FieldCalories, FieldProtein, FieldCarbs, FieldFat, FieldFiber, FieldSugar, FieldSodium}

// ParseError reports a field that could not be parsed
type ParseError struct {
	Field string
	Value string
	Msg   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %q %s", e.Field, e.Value, e.Msg)
}

// ParseTargetMacros reads the optional nutrition targets. Blank fields stay
// absent; if every field is blank the result is nil so no target is sent.
// Unknown field names are an error.
func ParseTargetMacros(fields map[string]string) (*models.NutritionProfile, error) {
	out := &models.NutritionProfile{}
	floats := map[string]**float64{
		FieldProtein: &out.ProteinGrams,
		FieldCarbs:   &out.CarbsGrams,
		FieldFat:     &out.FatGrams,
		FieldFiber:   &out.FiberGrams,
		FieldSugar:   &out.SugarGrams,
		FieldSodium:  &out.SodiumMg,
	}

	unknown := make([]string, 0)
	for name := range fields {
		if _, ok := floats[name]; !ok && name != FieldCalories {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, &ParseError{Field: unknown[0], Value: fields[unknown[0]], Msg: "is not a nutrition field"}
	}

	for _, name := range macroFields {
		raw := fields[name]
		value := strings.TrimSpace(raw)
		if value == "" {
			continue
		}
		if name == FieldCalories {
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				return nil, &ParseError{Field: name, Value: raw, Msg: "is not a whole number of calories"}
			}
			out.Calories = &n
			continue
		}
		f, err := parseAmount(value)
		if err != nil || f < 0 {
			return nil, &ParseError{Field: name, Value: raw, Msg: "is not a number"}
		}
		*floats[name] = &f
	}

	if out.IsEmpty() {
		return nil, nil
	}
	return out, nil
}

// ParseIngredient reads "<quantity> [unit] <name>[; notes]", for example
// "2 cup rice; rinsed" or "3 eggs". A single word after the quantity is the
// name. Fractions like "1/2" are accepted.
func ParseIngredient(line string) (models.Ingredient, error) {
	var ing models.Ingredient
	text := strings.TrimSpace(line)
	if main, notes, found := strings.Cut(text, ";"); found {
		text = strings.TrimSpace(main)
		if n := strings.TrimSpace(notes); n != "" {
			ing.Notes = &n
		}
	}

	words := strings.Fields(text)
	if len(words) < 2 {
		return models.Ingredient{}, &ParseError{Field: "ingredient", Value: line, Msg: "needs a quantity and a name"}
	}
	qty, err := parseAmount(words[0])
	if err != nil {
		return models.Ingredient{}, &ParseError{Field: "quantity", Value: words[0], Msg: "is not a number"}
	}
	ing.Quantity = qty

	rest := words[1:]
	if len(rest) > 1 {
		ing.Unit = rest[0]
		rest = rest[1:]
	}
	ing.Name = strings.Join(rest, " ")
	return ing, nil
}

// ParseIngredients parses one ingredient per non-blank line
func ParseIngredients(lines []string) ([]models.Ingredient, error) {
	var out []models.Ingredient
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		ing, err := ParseIngredient(line)
		if err != nil {
			return nil, err
		}
		out = append(out, ing)
	}
	return out, nil
}

// parseAmount accepts decimals and simple fractions, rejecting NaN and Inf
func parseAmount(s string) (float64, error) {
	var f float64
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0, err
		}
		d, err := strconv.ParseFloat(den, 64)
		if err != nil || d == 0 {
			return 0, fmt.Errorf("bad fraction %q", s)
		}
		f = n / d
	} else {
		var err error
		if f, err = strconv.ParseFloat(s, 64); err != nil {
			return 0, err
		}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%q is not finite", s)
	}
	return f, nil
}
