// Package display renders a recipe for the terminal.
package display

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pageza/snaptop/client/internal/models"
)

// styles is the palette bound to one output. Colours degrade to plain text
// when the writer is not a terminal.
type styles struct {
	title     lipgloss.Style
	heading   lipgloss.Style
	section   lipgloss.Style
	primary   lipgloss.Style
	secondary lipgloss.Style
	urgent    lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		title:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("#fde68a")),
		heading:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("#bbf7d0")),
		section:   r.NewStyle().Italic(true).Foreground(lipgloss.Color("#bae6fd")),
		primary:   r.NewStyle().Foreground(lipgloss.Color("#d4d4d8")),
		secondary: r.NewStyle().Foreground(lipgloss.Color("#71717a")),
		urgent:    r.NewStyle().Foreground(lipgloss.Color("#fca5a5")),
	}
}

// Render writes the recipe to w
func Render(w io.Writer, recipe *models.Recipe) error {
	s := newStyles(w)
	var b strings.Builder

	b.WriteString(s.title.Render(recipe.Title) + "\n")
	if recipe.Description != "" {
		b.WriteString(s.primary.Render(recipe.Description) + "\n")
	}
	b.WriteString(s.secondary.Render(summary(recipe)) + "\n")

	b.WriteString("\n" + s.heading.Render("Ingredients") + "\n")
	for _, ing := range recipe.Ingredients {
		b.WriteString(s.primary.Render("  • "+FormatIngredient(ing)) + "\n")
	}

	b.WriteString("\n" + s.heading.Render("Instructions") + "\n")
	for _, sec := range recipe.Instructions {
		indent := "  "
		if sec.SectionName != nil {
			b.WriteString("  " + s.section.Render(*sec.SectionName) + "\n")
			indent = "    "
		}
		for i, step := range sec.Steps {
			b.WriteString(s.primary.Render(fmt.Sprintf("%s%d. %s", indent, i+1, step)) + "\n")
		}
	}

	if lines := nutritionLines(recipe.PerServing()); len(lines) > 0 {
		b.WriteString("\n" + s.heading.Render("Nutrition per serving") + "\n")
		for _, l := range lines {
			b.WriteString(s.primary.Render("  "+l) + "\n")
		}
	}

	if len(recipe.Citations) > 0 {
		b.WriteString("\n" + s.heading.Render("Sources") + "\n")
		for _, c := range recipe.Citations {
			b.WriteString(s.secondary.Render("  - "+c) + "\n")
		}
	}

	if img, err := recipe.Image(); err == nil {
		b.WriteString("\n" + s.secondary.Render(fmt.Sprintf("Image: %d bytes", len(img))) + "\n")
	} else if err != models.ErrNoImage {
		b.WriteString("\n" + s.urgent.Render("Image could not be decoded") + "\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderError writes a one-line error message
func RenderError(w io.Writer, msg string) error {
	_, err := io.WriteString(w, newStyles(w).urgent.Render(msg)+"\n")
	return err
}

func summary(r *models.Recipe) string {
	parts := []string{
		fmt.Sprintf("Prep %d min", r.PrepTimeMinutes),
		fmt.Sprintf("Cook %d min", r.CookTimeMinutes),
		fmt.Sprintf("Total %d min", r.TotalTimeMinutes()),
	}
	serves := fmt.Sprintf("Serves %d", r.Servings)
	if r.ServingSize != nil && *r.ServingSize != "" {
		serves += " (" + *r.ServingSize + ")"
	}
	return strings.Join(append(parts, serves), " · ")
}

// FormatIngredient renders "2 cup rice (rinsed)". An empty unit is skipped.
func FormatIngredient(ing models.Ingredient) string {
	parts := []string{FormatQuantity(ing.Quantity)}
	if ing.Unit != "" {
		parts = append(parts, ing.Unit)
	}
	parts = append(parts, ing.Name)
	out := strings.Join(parts, " ")
	if ing.Notes != nil && *ing.Notes != "" {
		out += " (" + *ing.Notes + ")"
	}
	return out
}

// FormatQuantity drops trailing zeros: 2 -> "2", 0.5 -> "0.5"
func FormatQuantity(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}

// nutritionLines lists each nutrition field that is present
func nutritionLines(n *models.NutritionProfile) []string {
	if n.IsEmpty() {
		return nil
	}
	var lines []string
	if n.Calories != nil {
		lines = append(lines, fmt.Sprintf("Calories  %d", *n.Calories))
	}
	grams := []struct {
		label string
		value *float64
		unit  string
	}{
		{"Protein", n.ProteinGrams, "g"},
		{"Carbs", n.CarbsGrams, "g"},
		{"Fat", n.FatGrams, "g"},
		{"Fiber", n.FiberGrams, "g"},
		{"Sugar", n.SugarGrams, "g"},
		{"Sodium", n.SodiumMg, "mg"},
	}
	for _, g := range grams {
		if g.value != nil {
			lines = append(lines, fmt.Sprintf("%-8s  %.1f %s", g.label, *g.value, g.unit))
		}
	}
	return lines
}
