package service

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/pageza/snaptop/client/internal/models"
)

// RecipeGenerator holds the state of one recipe view: the recipe being shown
// and whether a generation is running. Only one generation runs at a time,
// and a result that arrives after Reset is dropped.
type RecipeGenerator struct {
	client RecipeClient
	log    logrus.FieldLogger

	mu       sync.Mutex
	inFlight bool
	epoch    uint64
	current  *models.Recipe
}

// NewRecipeGenerator creates a generator backed by client
func NewRecipeGenerator(client RecipeClient, log logrus.FieldLogger) *RecipeGenerator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &RecipeGenerator{client: client, log: log.WithField("component", "generator")}
}

// Generate requests a recipe and makes it current. It fails with
// ErrGenerationInFlight if another generation has not finished, and with
// ErrStaleResult if Reset was called while waiting.
func (g *RecipeGenerator) Generate(ctx context.Context, req *models.GenerateRecipeRequest) (*models.Recipe, error) {
	return g.run(ctx, func(ctx context.Context) (*models.Recipe, error) {
		return g.client.GenerateRecipe(ctx, req)
	})
}

// Regenerate replaces the current recipe with a fresh take on it
func (g *RecipeGenerator) Regenerate(ctx context.Context, reason string) (*models.Recipe, error) {
	cur := g.Current()
	if cur == nil {
		return nil, &ValidationError{Field: "recipe_id", Message: "no recipe to regenerate"}
	}
	return g.run(ctx, func(ctx context.Context) (*models.Recipe, error) {
		return g.client.RegenerateRecipe(ctx, cur.RecipeID, reason)
	})
}

// Modify replaces the current recipe with a modified version
func (g *RecipeGenerator) Modify(ctx context.Context, instructions string) (*models.Recipe, error) {
	cur := g.Current()
	if cur == nil {
		return nil, &ValidationError{Field: "recipe_id", Message: "no recipe to modify"}
	}
	return g.run(ctx, func(ctx context.Context) (*models.Recipe, error) {
		return g.client.ModifyRecipe(ctx, cur.RecipeID, instructions)
	})
}

func (g *RecipeGenerator) run(ctx context.Context, call func(context.Context) (*models.Recipe, error)) (*models.Recipe, error) {
	g.mu.Lock()
	if g.inFlight {
		g.mu.Unlock()
		return nil, ErrGenerationInFlight
	}
	g.inFlight = true
	epoch := g.epoch
	g.mu.Unlock()

	recipe, err := call(ctx)

	g.mu.Lock()
	defer g.mu.Unlock()
	if epoch != g.epoch {
		// Reset already released the in-flight slot
		g.log.WithField("epoch", epoch).Debug("dropping result from before reset")
		return nil, ErrStaleResult
	}
	g.inFlight = false
	if err != nil {
		g.log.WithError(err).Error("recipe generation failed")
		return nil, err
	}
	g.current = recipe
	g.log.WithField("recipe_id", recipe.RecipeID).Info("recipe generated")
	return recipe, nil
}

// Current returns the recipe on display, or nil
func (g *RecipeGenerator) Current() *models.Recipe {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current
}

// InFlight reports whether a generation is running
func (g *RecipeGenerator) InFlight() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inFlight
}

// Reset discards the current recipe. A generation still running will have
// its result dropped.
func (g *RecipeGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.current = nil
	g.epoch++
	g.inFlight = false
}
