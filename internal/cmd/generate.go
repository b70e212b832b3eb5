package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/pageza/snaptop/client/config"
	"github.com/pageza/snaptop/client/internal/display"
	"github.com/pageza/snaptop/client/internal/form"
	"github.com/pageza/snaptop/client/internal/models"
	"github.com/pageza/snaptop/client/internal/service"
)

const imageLinkExpiry = 24 * time.Hour

type generateOptions struct {
	complexity  string
	macros      map[string]*string
	ingredients []string
	interactive bool
	uploadImage bool
}

func newGenerateCommand(root *rootOptions) *cobra.Command {
	opts := &generateOptions{macros: map[string]*string{}}

	cmd := &cobra.Command{
		Use:   "generate [description]",
		Short: "Generate a recipe from a description",
		Example: `  snaptop generate "spicy vegetarian tacos"
  snaptop generate "high protein breakfast" --protein 40 --calories 600
  snaptop generate "pasta tonight" --ingredient "200 g spaghetti" --ingredient "2 cloves garlic; minced" -i`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := opts.request(strings.Join(args, " "))
			if err != nil {
				return err
			}
			return withApp(cmd, root, func(a *app) error {
				return runGenerate(cmd, a, opts, req)
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.complexity, "complexity", "", "recipe complexity: easy, medium or hard")
	for _, field := range []string{form.FieldCalories, form.FieldProtein, form.FieldCarbs, form.FieldFat,
		form.FieldFiber, form.FieldSugar, form.FieldSodium} {
		opts.macros[field] = flags.String(field, "", "target "+field+" for the whole recipe")
	}
	flags.StringArrayVar(&opts.ingredients, "ingredient", nil, `available ingredient as "qty [unit] name; notes" (repeatable)`)
	flags.BoolVarP(&opts.interactive, "interactive", "i", false, "keep refining the recipe after it is shown")
	flags.BoolVar(&opts.uploadImage, "upload-image", false, "upload the recipe image to S3 and print a share link")
	return cmd
}

// request builds the generation request from the command line. Parsing
// problems are reported before anything is sent.
func (o *generateOptions) request(description string) (*models.GenerateRecipeRequest, error) {
	raw := make(map[string]string, len(o.macros))
	for field, v := range o.macros {
		raw[field] = *v
	}
	macros, err := form.ParseTargetMacros(raw)
	if err != nil {
		return nil, err
	}
	ingredients, err := form.ParseIngredients(o.ingredients)
	if err != nil {
		return nil, err
	}
	req := &models.GenerateRecipeRequest{
		Description:          strings.TrimSpace(description),
		TargetMacros:         macros,
		AvailableIngredients: ingredients,
	}
	if o.complexity != "" {
		req.Complexity = models.Ptr(strings.ToLower(o.complexity))
	}
	return req, nil
}

func runGenerate(cmd *cobra.Command, a *app, opts *generateOptions, req *models.GenerateRecipeRequest) error {
	out := cmd.OutOrStdout()
	gen := service.NewRecipeGenerator(a.backend, a.log)

	if req.Description == "" && !opts.interactive {
		return errors.New(service.UserMessage(&service.ValidationError{Field: "description", Message: "is required"}))
	}

	if req.Description != "" {
		recipe, err := gen.Generate(cmd.Context(), req)
		if err != nil && !opts.interactive {
			return errors.New(service.UserMessage(err))
		}
		if err == nil {
			if err := show(cmd, a, opts, recipe); err != nil {
				return err
			}
		} else {
			_ = display.RenderError(out, service.UserMessage(err))
		}
	}
	if !opts.interactive {
		return nil
	}
	return interact(cmd, a, opts, gen)
}

// interact reads commands from stdin until quit or end of input
func interact(cmd *cobra.Command, a *app, opts *generateOptions, gen *service.RecipeGenerator) error {
	out := cmd.OutOrStdout()
	in := bufio.NewScanner(cmd.InOrStdin())
	ask := func(prompt string) (string, bool) {
		fmt.Fprint(out, prompt)
		if !in.Scan() {
			return "", false
		}
		return strings.TrimSpace(in.Text()), true
	}

	for {
		if cmd.Context().Err() != nil {
			return nil
		}
		choice, ok := ask("\n[n]ew, [r]egenerate, [m]odify, [q]uit > ")
		if !ok {
			return nil
		}

		var (
			recipe *models.Recipe
			err    error
		)
		switch strings.ToLower(choice) {
		case "q", "quit", "exit":
			return nil
		case "n", "new":
			description, ok := ask("What would you like to cook? ")
			if !ok {
				return nil
			}
			gen.Reset()
			recipe, err = gen.Generate(cmd.Context(), &models.GenerateRecipeRequest{Description: description})
		case "r", "regenerate":
			reason, ok := ask("What should be different? (optional) ")
			if !ok {
				return nil
			}
			recipe, err = gen.Regenerate(cmd.Context(), reason)
		case "m", "modify":
			instructions, ok := ask("How should the recipe change? ")
			if !ok {
				return nil
			}
			recipe, err = gen.Modify(cmd.Context(), instructions)
		default:
			fmt.Fprintf(out, "Unknown choice %q.\n", choice)
			continue
		}

		if err != nil {
			_ = display.RenderError(out, service.UserMessage(err))
			continue
		}
		if err := show(cmd, a, opts, recipe); err != nil {
			return err
		}
	}
}

func show(cmd *cobra.Command, a *app, opts *generateOptions, recipe *models.Recipe) error {
	out := cmd.OutOrStdout()
	if err := display.Render(out, recipe); err != nil {
		return errors.Wrap(err, "failed to render recipe")
	}
	if opts.uploadImage {
		shareImage(cmd.Context(), out, a, recipe)
	}
	return nil
}

// shareImage uploads the recipe image. Failures are reported but do not stop
// the command since the recipe itself was delivered.
func shareImage(ctx context.Context, out io.Writer, a *app, recipe *models.Recipe) {
	image, err := recipe.Image()
	if err != nil {
		fmt.Fprintln(out, "No image to upload.")
		return
	}
	store, err := config.NewImageStore(ctx, a.cfg)
	if err != nil {
		a.log.WithError(err).Warn("image upload unavailable")
		fmt.Fprintln(out, "Image upload is not configured.")
		return
	}
	key, err := store.Upload(ctx, recipe.RecipeID, image)
	if err != nil {
		a.log.WithError(err).Warn("image upload failed")
		fmt.Fprintln(out, "Image upload failed.")
		return
	}
	link, err := store.GeneratePresignedURL(ctx, key, imageLinkExpiry)
	if err != nil {
		a.log.WithError(err).Warn("failed to sign image link")
		fmt.Fprintf(out, "Image uploaded to s3://%s/%s\n", store.BucketName, key)
		return
	}
	fmt.Fprintf(out, "Image: %s\n", link)
}
