package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/recipebox/internal/recipe"
)

var errBadIngredient = errors.New("invalid --ingredient")

// SaveCmd returns the save command.
func SaveCmd(a *app) *Command {
	fs := flag.NewFlagSet("save", flag.ContinueOnError)
	fs.String("id", "", "Edit this recipe instead of creating one")
	fs.StringP("title", "t", "", "Title (required)")
	fs.StringP("description", "d", "", "Description text")
	fs.String("category", "", "Category (required)")
	fs.String("cuisine", "", "Cuisine type")
	fs.String("difficulty", "", "Difficulty level")
	fs.String("prep", "", "Preparation time in minutes")
	fs.String("cook", "", "Cooking time in minutes")
	fs.String("servings", "", "Number of servings [default: 1]")
	fs.String("tags", "", "Comma separated tags")
	fs.StringArray("ingredient", nil, `Ingredient as "name|quantity|unit|notes" (repeatable)`)
	fs.StringArray("step", nil, "Preparation step (repeatable, in order)")
	fs.String("photo", "", "Path of an already stored photo")

	return &Command{
		Flags: fs,
		Usage: "save [flags]",
		Short: "Create or edit a recipe, prints ID",
		Long: `Create a recipe, or edit one with --id. Prints the recipe ID on success.

New recipes start pending unless the current user is an admin. When editing,
flags that are not given keep their stored values; --ingredient and --step
replace the whole list when given at least once.`,
		Exec: func(_ context.Context, o *IO, _ []string) error {
			return execSave(o, a, fs)
		},
	}
}

func execSave(o *IO, a *app, fs *flag.FlagSet) error {
	if err := a.requireUser(); err != nil {
		return err
	}

	id, _ := fs.GetString("id")

	var form recipe.Form

	if id != "" {
		current, err := a.svc.Visible(a.viewer, id)
		if err != nil {
			return err
		}

		form = formFromRecipe(&current)
	}

	if err := applySaveFlags(&form, fs); err != nil {
		return err
	}

	saved, err := a.svc.Submit(a.viewer, form)
	if err != nil {
		return err
	}

	o.Println(saved.ID)

	return nil
}

// applySaveFlags copies every flag the user set into form.
func applySaveFlags(form *recipe.Form, fs *flag.FlagSet) error {
	text := map[string]*string{
		"title":       &form.Title,
		"description": &form.Description,
		"category":    &form.Category,
		"cuisine":     &form.CuisineType,
		"difficulty":  &form.DifficultyLevel,
		"prep":        &form.PreparationTime,
		"cook":        &form.CookingTime,
		"servings":    &form.Servings,
		"tags":        &form.Tags,
		"photo":       &form.PhotoPath,
	}

	for name, dst := range text {
		if fs.Changed(name) {
			*dst, _ = fs.GetString(name)
		}
	}

	if fs.Changed("step") {
		form.Steps, _ = fs.GetStringArray("step")
	}

	if fs.Changed("ingredient") {
		specs, _ := fs.GetStringArray("ingredient")

		form.IngredientNames = nil
		form.IngredientQuantities = nil
		form.IngredientUnits = nil
		form.IngredientNotes = nil

		for _, spec := range specs {
			parts := strings.Split(spec, "|")
			if len(parts) > 4 {
				return fmt.Errorf("%w %q: want name|quantity|unit|notes", errBadIngredient, spec)
			}

			parts = append(parts, make([]string, 4-len(parts))...)

			form.IngredientNames = append(form.IngredientNames, strings.TrimSpace(parts[0]))
			form.IngredientQuantities = append(form.IngredientQuantities, strings.TrimSpace(parts[1]))
			form.IngredientUnits = append(form.IngredientUnits, strings.TrimSpace(parts[2]))
			form.IngredientNotes = append(form.IngredientNotes, strings.TrimSpace(parts[3]))
		}
	}

	return nil
}

// formFromRecipe fills a form with r's stored values so an edit only has
// to name what changes.
func formFromRecipe(r *recipe.Recipe) recipe.Form {
	form := recipe.Form{
		ID:              r.ID,
		Title:           r.Title,
		Description:     r.Description,
		CuisineType:     r.CuisineType,
		DifficultyLevel: r.DifficultyLevel,
		Category:        r.Category,
		PreparationTime: strconv.Itoa(r.PreparationTime),
		CookingTime:     strconv.Itoa(r.CookingTime),
		Servings:        strconv.Itoa(r.Servings),
		Tags:            strings.Join(r.Tags, ", "),
		Steps:           r.PreparationSteps,
	}

	for _, ing := range r.Ingredients {
		form.IngredientNames = append(form.IngredientNames, ing.Name)
		form.IngredientQuantities = append(form.IngredientQuantities, strconv.FormatFloat(ing.Quantity, 'f', -1, 64))
		form.IngredientUnits = append(form.IngredientUnits, ing.Unit)
		form.IngredientNotes = append(form.IngredientNotes, ing.Notes)
	}

	return form
}
