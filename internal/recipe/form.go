package recipe

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Form is the raw, string-typed content of a recipe edit as collected by a
// presentation layer. Repeated fields are parallel slices indexed by row.
type Form struct {
	ID              string
	Title           string
	Description     string
	CuisineType     string
	DifficultyLevel string
	Category        string
	PreparationTime string
	CookingTime     string
	Servings        string
	Tags            string

	IngredientNames      []string
	IngredientQuantities []string
	IngredientUnits      []string
	IngredientNotes      []string

	Steps []string

	// PhotoPath is the already-stored location of an uploaded photo. Empty
	// keeps the recipe's current photo.
	PhotoPath string
}

// Defaults for numeric fields left blank.
const (
	defaultTime     = 0
	defaultServings = 1
)

var tagSeparator = regexp.MustCompile(`,\s*`)

// Apply overwrites r's editable content with the form's values.
//
// Numeric text is parsed strictly; a malformed value returns [ErrValidation]
// naming the field and leaves r untouched. Blank steps and ingredient rows
// without a name are dropped. Identity, ownership, ratings, reviews and the
// approval flag are not part of the form and are left as they are.
func (f Form) Apply(r *Recipe) error {
	prep, err := parseIntField("preparationTime", f.PreparationTime, defaultTime)
	if err != nil {
		return err
	}

	cook, err := parseIntField("cookingTime", f.CookingTime, defaultTime)
	if err != nil {
		return err
	}

	servings, err := parseIntField("servings", f.Servings, defaultServings)
	if err != nil {
		return err
	}

	ingredients, err := f.ingredients()
	if err != nil {
		return err
	}

	r.Title = f.Title
	r.Description = f.Description
	r.CuisineType = f.CuisineType
	r.DifficultyLevel = f.DifficultyLevel
	r.Category = f.Category
	r.PreparationTime = prep
	r.CookingTime = cook
	r.Servings = servings
	r.Ingredients = ingredients
	r.PreparationSteps = f.steps()
	r.Tags = ParseTags(f.Tags)

	if f.PhotoPath != "" {
		r.PhotoPath = f.PhotoPath
	}

	return nil
}

// ParseTags splits a comma separated tag list. An empty string yields no
// tags.
func ParseTags(s string) []string {
	if s == "" {
		return []string{}
	}

	return tagSeparator.Split(s, -1)
}

func (f Form) ingredients() ([]Ingredient, error) {
	out := make([]Ingredient, 0, len(f.IngredientNames))

	for i, name := range f.IngredientNames {
		if name == "" {
			continue
		}

		qty := 0.0

		if raw := at(f.IngredientQuantities, i); strings.TrimSpace(raw) != "" {
			v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: invalid number format in quantity of %q: %q", ErrValidation, name, raw)
			}

			qty = v
		}

		out = append(out, Ingredient{
			Name:     name,
			Quantity: qty,
			Unit:     at(f.IngredientUnits, i),
			Notes:    at(f.IngredientNotes, i),
		})
	}

	return out, nil
}

func (f Form) steps() []string {
	out := make([]string, 0, len(f.Steps))

	for _, s := range f.Steps {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}

	return out
}

func parseIntField(field, raw string, def int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid number format in %s: %q", ErrValidation, field, raw)
	}

	return v, nil
}

func at(s []string, i int) string {
	if i < len(s) {
		return s[i]
	}

	return ""
}
