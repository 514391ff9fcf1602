// Package recipe holds the record model: recipes with their nested
// ingredients, preparation steps, tags and reviews, plus the rules that do
// not depend on storage (validation, ownership, rating aggregation and ids).
package recipe

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"
)

// ErrValidation reports a record or input that cannot be persisted. The
// wrapped message names the offending field.
var ErrValidation = errors.New("validation failed")

// Recipe is a persisted recipe record.
//
// Empty strings mean "absent" for the optional fields (PhotoPath, UserID).
// CreatedAt is kept as text so timestamps written by other tools round-trip
// unchanged.
type Recipe struct {
	ID              string
	Title           string
	Description     string
	CuisineType     string
	Category        string
	DifficultyLevel string
	PreparationTime int
	CookingTime     int
	Servings        int
	PhotoPath       string
	UserID          string
	AuthorName      string
	AverageRating   float64
	TotalRatings    int
	Approved        bool
	CreatedAt       string

	Ingredients      []Ingredient
	PreparationSteps []string
	Tags             []string
	Reviews          []Review
}

// Ingredient is one line of a recipe's ingredient list. It has no identity
// outside its recipe.
type Ingredient struct {
	Name     string
	Quantity float64
	Unit     string
	Notes    string
}

// Review is a user's rated comment on a recipe. RecipeID always equals the
// owning recipe's ID.
type Review struct {
	ID        string
	RecipeID  string
	UserID    string
	Username  string
	Rating    int
	Comment   string
	CreatedAt string
}

// Validate checks the invariants required before a recipe is saved.
func (r *Recipe) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("%w: recipe title is required", ErrValidation)
	}

	if strings.TrimSpace(r.Category) == "" {
		return fmt.Errorf("%w: recipe category is required", ErrValidation)
	}

	for _, n := range []struct {
		field string
		value int
	}{
		{"preparationTime", r.PreparationTime},
		{"cookingTime", r.CookingTime},
		{"servings", r.Servings},
		{"totalRatings", r.TotalRatings},
	} {
		if n.value < 0 {
			return fmt.Errorf("%w: %s must not be negative (got %d)", ErrValidation, n.field, n.value)
		}
	}

	for i, ing := range r.Ingredients {
		if ing.Name == "" {
			return fmt.Errorf("%w: ingredient %d: name is required", ErrValidation, i+1)
		}

		if ing.Quantity < 0 {
			return fmt.Errorf("%w: ingredient %q: quantity must not be negative", ErrValidation, ing.Name)
		}
	}

	return r.CheckText()
}

// CheckText returns [ErrValidation] naming the first text field, nested ones
// included, that the backing document cannot store unchanged: invalid UTF-8
// or a character outside the XML 1.0 Char range.
func (r *Recipe) CheckText() error {
	fields := []textField{
		{"id", r.ID},
		{"title", r.Title},
		{"description", r.Description},
		{"cuisineType", r.CuisineType},
		{"category", r.Category},
		{"difficultyLevel", r.DifficultyLevel},
		{"photoPath", r.PhotoPath},
		{"userId", r.UserID},
		{"authorName", r.AuthorName},
		{"createdAt", r.CreatedAt},
	}

	for i, ing := range r.Ingredients {
		prefix := fmt.Sprintf("ingredient %d ", i+1)
		fields = append(fields,
			textField{prefix + "name", ing.Name},
			textField{prefix + "unit", ing.Unit},
			textField{prefix + "notes", ing.Notes},
		)
	}

	for i, step := range r.PreparationSteps {
		fields = append(fields, textField{fmt.Sprintf("step %d", i+1), step})
	}

	for i, tag := range r.Tags {
		fields = append(fields, textField{fmt.Sprintf("tag %d", i+1), tag})
	}

	for i, rev := range r.Reviews {
		prefix := fmt.Sprintf("review %d ", i+1)
		fields = append(fields,
			textField{prefix + "id", rev.ID},
			textField{prefix + "userId", rev.UserID},
			textField{prefix + "username", rev.Username},
			textField{prefix + "comment", rev.Comment},
			textField{prefix + "createdAt", rev.CreatedAt},
		)
	}

	for _, f := range fields {
		if !utf8.ValidString(f.value) {
			return fmt.Errorf("%w: %s is not valid UTF-8", ErrValidation, f.name)
		}

		for _, c := range f.value {
			if !isXMLChar(c) {
				return fmt.Errorf("%w: %s contains unsupported character %U", ErrValidation, f.name, c)
			}
		}
	}

	return nil
}

type textField struct {
	name  string
	value string
}

// isXMLChar reports whether c is in the XML 1.0 Char production.
func isXMLChar(c rune) bool {
	return c == '\t' || c == '\n' || c == '\r' ||
		(c >= 0x20 && c <= 0xD7FF) ||
		(c >= 0xE000 && c <= 0xFFFD) ||
		(c >= 0x10000 && c <= utf8.MaxRune)
}

// OwnedBy reports whether userID owns the recipe. An absent id on either
// side never matches.
func (r Recipe) OwnedBy(userID string) bool {
	return userID != "" && r.UserID != "" && r.UserID == userID
}

// Clone returns a deep copy so callers can mutate nested slices freely.
func (r Recipe) Clone() Recipe {
	r.Ingredients = slices.Clone(r.Ingredients)
	r.PreparationSteps = slices.Clone(r.PreparationSteps)
	r.Tags = slices.Clone(r.Tags)
	r.Reviews = slices.Clone(r.Reviews)

	return r
}
