package recipe_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/recipebox/internal/recipe"
)

func Test_Validate_Rejects_Recipe_When_Required_Field_Missing(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		recipe  recipe.Recipe
		wantMsg string
	}{
		{"blank title", recipe.Recipe{Title: "  ", Category: "Dinner"}, "title is required"},
		{"missing category", recipe.Recipe{Title: "Pasta"}, "category is required"},
		{"negative servings", recipe.Recipe{Title: "Pasta", Category: "Dinner", Servings: -1}, "servings"},
		{"nameless ingredient", recipe.Recipe{
			Title: "Pasta", Category: "Dinner",
			Ingredients: []recipe.Ingredient{{Quantity: 1}},
		}, "name is required"},
		{"negative quantity", recipe.Recipe{
			Title: "Pasta", Category: "Dinner",
			Ingredients: []recipe.Ingredient{{Name: "salt", Quantity: -2}},
		}, "quantity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.recipe.Validate()
			require.ErrorIs(t, err, recipe.ErrValidation)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func Test_Validate_Accepts_Minimal_Recipe(t *testing.T) {
	t.Parallel()

	r := recipe.Recipe{Title: "Pasta", Category: "Dinner"}
	require.NoError(t, r.Validate())
}

func Test_Validate_Rejects_Text_The_Document_Cannot_Hold(t *testing.T) {
	t.Parallel()

	base := func() recipe.Recipe {
		return recipe.Recipe{
			Title:            "Pasta",
			Category:         "Dinner",
			Ingredients:      []recipe.Ingredient{{Name: "salt", Quantity: 1}},
			PreparationSteps: []string{"Boil"},
			Reviews:          []recipe.Review{{ID: "REVIEW_1", Rating: 4}},
		}
	}

	tests := []struct {
		name    string
		change  func(*recipe.Recipe)
		wantMsg string
	}{
		{"title control character", func(r *recipe.Recipe) { r.Title = "a\x01b" }, "title contains unsupported character U+0001"},
		{"author invalid utf8", func(r *recipe.Recipe) { r.AuthorName = "\xff" }, "authorName is not valid UTF-8"},
		{"ingredient unit", func(r *recipe.Recipe) { r.Ingredients[0].Unit = "g\x0b" }, "ingredient 1 unit"},
		{"second step", func(r *recipe.Recipe) { r.PreparationSteps = append(r.PreparationSteps, "\x7f\x00") }, "step 2"},
		{"review username", func(r *recipe.Recipe) { r.Reviews[0].Username = "\uFFFF" }, "review 1 username"},
		{"surrogate half", func(r *recipe.Recipe) { r.Category = "\xed\xa0\x80" }, "category is not valid UTF-8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := base()
			tt.change(&r)

			err := r.Validate()
			require.ErrorIs(t, err, recipe.ErrValidation)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func Test_Validate_Accepts_Tabs_Newlines_And_Non_ASCII(t *testing.T) {
	t.Parallel()

	r := recipe.Recipe{
		Title:       "Cr\u00e8me br\u00fbl\u00e9e \U0001F36E",
		Category:    "Dessert",
		Description: "line one\r\n\tline two",
	}

	require.NoError(t, r.Validate())
}

func Test_OwnedBy_Never_Matches_When_Either_Id_Is_Absent(t *testing.T) {
	t.Parallel()

	assert.True(t, recipe.Recipe{UserID: "alice"}.OwnedBy("alice"))
	assert.False(t, recipe.Recipe{UserID: "alice"}.OwnedBy("bob"))
	assert.False(t, recipe.Recipe{UserID: "alice"}.OwnedBy(""))
	assert.False(t, recipe.Recipe{}.OwnedBy(""))
	assert.False(t, recipe.Recipe{}.OwnedBy("alice"))
}

func Test_Rate_Computes_Weighted_Mean_When_Ratings_Exist(t *testing.T) {
	t.Parallel()

	r := recipe.Recipe{AverageRating: 4.0, TotalRatings: 2}
	r.Rate(1)

	assert.InDelta(t, 3.0, r.AverageRating, 1e-9)
	assert.Equal(t, 3, r.TotalRatings)
}

func Test_Rate_Uses_Rating_As_Average_When_First(t *testing.T) {
	t.Parallel()

	var r recipe.Recipe
	r.Rate(5)

	assert.InDelta(t, 5.0, r.AverageRating, 1e-9)
	assert.Equal(t, 1, r.TotalRatings)
}

func Test_AddReview_Counts_Toward_Aggregate_And_Sets_RecipeID(t *testing.T) {
	t.Parallel()

	r := recipe.Recipe{ID: "RECIPE_1_1", AverageRating: 2, TotalRatings: 1}
	r.Rate(4)
	r.AddReview(recipe.Review{ID: "REVIEW_1", RecipeID: "other", Rating: 3, Comment: "ok"})

	require.Len(t, r.Reviews, 1)
	assert.Equal(t, "RECIPE_1_1", r.Reviews[0].RecipeID)
	assert.Equal(t, 3, r.TotalRatings)
	assert.InDelta(t, 3.0, r.AverageRating, 1e-9)
}

func Test_Clone_Does_Not_Share_Nested_Slices(t *testing.T) {
	t.Parallel()

	orig := recipe.Recipe{
		Tags:        []string{"quick"},
		Ingredients: []recipe.Ingredient{{Name: "egg", Quantity: 2}},
	}

	c := orig.Clone()
	c.Tags[0] = "slow"
	c.Ingredients[0].Name = "flour"

	assert.Equal(t, "quick", orig.Tags[0])
	assert.Equal(t, "egg", orig.Ingredients[0].Name)
}

func Test_NewRecipeID_Matches_Document_Format(t *testing.T) {
	t.Parallel()

	now := time.UnixMilli(1700000000123)

	for range 50 {
		id := recipe.NewRecipeID(now)
		require.Regexp(t, recipe.RecipeIDPattern, id)
		assert.Contains(t, id, "RECIPE_1700000000123_")
	}

	assert.Equal(t, "REVIEW_1700000000123", recipe.NewReviewID(now))
}
