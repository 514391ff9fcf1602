package cli

import (
	"strconv"
	"strings"

	"github.com/calvinalkan/recipebox/internal/recipe"
)

func approvalLabel(r *recipe.Recipe) string {
	if r.Approved {
		return "approved"
	}

	return "pending"
}

// formatRecipeLine renders the one-line listing form:
//
//	RECIPE_1_2 [approved] Tomato Soup - Lunch/Italian/Easy - 4.5 (2) - by Alice
func formatRecipeLine(r *recipe.Recipe) string {
	var b strings.Builder

	b.WriteString(r.ID)
	b.WriteString(" [")
	b.WriteString(approvalLabel(r))
	b.WriteString("] ")
	b.WriteString(r.Title)
	b.WriteString(" - ")
	b.WriteString(joinNonEmpty("/", r.Category, r.CuisineType, r.DifficultyLevel))
	b.WriteString(" - ")
	b.WriteString(formatRating(r))

	if r.AuthorName != "" {
		b.WriteString(" - by ")
		b.WriteString(r.AuthorName)
	}

	return b.String()
}

func formatRating(r *recipe.Recipe) string {
	if r.TotalRatings == 0 {
		return "unrated"
	}

	return strconv.FormatFloat(r.AverageRating, 'f', 1, 64) + " (" + strconv.Itoa(r.TotalRatings) + ")"
}

// printRecipe renders the full detail view.
func printRecipe(o *IO, r *recipe.Recipe) {
	o.Println("id:", r.ID)
	o.Println("title:", r.Title)
	o.Println("status:", approvalLabel(r))
	o.Println("category:", r.Category)

	for _, kv := range [][2]string{
		{"cuisine", r.CuisineType},
		{"difficulty", r.DifficultyLevel},
		{"author", r.AuthorName},
		{"owner", r.UserID},
		{"photo", r.PhotoPath},
		{"created", r.CreatedAt},
	} {
		if kv[1] != "" {
			o.Println(kv[0]+":", kv[1])
		}
	}

	o.Printf("time: %d min prep, %d min cooking\n", r.PreparationTime, r.CookingTime)
	o.Println("servings:", r.Servings)
	o.Println("rating:", formatRating(r))

	if len(r.Tags) > 0 {
		o.Println("tags:", strings.Join(r.Tags, ", "))
	}

	if r.Description != "" {
		o.Println()
		o.Println(r.Description)
	}

	if len(r.Ingredients) > 0 {
		o.Println()
		o.Println("## Ingredients")

		for _, ing := range r.Ingredients {
			line := "- " + joinNonEmpty(" ", strconv.FormatFloat(ing.Quantity, 'f', -1, 64), ing.Unit, ing.Name)
			if ing.Notes != "" {
				line += " (" + ing.Notes + ")"
			}

			o.Println(line)
		}
	}

	if len(r.PreparationSteps) > 0 {
		o.Println()
		o.Println("## Steps")

		for i, step := range r.PreparationSteps {
			o.Printf("%d. %s\n", i+1, step)
		}
	}

	if len(r.Reviews) > 0 {
		o.Println()
		o.Println("## Reviews")

		for _, rev := range r.Reviews {
			o.Printf("- %d/5 by %s: %s\n", rev.Rating, rev.Username, rev.Comment)
		}
	}
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]

	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}

	return strings.Join(kept, sep)
}
