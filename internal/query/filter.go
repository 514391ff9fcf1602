package query

import (
	"strings"

	"github.com/calvinalkan/recipebox/internal/recipe"
)

// Scope selects the base collection a search or filter runs over.
//
// The zero Scope is anonymous and sees approved recipes only. [ForUser]
// applies the visibility rule for that user.
type Scope struct {
	userID string
}

// ForUser scopes a query to what userID may see.
func ForUser(userID string) Scope {
	return Scope{userID: userID}
}

func (s *Service) scoped(scope Scope) []recipe.Recipe {
	if scope.userID == "" {
		return s.ApprovedRecipes()
	}

	return s.RecipesForUser(scope.userID)
}

// Search matches q case-insensitively as a substring of the title,
// description, category or any tag.
func (s *Service) Search(q string, scope Scope) []recipe.Recipe {
	needle := strings.ToLower(q)

	return filter(s.scoped(scope), func(r *recipe.Recipe) bool {
		return matchesSearch(r, needle)
	})
}

// FilterByCategory keeps recipes whose category equals value, ignoring case.
func (s *Service) FilterByCategory(value string, scope Scope) []recipe.Recipe {
	return filter(s.scoped(scope), func(r *recipe.Recipe) bool {
		return strings.EqualFold(r.Category, value)
	})
}

// FilterByCuisineType keeps recipes whose cuisine equals value, ignoring
// case.
func (s *Service) FilterByCuisineType(value string, scope Scope) []recipe.Recipe {
	return filter(s.scoped(scope), func(r *recipe.Recipe) bool {
		return strings.EqualFold(r.CuisineType, value)
	})
}

// FilterByDifficulty keeps recipes whose difficulty equals value, ignoring
// case.
func (s *Service) FilterByDifficulty(value string, scope Scope) []recipe.Recipe {
	return filter(s.scoped(scope), func(r *recipe.Recipe) bool {
		return strings.EqualFold(r.DifficultyLevel, value)
	})
}

func matchesSearch(r *recipe.Recipe, needle string) bool {
	if containsFold(r.Title, needle) || containsFold(r.Description, needle) || containsFold(r.Category, needle) {
		return true
	}

	for _, tag := range r.Tags {
		if containsFold(tag, needle) {
			return true
		}
	}

	return false
}

// containsFold reports whether lowered needle occurs in s, ignoring case.
func containsFold(s, needle string) bool {
	return strings.Contains(strings.ToLower(s), needle)
}
