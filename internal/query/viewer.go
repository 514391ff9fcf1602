package query

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/calvinalkan/recipebox/internal/recipe"
)

// Rating bounds accepted by [Service.Rate] and [Service.Review].
const (
	MinRating = 1
	MaxRating = 5
)

// Viewer identifies who is acting. The zero Viewer is anonymous.
type Viewer struct {
	UserID string
	Name   string
	Admin  bool
}

// SignedIn reports whether the viewer has a user id.
func (v Viewer) SignedIn() bool {
	return v.UserID != ""
}

// Criteria narrows a listing. Only the first non-empty field, in the order
// Search, Category, Cuisine, Difficulty, is applied.
type Criteria struct {
	Search     string
	Category   string
	Cuisine    string
	Difficulty string
}

// List returns the recipes v should see for c.
//
// Without criteria admins see every recipe and everyone else gets the
// visibility rule. With a criterion, non-admins stay within the visibility
// rule while admins search the approved recipes only.
func (s *Service) List(v Viewer, c Criteria) []recipe.Recipe {
	scope := ForUser(v.UserID)
	if v.Admin {
		scope = Scope{}
	}

	switch {
	case c.Search != "":
		return s.Search(c.Search, scope)
	case c.Category != "":
		return s.FilterByCategory(c.Category, scope)
	case c.Cuisine != "":
		return s.FilterByCuisineType(c.Cuisine, scope)
	case c.Difficulty != "":
		return s.FilterByDifficulty(c.Difficulty, scope)
	case v.Admin:
		return s.AllRecipes()
	default:
		return s.RecipesForUser(v.UserID)
	}
}

// Visible returns the recipe with id if v may see it. Hidden and missing
// recipes both return [ErrNotFound].
func (s *Service) Visible(v Viewer, id string) (recipe.Recipe, error) {
	r, ok, err := s.FindByID(id)
	if err != nil {
		return recipe.Recipe{}, err
	}

	if !ok || !canView(v, &r) {
		return recipe.Recipe{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return r, nil
}

// CanEdit reports whether v may change or delete r: admins always, other
// users only their own recipes.
func CanEdit(v Viewer, r *recipe.Recipe) bool {
	return v.Admin || r.OwnedBy(v.UserID)
}

// Submit creates a recipe from form, or edits the recipe named by form.ID.
//
// New recipes belong to v and start unapproved unless v is an admin. Edits
// require [CanEdit] and keep the original owner; an admin edit approves the
// recipe. Returns the recipe as stored.
func (s *Service) Submit(v Viewer, form recipe.Form) (recipe.Recipe, error) {
	if !v.SignedIn() {
		return recipe.Recipe{}, ErrUnauthenticated
	}

	if form.ID == "" {
		return s.create(v, form)
	}

	updated, ok, err := s.backend.Update(form.ID, func(r *recipe.Recipe) error {
		if !CanEdit(v, r) {
			return fmt.Errorf("%w: %s cannot edit %s", ErrForbidden, v.UserID, r.ID)
		}

		if err := form.Apply(r); err != nil {
			return err
		}

		if r.UserID == "" {
			r.UserID, r.AuthorName = v.UserID, v.Name
		}

		if r.CreatedAt == "" {
			r.CreatedAt = recipe.FormatTimestamp(s.now())
		}

		if v.Admin {
			r.Approved = true
		}

		return r.Validate()
	})

	switch {
	case err != nil:
		return recipe.Recipe{}, s.writeError("edit", form.ID, err)
	case !ok:
		return recipe.Recipe{}, fmt.Errorf("%w: %s", ErrNotFound, form.ID)
	}

	s.log.Info("recipe edited",
		zap.String("id", updated.ID), zap.String("user", v.UserID), zap.Bool("approved", updated.Approved))

	return updated, nil
}

func (s *Service) create(v Viewer, form recipe.Form) (recipe.Recipe, error) {
	r := recipe.Recipe{
		UserID:     v.UserID,
		AuthorName: v.Name,
		Approved:   v.Admin,
		Reviews:    []recipe.Review{},
	}

	if err := form.Apply(&r); err != nil {
		return recipe.Recipe{}, err
	}

	if err := s.SaveRecipe(&r); err != nil {
		return recipe.Recipe{}, err
	}

	return r, nil
}

// Remove deletes the recipe with id if v may edit it. Unknown ids are a
// no-op.
func (s *Service) Remove(v Viewer, id string) error {
	if !v.SignedIn() {
		return ErrUnauthenticated
	}

	r, ok, err := s.FindByID(id)
	if err != nil {
		return err
	}

	if !ok {
		return nil
	}

	if !CanEdit(v, &r) {
		return fmt.Errorf("%w: %s cannot delete %s", ErrForbidden, v.UserID, id)
	}

	return s.DeleteRecipe(id)
}

// Rate records a quick rating of a recipe visible to v.
func (s *Service) Rate(v Viewer, id string, rating int) (recipe.Recipe, error) {
	if err := checkRater(v, rating); err != nil {
		return recipe.Recipe{}, err
	}

	return s.updateVisible(v, id, "rate", func(r *recipe.Recipe) {
		r.Rate(rating)
	})
}

// Review appends a review by v and counts its rating like [Service.Rate].
func (s *Service) Review(v Viewer, id string, rating int, comment string) (recipe.Recipe, error) {
	if err := checkRater(v, rating); err != nil {
		return recipe.Recipe{}, err
	}

	now := s.now()

	return s.updateVisible(v, id, "review", func(r *recipe.Recipe) {
		r.AddReview(recipe.Review{
			ID:        recipe.NewReviewID(now),
			UserID:    v.UserID,
			Username:  v.Name,
			Rating:    rating,
			Comment:   comment,
			CreatedAt: recipe.FormatTimestamp(now),
		})
	})
}

// Approve makes a recipe visible to everyone. Only admins may approve;
// approving an approved recipe is a no-op.
func (s *Service) Approve(v Viewer, id string) (recipe.Recipe, error) {
	if !v.Admin {
		return recipe.Recipe{}, fmt.Errorf("%w: only admins can approve recipes", ErrForbidden)
	}

	updated, ok, err := s.backend.Update(id, func(r *recipe.Recipe) error {
		r.Approved = true
		return nil
	})

	switch {
	case err != nil:
		return recipe.Recipe{}, s.writeError("approve", id, err)
	case !ok:
		return recipe.Recipe{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	s.log.Info("recipe approved", zap.String("id", id), zap.String("admin", v.UserID))

	return updated, nil
}

func (s *Service) updateVisible(v Viewer, id, action string, change func(*recipe.Recipe)) (recipe.Recipe, error) {
	updated, ok, err := s.backend.Update(id, func(r *recipe.Recipe) error {
		if !canView(v, r) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}

		change(r)

		return nil
	})

	switch {
	case err != nil:
		return recipe.Recipe{}, s.writeError(action, id, err)
	case !ok:
		return recipe.Recipe{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	s.log.Info("recipe updated",
		zap.String("action", action),
		zap.String("id", id),
		zap.String("user", v.UserID),
		zap.Float64("average_rating", updated.AverageRating),
		zap.Int("total_ratings", updated.TotalRatings))

	return updated, nil
}

// writeError passes caller-facing sentinels through unchanged and adds the
// action to storage failures.
func (s *Service) writeError(action, id string, err error) error {
	if errors.Is(err, ErrForbidden) || errors.Is(err, ErrNotFound) || errors.Is(err, recipe.ErrValidation) {
		return err
	}

	s.log.Error("recipe write failed", zap.String("action", action), zap.String("id", id), zap.Error(err))

	return fmt.Errorf("%s recipe %s: %w", action, id, err)
}

func checkRater(v Viewer, rating int) error {
	if !v.SignedIn() {
		return ErrUnauthenticated
	}

	if rating < MinRating || rating > MaxRating {
		return fmt.Errorf("%w: rating must be between %d and %d (got %d)", recipe.ErrValidation, MinRating, MaxRating, rating)
	}

	return nil
}

func canView(v Viewer, r *recipe.Recipe) bool {
	return v.Admin || visibleTo(r, v.UserID)
}
