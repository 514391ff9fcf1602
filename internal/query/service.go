// Package query builds the read views a presentation layer needs on top of
// the document store: visibility, search and the classification filters.
// It also hosts the permission-checked write flows (submit, delete, rate,
// review, approve) that act on behalf of a [Viewer].
//
// Read operations never fail. A document that cannot be parsed degrades to
// an empty collection and is logged, so callers see "no recipes" instead of
// an error page. Writes propagate every error.
package query

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/calvinalkan/recipebox/internal/recipe"
	"github.com/calvinalkan/recipebox/internal/store"
)

// Backend is the storage the service reads and writes. *store.Store
// implements it.
type Backend interface {
	LoadAll() ([]recipe.Recipe, error)
	FindByID(id string) (recipe.Recipe, bool, error)
	Upsert(r recipe.Recipe) error
	Update(id string, fn func(*recipe.Recipe) error) (recipe.Recipe, bool, error)
	Delete(id string) error
	GenerateID() string
}

var _ Backend = (*store.Store)(nil)

// Service answers queries against one Backend. It holds no state of its own
// and is safe for concurrent use when the Backend is.
type Service struct {
	backend Backend
	log     *zap.Logger
	now     func() time.Time
}

// Option customizes a [Service].
type Option func(*Service)

// WithClock sets the clock used for creation timestamps and review ids.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New returns a Service over backend. A nil logger discards output.
func New(backend Backend, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Service{
		backend: backend,
		log:     logger,
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// AllRecipes returns every stored recipe regardless of approval.
func (s *Service) AllRecipes() []recipe.Recipe {
	return s.load()
}

// ApprovedRecipes returns the recipes visible to anonymous viewers.
func (s *Service) ApprovedRecipes() []recipe.Recipe {
	return filter(s.load(), func(r *recipe.Recipe) bool { return r.Approved })
}

// RecipesForUser applies the visibility rule for a signed-in, non-admin
// user: approved recipes plus the user's own. An empty userID sees only
// approved recipes.
func (s *Service) RecipesForUser(userID string) []recipe.Recipe {
	return filter(s.load(), func(r *recipe.Recipe) bool { return visibleTo(r, userID) })
}

// RecipesByUser returns every recipe owned by userID, approved or not.
// Recipes without an owner never match.
func (s *Service) RecipesByUser(userID string) []recipe.Recipe {
	return filter(s.load(), func(r *recipe.Recipe) bool { return r.OwnedBy(userID) })
}

// FindByID looks a recipe up without any visibility check. A corrupt
// document reads as "not found"; other storage failures are returned.
func (s *Service) FindByID(id string) (recipe.Recipe, bool, error) {
	r, ok, err := s.backend.FindByID(id)
	if errors.Is(err, store.ErrParseCorruption) {
		s.log.Warn("recipe document unreadable, treating lookup as not found",
			zap.String("id", id), zap.Error(err))

		return recipe.Recipe{}, false, nil
	}

	if err != nil {
		return recipe.Recipe{}, false, fmt.Errorf("find recipe %s: %w", id, err)
	}

	return r, ok, nil
}

// SaveRecipe persists r, assigning an id and creation time when they are
// missing (r is updated in place). The recipe must pass
// [recipe.Recipe.Validate].
func (s *Service) SaveRecipe(r *recipe.Recipe) error {
	if r.ID == "" {
		r.ID = s.backend.GenerateID()
	}

	if r.CreatedAt == "" {
		r.CreatedAt = recipe.FormatTimestamp(s.now())
	}

	if err := r.Validate(); err != nil {
		return err
	}

	if err := s.backend.Upsert(*r); err != nil {
		return fmt.Errorf("save recipe %s: %w", r.ID, err)
	}

	s.log.Info("recipe saved", zap.String("id", r.ID), zap.String("title", r.Title))

	return nil
}

// DeleteRecipe removes the recipe with id. Unknown ids are a no-op.
func (s *Service) DeleteRecipe(id string) error {
	if err := s.backend.Delete(id); err != nil {
		return fmt.Errorf("delete recipe %s: %w", id, err)
	}

	s.log.Info("recipe deleted", zap.String("id", id))

	return nil
}

// load is the single read path. It never fails.
func (s *Service) load() []recipe.Recipe {
	all, err := s.backend.LoadAll()
	if err == nil {
		return all
	}

	if errors.Is(err, store.ErrParseCorruption) {
		s.log.Warn("recipe document unreadable, serving empty collection", zap.Error(err))
	} else {
		s.log.Error("loading recipes failed, serving empty collection", zap.Error(err))
	}

	return []recipe.Recipe{}
}

func filter(all []recipe.Recipe, keep func(*recipe.Recipe) bool) []recipe.Recipe {
	out := make([]recipe.Recipe, 0, len(all))

	for i := range all {
		if keep(&all[i]) {
			out = append(out, all[i])
		}
	}

	return out
}

func visibleTo(r *recipe.Recipe, userID string) bool {
	return r.Approved || r.OwnedBy(userID)
}
