package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shashiranjanraj/brewhouse/app/models"
	"github.com/shashiranjanraj/brewhouse/app/repositories"
	"github.com/shashiranjanraj/brewhouse/pkg/apperr"
	"github.com/shashiranjanraj/brewhouse/pkg/auth"
	"github.com/shashiranjanraj/brewhouse/pkg/cache"
	"github.com/shashiranjanraj/brewhouse/pkg/logger"
	"github.com/shashiranjanraj/brewhouse/pkg/metrics"
	"github.com/shashiranjanraj/brewhouse/pkg/validate"
)

const recipesCacheKey = "recipes"

type BrewMethodInput struct {
	Name    string `json:"name"    validate:"required,notblank,max=120"`
	Details string `json:"details"`
}

type IngredientInput struct {
	Name string `json:"name" validate:"required,notblank,max=120"`
}

// IngredientLine is one ingredient of a recipe with its quantity, e.g. "2 shots".
type IngredientLine struct {
	IngredientID uint   `json:"ingredient_id" validate:"required"`
	Quantity     string `json:"quantity"      validate:"max=120"`
}

type CreateRecipeInput struct {
	Name         string           `json:"name"           validate:"required,notblank,max=255"`
	Description  string           `json:"description"`
	Price        *float64         `json:"price"          validate:"required,gte=0"`
	Takeaway     bool             `json:"takeaway"`
	ImageURL     *string          `json:"image_url"      validate:"omitempty,max=512"`
	BrewMethodID uint             `json:"brew_method_id" validate:"required"`
	Ingredients  []IngredientLine `json:"ingredients"`
}

// UpdateRecipeInput changes only the fields that are present. A present
// Ingredients replaces the whole set, including with an empty one.
type UpdateRecipeInput struct {
	Name         *string           `json:"name"           validate:"omitempty,notblank,max=255"`
	Description  *string           `json:"description"`
	Price        *float64          `json:"price"          validate:"omitempty,gte=0"`
	Takeaway     *bool             `json:"takeaway"`
	ImageURL     *string           `json:"image_url"      validate:"omitempty,max=512"`
	BrewMethodID *uint             `json:"brew_method_id" validate:"omitempty,gt=0"`
	Ingredients  *[]IngredientLine `json:"ingredients"`
}

type BrewMethodView struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Details string `json:"details"`
}

type IngredientView struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
}

// RecipeView is the public, denormalized shape of a recipe.
type RecipeView struct {
	ID          uint             `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       float64          `json:"price"`
	Takeaway    bool             `json:"takeaway"`
	ImageURL    *string          `json:"image_url"`
	BrewMethod  *BrewMethodView  `json:"brew_method"`
	Ingredients []IngredientView `json:"ingredients"`
}

type CatalogService struct {
	repo     *repositories.CatalogRepository
	cache    *cache.Cache
	cacheTTL time.Duration
}

// NewCatalogService builds the service. A nil cache disables caching.
func NewCatalogService(repo *repositories.CatalogRepository, c *cache.Cache, cacheTTL time.Duration) *CatalogService {
	return &CatalogService{repo: repo, cache: c, cacheTTL: cacheTTL}
}

func (s *CatalogService) ListBrewMethods(ctx context.Context) ([]BrewMethodView, error) {
	methods, err := s.repo.ListBrewMethods(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]BrewMethodView, len(methods))
	for i, m := range methods {
		views[i] = brewMethodView(m)
	}
	return views, nil
}

func (s *CatalogService) CreateBrewMethod(ctx context.Context, p auth.Principal, in BrewMethodInput) (*models.BrewMethod, error) {
	if err := auth.RequireRole(p, auth.RoleAdmin); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		return nil, apperr.ValidationFields("Name is required", errs)
	}

	m := &models.BrewMethod{Name: in.Name, Details: in.Details}
	if err := s.repo.CreateBrewMethod(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *CatalogService) ListIngredients(ctx context.Context) ([]models.Ingredient, error) {
	return s.repo.ListIngredients(ctx)
}

func (s *CatalogService) CreateIngredient(ctx context.Context, p auth.Principal, in IngredientInput) (*models.Ingredient, error) {
	if err := auth.RequireRole(p, auth.RoleAdmin); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		return nil, apperr.ValidationFields("Name is required", errs)
	}

	taken, err := s.repo.IngredientNameTaken(ctx, in.Name)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.Conflict("Ingredient already exists.")
	}

	ing := &models.Ingredient{Name: in.Name}
	if err := s.repo.CreateIngredient(ctx, ing); err != nil {
		return nil, err
	}
	return ing, nil
}

// ListRecipes returns every recipe in its public shape, served from the
// cache when one is configured.
func (s *CatalogService) ListRecipes(ctx context.Context) ([]RecipeView, error) {
	var views []RecipeView
	if s.cache.Get(ctx, recipesCacheKey, &views) {
		metrics.CacheResult(recipesCacheKey, true)
		return views, nil
	}
	if s.cache.Enabled() {
		metrics.CacheResult(recipesCacheKey, false)
	}

	recipes, err := s.repo.ListRecipes(ctx)
	if err != nil {
		return nil, err
	}
	views = make([]RecipeView, len(recipes))
	for i := range recipes {
		views[i] = recipeView(&recipes[i])
	}

	if err := s.cache.Set(ctx, recipesCacheKey, views, s.cacheTTL); err != nil {
		logger.WithCtx(ctx).Warn("catalog: cache recipes", "error", err)
	}
	return views, nil
}

// GetRecipe returns one live recipe in its public shape.
func (s *CatalogService) GetRecipe(ctx context.Context, id uint) (*RecipeView, error) {
	recipe, err := s.repo.FindRecipe(ctx, id)
	if err != nil {
		return nil, err
	}
	v := recipeView(recipe)
	return &v, nil
}

// CreateRecipe resolves the brew method and every ingredient before
// writing, then stores the recipe and its lines in one transaction.
func (s *CatalogService) CreateRecipe(ctx context.Context, p auth.Principal, in CreateRecipeInput) (*RecipeView, error) {
	if err := auth.RequireRole(p, auth.RoleAdmin); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	errs := validate.Struct(in)
	mergeLineErrors(errs, in.Ingredients)
	if validate.HasErrors(errs) {
		return nil, apperr.ValidationFields("Missing required fields", errs)
	}

	if _, err := s.repo.FindBrewMethod(ctx, in.BrewMethodID); err != nil {
		return nil, err
	}
	if err := s.resolveIngredients(ctx, in.Ingredients); err != nil {
		return nil, err
	}

	recipe := &models.Recipe{
		Name:         in.Name,
		Description:  in.Description,
		Price:        roundPrice(*in.Price),
		Takeaway:     in.Takeaway,
		ImageURL:     in.ImageURL,
		BrewMethodID: in.BrewMethodID,
		CreatedBy:    p.UserID,
	}
	if err := s.repo.CreateRecipe(ctx, recipe, recipeLines(in.Ingredients)); err != nil {
		return nil, err
	}
	s.invalidate(ctx)

	return s.GetRecipe(ctx, recipe.ID)
}

// UpdateRecipe applies a partial update. Everything is validated before the
// transaction opens.
func (s *CatalogService) UpdateRecipe(ctx context.Context, p auth.Principal, id uint, in UpdateRecipeInput) (*RecipeView, error) {
	if err := auth.RequireRole(p, auth.RoleAdmin); err != nil {
		return nil, err
	}
	errs := validate.Struct(in)
	if in.Ingredients != nil {
		mergeLineErrors(errs, *in.Ingredients)
	}
	if validate.HasErrors(errs) {
		return nil, apperr.ValidationFields("Invalid recipe fields", errs)
	}

	if _, err := s.repo.FindRecipe(ctx, id); err != nil {
		return nil, err
	}
	if in.BrewMethodID != nil {
		if _, err := s.repo.FindBrewMethod(ctx, *in.BrewMethodID); err != nil {
			return nil, err
		}
	}

	var lines *[]models.RecipeIngredient
	if in.Ingredients != nil {
		if err := s.resolveIngredients(ctx, *in.Ingredients); err != nil {
			return nil, err
		}
		l := recipeLines(*in.Ingredients)
		lines = &l
	}

	fields := map[string]any{}
	if in.Name != nil {
		fields["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.Price != nil {
		fields["price"] = roundPrice(*in.Price)
	}
	if in.Takeaway != nil {
		fields["takeaway"] = *in.Takeaway
	}
	if in.ImageURL != nil {
		fields["image_url"] = *in.ImageURL
	}
	if in.BrewMethodID != nil {
		fields["brew_method_id"] = *in.BrewMethodID
	}

	if err := s.repo.UpdateRecipe(ctx, id, fields, lines); err != nil {
		return nil, err
	}
	s.invalidate(ctx)

	return s.GetRecipe(ctx, id)
}

// DeleteRecipe soft-deletes the recipe and drops its ingredient lines.
func (s *CatalogService) DeleteRecipe(ctx context.Context, p auth.Principal, id uint) error {
	if err := auth.RequireRole(p, auth.RoleAdmin); err != nil {
		return err
	}
	if err := s.repo.DeleteRecipe(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *CatalogService) resolveIngredients(ctx context.Context, lines []IngredientLine) error {
	ids := make([]uint, len(lines))
	for i, l := range lines {
		ids[i] = l.IngredientID
	}
	found, err := s.repo.ExistingIngredientIDs(ctx, ids)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if !found[id] {
			return apperr.NotFound(fmt.Sprintf("Ingredient %d not found.", id))
		}
	}
	return nil
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if err := s.cache.Forget(ctx, recipesCacheKey); err != nil {
		logger.WithCtx(ctx).Warn("catalog: invalidate recipes cache", "error", err)
	}
}

func mergeLineErrors(errs map[string]string, lines []IngredientLine) {
	for i, l := range lines {
		for field, msg := range validate.Struct(l) {
			errs[fmt.Sprintf("ingredients[%d].%s", i, field)] = msg
		}
	}
}

func recipeLines(lines []IngredientLine) []models.RecipeIngredient {
	out := make([]models.RecipeIngredient, len(lines))
	for i, l := range lines {
		out[i] = models.RecipeIngredient{IngredientID: l.IngredientID, Quantity: l.Quantity}
	}
	return out
}

func roundPrice(p float64) float64 { return math.Round(p*100) / 100 }

func brewMethodView(m models.BrewMethod) BrewMethodView {
	return BrewMethodView{ID: m.ID, Name: m.Name, Details: m.Details}
}

func recipeView(r *models.Recipe) RecipeView {
	v := RecipeView{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Takeaway:    r.Takeaway,
		ImageURL:    r.ImageURL,
		Ingredients: make([]IngredientView, 0, len(r.Ingredients)),
	}
	if r.BrewMethod != nil {
		bm := brewMethodView(*r.BrewMethod)
		v.BrewMethod = &bm
	}
	for _, ri := range r.Ingredients {
		iv := IngredientView{ID: ri.IngredientID, Quantity: ri.Quantity}
		if ri.Ingredient != nil {
			iv.Name = ri.Ingredient.Name
		}
		v.Ingredients = append(v.Ingredients, iv)
	}
	return v
}
