package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shashiranjanraj/brewhouse/app/models"
)

// CatalogRepository stores brew methods, ingredients and recipes.
type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) ListBrewMethods(ctx context.Context) ([]models.BrewMethod, error) {
	methods := []models.BrewMethod{}
	if err := r.db.WithContext(ctx).Order("id").Find(&methods).Error; err != nil {
		return nil, storeErr(err)
	}
	return methods, nil
}

func (r *CatalogRepository) CreateBrewMethod(ctx context.Context, m *models.BrewMethod) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return storeErr(tx.Create(m).Error)
	})
}

func (r *CatalogRepository) FindBrewMethod(ctx context.Context, id uint) (*models.BrewMethod, error) {
	var m models.BrewMethod
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, translate(err, "Brew method not found.", "")
	}
	return &m, nil
}

func (r *CatalogRepository) ListIngredients(ctx context.Context) ([]models.Ingredient, error) {
	ingredients := []models.Ingredient{}
	if err := r.db.WithContext(ctx).Order("id").Find(&ingredients).Error; err != nil {
		return nil, storeErr(err)
	}
	return ingredients, nil
}

func (r *CatalogRepository) CreateIngredient(ctx context.Context, in *models.Ingredient) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return translate(tx.Create(in).Error, "", "Ingredient already exists.")
	})
}

// IngredientNameTaken reports whether an ingredient with name exists.
func (r *CatalogRepository) IngredientNameTaken(ctx context.Context, name string) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Ingredient{}).Where("name = ?", name).Count(&n).Error; err != nil {
		return false, storeErr(err)
	}
	return n > 0, nil
}

// ExistingIngredientIDs returns the subset of ids that exist.
func (r *CatalogRepository) ExistingIngredientIDs(ctx context.Context, ids []uint) (map[uint]bool, error) {
	found := make(map[uint]bool, len(ids))
	if len(ids) == 0 {
		return found, nil
	}
	var rows []uint
	err := r.db.WithContext(ctx).Model(&models.Ingredient{}).Where("id IN ?", ids).Pluck("id", &rows).Error
	if err != nil {
		return nil, storeErr(err)
	}
	for _, id := range rows {
		found[id] = true
	}
	return found, nil
}

func (r *CatalogRepository) withRecipeRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("BrewMethod").
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("recipe_ingredients.id") }).
		Preload("Ingredients.Ingredient")
}

// ListRecipes returns every live recipe with brew method and ingredients loaded.
func (r *CatalogRepository) ListRecipes(ctx context.Context) ([]models.Recipe, error) {
	recipes := []models.Recipe{}
	if err := r.withRecipeRelations(ctx).Order("id").Find(&recipes).Error; err != nil {
		return nil, storeErr(err)
	}
	return recipes, nil
}

// FindRecipe loads a live recipe with its relations.
func (r *CatalogRepository) FindRecipe(ctx context.Context, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := r.withRecipeRelations(ctx).First(&recipe, id).Error; err != nil {
		return nil, translate(err, "Recipe not found.", "")
	}
	return &recipe, nil
}

// CreateRecipe writes the recipe row and its ingredient lines in one
// transaction.
func (r *CatalogRepository) CreateRecipe(ctx context.Context, recipe *models.Recipe, lines []models.RecipeIngredient) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(recipe).Error; err != nil {
			return storeErr(err)
		}
		if err := insertLines(tx, recipe.ID, lines); err != nil {
			return err
		}
		recipe.Ingredients = lines
		return nil
	})
}

// UpdateRecipe applies fields to the recipe and, when lines is non-nil,
// replaces its whole ingredient set. Both happen in one transaction.
func (r *CatalogRepository) UpdateRecipe(ctx context.Context, id uint, fields map[string]any, lines *[]models.RecipeIngredient) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(fields) == 0 {
			fields = map[string]any{"updated_at": time.Now()}
		}
		res := tx.Model(&models.Recipe{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			return storeErr(res.Error)
		}
		if res.RowsAffected == 0 {
			return translate(gorm.ErrRecordNotFound, "Recipe not found.", "")
		}
		if lines == nil {
			return nil
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return storeErr(err)
		}
		return insertLines(tx, id, *lines)
	})
}

// DeleteRecipe soft-deletes the recipe and removes its ingredient lines.
// Orders keep pointing at the soft-deleted row.
func (r *CatalogRepository) DeleteRecipe(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Recipe{}, id)
		if res.Error != nil {
			return storeErr(res.Error)
		}
		if res.RowsAffected == 0 {
			return translate(gorm.ErrRecordNotFound, "Recipe not found.", "")
		}
		return storeErr(tx.Where("recipe_id = ?", id).Delete(&models.RecipeIngredient{}).Error)
	})
}

func insertLines(tx *gorm.DB, recipeID uint, lines []models.RecipeIngredient) error {
	if len(lines) == 0 {
		return nil
	}
	for i := range lines {
		lines[i].ID = 0
		lines[i].RecipeID = recipeID
	}
	return storeErr(tx.Omit(clause.Associations).Create(&lines).Error)
}
