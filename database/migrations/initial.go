package migrations

import (
	"gorm.io/gorm"

	"github.com/shashiranjanraj/brewhouse/app/models"
	"github.com/shashiranjanraj/brewhouse/pkg/migration"
)

func init() {
	migration.Register("20260101000000_create_users_table", &CreateUsersTable{})
	migration.Register("20260101000001_create_brew_methods_table", &CreateBrewMethodsTable{})
	migration.Register("20260101000002_create_ingredients_table", &CreateIngredientsTable{})
	migration.Register("20260101000003_create_recipes_table", &CreateRecipesTable{})
	migration.Register("20260101000004_create_recipe_ingredients_table", &CreateRecipeIngredientsTable{})
	migration.Register("20260101000005_create_orders_table", &CreateOrdersTable{})
}

type CreateUsersTable struct{}

func (m *CreateUsersTable) Up(db *gorm.DB) error { return db.AutoMigrate(&models.User{}) }
func (m *CreateUsersTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(&models.User{})
}

type CreateBrewMethodsTable struct{}

func (m *CreateBrewMethodsTable) Up(db *gorm.DB) error { return db.AutoMigrate(&models.BrewMethod{}) }
func (m *CreateBrewMethodsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(&models.BrewMethod{})
}

type CreateIngredientsTable struct{}

func (m *CreateIngredientsTable) Up(db *gorm.DB) error { return db.AutoMigrate(&models.Ingredient{}) }
func (m *CreateIngredientsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(&models.Ingredient{})
}

// recipes references brew_methods; the ingredient links get their own table
// in the next migration.
type CreateRecipesTable struct{}

func (m *CreateRecipesTable) Up(db *gorm.DB) error { return db.AutoMigrate(&models.Recipe{}) }
func (m *CreateRecipesTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(&models.Recipe{})
}

type CreateRecipeIngredientsTable struct{}

func (m *CreateRecipeIngredientsTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.RecipeIngredient{})
}
func (m *CreateRecipeIngredientsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(&models.RecipeIngredient{})
}

type CreateOrdersTable struct{}

func (m *CreateOrdersTable) Up(db *gorm.DB) error { return db.AutoMigrate(&models.Order{}) }
func (m *CreateOrdersTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(&models.Order{})
}
