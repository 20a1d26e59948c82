package models

import (
	"time"

	"gorm.io/gorm"
)

// BrewMethod is a preparation technique such as "Pour Over".
type BrewMethod struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:120;not null" json:"name"`
	Details   string    `gorm:"type:text" json:"details"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// Ingredient is a named catalog item. Names are unique.
type Ingredient struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:120;not null" json:"name"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// Recipe is an orderable drink. Deleting a recipe only sets DeletedAt so
// orders placed against it keep resolving.
type Recipe struct {
	gorm.Model
	Name         string             `gorm:"size:255;not null" json:"name"`
	Description  string             `gorm:"type:text" json:"description"`
	Price        float64            `gorm:"not null;default:0" json:"price"`
	Takeaway     bool               `gorm:"not null;default:false" json:"takeaway"`
	ImageURL     *string            `gorm:"size:512" json:"image_url"`
	BrewMethodID uint               `gorm:"not null;index" json:"brew_method_id"`
	BrewMethod   *BrewMethod        `json:"brew_method,omitempty"`
	CreatedBy    uint               `gorm:"index" json:"created_by"`
	Ingredients  []RecipeIngredient `gorm:"constraint:OnDelete:CASCADE" json:"ingredients,omitempty"`
}

// RecipeIngredient links a recipe to an ingredient with a free-form
// quantity such as "2 shots". Rows are listed in insertion order.
type RecipeIngredient struct {
	ID           uint        `gorm:"primaryKey" json:"-"`
	RecipeID     uint        `gorm:"not null;index" json:"-"`
	IngredientID uint        `gorm:"not null;index" json:"ingredient_id"`
	Quantity     string      `gorm:"size:120" json:"quantity"`
	Ingredient   *Ingredient `json:"ingredient,omitempty"`
}
