package repositories

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shashiranjanraj/brewhouse/app/models"
)

const orderNotFound = "Order not found"

// OrderFilter narrows ListOrders. A nil UserID means every user.
type OrderFilter struct {
	UserID *uint
	Status *models.OrderStatus
	Limit  int
}

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// FindRecipeForOrder loads a live recipe without its relations; the price
// is all an order needs.
func (r *OrderRepository) FindRecipeForOrder(ctx context.Context, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := r.db.WithContext(ctx).First(&recipe, id).Error; err != nil {
		return nil, translate(err, "Recipe not found.", "")
	}
	return &recipe, nil
}

func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return storeErr(tx.Omit(clause.Associations).Create(order).Error)
	})
}

// recipeAnyState preloads the recipe even when it has been soft-deleted.
func recipeAnyState(db *gorm.DB) *gorm.DB { return db.Unscoped() }

func (r *OrderRepository) FindByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Preload("Recipe", recipeAnyState).First(&order, id).Error
	if err != nil {
		return nil, translate(err, orderNotFound, "")
	}
	return &order, nil
}

// List returns orders newest first.
func (r *OrderRepository) List(ctx context.Context, f OrderFilter) ([]models.Order, error) {
	q := r.db.WithContext(ctx).Preload("Recipe", recipeAnyState)
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	orders := []models.Order{}
	if err := q.Order("ordered_at DESC").Order("id DESC").Find(&orders).Error; err != nil {
		return nil, storeErr(err)
	}
	return orders, nil
}

// Update applies fields to one order atomically.
func (r *OrderRepository) Update(ctx context.Context, id uint, fields map[string]any) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			return storeErr(res.Error)
		}
		if res.RowsAffected == 0 {
			return translate(gorm.ErrRecordNotFound, orderNotFound, "")
		}
		return nil
	})
}

func (r *OrderRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Order{}, id)
		if res.Error != nil {
			return storeErr(res.Error)
		}
		if res.RowsAffected == 0 {
			return translate(gorm.ErrRecordNotFound, orderNotFound, "")
		}
		return nil
	})
}
