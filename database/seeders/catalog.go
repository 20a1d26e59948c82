package seeders

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/brewhouse/app/models"
	"github.com/shashiranjanraj/brewhouse/app/repositories"
	"github.com/shashiranjanraj/brewhouse/app/services"
	"github.com/shashiranjanraj/brewhouse/config"
	"github.com/shashiranjanraj/brewhouse/pkg/apperr"
	"github.com/shashiranjanraj/brewhouse/pkg/auth"
	"github.com/shashiranjanraj/brewhouse/pkg/notification"
)

func init() {
	Register("admin", SeedAdmin)
	Register("catalog", SeedCatalog)
}

// noopNotifier satisfies services.Notifier; seeded admins are pre-verified.
type noopNotifier struct{}

func (noopNotifier) Notify(string, notification.Notification) error { return nil }

// SeedAdmin creates the ADMIN_* account unless the username or email is
// already taken.
func SeedAdmin(ctx context.Context, db *gorm.DB) error {
	cfg := config.Get()
	if cfg.AdminPassword == "" {
		return errors.New("ADMIN_PASSWORD must be set to seed the admin account")
	}

	svc := services.NewAuthService(
		repositories.NewUserRepository(db),
		auth.BcryptHasher{},
		auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL),
		noopNotifier{},
		false,
	)
	_, err := svc.RegisterAdmin(ctx, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword)
	if apperr.Is(err, apperr.KindConflict) {
		return nil
	}
	return err
}

type sampleRecipe struct {
	name, profile, inspiration, flavor string
	price                              float64
	takeaway                           bool
	method                             string
	ingredients                        []line
}

type line struct{ ingredient, quantity string }

var (
	sampleMethods = []models.BrewMethod{
		{Name: "Espresso", Details: "Hot water forced through finely ground coffee at high pressure."},
		{Name: "Pour Over", Details: "Water poured by hand over grounds in a paper filter."},
		{Name: "French Press", Details: "Coarse grounds steeped, then pressed through a metal mesh."},
		{Name: "Cold Brew", Details: "Grounds steeped in cold water for 12 to 24 hours."},
	}

	sampleIngredients = []string{"Espresso Shot", "Steamed Milk", "Milk Foam", "Caramel Syrup", "Cinnamon", "Ice", "Water"}

	sampleRecipes = []sampleRecipe{
		{"Highland Caramel Latte", "smooth", "highland farms", "caramel", 4.5, true, "Espresso",
			[]line{{"Espresso Shot", "2 shots"}, {"Steamed Milk", "200ml"}, {"Caramel Syrup", "15ml"}}},
		{"Coastal Spice Cappuccino", "aromatic", "coastal vibes", "spice", 4.0, false, "Espresso",
			[]line{{"Espresso Shot", "1 shot"}, {"Steamed Milk", "100ml"}, {"Milk Foam", "100ml"}, {"Cinnamon", "a pinch"}}},
		{"Market Citrus Pour Over", "zesty", "lively markets", "citrus", 3.75, true, "Pour Over",
			[]line{{"Water", "300ml"}}},
		{"Urban Bold Cold Brew", "bold", "urban cafes", "citrus", 3.5, true, "Cold Brew",
			[]line{{"Water", "250ml"}, {"Ice", "1 cup"}}},
	}
)

// SeedCatalog inserts the sample brew methods, ingredients and recipes. It
// does nothing when any recipe already exists.
func SeedCatalog(ctx context.Context, db *gorm.DB) error {
	var n int64
	if err := db.WithContext(ctx).Model(&models.Recipe{}).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		methodIDs := make(map[string]uint, len(sampleMethods))
		for _, m := range sampleMethods {
			m := m
			if err := tx.Where(models.BrewMethod{Name: m.Name}).FirstOrCreate(&m).Error; err != nil {
				return err
			}
			methodIDs[m.Name] = m.ID
		}

		ingredientIDs := make(map[string]uint, len(sampleIngredients))
		for _, name := range sampleIngredients {
			in := models.Ingredient{Name: name}
			if err := tx.Where(models.Ingredient{Name: name}).FirstOrCreate(&in).Error; err != nil {
				return err
			}
			ingredientIDs[name] = in.ID
		}

		for _, s := range sampleRecipes {
			recipe := models.Recipe{
				Name:         s.name,
				Description:  fmt.Sprintf("A %s coffee inspired by Kenya's %s. Features notes of %s.", s.profile, s.inspiration, s.flavor),
				Price:        s.price,
				Takeaway:     s.takeaway,
				BrewMethodID: methodIDs[s.method],
			}
			for _, l := range s.ingredients {
				recipe.Ingredients = append(recipe.Ingredients, models.RecipeIngredient{
					IngredientID: ingredientIDs[l.ingredient],
					Quantity:     l.quantity,
				})
			}
			if err := tx.Create(&recipe).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
