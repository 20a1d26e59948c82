package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/brewhouse/app/models"
	"github.com/shashiranjanraj/brewhouse/app/repositories"
	"github.com/shashiranjanraj/brewhouse/app/services"
	"github.com/shashiranjanraj/brewhouse/internal/testdb"
	"github.com/shashiranjanraj/brewhouse/pkg/auth"
	"github.com/shashiranjanraj/brewhouse/pkg/notification"
)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(address string, n notification.Notification) error {
	return m.Called(address, n).Error(0)
}

type fixture struct {
	db       *gorm.DB
	notifier *mockNotifier
	auth     *services.AuthService
	catalog  *services.CatalogService
	orders   *services.OrderService
	tokens   *auth.TokenIssuer
}

type fixtureOpts struct {
	allowAdminSignup  bool
	strictTransitions bool
}

func newFixture(t *testing.T, opts ...fixtureOpts) *fixture {
	t.Helper()
	var o fixtureOpts
	if len(opts) > 0 {
		o = opts[0]
	}

	db := testdb.New(t)
	users := repositories.NewUserRepository(db)
	n := &mockNotifier{}
	tokens := auth.NewTokenIssuer("test-secret", 0)

	return &fixture{
		db:       db,
		notifier: n,
		tokens:   tokens,
		auth:     services.NewAuthService(users, auth.BcryptHasher{Cost: bcrypt.MinCost}, tokens, n, o.allowAdminSignup),
		catalog:  services.NewCatalogService(repositories.NewCatalogRepository(db), nil, time.Minute),
		orders:   services.NewOrderService(repositories.NewOrderRepository(db), users, 100, o.strictTransitions),
	}
}

// registerVerified registers a user, captures its OTP and verifies it.
func (f *fixture) registerVerified(t *testing.T, username string) auth.Principal {
	t.Helper()
	ctx := context.Background()
	email := username + "@example.com"

	var code string
	f.notifier.On("Notify", email, mock.AnythingOfType("notification.OTP")).
		Run(func(args mock.Arguments) { code = args.Get(1).(notification.OTP).Code }).
		Return(nil).Once()

	u, err := f.auth.Register(ctx, services.RegisterInput{Username: username, Email: email, Password: "secret"})
	require.NoError(t, err)
	require.NoError(t, f.auth.Verify(ctx, services.VerifyInput{Email: email, OTP: code}))
	return auth.Principal{UserID: u.ID, Role: auth.RoleUser}
}

func (f *fixture) admin(t *testing.T) auth.Principal {
	t.Helper()
	u, err := f.auth.RegisterAdmin(context.Background(), "root", "root@example.com", "secret")
	require.NoError(t, err)
	return auth.Principal{UserID: u.ID, Role: auth.RoleAdmin}
}

// seedRecipe creates a brew method, two ingredients and one recipe.
func (f *fixture) seedRecipe(t *testing.T, admin auth.Principal, price float64) (*services.RecipeView, []models.Ingredient) {
	t.Helper()
	ctx := context.Background()

	bm, err := f.catalog.CreateBrewMethod(ctx, admin, services.BrewMethodInput{Name: "Espresso Machine"})
	require.NoError(t, err)
	milk, err := f.catalog.CreateIngredient(ctx, admin, services.IngredientInput{Name: "Milk"})
	require.NoError(t, err)
	shot, err := f.catalog.CreateIngredient(ctx, admin, services.IngredientInput{Name: "Espresso"})
	require.NoError(t, err)

	r, err := f.catalog.CreateRecipe(ctx, admin, services.CreateRecipeInput{
		Name:         "Latte",
		Price:        &price,
		BrewMethodID: bm.ID,
		Ingredients: []services.IngredientLine{
			{IngredientID: shot.ID, Quantity: "2 shots"},
			{IngredientID: milk.ID, Quantity: "200ml"},
		},
	})
	require.NoError(t, err)
	return r, []models.Ingredient{*milk, *shot}
}
