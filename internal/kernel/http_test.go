package kernel_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/shashiranjanraj/brewhouse/app/repositories"
	"github.com/shashiranjanraj/brewhouse/app/services"
	"github.com/shashiranjanraj/brewhouse/config"
	"github.com/shashiranjanraj/brewhouse/internal/kernel"
	"github.com/shashiranjanraj/brewhouse/internal/testdb"
	"github.com/shashiranjanraj/brewhouse/pkg/auth"
	"github.com/shashiranjanraj/brewhouse/pkg/notification"
	"github.com/shashiranjanraj/brewhouse/pkg/storage"
)

type otpInbox struct {
	mu    sync.Mutex
	codes map[string]string
}

func (i *otpInbox) Notify(address string, n notification.Notification) error {
	otp, ok := n.(notification.OTP)
	if !ok {
		return fmt.Errorf("unexpected notification %T", n)
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	i.codes[address] = otp.Code
	return nil
}

func (i *otpInbox) code(address string) string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.codes[address]
}

type testAPI struct {
	t       *testing.T
	handler http.Handler
	inbox   *otpInbox
}

func testConfig() config.Config {
	return config.Config{
		AppEnv:         "testing",
		JWTSecret:      "test-secret",
		OrdersMaxLimit: 100,
		NotifyWorkers:  1,
		UploadMaxBytes: 1 << 20,
	}
}

func newAPI(t *testing.T, cfg config.Config) *testAPI {
	t.Helper()
	db := testdb.New(t)
	disk, err := storage.NewLocal(t.TempDir(), "/uploads")
	require.NoError(t, err)

	inbox := &otpInbox{codes: map[string]string{}}
	hasher := auth.BcryptHasher{Cost: bcrypt.MinCost}
	k, err := kernel.NewHTTPKernel(kernel.Deps{
		Config:   cfg,
		DB:       db,
		Disk:     disk,
		Hasher:   hasher,
		Notifier: inbox,
	})
	require.NoError(t, err)
	t.Cleanup(k.Shutdown)

	admin := services.NewAuthService(repositories.NewUserRepository(db), hasher,
		auth.NewTokenIssuer(cfg.JWTSecret, 0), inbox, false)
	_, err = admin.RegisterAdmin(context.Background(), "root", "root@example.com", "rootpass")
	require.NoError(t, err)

	return &testAPI{t: t, handler: k.Handler(), inbox: inbox}
}

func (a *testAPI) raw(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) do(method, path, token string, body any) (int, map[string]any) {
	a.t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(a.t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := a.raw(req)

	var out map[string]any
	require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec.Code, out
}

func (a *testAPI) login(email, password string) string {
	a.t.Helper()
	code, body := a.do(http.MethodPost, "/login", "", map[string]any{"email": email, "password": password})
	require.Equal(a.t, http.StatusOK, code, body)
	return body["token"].(string)
}

func (a *testAPI) signup(username string) string {
	a.t.Helper()
	email := username + "@example.com"
	code, body := a.do(http.MethodPost, "/register", "", map[string]any{
		"username": username, "email": email, "password": "pw-" + username,
	})
	require.Equal(a.t, http.StatusCreated, code, body)
	code, body = a.do(http.MethodPost, "/verify", "", map[string]any{"email": email, "otp": a.inbox.code(email)})
	require.Equal(a.t, http.StatusOK, code, body)
	return a.login(email, "pw-"+username)
}

// seedLatte creates a brew method, two ingredients and a recipe as admin and
// returns the recipe id.
func (a *testAPI) seedLatte(admin string, price float64) float64 {
	a.t.Helper()
	code, body := a.do(http.MethodPost, "/brew_methods/", admin, map[string]any{"name": "Espresso Machine", "details": "9 bar"})
	require.Equal(a.t, http.StatusCreated, code, body)
	methodID := body["id"]

	code, body = a.do(http.MethodPost, "/ingredients/", admin, map[string]any{"name": "Espresso"})
	require.Equal(a.t, http.StatusCreated, code, body)
	shot := body["id"]
	code, body = a.do(http.MethodPost, "/ingredients", admin, map[string]any{"name": "Milk"})
	require.Equal(a.t, http.StatusCreated, code, body)
	milk := body["id"]

	code, body = a.do(http.MethodPost, "/recipes/", admin, map[string]any{
		"name":           "Latte",
		"description":    "A smooth coffee inspired by Kenya's highland farms.",
		"price":          price,
		"takeaway":       true,
		"brew_method_id": methodID,
		"ingredients": []map[string]any{
			{"ingredient_id": shot, "quantity": "2 shots"},
			{"ingredient_id": milk, "quantity": "200ml"},
		},
	})
	require.Equal(a.t, http.StatusCreated, code, body)
	assert.Equal(a.t, "Recipe created.", body["message"])
	return body["recipe"].(map[string]any)["id"].(float64)
}

func TestRegistrationFlow(t *testing.T) {
	api := newAPI(t, testConfig())

	code, body := api.do(http.MethodPost, "/register", "", map[string]any{"username": "alice"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Missing required fields", body["message"])
	assert.Equal(t, true, body["error"])
	assert.Equal(t, float64(400), body["code"])

	code, body = api.do(http.MethodPost, "/register", "", map[string]any{
		"username": "alice", "email": "alice@example.com", "password": "secret",
	})
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "Registered. OTP sent to email.", body["message"])
	assert.Equal(t, false, body["error"])

	code, body = api.do(http.MethodPost, "/register", "", map[string]any{
		"username": "alice2", "email": "alice@example.com", "password": "secret",
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "Username or email already exists.", body["message"])

	code, body = api.do(http.MethodPost, "/login", "", map[string]any{"email": "alice@example.com", "password": "secret"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Verify email first.", body["message"])

	code, body = api.do(http.MethodPost, "/verify", "", map[string]any{"email": "alice@example.com", "otp": "000000x"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid OTP.", body["message"])

	otp := api.inbox.code("alice@example.com")
	code, _ = api.do(http.MethodPost, "/verify", "", map[string]any{"email": "alice@example.com", "otp": otp})
	assert.Equal(t, http.StatusOK, code)
	code, _ = api.do(http.MethodPost, "/verify", "", map[string]any{"email": "alice@example.com", "otp": otp})
	assert.Equal(t, http.StatusUnauthorized, code, "an OTP is single use")

	code, body = api.do(http.MethodPost, "/login", "", map[string]any{"email": "alice@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid credentials.", body["message"])

	code, body = api.do(http.MethodPost, "/login", "", map[string]any{"email": "alice@example.com", "password": "secret"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Login successful", body["message"])
	assert.Equal(t, "User", body["role"])
	assert.NotEmpty(t, body["token"])
}

func TestAdminSelfSignupForbidden(t *testing.T) {
	api := newAPI(t, testConfig())

	code, body := api.do(http.MethodPost, "/register", "", map[string]any{
		"username": "mallory", "email": "mallory@example.com", "password": "pw", "role": "Admin",
	})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Admin accounts cannot be self-registered.", body["message"])
}

func TestCatalogWritesNeedAdmin(t *testing.T) {
	api := newAPI(t, testConfig())
	user := api.signup("bob")

	code, body := api.do(http.MethodPost, "/brew_methods/", "", map[string]any{"name": "V60"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Missing or invalid token", body["message"])

	code, body = api.do(http.MethodPost, "/brew_methods/", "not-a-jwt", map[string]any{"name": "V60"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid token", body["message"])

	code, body = api.do(http.MethodPost, "/brew_methods/", user, map[string]any{"name": "V60"})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Admins only.", body["message"])

	code, body = api.do(http.MethodGet, "/brew_methods/", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, body["brew_methods"])
}

func TestRecipeLifecycle(t *testing.T) {
	api := newAPI(t, testConfig())
	admin := api.login("root@example.com", "rootpass")
	id := api.seedLatte(admin, 4.5)

	code, body := api.do(http.MethodGet, "/recipes/", "", nil)
	require.Equal(t, http.StatusOK, code)
	recipes := body["recipes"].([]any)
	require.Len(t, recipes, 1)
	latte := recipes[0].(map[string]any)
	assert.Equal(t, "Latte", latte["name"])
	assert.Equal(t, "Espresso Machine", latte["brew_method"].(map[string]any)["name"])
	ings := latte["ingredients"].([]any)
	require.Len(t, ings, 2)
	assert.Equal(t, "Espresso", ings[0].(map[string]any)["name"])
	assert.Equal(t, "2 shots", ings[0].(map[string]any)["quantity"])

	path := fmt.Sprintf("/recipes/%d", int(id))

	code, body = api.do(http.MethodPut, path, admin, map[string]any{
		"ingredients": []map[string]any{{"ingredient_id": 999, "quantity": "1"}},
	})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Ingredient 999 not found.", body["message"])

	code, body = api.do(http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["recipe"].(map[string]any)["ingredients"], 2, "failed update leaves lines intact")

	code, body = api.do(http.MethodPut, path, admin, map[string]any{"ingredients": []map[string]any{}})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "Recipe updated.", body["message"])
	assert.Empty(t, body["recipe"].(map[string]any)["ingredients"])

	code, body = api.do(http.MethodDelete, path, admin, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Recipe deleted.", body["message"])

	code, body = api.do(http.MethodDelete, path, admin, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Recipe not found.", body["message"])
}

func TestOrderLifecycle(t *testing.T) {
	api := newAPI(t, testConfig())
	admin := api.login("root@example.com", "rootpass")
	alice := api.signup("alice")
	bob := api.signup("bob")
	recipeID := api.seedLatte(admin, 4.5)

	code, body := api.do(http.MethodPost, "/orders/", alice, map[string]any{"recipe_id": recipeID, "quantity": 0})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Quantity must be a positive integer", body["message"])

	code, body = api.do(http.MethodPost, "/orders/", alice, map[string]any{"recipe_id": 999})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Recipe not found", body["message"])

	code, body = api.do(http.MethodPost, "/orders/", alice, map[string]any{"recipe_id": recipeID, "quantity": 2})
	require.Equal(t, http.StatusCreated, code, body)
	assert.Equal(t, "Order placed successfully", body["message"])
	assert.Equal(t, float64(2), body["quantity"])
	orderPath := fmt.Sprintf("/orders/%d", int(body["order_id"].(float64)))

	// Repricing the recipe must not touch the placed order.
	code, _ = api.do(http.MethodPut, fmt.Sprintf("/recipes/%d", int(recipeID)), admin, map[string]any{"price": 9.99})
	require.Equal(t, http.StatusOK, code)

	code, body = api.do(http.MethodGet, orderPath, alice, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 4.5, body["unit_price"])
	assert.Equal(t, "Latte", body["recipe_name"])
	assert.Equal(t, "Pending", body["status"])

	code, body = api.do(http.MethodGet, orderPath, bob, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Unauthorized", body["message"])

	code, body = api.do(http.MethodPatch, orderPath, alice, map[string]any{"status": "Shipped"})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Only admins can update status", body["message"])

	code, body = api.do(http.MethodPatch, orderPath, alice, map[string]any{"quantity": 3})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Order updated", body["message"])
	assert.Equal(t, float64(3), body["quantity"])

	code, body = api.do(http.MethodPatch, orderPath, admin, map[string]any{"status": "Confirmed"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Confirmed", body["status"])

	code, body = api.do(http.MethodDelete, orderPath, alice, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Only pending orders can be deleted", body["message"])

	code, body = api.do(http.MethodGet, "/orders/?limit=0", alice, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Limit must be a positive integer", body["message"])

	code, body = api.do(http.MethodGet, "/orders?status=Confirmed", admin, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["orders"], 1)

	code, body = api.do(http.MethodGet, "/orders/", bob, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, body["orders"])

	code, body = api.do(http.MethodDelete, orderPath, admin, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Order deleted", body["message"])

	code, body = api.do(http.MethodGet, orderPath, admin, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Order not found", body["message"])
}

func TestUploadAndServe(t *testing.T) {
	api := newAPI(t, testConfig())
	admin := api.login("root@example.com", "rootpass")
	user := api.signup("carol")

	upload := func(token, field, filename string) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		part, err := w.CreateFormFile(field, filename)
		require.NoError(t, err)
		part.Write([]byte("\x89PNG fake"))
		require.NoError(t, w.Close())

		req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
		req.Header.Set("Content-Type", w.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+token)
		return api.raw(req)
	}

	rec := upload(user, "file", "latte.png")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = upload(admin, "image", "latte.png")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "No file part")

	rec = upload(admin, "file", "notes.txt")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid file type")

	rec = upload(admin, "file", "latte art.png")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	url := body["image_url"].(string)
	assert.True(t, strings.HasPrefix(url, "/uploads/"), url)
	assert.True(t, strings.HasSuffix(url, "_latte_art.png"), url)

	rec = api.raw(httptest.NewRequest(http.MethodGet, url, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "\x89PNG fake", rec.Body.String())

	rec = api.raw(httptest.NewRequest(http.MethodGet, "/uploads/missing.png", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGraphQLCatalog(t *testing.T) {
	api := newAPI(t, testConfig())
	admin := api.login("root@example.com", "rootpass")
	api.seedLatte(admin, 3.25)

	code, body := api.do(http.MethodPost, "/graphql", "", map[string]any{
		"query": `{ recipes { name price brew_method { name } ingredients { name quantity } } brew_methods { name } }`,
	})
	require.Equal(t, http.StatusOK, code)
	require.Nil(t, body["errors"])
	data := body["data"].(map[string]any)
	recipe := data["recipes"].([]any)[0].(map[string]any)
	assert.Equal(t, "Latte", recipe["name"])
	assert.Equal(t, 3.25, recipe["price"])
	assert.Len(t, recipe["ingredients"], 2)
	assert.Len(t, data["brew_methods"], 1)
}

func TestOperationalEndpoints(t *testing.T) {
	api := newAPI(t, testConfig())

	code, body := api.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "up", body["database"])

	code, body = api.do(http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, true, body["error"])

	rec := api.raw(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "brewhouse_http_requests_total")
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitRPS = 1
	cfg.RateLimitBurst = 1
	api := newAPI(t, cfg)

	first := api.raw(httptest.NewRequest(http.MethodGet, "/brew_methods", nil))
	second := api.raw(httptest.NewRequest(http.MethodGet, "/brew_methods", nil))
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}
