package api

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ErlynFabian/WearShop-sub000/internal/auth"
	"github.com/ErlynFabian/WearShop-sub000/internal/domain/message"
	"github.com/ErlynFabian/WearShop-sub000/internal/domain/notification"
	"github.com/ErlynFabian/WearShop-sub000/internal/domain/product"
	"github.com/ErlynFabian/WearShop-sub000/internal/domain/sale"
	"github.com/ErlynFabian/WearShop-sub000/internal/domain/user"
	"github.com/ErlynFabian/WearShop-sub000/internal/gateway"
	"github.com/ErlynFabian/WearShop-sub000/internal/infrastructure/tablestore"
	"github.com/ErlynFabian/WearShop-sub000/internal/state"
)

type testEnv struct {
	router   http.Handler
	products *product.Service
	sales    *sale.Service
	cache    *state.ProductCache
	cart     *state.Cart
	recent   *state.RecentlyViewed
	toasts   *state.ToastQueue
	jwt      *auth.JWTService
	users    *user.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	gw := tablestore.NewMemory()
	cache := state.NewProductCache()
	feedSync := state.NewFeedSync(cache)
	gw.Notify(func(ev gateway.ChangeEvent) { feedSync.HandleEvent(context.Background(), ev) })

	products := product.NewService(gw)
	sales := sale.NewService(gw)
	notifications := notification.NewService(gw)
	messages := message.NewService(gw)
	users := user.NewService(gw)

	jwtService := auth.NewJWTService("test-secret-key-for-testing-purposes", 15*time.Minute, time.Hour)

	cart := state.NewCart(nil)
	recent := state.NewRecentlyViewed(nil)
	toasts := state.NewToastQueue(time.Minute)

	handlers := NewHandlers(products, sales, notifications, messages, cache, cart, recent, toasts, Config{
		BaseURL:   "https://wearshop.ph",
		ShopPhone: "+639171234567",
	})
	authHandlers := NewAuthHandlers(users, jwtService)

	return &testEnv{
		router:   NewRouter(handlers, authHandlers, jwtService),
		products: products,
		sales:    sales,
		cache:    cache,
		cart:     cart,
		recent:   recent,
		toasts:   toasts,
		jwt:      jwtService,
		users:    users,
	}
}

func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	token, _, err := e.jwt.GenerateAccessToken("admin-1", "admin@wearshop.ph", "admin")
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	r := httptest.NewRequest(method, path, reader)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, r)
	return w
}

func (e *testEnv) seedProduct(t *testing.T, name string, price float64, stock int) *product.Product {
	t.Helper()
	p, err := e.products.Create(context.Background(), product.CreateInput{
		Name:  name,
		Cost:  price / 2,
		Price: price,
		Stock: stock,
	})
	require.NoError(t, err)
	e.cache.Upsert(*p)
	return p
}

// ============================================
// Product Endpoint Tests
// ============================================

func TestGetProducts_FilterAndSortFromQuery(t *testing.T) {
	env := newTestEnv(t)
	env.seedProduct(t, "Budget Tee", 200, 5)
	env.seedProduct(t, "Mid Hoodie", 700, 5)
	env.seedProduct(t, "Premium Jacket", 1500, 5)

	w := env.do(t, http.MethodGet, "/products?min_price=300&max_price=1000&sort=price-desc", "", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var got []product.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Mid Hoodie", got[0].Name)
}

func TestGetProduct_ServedFromCache(t *testing.T) {
	env := newTestEnv(t)
	p := env.seedProduct(t, "Tee", 350, 5)

	w := env.do(t, http.MethodGet, "/products/"+p.ID, "", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var got product.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, p.ID, got.ID)
}

func TestGetProduct_NotFound(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/products/missing", "", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateProduct_RequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	body := product.CreateInput{Name: "Tee", Price: 350}

	w := env.do(t, http.MethodPost, "/products", "", body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	customerToken, _, err := env.jwt.GenerateAccessToken("cust-1", "c@d.e", "customer")
	require.NoError(t, err)
	w = env.do(t, http.MethodPost, "/products", customerToken, body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodPost, "/products", env.adminToken(t), body)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestGetProductShare(t *testing.T) {
	env := newTestEnv(t)
	p := env.seedProduct(t, "Tee", 350, 5)

	w := env.do(t, http.MethodGet, "/products/"+p.ID+"/share?size=M&color=black", "", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var got map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Contains(t, got["whatsapp"], "https://wa.me/639171234567")
	assert.Contains(t, got["whatsapp"], "Size%3A+M")
	assert.Equal(t, "https://wearshop.ph/products/"+p.ID, got["permalink"])
}

// ============================================
// Sale Endpoint Tests
// ============================================

func TestCreateSale_InsufficientStock(t *testing.T) {
	env := newTestEnv(t)
	p := env.seedProduct(t, "Tee", 350, 2)

	w := env.do(t, http.MethodPost, "/sales", env.adminToken(t), sale.CreateInput{
		ProductID: p.ID,
		Quantity:  5,
		Status:    sale.StatusCompleted,
	})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "insufficient stock")
}

func TestCreateSale_Succeeds(t *testing.T) {
	env := newTestEnv(t)
	p := env.seedProduct(t, "Tee", 350, 10)

	w := env.do(t, http.MethodPost, "/sales", env.adminToken(t), sale.CreateInput{
		ProductID: p.ID,
		Quantity:  3,
		Status:    sale.StatusCompleted,
	})

	require.Equal(t, http.StatusCreated, w.Code)
	var created sale.Sale
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, 1050.0, created.Total)

	stock, err := env.sales.GetAvailableStock(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, stock)
}

func TestCreateSale_CancelledSkipsStockCheck(t *testing.T) {
	env := newTestEnv(t)
	p := env.seedProduct(t, "Tee", 350, 1)

	w := env.do(t, http.MethodPost, "/sales", env.adminToken(t), sale.CreateInput{
		ProductID: p.ID,
		Quantity:  5,
		Status:    sale.StatusCancelled,
	})

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestSalesEndpoints_RequireAdmin(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/sales", "/sales/summary", "/sales/export"} {
		w := env.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestExportSales_CSV(t *testing.T) {
	env := newTestEnv(t)
	p := env.seedProduct(t, "Tee", 350, 10)

	_, err := env.sales.Create(context.Background(), sale.CreateInput{
		ProductID: p.ID, Quantity: 1, Status: sale.StatusCompleted,
	})
	require.NoError(t, err)
	_, err = env.sales.Create(context.Background(), sale.CreateInput{
		ProductID: p.ID, Quantity: 1, Status: sale.StatusPending,
	})
	require.NoError(t, err)

	w := env.do(t, http.MethodGet, "/sales/export?format=csv", env.adminToken(t), nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "sales-report-")

	rows, err := csv.NewReader(strings.NewReader(w.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2) // header + the completed sale only
	assert.Equal(t, "completed", rows[1][9])
}

func TestExportSales_UnsupportedFormat(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/sales/export?format=pdf", env.adminToken(t), nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetSalesSummary(t *testing.T) {
	env := newTestEnv(t)
	p := env.seedProduct(t, "Tee", 350, 100)

	_, err := env.sales.Create(context.Background(), sale.CreateInput{
		ProductID: p.ID, Quantity: 2, Status: sale.StatusCompleted,
	})
	require.NoError(t, err)

	from := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	to := time.Now().AddDate(0, 0, 1).Format("2006-01-02")
	w := env.do(t, http.MethodGet, "/sales/summary?from="+from+"&to="+to, env.adminToken(t), nil)

	require.Equal(t, http.StatusOK, w.Code)
	var summary sale.PeriodSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, 1, summary.Count)
	assert.Equal(t, 700.0, summary.Total)
}

func TestGetSalesSummary_BadDate(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/sales/summary?from=yesterday", env.adminToken(t), nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ============================================
// Contact Message Endpoint Tests
// ============================================

func TestSubmitMessage_PublicWithValidation(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/messages", "", message.SubmitInput{
		Name: "Ana", Body: "Do you ship to Cebu?",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodPost, "/messages", "", message.SubmitInput{
		Name: "Ana", Body: "hi", Phone: "12345",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetMessages_AdminOnly(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/messages", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodGet, "/messages", env.adminToken(t), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

// ============================================
// Auth Endpoint Tests
// ============================================

func TestAuthFlow_RegisterLoginMe(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/auth/register", "", RegisterRequest{
		Email: "ana@example.com", Password: "supersecret", Name: "Ana",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodPost, "/auth/login", "", LoginRequest{
		Email: "ana@example.com", Password: "supersecret",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var cookieToken string
	for _, c := range w.Result().Cookies() {
		if c.Name == "access_token" {
			cookieToken = c.Value
		}
	}
	require.NotEmpty(t, cookieToken)

	w = env.do(t, http.MethodGet, "/auth/me", cookieToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, "ana@example.com", me.Email)
	assert.Equal(t, "customer", me.Role)
}

func TestLogin_WrongPassword(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.users.Register(context.Background(), "ana@example.com", "supersecret", "Ana")
	require.NoError(t, err)

	w := env.do(t, http.MethodPost, "/auth/login", "", LoginRequest{
		Email: "ana@example.com", Password: "wrong-password",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	body := RegisterRequest{Email: "ana@example.com", Password: "supersecret", Name: "Ana"}

	w := env.do(t, http.MethodPost, "/auth/register", "", body)
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodPost, "/auth/register", "", body)
	assert.Equal(t, http.StatusConflict, w.Code)
}

// ============================================
// Cart / Recently-Viewed / Toast Endpoint Tests
// ============================================

func TestCart_AddSetRemoveClear(t *testing.T) {
	env := newTestEnv(t)
	p := env.seedProduct(t, "Oversized Tee", 350, 10)

	w := env.do(t, http.MethodPost, "/cart", "", cartAddRequest{ProductID: p.ID, Quantity: 2})
	require.Equal(t, http.StatusOK, w.Code)

	// Adding the same product merges into the existing line.
	w = env.do(t, http.MethodPost, "/cart", "", cartAddRequest{ProductID: p.ID, Quantity: 1})
	require.Equal(t, http.StatusOK, w.Code)

	var got cartResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got.Items, 1)
	assert.Equal(t, 3, got.Items[0].Quantity)
	assert.Equal(t, 3, got.TotalQuantity)
	require.NotNil(t, got.Items[0].Product)
	assert.Equal(t, "Oversized Tee", got.Items[0].Product.Name)

	w = env.do(t, http.MethodPut, "/cart/"+p.ID, "", cartQuantityRequest{Quantity: 5})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 5, got.Items[0].Quantity)

	w = env.do(t, http.MethodDelete, "/cart/"+p.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Empty(t, got.Items)

	env.cart.Add(p.ID, 1)
	w = env.do(t, http.MethodDelete, "/cart", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, env.cart.Items())
}

func TestAddToCart_Validation(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/cart", "", cartAddRequest{ProductID: "", Quantity: 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/cart", "", cartAddRequest{ProductID: "p-1", Quantity: 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Empty(t, env.cart.Items())
}

func TestGetProduct_RecordsRecentlyViewed(t *testing.T) {
	env := newTestEnv(t)
	first := env.seedProduct(t, "Oversized Tee", 350, 10)
	second := env.seedProduct(t, "Classic Hoodie", 850, 5)

	w := env.do(t, http.MethodGet, "/products/"+first.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, http.MethodGet, "/products/"+second.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/recently-viewed", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var views []RecentView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &views))
	require.Len(t, views, 2)
	assert.Equal(t, second.ID, views[0].ProductID)
	assert.Equal(t, first.ID, views[1].ProductID)
	require.NotNil(t, views[0].Product)
	assert.Equal(t, "Classic Hoodie", views[0].Product.Name)
}

func TestToasts_PushedByAdminMutations(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)

	w := env.do(t, http.MethodPost, "/products", token, product.CreateInput{
		Name: "Oversized Tee", Cost: 150, Price: 350, Stock: 10,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodGet, "/toasts", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var toasts []state.Toast
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &toasts))
	require.Len(t, toasts, 1)
	assert.Equal(t, "Product created: Oversized Tee", toasts[0].Message)
	assert.Equal(t, state.ToastSuccess, toasts[0].Kind)

	w = env.do(t, http.MethodPost, "/toasts/"+toasts[0].ID+"/dismiss", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, env.toasts.List())
}

func TestToasts_RequireAdmin(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/toasts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
