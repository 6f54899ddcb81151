package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/xiebiao/tintayhojas/internal/application/admin"
	"github.com/xiebiao/tintayhojas/internal/application/apptest"
	catalogapp "github.com/xiebiao/tintayhojas/internal/application/catalog"
	"github.com/xiebiao/tintayhojas/internal/domain/order"
	"github.com/xiebiao/tintayhojas/internal/domain/user"
	"github.com/xiebiao/tintayhojas/internal/infrastructure/config"
	"github.com/xiebiao/tintayhojas/internal/infrastructure/receipt"
	"github.com/xiebiao/tintayhojas/internal/interface/http/handler"
	"github.com/xiebiao/tintayhojas/internal/interface/http/middleware"
	"github.com/xiebiao/tintayhojas/pkg/jwt"

	cartapp "github.com/xiebiao/tintayhojas/internal/application/cart"
	orderapp "github.com/xiebiao/tintayhojas/internal/application/order"
	reviewapp "github.com/xiebiao/tintayhojas/internal/application/review"
	userapp "github.com/xiebiao/tintayhojas/internal/application/user"
)

type envelope struct {
	Code     int             `json:"code"`
	Message  string          `json:"message"`
	Data     json.RawMessage `json:"data"`
	Redirect string          `json:"redirect"`
}

type app struct {
	t      *testing.T
	engine *gin.Engine
	store  *apptest.Store
	images *apptest.Images
	events *apptest.Events
	jwt    *jwt.Manager
}

func newApp(t *testing.T) *app {
	t.Helper()
	store := apptest.NewStore()
	images := apptest.NewImages()
	cache := apptest.NewCache()
	events := &apptest.Events{}
	sessions := apptest.NewSessions()
	logger := gecho.NewDefaultLogger()
	jwtManager := jwt.NewManager("test-secret", time.Hour, 24*time.Hour)
	pricer, err := order.NewPricer(order.DefaultTaxRate)
	require.NoError(t, err)

	service := user.NewService(store.Users(), user.WithBcryptCost(bcrypt.MinCost))
	register := userapp.NewRegisterUseCase(store, service, store.Users(), store.Profiles(), store.Carts(), logger)

	books := admin.NewBookUseCase(store, store.Books(), store.Authors(), store.Collections(), store.Suppliers(), store.Carts(), images, cache)
	authors := admin.NewAuthorUseCase(store, store.Authors(), store.Books(), store.Carts(), images, cache)
	collections := admin.NewCollectionUseCase(store, store.Collections(), store.Books(), store.Carts(), cache)
	suppliers := admin.NewSupplierUseCase(store, store.Suppliers())
	orders := admin.NewOrderUseCase(store, store.Orders(), store.Users(), events, logger)
	users := admin.NewUserUseCase(store, store.Users(), store.Profiles(), store.Orders(), register, images)
	reviews := admin.NewReviewUseCase(store.Reviews(), store.Books(), store.Users())

	h := &Handlers{
		Catalog: handler.NewCatalogHandler(
			catalogapp.NewHomeUseCase(store.Books(), cache, images.URL, 4, 4),
			catalogapp.NewListBooksUseCase(store.Books(), images.URL),
			catalogapp.NewGetBookUseCase(store.Books(), store.Reviews(), store.Orders(), images.URL),
			catalogapp.NewListAuthorsUseCase(store.Authors(), images.URL),
			catalogapp.NewGetAuthorUseCase(store.Authors(), store.Books(), images.URL),
			catalogapp.NewListCollectionsUseCase(store.Collections(), cache),
			reviewapp.NewListReviewsUseCase(store.Reviews()),
		),
		Review: handler.NewReviewHandler(reviewapp.NewSubmitReviewUseCase(store.Reviews(), store.Orders(), store.Books())),
		Cart: handler.NewCartHandler(
			cartapp.NewViewCartUseCase(store.Carts()),
			cartapp.NewAddToCartUseCase(store.Books(), store.Carts(), store),
			cartapp.NewChangeItemUseCase(store.Carts()),
		),
		Order: handler.NewOrderHandler(
			orderapp.NewPreviewCheckoutUseCase(store.Carts(), pricer),
			orderapp.NewCheckoutUseCase(store, store.Carts(), store.Books(), store.Orders(), store.Users(), pricer, events, logger),
			orderapp.NewGetReceiptUseCase(store.Orders()),
			orderapp.NewReceiptPDFUseCase(store.Orders(), receipt.NewPDFRenderer("Tinta y Hojas")),
			orderapp.NewListUserOrdersUseCase(store.Orders()),
		),
		User: handler.NewUserHandler(
			register,
			userapp.NewLoginUseCase(service, jwtManager, sessions, logger),
			userapp.NewLogoutUseCase(sessions, jwtManager),
			userapp.NewRefreshTokenUseCase(store.Users(), jwtManager, sessions),
			userapp.NewProfileUseCase(store.Profiles(), images),
		),
		Admin: handler.NewAdminHandler(
			admin.NewDashboardUseCase(orders, users, books, authors, collections, suppliers, reviews),
			books, authors, collections, suppliers, orders, users, reviews,
		),
	}

	cfg := &config.Config{
		Server: config.ServerConfig{Mode: gin.TestMode, MediaURL: "/media", MediaRoot: t.TempDir(), MaxUploadMB: 5},
		CORS:   config.CORSConfig{AllowOrigins: []string{"*"}},
	}
	engine, err := New(cfg, logger, h, middleware.NewAuthMiddleware(jwtManager, sessions, store.Users()),
		middleware.NewRateLimiter(config.RateLimitConfig{}))
	require.NoError(t, err)

	return &app{t: t, engine: engine, store: store, images: images, events: events, jwt: jwtManager}
}

func (a *app) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return a.send(req, token)
}

func (a *app) send(req *http.Request, token string) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

// tokenFor 直接为已存在的用户签发Token
func (a *app) tokenFor(u *user.User) string {
	a.t.Helper()
	pair, err := a.jwt.GenerateToken(jwt.Identity{UserID: u.ID, Username: u.Username, Email: u.Email, IsStaff: u.IsStaff})
	require.NoError(a.t, err)
	return pair.AccessToken
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func TestPing(t *testing.T) {
	a := newApp(t)
	w, env := a.do(http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, env.Code)
}

func TestShoppingFlow(t *testing.T) {
	a := newApp(t)
	author := a.store.AddAuthor("Juan Rulfo")
	coll := a.store.AddCollection("Narrativa")
	book := a.store.AddBookTo("Pedro Páramo", "10.00", 5, author.ID, coll.ID)

	_, env := a.do(http.MethodPost, "/api/v1/users/register", "", gin.H{
		"username": "lectora", "email": "lectora@example.com", "password": "secreto123",
	})
	require.Equal(t, 0, env.Code, env.Message)

	_, env = a.do(http.MethodPost, "/api/v1/users/login", "", gin.H{"username": "lectora", "password": "secreto123"})
	require.Equal(t, 0, env.Code, env.Message)
	login := decode[struct {
		AccessToken string `json:"access_token"`
	}](t, env)
	token := login.AccessToken
	require.NotEmpty(t, token)

	_, env = a.do(http.MethodPost, fmt.Sprintf("/api/v1/cart/books/%d", book.ID), token, nil)
	require.Equal(t, 0, env.Code, env.Message)
	_, env = a.do(http.MethodPost, fmt.Sprintf("/api/v1/cart/books/%d", book.ID), token, nil)
	require.Equal(t, 0, env.Code, env.Message)

	_, env = a.do(http.MethodGet, "/api/v1/checkout", token, nil)
	require.Equal(t, 0, env.Code, env.Message)
	preview := decode[orderapp.CheckoutPreview](t, env)
	assert.Equal(t, "20.00", preview.Subtotal)
	assert.Equal(t, "3.20", preview.Taxes)
	assert.Equal(t, "23.20", preview.Total)

	_, env = a.do(http.MethodPost, "/api/v1/checkout", token, gin.H{"address": "Av. Reforma 222"})
	require.Equal(t, 0, env.Code, env.Message)
	placed := decode[orderapp.CheckoutResponse](t, env)
	assert.Equal(t, "23.20", placed.Total)
	assert.Equal(t, 3, a.store.Stock(book.ID))
	assert.Len(t, a.events.Paid, 1)

	_, env = a.do(http.MethodGet, fmt.Sprintf("/api/v1/orders/%d/receipt", placed.OrderID), token, nil)
	assert.Equal(t, 0, env.Code, env.Message)

	w, _ := a.do(http.MethodGet, fmt.Sprintf("/api/v1/orders/%d/receipt.pdf", placed.OrderID), token, nil)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))

	_, env = a.do(http.MethodGet, "/api/v1/profile/orders", token, nil)
	require.Equal(t, 0, env.Code)
	assert.Contains(t, string(env.Data), placed.OrderNo)

	reviewPath := fmt.Sprintf("/api/v1/books/%d/reviews", book.ID)
	_, env = a.do(http.MethodPost, reviewPath, token, gin.H{"rating": 5, "comment": "Inolvidable"})
	require.Equal(t, 0, env.Code, env.Message)
	_, env = a.do(http.MethodPost, reviewPath, token, gin.H{"rating": 4, "comment": "Otra vez"})
	assert.NotEqual(t, 0, env.Code, "同一本书只能评价一次")

	_, env = a.do(http.MethodGet, fmt.Sprintf("/api/v1/books/%d", book.ID), token, nil)
	require.Equal(t, 0, env.Code)
	page := decode[catalogapp.BookPage](t, env)
	require.NotNil(t, page.Eligibility)
	assert.True(t, page.Eligibility.AlreadyReviewed)
	assert.Len(t, page.Reviews, 1)
}

func TestReviewRequiresPurchase(t *testing.T) {
	a := newApp(t)
	u := a.store.AddUser("curioso", false)
	book := a.store.AddBook("Aura", "99.00", 2)

	_, env := a.do(http.MethodPost, fmt.Sprintf("/api/v1/books/%d/reviews", book.ID), a.tokenFor(u),
		gin.H{"rating": 3, "comment": "Sin leer"})
	assert.NotEqual(t, 0, env.Code)
	assert.Equal(t, 0, a.store.ReviewCount())
}

func TestProtectedRoutesRedirectToLogin(t *testing.T) {
	a := newApp(t)
	for _, path := range []string{"/api/v1/cart", "/api/v1/checkout", "/api/v1/profile", "/api/v1/admin/dashboard"} {
		_, env := a.do(http.MethodGet, path, "", nil)
		assert.Equal(t, 40100, env.Code, path)
		assert.Equal(t, "/login", env.Redirect, path)
	}
}

func TestParameterErrors(t *testing.T) {
	a := newApp(t)
	u := a.store.AddUser("lectora", false)
	token := a.tokenFor(u)
	book := a.store.AddBook("Aura", "99.00", 2)

	_, env := a.do(http.MethodPost, "/api/v1/checkout", token, gin.H{})
	assert.Equal(t, 40900, env.Code)

	_, env = a.do(http.MethodPost, "/api/v1/cart/books/abc", token, nil)
	assert.Equal(t, 40900, env.Code)

	_, env = a.do(http.MethodPost, fmt.Sprintf("/api/v1/books/%d/reviews", book.ID), token, gin.H{"rating": 9, "comment": "x"})
	assert.Equal(t, 40900, env.Code)

	_, env = a.do(http.MethodGet, "/api/v1/books?sort=price", "", nil)
	assert.Equal(t, 40900, env.Code)

	_, env = a.do(http.MethodPost, "/api/v1/users/register", "", gin.H{"username": "x", "email": "no-es-correo", "password": "secreto123"})
	assert.Equal(t, 40900, env.Code)
}

func TestCartItemActions(t *testing.T) {
	a := newApp(t)
	u := a.store.AddUser("lectora", false)
	token := a.tokenFor(u)
	book := a.store.AddBook("Aura", "99.00", 5)
	itemID := a.store.AddCartItem(u.ID, book.ID, 1)

	path := fmt.Sprintf("/api/v1/cart/items/%d", itemID)
	_, env := a.do(http.MethodPatch, path, token, gin.H{"action": "increment"})
	require.Equal(t, 0, env.Code, env.Message)
	assert.Equal(t, 2, a.store.CartQuantities(u.ID)[book.ID])

	_, env = a.do(http.MethodPatch, path, token, gin.H{"action": "explode"})
	assert.Equal(t, 40900, env.Code)

	_, env = a.do(http.MethodDelete, path, token, nil)
	require.Equal(t, 0, env.Code, env.Message)
	assert.Empty(t, a.store.CartQuantities(u.ID))
}

func TestAdminRequiresStaff(t *testing.T) {
	a := newApp(t)
	customer := a.store.AddUser("lectora", false)
	staff := a.store.AddUser("librera", true)

	_, env := a.do(http.MethodGet, "/api/v1/admin/dashboard", a.tokenFor(customer), nil)
	assert.Equal(t, 40106, env.Code)

	_, env = a.do(http.MethodGet, "/api/v1/admin/dashboard", a.tokenFor(staff), nil)
	assert.Equal(t, 0, env.Code, env.Message)
}

func TestAdminCollectionsAndOrders(t *testing.T) {
	a := newApp(t)
	staff := a.store.AddUser("librera", true)
	customer := a.store.AddUser("lectora", false)
	token := a.tokenFor(staff)

	_, env := a.do(http.MethodPost, "/api/v1/admin/collections", token, gin.H{"name": "Poesía", "background_color": "#zzzzzz"})
	assert.Equal(t, 40900, env.Code)

	_, env = a.do(http.MethodPost, "/api/v1/admin/collections", token, gin.H{"name": "Poesía", "background_color": "#f5e6cc"})
	require.Equal(t, 0, env.Code, env.Message)

	_, env = a.do(http.MethodPost, "/api/v1/admin/orders", token, gin.H{
		"user_id": customer.ID, "address": "Calle 5", "total": "250.00",
	})
	require.Equal(t, 0, env.Code, env.Message)
	created := decode[struct {
		ID     uint   `json:"id"`
		Status string `json:"status"`
	}](t, env)
	assert.Equal(t, "pending", created.Status)

	statusPath := fmt.Sprintf("/api/v1/admin/orders/%d/status", created.ID)
	_, env = a.do(http.MethodPatch, statusPath, token, gin.H{"status": "lost"})
	assert.Equal(t, 40900, env.Code)

	_, env = a.do(http.MethodPatch, statusPath, token, gin.H{"status": "shipped"})
	require.Equal(t, 0, env.Code, env.Message)
	require.Len(t, a.events.Changed, 1)
	assert.Equal(t, "shipped", a.events.Changed[0].To)

	_, env = a.do(http.MethodPost, "/api/v1/admin/orders", token, gin.H{"user_id": customer.ID, "address": "Calle 5", "total": "1.999"})
	assert.Equal(t, 40900, env.Code)

	_, env = a.do(http.MethodDelete, fmt.Sprintf("/api/v1/admin/orders/%d", created.ID), token, nil)
	require.Equal(t, 0, env.Code, env.Message)
	assert.Equal(t, 0, a.store.OrderCount())
}

func TestAdminCreateBookMultipart(t *testing.T) {
	a := newApp(t)
	staff := a.store.AddUser("librera", true)
	author := a.store.AddAuthor("Juan Rulfo")
	coll := a.store.AddCollection("Narrativa")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fields := map[string]string{
		"title":         "El llano en llamas",
		"author_id":     fmt.Sprint(author.ID),
		"collection_id": fmt.Sprint(coll.ID),
		"price":         "149.50",
		"stock":         "7",
		"recommended":   "true",
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	fw, err := mw.CreateFormFile("image", "portada.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("png"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/books", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	_, env := a.send(req, a.tokenFor(staff))
	require.Equal(t, 0, env.Code, env.Message)

	created := decode[struct {
		Title string `json:"title"`
		Price string `json:"price"`
		Image string `json:"image"`
	}](t, env)
	assert.Equal(t, "El llano en llamas", created.Title)
	assert.Equal(t, "149.50", created.Price)
	assert.Equal(t, "/media/libros/imgx.png", created.Image)
	assert.Len(t, a.images.Saved, 1)
}

func TestLogoutRevokesToken(t *testing.T) {
	a := newApp(t)
	u := a.store.AddUser("lectora", false)
	token := a.tokenFor(u)

	_, env := a.do(http.MethodPost, "/api/v1/users/logout", token, nil)
	require.Equal(t, 0, env.Code, env.Message)

	_, env = a.do(http.MethodGet, "/api/v1/cart", token, nil)
	assert.Equal(t, 40101, env.Code)
}
