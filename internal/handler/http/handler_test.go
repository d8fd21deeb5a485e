package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/storefront/internal/domain"
	"github.com/openshelf/storefront/internal/remote"
	"github.com/openshelf/storefront/internal/session"
	"github.com/openshelf/storefront/internal/view"
	apperrors "github.com/openshelf/storefront/pkg/errors"
	"github.com/openshelf/storefront/pkg/health"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// --- stubs ---

type stubCatalog struct {
	products []domain.Product
	err      error
}

func (s *stubCatalog) Products(context.Context, remote.ProductFilter) ([]domain.Product, error) {
	return s.products, s.err
}

func (s *stubCatalog) Product(_ context.Context, id string) (domain.Product, error) {
	if s.err != nil {
		return domain.Product{}, s.err
	}
	for _, p := range s.products {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Product{}, apperrors.NotFound("product", id)
}

func (s *stubCatalog) Categories(context.Context) ([]domain.Category, error) {
	return nil, s.err
}

func (s *stubCatalog) Collections(context.Context) ([]domain.Collection, error) {
	return nil, s.err
}

type stubCart struct {
	cart domain.Cart
	err  error
}

func (s *stubCart) Snapshot() domain.Cart { return s.cart }
func (s *stubCart) Total() int64          { return s.cart.Total() }

func (s *stubCart) Add(_ context.Context, product domain.Product, color, size string, quantity int) error {
	if s.err != nil {
		return s.err
	}
	s.cart.Lines = append(s.cart.Lines, domain.CartLine{
		LineID: "line-1", ProductID: product.ID, Color: color, Size: size,
		Quantity: quantity, UnitPrice: product.UnitPrice(),
	})
	s.cart.ItemCount += quantity
	return nil
}

func (s *stubCart) UpdateQuantity(_ context.Context, _, _, _ string, _ int) error { return s.err }
func (s *stubCart) Remove(_ context.Context, _, _, _ string) error                { return s.err }

func (s *stubCart) Clear(context.Context) error {
	if s.err != nil {
		return s.err
	}
	s.cart = domain.Cart{}
	return nil
}

type stubFavoritesSet struct {
	ids map[string]bool
	err error
}

func (s *stubFavoritesSet) Entries() []domain.FavoriteEntry {
	var out []domain.FavoriteEntry
	for id := range s.ids {
		out = append(out, domain.FavoriteEntry{ID: "fav-" + id, ProductID: id})
	}
	return out
}

func (s *stubFavoritesSet) IsFavorite(id string) bool { return s.ids[id] }

func (s *stubFavoritesSet) Toggle(_ context.Context, id string) error {
	if s.err != nil {
		return s.err
	}
	s.ids[id] = !s.ids[id]
	return nil
}

func (s *stubFavoritesSet) Add(_ context.Context, id string) error {
	if s.err != nil {
		return s.err
	}
	s.ids[id] = true
	return nil
}

func (s *stubFavoritesSet) Remove(_ context.Context, id string) error {
	if s.err != nil {
		return s.err
	}
	delete(s.ids, id)
	return nil
}

type stubAuth struct {
	sess session.Session
	err  error
}

func (s *stubAuth) Login(context.Context, string, string) (session.Session, error) {
	return s.sess, s.err
}

func (s *stubAuth) Register(context.Context, domain.RegisterProfile) (session.Session, error) {
	return s.sess, s.err
}

func (s *stubAuth) Logout() {}

type stubProfile struct {
	user domain.User
	err  error
}

func (s *stubProfile) GetProfile(context.Context) (domain.User, error) { return s.user, s.err }
func (s *stubProfile) UpdateProfile(_ context.Context, u domain.User) (domain.User, error) {
	if s.err != nil {
		return domain.User{}, s.err
	}
	return u, nil
}

type stubAggregates struct {
	reloads int
	resets  int
}

func (s *stubAggregates) Reload(context.Context) error { return nil }
func (s *stubAggregates) Reset()                       { s.resets++ }

type stubCheckout struct {
	order domain.Order
	err   error
}

func (s *stubCheckout) Checkout(context.Context) (domain.Order, error) { return s.order, s.err }

type stubHistory struct{ orders []domain.Order }

func (s *stubHistory) ListOrders(context.Context) ([]domain.Order, error) { return s.orders, nil }

// --- fixture ---

type fixture struct {
	server    *httptest.Server
	cart      *stubCart
	favorites *stubFavoritesSet
	catalog   *stubCatalog
	store     *session.Store
}

func setup(t *testing.T) *fixture {
	t.Helper()
	logger := newTestLogger()

	catalog := &stubCatalog{products: []domain.Product{{
		ID: "p1", Name: "Tee", BasePrice: 1999,
		Variants: []domain.Variant{{ID: "v1", Color: "Red", Size: "M", Stock: 3}},
	}}}
	cartStub := &stubCart{}
	favStub := &stubFavoritesSet{ids: map[string]bool{}}
	store := session.NewStore(filepath.Join(t.TempDir(), "credential.json"), logger)

	composer := view.NewComposer("https://backend.example.com", favStub, cartStub)

	handlers := Handlers{
		Views:     NewViewsHandler(catalog, composer, logger),
		Cart:      NewCartHandler(cartStub, catalog, logger),
		Favorites: NewFavoritesHandler(favStub, logger),
		Auth: NewAuthHandler(
			&stubAuth{sess: session.Session{User: domain.User{ID: "u1"}, Authenticated: true}},
			&stubProfile{user: domain.User{ID: "u1", Email: "a@example.com"}},
			store,
			&stubAggregates{},
			logger,
		),
		Orders: NewOrdersHandler(
			&stubCheckout{order: domain.Order{ID: "o1", Total: 1999}},
			&stubHistory{orders: []domain.Order{{ID: "o1"}}},
			logger,
		),
	}

	router := NewRouter(handlers, health.NewHandler(), store, logger)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &fixture{server: server, cart: cartStub, favorites: favStub, catalog: catalog, store: store}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, f.server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := f.server.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeData(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

// --- tests ---

func TestListProducts(t *testing.T) {
	f := setup(t)

	resp := f.do(t, http.MethodGet, "/api/v1/views/products", nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cards []view.ProductCard
	decodeData(t, resp, &cards)
	require.Len(t, cards, 1)
	assert.Equal(t, "p1", cards[0].ID)
	assert.Equal(t, "$19.99", cards[0].Price.Display)
}

func TestListProducts_BadFeaturedParam(t *testing.T) {
	f := setup(t)

	resp := f.do(t, http.MethodGet, "/api/v1/views/products?featured=maybe", nil)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetProductDetail(t *testing.T) {
	f := setup(t)

	resp := f.do(t, http.MethodGet, "/api/v1/views/products/p1", nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var detail view.ProductDetail
	decodeData(t, resp, &detail)
	assert.Equal(t, "p1", detail.ID)
	assert.Equal(t, domain.Selection{Color: "Red", Size: "M"}, detail.Selection)
}

func TestGetProductDetail_NotFound(t *testing.T) {
	f := setup(t)

	resp := f.do(t, http.MethodGet, "/api/v1/views/products/nope", nil)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAddCartItem(t *testing.T) {
	f := setup(t)

	resp := f.do(t, http.MethodPost, "/api/v1/cart/items", AddItemRequest{
		ProductID: "p1", Color: "Red", Size: "M", Quantity: 2,
	})

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var cv cartView
	decodeData(t, resp, &cv)
	require.Len(t, cv.Lines, 1)
	assert.Equal(t, 2, cv.Lines[0].Quantity)
	assert.Equal(t, int64(3998), cv.Total)
}

func TestAddCartItem_ValidationFailure(t *testing.T) {
	f := setup(t)

	resp := f.do(t, http.MethodPost, "/api/v1/cart/items", AddItemRequest{
		ProductID: "p1", Quantity: 0,
	})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAddCartItem_AuthGateSurfacesAs401(t *testing.T) {
	f := setup(t)
	f.cart.err = apperrors.Unauthorized("please sign in to manage your cart")

	resp := f.do(t, http.MethodPost, "/api/v1/cart/items", AddItemRequest{
		ProductID: "p1", Color: "Red", Size: "M", Quantity: 1,
	})

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRemoveItem_MissingLineIsNoOpSuccess(t *testing.T) {
	f := setup(t)
	f.cart.err = apperrors.NotFound("cart line", "p1")

	resp := f.do(t, http.MethodDelete, "/api/v1/cart/items/p1/Red/M", nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cv cartView
	decodeData(t, resp, &cv)
	assert.Empty(t, cv.Lines)
}

func TestUpdateQuantityZero_MissingLineIsNoOpSuccess(t *testing.T) {
	f := setup(t)
	f.cart.err = apperrors.NotFound("cart line", "p1")

	resp := f.do(t, http.MethodPut, "/api/v1/cart/items/p1/Red/M", UpdateQuantityRequest{Quantity: 0})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUpdateQuantity_MissingLineStillSurfaces(t *testing.T) {
	f := setup(t)
	f.cart.err = apperrors.NotFound("cart line", "p1")

	resp := f.do(t, http.MethodPut, "/api/v1/cart/items/p1/Red/M", UpdateQuantityRequest{Quantity: 2})

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestClearCart(t *testing.T) {
	f := setup(t)
	f.cart.cart = domain.Cart{Lines: []domain.CartLine{{ProductID: "p1", Quantity: 1}}, ItemCount: 1}

	resp := f.do(t, http.MethodDelete, "/api/v1/cart", nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cv cartView
	decodeData(t, resp, &cv)
	assert.Empty(t, cv.Lines)
}

func TestToggleFavorite(t *testing.T) {
	f := setup(t)

	resp := f.do(t, http.MethodPost, "/api/v1/favorites/p1/toggle", nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var status favoriteStatus
	decodeData(t, resp, &status)
	assert.True(t, status.IsFavorite)
}

func TestLogin(t *testing.T) {
	f := setup(t)

	resp := f.do(t, http.MethodPost, "/api/v1/auth/login", LoginRequest{
		Email: "a@example.com", Password: "secret",
	})

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var sess session.Session
	decodeData(t, resp, &sess)
	assert.True(t, sess.Authenticated)
	assert.Equal(t, "u1", sess.User.ID)
}

func TestLogin_InvalidEmail(t *testing.T) {
	f := setup(t)

	resp := f.do(t, http.MethodPost, "/api/v1/auth/login", LoginRequest{
		Email: "not-an-email", Password: "secret",
	})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetProfile_RequiresSession(t *testing.T) {
	f := setup(t)

	resp := f.do(t, http.MethodGet, "/api/v1/auth/profile", nil)

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPlaceOrder(t *testing.T) {
	f := setup(t)

	resp := f.do(t, http.MethodPost, "/api/v1/orders", nil)

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var order domain.Order
	decodeData(t, resp, &order)
	assert.Equal(t, "o1", order.ID)
}

func TestContentTypeEnforced(t *testing.T) {
	f := setup(t)

	req, err := http.NewRequest(http.MethodPost, f.server.URL+"/api/v1/cart/items", bytes.NewBufferString("x=1"))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := f.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
}

func TestHealthEndpoints(t *testing.T) {
	f := setup(t)

	live := f.do(t, http.MethodGet, "/health/live", nil)
	assert.Equal(t, http.StatusOK, live.StatusCode)

	ready := f.do(t, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusOK, ready.StatusCode)
}
