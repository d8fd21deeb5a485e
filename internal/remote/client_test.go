package remote

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/storefront/internal/domain"
	apperrors "github.com/openshelf/storefront/pkg/errors"
)

// fakeCreds is a test credential source tracking teardown calls.
type fakeCreds struct {
	token       string
	invalidated atomic.Int32
}

func (f *fakeCreds) Token() string { return f.token }
func (f *fakeCreds) Invalidate()  { f.invalidated.Add(1) }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestClient(t *testing.T, handler http.Handler, creds *fakeCreds) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := DefaultConfig(srv.URL)
	cfg.Timeout = 2 * time.Second
	c, err := New(cfg, creds, testLogger())
	require.NoError(t, err)
	return c
}

func TestNew_InvalidOrigin(t *testing.T) {
	_, err := New(DefaultConfig("not a url"), &fakeCreds{}, testLogger())
	assert.Error(t, err)

	_, err = New(DefaultConfig("/relative/only"), &fakeCreds{}, testLogger())
	assert.Error(t, err)
}

func TestDo_AttachesBearerCredential(t *testing.T) {
	var gotAuth string
	creds := &fakeCreds{token: "tok-123"}
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"data":[]}`))
	}), creds)

	_, err := c.ListProducts(context.Background(), ProductFilter{})
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)
}

func TestDo_NoCredentialNoHeader(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}), &fakeCreds{})

	_, err := c.ListProducts(context.Background(), ProductFilter{})
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestDo_TimeoutBecomesNetworkError(t *testing.T) {
	creds := &fakeCreds{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)

	cfg := DefaultConfig(srv.URL)
	cfg.Timeout = 50 * time.Millisecond
	c, err := New(cfg, creds, testLogger())
	require.NoError(t, err)

	_, err = c.GetCart(context.Background())
	assert.True(t, errors.Is(err, apperrors.ErrNetwork), "expired wait must surface as NetworkError, got %v", err)
}

func TestDo_401TearsDownSession(t *testing.T) {
	creds := &fakeCreds{token: "stale"}
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}), creds)

	_, err := c.GetCart(context.Background())
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
	assert.Equal(t, int32(1), creds.invalidated.Load(), "401 must invalidate the session exactly once")
}

func TestDo_RemoteErrorPassesMessageThrough(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error":{"code":"OUT_OF_STOCK","message":"only 2 left in stock"}}`))
	}), &fakeCreds{})

	err := c.AddCartItem(context.Background(), "p1", "Red", "M", 5)
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusConflict, appErr.Status)
	assert.Equal(t, "only 2 left in stock", appErr.Message)
}

func TestDo_RemoteErrorFallbackMessage(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`<html>nginx 500</html>`))
	}), &fakeCreds{})

	err := c.ClearCart(context.Background())
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "the store rejected the request", appErr.Message)
	assert.True(t, errors.Is(err, apperrors.ErrRemote))
}

func TestListProducts_FilterQuery(t *testing.T) {
	var gotQuery map[string][]string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`[]`))
	}), &fakeCreds{})

	featured := true
	_, err := c.ListProducts(context.Background(), ProductFilter{
		Category: "shoes",
		Featured: &featured,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"shoes"}, gotQuery["category"])
	assert.Equal(t, []string{"true"}, gotQuery["featured"])
	assert.NotContains(t, gotQuery, "collection")
}

func TestGetCart_NormalizesWrapperShape(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"items":[
			{"id":"l1","product_id":"p1","color":"Red","size":"M","quantity":2,"unit_price":1000,
			 "product":{"name":"Tee","base_price":1000}}
		],"summary":{"item_count":2}}}`))
	}), &fakeCreds{token: "t"})

	cart, err := c.GetCart(context.Background())
	require.NoError(t, err)

	require.Len(t, cart.Lines, 1)
	assert.Equal(t, "l1", cart.Lines[0].LineID)
	assert.Equal(t, 2, cart.ItemCount)
	assert.Equal(t, int64(1000), cart.Lines[0].UnitPrice)
}

func TestGetCart_NormalizesBareListShape(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"id":"l1","product_id":"p1","color":"Red","size":"M","quantity":3,
			 "product":{"name":"Tee","base_price":1500,"sale_price":1200,"on_sale":true}}
		]`))
	}), &fakeCreds{token: "t"})

	cart, err := c.GetCart(context.Background())
	require.NoError(t, err)

	require.Len(t, cart.Lines, 1)
	// Item count computed when the wrapper summary is absent.
	assert.Equal(t, 3, cart.ItemCount)
	// Unit price falls back to the snapshot's resolved price.
	assert.Equal(t, int64(1200), cart.Lines[0].UnitPrice)
}

func TestLogin_DecodesGrant(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.Write([]byte(`{"data":{"token":"jwt-x","user":{"id":"u1","email":"a@b.c"}}}`))
	}), &fakeCreds{})

	grant, err := c.Login(context.Background(), "a@b.c", "secret")
	require.NoError(t, err)
	assert.Equal(t, "jwt-x", grant.Token)
	assert.Equal(t, "u1", grant.User.ID)
}

func TestListFavorites_MapsEntries(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":"f1","product_id":"p9","product":{"name":"Boots","base_price":9900}}]`))
	}), &fakeCreds{token: "t"})

	entries, err := c.ListFavorites(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "p9", entries[0].ProductID)
	assert.Equal(t, domain.ProductSnapshot{Name: "Boots", BasePrice: 9900}, entries[0].Snapshot)
}
