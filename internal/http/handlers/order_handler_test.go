package handlers_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cafeteria/internal/config"
	"cafeteria/internal/domain"
	"cafeteria/internal/http/handlers"
	"cafeteria/internal/http/server"
	"cafeteria/internal/repos"
)

// memCarts is a CartStore that lets tests look at what the handlers parked.
type memCarts struct {
	mu    sync.Mutex
	carts map[string]domain.Cart
}

func (m *memCarts) Load(_ context.Context, sid string) (domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.carts[sid], nil
}

func (m *memCarts) Save(_ context.Context, sid string, cart domain.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[sid] = cart
	return nil
}

func (m *memCarts) Clear(_ context.Context, sid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, sid)
	return nil
}

// Minimal app with the order routes and no csrf/limiter middleware.
func newOrderApp(t *testing.T) (*fiber.App, *memCarts) {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	carts := &memCarts{carts: map[string]domain.Cart{}}
	deps := handlers.NewDeps(db, config.Config{LowStockThreshold: 5}, carts)

	app := fiber.New(fiber.Config{Views: server.NewEngine("../../../web/templates", false)})
	app.Get("/orders", deps.OrderHandler.Index)
	app.Get("/orders/create", deps.OrderHandler.CreateForm)
	app.Post("/orders/create/items", deps.OrderHandler.AddItem)
	app.Post("/orders/create", deps.OrderHandler.Create)
	return app, carts
}

func postForm(t *testing.T, app *fiber.App, path, sid string, form url.Values) *http.Response {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestCartIsParkedPerSession(t *testing.T) {
	app, carts := newOrderApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/orders/create", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var sid string
	for _, c := range resp.Cookies() {
		if c.Name == "sid" {
			sid = c.Value
		}
	}
	require.NotEmpty(t, sid, "sid cookie issued")

	resp = postForm(t, app, "/orders/create/items", sid, url.Values{"productId": {"2"}, "quantity": {"3"}})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp = postForm(t, app, "/orders/create/items", sid, url.Values{"productId": {"3"}, "quantity": {"1"}})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	cart, _ := carts.Load(context.Background(), sid)
	assert.Equal(t, []domain.CartLine{{ProductID: 2, Quantity: 3}, {ProductID: 3, Quantity: 1}}, cart.Lines)

	// another session does not see it
	resp = postForm(t, app, "/orders/create", "someone-else", url.Values{})
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	cart, _ = carts.Load(context.Background(), sid)
	assert.Equal(t, 2, cart.Len())

	resp = postForm(t, app, "/orders/create", sid, url.Values{})
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	_, ok := carts.carts[sid]
	assert.False(t, ok, "cart cleared after commit")
}

func TestRejectedAddDoesNotTouchStore(t *testing.T) {
	app, carts := newOrderApp(t)
	sid := "till-1"
	require.NoError(t, carts.Save(context.Background(), sid, domain.Cart{}.Set(1, 2)))

	resp := postForm(t, app, "/orders/create/items", sid, url.Values{"productId": {"5"}, "quantity": {"9"}})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = postForm(t, app, "/orders/create/items", sid, url.Values{"productId": {"1"}, "quantity": {"abc"}})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	cart, _ := carts.Load(context.Background(), sid)
	assert.Equal(t, domain.Cart{}.Set(1, 2), cart)
}

func TestSessionsKeepSeparateCarts(t *testing.T) {
	app, carts := newOrderApp(t)
	sidA := "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa"
	sidB := "bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb"

	resp := postForm(t, app, "/orders/create/items", sidA, url.Values{"productId": {"2"}, "quantity": {"3"}})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp = postForm(t, app, "/orders/create/items", sidB, url.Values{"productId": {"3"}, "quantity": {"1"}})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	a, _ := carts.Load(context.Background(), sidA)
	b, _ := carts.Load(context.Background(), sidB)
	assert.Equal(t, []domain.CartLine{{ProductID: 2, Quantity: 3}}, a.Lines)
	assert.Equal(t, []domain.CartLine{{ProductID: 3, Quantity: 1}}, b.Lines)

	carts.mu.Lock()
	keys := make([]string, 0, len(carts.carts))
	for k := range carts.carts {
		keys = append(keys, k)
	}
	carts.mu.Unlock()
	assert.ElementsMatch(t, []string{sidA, sidB}, keys)
}

func TestQuantityAboveStockGetsStockMessage(t *testing.T) {
	app, carts := newOrderApp(t)
	sid := "till-2"
	require.NoError(t, carts.Save(context.Background(), sid, domain.Cart{}.Set(1, 2)))

	// product 2 has 50 in stock
	req := httptest.NewRequest("POST", "/orders/create/items",
		strings.NewReader(url.Values{"productId": {"2"}, "quantity": {"1000"}}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "There are not enough products in stock.")

	cart, _ := carts.Load(context.Background(), sid)
	assert.Equal(t, domain.Cart{}.Set(1, 2), cart)
}
