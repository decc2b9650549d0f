package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/stockroom/pkg/router"
)

func tag(value string) router.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("X-Chain", value)
			next.ServeHTTP(w, r)
		})
	}
}

func noContent(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) }

func TestRouter_GroupsAndMiddlewareOrder(t *testing.T) {
	r := router.New()
	api := r.Group("/api/", tag("api"))
	orders := api.Group("orders", tag("orders"))
	orders.Get("/{id}", "orders.show", noContent, tag("route"))

	rr := httptest.NewRecorder()
	r.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/orders/7", nil))

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, []string{"api", "orders", "route"}, rr.Header().Values("X-Chain"))
}

func TestRouter_NamedRoutes(t *testing.T) {
	r := router.New()
	r.Get("/health", "health", noContent)
	r.Group("/api").Put("/products/{id}", "products.update", noContent)

	path, ok := r.Path("products.update")
	require.True(t, ok)
	assert.Equal(t, "/api/products/{id}", path)

	url, err := r.URL("products.update", map[string]string{"id": "12"})
	require.NoError(t, err)
	assert.Equal(t, "/api/products/12", url)

	_, err = r.URL("products.update", nil)
	assert.Error(t, err)
	_, err = r.URL("nope", nil)
	assert.Error(t, err)
}

func TestRouter_RoutesAreSorted(t *testing.T) {
	r := router.New()
	r.Post("/api/orders", "orders.store", noContent)
	r.Get("/api/orders", "orders.index", noContent)
	r.Handle("/graphql", "graphql", http.HandlerFunc(noContent))
	r.Delete("/api/categories/{id}", "categories.destroy", noContent)

	routes := r.Routes()
	require.Len(t, routes, 5)
	assert.Equal(t, router.RouteInfo{Method: "DELETE", Path: "/api/categories/{id}", Name: "categories.destroy"}, routes[0])
	assert.Equal(t, "GET", routes[1].Method)
	assert.Equal(t, "POST", routes[2].Method)
	assert.Equal(t, "/graphql", routes[3].Path)
	assert.Equal(t, "", routes[4].Name, "only the GET half of Handle is named")
}

func TestRouter_NotFoundAndMethodNotAllowed(t *testing.T) {
	r := router.New()
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) })
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusConflict) })
	r.Get("/health", "health", noContent)

	rr := httptest.NewRecorder()
	r.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusTeapot, rr.Code)

	rr = httptest.NewRecorder()
	r.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/health", nil))
	assert.Equal(t, http.StatusConflict, rr.Code)
}
