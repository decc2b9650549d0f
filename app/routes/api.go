package routes

import (
	"context"

	"github.com/shashiranjanraj/stockroom/app/controllers"
	appgraphql "github.com/shashiranjanraj/stockroom/app/graphql"
	"github.com/shashiranjanraj/stockroom/app/models"
	"github.com/shashiranjanraj/stockroom/app/services"
	"github.com/shashiranjanraj/stockroom/pkg/ctx"
	"github.com/shashiranjanraj/stockroom/pkg/graphql"
	"github.com/shashiranjanraj/stockroom/pkg/metrics"
	"github.com/shashiranjanraj/stockroom/pkg/middleware"
	"github.com/shashiranjanraj/stockroom/pkg/rbac"
	"github.com/shashiranjanraj/stockroom/pkg/router"
)

// Services are the handlers' dependencies. Zero values are fine for route
// listing; nothing is called until a request arrives.
type Services struct {
	Auth        *services.AuthService
	Catalog     *services.CatalogService
	Fulfillment *services.FulfillmentService
	Dashboard   *services.DashboardService
	Reports     *services.ReportService
	Ping        func(ctx context.Context) error
}

// RegisterAPI mounts every stockroom endpoint on r.
func RegisterAPI(r *router.Router, s Services) error {
	authController := controllers.NewAuthController(s.Auth)
	userController := controllers.NewUserController(s.Auth)
	catalogController := controllers.NewCatalogController(s.Catalog)
	orderController := controllers.NewOrderController(s.Fulfillment)
	dashboardController := controllers.NewDashboardController(s.Dashboard)
	reportController := controllers.NewReportController(s.Reports)
	healthController := controllers.NewHealthController(s.Ping)

	schema, err := appgraphql.NewSchema(appgraphql.Resolvers{
		Fulfillment: s.Fulfillment,
		Dashboard:   s.Dashboard,
		Catalog:     s.Catalog,
	})
	if err != nil {
		return err
	}

	r.NotFound(controllers.NotFound)
	r.MethodNotAllowed(controllers.MethodNotAllowed)

	r.Get("/healthz", "health", ctx.Wrap(healthController.Show))
	r.Get("/metrics", "metrics", metrics.Handler())
	r.Handle("/graphql", "graphql", graphql.Handler(schema), middleware.AuthMiddleware)

	api := r.Group("/api")
	api.Post("/auth/login", "auth.login", ctx.Wrap(authController.Login))

	protected := api.Group("", middleware.AuthMiddleware)
	protected.Get("/auth/me", "auth.me", ctx.Wrap(authController.Me))
	protected.Put("/auth/password", "auth.password", ctx.Wrap(authController.ChangePassword))

	protected.Get("/categories", "categories.index", ctx.Wrap(catalogController.Categories))
	protected.Get("/suppliers", "suppliers.index", ctx.Wrap(catalogController.Suppliers))
	protected.Get("/products", "products.index", ctx.Wrap(catalogController.Products))
	protected.Get("/products/{id}", "products.show", ctx.Wrap(catalogController.ShowProduct))

	protected.Post("/orders", "orders.store", ctx.Wrap(orderController.Store))
	protected.Get("/orders", "orders.index", ctx.Wrap(orderController.Index))
	protected.Get("/dashboard", "dashboard.show", ctx.Wrap(dashboardController.Show))

	admin := protected.Group("", rbac.HasRole(models.RoleAdmin))
	admin.Get("/users", "users.index", ctx.Wrap(userController.Index))
	admin.Post("/users", "users.store", ctx.Wrap(userController.Store))
	admin.Delete("/users/{id}", "users.destroy", ctx.Wrap(userController.Destroy))

	admin.Post("/categories", "categories.store", ctx.Wrap(catalogController.StoreCategory))
	admin.Put("/categories/{id}", "categories.update", ctx.Wrap(catalogController.UpdateCategory))
	admin.Delete("/categories/{id}", "categories.destroy", ctx.Wrap(catalogController.DestroyCategory))

	admin.Post("/suppliers", "suppliers.store", ctx.Wrap(catalogController.StoreSupplier))
	admin.Put("/suppliers/{id}", "suppliers.update", ctx.Wrap(catalogController.UpdateSupplier))
	admin.Delete("/suppliers/{id}", "suppliers.destroy", ctx.Wrap(catalogController.DestroySupplier))

	admin.Post("/products", "products.store", ctx.Wrap(catalogController.StoreProduct))
	admin.Put("/products/{id}", "products.update", ctx.Wrap(catalogController.UpdateProduct))
	admin.Delete("/products/{id}", "products.destroy", ctx.Wrap(catalogController.DestroyProduct))
	admin.Post("/products/{id}/restock", "products.restock", ctx.Wrap(catalogController.Restock))

	admin.Get("/reports", "reports.index", ctx.Wrap(reportController.Index))
	admin.Post("/reports/orders", "reports.orders", ctx.Wrap(reportController.ExportOrders))

	return nil
}
