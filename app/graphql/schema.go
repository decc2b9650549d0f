// Package graphql exposes the read side of stockroom as a GraphQL schema:
// the dashboard, the order ledger and the product catalog.
package graphql

import (
	"context"
	"errors"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/shashiranjanraj/stockroom/app/models"
	"github.com/shashiranjanraj/stockroom/app/services"
	schema "github.com/shashiranjanraj/stockroom/pkg/graphql"
	"github.com/shashiranjanraj/stockroom/pkg/middleware"
)

// Resolvers are the services the schema reads from.
type Resolvers struct {
	Fulfillment *services.FulfillmentService
	Dashboard   *services.DashboardService
	Catalog     *services.CatalogService
}

var orderType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Order",
	Fields: graphql.Fields{
		"id":              &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"reference":       &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"customerName":    &graphql.Field{Type: graphql.String},
		"customerAddress": &graphql.Field{Type: graphql.String},
		"productName":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"category":        &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"quantity":        &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"unitPrice":       &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"totalPrice":      &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"date":            &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
	},
})

var productType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Product",
	Fields: graphql.Fields{
		"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"name":        &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"description": &graphql.Field{Type: graphql.String},
		"category":    &graphql.Field{Type: graphql.String},
		"supplier":    &graphql.Field{Type: graphql.String},
		"stock":       &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"price":       &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
	},
})

var bestSellerType = graphql.NewObject(graphql.ObjectConfig{
	Name: "BestSeller",
	Fields: graphql.Fields{
		"productName": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"category":    &graphql.Field{Type: graphql.String},
		"units":       &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
	},
})

var adminSummaryType = graphql.NewObject(graphql.ObjectConfig{
	Name: "AdminSummary",
	Fields: graphql.Fields{
		"totalProducts":     &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"totalStockUnits":   &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"ordersToday":       &graphql.Field{Type: graphql.NewList(orderType)},
		"ordersTodayCount":  &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"todaysRevenue":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"bestSeller":        &graphql.Field{Type: bestSellerType},
		"outOfStock":        &graphql.Field{Type: graphql.NewList(productType)},
		"lowStock":          &graphql.Field{Type: graphql.NewList(productType)},
		"lowStockThreshold": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
	},
})

var customerSummaryType = graphql.NewObject(graphql.ObjectConfig{
	Name: "CustomerSummary",
	Fields: graphql.Fields{
		"orderCount":         &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"totalSpend":         &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"lastOrder":          &graphql.Field{Type: orderType},
		"recentOrders":       &graphql.Field{Type: graphql.NewList(orderType)},
		"activeProducts":     &graphql.Field{Type: graphql.NewList(productType)},
		"activeProductCount": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"lowStockCount":      &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"lowStockThreshold":  &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
	},
})

var dashboardType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Dashboard",
	Fields: graphql.Fields{
		"scope":       &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"generatedAt": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"admin":       &graphql.Field{Type: adminSummaryType},
		"customer":    &graphql.Field{Type: customerSummaryType},
	},
})

// NewSchema builds the read-only schema over res.
func NewSchema(res Resolvers) (graphql.Schema, error) {
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"dashboard": &graphql.Field{
				Type: dashboardType,
				Args: graphql.FieldConfigArgument{
					"scope": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					scope, _ := p.Args["scope"].(string)
					summary, err := res.Dashboard.Summary(p.Context, scope, identity(p.Context))
					if err != nil {
						return nil, clientError(err)
					}
					return dashboardValue(summary), nil
				},
			},
			"orders": &graphql.Field{
				Type: graphql.NewList(orderType),
				Args: graphql.FieldConfigArgument{
					"search":   &graphql.ArgumentConfig{Type: graphql.String},
					"category": &graphql.ArgumentConfig{Type: graphql.String},
					"date":     &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					q := services.OrderQuery{}
					q.Search, _ = p.Args["search"].(string)
					q.Category, _ = p.Args["category"].(string)
					q.Date, _ = p.Args["date"].(string)

					orders, err := res.Fulfillment.ListOrders(p.Context, q, identity(p.Context))
					if err != nil {
						return nil, clientError(err)
					}
					return ordersValue(orders), nil
				},
			},
			"products": &graphql.Field{
				Type: graphql.NewList(productType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					products, err := res.Catalog.ListProducts(p.Context, identity(p.Context))
					if err != nil {
						return nil, clientError(err)
					}
					out := make([]map[string]interface{}, 0, len(products))
					for _, prod := range products {
						out = append(out, productValue(prod))
					}
					return out, nil
				},
			},
		},
	})
	return schema.NewSchema(query)
}

func identity(ctx context.Context) services.Identity {
	claims, ok := middleware.ClaimsFromCtx(ctx)
	if !ok {
		return services.Identity{}
	}
	return services.Identity{UserID: claims.UserID, Role: claims.Role}
}

// clientError keeps the wrapped cause of a service error out of the
// response.
func clientError(err error) error {
	var svcErr *services.Error
	if errors.As(err, &svcErr) {
		return errors.New(string(svcErr.Kind) + ": " + svcErr.Message)
	}
	return errors.New("internal error")
}

func orderValue(o models.Order) map[string]interface{} {
	return map[string]interface{}{
		"id":              int(o.ID),
		"reference":       o.Reference,
		"customerName":    o.CustomerName,
		"customerAddress": o.CustomerAddress,
		"productName":     o.ProductName,
		"category":        o.Category,
		"quantity":        o.Quantity,
		"unitPrice":       o.UnitPrice.StringFixed(2),
		"totalPrice":      o.TotalPrice.StringFixed(2),
		"date":            o.PlacedOn().UTC().Format(time.RFC3339),
	}
}

func ordersValue(orders []models.Order) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(orders))
	for _, o := range orders {
		out = append(out, orderValue(o))
	}
	return out
}

func productValue(p models.Product) map[string]interface{} {
	supplier := ""
	if p.Supplier != nil {
		supplier = p.Supplier.Name
	}
	return map[string]interface{}{
		"id":          int(p.ID),
		"name":        p.Name,
		"description": p.Description,
		"category":    p.CategoryName(),
		"supplier":    supplier,
		"stock":       p.Stock,
		"price":       p.Price.StringFixed(2),
	}
}

func stockValues(items []services.ProductStock) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(items))
	for _, s := range items {
		out = append(out, map[string]interface{}{
			"id":       int(s.ID),
			"name":     s.Name,
			"category": s.Category,
			"stock":    s.Stock,
			"price":    s.Price.StringFixed(2),
		})
	}
	return out
}

func dashboardValue(d services.DashboardSummary) map[string]interface{} {
	out := map[string]interface{}{
		"scope":       d.Scope,
		"generatedAt": d.GeneratedAt.UTC().Format(time.RFC3339),
	}
	if a := d.Admin; a != nil {
		admin := map[string]interface{}{
			"totalProducts":     int(a.TotalProducts),
			"totalStockUnits":   int(a.TotalStockUnits),
			"ordersToday":       ordersValue(a.OrdersToday),
			"ordersTodayCount":  a.OrdersTodayCount,
			"todaysRevenue":     a.TodaysRevenue.StringFixed(2),
			"outOfStock":        stockValues(a.OutOfStock),
			"lowStock":          stockValues(a.LowStock),
			"lowStockThreshold": a.LowStockThreshold,
		}
		if a.BestSeller != nil {
			admin["bestSeller"] = map[string]interface{}{
				"productName": a.BestSeller.ProductName,
				"category":    a.BestSeller.Category,
				"units":       int(a.BestSeller.Units),
			}
		}
		out["admin"] = admin
	}
	if c := d.Customer; c != nil {
		customer := map[string]interface{}{
			"orderCount":         c.OrderCount,
			"totalSpend":         c.TotalSpend.StringFixed(2),
			"recentOrders":       ordersValue(c.RecentOrders),
			"activeProducts":     stockValues(c.ActiveProducts),
			"activeProductCount": c.ActiveProductCount,
			"lowStockCount":      c.LowStockCount,
			"lowStockThreshold":  c.LowStockThreshold,
		}
		if c.LastOrder != nil {
			customer["lastOrder"] = orderValue(*c.LastOrder)
		}
		out["customer"] = customer
	}
	return out
}
