package controllers

import (
	"github.com/shashiranjanraj/stockroom/app/services"
	"github.com/shashiranjanraj/stockroom/pkg/ctx"
)

// CatalogController serves categories, suppliers and products.
type CatalogController struct {
	service *services.CatalogService
}

func NewCatalogController(service *services.CatalogService) *CatalogController {
	return &CatalogController{service: service}
}

// ── Categories ───────────────────────────────────────────────────────────────

func (cc *CatalogController) Categories(c *ctx.Context) {
	categories, err := cc.service.ListCategories(c.Context(), identity(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(categories)
}

func (cc *CatalogController) StoreCategory(c *ctx.Context) {
	var in services.CategoryInput
	if !c.Decode(&in) {
		return
	}
	category, err := cc.service.CreateCategory(c.Context(), in, identity(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(category)
}

func (cc *CatalogController) UpdateCategory(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	var in services.CategoryInput
	if !c.Decode(&in) {
		return
	}
	category, err := cc.service.UpdateCategory(c.Context(), id, in, identity(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(category)
}

func (cc *CatalogController) DestroyCategory(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	if err := cc.service.DeleteCategory(c.Context(), id, identity(c)); err != nil {
		fail(c, err)
		return
	}
	c.Message("Category deleted")
}

// ── Suppliers ────────────────────────────────────────────────────────────────

func (cc *CatalogController) Suppliers(c *ctx.Context) {
	suppliers, err := cc.service.ListSuppliers(c.Context(), identity(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(suppliers)
}

func (cc *CatalogController) StoreSupplier(c *ctx.Context) {
	var in services.SupplierInput
	if !c.Decode(&in) {
		return
	}
	supplier, err := cc.service.CreateSupplier(c.Context(), in, identity(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(supplier)
}

func (cc *CatalogController) UpdateSupplier(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	var in services.SupplierInput
	if !c.Decode(&in) {
		return
	}
	supplier, err := cc.service.UpdateSupplier(c.Context(), id, in, identity(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(supplier)
}

func (cc *CatalogController) DestroySupplier(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	if err := cc.service.DeleteSupplier(c.Context(), id, identity(c)); err != nil {
		fail(c, err)
		return
	}
	c.Message("Supplier deleted")
}

// ── Products ─────────────────────────────────────────────────────────────────

func (cc *CatalogController) Products(c *ctx.Context) {
	products, err := cc.service.ListProducts(c.Context(), identity(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(products)
}

func (cc *CatalogController) ShowProduct(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	product, err := cc.service.GetProduct(c.Context(), id, identity(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(product)
}

func (cc *CatalogController) StoreProduct(c *ctx.Context) {
	var in services.ProductInput
	if !c.Decode(&in) {
		return
	}
	product, err := cc.service.CreateProduct(c.Context(), in, identity(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(product)
}

func (cc *CatalogController) UpdateProduct(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	var in services.ProductInput
	if !c.Decode(&in) {
		return
	}
	product, err := cc.service.UpdateProduct(c.Context(), id, in, identity(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(product)
}

func (cc *CatalogController) DestroyProduct(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	if err := cc.service.DeleteProduct(c.Context(), id, identity(c)); err != nil {
		fail(c, err)
		return
	}
	c.Message("Product deleted")
}

// Restock adds units to a product's stock.
func (cc *CatalogController) Restock(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	var in services.RestockInput
	if !c.Decode(&in) {
		return
	}
	product, err := cc.service.RestockProduct(c.Context(), id, in, identity(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(product)
}
