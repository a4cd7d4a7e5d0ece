package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/record-service/internal/api/dto"
	"github.com/spec-kit/record-service/internal/domain"
	"github.com/spec-kit/record-service/internal/query"
	"github.com/spec-kit/record-service/internal/service"
)

// ProductsHandler exposes catalog endpoints.
type ProductsHandler struct {
	products *service.ProductService
	sse      SSEConfig
}

// NewProductsHandler constructs handler.
func NewProductsHandler(products *service.ProductService, sse SSEConfig) *ProductsHandler {
	return &ProductsHandler{products: products, sse: sse.withDefaults()}
}

// List handles GET /products.
func (h *ProductsHandler) List(c *fiber.Ctx) error {
	filter := query.ProductFilter{Category: queryString(c, "category")}

	var err error
	if filter.MinPrice, err = queryFloat(c, "min_price"); err != nil {
		return err
	}
	if filter.MaxPrice, err = queryFloat(c, "max_price"); err != nil {
		return err
	}
	if filter.Page, err = queryInt(c, "page"); err != nil {
		return err
	}
	if filter.PageSize, err = queryInt(c, "page_size"); err != nil {
		return err
	}

	result, err := h.products.ListProducts(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProductListResponse(result)})
}

// Get handles GET /products/:id.
func (h *ProductsHandler) Get(c *fiber.Ctx) error {
	product, err := h.products.GetProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProductResponse(product)})
}

// Create handles POST /products.
func (h *ProductsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateProductRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	product, err := h.products.CreateProduct(c.UserContext(), service.CreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Stock:       req.Stock,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewProductResponse(product)})
}

// Update handles PATCH /products/:id.
func (h *ProductsHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateProductRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	product, err := h.products.UpdateProduct(c.UserContext(), c.Params("id"), service.UpdateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Stock:       req.Stock,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProductResponse(product)})
}

// Delete handles DELETE /products/:id.
func (h *ProductsHandler) Delete(c *fiber.Ctx) error {
	result, err := h.products.DeleteProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDeleteResponse(result)})
}

// Watch handles GET /products/watch as a server-sent event stream.
func (h *ProductsHandler) Watch(c *fiber.Ctx) error {
	sub, err := h.products.WatchPriceUpdates(context.Background(), queryList(c, "ids"))
	if err != nil {
		return err
	}
	return serveEvents(c, h.sse, sub, "price_update", func(u domain.PriceUpdate) any {
		return dto.NewPriceUpdateResponse(u)
	})
}
