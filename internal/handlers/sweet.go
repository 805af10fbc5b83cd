package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/sweet_shop/internal/domain"
	"github.com/Skotchmaster/sweet_shop/internal/logging"
	authmw "github.com/Skotchmaster/sweet_shop/internal/middleware/auth"
	"github.com/Skotchmaster/sweet_shop/internal/models"
	"github.com/Skotchmaster/sweet_shop/internal/query"
	"github.com/Skotchmaster/sweet_shop/internal/service"
	"github.com/Skotchmaster/sweet_shop/internal/transport"
)

type SweetHandler struct {
	Catalog *service.CatalogService
}

func sweetPage(r query.Result[models.Sweet]) query.Result[transport.SweetResponse] {
	return query.MapResult(r, transport.NewSweetResponse)
}

func (h *SweetHandler) List(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "ListSweets")

	crit, err := criteriaOf(c)
	if err != nil {
		return fail(l, "list_sweets_error", err)
	}
	res, err := h.Catalog.List(c.Request().Context(), authmw.ActorFrom(c), crit, pageOf(c))
	if err != nil {
		return fail(l, "list_sweets_error", err)
	}
	return c.JSON(http.StatusOK, sweetPage(res))
}

func (h *SweetHandler) Search(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "SearchSweets")

	crit, err := criteriaOf(c)
	if err != nil {
		return fail(l, "search_sweets_error", err)
	}
	res, err := h.Catalog.Search(c.Request().Context(), authmw.ActorFrom(c), crit, pageOf(c))
	if err != nil {
		return fail(l, "search_sweets_error", err)
	}
	return c.JSON(http.StatusOK, sweetPage(res))
}

func (h *SweetHandler) TextSearch(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "TextSearch")

	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return fail(l, "text_search_error", domain.NewValidationError("q", "this parameter is required"))
	}
	res, err := h.Catalog.TextSearch(c.Request().Context(), authmw.ActorFrom(c), q, pageOf(c))
	if err != nil {
		return fail(l, "text_search_error", err)
	}
	return c.JSON(http.StatusOK, sweetPage(res))
}

func (h *SweetHandler) Featured(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "Featured")

	res, err := h.Catalog.Featured(c.Request().Context(), authmw.ActorFrom(c), pageOf(c))
	if err != nil {
		return fail(l, "featured_error", err)
	}
	return c.JSON(http.StatusOK, sweetPage(res))
}

func (h *SweetHandler) LowStock(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "LowStock")

	items, err := h.Catalog.LowStock(c.Request().Context(), authmw.ActorFrom(c))
	if err != nil {
		return fail(l, "low_stock_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewSweetResponses(items))
}

func (h *SweetHandler) OutOfStock(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "OutOfStock")

	items, err := h.Catalog.OutOfStock(c.Request().Context(), authmw.ActorFrom(c))
	if err != nil {
		return fail(l, "out_of_stock_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewSweetResponses(items))
}

func (h *SweetHandler) Categories(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "Categories")

	if _, err := h.Catalog.Categories(c.Request().Context(), authmw.ActorFrom(c)); err != nil {
		return fail(l, "categories_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewCategoryResponses())
}

func (h *SweetHandler) Get(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "GetSweet")

	id, err := parseID(c)
	if err != nil {
		return fail(l, "get_sweet_error", err)
	}
	s, err := h.Catalog.Get(c.Request().Context(), authmw.ActorFrom(c), id)
	if err != nil {
		return fail(l, "get_sweet_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewSweetResponse(*s))
}

func (h *SweetHandler) Create(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "CreateSweet")

	var req transport.SweetRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_sweet_error", err)
	}
	s, err := h.Catalog.Create(c.Request().Context(), authmw.ActorFrom(c), req)
	if err != nil {
		return fail(l, "create_sweet_error", err)
	}

	l.Info("sweet_created", "sweet_id", s.ID, "name", s.Name)
	return c.JSON(http.StatusCreated, transport.NewSweetResponse(*s))
}

// Replace handles PUT: every field is taken from the body.
func (h *SweetHandler) Replace(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "ReplaceSweet")

	id, err := parseID(c)
	if err != nil {
		return fail(l, "replace_sweet_error", err)
	}
	var req transport.SweetRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "replace_sweet_error", err)
	}
	s, err := h.Catalog.Update(c.Request().Context(), authmw.ActorFrom(c), id, req.Patch())
	if err != nil {
		return fail(l, "replace_sweet_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewSweetResponse(*s))
}

func (h *SweetHandler) Patch(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "PatchSweet")

	id, err := parseID(c)
	if err != nil {
		return fail(l, "patch_sweet_error", err)
	}
	var req transport.SweetPatchRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "patch_sweet_error", err)
	}
	s, err := h.Catalog.Update(c.Request().Context(), authmw.ActorFrom(c), id, req)
	if err != nil {
		return fail(l, "patch_sweet_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewSweetResponse(*s))
}

func (h *SweetHandler) UpdatePrice(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "UpdatePrice")

	id, err := parseID(c)
	if err != nil {
		return fail(l, "update_price_error", err)
	}
	var req transport.PriceRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_price_error", err)
	}
	s, err := h.Catalog.UpdatePrice(c.Request().Context(), authmw.ActorFrom(c), id, req.Price)
	if err != nil {
		return fail(l, "update_price_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewSweetResponse(*s))
}

func (h *SweetHandler) Delete(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "DeleteSweet")

	id, err := parseID(c)
	if err != nil {
		return fail(l, "delete_sweet_error", err)
	}
	if err := h.Catalog.Delete(c.Request().Context(), authmw.ActorFrom(c), id); err != nil {
		return fail(l, "delete_sweet_error", err)
	}

	l.Info("sweet_deleted", "sweet_id", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *SweetHandler) Purchase(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "Purchase")

	id, err := parseID(c)
	if err != nil {
		return fail(l, "purchase_error", err)
	}
	req := transport.PurchaseRequest{Quantity: 1}
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "purchase_error", err)
	}
	res, err := h.Catalog.Purchase(c.Request().Context(), authmw.ActorFrom(c), id, req.Quantity)
	if err != nil {
		return fail(l, "purchase_error", err)
	}

	return c.JSON(http.StatusOK, transport.PurchaseResponse{
		Message:        fmt.Sprintf("Purchased %d x %s", res.Quantity, res.Sweet.Name),
		Sweet:          transport.NewSweetResponse(*res.Sweet),
		Quantity:       res.Quantity,
		TotalPrice:     res.TotalPrice.StringFixed(2),
		RemainingStock: res.RemainingStock,
		PurchasedAt:    res.PurchasedAt,
	})
}

func (h *SweetHandler) Restock(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "Restock")

	id, err := parseID(c)
	if err != nil {
		return fail(l, "restock_error", err)
	}
	var req transport.RestockRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "restock_error", err)
	}
	res, err := h.Catalog.Restock(c.Request().Context(), authmw.ActorFrom(c), id, req.Quantity, req.Reason)
	if err != nil {
		return fail(l, "restock_error", err)
	}

	return c.JSON(http.StatusOK, transport.RestockResponse{
		Message:       fmt.Sprintf("Restocked %d x %s", res.Quantity, res.Sweet.Name),
		Sweet:         transport.NewSweetResponse(*res.Sweet),
		Quantity:      res.Quantity,
		PreviousStock: res.Previous,
		NewStock:      res.Sweet.Quantity,
		Reason:        res.Reason,
		RestockedAt:   res.RestockedAt,
	})
}

func (h *SweetHandler) Movements(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "Movements")

	id, err := parseID(c)
	if err != nil {
		return fail(l, "movements_error", err)
	}
	res, err := h.Catalog.Movements(c.Request().Context(), authmw.ActorFrom(c), id, pageOf(c))
	if err != nil {
		return fail(l, "movements_error", err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *SweetHandler) Bulk(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "Bulk")

	var req transport.BulkRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "bulk_error", err)
	}
	if err := c.Validate(&req); err != nil {
		return fail(l, "bulk_error", err)
	}
	res, err := h.Catalog.Bulk(c.Request().Context(), authmw.ActorFrom(c), req)
	if err != nil {
		return fail(l, "bulk_error", err)
	}

	l.Info("bulk_done", "operation", res.Operation, "affected", len(res.Affected), "skipped", len(res.Skipped))
	return c.JSON(http.StatusOK, res)
}

func (h *SweetHandler) Stats(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "Stats")

	snap, err := h.Catalog.Stats(c.Request().Context(), authmw.ActorFrom(c))
	if err != nil {
		return fail(l, "stats_error", err)
	}
	return c.JSON(http.StatusOK, snap)
}

func (h *SweetHandler) Dashboard(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "Dashboard")

	d, err := h.Catalog.Dashboard(c.Request().Context(), authmw.ActorFrom(c))
	if err != nil {
		return fail(l, "dashboard_error", err)
	}
	return c.JSON(http.StatusOK, d)
}
