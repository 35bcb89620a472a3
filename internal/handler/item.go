package handler

import (
    "context"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/stock-hold-reservation/internal/model"
)

// Catalog is the read surface the item handler needs.  It is satisfied
// by *repository.Store.
type Catalog interface {
    ListItems(ctx context.Context) ([]model.Item, error)
}

// ItemHandler serves the public catalog.  Availability in the response
// is advisory: the engine re-reads it under the row lock before any
// hold is granted.
type ItemHandler struct {
    Store Catalog
}

// NewItemHandler constructs an ItemHandler.
func NewItemHandler(store Catalog) *ItemHandler {
    if store == nil {
        panic("nil store passed to NewItemHandler")
    }
    return &ItemHandler{Store: store}
}

// ListItems handles GET /v1/items.  It returns every item with its
// current available quantity.
func (h *ItemHandler) ListItems(c echo.Context) error {
    items, err := h.Store.ListItems(c.Request().Context())
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load items"})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}
