package handler

import (
    "context"
    "net/http"

    "github.com/labstack/echo/v4"
    "golang.org/x/crypto/bcrypt"

    "github.com/iliyamo/stock-hold-reservation/internal/model"
)

// CatalogResetter clears all state and reseeds the catalog.  It is
// satisfied by *repository.Store.
type CatalogResetter interface {
    ResetCatalog(ctx context.Context, items []model.Item) error
}

// AdminHandler owns the demo reset facility.  The endpoint is
// destructive, so it is doubly gated: it refuses to exist in prod, and
// otherwise requires the caller's X-Admin-Key to match a bcrypt hash
// from the environment.  An empty hash disables it everywhere.
type AdminHandler struct {
    Store        CatalogResetter
    Env          string
    AdminKeyHash string
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(store CatalogResetter, env, adminKeyHash string) *AdminHandler {
    if store == nil {
        panic("nil store passed to NewAdminHandler")
    }
    return &AdminHandler{Store: store, Env: env, AdminKeyHash: adminKeyHash}
}

// seedCatalog is the fixed demo inventory installed by every reset.
var seedCatalog = []model.Item{
    {Name: "Standard Ticket", PriceCents: 4500, TotalQuantity: 100},
    {Name: "VIP Ticket", PriceCents: 12000, TotalQuantity: 20},
    {Name: "Backstage Pass", PriceCents: 25000, TotalQuantity: 5},
    {Name: "Poster", PriceCents: 1500, TotalQuantity: 200},
}

// Reset handles POST /v1/admin/reset.  It deletes every reservation
// and item and reseeds the fixed catalog in one transaction.
func (h *AdminHandler) Reset(c echo.Context) error {
    if h.Env == "prod" || h.AdminKeyHash == "" {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
    }
    key := c.Request().Header.Get("X-Admin-Key")
    if key == "" || bcrypt.CompareHashAndPassword([]byte(h.AdminKeyHash), []byte(key)) != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid admin key"})
    }
    if err := h.Store.ResetCatalog(c.Request().Context(), seedCatalog); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to reset catalog"})
    }
    return c.JSON(http.StatusOK, echo.Map{"seeded": len(seedCatalog)})
}
