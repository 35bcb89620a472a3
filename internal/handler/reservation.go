package handler

import (
    "context"
    "errors"
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/stock-hold-reservation/internal/middleware"
    "github.com/iliyamo/stock-hold-reservation/internal/model"
    "github.com/iliyamo/stock-hold-reservation/internal/repository"
)

// Lifecycle is the slice of the engine the handlers invoke.  It is
// satisfied by *engine.Engine.
type Lifecycle interface {
    CreateOrExtend(ctx context.Context, actorID string, itemID uint64, qty int) (*model.Reservation, error)
    Complete(ctx context.Context, id uint64) (*model.Reservation, error)
    Cancel(ctx context.Context, id uint64) (*model.Reservation, error)
}

// ReservationLister is the read surface for the actor's history.  It
// is satisfied by *repository.Store.
type ReservationLister interface {
    ListReservationsByActor(ctx context.Context, actorID string) ([]model.ReservationDetail, error)
}

// ReservationHandler exposes the reservation lifecycle over HTTP.  All
// invariants live in the engine; handlers only bind input, resolve the
// actor and map sentinel errors to statuses.
type ReservationHandler struct {
    Engine Lifecycle
    Store  ReservationLister
}

// NewReservationHandler constructs a ReservationHandler.
func NewReservationHandler(eng Lifecycle, store ReservationLister) *ReservationHandler {
    if eng == nil || store == nil {
        panic("nil dependency passed to NewReservationHandler")
    }
    return &ReservationHandler{Engine: eng, Store: store}
}

// Create handles POST /v1/reservations.  The body carries the item and
// quantity; the actor comes from the identity middleware.  A repeat
// hold on the same item merges into the actor's existing active
// reservation, so this endpoint covers both create and extend.
func (h *ReservationHandler) Create(c echo.Context) error {
    actorID := middleware.ActorID(c)
    if actorID == "" {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var body struct {
        ItemID   uint64 `json:"item_id"`
        Quantity int    `json:"quantity"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if body.ItemID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "item_id is required"})
    }

    res, err := h.Engine.CreateOrExtend(c.Request().Context(), actorID, body.ItemID, body.Quantity)
    if err != nil {
        switch {
        case errors.Is(err, repository.ErrInvalidQuantity):
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantity must be positive"})
        case errors.Is(err, repository.ErrItemNotFound):
            return c.JSON(http.StatusNotFound, echo.Map{"error": "item not found"})
        case errors.Is(err, repository.ErrInsufficientStock):
            return c.JSON(http.StatusConflict, echo.Map{"error": "insufficient stock"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create reservation"})
    }
    return c.JSON(http.StatusCreated, echo.Map{"reservation": res})
}

// List handles GET /v1/reservations.  It returns all of the actor's
// reservations, terminal ones included, each with its item snapshot.
func (h *ReservationHandler) List(c echo.Context) error {
    actorID := middleware.ActorID(c)
    if actorID == "" {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    details, err := h.Store.ListReservationsByActor(c.Request().Context(), actorID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reservations"})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": details})
}

// Complete handles POST /v1/reservations/:id/complete.  Completing a
// terminal reservation is rejected with a message that tells the actor
// whether the hold was already paid or already lost to expiry.
func (h *ReservationHandler) Complete(c echo.Context) error {
    id, err := reservationID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
    }
    res, err := h.Engine.Complete(c.Request().Context(), id)
    if err != nil {
        switch {
        case errors.Is(err, repository.ErrReservationNotFound):
            return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
        case errors.Is(err, repository.ErrAlreadyCompleted):
            return c.JSON(http.StatusConflict, echo.Map{"error": "reservation already completed"})
        case errors.Is(err, repository.ErrAlreadyExpired):
            return c.JSON(http.StatusConflict, echo.Map{"error": "reservation already expired"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to complete reservation"})
    }
    return c.JSON(http.StatusOK, echo.Map{"reservation": res})
}

// Cancel handles DELETE /v1/reservations/:id.  The engine treats
// cancellation of a terminal reservation as a no-op, so a client
// double-clicking release gets the same 200 twice and stock is only
// restored once.
func (h *ReservationHandler) Cancel(c echo.Context) error {
    id, err := reservationID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
    }
    res, err := h.Engine.Cancel(c.Request().Context(), id)
    if err != nil {
        if errors.Is(err, repository.ErrReservationNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to cancel reservation"})
    }
    return c.JSON(http.StatusOK, echo.Map{"reservation": res})
}

func reservationID(c echo.Context) (uint64, error) {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || id == 0 {
        return 0, errors.New("invalid id")
    }
    return id, nil
}
