package handler

import (
    "context"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/stock-hold-reservation/internal/model"
    "github.com/iliyamo/stock-hold-reservation/internal/repository"
)

// stubEngine returns canned results so the tests exercise only the
// HTTP mapping; the lifecycle semantics are tested with the engine.
type stubEngine struct {
    res *model.Reservation
    err error

    gotActor string
    gotItem  uint64
    gotQty   int
    gotID    uint64
}

func (s *stubEngine) CreateOrExtend(_ context.Context, actorID string, itemID uint64, qty int) (*model.Reservation, error) {
    s.gotActor, s.gotItem, s.gotQty = actorID, itemID, qty
    return s.res, s.err
}

func (s *stubEngine) Complete(_ context.Context, id uint64) (*model.Reservation, error) {
    s.gotID = id
    return s.res, s.err
}

func (s *stubEngine) Cancel(_ context.Context, id uint64) (*model.Reservation, error) {
    s.gotID = id
    return s.res, s.err
}

type stubLister struct {
    details []model.ReservationDetail
    err     error
}

func (s *stubLister) ListReservationsByActor(_ context.Context, _ string) ([]model.ReservationDetail, error) {
    return s.details, s.err
}

func newContext(t *testing.T, method, target, body, actorID string) (echo.Context, *httptest.ResponseRecorder) {
    t.Helper()
    req := httptest.NewRequest(method, target, strings.NewReader(body))
    if body != "" {
        req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    }
    rec := httptest.NewRecorder()
    c := echo.New().NewContext(req, rec)
    if actorID != "" {
        c.Set("actor_id", actorID)
    }
    return c, rec
}

func activeReservation() *model.Reservation {
    return &model.Reservation{
        ID:        7,
        ActorID:   "u1",
        ItemID:    1,
        Quantity:  2,
        Status:    model.StatusActive,
        ExpiresAt: time.Date(2025, 6, 1, 12, 5, 0, 0, time.UTC),
    }
}

func TestReservationCreate(t *testing.T) {
    t.Parallel()

    cases := []struct {
        name       string
        body       string
        actorID    string
        engineErr  error
        wantStatus int
    }{
        {"created", `{"item_id":1,"quantity":2}`, "u1", nil, http.StatusCreated},
        {"missing identity", `{"item_id":1,"quantity":2}`, "", nil, http.StatusUnauthorized},
        {"malformed body", `{"item_id":`, "u1", nil, http.StatusBadRequest},
        {"missing item id", `{"quantity":2}`, "u1", nil, http.StatusBadRequest},
        {"invalid quantity", `{"item_id":1,"quantity":0}`, "u1", repository.ErrInvalidQuantity, http.StatusBadRequest},
        {"unknown item", `{"item_id":9,"quantity":2}`, "u1", repository.ErrItemNotFound, http.StatusNotFound},
        {"insufficient stock", `{"item_id":1,"quantity":50}`, "u1", repository.ErrInsufficientStock, http.StatusConflict},
    }

    for _, tc := range cases {
        tc := tc
        t.Run(tc.name, func(t *testing.T) {
            t.Parallel()
            eng := &stubEngine{res: activeReservation(), err: tc.engineErr}
            h := NewReservationHandler(eng, &stubLister{})
            c, rec := newContext(t, http.MethodPost, "/v1/reservations", tc.body, tc.actorID)

            if err := h.Create(c); err != nil {
                t.Fatalf("handler returned error: %v", err)
            }
            if rec.Code != tc.wantStatus {
                t.Fatalf("expected status %d, got %d (%s)", tc.wantStatus, rec.Code, rec.Body.String())
            }
        })
    }

    t.Run("passes actor and body through to the engine", func(t *testing.T) {
        t.Parallel()
        eng := &stubEngine{res: activeReservation()}
        h := NewReservationHandler(eng, &stubLister{})
        c, _ := newContext(t, http.MethodPost, "/v1/reservations", `{"item_id":3,"quantity":4}`, "u9")

        if err := h.Create(c); err != nil {
            t.Fatalf("handler returned error: %v", err)
        }
        if eng.gotActor != "u9" || eng.gotItem != 3 || eng.gotQty != 4 {
            t.Fatalf("engine called with actor=%q item=%d qty=%d", eng.gotActor, eng.gotItem, eng.gotQty)
        }
    })
}

func TestReservationComplete(t *testing.T) {
    t.Parallel()

    cases := []struct {
        name       string
        id         string
        engineErr  error
        wantStatus int
    }{
        {"completed", "7", nil, http.StatusOK},
        {"garbage id", "abc", nil, http.StatusBadRequest},
        {"zero id", "0", nil, http.StatusBadRequest},
        {"unknown reservation", "7", repository.ErrReservationNotFound, http.StatusNotFound},
        {"already completed", "7", repository.ErrAlreadyCompleted, http.StatusConflict},
        {"already expired", "7", repository.ErrAlreadyExpired, http.StatusConflict},
    }

    for _, tc := range cases {
        tc := tc
        t.Run(tc.name, func(t *testing.T) {
            t.Parallel()
            res := activeReservation()
            res.Status = model.StatusCompleted
            eng := &stubEngine{res: res, err: tc.engineErr}
            h := NewReservationHandler(eng, &stubLister{})
            c, rec := newContext(t, http.MethodPost, "/v1/reservations/"+tc.id+"/complete", "", "u1")
            c.SetParamNames("id")
            c.SetParamValues(tc.id)

            if err := h.Complete(c); err != nil {
                t.Fatalf("handler returned error: %v", err)
            }
            if rec.Code != tc.wantStatus {
                t.Fatalf("expected status %d, got %d (%s)", tc.wantStatus, rec.Code, rec.Body.String())
            }
        })
    }
}

func TestReservationCancel(t *testing.T) {
    t.Parallel()

    t.Run("cancelled", func(t *testing.T) {
        t.Parallel()
        res := activeReservation()
        res.Status = model.StatusExpired
        eng := &stubEngine{res: res}
        h := NewReservationHandler(eng, &stubLister{})
        c, rec := newContext(t, http.MethodDelete, "/v1/reservations/7", "", "u1")
        c.SetParamNames("id")
        c.SetParamValues("7")

        if err := h.Cancel(c); err != nil {
            t.Fatalf("handler returned error: %v", err)
        }
        if rec.Code != http.StatusOK {
            t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
        }
        if eng.gotID != 7 {
            t.Fatalf("engine called with id %d", eng.gotID)
        }
    })

    t.Run("unknown reservation", func(t *testing.T) {
        t.Parallel()
        eng := &stubEngine{err: repository.ErrReservationNotFound}
        h := NewReservationHandler(eng, &stubLister{})
        c, rec := newContext(t, http.MethodDelete, "/v1/reservations/7", "", "u1")
        c.SetParamNames("id")
        c.SetParamValues("7")

        if err := h.Cancel(c); err != nil {
            t.Fatalf("handler returned error: %v", err)
        }
        if rec.Code != http.StatusNotFound {
            t.Fatalf("expected 404, got %d", rec.Code)
        }
    })
}

func TestReservationList(t *testing.T) {
    t.Parallel()

    t.Run("returns actor history", func(t *testing.T) {
        t.Parallel()
        lister := &stubLister{details: []model.ReservationDetail{
            {Reservation: *activeReservation(), ItemName: "Standard Ticket", ItemPriceCents: 4500},
        }}
        h := NewReservationHandler(&stubEngine{}, lister)
        c, rec := newContext(t, http.MethodGet, "/v1/reservations", "", "u1")

        if err := h.List(c); err != nil {
            t.Fatalf("handler returned error: %v", err)
        }
        if rec.Code != http.StatusOK {
            t.Fatalf("expected 200, got %d", rec.Code)
        }
        if !strings.Contains(rec.Body.String(), "Standard Ticket") {
            t.Fatalf("expected item snapshot in body, got %s", rec.Body.String())
        }
    })

    t.Run("missing identity", func(t *testing.T) {
        t.Parallel()
        h := NewReservationHandler(&stubEngine{}, &stubLister{})
        c, rec := newContext(t, http.MethodGet, "/v1/reservations", "", "")

        if err := h.List(c); err != nil {
            t.Fatalf("handler returned error: %v", err)
        }
        if rec.Code != http.StatusUnauthorized {
            t.Fatalf("expected 401, got %d", rec.Code)
        }
    })
}
