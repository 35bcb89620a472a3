package middleware

// identity.go resolves the opaque actor identifier for a request.  The
// engine has no authentication semantics of its own; it only needs a
// stable string per holding party.  When a JWT secret is configured,
// the subject claim of a valid bearer token is that string.  Without a
// secret the X-Actor-ID header is trusted as-is, which is intended for
// development and for deployments that terminate identity upstream.

import (
    "net/http"
    "strings"

    "github.com/golang-jwt/jwt/v5"
    "github.com/labstack/echo/v4"
)

// actorHeader names the plain-header fallback for the actor id.
const actorHeader = "X-Actor-ID"

// Identity returns middleware that stores the requesting actor's id in
// the context under "actor_id".  Requests that carry no usable
// identity are rejected with 401 before reaching any handler.
func Identity(jwtSecret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if auth := c.Request().Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") && jwtSecret != "" {
                raw := strings.TrimPrefix(auth, "Bearer ")
                tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
                    if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
                        return nil, echo.ErrUnauthorized
                    }
                    return []byte(jwtSecret), nil
                })
                if err != nil || !tok.Valid {
                    return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
                }
                if claims, ok := tok.Claims.(jwt.MapClaims); ok {
                    if sub, ok := claims["sub"].(string); ok && sub != "" {
                        c.Set("actor_id", sub)
                        return next(c)
                    }
                }
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "token has no subject"})
            }
            if id := strings.TrimSpace(c.Request().Header.Get(actorHeader)); id != "" {
                c.Set("actor_id", id)
                return next(c)
            }
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing actor identity"})
        }
    }
}

// ActorID extracts the actor id stored by Identity.  Handlers treat an
// empty result as an unauthorized request.
func ActorID(c echo.Context) string {
    if v := c.Get("actor_id"); v != nil {
        if s, ok := v.(string); ok {
            return s
        }
    }
    return ""
}
