package httpapi

import (
	"context"
	"strings"

	"github.com/Silas-Hakuzwimana/streamforge/internal/common"
	"github.com/Silas-Hakuzwimana/streamforge/internal/server/models"
	"github.com/gofiber/fiber/v2"
)

// UserContextKey is the Fiber local holding the authenticated *models.UserView.
const UserContextKey = "user"

// Authenticator resolves a session token to a user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.UserView, error)
}

// AuthMiddleware reads the session from the token cookie first and the
// Authorization bearer header second.
func AuthMiddleware(a Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(common.SessionCookieName)
		if token == "" {
			token = bearerToken(c.Get(fiber.HeaderAuthorization))
		}
		if token == "" {
			return common.ErrNotAuthorized.WithMessage("Not authorized, no token provided")
		}

		user, err := a.Authenticate(c.UserContext(), token)
		if err != nil {
			return err
		}

		c.Locals(UserContextKey, user)
		return c.Next()
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// CurrentUser returns the user set by AuthMiddleware.
func CurrentUser(c *fiber.Ctx) *models.UserView {
	u, _ := c.Locals(UserContextKey).(*models.UserView)
	return u
}
