package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/session"
)

// SignInPath is where unauthenticated shoppers are sent.
const SignInPath = "/signin"

// RequireSession gates protected routes on the session store. The
// ordering matters: the handler chain does not run and no redirect is
// issued until the session probe has resolved, so a signed-in shopper
// is never bounced during the probe window and protected content is
// never produced for an unknown session.
func RequireSession(store *session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		store.Resolve(c.Request.Context())

		if store.Member() == nil {
			c.Redirect(http.StatusSeeOther, SignInPath)
			c.Abort()
			return
		}
		c.Next()
	}
}
