package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vietanh2810/stand-portal-api/internal/api/handler/v1/response"
	"github.com/vietanh2810/stand-portal-api/internal/pkg/jwthelper"
)

const userIDKey = "userID"

var errMissingToken = errors.New("missing bearer token")

type Authenticator struct {
	key []byte
}

func NewAuthenticator(signingKey string) *Authenticator {
	return &Authenticator{
		key: []byte(signingKey),
	}
}

// VerifyJWT rejects requests without a valid bearer token and stores the
// caller's id in the gin context.
func (a *Authenticator) VerifyJWT() gin.HandlerFunc {
	return a.verify(false)
}

// VerifyWebSocketJWT also accepts the token as the "token" query parameter,
// since browsers cannot set headers when opening a websocket.
func (a *Authenticator) VerifyWebSocketJWT() gin.HandlerFunc {
	return a.verify(true)
}

func (a *Authenticator) verify(allowQuery bool) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := bearerToken(ctx.GetHeader("Authorization"))
		if token == "" && allowQuery {
			token = ctx.Query("token")
		}
		if token == "" {
			response.RenderErr(ctx, response.ErrUnauthorized(errMissingToken))
			return
		}

		claims, err := jwthelper.ParseToken(a.key, token)
		if err != nil {
			response.RenderErr(ctx, response.ErrUnauthorized(err))
			return
		}

		userID, err := claims.UserID()
		if err != nil {
			response.RenderErr(ctx, response.ErrUnauthorized(err))
			return
		}

		ctx.Set(userIDKey, userID)
		ctx.Next()
	}
}

// UserID returns the id stored by VerifyJWT.
func UserID(ctx *gin.Context) (uint, bool) {
	v, ok := ctx.Get(userIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// SetUserID is used by tests and internal callers that authenticate by other means.
func SetUserID(ctx *gin.Context, id uint) {
	ctx.Set(userIDKey, id)
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
