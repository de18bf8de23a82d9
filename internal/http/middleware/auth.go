package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/pusdatin/satudata-backend/internal/domain/auth"
	"github.com/pusdatin/satudata-backend/internal/http/response"
	"github.com/pusdatin/satudata-backend/internal/platform/apierr"
	"github.com/pusdatin/satudata-backend/internal/platform/ctxutil"
	"github.com/pusdatin/satudata-backend/internal/platform/logger"
)

// Claims are the bearer token fields issued by the portal's identity service.
type Claims struct {
	Role     string `json:"role"`
	BidangID string `json:"bidang_id,omitempty"`
	jwt.RegisteredClaims
}

type AuthMiddleware struct {
	log    *logger.Logger
	secret []byte
}

func NewAuthMiddleware(log *logger.Logger, secret string) *AuthMiddleware {
	return &AuthMiddleware{log: log.With("middleware", "AuthMiddleware"), secret: []byte(secret)}
}

func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return am.require(extractBearer)
}

// RequireStreamAuth also accepts ?token= since EventSource clients cannot set headers.
func (am *AuthMiddleware) RequireStreamAuth() gin.HandlerFunc {
	return am.require(extractTokenFromAll)
}

func (am *AuthMiddleware) require(extract func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extract(c)
		if tokenString == "" {
			response.AbortErr(c, apierr.New(http.StatusUnauthorized, "unauthorized", errors.New("missing or invalid token")))
			return
		}
		rd, err := am.Verify(tokenString)
		if err != nil {
			am.log.Debug("token rejected", "error", err)
			response.AbortErr(c, apierr.New(http.StatusUnauthorized, "unauthorized", err))
			return
		}
		c.Request = c.Request.WithContext(ctxutil.WithRequestData(c.Request.Context(), rd))
		c.Next()
	}
}

// Verify checks an HS256 token and resolves the caller it names.
func (am *AuthMiddleware) Verify(tokenString string) (*ctxutil.RequestData, error) {
	if len(am.secret) == 0 {
		return nil, errors.New("token verification is not configured")
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return am.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid or expired token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid subject in token: %w", err)
	}
	role, ok := auth.ParseRole(claims.Role)
	if !ok {
		return nil, fmt.Errorf("unknown role %q", claims.Role)
	}
	rd := &ctxutil.RequestData{UserID: userID, Role: string(role)}
	if raw := strings.TrimSpace(claims.BidangID); raw != "" && raw != "0" {
		bidangID, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid bidang_id in token: %w", err)
		}
		rd.BidangID = bidangID
	}
	return rd, nil
}

func extractBearer(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}

func extractTokenFromAll(c *gin.Context) string {
	if qToken := strings.TrimSpace(c.Query("token")); qToken != "" {
		return qToken
	}
	return extractBearer(c)
}

// ActorFrom returns the authenticated actor of the request; zero when absent.
func ActorFrom(c *gin.Context) auth.Actor {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil {
		return auth.Actor{}
	}
	return auth.Actor{ID: rd.UserID, Role: auth.Role(rd.Role), BidangID: rd.BidangID}
}
