package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pusdatin/satudata-backend/internal/domain/auth"
	"github.com/pusdatin/satudata-backend/internal/platform/logger"
)

const testSecret = "test-secret"

func sign(t *testing.T, method jwt.SigningMethod, key any, claims Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func claimsFor(sub uuid.UUID, role string, bidang string, exp time.Time) Claims {
	return Claims{
		Role:     role,
		BidangID: bidang,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub.String(),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
}

func TestRequireAuthAttachesActor(t *testing.T) {
	gin.SetMode(gin.TestMode)
	am := NewAuthMiddleware(logger.Nop(), testSecret)
	userID, bidangID := uuid.New(), uuid.New()

	var got auth.Actor
	r := gin.New()
	r.GET("/me", am.RequireAuth(), func(c *gin.Context) {
		got = ActorFrom(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+sign(t, jwt.SigningMethodHS256, []byte(testSecret),
		claimsFor(userID, "bidang", bidangID.String(), time.Now().Add(time.Hour))))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, auth.Actor{ID: userID, Role: auth.RoleBidang, BidangID: bidangID}, got)
}

func TestRequireAuthRejects(t *testing.T) {
	gin.SetMode(gin.TestMode)
	am := NewAuthMiddleware(logger.Nop(), testSecret)
	future := time.Now().Add(time.Hour)

	cases := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"not bearer", "Basic abc"},
		{"wrong secret", "Bearer " + sign(t, jwt.SigningMethodHS256, []byte("other"), claimsFor(uuid.New(), "PUSDATIN", "", future))},
		{"expired", "Bearer " + sign(t, jwt.SigningMethodHS256, []byte(testSecret), claimsFor(uuid.New(), "PUSDATIN", "", time.Now().Add(-time.Minute)))},
		{"unknown role", "Bearer " + sign(t, jwt.SigningMethodHS256, []byte(testSecret), claimsFor(uuid.New(), "ADMIN", "", future))},
		{"bad bidang", "Bearer " + sign(t, jwt.SigningMethodHS256, []byte(testSecret), claimsFor(uuid.New(), "KABID", "bidang-1", future))},
		{"hs512", "Bearer " + sign(t, jwt.SigningMethodHS512, []byte(testSecret), claimsFor(uuid.New(), "KABID", "", future))},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/me", am.RequireAuth(), func(c *gin.Context) { c.Status(http.StatusOK) })
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			require.Equal(t, http.StatusUnauthorized, rec.Code)
			require.Contains(t, rec.Body.String(), `"code":"unauthorized"`)
		})
	}
}

func TestVerifyTreatsZeroBidangAsUnassigned(t *testing.T) {
	am := NewAuthMiddleware(logger.Nop(), testSecret)
	rd, err := am.Verify(sign(t, jwt.SigningMethodHS256, []byte(testSecret), claimsFor(uuid.New(), "PUSDATIN", "0", time.Now().Add(time.Hour))))
	require.NoError(t, err)
	require.Equal(t, uuid.Nil, rd.BidangID)
	require.Equal(t, "PUSDATIN", rd.Role)
}

func TestRequireStreamAuthAcceptsQueryToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	am := NewAuthMiddleware(logger.Nop(), testSecret)
	userID := uuid.New()
	token := sign(t, jwt.SigningMethodHS256, []byte(testSecret), claimsFor(userID, "PUSDATIN", "0", time.Now().Add(time.Hour)))

	r := gin.New()
	r.GET("/stream", am.RequireStreamAuth(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/api", am.RequireAuth(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stream?token="+token, nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api?token="+token, nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
