package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"trend-api/domain/dto"
	"trend-api/domain/model"
	"trend-api/infrastructure/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Auth(testSecret))
	r.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetString(KeyUserID),
			"email":   c.GetString(KeyEmail),
			"tier":    TierFromContext(c),
		})
	})
	return r
}

func doRequest(r http.Handler, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth_ValidToken(t *testing.T) {
	token, err := utils.GenerateToken(model.UserClaims{UserID: "u-1", Email: "a@example.com", IsPaidUser: true}, testSecret)
	require.NoError(t, err)

	w := doRequest(newAuthRouter(), "Bearer "+token)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "u-1", body["user_id"])
	assert.Equal(t, "a@example.com", body["email"])
	assert.Equal(t, "paid", body["tier"])
}

func TestAuth_FreeTierByDefault(t *testing.T) {
	token, err := utils.GenerateToken(model.UserClaims{UserID: "u-2"}, testSecret)
	require.NoError(t, err)

	w := doRequest(newAuthRouter(), "Bearer "+token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"tier":"free"`)
}

func TestAuth_Rejections(t *testing.T) {
	wrongKey, err := utils.GenerateToken(model.UserClaims{UserID: "u-1"}, "other-secret")
	require.NoError(t, err)
	expired, err := utils.GenerateToken(model.UserClaims{
		UserID:         "u-1",
		StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(-time.Hour).Unix()},
	}, testSecret)
	require.NoError(t, err)
	noUser, err := utils.GenerateToken(model.UserClaims{Email: "x@example.com"}, testSecret)
	require.NoError(t, err)

	cases := []struct {
		name          string
		authorization string
		message       string
	}{
		{"missing header", "", "Authorization token is required"},
		{"not bearer", "Basic abc", "Authorization token is required"},
		{"malformed", "Bearer not-a-token", "Malformed token"},
		{"wrong key", "Bearer " + wrongKey, "Invalid token"},
		{"expired", "Bearer " + expired, "Token is expired or not active yet"},
		{"no user id", "Bearer " + noUser, "Invalid token"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doRequest(newAuthRouter(), tc.authorization)
			require.Equal(t, http.StatusUnauthorized, w.Code)

			var body dto.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.False(t, body.Success)
			assert.Equal(t, tc.message, body.Error)
		})
	}
}
