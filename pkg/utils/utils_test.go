package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"petshop_backend/pkg/config"
	"petshop_backend/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Royal Canin Maxi Adult 4kg": "royal-canin-maxi-adult-4kg",
		"  Cat  Litter -- Clumping ": "cat-litter-clumping",
		"Bird's Seed Mix!":           "bird-s-seed-mix",
		"":                           "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestRoundMoney(t *testing.T) {
	assert.Equal(t, 10.01, RoundMoney(10.005000001))
	assert.Equal(t, 0.3, RoundMoney(0.1+0.2))
	assert.Equal(t, int64(129950), ToPaise(1299.5))
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret!", hash)
	assert.NoError(t, ComparePassword(hash, "s3cret!"))
	assert.ErrorIs(t, ComparePassword(hash, "wrong"), ErrInvalidPassword)
	assert.Error(t, CheckPasswordStrength("abc"))
}

func TestParseExpiry(t *testing.T) {
	assert.Equal(t, 7*24*time.Hour, ParseExpiry("7d"))
	assert.Equal(t, 30*time.Minute, ParseExpiry("30m"))
	assert.Equal(t, 7*24*time.Hour, ParseExpiry("garbage"))
}

func TestTokenRoundTrip(t *testing.T) {
	prev := config.AppConfig
	defer func() { config.AppConfig = prev }()
	config.AppConfig = &config.Config{JWTSecret: "test-secret", JWTExpiresIn: "1h"}

	token, err := GenerateToken(42, models.RoleAdmin)
	require.NoError(t, err)

	claims, err := VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, 42, claims.ID)
	assert.Equal(t, models.RoleAdmin, claims.Role)

	config.AppConfig = &config.Config{JWTSecret: "other-secret"}
	_, err = VerifyToken(token)
	assert.Error(t, err)
}

func TestValidators(t *testing.T) {
	assert.True(t, IsValidPincode("560001"))
	assert.False(t, IsValidPincode("060001"))
	assert.False(t, IsValidPincode("56001"))
	assert.True(t, IsValidPhone("+919876543210"))
	assert.False(t, IsValidPhone("12345"))
}

func TestParsePage(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		query string
		want  Page
	}{
		{"", Page{Page: 1, Limit: DefaultPageSize}},
		{"?page=3&limit=10", Page{Page: 3, Limit: 10}},
		{"?page=-1&limit=1000", Page{Page: 1, Limit: MaxPageSize}},
		{"?page=x&limit=y", Page{Page: 1, Limit: DefaultPageSize}},
	}
	for _, tc := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/"+tc.query, nil)
		assert.Equal(t, tc.want, ParsePage(c), tc.query)
	}
	assert.Equal(t, 20, Page{Page: 3, Limit: 10}.Offset())
}

func TestResponseEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	ListResponse(c, []string{"a"}, 41, Page{Page: 2, Limit: 20})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"data":["a"],"meta":{"total":41,"page":2,"limit":20}}`, w.Body.String())

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	CreatedResponse(c, map[string]int{"id": 7}, "Created")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"success":true,"data":{"id":7},"message":"Created"}`, w.Body.String())
}
