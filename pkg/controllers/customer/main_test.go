package customer_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"petshop_backend/pkg/models"
	"petshop_backend/pkg/routes"
	"petshop_backend/pkg/services"
	"petshop_backend/pkg/testutil"
	"petshop_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeGateway struct {
	orders int
	err    error
}

func (g *fakeGateway) CreateOrder(_ context.Context, amount float64, currency, receipt string, _ map[string]interface{}) (*services.GatewayOrder, error) {
	if g.err != nil {
		return nil, g.err
	}
	g.orders++
	return &services.GatewayOrder{ID: "order_" + receipt, Amount: utils.ToPaise(amount), Currency: currency}, nil
}

// shop is a router plus a signed-in customer with a deliverable address
type shop struct {
	db       *gorm.DB
	router   *gin.Engine
	user     models.User
	auth     http.Header
	address  models.Address
	category models.Category
}

func newShop(t *testing.T) *shop {
	t.Helper()
	db := testutil.NewTestDB(t)
	utils.RegisterValidators()
	services.CatalogCache.Flush()

	prevOTP, prevPayments := services.OTP, services.Payments
	services.OTP = services.NewOTPService(services.NewMemoryOTPStore())
	services.Payments = nil
	services.Widgets = services.NewGormWidgetStore(db)
	t.Cleanup(func() {
		services.OTP = prevOTP
		services.Payments = prevPayments
	})

	user := testutil.CreateUser(t, db, "customer@example.com", models.RoleCustomer)
	testutil.CreatePincode(t, db, "560001", 49)
	return &shop{
		db:       db,
		router:   routes.SetupRouter(),
		user:     user,
		auth:     http.Header{"Authorization": {testutil.BearerToken(t, user)}},
		address:  testutil.CreateAddress(t, db, user.ID, "560001"),
		category: testutil.CreateCategory(t, db, "Dog Food"),
	}
}

func (s *shop) product(t *testing.T, name string, price float64, inventory int) models.Product {
	t.Helper()
	return testutil.CreateProduct(t, s.db, s.category.ID, name, price, inventory)
}

func (s *shop) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	return s.doWith(t, method, path, body, s.auth)
}

func (s *shop) doWith(t *testing.T, method, path string, body interface{}, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *shop) addToCart(t *testing.T, productID, quantity int) {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/customer/cart", map[string]int{"productId": productID, "quantity": quantity})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func (s *shop) otherCustomer(t *testing.T, email string) http.Header {
	t.Helper()
	other := testutil.CreateUser(t, s.db, email, models.RoleCustomer)
	return http.Header{"Authorization": {testutil.BearerToken(t, other)}}
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// decodeInto unmarshals one top-level key of the response
func decodeInto(t *testing.T, w *httptest.ResponseRecorder, key string, v interface{}) {
	t.Helper()
	var out map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	raw, ok := out[key]
	require.True(t, ok, "response has no %q: %s", key, w.Body.String())
	require.NoError(t, json.Unmarshal(raw, v))
}
