package admin_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
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

type backOffice struct {
	db     *gorm.DB
	router *gin.Engine
	admin  models.User
	auth   http.Header
}

func newBackOffice(t *testing.T) *backOffice {
	t.Helper()
	db := testutil.NewTestDB(t)
	utils.RegisterValidators()
	services.CatalogCache.Flush()

	prevOTP, prevWidgets := services.OTP, services.Widgets
	services.OTP = services.NewOTPService(services.NewMemoryOTPStore())
	services.Widgets = services.NewGormWidgetStore(db)
	t.Cleanup(func() {
		services.OTP = prevOTP
		services.Widgets = prevWidgets
	})

	admin := testutil.CreateUser(t, db, "admin@example.com", models.RoleAdmin)
	return &backOffice{
		db:     db,
		router: routes.SetupRouter(),
		admin:  admin,
		auth:   http.Header{"Authorization": {testutil.BearerToken(t, admin)}},
	}
}

func (b *backOffice) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	return b.doWith(t, method, path, body, b.auth)
}

func (b *backOffice) doWith(t *testing.T, method, path string, body interface{}, header http.Header) *httptest.ResponseRecorder {
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
	b.router.ServeHTTP(w, req)
	return w
}

func (b *backOffice) headerFor(t *testing.T, email string, role models.Role) http.Header {
	t.Helper()
	user := testutil.CreateUser(t, b.db, email, role)
	return http.Header{"Authorization": {testutil.BearerToken(t, user)}}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Meta    *utils.ListMeta `json:"meta"`
}

// data decodes the standard response and unmarshals its data into v when v is non-nil
func data(t *testing.T, w *httptest.ResponseRecorder, v interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if v != nil {
		require.NoError(t, json.Unmarshal(env.Data, v), w.Body.String())
	}
	return env
}

func message(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var out struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out.Message
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []string
}

func (m *recordingMailer) Send(_ context.Context, to, _, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, to)
	return nil
}
