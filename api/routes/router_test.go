package routes

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goldstore/storefront/internal/notify"
	"github.com/goldstore/storefront/internal/session"
	"github.com/goldstore/storefront/pkg/auth"
	"github.com/goldstore/storefront/pkg/config"
	"github.com/goldstore/storefront/pkg/enums"
	"github.com/goldstore/storefront/pkg/logger"
	"github.com/goldstore/storefront/pkg/metrics"
	"github.com/goldstore/storefront/pkg/storage"
)

const testClient = "browser-1"

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "dev", Port: "0", CORSOrigins: []string{"http://localhost:5173"}},
		Storage: config.StorageConfig{
			Driver:    "memory",
			CartKey:   "cart",
			OrdersKey: "orders",
			TokenKey:  "token",
			UserKey:   "user",
		},
		Order: config.OrderConfig{EstimateDays: 7, StatusLabel: "Processing"},
		Auth:  config.AuthConfig{SuperuserRole: "superadmin", LoginRoute: "/login", HomeRoute: "/"},
	}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := testConfig()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	reg := prometheus.NewRegistry()
	backend := storage.NewMemory()
	registry := session.NewRegistry(backend, session.Options{
		Storage:  cfg.Storage,
		Session:  cfg.Session,
		Order:    cfg.Order,
		Auth:     cfg.Auth,
		Notifier: notify.ContextNotifier{},
		Logger:   logg,
		Metrics:  metrics.NewStoreMetrics(reg),
	})
	return NewRouter(cfg, logg, registry, backend, reg)
}

func do(t *testing.T, h http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Client-Id", testClient)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	return resp
}

type envelope struct {
	Data          json.RawMessage `json:"data"`
	Notifications []struct {
		Level   string `json:"level"`
		Message string `json:"message"`
	} `json:"notifications"`
	Error struct {
		Code    string         `json:"code"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func decode(t *testing.T, resp *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env), resp.Body.String())
	return env
}

func loginAs(t *testing.T, h http.Handler, role enums.Role) {
	t.Helper()
	token, err := auth.SignForTest(auth.Claims{UserID: "42", Role: role}, "secret")
	require.NoError(t, err)
	body := `{"token":"` + token + `","user":{"id":42,"name":"Ana","email":"ana@example.com","role":"` + role.String() + `"}}`
	resp := do(t, h, http.MethodPost, "/api/v1/auth/login", body, nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
}

func TestHealthRoutes(t *testing.T) {
	h := newTestRouter(t)

	resp := do(t, h, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "dev", resp.Header().Get("X-GoldStore-Env"))

	resp = do(t, h, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestDataRoutesRequireClientID(t *testing.T) {
	h := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode(t, resp).Error.Code)
}

func TestCartCheckoutFlow(t *testing.T) {
	h := newTestRouter(t)

	product := `{"product":{"id":7,"name":"Gold Ring","price":"59.90","image_1":"ring.png","variations":[{"id":"v1","size":"M","color":"gold","stock":3}]},"variation_id":"v1"}`
	resp := do(t, h, http.MethodPost, "/api/v1/cart/items", product, nil)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	env := decode(t, resp)
	require.Len(t, env.Notifications, 1)
	assert.Equal(t, "Produto adicionado ao carrinho!", env.Notifications[0].Message)

	resp = do(t, h, http.MethodPatch, "/api/v1/cart/items/7", `{"delta":2,"variation_id":"v1"}`, nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var summary struct {
		Items []struct {
			ID       string `json:"id"`
			Image    string `json:"image"`
			Quantity int    `json:"quantity"`
		} `json:"items"`
		TotalItems int    `json:"totalItems"`
		TotalPrice string `json:"totalPrice"`
	}
	require.NoError(t, json.Unmarshal(decode(t, do(t, h, http.MethodGet, "/api/v1/cart", "", nil)).Data, &summary))
	require.Len(t, summary.Items, 1)
	assert.Equal(t, "7", summary.Items[0].ID)
	assert.Equal(t, "ring.png", summary.Items[0].Image)
	assert.Equal(t, 3, summary.TotalItems)
	assert.Equal(t, "179.7", summary.TotalPrice)

	resp = do(t, h, http.MethodPost, "/api/v1/cart/complete", `{"total":179.7,"method":"pix"}`, nil)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var history struct {
		Orders []struct {
			ID         string `json:"id"`
			ItemsCount int    `json:"itemsCount"`
		} `json:"orders"`
	}
	require.NoError(t, json.Unmarshal(decode(t, do(t, h, http.MethodGet, "/api/v1/orders", "", nil)).Data, &history))
	require.Len(t, history.Orders, 1)
	assert.True(t, strings.HasPrefix(history.Orders[0].ID, "GS-"))
	assert.Equal(t, 3, history.Orders[0].ItemsCount)

	require.NoError(t, json.Unmarshal(decode(t, do(t, h, http.MethodGet, "/api/v1/cart", "", nil)).Data, &summary))
	assert.Empty(t, summary.Items)
}

func TestCompleteEmptyCartReportsNotCompleted(t *testing.T) {
	h := newTestRouter(t)
	resp := do(t, h, http.MethodPost, "/api/v1/cart/complete", `{"total":0,"method":"pix"}`, nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var body struct {
		Completed bool            `json:"completed"`
		Order     json.RawMessage `json:"order"`
	}
	require.NoError(t, json.Unmarshal(decode(t, resp).Data, &body))
	assert.False(t, body.Completed)
	assert.Equal(t, "null", string(body.Order))
}

func TestCompleteReplaysIdempotentRequest(t *testing.T) {
	h := newTestRouter(t)
	product := `{"product":{"id":"p1","name":"Chain","price":100}}`
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/api/v1/cart/items", product, nil).Code)

	headers := map[string]string{"Idempotency-Key": "checkout-1"}
	first := do(t, h, http.MethodPost, "/api/v1/cart/complete", `{"total":100,"method":"pix"}`, headers)
	require.Equal(t, http.StatusCreated, first.Code)

	second := do(t, h, http.MethodPost, "/api/v1/cart/complete", `{"total":100,"method":"pix"}`, headers)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))
	assert.JSONEq(t, first.Body.String(), second.Body.String())

	conflict := do(t, h, http.MethodPost, "/api/v1/cart/complete", `{"total":5,"method":"pix"}`, headers)
	assert.Equal(t, http.StatusConflict, conflict.Code)
}

func TestAdminSessionGuard(t *testing.T) {
	h := newTestRouter(t)

	resp := do(t, h, http.MethodGet, "/api/v1/admin/session", "", nil)
	require.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, "/login?from=%2Fapi%2Fv1%2Fadmin%2Fsession", decode(t, resp).Error.Details["redirect"])

	loginAs(t, h, enums.RoleCustomer)
	resp = do(t, h, http.MethodGet, "/api/v1/admin/session", "", nil)
	require.Equal(t, http.StatusForbidden, resp.Code)
	assert.Equal(t, "/", decode(t, resp).Error.Details["redirect"])

	loginAs(t, h, enums.RoleAdmin)
	resp = do(t, h, http.MethodGet, "/api/v1/admin/session", "", nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var body struct {
		ClientID string `json:"clientId"`
		User     struct {
			ID   string `json:"id"`
			Role string `json:"role"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(decode(t, resp).Data, &body))
	assert.Equal(t, testClient, body.ClientID)
	assert.Equal(t, "42", body.User.ID)
	assert.Equal(t, "admin", body.User.Role)
}

func TestSuperadminBypassesRoleCheck(t *testing.T) {
	h := newTestRouter(t)
	loginAs(t, h, enums.RoleSuperadmin)
	resp := do(t, h, http.MethodGet, "/api/v1/admin/session", "", nil)
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestAuthMeAndLogout(t *testing.T) {
	h := newTestRouter(t)

	var me struct {
		IsAuthenticated bool            `json:"isAuthenticated"`
		User            json.RawMessage `json:"user"`
	}
	require.NoError(t, json.Unmarshal(decode(t, do(t, h, http.MethodGet, "/api/v1/auth/me", "", nil)).Data, &me))
	assert.False(t, me.IsAuthenticated)
	assert.Equal(t, "null", string(me.User))

	loginAs(t, h, enums.RoleCustomer)
	require.NoError(t, json.Unmarshal(decode(t, do(t, h, http.MethodGet, "/api/v1/auth/me", "", nil)).Data, &me))
	assert.True(t, me.IsAuthenticated)

	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/v1/auth/logout", "", nil).Code)
	require.NoError(t, json.Unmarshal(decode(t, do(t, h, http.MethodGet, "/api/v1/auth/me", "", nil)).Data, &me))
	assert.False(t, me.IsAuthenticated)
}

func TestMetricsEndpointExposesStoreMetrics(t *testing.T) {
	h := newTestRouter(t)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/api/v1/cart/items", `{"product":{"id":1,"name":"Coin","price":10}}`, nil).Code)

	resp := do(t, h, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `goldstore_cart_mutations_total{op="add"} 1`)
}

func TestAddItemRequiresVariationChoice(t *testing.T) {
	h := newTestRouter(t)
	product := `{"product":{"id":7,"name":"Ring","price":10,"variations":[{"id":"v1","size":"M"}]}}`

	resp := do(t, h, http.MethodPost, "/api/v1/cart/items", product, nil)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode(t, resp).Error.Code)

	unknown := `{"product":{"id":7,"name":"Ring","price":10,"variations":[{"id":"v1","size":"M"}]},"variation_id":"v9"}`
	resp = do(t, h, http.MethodPost, "/api/v1/cart/items", unknown, nil)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestUpdateItemTrimsVariationID(t *testing.T) {
	h := newTestRouter(t)
	product := `{"product":{"id":7,"name":"Ring","price":10,"variations":[{"id":"40","size":"M"}]},"variation_id":" 40"}`
	resp := do(t, h, http.MethodPost, "/api/v1/cart/items", product, nil)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	resp = do(t, h, http.MethodPatch, "/api/v1/cart/items/7", `{"delta":1,"variation_id":" 40 "}`, nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var summary struct {
		TotalItems int `json:"totalItems"`
	}
	require.NoError(t, json.Unmarshal(decode(t, resp).Data, &summary))
	assert.Equal(t, 2, summary.TotalItems)
}

func TestGuardEndpointReportsDecision(t *testing.T) {
	h := newTestRouter(t)

	var decision struct {
		Outcome  string `json:"outcome"`
		Redirect string `json:"redirect"`
	}
	resp := do(t, h, http.MethodGet, "/api/v1/auth/guard?roles=admin&from=/admin/orders", "", nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	require.NoError(t, json.Unmarshal(decode(t, resp).Data, &decision))
	assert.Equal(t, "redirect_login", decision.Outcome)
	assert.Equal(t, "/login?from=%2Fadmin%2Forders", decision.Redirect)

	loginAs(t, h, enums.RoleCustomer)
	require.NoError(t, json.Unmarshal(decode(t, do(t, h, http.MethodGet, "/api/v1/auth/guard?roles=customer", "", nil)).Data, &decision))
	assert.Equal(t, "allow", decision.Outcome)

	resp = do(t, h, http.MethodGet, "/api/v1/auth/guard?from=https://evil.example", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
