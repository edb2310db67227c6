package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"pos-agent/internal/apiclient"
	"pos-agent/internal/auth"
	"pos-agent/internal/broker"
	"pos-agent/internal/csrf"
	"pos-agent/internal/notify"
	"pos-agent/internal/receipt"
	"pos-agent/internal/service"
	"pos-agent/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// remote is a minimal stand-in for the POS API.
type remote struct {
	mu         sync.Mutex
	loggedIn   bool
	placeFails bool
	placed     []map[string]interface{}
}

func (r *remote) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/csrf", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("X-XSRF-TOKEN", "tok")
	})
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, req *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(req.Body).Decode(&body)
		if body["password"] != "secret" {
			reply(w, http.StatusUnauthorized, `{"message":"Invalid email or password"}`)
			return
		}
		r.mu.Lock()
		r.loggedIn = true
		r.mu.Unlock()
		http.SetCookie(w, &http.Cookie{Name: "jwt", Value: "signed", Path: "/"})
		reply(w, http.StatusOK, `{"message":"Login successful"}`)
	})
	mux.HandleFunc("/api/auth/logout", func(w http.ResponseWriter, _ *http.Request) {
		reply(w, http.StatusInternalServerError, `{"message":"logout broke"}`)
	})
	mux.HandleFunc("/api/auth/me", func(w http.ResponseWriter, _ *http.Request) {
		if !r.isLoggedIn() {
			reply(w, http.StatusUnauthorized, `{}`)
			return
		}
		reply(w, http.StatusOK, `{"email":"ada@shop.ng","fullName":"Ada Obi"}`)
	})
	mux.HandleFunc("/api/items/1", func(w http.ResponseWriter, _ *http.Request) {
		reply(w, http.StatusOK, `{"id":1,"name":"Widget","active":true,"totalQuantity":48,
			"packs":[{"id":10,"type":"CARTON","itemQuantityInPack":24,"costPrice":80,"sellingPrice":100}]}`)
	})
	mux.HandleFunc("/api/items", func(w http.ResponseWriter, req *http.Request) {
		if req.Method == http.MethodPost {
			if err := req.ParseMultipartForm(1 << 20); err != nil {
				reply(w, http.StatusBadRequest, `{"message":"expected multipart"}`)
				return
			}
			reply(w, http.StatusCreated, `{"id":2,"name":"Rice","active":true}`)
			return
		}
		reply(w, http.StatusOK, `[{"id":1,"name":"Widget","active":true}]`)
	})
	mux.HandleFunc("/api/transactions/place-order", func(w http.ResponseWriter, req *http.Request) {
		r.mu.Lock()
		fails := r.placeFails
		r.mu.Unlock()
		if fails {
			reply(w, http.StatusBadRequest, `{"message":"Insufficient stock"}`)
			return
		}
		var body map[string]interface{}
		_ = json.NewDecoder(req.Body).Decode(&body)
		r.mu.Lock()
		r.placed = append(r.placed, body)
		r.mu.Unlock()
		reply(w, http.StatusOK, `{"id":5,"transactionReference":"TX-5","paymentMethod":"CASH",
			"createdOn":"2026-10-14T10:00:00","totalAmount":180,"subtotal":200,"discountAmount":20}`)
	})
	mux.HandleFunc("/api/transactions", func(w http.ResponseWriter, _ *http.Request) {
		reply(w, http.StatusOK, `{"content":[],"page":0,"totalPages":0}`)
	})
	return mux
}

func (r *remote) failPlacement() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.placeFails = true
}

func (r *remote) placedOrders() []map[string]interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]map[string]interface{}(nil), r.placed...)
}

func (r *remote) isLoggedIn() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loggedIn
}

func reply(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

type env struct {
	remote   *remote
	router   *gin.Engine
	provider *auth.Provider
	nav      *session.PendingNavigator
}

func newEnv(t *testing.T) *env {
	t.Helper()
	rem := &remote{}
	srv := httptest.NewServer(rem.handler())
	t.Cleanup(srv.Close)

	sess, err := session.New(srv.URL+"/api", session.Options{})
	require.NoError(t, err)
	httpClient := apiclient.NewHTTPClient(sess)
	bootstrap := csrf.NewBootstrap(httpClient, sess)
	nav := session.NewPendingNavigator()
	client := apiclient.NewClient(httpClient, sess, bootstrap, nav)

	center := notify.NewCenter(0)
	formatter := receipt.NewFormatter(receipt.Business{Name: "TEST STORE"}, "NGN", "Africa/Lagos")
	renderer := receipt.NewPNGRenderer(t.TempDir(), 0, formatter)
	provider := auth.NewProvider(client, sess, bootstrap, nav, "/login")

	h := NewHandler(Deps{
		Provider:      provider,
		Inventory:     service.NewInventoryService(client, center),
		Orders:        service.NewOrderService(client, renderer, center, broker.NopPublisher{}),
		Reports:       service.NewReportService(client, renderer, center, "NGN"),
		Notifications: center,
		Navigator:     nav,
	})
	router := gin.New()
	h.SetupRoutes(router)

	return &env{remote: rem, router: router, provider: provider, nav: nav}
}

func (e *env) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *env) login(t *testing.T) {
	t.Helper()
	w := e.do(http.MethodPost, "/api/v1/session/login", `{"email":"ada@shop.ng","password":"secret"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestReadyWhileLoading(t *testing.T) {
	e := newEnv(t)

	assert.Equal(t, http.StatusServiceUnavailable, e.do(http.MethodGet, "/ready", "").Code)
	e.provider.Initialize(context.Background())
	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, "/ready", "").Code)
	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, "/health", "").Code)
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	e := newEnv(t)
	e.provider.Initialize(context.Background())

	w := e.do(http.MethodGet, "/api/v1/items", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "/login", decode(t, w)["redirect"])
}

func TestLoginFlow(t *testing.T) {
	e := newEnv(t)
	e.provider.Initialize(context.Background())

	w := e.do(http.MethodPost, "/api/v1/session/login", `{"email":"ada@shop.ng","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid email or password", decode(t, w)["error"])

	w = e.do(http.MethodPost, "/api/v1/session/login", `{"email":"not-an-email","password":"x"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	e.login(t)
	w = e.do(http.MethodGet, "/api/v1/session", "")
	body := decode(t, w)
	assert.Equal(t, "authenticated", body["state"])
	assert.Equal(t, "Ada Obi", body["user"].(map[string]interface{})["fullName"])

	w = e.do(http.MethodGet, "/api/v1/items", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogoutIsFailOpen(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	w := e.do(http.MethodPost, "/api/v1/session/logout", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "anonymous", body["state"])
	assert.Nil(t, body["user"])
	assert.Equal(t, "/login", body["redirect"])

	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodGet, "/api/v1/items", "").Code)
}

func TestOrderFlow(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	w := e.do(http.MethodPost, "/api/v1/cart/lines", `{"itemId":1,"packType":"CARTON","quantity":2}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = e.do(http.MethodPost, "/api/v1/cart/lines", `{"itemId":1,"packType":"CARTON","quantity":1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodPut, "/api/v1/cart/draft", `{"customerName":"Chidi","paymentMethod":"CASH","discountPercentage":10}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	totals := decode(t, w)["totals"].(map[string]interface{})
	assert.Equal(t, float64(180), totals["total"])

	w = e.do(http.MethodPost, "/api/v1/cart/submit", "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	result := decode(t, w)
	assert.Contains(t, result["receiptPath"], "receipt-TX-5.png")
	placed := e.remote.placedOrders()
	require.Len(t, placed, 1)
	assert.Equal(t, "Chidi", placed[0]["customerName"])
	assert.Equal(t, float64(10), placed[0]["discountPercentage"])

	cart := decode(t, e.do(http.MethodGet, "/api/v1/cart", ""))
	assert.Empty(t, cart["lines"])

	notes := decode(t, e.do(http.MethodGet, "/api/v1/notifications", ""))["notifications"].([]interface{})
	var messages []string
	for _, n := range notes {
		messages = append(messages, n.(map[string]interface{})["message"].(string))
	}
	assert.Contains(t, messages, "Order placed successfully!")
}

func TestOrderPlacementFailureKeepsCart(t *testing.T) {
	e := newEnv(t)
	e.login(t)
	e.remote.failPlacement()

	e.do(http.MethodPost, "/api/v1/cart/lines", `{"itemId":1,"packType":"CARTON","quantity":1}`)
	e.do(http.MethodPut, "/api/v1/cart/draft", `{"customerName":"Chidi"}`)

	w := e.do(http.MethodPost, "/api/v1/cart/submit", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Insufficient stock", decode(t, w)["error"])

	cart := decode(t, e.do(http.MethodGet, "/api/v1/cart", ""))
	assert.Len(t, cart["lines"], 1)
}

func TestSubmitValidation(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	w := e.do(http.MethodPost, "/api/v1/cart/submit", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, e.remote.placedOrders())
}

func TestExportNothing(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	w := e.do(http.MethodGet, "/api/v1/transactions/export", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "nothing to export", decode(t, w)["error"])
}

func TestCreateItemMultipart(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("itemData", `{"name":"Rice"}`))
	part, err := mw.CreateFormFile("image", "rice.png")
	require.NoError(t, err)
	_, _ = part.Write([]byte("png-bytes"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/items", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "Rice", decode(t, w)["name"])
}

func TestInvalidItemID(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodGet, "/api/v1/items/abc", "").Code)
}

func TestAvailableStockRoute(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	w := e.do(http.MethodGet, "/api/v1/items/1/stock", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, float64(1), body["itemId"])
	assert.Equal(t, float64(48), body["totalQuantity"])
}
