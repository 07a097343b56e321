package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	nethttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/improvement-board/internal/api/http/handlers"
	"github.com/spec-kit/improvement-board/internal/auth"
	"github.com/spec-kit/improvement-board/internal/config"
	"github.com/spec-kit/improvement-board/internal/events"
	"github.com/spec-kit/improvement-board/internal/observability"
	"github.com/spec-kit/improvement-board/internal/repository/memory"
	"github.com/spec-kit/improvement-board/internal/seed"
	"github.com/spec-kit/improvement-board/internal/service"
)

const basePath = "/api/v1"

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	logger := zaptest.NewLogger(t)
	store := memory.New()
	_, err := seed.Run(context.Background(), seed.Repositories{
		Departments: store.Departments(),
		Users:       store.Users(),
		Items:       store.Items(),
	}, bcrypt.MinCost, logger)
	require.NoError(t, err)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)
	tokens := auth.NewTokenManager("access", "refresh", time.Hour, 24*time.Hour)
	authSvc := service.NewAuthService(config.AuthConfig{}, service.AuthDependencies{
		UserRepo: store.Users(),
		Tokens:   tokens,
		Logger:   logger,
	})
	items := service.NewItemService(service.ItemDependencies{
		Items:       store.Items(),
		History:     store.StatusHistory(),
		Departments: store.Departments(),
		Users:       store.Users(),
		Attachments: store.Attachments(),
		Dispatcher:  dispatcher,
		Metrics:     metrics,
		Logger:      logger,
	})
	imports := service.NewImportService(service.ImportDependencies{
		Items:       store.Items(),
		Departments: store.Departments(),
		Dispatcher:  dispatcher,
		Metrics:     metrics,
		Logger:      logger,
	})

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, MiddlewareConfig{Timeout: 5 * time.Second})
	RegisterRoutes(app, RouteConfig{
		BasePath:       basePath,
		Health:         handlers.NewHealthHandler("improvement-board", "test", nil, nil),
		Auth:           handlers.NewAuthHandler(authSvc, handlers.CookieConfig{Name: "refreshToken"}),
		Items:          handlers.NewItemsHandler(items),
		Directory:      handlers.NewDirectoryHandler(service.NewDirectoryService(store.Departments(), store.Users())),
		Dashboard:      handlers.NewDashboardHandler(service.NewDashboardService(store.Items(), store.Departments(), nil)),
		Upload:         handlers.NewUploadHandler(imports, 1024),
		AIToolUsers:    handlers.NewAIToolUsersHandler(service.NewAIToolService(store.AIToolUsers(), logger)),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, store.Users()),
		Metrics:        metrics,
	})
	return app
}

func do(t *testing.T, app *fiber.App, method, path, token string, body any) (*nethttp.Response, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, basePath+path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return send(t, app, req)
}

func send(t *testing.T, app *fiber.App, req *nethttp.Request) (*nethttp.Response, envelope) {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp, env
}

func login(t *testing.T, app *fiber.App, email string) string {
	t.Helper()
	resp, env := do(t, app, nethttp.MethodPost, "/auth/login", "", map[string]string{
		"email":    email,
		"password": seed.DefaultPassword,
	})
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	var data struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.AccessToken)
	return data.AccessToken
}

type itemDetail struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	CreatedBy struct {
		Name string `json:"name"`
	} `json:"createdBy"`
	StatusHistory []struct {
		FromStatus *string `json:"fromStatus"`
		ToStatus   string  `json:"toStatus"`
	} `json:"statusHistory"`
}

func TestItemLifecycleOverHTTP(t *testing.T) {
	app := newTestApp(t)

	hong := login(t, app, "hong@company.com")
	resp, env := do(t, app, nethttp.MethodPost, "/items", hong, map[string]string{"title": "테스트"})
	require.Equal(t, nethttp.StatusCreated, resp.StatusCode)
	assert.True(t, env.Success)
	var created itemDetail
	require.NoError(t, json.Unmarshal(env.Data, &created))

	resp, env = do(t, app, nethttp.MethodGet, "/items/"+created.ID, hong, nil)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	var detail itemDetail
	require.NoError(t, json.Unmarshal(env.Data, &detail))
	assert.Equal(t, "IDEA", detail.Status)
	assert.Equal(t, "홍길동", detail.CreatedBy.Name)
	require.Len(t, detail.StatusHistory, 1)
	assert.Nil(t, detail.StatusHistory[0].FromStatus)

	qa := login(t, app, "qa.manager@company.com")
	resp, env = do(t, app, nethttp.MethodPatch, "/items/"+created.ID+"/status", qa, map[string]string{"status": "DONE"})
	assert.Equal(t, nethttp.StatusForbidden, resp.StatusCode)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	admin := login(t, app, "admin@company.com")
	resp, _ = do(t, app, nethttp.MethodPatch, "/items/"+created.ID+"/status", admin, map[string]string{"status": "DONE", "note": "완료"})
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)

	_, env = do(t, app, nethttp.MethodGet, "/items/"+created.ID, hong, nil)
	require.NoError(t, json.Unmarshal(env.Data, &detail))
	assert.Equal(t, "DONE", detail.Status)
	require.Len(t, detail.StatusHistory, 2)
	require.NotNil(t, detail.StatusHistory[0].FromStatus)
	assert.Equal(t, "IDEA", *detail.StatusHistory[0].FromStatus)
	assert.Equal(t, "DONE", detail.StatusHistory[0].ToStatus)

	resp, _ = do(t, app, nethttp.MethodDelete, "/items/"+created.ID, hong, nil)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	resp, env = do(t, app, nethttp.MethodGet, "/items/"+created.ID, hong, nil)
	assert.Equal(t, nethttp.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestRouteGuards(t *testing.T) {
	app := newTestApp(t)

	resp, env := do(t, app, nethttp.MethodGet, "/items", "", nil)
	assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)

	resp, env = do(t, app, nethttp.MethodGet, "/items", "not-a-token", nil)
	assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_TOKEN", env.Error.Code)

	exec := login(t, app, "exec@company.com")
	resp, _ = do(t, app, nethttp.MethodGet, "/dashboard/summary", exec, nil)
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
	resp, env = do(t, app, nethttp.MethodPost, "/items", exec, map[string]string{"title": "x"})
	assert.Equal(t, nethttp.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	hong := login(t, app, "hong@company.com")
	resp, env = do(t, app, nethttp.MethodPost, "/upload/preview", hong, nil)
	assert.Equal(t, nethttp.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)
}

func TestValidationErrorsListEveryField(t *testing.T) {
	app := newTestApp(t)
	hong := login(t, app, "hong@company.com")

	resp, env := do(t, app, nethttp.MethodPost, "/items", hong, map[string]any{
		"title":              "",
		"assignedTo":         "nope",
		"relatedDepartments": []string{"bad"},
	})
	require.Equal(t, nethttp.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	var details []struct {
		Field string `json:"field"`
	}
	require.NoError(t, json.Unmarshal(env.Error.Details, &details))
	assert.Len(t, details, 3)

	resp, env = do(t, app, nethttp.MethodGet, "/items?limit=500&staleOnly=maybe", hong, nil)
	require.Equal(t, nethttp.StatusUnprocessableEntity, resp.StatusCode)
	require.NoError(t, json.Unmarshal(env.Error.Details, &details))
	assert.Len(t, details, 2)
}

func TestListPagination(t *testing.T) {
	app := newTestApp(t)
	hong := login(t, app, "hong@company.com")

	resp, env := do(t, app, nethttp.MethodGet, "/items?page=2&limit=4", hong, nil)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	var page struct {
		Items      []itemDetail `json:"items"`
		Pagination struct {
			Page       int `json:"page"`
			Limit      int `json:"limit"`
			Total      int `json:"total"`
			TotalPages int `json:"totalPages"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 2, page.Pagination.Page)
	assert.Equal(t, 6, page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.TotalPages)
}

func TestRefreshUsesCookie(t *testing.T) {
	app := newTestApp(t)

	raw, err := json.Marshal(map[string]string{"email": "admin@company.com", "password": seed.DefaultPassword})
	require.NoError(t, err)
	req := httptest.NewRequest(nethttp.MethodPost, basePath+"/auth/login", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := send(t, app, req)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)

	var cookie *nethttp.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "refreshToken" {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	req = httptest.NewRequest(nethttp.MethodPost, basePath+"/auth/refresh", nil)
	req.AddCookie(&nethttp.Cookie{Name: "refreshToken", Value: cookie.Value})
	resp, env := send(t, app, req)
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.True(t, env.Success)

	req = httptest.NewRequest(nethttp.MethodPost, basePath+"/auth/refresh", nil)
	resp, env = send(t, app, req)
	assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "NO_REFRESH_TOKEN", env.Error.Code)

	resp, env = do(t, app, nethttp.MethodPost, "/auth/login", "", map[string]string{"email": "admin@company.com", "password": "nope"})
	assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_CREDENTIALS", env.Error.Code)
}

func TestUploadRejectsFiles(t *testing.T) {
	app := newTestApp(t)
	admin := login(t, app, "admin@company.com")

	upload := func(name string, content []byte) (*nethttp.Response, envelope) {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		part, err := w.CreateFormFile("file", name)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
		require.NoError(t, w.Close())

		req := httptest.NewRequest(nethttp.MethodPost, basePath+"/upload/preview", &buf)
		req.Header.Set("Content-Type", w.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+admin)
		return send(t, app, req)
	}

	resp, env := upload("notes.csv", []byte("a,b"))
	assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "UNSUPPORTED_FILE_TYPE", env.Error.Code)

	resp, env = upload("big.xlsx", bytes.Repeat([]byte("x"), 2048))
	assert.Equal(t, nethttp.StatusRequestEntityTooLarge, resp.StatusCode)
	assert.Equal(t, "FILE_TOO_LARGE", env.Error.Code)

	cfb := append([]byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}, make([]byte, 100)...)
	resp, env = upload("locked.xlsx", cfb)
	assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "ENCRYPTED_FILE", env.Error.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	app := newTestApp(t)

	resp, env := send(t, app, httptest.NewRequest(nethttp.MethodGet, "/health/ready", nil))
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.True(t, env.Success)

	resp, err := app.Test(httptest.NewRequest(nethttp.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "improvement_board_http_requests_total")
}
