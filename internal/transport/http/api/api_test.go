package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"todo-server-go/internal/domain/address"
	"todo-server-go/internal/domain/auth"
	"todo-server-go/internal/domain/todo"
	"todo-server-go/internal/domain/user"
	"todo-server-go/internal/platform/config"
	"todo-server-go/internal/platform/logging"
	"todo-server-go/internal/platform/storage"
	httptransport "todo-server-go/internal/transport/http"
)

const testSecret = "KlgH6AzYDeZeGwD288to7942vTHT8wp7"

type testServer struct {
	engine *gin.Engine
	users  *user.Service
	auth   *auth.Authenticator
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:api-test-%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&storage.User{}, &storage.Todo{}, &storage.Address{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	logger, err := logging.New(logging.Config{Level: "error"})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	t.Cleanup(func() { logger.Close() })

	userRepo := storage.NewUserRepository(db)
	todoRepo := storage.NewTodoRepository(db)
	addressRepo := storage.NewAddressRepository(db)

	hasher := auth.NewPasswordHasher(bcrypt.MinCost)
	codec, err := auth.NewTokenCodec(testSecret, 30*time.Minute)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	authenticator, err := auth.NewAuthenticator(auth.Options{
		Credentials: userRepo,
		Hasher:      hasher,
		Codec:       codec,
		TokenTTL:    30 * time.Minute,
	})
	if err != nil {
		t.Fatalf("new authenticator: %v", err)
	}
	resolver := auth.NewBearerResolver(codec)

	userService := user.NewService(userRepo, hasher)
	todoService := todo.NewService(todoRepo)
	addressService := address.NewService(addressRepo, userRepo)

	engine := gin.New()
	group := engine.Group("/api")

	authSvc, err := NewAuthService(authenticator, userService, logger)
	if err != nil {
		t.Fatalf("new auth service: %v", err)
	}
	todoSvc, err := NewTodoService(todoService, resolver, logger)
	if err != nil {
		t.Fatalf("new todo service: %v", err)
	}
	userSvc, err := NewUserService(userService, resolver, logger)
	if err != nil {
		t.Fatalf("new user service: %v", err)
	}
	addressSvc, err := NewAddressService(addressService, resolver, logger)
	if err != nil {
		t.Fatalf("new address service: %v", err)
	}
	companySvc, err := NewCompanyService(config.CompanyConfig{
		Name:          "Example company",
		Employees:     179,
		InternalToken: "internal-secret",
	}, logger)
	if err != nil {
		t.Fatalf("new company service: %v", err)
	}
	systemSvc, err := NewSystemService(resolver, userRepo, todoRepo, logger)
	if err != nil {
		t.Fatalf("new system service: %v", err)
	}

	ctx := context.Background()
	for _, register := range []func(context.Context, *gin.RouterGroup) error{
		authSvc.Register,
		todoSvc.Register,
		userSvc.Register,
		addressSvc.Register,
		companySvc.Register,
		systemSvc.Register,
	} {
		if err := register(ctx, group); err != nil {
			t.Fatalf("register routes: %v", err)
		}
	}

	return &testServer{engine: engine, users: userService, auth: authenticator}
}

func (s *testServer) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	contentType := ""
	switch v := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case url.Values:
		reader = bytes.NewReader([]byte(v.Encode()))
		contentType = "application/x-www-form-urlencoded"
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
		contentType = "application/json"
	}

	req := httptest.NewRequest(method, path, reader)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) createUser(t *testing.T, username, password string) {
	t.Helper()
	_, err := s.users.Create(context.Background(), user.CreateInput{
		Username:  username,
		Email:     username + "@example.com",
		FirstName: "Test",
		LastName:  "User",
		Password:  password,
	})
	if err != nil {
		t.Fatalf("create user %q: %v", username, err)
	}
}

func (s *testServer) login(t *testing.T, username, password string) string {
	t.Helper()
	token, err := s.auth.Login(context.Background(), username, password)
	if err != nil {
		t.Fatalf("login %q: %v", username, err)
	}
	return token
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) httptransport.APIResponse {
	t.Helper()
	var envelope httptransport.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return envelope
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func TestTokenEndpoint(t *testing.T) {
	srv := newTestServer(t)
	srv.createUser(t, "alice", "wonderland")

	form := url.Values{}
	form.Set("username", "alice")
	form.Set("password", "wonderland")
	rec := srv.do(t, http.MethodPost, "/api/auth/token", form, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
	envelope := decodeEnvelope(t, rec)
	data, ok := envelope.Data.(map[string]any)
	if !ok {
		t.Fatalf("data is %T, want object", envelope.Data)
	}
	token, _ := data["token"].(string)
	if token == "" {
		t.Fatal("expected a token in the response")
	}

	form.Set("password", "wrong")
	rec = srv.do(t, http.MethodPost, "/api/auth/token", form, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad-password status = %d, want 401", rec.Code)
	}
	if got := rec.Header().Get("WWW-Authenticate"); got != "Bearer" {
		t.Fatalf("WWW-Authenticate = %q, want Bearer", got)
	}

	// Unknown users get the exact same answer as bad passwords.
	form.Set("username", "nobody")
	rec2 := srv.do(t, http.MethodPost, "/api/auth/token", form, nil)
	if rec2.Code != rec.Code {
		t.Fatalf("unknown-user status = %d, bad-password status = %d", rec2.Code, rec.Code)
	}
	if rec2.Body.String() != rec.Body.String() {
		t.Fatal("unknown-user and bad-password responses differ")
	}
}

func TestCreateUserEndpoint(t *testing.T) {
	srv := newTestServer(t)

	payload := map[string]any{
		"username":   "carol",
		"email":      "carol@example.com",
		"first_name": "Carol",
		"last_name":  "King",
		"password":   "tapestry",
	}
	rec := srv.do(t, http.MethodPost, "/api/auth/create_user", payload, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create_user status = %d, want 201 (%s)", rec.Code, rec.Body.String())
	}

	// The flat alias still works.
	payload["username"] = "dave"
	payload["email"] = "dave@example.com"
	rec = srv.do(t, http.MethodPost, "/api/create_user", payload, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("alias create_user status = %d, want 201", rec.Code)
	}

	// New accounts can log in right away.
	form := url.Values{}
	form.Set("username", "carol")
	form.Set("password", "tapestry")
	rec = srv.do(t, http.MethodPost, "/api/auth/token", form, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("fresh account login status = %d, want 200", rec.Code)
	}
}

func TestTodoCRUDFlow(t *testing.T) {
	srv := newTestServer(t)
	srv.createUser(t, "alice", "wonderland")
	srv.createUser(t, "bob", "builder")
	aliceToken := srv.login(t, "alice", "wonderland")
	bobToken := srv.login(t, "bob", "builder")

	rec := srv.do(t, http.MethodPost, "/api/todos", map[string]any{
		"title":       "buy milk",
		"description": "two liters",
		"priority":    2,
	}, bearer(aliceToken))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201 (%s)", rec.Code, rec.Body.String())
	}
	envelope := decodeEnvelope(t, rec)
	data := envelope.Data.(map[string]any)
	id := int(data["id"].(float64))
	if id == 0 {
		t.Fatal("expected a todo id")
	}

	rec = srv.do(t, http.MethodGet, fmt.Sprintf("/api/todos/%d", id), nil, bearer(aliceToken))
	if rec.Code != http.StatusOK {
		t.Fatalf("owner get status = %d, want 200", rec.Code)
	}

	// Someone else's token sees a 404, not a 403.
	rec = srv.do(t, http.MethodGet, fmt.Sprintf("/api/todos/%d", id), nil, bearer(bobToken))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("foreign get status = %d, want 404", rec.Code)
	}

	rec = srv.do(t, http.MethodPut, fmt.Sprintf("/api/todos/%d", id), map[string]any{
		"title":     "buy milk",
		"priority":  3,
		"completed": true,
	}, bearer(aliceToken))
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, want 200 (%s)", rec.Code, rec.Body.String())
	}

	rec = srv.do(t, http.MethodGet, "/api/todos/user", nil, bearer(aliceToken))
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", rec.Code)
	}
	listEnvelope := decodeEnvelope(t, rec)
	items, ok := listEnvelope.Data.([]any)
	if !ok || len(items) != 1 {
		t.Fatalf("expected one todo for alice, got %v", listEnvelope.Data)
	}

	rec = srv.do(t, http.MethodDelete, fmt.Sprintf("/api/todos/%d", id), nil, bearer(bobToken))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("foreign delete status = %d, want 404", rec.Code)
	}
	rec = srv.do(t, http.MethodDelete, fmt.Sprintf("/api/todos/%d", id), nil, bearer(aliceToken))
	if rec.Code != http.StatusOK {
		t.Fatalf("owner delete status = %d, want 200", rec.Code)
	}
}

func TestTodoRoutesRequireBearer(t *testing.T) {
	srv := newTestServer(t)

	for _, tc := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/todos/user"},
		{http.MethodGet, "/api/todos/1"},
		{http.MethodPost, "/api/todos"},
		{http.MethodPut, "/api/todos/1"},
		{http.MethodDelete, "/api/todos/1"},
	} {
		rec := srv.do(t, tc.method, tc.path, nil, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s status = %d, want 401", tc.method, tc.path, rec.Code)
		}
		if got := rec.Header().Get("WWW-Authenticate"); got != "Bearer" {
			t.Errorf("%s %s WWW-Authenticate = %q, want Bearer", tc.method, tc.path, got)
		}
	}

	// The public listing stays open.
	rec := srv.do(t, http.MethodGet, "/api/todos", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("public list status = %d, want 200", rec.Code)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	srv := newTestServer(t)
	srv.createUser(t, "alice", "wonderland")

	codec, err := auth.NewTokenCodec(testSecret, 30*time.Minute)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	expired, err := codec.Issue("alice", 1, -time.Minute)
	if err != nil {
		t.Fatalf("issue expired token: %v", err)
	}

	rec := srv.do(t, http.MethodGet, "/api/todos/user", nil, bearer(expired))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expired token status = %d, want 401", rec.Code)
	}
}

func TestPasswordChangeAndDeleteAccount(t *testing.T) {
	srv := newTestServer(t)
	srv.createUser(t, "alice", "wonderland")
	token := srv.login(t, "alice", "wonderland")

	rec := srv.do(t, http.MethodPut, "/api/users/user/password", map[string]any{
		"username":     "alice",
		"password":     "wrong",
		"new_password": "rabbit-hole",
	}, bearer(token))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("wrong-password change status = %d, want 400", rec.Code)
	}

	rec = srv.do(t, http.MethodPut, "/api/users/user/password", map[string]any{
		"username":     "alice",
		"password":     "wonderland",
		"new_password": "rabbit-hole",
	}, bearer(token))
	if rec.Code != http.StatusOK {
		t.Fatalf("password change status = %d, want 200 (%s)", rec.Code, rec.Body.String())
	}

	if _, err := srv.auth.Login(context.Background(), "alice", "wonderland"); err == nil {
		t.Fatal("old password still accepted after change")
	}
	newToken := srv.login(t, "alice", "rabbit-hole")

	rec = srv.do(t, http.MethodDelete, "/api/users/user/delete_account", nil, bearer(newToken))
	if rec.Code != http.StatusOK {
		t.Fatalf("delete account status = %d, want 200", rec.Code)
	}
	if _, err := srv.auth.Login(context.Background(), "alice", "rabbit-hole"); err == nil {
		t.Fatal("deleted account can still log in")
	}
}

func TestUserLookupEndpoints(t *testing.T) {
	srv := newTestServer(t)
	srv.createUser(t, "alice", "wonderland")

	rec := srv.do(t, http.MethodGet, "/api/users", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("user list status = %d, want 200", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "hashed_password") ||
		strings.Contains(rec.Body.String(), "$2a$") {
		t.Fatal("user listing leaks password hashes")
	}

	rec = srv.do(t, http.MethodGet, "/api/users/user/1", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("user get status = %d, want 200", rec.Code)
	}
	rec = srv.do(t, http.MethodGet, "/api/users/user/99", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing user status = %d, want 404", rec.Code)
	}
}

func TestAddressEndpoint(t *testing.T) {
	srv := newTestServer(t)
	srv.createUser(t, "alice", "wonderland")
	token := srv.login(t, "alice", "wonderland")

	rec := srv.do(t, http.MethodPost, "/api/address", map[string]any{
		"address1":   "1 Main Street",
		"city":       "Springfield",
		"country":    "US",
		"postalcode": "12345",
	}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous address status = %d, want 401", rec.Code)
	}

	rec = srv.do(t, http.MethodPost, "/api/address", map[string]any{
		"address1":   "1 Main Street",
		"city":       "Springfield",
		"country":    "US",
		"postalcode": "12345",
	}, bearer(token))
	if rec.Code != http.StatusCreated {
		t.Fatalf("address status = %d, want 201 (%s)", rec.Code, rec.Body.String())
	}
}

func TestCompanyEndpointsRequireInternalToken(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/api/companyapis", nil, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing header status = %d, want 400", rec.Code)
	}

	headers := map[string]string{"X-Internal-Token": "internal-secret"}
	rec = srv.do(t, http.MethodGet, "/api/companyapis", nil, headers)
	if rec.Code != http.StatusOK {
		t.Fatalf("company name status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Example company") {
		t.Fatalf("company name missing from %s", rec.Body.String())
	}

	rec = srv.do(t, http.MethodGet, "/api/companyapis/employees", nil, headers)
	if rec.Code != http.StatusOK {
		t.Fatalf("employees status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "179") {
		t.Fatalf("employee count missing from %s", rec.Body.String())
	}
}

func TestSystemStatus(t *testing.T) {
	srv := newTestServer(t)
	srv.createUser(t, "alice", "wonderland")
	token := srv.login(t, "alice", "wonderland")

	rec := srv.do(t, http.MethodGet, "/api/system/status", nil, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous status = %d, want 401", rec.Code)
	}

	rec = srv.do(t, http.MethodGet, "/api/system/status", nil, bearer(token))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	envelope := decodeEnvelope(t, rec)
	data, ok := envelope.Data.(map[string]any)
	if !ok {
		t.Fatalf("data is %T, want object", envelope.Data)
	}
	if _, ok := data["uptime"]; !ok {
		t.Fatal("status payload missing uptime")
	}
	if got, _ := data["total_users"].(float64); got != 1 {
		t.Fatalf("total_users = %v, want 1", data["total_users"])
	}
}
