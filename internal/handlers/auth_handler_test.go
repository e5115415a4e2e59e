package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/logger"
	"fintrack/internal/middleware"
	"fintrack/internal/models"
	"fintrack/internal/services"
	"fintrack/internal/validator"
)

const testUserID = "0190a8c4-3f7e-7c3a-9a1b-2c3d4e5f6a7b"

// --- mock services ---

type mockUserService struct {
	createUserFn            func(email, password, fullName string) (*models.User, error)
	getUserByEmailFn        func(email string) (*models.User, error)
	getUserByIDFn           func(id string) (*models.User, error)
	verifyPasswordFn        func(user *models.User, password string) bool
	attemptLoginFn          func(email, password string) (*models.User, error)
	storeRefreshTokenHashFn func(userID, tokenHash string) error
	getRefreshTokenHashFn   func(userID string) (string, error)
	updateProfileFn         func(userID, fullName string) (*models.User, error)
	changePasswordFn        func(userID, currentPassword, newPassword string) error
}

func (m *mockUserService) CreateUser(email, password, fullName string) (*models.User, error) {
	if m.createUserFn != nil {
		return m.createUserFn(email, password, fullName)
	}
	return &models.User{Base: models.Base{ID: testUserID}, Email: email}, nil
}

func (m *mockUserService) GetUserByEmail(email string) (*models.User, error) {
	if m.getUserByEmailFn != nil {
		return m.getUserByEmailFn(email)
	}
	return &models.User{}, nil
}

func (m *mockUserService) GetUserByID(id string) (*models.User, error) {
	if m.getUserByIDFn != nil {
		return m.getUserByIDFn(id)
	}
	return &models.User{Base: models.Base{ID: id}}, nil
}

func (m *mockUserService) VerifyPassword(user *models.User, password string) bool {
	if m.verifyPasswordFn != nil {
		return m.verifyPasswordFn(user, password)
	}
	return true
}

func (m *mockUserService) AttemptLogin(email, password string) (*models.User, error) {
	if m.attemptLoginFn != nil {
		return m.attemptLoginFn(email, password)
	}
	return &models.User{Base: models.Base{ID: testUserID}, Email: email}, nil
}

func (m *mockUserService) StoreRefreshTokenHash(userID, tokenHash string) error {
	if m.storeRefreshTokenHashFn != nil {
		return m.storeRefreshTokenHashFn(userID, tokenHash)
	}
	return nil
}

func (m *mockUserService) GetRefreshTokenHash(userID string) (string, error) {
	if m.getRefreshTokenHashFn != nil {
		return m.getRefreshTokenHashFn(userID)
	}
	return "", nil
}

func (m *mockUserService) UpdateProfile(userID, fullName string) (*models.User, error) {
	if m.updateProfileFn != nil {
		return m.updateProfileFn(userID, fullName)
	}
	return &models.User{Base: models.Base{ID: userID}, FullName: fullName}, nil
}

func (m *mockUserService) ChangePassword(userID, currentPassword, newPassword string) error {
	if m.changePasswordFn != nil {
		return m.changePasswordFn(userID, currentPassword, newPassword)
	}
	return nil
}

var _ services.UserServicer = (*mockUserService)(nil)

type auditEntry struct {
	userID, action, resourceType, resourceID string
}

type mockAuditService struct {
	entries []auditEntry
}

func (m *mockAuditService) Log(userID, action, resourceType, resourceID, _ string, _ map[string]interface{}) {
	m.entries = append(m.entries, auditEntry{userID, action, resourceType, resourceID})
}

func (m *mockAuditService) assertLogged(t *testing.T, action string) {
	t.Helper()
	for _, e := range m.entries {
		if e.action == action {
			return
		}
	}
	t.Errorf("expected audit action %q, got %v", action, m.entries)
}

// --- test helpers ---

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

func newTestTokenManager() *middleware.TokenManager {
	return middleware.NewTokenManager("handler-test-secret", time.Minute, time.Hour)
}

func setupAuthRouter(handler *AuthHandler) *gin.Engine {
	r := gin.New()
	r.POST("/auth/register", handler.Register)
	r.POST("/auth/login", handler.Login)
	r.POST("/auth/refresh", handler.Refresh)
	auth := r.Group("", injectUserID(testUserID))
	auth.POST("/auth/logout", handler.Logout)
	auth.GET("/profile", handler.GetProfile)
	auth.PUT("/profile", handler.UpdateProfile)
	auth.PUT("/profile/password", handler.ChangePassword)
	return r
}

func injectUserID(uid string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", uid)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}

// --- tests ---

func TestAuthHandler_Register(t *testing.T) {
	t.Run("returns 201 with tokens on success", func(t *testing.T) {
		var storedFor string
		userSvc := &mockUserService{
			createUserFn: func(email, _, fullName string) (*models.User, error) {
				return &models.User{Base: models.Base{ID: testUserID}, Email: email, FullName: fullName}, nil
			},
			storeRefreshTokenHashFn: func(userID, tokenHash string) error {
				storedFor = userID
				if len(tokenHash) != 64 {
					t.Errorf("expected a sha256 hex digest, got %q", tokenHash)
				}
				return nil
			},
		}
		audit := &mockAuditService{}
		r := setupAuthRouter(NewAuthHandler(userSvc, newTestTokenManager(), audit))

		rec := doRequest(r, "POST", "/auth/register",
			`{"email":"ana@example.com","password":"password123","full_name":"Ana Souza"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["token"] == "" || result["refresh_token"] == "" {
			t.Errorf("expected both tokens, got %v", result)
		}
		user := result["user"].(map[string]interface{})
		if user["full_name"] != "Ana Souza" {
			t.Errorf("expected full_name Ana Souza, got %v", user["full_name"])
		}
		if storedFor != testUserID {
			t.Errorf("expected refresh hash stored for %s, got %q", testUserID, storedFor)
		}
		audit.assertLogged(t, "REGISTER")
	})

	t.Run("returns 400 on invalid email", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockUserService{}, newTestTokenManager(), &mockAuditService{}))
		rec := doRequest(r, "POST", "/auth/register", `{"email":"not-an-email","password":"password123"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 400 on short password", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockUserService{}, newTestTokenManager(), &mockAuditService{}))
		rec := doRequest(r, "POST", "/auth/register", `{"email":"a@example.com","password":"short"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 409 on duplicate email", func(t *testing.T) {
		userSvc := &mockUserService{
			createUserFn: func(_, _, _ string) (*models.User, error) {
				return nil, apperrors.ErrDuplicateEmail
			},
		}
		r := setupAuthRouter(NewAuthHandler(userSvc, newTestTokenManager(), &mockAuditService{}))
		rec := doRequest(r, "POST", "/auth/register", `{"email":"a@example.com","password":"password123"}`)
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "DUPLICATE_EMAIL")
	})
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("returns 200 with tokens", func(t *testing.T) {
		audit := &mockAuditService{}
		r := setupAuthRouter(NewAuthHandler(&mockUserService{}, newTestTokenManager(), audit))
		rec := doRequest(r, "POST", "/auth/login", `{"email":"a@example.com","password":"password123"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["token"] == nil {
			t.Error("expected access token")
		}
		audit.assertLogged(t, "LOGIN")
	})

	t.Run("passes service errors through", func(t *testing.T) {
		tests := []struct {
			err    *apperrors.AppError
			status int
		}{
			{apperrors.ErrInvalidCredentials, http.StatusUnauthorized},
			{apperrors.ErrAccountLocked, http.StatusLocked},
		}
		for _, tt := range tests {
			t.Run(tt.err.Code, func(t *testing.T) {
				userSvc := &mockUserService{
					attemptLoginFn: func(_, _ string) (*models.User, error) { return nil, tt.err },
				}
				r := setupAuthRouter(NewAuthHandler(userSvc, newTestTokenManager(), &mockAuditService{}))
				rec := doRequest(r, "POST", "/auth/login", `{"email":"a@example.com","password":"wrong"}`)
				if rec.Code != tt.status {
					t.Fatalf("expected %d, got %d", tt.status, rec.Code)
				}
				assertErrorCode(t, parseJSON(t, rec), tt.err.Code)
			})
		}
	})
}

func TestAuthHandler_Refresh(t *testing.T) {
	tm := newTestTokenManager()
	user := &models.User{Base: models.Base{ID: testUserID}, Email: "a@example.com"}
	refresh, err := tm.GenerateRefreshToken(user)
	if err != nil {
		t.Fatalf("failed to sign refresh token: %v", err)
	}

	t.Run("rotates a valid refresh token", func(t *testing.T) {
		var rotated string
		userSvc := &mockUserService{
			getRefreshTokenHashFn: func(string) (string, error) { return middleware.HashToken(refresh), nil },
			storeRefreshTokenHashFn: func(_, hash string) error {
				rotated = hash
				return nil
			},
		}
		r := setupAuthRouter(NewAuthHandler(userSvc, tm, &mockAuditService{}))
		rec := doRequest(r, "POST", "/auth/refresh", fmt.Sprintf(`{"refresh_token":%q}`, refresh))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if rotated == "" || rotated == middleware.HashToken(refresh) {
			t.Error("expected a new refresh token hash to be stored")
		}
	})

	t.Run("rejects a revoked refresh token", func(t *testing.T) {
		userSvc := &mockUserService{
			getRefreshTokenHashFn: func(string) (string, error) { return middleware.HashToken("another"), nil },
		}
		r := setupAuthRouter(NewAuthHandler(userSvc, tm, &mockAuditService{}))
		rec := doRequest(r, "POST", "/auth/refresh", fmt.Sprintf(`{"refresh_token":%q}`, refresh))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_TOKEN")
	})

	t.Run("rejects an access token", func(t *testing.T) {
		access, _ := tm.GenerateAccessToken(user)
		r := setupAuthRouter(NewAuthHandler(&mockUserService{}, tm, &mockAuditService{}))
		rec := doRequest(r, "POST", "/auth/refresh", fmt.Sprintf(`{"refresh_token":%q}`, access))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}

func TestAuthHandler_Profile(t *testing.T) {
	t.Run("returns the profile", func(t *testing.T) {
		userSvc := &mockUserService{
			getUserByIDFn: func(id string) (*models.User, error) {
				return &models.User{Base: models.Base{ID: id}, Email: "a@example.com", FullName: "Ana"}, nil
			},
		}
		r := setupAuthRouter(NewAuthHandler(userSvc, newTestTokenManager(), &mockAuditService{}))
		rec := doRequest(r, "GET", "/profile", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		user := parseJSON(t, rec)["user"].(map[string]interface{})
		if user["id"] != testUserID {
			t.Errorf("expected id %s, got %v", testUserID, user["id"])
		}
	})

	t.Run("updates the name", func(t *testing.T) {
		audit := &mockAuditService{}
		r := setupAuthRouter(NewAuthHandler(&mockUserService{}, newTestTokenManager(), audit))
		rec := doRequest(r, "PUT", "/profile", `{"full_name":"Ana Maria"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		user := parseJSON(t, rec)["user"].(map[string]interface{})
		if user["full_name"] != "Ana Maria" {
			t.Errorf("expected Ana Maria, got %v", user["full_name"])
		}
		audit.assertLogged(t, "UPDATE_PROFILE")
	})

	t.Run("wrong current password is a 400", func(t *testing.T) {
		userSvc := &mockUserService{
			changePasswordFn: func(_, _, _ string) error { return apperrors.ErrWrongPassword },
		}
		r := setupAuthRouter(NewAuthHandler(userSvc, newTestTokenManager(), &mockAuditService{}))
		rec := doRequest(r, "PUT", "/profile/password", `{"current_password":"nope","new_password":"password456"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "WRONG_PASSWORD")
	})

	t.Run("missing user in context is a 401", func(t *testing.T) {
		h := NewAuthHandler(&mockUserService{}, newTestTokenManager(), &mockAuditService{})
		r := gin.New()
		r.GET("/profile", h.GetProfile)
		rec := doRequest(r, "GET", "/profile", "")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	t.Run("clears the refresh token hash", func(t *testing.T) {
		stored := "previous"
		var storedFor string
		userSvc := &mockUserService{
			storeRefreshTokenHashFn: func(userID, tokenHash string) error {
				storedFor, stored = userID, tokenHash
				return nil
			},
		}
		audit := &mockAuditService{}
		r := setupAuthRouter(NewAuthHandler(userSvc, newTestTokenManager(), audit))
		rec := doRequest(r, "POST", "/auth/logout", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if storedFor != testUserID || stored != "" {
			t.Errorf("expected empty hash for %s, got %q for %s", testUserID, stored, storedFor)
		}
		audit.assertLogged(t, "LOGOUT")
	})

	t.Run("refresh fails after logout", func(t *testing.T) {
		tm := newTestTokenManager()
		refresh, err := tm.GenerateRefreshToken(&models.User{Base: models.Base{ID: testUserID}, Email: "a@example.com"})
		if err != nil {
			t.Fatalf("generate tokens: %v", err)
		}
		hash := middleware.HashToken(refresh)
		userSvc := &mockUserService{
			getRefreshTokenHashFn: func(string) (string, error) { return hash, nil },
			storeRefreshTokenHashFn: func(_, tokenHash string) error {
				hash = tokenHash
				return nil
			},
		}
		r := setupAuthRouter(NewAuthHandler(userSvc, tm, &mockAuditService{}))

		if rec := doRequest(r, "POST", "/auth/logout", ""); rec.Code != http.StatusOK {
			t.Fatalf("logout: expected 200, got %d", rec.Code)
		}
		rec := doRequest(r, "POST", "/auth/refresh", fmt.Sprintf(`{"refresh_token":%q}`, refresh))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d: %s", rec.Code, rec.Body.String())
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_TOKEN")
	})

	t.Run("unknown user is a 404", func(t *testing.T) {
		userSvc := &mockUserService{
			storeRefreshTokenHashFn: func(string, string) error { return apperrors.ErrUserNotFound },
		}
		r := setupAuthRouter(NewAuthHandler(userSvc, newTestTokenManager(), &mockAuditService{}))
		rec := doRequest(r, "POST", "/auth/logout", "")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}
