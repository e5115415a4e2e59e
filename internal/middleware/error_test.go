package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
)

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(requestid.New(), RequestLogging(), ErrorHandler())
	r.GET("/app", func(c *gin.Context) {
		_ = c.Error(apperrors.Wrap(apperrors.ErrBudgetNotFound, errors.New("record not found")))
	})
	r.GET("/boom", func(c *gin.Context) {
		_ = c.Error(errors.New("connection reset"))
	})

	t.Run("app error keeps its code", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/app", http.NoBody))
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
		assertErrorCode(t, rec, "BUDGET_NOT_FOUND")
		if rec.Header().Get("X-Request-ID") == "" {
			t.Error("expected X-Request-ID header")
		}
	})

	t.Run("unexpected error is hidden", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", http.NoBody))
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d, want 500", rec.Code)
		}
		assertErrorCode(t, rec, "INTERNAL_ERROR")
	})
}
