package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/geocoder89/eventreg/internal/domain/registration"
	"github.com/geocoder89/eventreg/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

type bindErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details struct {
		JSON  string `json:"json"`
		Field string `json:"field"`
	} `json:"details"`
}

func bindRouter() *gin.Engine {
	r := gin.New()
	r.POST("/register", func(ctx *gin.Context) {
		var req registration.CreateRegistrationRequest
		if !handlers.BindJSON(ctx, &req) {
			return
		}
		ctx.JSON(http.StatusOK, req)
	})
	return r
}

func TestBindJSON_TypeMismatchNamesJSONField(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBufferString(`{"name":"A","email":42}`))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	bindRouter().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusBadRequest, w.Body.String())
	}

	var resp bindErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal error response: %v body=%s", err, w.Body.String())
	}

	if resp.Code != "invalid_json" || resp.Error != "request body must be valid JSON" {
		t.Fatalf("unexpected error: %+v", resp)
	}
	if resp.Details.JSON != "invalid_json_type" || resp.Details.Field != "email" {
		t.Fatalf("unexpected details: %+v", resp.Details)
	}
}

func TestBindJSON_SyntaxError(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBufferString(`{"name":}`))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	bindRouter().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", w.Code)
	}

	var resp bindErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Details.JSON != "invalid_json_syntax" {
		t.Fatalf("unexpected details: %+v", resp.Details)
	}
}

func TestBindJSON_EmptyBodyIsEmptyObject(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/register", nil)

	w := httptest.NewRecorder()
	bindRouter().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200, body=%s", w.Code, w.Body.String())
	}
}

func TestBindJSON_OversizeBody(t *testing.T) {
	r := gin.New()
	r.POST("/register", func(ctx *gin.Context) {
		ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, 16)
		var req registration.CreateRegistrationRequest
		if !handlers.BindJSON(ctx, &req) {
			return
		}
		ctx.Status(http.StatusOK)
	})

	body := `{"name":"` + strings.Repeat("a", 64) + `","email":"a@x.com"}`
	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("got status %d, want 413", w.Code)
	}
}
