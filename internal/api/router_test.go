package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	iauth "github.com/hindusthan/agriserve/internal/auth"
	"github.com/hindusthan/agriserve/internal/auth/google"
	"github.com/hindusthan/agriserve/internal/database/testutil"
	"github.com/hindusthan/agriserve/internal/services"
)

type stubVerifier struct {
	identity *google.Identity
	err      error
}

func (s *stubVerifier) Verify(ctx context.Context, rawIDToken string) (*google.Identity, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.identity, nil
}

func newTestRouter(t *testing.T, verifier services.GoogleVerifier) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t)

	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{Secret: "router-secret", Issuer: "agriserve"})
	require.NoError(t, err)

	userSvc, err := services.NewUserService(db)
	require.NoError(t, err)
	otpSvc, err := services.NewOTPService(db, nil)
	require.NoError(t, err)
	customerSvc, err := services.NewCustomerService(db)
	require.NoError(t, err)
	authSvc, err := services.NewAuthService(userSvc, otpSvc, jwtSvc, verifier, services.WithExposeOTP(true))
	require.NoError(t, err)

	router, err := NewRouter(db, jwtSvc, Services{
		Auth:      authSvc,
		Users:     userSvc,
		Customers: customerSvc,
	})
	require.NoError(t, err)

	return router, db
}

func postJSON(t *testing.T, router *gin.Engine, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope struct {
		Success bool           `json:"success"`
		Data    map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.True(t, envelope.Success, "body: %s", w.Body.String())
	return envelope.Data
}

func TestRouterSignupVerifyLoginFlow(t *testing.T) {
	router, _ := newTestRouter(t, &stubVerifier{})

	// Signup issues a code.
	w := postJSON(t, router, "/api/v1/users/signup", gin.H{
		"email":    "farmer@example.com",
		"password": "sprouts-and-stems",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data := decodeData(t, w)
	otp, _ := data["otp"].(string)
	require.Len(t, otp, 6)
	require.Equal(t, false, data["is_verified"])

	// The echoed code verifies the account.
	w = postJSON(t, router, "/api/v1/users/verify-otp", gin.H{
		"email":    "farmer@example.com",
		"otp_code": otp,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, true, decodeData(t, w)["is_verified"])

	// Replaying the consumed code fails.
	w = postJSON(t, router, "/api/v1/users/verify-otp", gin.H{
		"email":    "farmer@example.com",
		"otp_code": otp,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "INVALID_OTP")

	// Password login issues a bearer token.
	w = postJSON(t, router, "/api/v1/users/login", gin.H{
		"username": "farmer@example.com",
		"password": "sprouts-and-stems",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token, _ := decodeData(t, w)["access_token"].(string)
	require.NotEmpty(t, token)

	// The token unlocks the protected user listing.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Contains(t, rec.Body.String(), "farmer@example.com")
}

func TestRouterWrongPasswordRejected(t *testing.T) {
	router, _ := newTestRouter(t, &stubVerifier{})

	w := postJSON(t, router, "/api/v1/users/signup", gin.H{
		"email":    "farmer@example.com",
		"password": "right-password",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(t, router, "/api/v1/users/login", gin.H{
		"username": "farmer@example.com",
		"password": "wrong-password",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
	require.Contains(t, w.Body.String(), "Your email or password is wrong")
}

func TestRouterGoogleLoginCreatesAccount(t *testing.T) {
	router, _ := newTestRouter(t, &stubVerifier{identity: &google.Identity{
		Email:   "sso@example.com",
		Subject: "google-subject-1",
		Picture: "https://lh3.example.com/p.png",
	}})

	w := postJSON(t, router, "/api/v1/users/login-with-google", gin.H{
		"id_token": "stub-token",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decodeData(t, w)
	require.NotEmpty(t, data["access_token"])
	require.Equal(t, "bearer", data["token_type"])
	require.EqualValues(t, 1800, data["expires_in"])
}

func TestRouterProtectedRoutesRequireToken(t *testing.T) {
	router, _ := newTestRouter(t, &stubVerifier{})

	for _, route := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/users"},
		{http.MethodGet, "/api/v1/customers"},
		{http.MethodPost, "/api/v1/customers"},
	} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(route.method, route.path, nil))
		require.Equalf(t, http.StatusUnauthorized, w.Code, "%s %s", route.method, route.path)
	}
}

func TestRouterCustomerCRUD(t *testing.T) {
	router, _ := newTestRouter(t, &stubVerifier{})

	// Bootstrap an account to obtain a token.
	w := postJSON(t, router, "/api/v1/users/signup", gin.H{
		"email":    "agent@example.com",
		"password": "pw",
		"role":     "field_agent",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	userID := decodeData(t, w)["user_id"].(string)

	w = postJSON(t, router, "/api/v1/users/login", gin.H{
		"username": "agent@example.com",
		"password": "pw",
	})
	require.Equal(t, http.StatusOK, w.Code)
	token := decodeData(t, w)["access_token"].(string)

	authed := func(method, path string, payload any) *httptest.ResponseRecorder {
		var req *http.Request
		if payload != nil {
			body, err := json.Marshal(payload)
			require.NoError(t, err)
			req = httptest.NewRequest(method, path, bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
		} else {
			req = httptest.NewRequest(method, path, nil)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	rec := authed(http.MethodPost, "/api/v1/customers", gin.H{
		"first_name":   "Ravi",
		"last_name":    "Kumar",
		"phone_number": "9999999999",
		"email":        "ravi@example.com",
		"district":     "Guntur",
		"user_id":      userID,
		"service":      "soil-testing",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	customerID := decodeData(t, rec)["id"].(string)

	rec = authed(http.MethodPatch, "/api/v1/customers/"+customerID, gin.H{
		"village": "Vemuru",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, "Vemuru", decodeData(t, rec)["village"])

	rec = authed(http.MethodGet, "/api/v1/customers?skip=0&limit=10", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"total":1`)

	rec = authed(http.MethodDelete, "/api/v1/customers/"+customerID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = authed(http.MethodGet, "/api/v1/customers/"+customerID, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouterMetricsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, &stubVerifier{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	metricsRec := httptest.NewRecorder()
	router.ServeHTTP(metricsRec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, metricsRec.Code)

	body := metricsRec.Body.String()
	require.True(t, strings.Contains(body, `agriserve_api_latency_seconds_count{method="GET",path="/health",status="200"}`), "metrics output missing latency series")
}

func TestRouterUnknownRoute(t *testing.T) {
	router, _ := newTestRouter(t, &stubVerifier{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, w.Body.String(), fmt.Sprintf("route %s not found", "/nope"))
}
