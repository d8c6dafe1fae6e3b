package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hindusthan/agriserve/internal/models"
	"github.com/hindusthan/agriserve/internal/services"
	apperrors "github.com/hindusthan/agriserve/pkg/errors"
	"github.com/hindusthan/agriserve/pkg/metrics"
	"github.com/hindusthan/agriserve/pkg/response"
)

// AuthHandler exposes the signup, verification and login flows.
type AuthHandler struct {
	auth *services.AuthService
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type signupRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required"`
	Role        string `json:"role"`
	PhoneNumber string `json:"phone_number"`
}

// POST /api/v1/users/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if !bindAndValidate(c, &req) {
		return
	}

	result, err := h.auth.Signup(c.Request.Context(), services.SignupInput{
		Email:       req.Email,
		Password:    req.Password,
		Role:        models.Role(req.Role),
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	metrics.OTPIssued.WithLabelValues("signup").Inc()
	response.Success(c, http.StatusCreated, result)
}

type verifyOTPRequest struct {
	Email   string `json:"email" validate:"omitempty,email"`
	OTPCode string `json:"otp_code"`
}

// POST /api/v1/users/verify-otp
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req verifyOTPRequest
	if !bindAndValidate(c, &req) {
		return
	}

	result, err := h.auth.VerifyOTP(c.Request.Context(), req.Email, req.OTPCode)
	if err != nil {
		metrics.OTPVerifications.WithLabelValues(verificationOutcome(err)).Inc()
		response.Error(c, err)
		return
	}

	metrics.OTPVerifications.WithLabelValues("success").Inc()
	response.Success(c, http.StatusOK, result)
}

type resendOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// POST /api/v1/users/resend-otp
func (h *AuthHandler) ResendOTP(c *gin.Context) {
	var req resendOTPRequest
	if !bindAndValidate(c, &req) {
		return
	}

	result, err := h.auth.ResendOTP(c.Request.Context(), req.Email)
	if err != nil {
		response.Error(c, err)
		return
	}

	metrics.OTPIssued.WithLabelValues("resend").Inc()
	response.Success(c, http.StatusOK, result)
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// POST /api/v1/users/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	result, err := h.auth.PasswordLogin(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("password", "failure").Inc()
		c.Header("WWW-Authenticate", "Bearer")
		response.Error(c, err)
		return
	}

	metrics.AuthAttempts.WithLabelValues("password", "success").Inc()
	response.Success(c, http.StatusOK, result)
}

type googleLoginRequest struct {
	IDToken string `json:"id_token"`
}

// POST /api/v1/users/login-with-google
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	var req googleLoginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	result, err := h.auth.FederatedLogin(c.Request.Context(), req.IDToken)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("google", "failure").Inc()
		if apperrors.FromError(err).StatusCode == http.StatusUnauthorized {
			c.Header("WWW-Authenticate", "Bearer")
		}
		response.Error(c, err)
		return
	}

	metrics.AuthAttempts.WithLabelValues("google", "success").Inc()
	response.Success(c, http.StatusOK, result)
}

func verificationOutcome(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrInvalidOTP):
		return "invalid"
	case errors.Is(err, apperrors.ErrOTPExpired):
		return "expired"
	case errors.Is(err, apperrors.ErrAlreadyVerified):
		return "already_verified"
	default:
		return "error"
	}
}
