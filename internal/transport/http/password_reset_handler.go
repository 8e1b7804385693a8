package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/njprem/fitcity-password-reset/internal/service"
	"github.com/njprem/fitcity-password-reset/internal/util"
)

const (
	msgInvalidFormat      = "Invalid request format."
	msgAccountNotFound    = "Account not found."
	msgRateLimited        = "Too many recent reset requests. Please try again later."
	msgIssueFailed        = "Could not generate reset token."
	msgResetRequested     = "If your account exists, a reset link has been sent to your email."
	msgCodeMismatch       = "Invalid code or email."
	msgCodeInvalid        = "Invalid or expired code."
	msgCodeExpired        = "Code has expired or already been used."
	msgUpdateFailed       = "Failed to update password."
	msgServerError        = "Server error."
	msgPasswordResetDone  = "Password reset successfully."
	defaultRegisterTarget = "/subscribe"
)

// PasswordResetter is the service surface the reset endpoints depend on.
type PasswordResetter interface {
	RequestReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
}

type PasswordResetHandler struct {
	resets       PasswordResetter
	registerPath string
	log          *slog.Logger
}

func RegisterPasswordReset(e *echo.Echo, resets PasswordResetter, registerPath string, logger *slog.Logger) {
	if registerPath == "" {
		registerPath = defaultRegisterTarget
	}
	if logger == nil {
		logger = slog.Default()
	}
	handler := &PasswordResetHandler{resets: resets, registerPath: registerPath, log: logger}

	group := e.Group("/api/v1/auth/password-reset")
	group.POST("/request", handler.requestReset)
	group.POST("/confirm", handler.confirmReset)
}

// requestReset handles POST /api/v1/auth/password-reset/request
func (h *PasswordResetHandler) requestReset(c echo.Context) error {
	var req PasswordResetRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(msgInvalidFormat))
	}

	err := h.resets.RequestReset(c.Request().Context(), req.Email)
	var verr *service.ValidationError
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, util.Success(msgResetRequested))
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, util.Error(verr.Message))
	case errors.Is(err, service.ErrAccountNotFound):
		body := util.Error(msgAccountNotFound)
		body["redirectTo"] = h.registerPath
		return c.JSON(http.StatusOK, body)
	case errors.Is(err, service.ErrResetRateLimited):
		return c.JSON(http.StatusTooManyRequests, util.Error(msgRateLimited))
	default:
		h.log.ErrorContext(c.Request().Context(), "password reset request failed", "error", err)
		return c.JSON(http.StatusInternalServerError, util.Error(msgIssueFailed))
	}
}

// confirmReset handles POST /api/v1/auth/password-reset/confirm
func (h *PasswordResetHandler) confirmReset(c echo.Context) error {
	var req PasswordResetConfirmRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(msgInvalidFormat))
	}

	err := h.resets.ResetPassword(c.Request().Context(), req.Email, req.Code, req.NewPassword)
	var verr *service.ValidationError
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, util.Success(msgPasswordResetDone))
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, util.Error(verr.Message))
	case errors.Is(err, service.ErrResetCodeMismatch):
		return c.JSON(http.StatusBadRequest, util.Error(msgCodeMismatch))
	case errors.Is(err, service.ErrResetCodeInvalid):
		return c.JSON(http.StatusBadRequest, util.Error(msgCodeInvalid))
	case errors.Is(err, service.ErrResetCodeExpired):
		return c.JSON(http.StatusBadRequest, util.Error(msgCodeExpired))
	case errors.Is(err, service.ErrAccountNotFound):
		return c.JSON(http.StatusBadRequest, util.Error(msgAccountNotFound))
	case errors.Is(err, service.ErrPasswordUpdateFailed):
		h.log.ErrorContext(c.Request().Context(), "password update failed", "error", err)
		return c.JSON(http.StatusInternalServerError, util.Error(msgUpdateFailed))
	default:
		h.log.ErrorContext(c.Request().Context(), "password reset confirm failed", "error", err)
		return c.JSON(http.StatusInternalServerError, util.Error(msgServerError))
	}
}
