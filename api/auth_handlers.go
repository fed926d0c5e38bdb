package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Evergreenies/bidding-application/auth"
)

// internalError 記錄非預期的錯誤並以通用訊息回應，避免洩漏內部細節
func internalError(c *gin.Context, op string, err error) {
	slog.Error("Fail to handle request", slog.String("op", op), slog.Any("error", err))
	c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
}

// Register 建立新帳號
func (impl *ServerImpl) Register(c *gin.Context) {
	const op = "Register"

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
		return
	}

	user, err := impl.authSvc.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	switch {
	case errors.Is(err, auth.ErrDuplicateUsername), errors.Is(err, auth.ErrDuplicateEmail):
		c.JSON(http.StatusConflict, gin.H{"message": err.Error()})
		return
	case err != nil:
		internalError(c, op, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "your account has been created, you are now able to log in",
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
		},
	})
}

// Login 驗證帳號密碼並把使用者綁進 session
func (impl *ServerImpl) Login(c *gin.Context) {
	const op = "Login"

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
		return
	}

	user, err := impl.authSvc.Authenticate(c.Request.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"message": err.Error()})
		return
	case err != nil:
		internalError(c, op, err)
		return
	}

	if err := bindSessionUser(c, user.ID); err != nil {
		internalError(c, op, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "login successful",
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
		},
	})
}

// Logout 銷毀目前的 session
func (impl *ServerImpl) Logout(c *gin.Context) {
	const op = "Logout"

	if err := clearSessionUser(c); err != nil {
		internalError(c, op, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logout successful"})
}

// RequestPasswordReset 寄出重設密碼的信件
func (impl *ServerImpl) RequestPasswordReset(c *gin.Context) {
	const op = "RequestPasswordReset"

	var req ResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
		return
	}

	err := impl.authSvc.RequestPasswordReset(c.Request.Context(), req.Email)
	switch {
	case errors.Is(err, auth.ErrEmailNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
		return
	case err != nil:
		internalError(c, op, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "an email has been sent with instructions to reset your password"})
}

// ConfirmPasswordReset 驗證重設密碼的 token 並更新密碼
func (impl *ServerImpl) ConfirmPasswordReset(c *gin.Context) {
	const op = "ConfirmPasswordReset"

	user := impl.authSvc.VerifyResetToken(c.Request.Context(), c.Param("token"))
	if user == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "that is an invalid or expired token"})
		return
	}

	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
		return
	}

	if err := impl.authSvc.ResetPassword(c.Request.Context(), user.ID, req.Password); err != nil {
		internalError(c, op, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "your password has been updated, you are now able to log in"})
}
