package handlers

import (
	"errors"
	"net/http"

	"github.com/WadsonGarbes/formaplus-api/internal/apierror"
	"github.com/WadsonGarbes/formaplus-api/internal/config"
	"github.com/WadsonGarbes/formaplus-api/internal/entity"
	"github.com/WadsonGarbes/formaplus-api/internal/middleware"
	"github.com/WadsonGarbes/formaplus-api/internal/services"
	"github.com/gin-gonic/gin"
)

const refreshCookieName = "refresh_token"

type TokenHandler struct {
	auth *services.Auth
	cfg  *config.Config
}

func NewTokenHandler(auth *services.Auth, cfg *config.Config) *TokenHandler {
	return &TokenHandler{auth: auth, cfg: cfg}
}

// tokenResponse writes the token pair. The refresh token only appears in the
// body when configured; for browser clients it travels in a secure http-only
// cookie scoped to the token endpoints instead.
func (h *TokenHandler) tokenResponse(ctx *gin.Context, token *entity.Token) {
	if h.cfg.RefreshTokenInCookie {
		sameSite := http.SameSiteStrictMode
		if h.cfg.UseCORS {
			sameSite = http.SameSiteNoneMode
			if h.cfg.Debug() {
				sameSite = http.SameSiteLaxMode
			}
		}
		ctx.SetSameSite(sameSite)
		maxAge := int(h.cfg.RefreshTokenTTL.Seconds())
		ctx.SetCookie(refreshCookieName, token.RefreshToken, maxAge, "/tokens", "",
			!h.cfg.Debug(), true)
	}

	body := gin.H{"access_token": token.AccessToken}
	if h.cfg.RefreshTokenInBody {
		body["refresh_token"] = token.RefreshToken
	}
	ctx.JSON(http.StatusOK, body)
}

// New issues a fresh token pair for the basic-auth user. Old token rows are
// swept opportunistically on the way.
func (h *TokenHandler) New(ctx *gin.Context) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		apierror.Abort(ctx, http.StatusUnauthorized, "missing credentials")
		return
	}

	token, err := h.auth.Issue(ctx.Request.Context(), user)
	if err != nil {
		apierror.Abort(ctx, http.StatusInternalServerError, "could not issue token")
		return
	}

	// keep the token table clean of long-expired rows
	_ = h.auth.Clean(ctx.Request.Context())

	h.tokenResponse(ctx, token)
}

// Refresh rotates a token pair. The refresh token may come from the request
// body or from the cookie set at issuance.
func (h *TokenHandler) Refresh(ctx *gin.Context) {
	var req struct {
		AccessToken  string `json:"access_token" binding:"required"`
		RefreshToken string `json:"refresh_token"`
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		apierror.AbortValidation(ctx, err)
		return
	}

	refreshToken := req.RefreshToken
	if refreshToken == "" {
		refreshToken, _ = ctx.Cookie(refreshCookieName)
	}
	if refreshToken == "" {
		apierror.Abort(ctx, http.StatusUnauthorized, "invalid access or refresh token")
		return
	}

	token, err := h.auth.Refresh(ctx.Request.Context(), req.AccessToken, refreshToken)
	if err != nil {
		apierror.Abort(ctx, http.StatusUnauthorized, "invalid access or refresh token")
		return
	}

	h.tokenResponse(ctx, token)
}

// Revoke expires the access token presented in the Authorization header.
func (h *TokenHandler) Revoke(ctx *gin.Context) {
	accessToken := middleware.ExtractBearerToken(ctx.GetHeader("Authorization"))
	if accessToken == "" {
		apierror.Abort(ctx, http.StatusUnauthorized, "missing access token")
		return
	}

	if err := h.auth.Revoke(ctx.Request.Context(), accessToken); err != nil {
		apierror.Abort(ctx, http.StatusUnauthorized, "invalid access token")
		return
	}

	ctx.Status(http.StatusNoContent)
}

// ResetRequest mails a password-reset link. The response never reveals
// whether the address belongs to an account.
func (h *TokenHandler) ResetRequest(ctx *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		apierror.AbortValidation(ctx, err)
		return
	}

	_ = h.auth.RequestPasswordReset(ctx.Request.Context(), req.Email)

	ctx.Status(http.StatusNoContent)
}

// ResetPassword sets a new password from a reset token.
func (h *TokenHandler) ResetPassword(ctx *gin.Context) {
	var req struct {
		Token       string `json:"token" binding:"required"`
		NewPassword string `json:"new_password" binding:"required,min=6"`
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		apierror.AbortValidation(ctx, err)
		return
	}

	if err := h.auth.ResetPassword(ctx.Request.Context(), req.Token, req.NewPassword); err != nil {
		if errors.Is(err, services.ErrInvalidToken) {
			apierror.Abort(ctx, http.StatusBadRequest, "invalid or expired reset token")
			return
		}
		apierror.Abort(ctx, http.StatusInternalServerError, "could not reset password")
		return
	}

	ctx.Status(http.StatusNoContent)
}
