package http

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	youtubeapi "google.golang.org/api/youtube/v3"

	"ytpm/domain/model"
	"ytpm/domain/repository"
	"ytpm/infrastructure/clients/youtube"
	"ytpm/infrastructure/configuration"
	"ytpm/infrastructure/logger"
)

// IYouTubeAuthHandler drives the account-linking OAuth flow. Tokens are
// persisted per user so the bulk engine can build a real client later.
type IYouTubeAuthHandler interface {
	GetAuthURL(ctx *gin.Context)
	HandleCallback(ctx *gin.Context)
	Status(ctx *gin.Context)
}

type YouTubeAuthHandler struct {
	oauth2Config *oauth2.Config
	tokens       repository.IOAuthToken
}

// NewYouTubeAuthHandler creates a new YouTube auth handler
func NewYouTubeAuthHandler(tokens repository.IOAuthToken) (IYouTubeAuthHandler, error) {
	config, err := configuration.GetYouTubeConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to get YouTube config: %w", err)
	}

	oauth2Config := &oauth2.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		RedirectURL:  config.RedirectURL,
		Scopes: []string{
			youtubeapi.YoutubeScope,
			youtubeapi.YoutubeForceSslScope,
		},
		Endpoint: google.Endpoint,
	}

	return &YouTubeAuthHandler{
		oauth2Config: oauth2Config,
		tokens:       tokens,
	}, nil
}

// GetAuthURL handles GET /api/auth/youtube
func (h *YouTubeAuthHandler) GetAuthURL(ctx *gin.Context) {
	if h.oauth2Config.ClientID == "" {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "YouTube OAuth is not configured, bulk actions run in sandbox mode",
		})
		return
	}

	// State carries the user id so the callback knows who to link. The nonce
	// half is echoed through a cookie to bind the callback to this browser.
	nonce := generateRandomState()
	state := currentUserID(ctx) + ":" + nonce

	ctx.SetCookie("oauth_state", nonce, 600, "/", "", false, true)

	authURL := h.oauth2Config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))

	ctx.JSON(http.StatusOK, gin.H{
		"auth_url": authURL,
	})
}

// HandleCallback handles GET /auth/youtube/callback
func (h *YouTubeAuthHandler) HandleCallback(ctx *gin.Context) {
	if errorParam := ctx.Query("error"); errorParam != "" {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":       fmt.Sprintf("OAuth error: %s", errorParam),
			"description": ctx.Query("error_description"),
		})
		return
	}

	state := ctx.Query("state")
	userID, nonce, ok := splitState(state)
	if !ok {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":  "State parameter missing or malformed",
			"action": "Visit /api/auth/youtube to start over",
		})
		return
	}
	if cookie, err := ctx.Cookie("oauth_state"); err != nil || cookie != nonce {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":  "State mismatch",
			"action": "Visit /api/auth/youtube to start over",
		})
		return
	}

	code := ctx.Query("code")
	if code == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error": "Authorization code not found",
		})
		return
	}

	token, err := h.oauth2Config.Exchange(ctx.Request.Context(), code)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to exchange code for token",
			"message": err.Error(),
		})
		return
	}

	ctx.SetCookie("oauth_state", "", -1, "/", "", false, true)

	stored := &model.OAuthToken{
		UserID:       userID,
		Platform:     youtube.Platform,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		Scopes:       strings.Join(h.oauth2Config.Scopes, " "),
	}
	if token.TokenType != "" {
		tokenType := token.TokenType
		stored.TokenType = &tokenType
	}
	if !token.Expiry.IsZero() {
		expiry := token.Expiry
		stored.ExpiresAt = &expiry
	}
	if err := h.tokens.UpsertToken(ctx.Request.Context(), stored); err != nil {
		logger.GetLogger().WithField("error", err).WithField("user_id", userID).Error("Failed to store OAuth token")
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to store token",
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "YouTube account linked. Bulk actions now run against the live API.",
	})
}

// Status handles GET /api/auth/youtube/status
func (h *YouTubeAuthHandler) Status(ctx *gin.Context) {
	userID := currentUserID(ctx)
	linked := false
	var expiresAt *time.Time
	if h.oauth2Config.ClientID != "" {
		token, err := h.tokens.GetToken(ctx.Request.Context(), userID, youtube.Platform)
		if err == nil && token != nil {
			linked = true
			expiresAt = token.ExpiresAt
		}
	}
	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"linked":     linked,
			"configured": h.oauth2Config.ClientID != "",
			"expires_at": expiresAt,
		},
	})
}

func splitState(state string) (userID, nonce string, ok bool) {
	idx := strings.LastIndex(state, ":")
	if idx <= 0 || idx == len(state)-1 {
		return "", "", false
	}
	return state[:idx], state[idx+1:], true
}

// generateRandomState generates a random state parameter for OAuth2
func generateRandomState() string {
	b := make([]byte, 32)
	rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
