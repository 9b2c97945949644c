package youtube

import (
	"context"
	"database/sql"
	"errors"

	"ytpm/domain/repository"
	"ytpm/infrastructure/logger"
)

// Platform is the oauth_tokens platform discriminator for YouTube.
const Platform = "youtube"

// ClientProvider builds a per-user playlist client from stored OAuth tokens.
type ClientProvider struct {
	tokens       repository.IOAuthToken
	clientID     string
	clientSecret string
	redirectURL  string
}

func NewClientProvider(tokens repository.IOAuthToken, clientID, clientSecret, redirectURL string) *ClientProvider {
	return &ClientProvider{
		tokens:       tokens,
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURL:  redirectURL,
	}
}

// ForUser returns a client for the user, or (nil, nil) when the user has not
// linked a YouTube account. Callers treat a nil client as fallback mode.
func (p *ClientProvider) ForUser(ctx context.Context, userID string) (repository.IPlaylistClient, error) {
	if p.tokens == nil || p.clientID == "" {
		return nil, nil
	}
	token, err := p.tokens.GetToken(ctx, userID, Platform)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	client, err := NewYouTubeClient(ctx, &Config{
		ClientID:     p.clientID,
		ClientSecret: p.clientSecret,
		RedirectURL:  p.redirectURL,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
	})
	if err != nil {
		logger.GetLogger().WithField("error", err).WithField("user_id", userID).Warn("Failed to build YouTube client from stored tokens")
		return nil, err
	}
	return client, nil
}

var _ repository.IPlaylistClientProvider = (*ClientProvider)(nil)
