package repository

import (
	"context"

	"ytpm/domain/model"
)

// IOAuthToken persists per-user YouTube OAuth credentials.
type IOAuthToken interface {
	UpsertToken(ctx context.Context, token *model.OAuthToken) error
	GetToken(ctx context.Context, userID, platform string) (*model.OAuthToken, error)
}
