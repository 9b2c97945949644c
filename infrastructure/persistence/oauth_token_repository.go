package persistence

import (
	"context"
	"database/sql"
	"time"

	"ytpm/domain/model"
	"ytpm/domain/repository"
)

type OAuthTokenRepository struct{ db *sql.DB }

func NewOAuthTokenRepository(db *sql.DB) *OAuthTokenRepository { return &OAuthTokenRepository{db: db} }

func (r *OAuthTokenRepository) UpsertToken(ctx context.Context, t *model.OAuthToken) error {
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	q := `INSERT INTO oauth_tokens (user_id, platform, access_token, refresh_token, expires_at, scopes, token_type, created_at, updated_at)
		  VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		  ON CONFLICT (user_id, platform) DO UPDATE SET
			access_token=EXCLUDED.access_token,
			refresh_token=EXCLUDED.refresh_token,
			expires_at=EXCLUDED.expires_at,
			scopes=EXCLUDED.scopes,
			token_type=EXCLUDED.token_type,
			updated_at=EXCLUDED.updated_at`
	_, err := r.db.ExecContext(ctx, q, t.UserID, t.Platform, t.AccessToken, t.RefreshToken, t.ExpiresAt, t.Scopes, t.TokenType, t.CreatedAt, t.UpdatedAt)
	return err
}

func (r *OAuthTokenRepository) GetToken(ctx context.Context, userID, platform string) (*model.OAuthToken, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, user_id, platform, access_token, refresh_token, expires_at, scopes, token_type, created_at, updated_at FROM oauth_tokens WHERE user_id=$1 AND platform=$2`, userID, platform)
	tok := &model.OAuthToken{}
	var exp sql.NullTime
	var tokenType sql.NullString
	if err := row.Scan(&tok.ID, &tok.UserID, &tok.Platform, &tok.AccessToken, &tok.RefreshToken, &exp, &tok.Scopes, &tokenType, &tok.CreatedAt, &tok.UpdatedAt); err != nil {
		return nil, err
	}
	if exp.Valid {
		tok.ExpiresAt = &exp.Time
	}
	if tokenType.Valid {
		v := tokenType.String
		tok.TokenType = &v
	}
	return tok, nil
}

var _ repository.IOAuthToken = (*OAuthTokenRepository)(nil)
