package pgx

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/medgate/medgate/core"
)

func (a *Adapter) CreateSession(ctx context.Context, rec *core.SessionRecord) error {
	q := `INSERT INTO public.sessions (id, user_id, token_hash, expires_at, created_at, updated_at)
	      VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := a.pool.Exec(ctx, q,
		rec.ID, rec.UserID, rec.TokenHash, rec.ExpiresAt, rec.CreatedAt, rec.UpdatedAt)
	return err
}

func (a *Adapter) GetSessionByHash(ctx context.Context, tokenHash string) (*core.SessionRecord, error) {
	q := `SELECT id, user_id, token_hash, expires_at, created_at, updated_at
	      FROM public.sessions WHERE token_hash = $1`

	rec := &core.SessionRecord{}
	err := a.pool.QueryRow(ctx, q, tokenHash).Scan(
		&rec.ID, &rec.UserID, &rec.TokenHash, &rec.ExpiresAt, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, core.ErrSessionNotFound
		}
		return nil, err
	}
	return rec, nil
}

func (a *Adapter) DeleteSessionByHash(ctx context.Context, tokenHash string) error {
	tag, err := a.pool.Exec(ctx, `DELETE FROM public.sessions WHERE token_hash = $1`, tokenHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return core.ErrSessionNotFound
	}
	return nil
}

func (a *Adapter) DeleteUserSessions(ctx context.Context, userID string) error {
	_, err := a.pool.Exec(ctx, `DELETE FROM public.sessions WHERE user_id = $1`, userID)
	return err
}

func (a *Adapter) DeleteExpiredSessions(ctx context.Context) (int, error) {
	tag, err := a.pool.Exec(ctx, `DELETE FROM public.sessions WHERE expires_at < now()`)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
