package pgx

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/medgate/medgate/core"
)

func (a *Adapter) CreateIdentity(ctx context.Context, ident *core.Identity) error {
	q := `INSERT INTO public.identities (id, email, password_hash, email_verified, created_at, updated_at)
	      VALUES ($1, $2, $3, $4, $5, $6)
	      ON CONFLICT (email) DO NOTHING`

	tag, err := a.pool.Exec(ctx, q,
		ident.ID, ident.Email, ident.PasswordHash, ident.EmailVerified, ident.CreatedAt, ident.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return core.ErrIdentityExists
	}
	return nil
}

func (a *Adapter) GetIdentityByID(ctx context.Context, id string) (*core.Identity, error) {
	q := `SELECT id, email, password_hash, email_verified, created_at, updated_at
	      FROM public.identities WHERE id = $1`

	ident := &core.Identity{}
	err := a.pool.QueryRow(ctx, q, id).Scan(
		&ident.ID, &ident.Email, &ident.PasswordHash, &ident.EmailVerified, &ident.CreatedAt, &ident.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, core.ErrIdentityNotFound
		}
		return nil, err
	}
	return ident, nil
}

func (a *Adapter) GetIdentityByEmail(ctx context.Context, email string) (*core.Identity, error) {
	q := `SELECT id, email, password_hash, email_verified, created_at, updated_at
	      FROM public.identities WHERE email = $1`

	ident := &core.Identity{}
	err := a.pool.QueryRow(ctx, q, email).Scan(
		&ident.ID, &ident.Email, &ident.PasswordHash, &ident.EmailVerified, &ident.CreatedAt, &ident.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, core.ErrIdentityNotFound
		}
		return nil, err
	}
	return ident, nil
}
