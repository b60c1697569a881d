package pgx

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/medgate/medgate/core"
)

func (a *Adapter) FetchProfile(ctx context.Context, userID string) (*core.Profile, error) {
	q := `SELECT id, name, role, phone, address, dob, avatar_url, created_at, updated_at
	      FROM public.profiles WHERE id = $1`

	p := &core.Profile{}
	var role string
	err := a.pool.QueryRow(ctx, q, userID).Scan(
		&p.ID, &p.Name, &role, &p.Phone, &p.Address, &p.DOB, &p.AvatarURL, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, core.ErrProfileMissing
		}
		return nil, err
	}
	p.Role = core.Role(role)
	return p, nil
}

func (a *Adapter) CreateProfile(ctx context.Context, p *core.Profile) error {
	q := `INSERT INTO public.profiles (id, name, role, phone, address, dob, avatar_url, created_at, updated_at)
	      VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := a.pool.Exec(ctx, q,
		p.ID, p.Name, string(p.Role), p.Phone, p.Address, p.DOB, p.AvatarURL, p.CreatedAt, p.UpdatedAt)
	return err
}

// UpdateProfile writes only the touched fields; coalesce keeps the rest.
func (a *Adapter) UpdateProfile(ctx context.Context, userID string, changes core.ProfileChanges) error {
	q := `UPDATE public.profiles SET
	        name       = COALESCE($1, name),
	        phone      = COALESCE($2, phone),
	        address    = COALESCE($3, address),
	        dob        = COALESCE($4, dob),
	        avatar_url = COALESCE($5, avatar_url),
	        updated_at = now()
	      WHERE id = $6`

	tag, err := a.pool.Exec(ctx, q,
		changes.Name, changes.Phone, changes.Address, changes.DOB, changes.AvatarURL, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return core.ErrProfileMissing
	}
	return nil
}
