package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/wastenot/apiserver/types"
)

// ProfileRepository handles persistence for profiles.
type ProfileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

const profileColumns = `id, email, username, full_name, avatar_url, website, role, password_hash, created_at, updated_at`

func scanProfile(row interface{ Scan(dest ...any) error }) (types.Profile, error) {
	var profile types.Profile
	err := row.Scan(
		&profile.ID,
		&profile.Email,
		&profile.Username,
		&profile.FullName,
		&profile.AvatarURL,
		&profile.Website,
		&profile.Role,
		&profile.PasswordHash,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	return profile, err
}

func (r *ProfileRepository) GetByID(ctx context.Context, id int) (types.Profile, error) {
	const query = `
		SELECT ` + profileColumns + `
		FROM profiles
		WHERE id = $1`
	profile, err := scanProfile(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Profile{}, ErrNotFound
		}
		return types.Profile{}, err
	}
	return profile, nil
}

func (r *ProfileRepository) GetByEmail(ctx context.Context, email string) (types.Profile, error) {
	const query = `
		SELECT ` + profileColumns + `
		FROM profiles
		WHERE email = $1`
	profile, err := scanProfile(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Profile{}, ErrNotFound
		}
		return types.Profile{}, err
	}
	return profile, nil
}

func (r *ProfileRepository) Create(ctx context.Context, profile types.Profile) (types.Profile, error) {
	now := time.Now()
	profile.CreatedAt = now
	profile.UpdatedAt = now

	const query = `
		INSERT INTO profiles (email, username, full_name, avatar_url, website, role, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		profile.Email,
		profile.Username,
		profile.FullName,
		profile.AvatarURL,
		profile.Website,
		profile.Role,
		profile.PasswordHash,
		profile.CreatedAt,
		profile.UpdatedAt,
	).Scan(&profile.ID); err != nil {
		return types.Profile{}, err
	}
	return profile, nil
}

// Update writes the mutable display fields. Email, role, and the password
// hash are managed through dedicated operations.
func (r *ProfileRepository) Update(ctx context.Context, profile types.Profile) (types.Profile, error) {
	profile.UpdatedAt = time.Now()

	const query = `
		UPDATE profiles
		SET username = $1,
			full_name = $2,
			avatar_url = $3,
			website = $4,
			updated_at = $5
		WHERE id = $6`
	result, err := r.db.ExecContext(
		ctx,
		query,
		profile.Username,
		profile.FullName,
		profile.AvatarURL,
		profile.Website,
		profile.UpdatedAt,
		profile.ID,
	)
	if err != nil {
		return types.Profile{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Profile{}, err
	}
	if affected == 0 {
		return types.Profile{}, ErrNotFound
	}
	return r.GetByID(ctx, profile.ID)
}

func (r *ProfileRepository) UpdatePassword(ctx context.Context, id int, passwordHash string) error {
	const query = `
		UPDATE profiles
		SET password_hash = $1,
			updated_at = $2
		WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, passwordHash, time.Now(), id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns all profiles, optionally narrowed to a role and a free-text
// search over name and email. Used by admin user management.
func (r *ProfileRepository) List(ctx context.Context, role, search string) ([]types.Profile, error) {
	const query = `
		SELECT ` + profileColumns + `
		FROM profiles
		WHERE ($1 = '' OR role = $1)
		  AND ($2 = '' OR full_name ILIKE '%' || $2 || '%' OR email ILIKE '%' || $2 || '%')
		ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, role, search)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := make([]types.Profile, 0)
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return profiles, nil
}
