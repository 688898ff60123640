package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/wastenot/apiserver/types"
)

// ListingRepository handles persistence for marketplace listings.
type ListingRepository struct {
	db *sql.DB
}

func NewListingRepository(db *sql.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

const listingColumns = `id, user_id, title, description, original_price, discounted_price, quantity, category, vendor, location, expires_in, image_url, created_at`

func scanListing(row interface{ Scan(dest ...any) error }) (types.MarketplaceListing, error) {
	var listing types.MarketplaceListing
	err := row.Scan(
		&listing.ID,
		&listing.UserID,
		&listing.Title,
		&listing.Description,
		&listing.OriginalPrice,
		&listing.DiscountedPrice,
		&listing.Quantity,
		&listing.Category,
		&listing.Vendor,
		&listing.Location,
		&listing.ExpiresIn,
		&listing.ImageURL,
		&listing.CreatedAt,
	)
	return listing, err
}

// List returns listings across all users (the marketplace is global),
// newest first, optionally narrowed to a category and a free-text search
// over title and description.
func (r *ListingRepository) List(ctx context.Context, category, search string) ([]types.MarketplaceListing, error) {
	const query = `
		SELECT ` + listingColumns + `
		FROM marketplace_listings
		WHERE ($1 = '' OR category = $1)
		  AND ($2 = '' OR title ILIKE '%' || $2 || '%' OR description ILIKE '%' || $2 || '%')
		ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, category, search)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	listings := make([]types.MarketplaceListing, 0)
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, listing)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return listings, nil
}

func (r *ListingRepository) Get(ctx context.Context, id int) (types.MarketplaceListing, error) {
	const query = `
		SELECT ` + listingColumns + `
		FROM marketplace_listings
		WHERE id = $1`
	listing, err := scanListing(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.MarketplaceListing{}, ErrNotFound
		}
		return types.MarketplaceListing{}, err
	}
	return listing, nil
}

func (r *ListingRepository) Create(ctx context.Context, listing types.MarketplaceListing) (types.MarketplaceListing, error) {
	listing.CreatedAt = time.Now()

	const query = `
		INSERT INTO marketplace_listings (user_id, title, description, original_price, discounted_price, quantity, category, vendor, location, expires_in, image_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		listing.UserID,
		listing.Title,
		listing.Description,
		listing.OriginalPrice,
		listing.DiscountedPrice,
		listing.Quantity,
		listing.Category,
		listing.Vendor,
		listing.Location,
		listing.ExpiresIn,
		listing.ImageURL,
		listing.CreatedAt,
	).Scan(&listing.ID); err != nil {
		return types.MarketplaceListing{}, err
	}
	return listing, nil
}

func (r *ListingRepository) SetImageURL(ctx context.Context, id int, imageURL string) error {
	const query = `UPDATE marketplace_listings SET image_url = $2 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, imageURL)
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

func (r *ListingRepository) Delete(ctx context.Context, id, userID int, admin bool) error {
	const query = `DELETE FROM marketplace_listings WHERE id = $1 AND ($3 OR user_id = $2)`
	result, err := r.db.ExecContext(ctx, query, id, userID, admin)
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
