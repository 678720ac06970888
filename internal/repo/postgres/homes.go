package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okoro-dev/realtyhub/internal/domain/home"
	"github.com/okoro-dev/realtyhub/internal/observability"
)

type HomesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewHomesRepo(pool *pgxpool.Pool, prom *observability.Prom) *HomesRepo {
	return &HomesRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *HomesRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

// Create inserts the home and its images in one transaction so a
// listing never appears without its gallery.
func (r *HomesRepo) Create(ctx context.Context, req home.CreateHomeRequest, realtorID string) (home.Home, error) {
	h := home.NewFromCreateRequest(req, realtorID)

	err := r.observe("homes.create", func() error {
		tx, e := r.pool.BeginTx(ctx, pgx.TxOptions{})
		if e != nil {
			return e
		}
		defer func() { _ = tx.Rollback(ctx) }()

		_, e = tx.Exec(ctx,
			`INSERT INTO homes (id, address, city, price, bedrooms, bathrooms, land_size, property_type, realtor_id, listed_date, created_at, updated_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
			h.ID, h.Address, h.City, h.Price, h.Bedrooms, h.Bathrooms, h.LandSize, h.PropertyType, h.RealtorID, h.ListedDate, h.CreatedAt, h.UpdatedAt,
		)
		if e != nil {
			return e
		}

		for _, img := range req.Images {
			_, e = tx.Exec(ctx,
				`INSERT INTO images (id, url, home_id) VALUES ($1,$2,$3)`,
				uuid.NewString(), img.URL, h.ID,
			)
			if e != nil {
				return e
			}
		}

		return tx.Commit(ctx)
	})

	if err != nil {
		return home.Home{}, err
	}

	if len(req.Images) > 0 {
		h.Image = req.Images[0].URL
	}

	return h, nil
}

func (r *HomesRepo) List(ctx context.Context, filter home.ListHomesFilter) ([]home.Home, int, error) {
	baseQuery := `SELECT h.id,
		h.address,
		h.city,
		h.price,
		h.bedrooms,
		h.bathrooms,
		h.land_size,
		h.property_type,
		h.realtor_id,
		h.listed_date,
		h.created_at,
		h.updated_at,
		COALESCE((SELECT i.url FROM images i WHERE i.home_id = h.id ORDER BY i.id LIMIT 1), '') AS image,
		COUNT(*) OVER() AS total
	FROM homes h
	`

	var conds []string
	var args []interface{}

	argsPosition := 1

	if filter.City != nil {
		conds = append(conds, fmt.Sprintf("h.city = $%d", argsPosition))
		args = append(args, *filter.City)
		argsPosition++
	}

	if filter.MinPrice != nil {
		conds = append(conds, fmt.Sprintf("h.price >= $%d", argsPosition))
		args = append(args, *filter.MinPrice)
		argsPosition++
	}

	if filter.MaxPrice != nil {
		conds = append(conds, fmt.Sprintf("h.price <= $%d", argsPosition))
		args = append(args, *filter.MaxPrice)
		argsPosition++
	}

	if filter.PropertyType != nil {
		conds = append(conds, fmt.Sprintf("h.property_type = $%d", argsPosition))
		args = append(args, *filter.PropertyType)
		argsPosition++
	}

	query := baseQuery

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	// stable ordering for pagination
	query += fmt.Sprintf(" ORDER BY h.listed_date DESC, h.id ASC LIMIT $%d OFFSET $%d", argsPosition, argsPosition+1)

	args = append(args, filter.Limit, filter.Offset)

	var output []home.Home
	total := 0

	err := r.observe("homes.list", func() error {
		rows, e := r.pool.Query(ctx, query, args...)

		if e != nil {
			return e
		}

		defer rows.Close()

		output = make([]home.Home, 0, filter.Limit)

		for rows.Next() {
			var h home.Home
			var t int

			e = rows.Scan(&h.ID, &h.Address, &h.City, &h.Price, &h.Bedrooms, &h.Bathrooms, &h.LandSize, &h.PropertyType, &h.RealtorID, &h.ListedDate, &h.CreatedAt, &h.UpdatedAt, &h.Image, &t)

			if e != nil {
				return e
			}

			total = t
			output = append(output, h)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, 0, err
	}

	return output, total, nil
}

func (r *HomesRepo) GetByID(ctx context.Context, id string) (home.Home, error) {
	var h home.Home

	err := r.observe("homes.get_by_id", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT h.id, h.address, h.city, h.price, h.bedrooms, h.bathrooms, h.land_size, h.property_type, h.realtor_id, h.listed_date, h.created_at, h.updated_at,
				COALESCE((SELECT i.url FROM images i WHERE i.home_id = h.id ORDER BY i.id LIMIT 1), '') AS image
			 FROM homes h
			 WHERE h.id = $1`,
			id,
		).Scan(&h.ID, &h.Address, &h.City, &h.Price, &h.Bedrooms, &h.Bathrooms, &h.LandSize, &h.PropertyType, &h.RealtorID, &h.ListedDate, &h.CreatedAt, &h.UpdatedAt, &h.Image)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return home.Home{}, home.ErrNotFound
		}

		return home.Home{}, err
	}

	return h, nil
}

// GetRealtorByHomeID returns the listing owner's contact slice; used
// for ownership checks and for addressing buyer inquiries.
func (r *HomesRepo) GetRealtorByHomeID(ctx context.Context, id string) (home.Realtor, error) {
	var rt home.Realtor

	err := r.observe("homes.get_realtor", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT a.id, a.name, a.email, a.phone
			 FROM homes h
			 JOIN accounts a ON a.id = h.realtor_id
			 WHERE h.id = $1`,
			id,
		).Scan(&rt.ID, &rt.Name, &rt.Email, &rt.Phone)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return home.Realtor{}, home.ErrNotFound
		}

		return home.Realtor{}, err
	}

	return rt, nil
}

func (r *HomesRepo) Update(ctx context.Context, id string, req home.UpdateHomeRequest) (home.Home, error) {
	var h home.Home

	err := r.observe("homes.update", func() error {
		return r.pool.QueryRow(
			ctx,
			`UPDATE homes
				SET address = COALESCE($2, address),
					city = COALESCE($3, city),
					price = COALESCE($4, price),
					bedrooms = COALESCE($5, bedrooms),
					bathrooms = COALESCE($6, bathrooms),
					land_size = COALESCE($7, land_size),
					property_type = COALESCE($8, property_type),
					updated_at = NOW()
			 WHERE id = $1
			 RETURNING id, address, city, price, bedrooms, bathrooms, land_size, property_type, realtor_id, listed_date, created_at, updated_at`,
			id,
			req.Address,
			req.City,
			req.Price,
			req.Bedrooms,
			req.Bathrooms,
			req.LandSize,
			req.PropertyType,
		).Scan(
			&h.ID,
			&h.Address,
			&h.City,
			&h.Price,
			&h.Bedrooms,
			&h.Bathrooms,
			&h.LandSize,
			&h.PropertyType,
			&h.RealtorID,
			&h.ListedDate,
			&h.CreatedAt,
			&h.UpdatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return home.Home{}, home.ErrNotFound
		}

		return home.Home{}, err
	}

	return h, nil
}

// Delete removes the home along with its images and messages.
func (r *HomesRepo) Delete(ctx context.Context, id string) error {
	return r.observe("homes.delete", func() error {
		tx, e := r.pool.BeginTx(ctx, pgx.TxOptions{})
		if e != nil {
			return e
		}
		defer func() { _ = tx.Rollback(ctx) }()

		if _, e = tx.Exec(ctx, `DELETE FROM messages WHERE home_id = $1`, id); e != nil {
			return e
		}

		if _, e = tx.Exec(ctx, `DELETE FROM images WHERE home_id = $1`, id); e != nil {
			return e
		}

		tag, e := tx.Exec(ctx, `DELETE FROM homes WHERE id = $1`, id)
		if e != nil {
			return e
		}

		if tag.RowsAffected() == 0 {
			return home.ErrNotFound
		}

		return tx.Commit(ctx)
	})
}
