package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okoro-dev/realtyhub/internal/domain/message"
	"github.com/okoro-dev/realtyhub/internal/observability"
)

type MessagesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewMessagesRepo(pool *pgxpool.Pool, prom *observability.Prom) *MessagesRepo {
	return &MessagesRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *MessagesRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *MessagesRepo) Create(ctx context.Context, body, homeID, buyerID, realtorID string) (message.Message, error) {
	m := message.Message{
		ID:        uuid.NewString(),
		Body:      body,
		HomeID:    homeID,
		BuyerID:   buyerID,
		RealtorID: realtorID,
		CreatedAt: time.Now().UTC(),
	}

	err := r.observe("messages.create", func() error {
		_, e := r.pool.Exec(ctx,
			`INSERT INTO messages (id, body, home_id, buyer_id, realtor_id, created_at)
			 VALUES ($1,$2,$3,$4,$5,$6)`,
			m.ID, m.Body, m.HomeID, m.BuyerID, m.RealtorID, m.CreatedAt,
		)
		return e
	})

	if err != nil {
		return message.Message{}, err
	}

	return m, nil
}

// ListByHome returns the message thread for a listing with each
// sender's contact details joined in.
func (r *MessagesRepo) ListByHome(ctx context.Context, homeID string) ([]message.Thread, error) {
	var out []message.Thread

	err := r.observe("messages.list_by_home", func() error {
		rows, e := r.pool.Query(ctx,
			`SELECT m.body, m.created_at, a.name, a.email, a.phone
			 FROM messages m
			 JOIN accounts a ON a.id = m.buyer_id
			 WHERE m.home_id = $1
			 ORDER BY m.created_at ASC`,
			homeID,
		)
		if e != nil {
			return e
		}

		defer rows.Close()

		out = make([]message.Thread, 0)

		for rows.Next() {
			var t message.Thread

			e = rows.Scan(&t.Body, &t.CreatedAt, &t.Buyer.Name, &t.Buyer.Email, &t.Buyer.Phone)
			if e != nil {
				return e
			}

			out = append(out, t)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}
