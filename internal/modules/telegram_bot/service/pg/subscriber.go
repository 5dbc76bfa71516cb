package pg

import (
	"context"
	"fmt"
	"sync"

	pgx "github.com/jackc/pgx/v5"

	"signal_bot/pkg/db"
)

// Subscriber — подписчики на тревоги. Кэш в памяти всегда, база —
// write-through, если DSN задан.
type Subscriber struct {
	db *db.PgTxManager

	mu   sync.RWMutex
	data map[int64]struct{}
}

// NewSubscriber: mgr == nil — чисто in-memory режим (локальный запуск).
func NewSubscriber(mgr *db.PgTxManager) *Subscriber {
	return &Subscriber{
		db:   mgr,
		data: make(map[int64]struct{}),
	}
}

// Load — подтянуть подписчиков из базы на старте.
func (s *Subscriber) Load(ctx context.Context) (err error) {
	if s.db == nil {
		return nil
	}
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.SubscriberLoad: %w", err)
		}
	}()

	return s.db.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		rows, err := tx.Query(ctxTx, `SELECT chat_id FROM subscribers`)
		if err != nil {
			return err
		}
		defer rows.Close()

		s.mu.Lock()
		defer s.mu.Unlock()
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				return err
			}
			s.data[id] = struct{}{}
		}
		return rows.Err()
	})
}

func (s *Subscriber) Add(ctx context.Context, chatID int64) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.SubscriberAdd: %w", err)
		}
	}()

	s.mu.Lock()
	s.data[chatID] = struct{}{}
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	return s.db.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctxTx,
			`INSERT INTO subscribers (chat_id) VALUES ($1) ON CONFLICT DO NOTHING`, chatID)
		return err
	})
}

func (s *Subscriber) Remove(ctx context.Context, chatID int64) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.SubscriberRemove: %w", err)
		}
	}()

	s.mu.Lock()
	delete(s.data, chatID)
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	return s.db.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctxTx, `DELETE FROM subscribers WHERE chat_id = $1`, chatID)
		return err
	})
}

// All — снапшот чатов для рассылки.
func (s *Subscriber) All() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]int64, 0, len(s.data))
	for id := range s.data {
		out = append(out, id)
	}
	return out
}
