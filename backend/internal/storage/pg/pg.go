package pg

import (
	"context"
	"database/sql"

	"github.com/deskfolio/deskfolio/shared/config"
	"github.com/deskfolio/deskfolio/shared/logger"
	sharedpg "github.com/deskfolio/deskfolio/shared/storage/pg"
)

type Querier = sharedpg.Querier

// Storage is the remote submission store and the identity tables.
// It owns its connection pool; Cleanup releases it.
type Storage struct {
	db *sql.DB
}

func New(ctx context.Context, cfg *config.Config) (*Storage, error) {
	log := logger.Component("pg")
	log.Info("connecting to db", "host", cfg.Private.Pg.Host, "db", cfg.Private.Pg.Dbname)
	db, err := sharedpg.Connect(ctx, cfg, sharedpg.DefaultConnectionConfig())
	if err != nil {
		return nil, err
	}
	log.Info("connected to db")
	return &Storage{db: db}, nil
}

// Open returns a Storage whose pool connects lazily, so the service can start
// while the server is down and serve writes from the fallback slot.
func Open(cfg *config.Config) (*Storage, error) {
	db, err := sharedpg.Open(cfg, sharedpg.DefaultConnectionConfig())
	if err != nil {
		return nil, err
	}
	return &Storage{db: db}, nil
}

// NewFromDB wraps an already opened pool.
func NewFromDB(db *sql.DB) *Storage {
	return &Storage{db: db}
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Storage) Cleanup() error {
	return s.db.Close()
}

func (s *Storage) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	return sharedpg.WithTx(ctx, s.db, fn)
}
