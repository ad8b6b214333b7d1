package store

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/router-for-me/MailRelayGateway/internal/config"
	"github.com/router-for-me/MailRelayGateway/internal/db"
)

// New builds the configured store backend. The database backend also runs
// its migration so a fresh deployment needs no extra step.
func New(cfg config.Config) (Store, error) {
	switch cfg.Store.Backend {
	case config.BackendGitHub:
		client := NewGitHubClient(cfg.GitHub.Token)
		return NewGitHubStore(client, cfg.GitHub.Owner, cfg.GitHub.Repo, cfg.GitHub.Path, cfg.GitHub.Branch), nil
	case config.BackendDatabase:
		conn, errOpen := db.Open(cfg.DatabaseDSN)
		if errOpen != nil {
			return nil, errOpen
		}
		if errMigrate := db.Migrate(conn); errMigrate != nil {
			return nil, errMigrate
		}
		return NewGormStore(conn, cfg.Store.Key), nil
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return NewRedisStore(client, cfg.Redis.Key), nil
	default:
		return nil, fmt.Errorf("store: unknown backend %q", cfg.Store.Backend)
	}
}
