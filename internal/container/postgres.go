package container

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/do"
	analyticsstore "github.com/scavin/discourse-bilibili-onebox/internal/analytics/store"
)

// PostgresPool closes the pool on injector shutdown.
type PostgresPool struct {
	*pgxpool.Pool
}

func (p *PostgresPool) Shutdown() error {
	p.Close()

	return nil
}

// PostgresPackage provides the connection pool for the analytics sink and
// makes sure its table exists.
func PostgresPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*PostgresPool, error) {
		opts := do.MustInvoke[*Options](i)

		ctx := context.Background()

		pool, err := pgxpool.New(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}

		if err := analyticsstore.NewPostgres(pool).Migrate(ctx); err != nil {
			pool.Close()

			return nil, fmt.Errorf("migrate link_resolutions: %w", err)
		}

		return &PostgresPool{Pool: pool}, nil
	})
}
