// Package pg connects to PostgreSQL through pgx/v5 and applies goose
// migrations.
//
//	var cfg pg.Config
//	config.MustLoad(&cfg)
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, notifications.Migrations(), logger); err != nil {
//	    return err
//	}
//
// Connect retries with a linearly growing wait until the database answers a
// ping or the context ends. Migrate runs migrations from an fs.FS (usually an
// embed.FS shipped with the package that owns the tables) or, when none is
// given, from Config.MigrationsPath on disk.
//
// Error helpers (IsNotFoundError, IsDuplicateKeyError, ...) classify pgx and
// PostgreSQL errors without leaking driver types into callers.
package pg
