package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	backend "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pagepack/pagepack/internal/config"
	"github.com/pagepack/pagepack/internal/server"
	"github.com/pagepack/pagepack/pkg/store"
)

// serveCommand creates the serve command running the HTTP message server.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		configPath   string
		addr         string
		storeBackend string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP message server",
		Long: `Run the HTTP server that accepts documents and trigger messages.

Documents are uploaded to /v1/documents and addressed by ID; posting
{"type": "PACK_PAGES"} or {"type": "UNPACK_PAGES"} to a document's
messages endpoint runs the transformation and persists the result.
{"type": "CLOSE"} posted to /v1/messages shuts the server down.

Configuration comes from ~/.config/pagepack/config.toml (or --config);
flags override file values.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if storeBackend != "" {
				cfg.Store.Backend = storeBackend
			}
			printInfo("Using %s store", cfg.Store.Backend)
			return c.runServer(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "config file path")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().StringVar(&storeBackend, "store", "", "store backend: file, redis, or mongo (overrides config)")
	return cmd
}

func (c *CLI) runServer(ctx context.Context, cfg config.Config) error {
	st, err := newStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	srv := server.New(st, c.Logger, cancel)
	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("server listening", "addr", cfg.Server.Addr, "store", cfg.Store.Backend)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	c.Logger.Info("server stopped")
	return nil
}

// newStore builds the configured document store backend.
func newStore(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	switch cfg.Backend {
	case config.BackendRedis:
		client := backend.NewClient(&backend.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, err
		}
		return store.NewRedisStore(client), nil
	case config.BackendMongo:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
		if err != nil {
			return nil, err
		}
		coll := client.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection)
		return store.NewMongoStore(coll), nil
	default:
		return store.NewFileStore(cfg.Dir)
	}
}
