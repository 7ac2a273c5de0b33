// Command vtexwatch runs the multi-retailer availability observatory: it
// syncs a retailer's catalog, maps physical stores to platform pickup
// points, and probes SKU availability across stores, persisting results to
// Postgres.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/adeco-retail/vtexwatch/internal/catalogsync"
	"github.com/adeco-retail/vtexwatch/internal/config"
	"github.com/adeco-retail/vtexwatch/internal/discovery"
	"github.com/adeco-retail/vtexwatch/internal/master"
	"github.com/adeco-retail/vtexwatch/internal/opsapi"
	"github.com/adeco-retail/vtexwatch/internal/orchestrator"
	"github.com/adeco-retail/vtexwatch/internal/platform"
	"github.com/adeco-retail/vtexwatch/internal/postgres"
	"github.com/adeco-retail/vtexwatch/internal/storemapper"
	"github.com/adeco-retail/vtexwatch/pkg/audit"
	"github.com/adeco-retail/vtexwatch/pkg/cache"
	"github.com/adeco-retail/vtexwatch/pkg/database"
	"github.com/adeco-retail/vtexwatch/pkg/event"
	"github.com/adeco-retail/vtexwatch/pkg/health"
	"github.com/adeco-retail/vtexwatch/pkg/logging"
	"github.com/adeco-retail/vtexwatch/pkg/metrics"
	"github.com/adeco-retail/vtexwatch/pkg/notification"
	"github.com/adeco-retail/vtexwatch/pkg/ratelimit"
	"github.com/adeco-retail/vtexwatch/pkg/tracing"
)

// Version information, set by the build system via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var configFile string
var hostFlag string

func main() {
	root := &cobra.Command{
		Use:   "vtexwatch",
		Short: "Multi-retailer availability observatory",
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "path to config file")
	root.PersistentFlags().StringVar(&hostFlag, "host", "", "retailer host to operate on (required by most subcommands)")

	root.AddCommand(
		versionCmd(),
		serveCmd(),
		runFullProcessCmd(),
		sweepCatalogCmd(),
		scrapeByEANCmd(),
		scrapeByBrandCmd(),
		mapStoresCmd(),
		probeAllCmd(),
		probeEansCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("vtexwatch %s (%s)\n", Version, GitCommit)
			return nil
		},
	}
}

// app bundles everything main.go wires before dispatching to a subcommand.
type app struct {
	cfg    *config.Config
	log    logging.Logger
	db     *database.DB
	cache  cache.Cache
	pacer  ratelimit.Limiter
	events event.Bus
	alerts *notification.NotificationService

	retailers postgres.RetailerRepository
}

func bootstrap(cmd *cobra.Command) (*app, func(), error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logging.NewLogger(logging.Config{
		Level:       cfg.App.LogLevel,
		Format:      "json",
		Output:      "stdout",
		Development: cfg.IsDevelopment(),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	ctx := cmd.Context()
	db, err := database.New(ctx, database.Config{
		ConnectionString: cfg.Database.ConnectionString,
		MaxConnections:   cfg.Database.MaxConnections,
		MaxLifetime:      cfg.Database.MaxLifetime,
		MaxIdleTime:      cfg.Database.MaxIdleTime,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := tracing.Init(tracing.Config{
		ServiceName:    cfg.App.Name,
		ServiceVersion: Version,
		Environment:    cfg.App.Environment,
		ExporterType:   cfg.Observability.TraceExporter,
		JaegerEndpoint: cfg.Observability.JaegerEndpoint,
		OTLPEndpoint:   cfg.Observability.OTLPEndpoint,
		SamplingRate:   cfg.Observability.TraceSampleRatio,
	}); err != nil {
		log.Warn("failed to initialize tracing, continuing without it", logging.Error(err))
	}
	metrics.Init(cfg.Observability.MetricsNamespace)

	var cacheBackend cache.Cache
	var pacer ratelimit.Limiter
	var eventBus event.Bus = event.NewMemoryBus()
	if addr := cfg.RedisAddr(); addr != "" {
		redisCache, err := cache.NewRedisCache(cache.RedisConfig{
			Host: cfg.Redis.Host, Port: cfg.Redis.Port, Password: cfg.Redis.Password,
			Database: cfg.Redis.Database, PoolSize: cfg.Redis.PoolSize, Prefix: "vtexwatch:",
		})
		if err != nil {
			log.Warn("failed to connect to redis cache, falling back to in-memory", logging.Error(err))
			cacheBackend = cache.NewMemoryCache(cfg.Redis.TTL, time.Minute)
		} else {
			cacheBackend = redisCache
		}

		redisClient := redis.NewClient(&redis.Options{
			Addr: addr, Password: cfg.Redis.Password, DB: cfg.Redis.Database, PoolSize: cfg.Redis.PoolSize,
		})
		pacer = ratelimit.NewRedisLimiter(redisClient, ratelimit.Config{
			RequestsPerWindow: 10, WindowSize: time.Second, KeyPrefix: "vtexwatch:pace:",
		})
	} else {
		cacheBackend = cache.NewMemoryCache(5*time.Minute, time.Minute)
		pacer = ratelimit.NewMemoryLimiter(ratelimit.Config{RequestsPerWindow: 10, WindowSize: time.Second})
	}

	alerts := notification.NewNotificationService()
	alerts.RegisterSender(notification.NewWebhookSender(nil))

	a := &app{
		cfg: cfg, log: log, db: db, cache: cacheBackend, pacer: pacer, events: eventBus, alerts: alerts,
		retailers: postgres.NewRetailerRepository(db),
	}
	cleanup := func() { db.Close() }
	return a, cleanup, nil
}

func (a *app) resolveHost(configured string) (string, error) {
	if configured == "" {
		return "", fmt.Errorf("--host is required")
	}
	retailers := a.cfg.EnabledRetailers(configured)
	if len(retailers) == 0 {
		return "", fmt.Errorf("no enabled retailer configured for host %q", configured)
	}
	return configured, nil
}

// enabledHosts adapts config.Config.EnabledRetailers to the
// master.EnabledHosts shape RunFullProcess needs.
func (a *app) enabledHosts(hostFilter string) []string {
	retailers := a.cfg.EnabledRetailers(hostFilter)
	hosts := make([]string, len(retailers))
	for i, r := range retailers {
		hosts[i] = r.RetailerHost
	}
	return hosts
}

// newSession is the orchestrator.SessionFactory every pipeline component
// shares: one fresh, unshared HTTP Session Layer instance per call.
func (a *app) newSession(host string) (*platform.Session, error) {
	return platform.NewSession(platform.SessionConfig{
		Host:      host,
		ProxyURL:  a.cfg.Proxy.URL,
		ProxyUser: a.cfg.Proxy.Username,
		ProxyPass: a.cfg.Proxy.Password,
	}, a.log)
}

func (a *app) newClient(host string) (*platform.Client, error) {
	session, err := a.newSession(host)
	if err != nil {
		return nil, err
	}
	session.WarmUp(context.Background())
	return platform.NewClient(session, a.cache), nil
}

func (a *app) newSyncer(client *platform.Client) *catalogsync.Syncer {
	auditSvc := audit.NewAuditService(audit.NewDefaultAuditLogger())
	return catalogsync.NewSyncer(
		client,
		postgres.NewCategoryRepository(a.db),
		postgres.NewProductRepository(a.db),
		postgres.NewSkuRepository(a.db),
		postgres.NewSellerRepository(a.db),
		postgres.NewOfferRepository(a.db),
		auditSvc,
		a.log,
	)
}

func (a *app) newDiscovery(client *platform.Client, syncer *catalogsync.Syncer) *discovery.Discovery {
	return discovery.New(client, syncer, postgres.NewTrackedProductRepository(a.db), postgres.NewSweepLogRepository(a.db), a.log)
}

func (a *app) newMapper(client *platform.Client) *storemapper.Mapper {
	return storemapper.New(client, a.retailers, postgres.NewStoreRepository(a.db), postgres.NewPickupPointRepository(a.db), a.log)
}

// newPhaseClients is the master.PhaseClients the Master Orchestrator calls
// once per retailer host it visits.
func (a *app) newPhaseClients(host string) (*discovery.Discovery, *storemapper.Mapper, error) {
	client, err := a.newClient(host)
	if err != nil {
		return nil, nil, err
	}
	syncer := a.newSyncer(client)
	return a.newDiscovery(client, syncer), a.newMapper(client), nil
}

func (a *app) newOrchestrator() *orchestrator.Orchestrator {
	return orchestrator.New(
		postgres.NewWorkRepository(a.db),
		postgres.NewAvailabilityRepository(a.db),
		postgres.NewSweepLogRepository(a.db),
		a.newSession,
		a.pacer,
		nil,
		a.log,
	)
}

func (a *app) newMaster() *master.Master {
	return master.New(
		a.newPhaseClients,
		a.enabledHosts,
		a.newOrchestrator(),
		postgres.NewSweepLogRepository(a.db),
		a.events,
		a.alerts,
		"",
		master.ProbeConfig{
			MinBatchSize:        a.cfg.Probe.MinBatchSize,
			MaxBatchSize:        a.cfg.Probe.MaxBatchSize,
			DegreeOfParallelism: a.cfg.Probe.DegreeOfParallelism,
		},
		a.log,
	)
}

func runFullProcessCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run-full-process",
		Short: "Run discovery, store mapping, and probing for every enabled retailer, or one with --host",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			return a.newMaster().RunFullProcess(cmd.Context(), hostFlag)
		},
	}
}

func sweepCatalogCmd() *cobra.Command {
	var sc int
	var maxPages int
	cmd := &cobra.Command{
		Use:   "sweep-catalog",
		Short: "Walk the category tree and product search feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			host, err := a.resolveHost(hostFlag)
			if err != nil {
				return err
			}
			client, err := a.newClient(host)
			if err != nil {
				return err
			}
			syncer := a.newSyncer(client)

			n, err := syncer.SyncCategories(cmd.Context(), host, a.cfg.Vtex.CategoryTreeDepth)
			if err != nil {
				return fmt.Errorf("failed to sync categories: %w", err)
			}
			a.log.Info("categories synced", logging.Int("count", n))

			var maxPagesPtr *int
			if maxPages > 0 {
				maxPagesPtr = &maxPages
			}
			products, err := syncer.SyncProducts(cmd.Context(), host, nil, a.cfg.Vtex.PageSize, maxPagesPtr)
			if err != nil {
				return fmt.Errorf("failed to sync products: %w", err)
			}
			a.log.Info("products synced", logging.Int("count", products))
			return nil
		},
	}
	cmd.Flags().IntVar(&sc, "sc", 0, "sales channel (ignored: the catalog search is issued without an sc parameter)")
	cmd.Flags().IntVar(&maxPages, "max-pages", 0, "cap on pages per category (0 = unbounded)")
	return cmd
}

func scrapeByEANCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scrape-by-ean",
		Short: "Run Targeted Discovery by tracked EAN",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			host, err := a.resolveHost(hostFlag)
			if err != nil {
				return err
			}
			client, err := a.newClient(host)
			if err != nil {
				return err
			}
			disc := a.newDiscovery(client, a.newSyncer(client))
			disc.RunByEAN(cmd.Context(), host)
			return nil
		},
	}
}

func scrapeByBrandCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scrape-by-brand",
		Short: "Run Targeted Discovery by brand prefix",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			host, err := a.resolveHost(hostFlag)
			if err != nil {
				return err
			}
			client, err := a.newClient(host)
			if err != nil {
				return err
			}
			disc := a.newDiscovery(client, a.newSyncer(client))
			disc.RunByBrandPrefix(cmd.Context(), host)
			return nil
		},
	}
}

func mapStoresCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "map-stores",
		Short: "Map physical stores to platform pickup points",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			host, err := a.resolveHost(hostFlag)
			if err != nil {
				return err
			}
			client, err := a.newClient(host)
			if err != nil {
				return err
			}
			mapped, err := a.newMapper(client).MapAll(cmd.Context(), host)
			if err != nil {
				return err
			}
			a.log.Info("stores mapped", logging.Int("count", mapped))
			return nil
		},
	}
}

func probeAllCmd() *cobra.Command {
	var minBatch, maxBatch, parallelism int
	cmd := &cobra.Command{
		Use:   "probe-all",
		Short: "Probe every known SKU across every mapped store",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			host, err := a.resolveHost(hostFlag)
			if err != nil {
				return err
			}
			return a.newOrchestrator().ProbeAll(cmd.Context(), host, pick(minBatch, a.cfg.Probe.MinBatchSize), pick(maxBatch, a.cfg.Probe.MaxBatchSize), pick(parallelism, a.cfg.Probe.DegreeOfParallelism))
		},
	}
	addProbeFlags(cmd, &minBatch, &maxBatch, &parallelism)
	return cmd
}

func probeEansCmd() *cobra.Command {
	var minBatch, maxBatch, parallelism int
	cmd := &cobra.Command{
		Use:   "probe-eans",
		Short: "Probe only tracked-EAN SKUs across every mapped store",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			host, err := a.resolveHost(hostFlag)
			if err != nil {
				return err
			}
			return a.newOrchestrator().ProbeEanList(cmd.Context(), host, pick(minBatch, a.cfg.Probe.MinBatchSize), pick(maxBatch, a.cfg.Probe.MaxBatchSize), pick(parallelism, a.cfg.Probe.DegreeOfParallelism))
		},
	}
	addProbeFlags(cmd, &minBatch, &maxBatch, &parallelism)
	return cmd
}

func addProbeFlags(cmd *cobra.Command, minBatch, maxBatch, parallelism *int) {
	cmd.Flags().IntVar(minBatch, "min-batch", 0, "minimum batch size (0 = config default)")
	cmd.Flags().IntVar(maxBatch, "max-batch", 0, "maximum batch size (0 = config default)")
	cmd.Flags().IntVar(parallelism, "parallelism", 0, "degree of parallelism (0 = config default)")
}

func pick(flagValue, configDefault int) int {
	if flagValue > 0 {
		return flagValue
	}
	return configDefault
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the ops HTTP server (health, metrics, sweep trigger)",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			healthMgr := health.NewManager()
			healthMgr.Register("database", &health.PgxChecker{Pinger: a.db})

			srv := opsapi.New(a.newMaster(), postgres.NewSweepLogRepository(a.db), healthMgr, a.log)

			httpServer := &http.Server{
				Addr:         a.cfg.ServerAddr(),
				Handler:      srv.Handler(),
				ReadTimeout:  a.cfg.Server.ReadTimeout,
				WriteTimeout: a.cfg.Server.WriteTimeout,
			}

			go func() {
				a.log.Info("ops server listening", logging.String("addr", a.cfg.ServerAddr()))
				if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					a.log.Fatal("ops server failed", logging.Error(err))
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit

			ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
			defer cancel()
			return httpServer.Shutdown(ctx)
		},
	}
}
