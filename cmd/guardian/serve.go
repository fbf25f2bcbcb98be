package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"coin-guardian/internal/api"
	"coin-guardian/internal/config"
	"coin-guardian/internal/domain"
	"coin-guardian/internal/events"
	"coin-guardian/internal/gateway"
	"coin-guardian/internal/governance/multisig"
	"coin-guardian/internal/ledger"
	"coin-guardian/internal/observability"
	"coin-guardian/internal/storage"
	chstore "coin-guardian/internal/storage/clickhouse"
	"coin-guardian/internal/storage/memory"
	"coin-guardian/internal/storage/migrations"
	pgstore "coin-guardian/internal/storage/postgres"
	"coin-guardian/internal/supply"
	"coin-guardian/internal/tracing"
	"coin-guardian/internal/version"
)

var serveFlags = struct {
	useMemory bool
	migrate   bool
	trace     bool
}{}

func serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Run the HTTP API, event stream and metrics endpoint",
		PreRunE: loadConfigWith(func(cfg *config.Config) {
			if serveFlags.useMemory {
				cfg.UseMemory = true
			}
		}),
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.FromContext(cmd.Context())
			if cfg == nil {
				return errors.New("no config found in context")
			}
			return serveRun(cmd.Context(), cfg, commonRun())
		},
	}
	cmd.Flags().BoolVar(&serveFlags.useMemory, "use-memory", false, "use in-memory storage instead of PostgreSQL/ClickHouse")
	cmd.Flags().BoolVar(&serveFlags.migrate, "migrate", false, "apply migrations before serving")
	cmd.Flags().BoolVar(&serveFlags.trace, "trace", false, "export gateway spans to stderr")
	return cmd
}

// allStores holds all storage implementations.
type allStores struct {
	ledger    storage.LedgerStore
	metadata  storage.MetadataStore
	policy    storage.PolicyStore
	proposals storage.ProposalStore
	events    storage.EventStore
}

// createStores creates all required stores.
func createStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*allStores, func(), error) {
	if cfg.UseMemory {
		stores := &allStores{
			ledger:    memory.NewLedgerStore(),
			metadata:  memory.NewMetadataStore(),
			policy:    memory.NewPolicyStore(),
			proposals: memory.NewProposalStore(),
			events:    memory.NewEventStore(),
		}
		return stores, func() {}, nil
	}

	// PostgreSQL
	pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if serveFlags.migrate {
		if _, err := migrations.RunPostgresMigrations(ctx, pool, logger); err != nil {
			pool.Close()
			return nil, nil, err
		}
	}

	stores := &allStores{
		ledger:    pgstore.NewLedgerStore(pool),
		metadata:  pgstore.NewMetadataStore(pool),
		policy:    pgstore.NewPolicyStore(pool),
		proposals: pgstore.NewProposalStore(pool),
		events:    memory.NewEventStore(),
	}
	cleanup := func() { pool.Close() }

	// ClickHouse event log is optional
	if cfg.ClickHouseDSN != "" {
		var chConn *chstore.Conn
		if serveFlags.migrate {
			chConn, err = migrations.RunClickhouseMigrations(ctx, cfg.ClickHouseDSN, logger)
		} else {
			chConn, err = chstore.NewConn(ctx, cfg.ClickHouseDSN)
		}
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
		}
		stores.events = chstore.NewEventStore(chConn)
		cleanup = func() {
			chConn.Close()
			pool.Close()
		}
	}

	return stores, cleanup, nil
}

// seedMetadata writes the configured metadata if none exists yet.
func seedMetadata(ctx context.Context, store storage.MetadataStore, cfg *config.Config) error {
	_, err := store.Get(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("load metadata: %w", err)
	}
	return store.Put(ctx, &domain.CoinMetadata{
		Name:        cfg.Metadata.Name,
		Symbol:      cfg.Metadata.Symbol,
		Description: cfg.Metadata.Description,
		IconURL:     cfg.Metadata.IconURL,
		Decimals:    domain.Decimals,
		UpdatedAt:   time.Now().UnixMilli(),
	})
}

func serveRun(parent context.Context, cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if serveFlags.trace {
		shutdown, err := tracing.Init(programName, version.GetVersionString(), os.Stderr)
		if err != nil {
			return fmt.Errorf("init tracing: %w", err)
		}
		defer shutdown(context.Background())
	}

	stores, cleanup, err := createStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := seedMetadata(ctx, stores.metadata, cfg); err != nil {
		return err
	}
	policy, err := supply.NewPolicy(ctx, stores.policy, cfg.MaxSupply)
	if err != nil {
		return err
	}

	govID, err := cfg.GovernanceAddress()
	if err != nil {
		return err
	}
	participants, err := cfg.ParticipantAddresses()
	if err != nil {
		return err
	}
	gov, err := multisig.New(multisig.Config{
		ID:           govID,
		Participants: participants,
		Threshold:    cfg.Threshold,
	}, stores.proposals, logger)
	if err != nil {
		return err
	}

	l := ledger.New(stores.ledger)
	treasury, err := l.IssueTreasuryCap()
	if err != nil {
		return err
	}
	authority, err := gateway.NewAuthority(treasury, govID)
	if err != nil {
		return err
	}

	hub := events.NewHub(nil, logger)
	defer hub.Close()
	emitter := events.NewEmitter(logger, events.NewStoreSink(stores.events), hub)

	gw := gateway.New(l, gateway.WithLogger(logger), gateway.WithEmitter(emitter))

	handler := api.NewServer(api.Deps{
		Gateway:    gw,
		Authority:  authority,
		Governance: gov,
		Policy:     policy,
		Ledger:     l,
		Metadata:   stores.metadata,
		Events:     stores.events,
		Stream:     hub,
		Logger:     logger,
	})

	servers := []*http.Server{{Addr: cfg.ListenAddr, Handler: handler}}
	if cfg.MetricsAddr != "" && cfg.MetricsAddr != cfg.ListenAddr {
		mux := http.NewServeMux()
		mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ok"))
		})
		mux.Handle("/metrics", observability.Handler())
		servers = append(servers, &http.Server{Addr: cfg.MetricsAddr, Handler: mux})
	}

	errCh := make(chan error, len(servers))
	for _, srv := range servers {
		go func(srv *http.Server) {
			logger.Info("starting HTTP server", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("http server %s: %w", srv.Addr, err)
			}
		}(srv)
	}

	logger.Info("guardian ready",
		"governance_id", govID.String(),
		"participants", len(participants),
		"threshold", cfg.Threshold,
		"use_memory", cfg.UseMemory,
	)

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case runErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownDuration())
	defer cancel()
	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http shutdown", "addr", srv.Addr, "error", err)
		}
	}

	logger.Info("shutdown complete")
	return runErr
}
