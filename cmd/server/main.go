package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"miniminds/internal/compliance/auditlog"
	"miniminds/internal/compliance/auditqueue"
	"miniminds/internal/compliance/classifier"
	"miniminds/internal/compliance/clients/remote"
	"miniminds/internal/compliance/conversation"
	"miniminds/internal/compliance/escalation"
	"miniminds/internal/compliance/gateway"
	"miniminds/internal/compliance/handler"
	"miniminds/internal/compliance/identity"
	compliancemetrics "miniminds/internal/compliance/metrics"
	"miniminds/internal/compliance/models"
	"miniminds/internal/platform/config"
	"miniminds/internal/platform/health"
	"miniminds/internal/platform/kvstore"
	"miniminds/internal/platform/logger"
	"miniminds/internal/platform/metrics"
	"miniminds/internal/platform/tracer"
	httptransport "miniminds/internal/transport/http"
	"miniminds/pkg/platform/circuit"
	"miniminds/pkg/platform/middleware/metadata"
	"miniminds/pkg/platform/middleware/ratelimit"
	"miniminds/pkg/platform/privacy"
)

// main wires dependencies and runs the HTTP server until SIGINT or SIGTERM.
// Domain logic lives in internal/compliance.
func main() {
	configPath := flag.String("config", "config.yaml", "path to an optional YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "miniminds-gateway: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	level, err := cfg.LogLevel()
	if err != nil {
		return err
	}
	log := logger.New(level)
	slog.SetDefault(log)

	log.Info("initializing miniminds gateway",
		"addr", cfg.Server.Addr,
		"environment", cfg.Server.Environment,
		"audit_store", cfg.Audit.Store,
		"escalation_durability", cfg.Escalation.Durability,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	platformMetrics := metrics.New(reg)
	complianceMetrics := compliancemetrics.New(reg)
	trace := tracer.NewOTel()
	fingerprinter := privacy.NewFingerprinter([]byte(cfg.Audit.FingerprintKey))
	checks := health.New(cfg.Server.Environment)

	backend, closeStore, err := openStore(ctx, cfg.Audit, checks)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Error("failed to close audit store", "error", err)
		}
	}()

	queue, err := auditqueue.Open(ctx, kvstore.Scope(backend, cfg.Audit.Namespace),
		auditqueue.WithCapacity(cfg.Audit.QueueCapacity),
		auditqueue.WithLogger(log),
		auditqueue.WithEvictionHook(func(models.AuditEntry) {
			complianceMetrics.IncrementQueueEvictions()
		}),
	)
	if err != nil {
		return fmt.Errorf("open audit queue: %w", err)
	}

	remoteCfg := func(baseURL string) remote.Config {
		return remote.Config{BaseURL: baseURL, APIKey: cfg.Remote.APIKey, Timeout: cfg.Remote.Timeout}
	}

	audit := auditlog.New(remote.NewAuditClient(remoteCfg(cfg.Remote.AuditURL)), queue,
		auditlog.WithFlushInterval(cfg.Audit.FlushInterval),
		auditlog.WithBreaker(circuit.New("audit",
			circuit.WithFailureThreshold(cfg.Audit.FailureThreshold),
			circuit.WithCooldown(cfg.Audit.ProbeCooldown),
		)),
		auditlog.WithMetrics(complianceMetrics),
		auditlog.WithLogger(log),
		auditlog.WithTracer(trace),
		auditlog.WithFingerprinter(fingerprinter),
	)
	checks.RegisterDegradedCheck("audit_remote", func(context.Context) error {
		if audit.Online() {
			return nil
		}
		return fmt.Errorf("audit API unreachable, %d entries queued", audit.Pending())
	})

	escalations := escalation.New(remote.NewEscalationClient(remoteCfg(cfg.Remote.EscalationURL)),
		escalation.WithLogger(log),
		escalation.WithMetrics(complianceMetrics),
		escalation.WithTracer(trace),
	)
	policy, err := escalation.ParsePolicy(cfg.Escalation.Durability)
	if err != nil {
		return err
	}

	var localizerOpts []classifier.LocalizerOption
	if cfg.Classifier.PhrasesFile != "" {
		phrases, err := classifier.LoadPhrases(cfg.Classifier.PhrasesFile)
		if err != nil {
			return fmt.Errorf("load phrases: %w", err)
		}
		localizerOpts = append(localizerOpts, classifier.WithPhrases(phrases))
	}

	history := conversation.New(
		conversation.WithMaxTurns(cfg.History.MaxTurns),
		conversation.WithIdleTTL(cfg.History.IdleTTL),
		conversation.WithMetrics(complianceMetrics),
	)

	gw := gateway.New(
		classifier.New(),
		classifier.NewLocalizer(localizerOpts...),
		remote.NewResponderClient(remoteCfg(cfg.Remote.ResponderURL)),
		audit,
		escalations,
		gateway.WithHistory(history),
		gateway.WithEscalationPolicy(policy),
		gateway.WithMaxQueryLength(cfg.Classifier.MaxQueryLength),
		gateway.WithMetrics(complianceMetrics),
		gateway.WithTracer(trace),
		gateway.WithLogger(log),
		gateway.WithFingerprinter(fingerprinter),
	)

	meta, err := metadata.New()
	if err != nil {
		return err
	}
	limiter := ratelimit.New(cfg.RateLimit.PerSecond, cfg.RateLimit.Burst,
		ratelimit.WithObserver(platformMetrics))

	router := httptransport.NewRouter(httptransport.Deps{
		Gateway: handler.New(gw, history, audit, log,
			handler.WithQueryMiddleware(limiter.Middleware("/v1/query"))),
		Health:         checks,
		Identity:       identity.NewService(cfg.Identity.SigningKey, identity.WithIssuer(cfg.Identity.Issuer)),
		Metadata:       meta,
		Metrics:        promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		Observer:       platformMetrics,
		RequestTimeout: cfg.Server.RequestTimeout,
	}, log)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	// Shutdown waits for open connections; end the history streams first.
	srv.RegisterOnShutdown(history.DisconnectAll)

	audit.Start()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	serveErr := g.Wait()

	// In-flight audit records finish before the final drain.
	gw.Wait()
	drainCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := audit.Stop(drainCtx); err != nil {
		log.Error("audit drain did not finish", "error", err, "pending", audit.Pending())
	}

	log.Info("server stopped", "pending_audit_entries", audit.Pending())
	return serveErr
}
