package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	relations "github.com/goliatone/go-relations"
	"github.com/goliatone/go-relations/internal/cliutil"
	"github.com/goliatone/go-relations/pkg/renderers/bootstrap"
)

func main() {
	var (
		configFlag    = flag.String("config", "relations.yaml", "relation config file or directory")
		fixturesFlag  = flag.String("fixtures", "", "JSON file seeding the in-memory record store")
		addrFlag      = flag.String("addr", ":8484", "HTTP listen address")
		baseFlag      = flag.String("base", "/admin", "path the relations are mounted under")
		metaFlag      = flag.String("meta", cliutil.MetaMemory, "metadata store: memory, bolt or redis")
		boltFlag      = flag.String("bolt", "relations.db", "bolt database path")
		redisFlag     = flag.String("redis", "localhost:6379", "redis address")
		secretFlag    = flag.String("secret", "", "token signing secret (defaults to $"+cliutil.SecretEnv+")")
		templatesFlag = flag.String("templates", "", "override templates directory")
		verboseFlag   = flag.Bool("v", false, "development logging")
		shutdownGrace = flag.Duration("grace", 5*time.Second, "shutdown grace period")
	)
	flag.Parse()

	logger, err := cliutil.Logger(*verboseFlag)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	rels, err := cliutil.LoadConfig(*configFlag)
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	records, err := cliutil.LoadFixtures(*fixturesFlag)
	if err != nil {
		logger.Fatal("load fixtures", zap.Error(err))
	}
	meta, closer, err := cliutil.OpenMeta(cliutil.MetaOptions{Kind: *metaFlag, BoltPath: *boltFlag, RedisAddr: *redisFlag})
	if err != nil {
		logger.Fatal("open meta store", zap.Error(err))
	}
	defer closer.Close()
	signer, err := cliutil.Signer(*secretFlag)
	if err != nil {
		logger.Fatal("token signer", zap.Error(err))
	}

	options := []relations.Option{
		relations.WithRecords(records),
		relations.WithMetaStore(meta),
		relations.WithSigner(signer),
		relations.WithLogger(logger),
		relations.WithBasePath(*baseFlag),
	}
	if dir := strings.TrimSpace(*templatesFlag); dir != "" {
		options = append(options, relations.WithRendererOptions(bootstrap.WithTemplatesDir(dir)))
	}
	engine, err := relations.New(rels, options...)
	if err != nil {
		logger.Fatal("build engine", zap.Error(err))
	}

	mux := http.NewServeMux()
	if _, err := engine.RegisterRoutes(mux); err != nil {
		logger.Fatal("register routes", zap.Error(err))
	}
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// tokens for trying the endpoints by hand
	for _, name := range engine.Names() {
		handler, _ := engine.Handler(name)
		nonce, err := handler.IssueToken(ctx, handler.Descriptor().PrimaryScope())
		if err != nil {
			logger.Warn("issue token", zap.String("relation", name), zap.Error(err))
			continue
		}
		logger.Info("primary token", zap.String("relation", name), zap.String("nonce", nonce))
	}

	httpServer := &http.Server{
		Addr:              *addrFlag,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()
	logger.Info("listening", zap.String("addr", *addrFlag), zap.Strings("relations", engine.Names()))

	select {
	case err := <-errChan:
		logger.Fatal("listen", zap.Error(err))
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), *shutdownGrace)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}
