// Package main is the wonderland CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/hyperjump/wonderland/internal/cli"
	"github.com/hyperjump/wonderland/internal/config"
	"github.com/hyperjump/wonderland/internal/embedding"
	"github.com/hyperjump/wonderland/internal/indexer"
	"github.com/hyperjump/wonderland/internal/models"
	"github.com/hyperjump/wonderland/internal/query"
	"github.com/hyperjump/wonderland/internal/server"
	"github.com/hyperjump/wonderland/internal/vectordb"
	"github.com/hyperjump/wonderland/internal/watcher"
	"github.com/hyperjump/wonderland/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

const (
	defaultConfigPath = "/usr/local/etc/wonderland/config.yaml"
	defaultServerURL  = "http://localhost:8000"
	shutdownTimeout   = 10 * time.Second
)

// loadConfig loads config from path and applies environment overrides. When path is the
// default, config.yaml in the current directory wins if present, and a missing default file
// falls back to built-in defaults. Returns the path actually loaded ("" for defaults).
func loadConfig(path string) (*config.Config, string, error) {
	cfg, resolved, err := readConfig(path)
	if err != nil {
		return nil, "", err
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return nil, "", err
	}
	return cfg, resolved, nil
}

func readConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
			return config.Default(), "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "build":
		runBuild()
	case "query":
		runQuery()
	case "health":
		runHealth()
	case "version", "--version", "-v":
		fmt.Printf("wonderland version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
		zap.String("index_path", cfg.Index.Path),
		zap.String("embedding_provider", cfg.Embedding.Provider),
	)

	if cfg.Server.TracingOrDefault() {
		tp, err := utils.InstallTracing(os.Stdout)
		if err != nil {
			logger.Warn("tracing disabled", zap.Error(err))
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := tp.Shutdown(ctx); err != nil {
					logger.Warn("tracer shutdown failed", zap.Error(err))
				}
			}()
		}
	}

	db, embedder := loadVectorDB(context.Background(), cfg, logger)
	if embedder != nil {
		defer embedder.Close()
	}
	// A nil *vectordb.DB must not become a non-nil Searcher.
	var searcher query.Searcher
	if db != nil {
		defer db.Close()
		searcher = db
	}

	svc := query.NewService(searcher, cfg.Query, logger)
	srv := server.NewServer(svc, db, &cfg.Server, logger)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		logger.Warn("shutdown failed", zap.Error(err))
	}
}

// loadVectorDB builds the embedder and opens the index. Any failure is logged and yields a
// nil DB so the server starts in degraded mode. The returned embedder, if non-nil, is owned
// by the caller.
func loadVectorDB(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*vectordb.DB, *embedding.Framed) {
	embedder, err := embedding.NewFramedEmbedder(&cfg.Embedding)
	if err != nil {
		logger.Error("Failed to create embedding provider",
			zap.String("provider", cfg.Embedding.Provider),
			zap.String("model_path", cfg.Embedding.ModelPath),
			zap.Error(err))
		return nil, nil
	}
	db, err := vectordb.Open(ctx, cfg.Index.Path, embedder, vectordb.Options{Model: cfg.Embedding.Model}, logger)
	if err != nil {
		logger.Error("Failed to load vector database",
			zap.String("path", cfg.Index.Path),
			zap.Error(err))
		logWorkingDirectory(logger)
		return nil, embedder
	}
	m := db.Manifest()
	logger.Info("Vector database loaded",
		zap.String("path", db.Dir()),
		zap.String("model", m.Model),
		zap.String("index_type", m.IndexType),
		zap.Int("passages", m.PassageCount))
	return db, embedder
}

// logWorkingDirectory logs the working directory and its subdirectories, which is usually
// enough to see why a relative index path did not resolve.
func logWorkingDirectory(logger *zap.Logger) {
	cwd, err := os.Getwd()
	if err != nil {
		logger.Warn("cannot determine working directory", zap.Error(err))
		return
	}
	entries, err := os.ReadDir(cwd)
	if err != nil {
		logger.Warn("cannot list working directory", zap.String("cwd", cwd), zap.Error(err))
		return
	}
	dirs := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		}
	}
	logger.Info("working directory", zap.String("cwd", cwd), zap.Strings("directories", dirs))
}

func runBuild() {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	corpus := fs.String("corpus", "", "corpus file (default: build.corpus_path from config)")
	out := fs.String("out", "", "index directory (default: index.path from config)")
	watch := fs.Bool("watch", false, "rebuild when the corpus file changes")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	corpusPath := cfg.Build.CorpusPath
	if *corpus != "" {
		corpusPath = *corpus
	}
	outDir := cfg.Index.Path
	if *out != "" {
		outDir = *out
	}

	embedder, err := embedding.NewFramedEmbedder(&cfg.Embedding)
	if err != nil {
		logger.Fatal("Failed to create embedding provider", zap.Error(err))
	}
	defer embedder.Close()
	builder := indexer.NewBuilder(embedder, cfg, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	manifest, err := builder.Build(ctx, corpusPath, outDir)
	if err != nil {
		fmt.Printf("Build failed: %v\n", err)
		if !*watch {
			os.Exit(1)
		}
	} else {
		fmt.Printf("Indexed %d passage(s) from %s into %s\n", manifest.PassageCount, corpusPath, outDir)
	}
	if !*watch {
		return
	}

	w := watcher.NewWatcher(corpusPath, func(path string) {
		if builder.UpToDate(path, outDir) {
			logger.Debug("corpus unchanged, skipping rebuild", zap.String("corpus", path))
			return
		}
		m, err := builder.Build(ctx, path, outDir)
		if err != nil {
			logger.Warn("rebuild failed", zap.String("corpus", path), zap.Error(err))
			return
		}
		logger.Info("index rebuilt",
			zap.String("corpus", path),
			zap.String("out", outDir),
			zap.Int("passages", m.PassageCount))
	}, watcher.WithLogger(logger))
	if err := w.Start(ctx); err != nil {
		logger.Fatal("Failed to start watcher", zap.Error(err))
	}
	defer w.Stop()
	fmt.Printf("Watching %s (Ctrl+C to stop)\n", corpusPath)
	<-ctx.Done()
}

// buildQueryText joins all positional args with spaces so multi-word queries work the same
// with or without shell quoting.
func buildQueryText(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// queryArgsReorder moves flags and their values ahead of the query words, keeping the words
// in order. Go's flag package stops at the first non-flag argument, so
// "wonderland query rabbit -top-k 5 hole" would otherwise leave -top-k unparsed. Every query
// flag takes a value, either "-name value" or "-name=value".
func queryArgsReorder(args []string) []string {
	flags := make([]string, 0, len(args))
	words := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			flags = append(flags, a)
			words = append(words, args[i+1:]...)
			break
		}
		if len(a) < 2 || a[0] != '-' {
			words = append(words, a)
			continue
		}
		flags = append(flags, a)
		if !strings.Contains(a, "=") && i+1 < len(args) {
			i++
			flags = append(flags, args[i])
		}
	}
	return append(flags, words...)
}

func runQuery() {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	serverURL := fs.String("server", defaultServerURL, "server URL")
	topK := fs.Int("top-k", 0, "number of passages (0 = server default)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(queryArgsReorder(os.Args[2:]))

	text := buildQueryText(fs.Args())
	if text == "" {
		fmt.Println("Usage: wonderland query [flags] <query...>")
		fs.PrintDefaults()
		os.Exit(1)
	}
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	req := &models.QueryRequest{Query: text}
	if *topK > 0 {
		req.TopK = topK
	}
	response, err := queryViaHTTP(*serverURL, req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Query failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteQueryResults(os.Stdout, response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func queryViaHTTP(serverURL string, req *models.QueryRequest) (*models.QueryResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(strings.TrimRight(serverURL, "/")+"/api/query", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, responseError(resp)
	}
	var response models.QueryResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &response, nil
}

func runHealth() {
	fs := flag.NewFlagSet("health", flag.ExitOnError)
	serverURL := fs.String("server", defaultServerURL, "server URL")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	health, err := healthViaHTTP(*serverURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Health check failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteHealth(os.Stdout, health, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
	if !health.VectorDBLoaded {
		os.Exit(2)
	}
}

func healthViaHTTP(serverURL string) (*models.HealthResponse, error) {
	resp, err := http.Get(strings.TrimRight(serverURL, "/") + "/health")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, responseError(resp)
	}
	var health models.HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &health, nil
}

// responseError turns a non-2xx response into an error, preferring the {"error": ...} body.
func responseError(resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var e models.ErrorResponse
	if json.Unmarshal(b, &e) == nil && e.Error != "" {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, e.Error)
	}
	return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
}

func printUsage() {
	fmt.Print(`wonderland - passage retrieval over Alice in Wonderland

Usage:
  wonderland <command> [flags]

Commands:
  server    Start the HTTP query server
  build     Build the index directory from the corpus
  query     Query a running server
  health    Check a running server
  version   Print version
  help      Show this help

Examples:
  wonderland build -corpus alice_in_wonderland.txt -out wonderland_db
  wonderland build -watch
  wonderland server -config config.yaml
  wonderland query -top-k 2 Who is the White Rabbit?
  wonderland query -output json "Why is a raven like a writing-desk?"
  wonderland health -server http://localhost:8000

Configuration:
  Default config path: /usr/local/etc/wonderland/config.yaml (config.yaml in the current
  directory takes precedence). Without a config file built-in defaults are used.
  Environment: PORT, WONDERLAND_PORT, WONDERLAND_HOST, WONDERLAND_INDEX_PATH,
  WONDERLAND_EMBEDDING_PROVIDER, WONDERLAND_EMBEDDING_MODEL_PATH, WONDERLAND_OLLAMA_URL,
  WONDERLAND_DEBUG.
`)
}
