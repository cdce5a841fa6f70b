// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/recollect"
	"github.com/poiesic/recollect/config"
	"github.com/poiesic/recollect/metrics"
	"github.com/poiesic/recollect/reindex"
	"github.com/poiesic/recollect/search"
	"github.com/poiesic/recollect/server"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "recollect",
		Usage: "Permission-aware question answering over message history",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML configuration file",
				EnvVars: []string{"RECOLLECT_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "data-dir",
				Aliases: []string{"d"},
				Usage:   "Directory holding the message, document and lexical stores",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Answer a question from the messages a user can see",
				ArgsUsage: "QUERY...",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "user",
						Aliases:  []string{"u"},
						Usage:    "ID of the user asking",
						Required: true,
					},
				},
			},
			{
				Name:   "seed",
				Usage:  "Load messages from a JSON file",
				Action: seedCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "JSON array of messages, or - for stdin",
						Required: true,
					},
				},
			},
			{
				Name:   "serve",
				Usage:  "Serve the search API over HTTP",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address, overriding http.addr from the config",
					},
				},
			},
			{
				Name:   "reindex",
				Usage:  "Rebuild the retrieval index from stored messages",
				Action: reindexCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of messages to index in each batch",
						Value: reindex.DefaultBatchSize,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N messages",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum attempts per batch",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
		},
	}
}

func loadConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return config.Config{}, err
		}
	}
	if dir := c.String("data-dir"); dir != "" {
		cfg.Storage.Dir = dir
	}
	// An explicit --log-level wins over the config file
	if !c.IsSet("log-level") {
		if err := configureLogging(cfg.Logging.Level); err != nil {
			return config.Config{}, err
		}
	}
	return cfg, nil
}

func openEngine(cfg config.Config) (*recollect.Engine, error) {
	paths := recollect.Paths{
		Messages:  cfg.MessagesPath(),
		Documents: cfg.DocumentsPath(),
		Lexical:   cfg.LexicalPath(),
	}
	engine, err := recollect.Open(paths, recollect.WithAIConfig(cfg.AIConfig()))
	if err != nil {
		return nil, fmt.Errorf("failed to open stores in %s: %w", cfg.Storage.Dir, err)
	}
	return engine, nil
}

func searchCommand(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("a query is required")
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	engine, err := openEngine(cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	searcher, err := engine.NewSearcher(search.WithConfig(cfg.SearchConfig()))
	if err != nil {
		return err
	}
	defer searcher.Close()

	answer, err := searcher.PerformSearch(c.Context, query, c.String("user"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(answer)
}

func seedCommand(c *cli.Context) error {
	var in io.Reader = os.Stdin
	if path := c.String("file"); path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()
		in = f
	}

	messages, err := recollect.ReadMessages(in)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	engine, err := openEngine(cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	if err := engine.Add(c.Context, messages...); err != nil {
		return fmt.Errorf("failed to add messages: %w", err)
	}
	fmt.Fprintf(c.App.ErrWriter, "Seeded %d messages into %s\n", len(messages), cfg.Storage.Dir)
	return nil
}

func serveCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	engine, err := openEngine(cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	searcher, err := engine.NewSearcher(search.WithConfig(cfg.SearchConfig()))
	if err != nil {
		return err
	}
	defer searcher.Close()

	if addr := c.String("addr"); addr != "" {
		cfg.HTTP.Addr = addr
	}
	metrics.Register()

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      server.New(searcher, slog.Default()).Handler(),
		ReadTimeout:  cfg.ReadTimeout(),
		WriteTimeout: cfg.WriteTimeout(),
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", cfg.HTTP.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

func reindexCommand(c *cli.Context) error {
	reindexConfig := &reindex.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if err := reindexConfig.Validate(); err != nil {
		return err
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	engine, err := openEngine(cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	fmt.Fprintf(c.App.ErrWriter, "Data directory: %s\n", cfg.Storage.Dir)
	fmt.Fprintf(c.App.ErrWriter, "Embedding model: %s\n", cfg.AI.EmbeddingModel)
	fmt.Fprintln(c.App.ErrWriter)

	if _, err := engine.Reindex(c.Context, reindexConfig, c.App.ErrWriter); err != nil {
		return fmt.Errorf("reindex failed: %w", err)
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	return configureLogging(c.String("log-level"))
}

func configureLogging(levelStr string) error {
	levelStr = strings.ToLower(levelStr)

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
