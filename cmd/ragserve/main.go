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
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/poiesic/ragserve"
	"github.com/poiesic/ragserve/ai"
	"github.com/poiesic/ragserve/chat"
	"github.com/poiesic/ragserve/chunker"
	"github.com/poiesic/ragserve/server"
	"github.com/poiesic/ragserve/storage/badger"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "ragserve",
		Usage: "Retrieval-augmented chat service backed by Ollama",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP service",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "HTTP listen address",
						Value: server.DefaultAddr,
					},
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "collection",
						Usage: "Chunk collection name",
						Value: ragserve.DefaultCollection,
					},
					&cli.StringFlag{
						Name:  "ollama-url",
						Usage: "Ollama server base URL",
						Value: "http://localhost:11434",
					},
					&cli.StringFlag{
						Name:  "model",
						Usage: "Generation model name",
						Value: "phi3:3.8b",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
						Value: "nomic-embed-text",
					},
					&cli.Float64Flag{
						Name:  "temperature",
						Usage: "Default sampling temperature",
						Value: 0.4,
					},
					&cli.IntFlag{
						Name:  "chunk-size",
						Usage: "Maximum chunk length in characters",
						Value: chunker.DefaultChunkSize,
					},
					&cli.IntFlag{
						Name:  "chunk-overlap",
						Usage: "Characters carried between consecutive chunks",
						Value: chunker.DefaultChunkOverlap,
					},
					&cli.IntFlag{
						Name:  "search-limit",
						Usage: "Semantic matches folded into the context",
						Value: chat.DefaultSearchLimit,
					},
					&cli.IntFlag{
						Name:  "history-limit",
						Usage: "Past exchanges folded into the context",
						Value: chat.DefaultHistoryLimit,
					},
					&cli.StringSliceFlag{
						Name:  "kafka-broker",
						Usage: "Kafka broker address (repeatable; omit to disable events)",
					},
				},
			},
			{
				Name:   "stats",
				Usage:  "Print chunk store statistics",
				Action: statsCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "collection",
						Usage: "Chunk collection name",
						Value: ragserve.DefaultCollection,
					},
				},
			},
			{
				Name:   "reset",
				Usage:  "Delete every stored chunk",
				Action: resetCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "collection",
						Usage: "Chunk collection name",
						Value: ragserve.DefaultCollection,
					},
					&cli.BoolFlag{
						Name:  "yes",
						Usage: "Skip the confirmation prompt",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func serveCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	aiConfig := ai.NewConfig(
		ai.WithServerURL(c.String("ollama-url")),
		ai.WithModel(c.String("model")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithTemperature(c.Float64("temperature")),
	)

	opts := []ragserve.AppOption{
		ragserve.WithAIConfig(aiConfig),
		ragserve.WithCollection(c.String("collection")),
		ragserve.WithChunkerOptions(
			chunker.WithChunkSize(c.Int("chunk-size")),
			chunker.WithOverlap(c.Int("chunk-overlap")),
		),
		ragserve.WithChatOptions(
			chat.WithSearchLimit(c.Int("search-limit")),
			chat.WithHistoryLimit(c.Int("history-limit")),
		),
	}
	if brokers := c.StringSlice("kafka-broker"); len(brokers) > 0 {
		opts = append(opts, ragserve.WithKafkaBrokers(brokers))
	}

	app, err := ragserve.NewApp(ctx, c.String("db"), opts...)
	if err != nil {
		return fmt.Errorf("failed to start application: %w", err)
	}
	defer app.Close()

	srv := server.NewServer(app.ChatService(), server.WithAddr(c.String("addr")))
	return srv.Start(ctx)
}

func statsCommand(c *cli.Context) error {
	ctx := context.Background()

	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	store, err := badger.NewChunkStore(backend, c.String("collection"))
	if err != nil {
		return fmt.Errorf("failed to open chunk store: %w", err)
	}
	defer store.Close()

	stats, err := store.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to read stats: %w", err)
	}

	fmt.Printf("Collection: %s\n", stats.CollectionName)
	fmt.Printf("Chunks:     %d\n", stats.TotalChunks)
	return nil
}

func resetCommand(c *cli.Context) error {
	ctx := context.Background()

	if !c.Bool("yes") {
		fmt.Fprintf(os.Stderr, "This deletes every stored chunk in %s. Continue? [y/N] ", c.String("db"))
		var answer string
		fmt.Scanln(&answer)
		if strings.ToLower(strings.TrimSpace(answer)) != "y" {
			fmt.Fprintln(os.Stderr, "Aborted.")
			return nil
		}
	}

	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	store, err := badger.NewChunkStore(backend, c.String("collection"))
	if err != nil {
		return fmt.Errorf("failed to open chunk store: %w", err)
	}
	defer store.Close()

	if err := store.Reset(ctx); err != nil {
		return fmt.Errorf("failed to reset store: %w", err)
	}

	fmt.Fprintln(os.Stderr, "Store reset.")
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

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
