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
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/poiesic/talentscout"
	"github.com/poiesic/talentscout/config"
	"github.com/poiesic/talentscout/core"
	"github.com/poiesic/talentscout/reembed"
	"github.com/poiesic/talentscout/retrieval"
	"github.com/poiesic/talentscout/server"
	"github.com/urfave/cli/v2"
)

// shutdownTimeout bounds graceful HTTP shutdown.
const shutdownTimeout = 10 * time.Second

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "talentscout",
		Usage: "Discover, rank and talk to research candidates",
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
				Usage:   "Path to a configuration file (default ./talentscout.yaml when present)",
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory (overrides configuration)",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "listen",
						Usage: "Address to listen on (overrides configuration)",
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Run a search job and print the ranked candidates",
				ArgsUsage: "QUERY",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "job-description",
						Usage: "Job description text used for scoring",
					},
					&cli.StringFlag{
						Name:  "seniority",
						Usage: "Requested level (junior, mid, senior, principal)",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Number of authors to discover",
						Value: 10,
					},
				},
			},
			{
				Name:   "ingest",
				Usage:  "Store social posts for a candidate",
				Action: ingestCommand,
				Flags: []cli.Flag{
					&cli.Uint64Flag{
						Name:     "candidate",
						Usage:    "Candidate id",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "file",
						Usage: "File with one post per line (- for stdin)",
					},
					&cli.StringFlag{
						Name:  "source",
						Usage: "Source label for posts read from a file",
						Value: "manual",
					},
					&cli.BoolFlag{
						Name:  "fetch",
						Usage: "Fetch posts from the configured social source instead",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum posts to fetch",
						Value: 50,
					},
				},
			},
			{
				Name:      "chat",
				Usage:     "Ask a candidate or a social handle a question",
				ArgsUsage: "MESSAGE",
				Action:    chatCommand,
				Flags: []cli.Flag{
					&cli.Uint64Flag{
						Name:  "candidate",
						Usage: "Candidate id",
					},
					&cli.StringFlag{
						Name:  "handle",
						Usage: "Social handle to chat with instead of a stored candidate",
					},
					&cli.StringFlag{
						Name:  "document",
						Usage: "File whose lines are the corpus for --handle when no posts can be fetched",
					},
					&cli.IntFlag{
						Name:  "k",
						Usage: "Number of posts to ground the answer on (0 for default)",
					},
				},
			},
			{
				Name:   "reembed",
				Usage:  "Recompute every post embedding with the configured embedder",
				Action: reembedCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of posts to process in each batch",
						Value: reembed.DefaultBatchSize,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N posts",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
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

// loadConfig reads configuration and applies global flag overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if db := c.String("db"); db != "" {
		cfg.Database = db
	}
	return cfg, nil
}

func openService(c *cli.Context) (*talentscout.Service, *config.Config, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, err
	}
	svc, err := talentscout.Open(cfg, talentscout.WithLogger(slog.Default()))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open service: %w", err)
	}
	return svc, cfg, nil
}

func serveCommand(c *cli.Context) error {
	svc, cfg, err := openService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	addr := cfg.Listen
	if listen := c.String("listen"); listen != "" {
		addr = listen
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              addr,
		Handler:           server.New(svc, server.WithAllowedOrigins(cfg.CORSOrigins...), server.WithLogger(slog.Default())),
		ReadHeaderTimeout: 10 * time.Second,
		// Open event streams end when the server context is cancelled.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", addr, "database", cfg.Database)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")
	filters := core.Filters{Seniority: c.String("seniority"), Limit: c.Int("limit")}

	svc, _, err := openService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	id, err := svc.SubmitJob(c.Context, query, c.String("job-description"), filters)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Search %s started\n", id)
	svc.WaitJobs()

	view, err := svc.JobStatus(c.Context, id)
	if err != nil {
		return err
	}
	if err := printResults(os.Stdout, view); err != nil {
		return err
	}
	if view.Error != "" {
		return fmt.Errorf("search %s failed: %s", id, view.Error)
	}
	return nil
}

func printResults(w io.Writer, view *talentscout.JobStatusView) error {
	fmt.Fprintf(w, "%s %s (%d%%)\n", view.SearchID, view.Status, view.Progress)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSCORE\tNAME\tAFFILIATION\tSENIORITY\tTOPICS")
	for _, r := range view.Results {
		fmt.Fprintf(tw, "%d\t%.3f\t%s\t%s\t%s\t%s\n",
			r.ID, r.Score, r.Name, r.Affiliation, r.Seniority, strings.Join(r.Topics, ", "))
	}
	return tw.Flush()
}

func ingestCommand(c *cli.Context) error {
	id := core.ID(c.Uint64("candidate"))
	file := c.String("file")
	if file == "" && !c.Bool("fetch") {
		return errors.New("one of --file or --fetch is required")
	}

	var posts []*core.SocialPost
	if file != "" {
		in := os.Stdin
		if file != "-" {
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}
		var err error
		if posts, err = readPosts(in, c.String("source")); err != nil {
			return fmt.Errorf("reading posts: %w", err)
		}
	}

	svc, _, err := openService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	if c.Bool("fetch") {
		result, err := svc.FetchPosts(c.Context, id, c.Int("limit"))
		if err != nil {
			return err
		}
		fmt.Printf("Fetched %d posts, %d new\n", result.Received, result.Added)
	}
	if len(posts) > 0 {
		result, err := svc.IngestPosts(c.Context, id, posts)
		if err != nil {
			return err
		}
		fmt.Printf("Read %d posts, %d new\n", result.Received, result.Added)
	}
	return nil
}

// readPosts treats every non-blank line as one post.
func readPosts(r io.Reader, source string) ([]*core.SocialPost, error) {
	var posts []*core.SocialPost
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		posts = append(posts, &core.SocialPost{Source: source, Text: text})
	}
	return posts, scanner.Err()
}

func chatCommand(c *cli.Context) error {
	message := strings.Join(c.Args().Slice(), " ")

	if c.IsSet("candidate") == c.IsSet("handle") {
		return fmt.Errorf("exactly one of --candidate or --handle is required")
	}
	var document string
	if path := c.String("document"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading document: %w", err)
		}
		document = string(data)
	}

	svc, _, err := openService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	var answer *retrieval.Answer
	if c.IsSet("handle") {
		answer, err = svc.ChatHandle(c.Context, retrieval.HandleChatRequest{
			Handle:   c.String("handle"),
			Message:  message,
			K:        c.Int("k"),
			Document: document,
		})
	} else {
		answer, err = svc.Chat(c.Context, retrieval.ChatRequest{
			CandidateID: core.ID(c.Uint64("candidate")),
			Message:     message,
			K:           c.Int("k"),
		})
	}
	if err != nil {
		return err
	}
	fmt.Println(answer.Text)
	if len(answer.Citations) > 0 {
		fmt.Fprintf(os.Stderr, "\nGrounded on %d %s posts:\n", len(answer.Citations), answer.Source)
		for _, cite := range answer.Citations {
			fmt.Fprintf(os.Stderr, "  [%.3f] %s\n", cite.Score, cite.Text)
		}
	}
	return nil
}

func reembedCommand(c *cli.Context) error {
	reembedConfig := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}

	if reembedConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if reembedConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if reembedConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	svc, cfg, err := openService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	fmt.Fprintf(os.Stderr, "Database: %s\n", cfg.Database)
	fmt.Fprintf(os.Stderr, "Embedding backend: %s\n", cfg.AI.EmbeddingBackend)
	fmt.Fprintln(os.Stderr)

	stats, err := svc.Reembed(c.Context, reembedConfig, os.Stderr)
	if err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Reembedded %d posts with %s in %s\n", stats.Posts, stats.Model, stats.Elapsed.Round(time.Millisecond))
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
