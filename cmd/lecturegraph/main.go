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
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/lecturegraph/ai"
	"github.com/poiesic/lecturegraph/ai/openai"
	"github.com/poiesic/lecturegraph/core"
	"github.com/poiesic/lecturegraph/lookup"
	"github.com/poiesic/lecturegraph/pipeline"
	"github.com/poiesic/lecturegraph/registry"
	"github.com/poiesic/lecturegraph/storage"
	"github.com/poiesic/lecturegraph/storage/badger"
)

func main() {
	app := &cli.App{
		Name:   "lecturegraph",
		Usage:  "Knowledge-graph assembly for multimodal lecture material",
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
				Name:   "run",
				Usage:  "Ingest a lecture manifest and run the pipeline",
				Action: runCommand,
				Flags: append(aiFlags(),
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "manifest",
						Aliases:  []string{"m"},
						Usage:    "Path to the JSON lecture manifest",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "media-dir",
						Usage: "Root directory for segment payload references",
						Value: ".",
					},
					&cli.StringFlag{
						Name:  "asset-dir",
						Usage: "Directory for generated audio assets (requires tts-model)",
					},
					&cli.BoolFlag{
						Name:  "no-lookup",
						Usage: "Skip external definition sources during enrichment",
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Worker pool size for parallel stages",
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for external calls",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 2 * time.Second,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N lectures",
						Value: 1,
					},
				),
			},
			{
				Name:   "export",
				Usage:  "Write the assembled corpus graph as JSON",
				Action: exportCommand,
				Flags: append(aiFlags(),
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Output file (defaults to stdout)",
					},
				),
			},
			{
				Name:   "status",
				Usage:  "Show lecture pipeline states",
				Action: statusCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func aiFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "ai-host",
			Usage: "OpenAI-compatible service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "spotter-model",
			Usage: "Model for entity spotting",
			Value: "qwen2.5:3b",
		},
		&cli.StringFlag{
			Name:  "synth-model",
			Usage: "Model for explanation synthesis",
			Value: "qwen2.5:3b",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Model for text embeddings",
			Value: "embeddinggemma",
		},
		&cli.StringFlag{
			Name:  "tts-model",
			Usage: "Model for speech synthesis (empty disables audio assets)",
		},
	}
}

// manifest is the run command's input document.
type manifest struct {
	Lectures []manifestLecture `json:"lectures"`
}

type manifestLecture struct {
	Title    string            `json:"title"`
	Language string            `json:"language"`
	Segments []manifestSegment `json:"segments"`
}

type manifestSegment struct {
	Modality string  `json:"modality"`
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Payload  string  `json:"payload"`
}

func loadManifest(path string) (*manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %q: %w", path, err)
	}
	if len(m.Lectures) == 0 {
		return nil, fmt.Errorf("manifest %q lists no lectures", path)
	}
	return &m, nil
}

func parseModality(name string) (core.Modality, error) {
	switch strings.ToLower(name) {
	case "text":
		return core.ModalityText, nil
	case "image", "slide", "page":
		return core.ModalityImage, nil
	case "audio-derived-text", "audio", "transcript":
		return core.ModalityAudioText, nil
	case "video-timestamp", "video":
		return core.ModalityVideoTimestamp, nil
	default:
		return 0, fmt.Errorf("unknown modality %q", name)
	}
}

// openRepositories opens the storage backend and all repositories.
// The returned cleanup closes them in reverse order.
func openRepositories(dbPath string) (storage.LectureRepository, storage.ConceptRepository, storage.TripleRepository, func(), error) {
	backend, err := badger.OpenBackend(dbPath, false)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	lectureRepo, err := badger.NewLectureRepository(backend)
	if err != nil {
		backend.Close()
		return nil, nil, nil, nil, fmt.Errorf("failed to create lecture repository: %w", err)
	}

	conceptRepo, err := badger.NewConceptRepository(backend)
	if err != nil {
		lectureRepo.Close()
		backend.Close()
		return nil, nil, nil, nil, fmt.Errorf("failed to create concept repository: %w", err)
	}

	tripleRepo, err := badger.NewTripleRepository(backend)
	if err != nil {
		conceptRepo.Close()
		lectureRepo.Close()
		backend.Close()
		return nil, nil, nil, nil, fmt.Errorf("failed to create triple repository: %w", err)
	}

	cleanup := func() {
		tripleRepo.Close()
		conceptRepo.Close()
		lectureRepo.Close()
		backend.Close()
	}
	return lectureRepo, conceptRepo, tripleRepo, cleanup, nil
}

func newProvider(c *cli.Context) (ai.Provider, error) {
	config := ai.NewConfig(
		ai.WithHost(c.String("ai-host")),
		ai.WithSpotterModel(c.String("spotter-model")),
		ai.WithSynthModel(c.String("synth-model")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithTTSModel(c.String("tts-model")),
	)

	var opts []openai.Option
	if assetDir := c.String("asset-dir"); assetDir != "" && c.String("tts-model") != "" {
		opts = append(opts, openai.WithAssetDir(assetDir))
	}

	provider, err := openai.NewProvider(config, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create AI provider: %w", err)
	}
	return provider, nil
}

func runCommand(c *cli.Context) error {
	ctx := context.Background()

	m, err := loadManifest(c.String("manifest"))
	if err != nil {
		return err
	}

	lectureRepo, conceptRepo, tripleRepo, cleanup, err := openRepositories(c.String("db"))
	if err != nil {
		return err
	}
	defer cleanup()

	provider, err := newProvider(c)
	if err != nil {
		return err
	}
	defer provider.Close()

	reg, err := registry.Open(ctx, conceptRepo,
		registry.WithNormalizer(provider.Normalizer()),
		registry.WithEmbedder(provider.Embedder()),
	)
	if err != nil {
		return fmt.Errorf("failed to open concept registry: %w", err)
	}
	defer reg.Close()

	var lookups *lookup.Chain
	if c.Bool("no-lookup") {
		lookups = lookup.NewChain()
	} else {
		lookups = lookup.NewChain(lookup.NewWikipedia(), lookup.NewConceptNet())
	}

	opts := []pipeline.Option{
		pipeline.WithRetryPolicy(c.Int("max-retries"), c.Duration("retry-delay")),
	}
	if size := c.Int("pool-size"); size > 0 {
		opts = append(opts, pipeline.WithPoolSize(size))
	}

	orch, err := pipeline.NewOrchestrator(lectureRepo, tripleRepo, reg, provider,
		pipeline.NewFileResolver(c.String("media-dir")), lookups, opts...)
	if err != nil {
		return fmt.Errorf("failed to create orchestrator: %w", err)
	}
	defer orch.Release()

	var ids []core.ID
	for _, entry := range m.Lectures {
		segments := make([]*core.Segment, 0, len(entry.Segments))
		for _, seg := range entry.Segments {
			modality, err := parseModality(seg.Modality)
			if err != nil {
				return fmt.Errorf("lecture %q: %w", entry.Title, err)
			}
			segments = append(segments, &core.Segment{
				Modality:   modality,
				Start:      seg.Start,
				End:        seg.End,
				PayloadRef: seg.Payload,
			})
		}

		lecture, err := orch.Ingest(ctx, &core.Lecture{Title: entry.Title, Language: entry.Language}, segments)
		if err != nil {
			return fmt.Errorf("failed to ingest lecture %q: %w", entry.Title, err)
		}
		ids = append(ids, lecture.Id)
	}

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Lectures: %d\n", len(ids))
	fmt.Fprintln(os.Stderr)

	tracker := pipeline.NewProgressTracker(os.Stderr, len(ids), c.Int("report-interval"))
	if err := orch.RunCorpus(ctx, ids, tracker); err != nil {
		return fmt.Errorf("pipeline run failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Completed in %s\n", tracker.Elapsed().Round(time.Millisecond))
	return nil
}

func exportCommand(c *cli.Context) error {
	ctx := context.Background()

	lectureRepo, conceptRepo, tripleRepo, cleanup, err := openRepositories(c.String("db"))
	if err != nil {
		return err
	}
	defer cleanup()

	provider, err := newProvider(c)
	if err != nil {
		return err
	}
	defer provider.Close()

	reg, err := registry.Open(ctx, conceptRepo)
	if err != nil {
		return fmt.Errorf("failed to open concept registry: %w", err)
	}
	defer reg.Close()

	orch, err := pipeline.NewOrchestrator(lectureRepo, tripleRepo, reg, provider,
		pipeline.NewFileResolver("."), lookup.NewChain())
	if err != nil {
		return fmt.Errorf("failed to create orchestrator: %w", err)
	}
	defer orch.Release()

	out := os.Stdout
	if path := c.String("out"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if err := orch.ExportCorpus(ctx, out); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	return nil
}

func statusCommand(c *cli.Context) error {
	ctx := context.Background()

	lectureRepo, _, _, cleanup, err := openRepositories(c.String("db"))
	if err != nil {
		return err
	}
	defer cleanup()

	lectures, err := lectureRepo.ListLectures(ctx)
	if err != nil {
		return fmt.Errorf("failed to list lectures: %w", err)
	}
	if len(lectures) == 0 {
		fmt.Println("No lectures ingested.")
		return nil
	}

	for _, lecture := range lectures {
		line := fmt.Sprintf("%20d  %-20s  %-3s  %s", lecture.Id, lecture.State, lecture.Language, lecture.Title)
		if len(lecture.Warnings) > 0 {
			line += fmt.Sprintf("  (%d warnings)", len(lecture.Warnings))
		}
		if lecture.StateReason != "" {
			line += "  " + lecture.StateReason
		}
		fmt.Println(line)
	}
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
