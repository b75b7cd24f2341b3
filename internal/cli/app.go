// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/jeranaias/chatfile/internal/config"
	"github.com/jeranaias/chatfile/internal/ignore"
	"github.com/jeranaias/chatfile/internal/ollama"
	"github.com/jeranaias/chatfile/internal/session"
	"github.com/jeranaias/chatfile/internal/tools"
)

// Version is stamped at build time.
var Version = "dev"

// =============================================================================
// ENTRY POINT
// =============================================================================

// Run parses arguments, assembles a session, and drives it to
// completion. Returns the process exit code.
func Run(rawArgs []string) int {
	args, err := ParseArgs(rawArgs)
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("error: ")+err.Error())
		fmt.Fprint(os.Stderr, Usage)
		return 2
	}

	if args.BoolFlag("help") {
		fmt.Print(Usage)
		return 0
	}
	if args.BoolFlag("version") {
		fmt.Println("chatfile " + Version)
		return 0
	}

	cfg, err := config.Load(args.Flag("config"))
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("config: ")+err.Error())
		return 1
	}
	applyFlagOverrides(cfg, args)

	log, err := newLogger(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("log: ")+err.Error())
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := ollama.NewClient(&ollama.Config{
		BaseURL:     cfg.Ollama.URL,
		Model:       cfg.Ollama.Model,
		Temperature: cfg.Ollama.Temperature,
	})

	if args.BoolFlag("list-models") {
		return listModels(ctx, client)
	}

	file := args.File()
	if file == "" {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("error: ")+"a conversation file is required")
		fmt.Fprint(os.Stderr, Usage)
		return 2
	}

	root := args.Flag("root")
	if root == "" {
		root = filepath.Dir(file)
	}

	if err := runSession(ctx, cfg, client, file, root, args.BoolFlag("compress"), log); err != nil {
		if ctx.Err() != nil {
			fmt.Println(DimStyle.Render("\nsession interrupted"))
			return 0
		}
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("error: ")+err.Error())
		return 1
	}
	fmt.Println(DimStyle.Render("session ended"))
	return 0
}

func applyFlagOverrides(cfg *config.Config, args *Args) {
	if model := args.Flag("model"); model != "" {
		cfg.Ollama.Model = model
	}
	if u := args.Flag("url"); u != "" {
		cfg.Ollama.URL = u
	}
	if editor := args.Flag("editor"); editor != "" {
		cfg.Session.Editor = editor
	}
	if level := args.Flag("log-level"); level != "" {
		cfg.Log.Level = level
	}
}

// =============================================================================
// WIRING
// =============================================================================

func runSession(ctx context.Context, cfg *config.Config, client *ollama.Client, file, root string, compressFlag bool, log zerolog.Logger) error {
	if err := client.CheckRunning(ctx); err != nil {
		return fmt.Errorf("cannot reach Ollama at %s: %w", cfg.Ollama.URL, err)
	}

	cache := ignore.NewCache(filepath.Join(root, cfg.Session.IgnoreFile))
	registry := tools.NewDefaultRegistry(root, cache)
	registry.Register(tools.AskUserTool(&LineInput{}))
	executor := tools.NewExecutor(registry, log)

	confirmer := &PromptConfirmer{}
	executor.SetPermissionCallback(func(tool *tools.Tool, params map[string]any, preview string) tools.Decision {
		dec, err := confirmer.Confirm(ctx, fmt.Sprintf("Allow %s?", tool.Name), preview)
		if err != nil {
			log.Warn().Err(err).Str("tool", tool.Name).Msg("confirmation failed, denying")
			return tools.DecisionDeny
		}
		return dec
	})

	fmt.Println(TitleStyle.Render("chatfile") + DimStyle.Render(TruncateLine("  "+cfg.Ollama.Model+"  "+file)))
	renderer := NewRenderer()

	s := &session.Session{
		File:         file,
		Compress:     compressFlag || cfg.Session.Compress,
		SystemPrompt: cfg.Session.SystemPrompt,
		Model:        client,
		Editor:       &EditorSpawner{Command: cfg.EditorCommand()},
		Confirmer:    confirmer,
		Executor:     executor,
		OnChunk: func(text string) {
			fmt.Print(DimStyle.Render(text))
		},
		OnAssistantDone: func(text string) {
			// Replace the raw stream with the rendered version.
			fmt.Print("\n" + renderer.Markdown(text))
		},
		Log: log,
	}
	return s.Run(ctx)
}

func listModels(ctx context.Context, client *ollama.Client) int {
	models, err := client.ListModels(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("error: ")+err.Error())
		return 1
	}
	if len(models) == 0 {
		fmt.Println(WarningStyle.Render("no models installed"))
		return 0
	}
	for _, m := range models {
		fmt.Printf("%s %s\n", m.Name, DimStyle.Render(fmt.Sprintf("(%.1f GB)", float64(m.Size)/1e9)))
	}
	return 0
}

// =============================================================================
// LOGGING
// =============================================================================

// newLogger builds the zerolog logger per config: console writer on
// stderr, or plain JSON when logging to a file.
func newLogger(cfg config.LogConfig) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q", cfg.Level)
	}

	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return zerolog.Nop(), err
		}
		return zerolog.New(f).Level(level).With().Timestamp().Logger(), nil
	}

	writer := zerolog.ConsoleWriter{Out: os.Stderr}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger(), nil
}
