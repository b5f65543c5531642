package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"cloud.google.com/go/firestore"
	tea "github.com/charmbracelet/bubbletea"
	"google.golang.org/api/option"

	"github.com/AugustoBSimionato/toodo/internal/config"
	"github.com/AugustoBSimionato/toodo/pkg/auth"
	"github.com/AugustoBSimionato/toodo/pkg/store"
)

var memory = flag.Bool("memory", false, "run against an in-memory store and session (no remote services)")

func main() {
	flag.Parse()
	cfg := config.Load()

	logger, closeLog := newLogger(cfg)
	defer closeLog()

	var (
		ses auth.Session
		st  store.Store
	)
	if *memory {
		ses = auth.NewMemorySession()
		st = store.NewMemory()
	} else {
		if err := cfg.Validate(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		var opts []option.ClientOption
		if cfg.CredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
		}
		client, err := firestore.NewClient(context.Background(), cfg.ProjectID, opts...)
		if err != nil {
			fmt.Fprintln(os.Stderr, "firestore:", err)
			os.Exit(1)
		}
		defer client.Close()
		st = store.NewFirestore(client, logger)

		var authOpts []auth.FirebaseOption
		if cfg.AuthEndpoint != "" {
			authOpts = append(authOpts, auth.WithEndpoint(cfg.AuthEndpoint))
		}
		ses = auth.NewFirebase(cfg.FirebaseAPIKey, logger, authOpts...)
	}

	a := newApp(logger, st, ses)
	p := tea.NewProgram(a, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogger writes structured logs to the user cache dir; the terminal
// belongs to the TUI.
func newLogger(cfg config.Config) (*slog.Logger, func()) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return slog.New(slog.NewJSONHandler(io.Discard, nil)), func() {}
	}
	dir = filepath.Join(dir, "toodo")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return slog.New(slog.NewJSONHandler(io.Discard, nil)), func() {}
	}
	f, err := os.OpenFile(filepath.Join(dir, "toodo.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return slog.New(slog.NewJSONHandler(io.Discard, nil)), func() {}
	}
	logger := slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: cfg.ParseLogLevel()}))
	return logger, func() { f.Close() }
}
