package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/iammorganparry/backlog/internal/backlog"
	"github.com/iammorganparry/backlog/internal/config"
	"github.com/iammorganparry/backlog/internal/inference"
	"github.com/iammorganparry/backlog/internal/models"
	"github.com/iammorganparry/backlog/internal/store"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "backlog",
		Short: "Backlog Buddy - inspect and drive backlog sessions from the terminal",
		Long: `Operates directly on the configured state store (STORE_DRIVER, BACKLOG_DB_PATH).
Run it against a stopped server, or against the same SQLite file; writes for a
session are only serialized within one process.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(sessionsCmd())
	rootCmd.AddCommand(stateCmd())
	rootCmd.AddCommand(chatCmd())
	rootCmd.AddCommand(cleanupCmd())

	return rootCmd
}

// runtime bundles what every subcommand needs.
type runtime struct {
	svc   *backlog.Service
	store store.StateStore
}

func openRuntime(cmd *cobra.Command) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	level := slog.LevelWarn
	if cfg.LogLevel == "debug" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	st, err := store.OpenDriver(cfg.StoreDriver, cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	var seed []models.Issue
	if cfg.SeedFile != "" {
		if seed, err = backlog.LoadSeedFile(cfg.SeedFile); err != nil {
			st.Close()
			return nil, err
		}
	}

	ollama := inference.NewOllamaClient(cfg.OllamaBaseURL, cfg.ChatModel, cfg.ChatFormat, cfg.ChatTimeout)
	svc := backlog.NewService(st, ollama, backlog.Options{
		Seed:        seed,
		NoteLimit:   cfg.NoteLimit,
		RecentNotes: cfg.RecentNotes,
		AutoCleanup: cfg.AutoCleanup,
	}, logger)

	return &runtime{svc: svc, store: st}, nil
}

func sessionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List stored sessions, most recently updated first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.store.Close()

			sessions, err := rt.svc.ListSessions(cmd.Context())
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No sessions.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SESSION\tISSUES\tNOTES\tLAST UPDATED")
			for _, s := range sessions {
				updated := "-"
				if s.LastUpdated != nil {
					updated = s.LastUpdated.UTC().Format(time.RFC3339)
				}
				fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", s.ID, s.IssueCount, s.NoteCount, updated)
			}
			return w.Flush()
		},
	}
}

func stateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "state <session>",
		Short: "Print a session's backlog state as JSON, seeding it if new",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.store.Close()

			state, err := rt.svc.GetState(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), state)
		},
	}
}

func chatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat <session> <message>",
		Short: "Send a message to the assistant and print its reply",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, _ := cmd.Flags().GetString("user")
			showState, _ := cmd.Flags().GetBool("state")

			rt, err := openRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.store.Close()

			result, err := rt.svc.HandleChatMessage(cmd.Context(), args[0], args[1], user)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), result.Reply)
			if showState {
				fmt.Fprintln(cmd.OutOrStdout())
				return printJSON(cmd.OutOrStdout(), result.State)
			}
			return nil
		},
	}

	cmd.Flags().StringP("user", "u", envOr("USER", ""), "Name recorded with the note")
	cmd.Flags().Bool("state", false, "Also print the updated state")

	return cmd
}

func cleanupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup <session>",
		Short: "Trim a session's notes to the configured limit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.store.Close()

			removed, state, err := rt.svc.CleanupStaleNotes(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d notes from %s (%d kept)\n", removed, args[0], len(state.Notes))
			return nil
		},
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
