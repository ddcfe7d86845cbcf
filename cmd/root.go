package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "recipebox",
		Short: "Household recipe capture and pantry-aware shopping lists",
		Long: `Recipebox turns typed notes, dictated audio and photos of recipes into
structured recipes using vision-capable LLMs (OpenAI, Gemini or Ollama),
and diffs selected recipes against a shared pantry to build a shopping list.

Without API credentials extraction runs offline and returns a labelled
sample draft, so every command still works end to end.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			level, err := parseLevel(opts.logLevel)
			if err != nil {
				return err
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "recipebox.toml", "Path to TOML config file (optional)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log level: debug, info, warn, error")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newExtractCmd(opts))
	cmd.AddCommand(newRecipesCmd(opts))
	cmd.AddCommand(newPantryCmd(opts))
	cmd.AddCommand(newShopCmd(opts))

	return cmd
}

func parseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
	}
}
