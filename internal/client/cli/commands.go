package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	clientapi "github.com/iudanet/gophtext/internal/client/api"
	"github.com/iudanet/gophtext/internal/client/iocli"
	"github.com/iudanet/gophtext/internal/client/storage/boltdb"
	"github.com/iudanet/gophtext/internal/editor"
	"github.com/iudanet/gophtext/internal/validation"
	"github.com/iudanet/gophtext/pkg/api"
)

// BuildInfo информация о сборке, задается через ldflags
type BuildInfo struct {
	Version   string
	BuildDate string
	GitCommit string
}

// Ключи конфигурации клиента. Переменные окружения: GOPHTEXT_SERVER, GOPHTEXT_DB и т.д.
const (
	keyServer   = "server"
	keyDB       = "db"
	keyCodec    = "codec"
	keyClientID = "client-id"
	keyLogLevel = "log-level"
)

// NewRootCommand собирает команды клиента
func NewRootCommand(out iocli.IO, build BuildInfo) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("GOPHTEXT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "gophtext",
		Short:         "Collaborative text editing client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.String(keyServer, "http://localhost:8080", "Server URL")
	flags.String(keyDB, "gophtext-client.db", "Path to local database")
	flags.String(keyCodec, api.CodecJSON, "Wire codec (json or msgpack)")
	flags.String(keyClientID, "", "Client id for OT sessions (random if empty)")
	flags.String(keyLogLevel, "warn", "Log level (debug, info, warn, error)")
	_ = v.BindPFlags(flags)

	app := &app{io: out, v: v}

	root.AddCommand(
		&cobra.Command{
			Use:   "ot <doc>",
			Short: "Edit a document through the central sequencer",
			Args:  documentArg,
			RunE: app.run(func(cmd *cobra.Command, c *Cli, args []string) error {
				return c.RunOT(cmd.Context(), args[0])
			}),
		},
		&cobra.Command{
			Use:   "crdt <doc>",
			Short: "Edit a local replica that syncs with peers when online",
			Args:  documentArg,
			RunE: app.run(func(cmd *cobra.Command, c *Cli, args []string) error {
				return c.RunCRDT(cmd.Context(), args[0])
			}),
		},
		newVerifyCommand(app),
		&cobra.Command{
			Use:   "docs",
			Short: "List locally stored CRDT documents",
			Args:  cobra.NoArgs,
			RunE: app.run(func(cmd *cobra.Command, c *Cli, args []string) error {
				return c.RunDocs(cmd.Context())
			}),
		},
		&cobra.Command{
			Use:   "forget <doc>",
			Short: "Remove the local replica of a CRDT document",
			Args:  documentArg,
			RunE: app.run(func(cmd *cobra.Command, c *Cli, args []string) error {
				return c.RunForget(cmd.Context(), args[0])
			}),
		},
		&cobra.Command{
			Use:   "version",
			Short: "Show version information",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				out.Printf("gophtext client\n")
				out.Printf("Version:    %s\n", build.Version)
				out.Printf("Build Date: %s\n", build.BuildDate)
				out.Printf("Git Commit: %s\n", build.GitCommit)
			},
		},
	)
	return root
}

func newVerifyCommand(app *app) *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "verify <doc>",
		Short: "Check that replicas of a document converged",
		Args:  documentArg,
		RunE: app.run(func(cmd *cobra.Command, c *Cli, args []string) error {
			m, err := editor.ParseMode(mode)
			if err != nil {
				return err
			}
			return c.RunVerify(cmd.Context(), m, args[0])
		}),
	}
	cmd.Flags().StringVar(&mode, "mode", string(editor.ModeCRDT), "Document mode (ot or crdt)")
	return cmd
}

// documentArg проверяет единственный аргумент с идентификатором документа
func documentArg(cmd *cobra.Command, args []string) error {
	if err := cobra.ExactArgs(1)(cmd, args); err != nil {
		return err
	}
	return validation.ValidateDocumentID(args[0])
}

// app открывает хранилище и собирает Cli на время одной команды
type app struct {
	io iocli.IO
	v  *viper.Viper
}

func (a *app) run(fn func(cmd *cobra.Command, c *Cli, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		var level slog.Level
		if err := level.UnmarshalText([]byte(a.v.GetString(keyLogLevel))); err != nil {
			return fmt.Errorf("invalid log level: %w", err)
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

		codec, err := api.CodecByName(a.v.GetString(keyCodec))
		if err != nil {
			return err
		}

		store, err := boltdb.New(cmd.Context(), a.v.GetString(keyDB))
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer func() {
			if err := store.Close(); err != nil {
				logger.Error("Failed to close database", "error", err)
			}
		}()

		clientID := a.v.GetString(keyClientID)
		if clientID == "" {
			clientID = uuid.NewString()
		}
		if err := validation.ValidateClientID(clientID); err != nil {
			return err
		}

		apiClient := clientapi.NewClient(a.v.GetString(keyServer), codec)
		return fn(cmd, New(a.io, apiClient, store, store, clientID, logger), args)
	}
}
