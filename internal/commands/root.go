// Package commands implements the mvrctl command line.
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/africanmarketos/amos-mvr-go/apierror"
	"github.com/africanmarketos/amos-mvr-go/config"
	"github.com/africanmarketos/amos-mvr-go/logger"
	"github.com/africanmarketos/amos-mvr-go/mvr"
	"github.com/africanmarketos/amos-mvr-go/observability"
)

// GlobalOptions holds flags shared by every command.
type GlobalOptions struct {
	ConfigFile string
}

// NewRootCommand creates the mvrctl root command.
func NewRootCommand(version string) *cobra.Command {
	opts := &GlobalOptions{}

	rootCmd := &cobra.Command{
		Use:   "mvrctl",
		Short: "Call the AMOS / MVR scoring API",
		Long: `Command line client for the AMOS / MVR scoring API.

Credentials and endpoint settings come from an optional YAML file (--config)
and MVR_* environment variables, e.g. MVR_API_LICENSE and MVR_API_EMAIL, or
MVR_API_SESSION_TOKEN for a session client.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.ConfigFile, "config", "c", "", "YAML configuration file")

	rootCmd.AddCommand(
		NewHealthCommand(opts),
		NewScoreCommand(opts),
		NewVersionCommand(version),
	)

	return rootCmd
}

// session is everything a command needs to talk to the API.
type session struct {
	cfg      *config.Config
	log      logger.Logger
	client   *mvr.Client
	provider observability.Provider
}

func openSession(cmd *cobra.Command, opts *GlobalOptions) (*session, error) {
	cfg, err := config.Load(config.WithFile(opts.ConfigFile))
	if err != nil {
		return nil, err
	}

	var logOut io.Writer = cmd.ErrOrStderr()
	if cfg.Log.Pretty {
		logOut = zerolog.ConsoleWriter{Out: logOut, TimeFormat: time.RFC3339}
	}
	log := logger.NewWithWriter(logOut, cfg.Log.Level)

	provider, err := observability.NewProvider(&cfg.Observability, log)
	if err != nil {
		return nil, err
	}

	clientOpts := []mvr.Option{mvr.WithLogger(log)}
	if cfg.API.LogPayloads {
		clientOpts = append(clientOpts, mvr.WithPayloadLogging(cfg.API.MaxPayloadLogBytes))
	}

	var client *mvr.Client
	if cfg.API.UsesSession() {
		client, err = mvr.NewSessionClient(cfg.ClientConfig(), clientOpts...)
	} else {
		client, err = mvr.NewClient(cfg.ClientConfig(), clientOpts...)
	}
	if err != nil {
		_ = observability.Shutdown(provider, 0)
		return nil, err
	}

	return &session{cfg: cfg, log: log, client: client, provider: provider}, nil
}

func (s *session) close() {
	if err := observability.Shutdown(s.provider, 0); err != nil {
		s.log.Warn().Err(err).Msg("Failed to flush telemetry")
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// writeJSON prints v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// reportFailure prints the normalized error envelope and returns err for the
// exit status.
func reportFailure(w io.Writer, err error) error {
	if apiErr, ok := apierror.As(err); ok {
		if werr := writeJSON(w, apiErr); werr != nil {
			return fmt.Errorf("%w (output: %v)", err, werr)
		}
	}
	return err
}
