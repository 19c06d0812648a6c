// Command hangupsd runs a channel session against Google Hangouts and
// prints each delivered payload to stdout as newline-delimited JSON. It
// exists as a demo harness for the Client API; embedding applications are
// expected to call hangupsd.New directly rather than shell out to this
// binary.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	hangupsd "github.com/dpeckett/hangupsd"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "HANGUPSD"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "hangupsd",
		Short: "Run a Google Hangouts channel session and stream delivered payloads to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), v)
		},
	}

	flags := cmd.Flags()
	flags.String("cookie-path", "", "path to a JSON cookie jar containing SAPISID")
	flags.String("origin", "https://hangouts.google.com", "origin the cookie jar was issued for")
	flags.Int("queue-capacity", 256, "delivery queue capacity before oldest payloads are dropped")
	flags.Duration("min-backoff", 500*time.Millisecond, "minimum reconnect backoff")
	flags.Duration("max-backoff", 30*time.Second, "maximum reconnect backoff")
	flags.String("log-level", "info", "log level: debug, info, warn, error")

	_ = v.BindPFlag("cookie_path", flags.Lookup("cookie-path"))
	_ = v.BindPFlag("origin", flags.Lookup("origin"))
	_ = v.BindPFlag("queue_capacity", flags.Lookup("queue-capacity"))
	_ = v.BindPFlag("min_backoff", flags.Lookup("min-backoff"))
	_ = v.BindPFlag("max_backoff", flags.Lookup("max-backoff"))
	_ = v.BindPFlag("log_level", flags.Lookup("log-level"))

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	return cmd
}

func run(ctx context.Context, v *viper.Viper) error {
	level := slog.LevelInfo
	_ = level.UnmarshalText([]byte(v.GetString("log_level")))
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	client, err := hangupsd.New(hangupsd.Options{
		CookiePath:    v.GetString("cookie_path"),
		Origin:        v.GetString("origin"),
		QueueCapacity: v.GetInt("queue_capacity"),
		MinBackoff:    v.GetDuration("min_backoff"),
		MaxBackoff:    v.GetDuration("max_backoff"),
		Logger:        logger,
	})
	if err != nil {
		return fmt.Errorf("starting client: %w", err)
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		payload, ok := client.Receive(30 * time.Second)
		if !ok {
			return nil
		}
		if payload == "{}" {
			continue
		}
		fmt.Println(payload)
	}
}
