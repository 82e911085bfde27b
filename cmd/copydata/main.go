package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/domino14/copydata/charset"
	"github.com/domino14/copydata/config"
	"github.com/domino14/copydata/drain"
)

var (
	GitVersion string
)

func newLogger(cfg *config.Config, w io.Writer) zerolog.Logger {
	output := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	output.FormatLevel = func(i interface{}) string {
		return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel())
	if err != nil {
		level = zerolog.WarnLevel
	}
	zerolog.SetGlobalLevel(level)
	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}

func runOptions(cfg *config.Config) ([]drain.Option, error) {
	opts := []drain.Option{drain.WithIdleTimeout(cfg.IdleTimeout())}
	if enc := cfg.Encoding(); enc != "" {
		decode, err := charset.Decoder(enc)
		if err != nil {
			return nil, err
		}
		opts = append(opts, drain.WithTransform(decode))
	}
	return opts, nil
}

func main() {
	// Arguments are ignored; configuration only comes from COPYDATA_* vars.
	cfg := &config.Config{}
	if err := cfg.Load(); err != nil {
		log.Fatal().Err(err).Msg("could not load config")
	}

	// stdout carries the data, so logs always go to stderr.
	logger := newLogger(cfg, os.Stderr)
	zerolog.DefaultContextLogger = &logger
	log.Logger = logger
	logger.Debug().Str("version", GitVersion).Msgf("Loaded config: %v", cfg.AllSettings())

	opts, err := runOptions(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("bad options")
	}

	ctx, cancel := context.WithCancel(logger.WithContext(context.Background()))
	defer cancel()
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sig:
			log.Info().Msg("got quit signal...")
			cancel()
		case <-ctx.Done():
		}
	}()

	summary, err := drain.Run(ctx, os.Stdin, os.Stdout, opts...)
	if err != nil {
		log.Fatal().Err(err).Msg("copy failed")
	}
	logger.Info().Int("units", summary.Units).Stringer("reason", summary.Reason).
		Dur("elapsed", summary.Elapsed).Msg("done")
}
