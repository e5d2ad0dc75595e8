package logx

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Debug        bool   `split_words:"true" default:"false"`
	PrettyFormat bool   `split_words:"true" default:"false"`
	Level        string `split_words:"true"`
	Service      string `split_words:"true" default:"screening-decision"`
}

var DefaultConfig = &Config{
	Service: "screening-decision",
}

func safe(opts ...Config) *Config {
	if len(opts) == 0 {
		return DefaultConfig
	}
	return &opts[0]
}

// Init replaces the global zerolog logger. Output goes to stdout unless a writer is set with InitTo.
func Init(opts ...Config) {
	InitTo(os.Stdout, opts...)
}

func InitTo(w io.Writer, opts ...Config) {
	conf := safe(opts...)

	if conf.PrettyFormat {
		w = zerolog.ConsoleWriter{Out: w}
	}
	ctx := zerolog.New(w).With().Timestamp()
	if conf.Service != "" {
		ctx = ctx.Str("service", conf.Service)
	}
	log.Logger = ctx.Logger().Level(resolveLevel(conf))

	if conf.Debug {
		log.Logger = log.Logger.With().Caller().Stack().Logger()
	}
}

func resolveLevel(conf *Config) zerolog.Level {
	if conf.Debug {
		return zerolog.DebugLevel
	}
	if lvl := strings.TrimSpace(conf.Level); lvl != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(lvl)); err == nil {
			return parsed
		}
	}
	return zerolog.InfoLevel
}
