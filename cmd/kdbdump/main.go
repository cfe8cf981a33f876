package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/starfederation/kdb-go/ipc"
	"github.com/starfederation/kdb-go/runtime"
)

type cli struct {
	Config   string `help:"TOML file with defaults for the flags below." type:"path"`
	Format   string `help:"Output format: summary, json, cbor or arrow." placeholder:"FORMAT"`
	Dekey    bool   `help:"Turn a keyed table into a simple table before printing."`
	MaxBytes string `help:"Largest message accepted, e.g. 64MiB." placeholder:"SIZE"`
	LogLevel string `help:"Log level (debug, info, warn, error)." placeholder:"LEVEL"`
	File     string `arg:"" optional:"" help:"IPC message file, or - for stdin." default:"-"`
}

// resolve layers the config file and then the flags over the defaults.
func (c cli) resolve() (config, error) {
	cfg := defaultConfig()
	if c.Config != "" {
		var err error
		if cfg, err = loadConfig(c.Config); err != nil {
			return config{}, err
		}
	}
	if c.Format != "" {
		cfg.Format = c.Format
	}
	if c.Dekey {
		cfg.Dekey = true
	}
	if c.MaxBytes != "" {
		n, err := humanize.ParseBytes(strings.TrimSpace(c.MaxBytes))
		if err != nil {
			return config{}, fmt.Errorf("--max-bytes: %w", err)
		}
		cfg.MaxBytes = n
	}
	if c.LogLevel != "" {
		cfg.LogLevel = c.LogLevel
	}
	return cfg, cfg.validate()
}

func main() {
	var args cli
	kctx := kong.Parse(&args,
		kong.Name("kdbdump"),
		kong.Description("Decode one kdb+ IPC message and print it."),
		kong.UsageOnError(),
	)
	cfg, err := args.resolve()
	kctx.FatalIfErrorf(err)

	logger, err := initLogger(os.Stderr, cfg.LogLevel)
	kctx.FatalIfErrorf(err)

	if err := run(cfg, args.File, os.Stdin, os.Stdout, logger); err != nil {
		logger.Error().Err(err).Str("file", args.File).Msg("dump failed")
		os.Exit(1)
	}
}

func run(cfg config, path string, stdin io.Reader, stdout io.Writer, logger zerolog.Logger) error {
	in := stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	limits := ipc.Limits{
		MaxMessageBytes:      uint32(cfg.MaxBytes),
		MaxDecompressedBytes: uint32(cfg.MaxBytes),
		MaxDepth:             cfg.MaxDepth,
	}
	msg, h, err := ipc.ReadMessage(in, limits)
	if err != nil {
		return fmt.Errorf("read message: %w", err)
	}
	logger.Debug().
		Str("size", humanize.IBytes(uint64(h.Size))).
		Stringer("type", h.Type).
		Bool("compressed", h.Compressed).
		Bool("little_endian", h.LittleEndian).
		Msg("read message")

	v, _, err := runtime.Decode(msg, limits)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	g := runtime.Adopt(v)
	defer g.Release()

	if cfg.Dekey && g.K().IsDict() {
		flat, err := g.Value().Dekey()
		if err != nil {
			return fmt.Errorf("dekey: %w", err)
		}
		g.Release()
		g = runtime.Adopt(flat)
		defer g.Release()
		logger.Debug().Msg("dekeyed table")
	}

	k := g.K()
	logger.Info().Stringer("tag", k.Tag()).Int64("count", k.Len()).Msg("decoded")
	return render(stdout, cfg.Format, k, len(msg))
}
