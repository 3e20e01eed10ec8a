package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

func newLogger(w io.Writer, level slog.Leveler, color bool) *slog.Logger {
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05.000",
		NoColor:    !color,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Empty attributes only add noise.
			if a.Value.Kind() == slog.KindString && a.Value.String() == "" {
				return slog.Attr{}
			}
			if a.Value.Kind() == slog.KindAny && a.Value.Any() == nil {
				return slog.Attr{}
			}
			return a
		},
	}))
}

func setupLogger(level slog.Level) {
	ll := &slog.LevelVar{}
	ll.Set(level)
	slog.SetDefault(newLogger(colorable.NewColorable(os.Stderr), ll, isatty.IsTerminal(os.Stderr.Fd())))
}
