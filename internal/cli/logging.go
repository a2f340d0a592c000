package cli

import (
	"io"

	"github.com/4chain-ag/go-dlc-settlement/pkg/appconfig"
	"github.com/gookit/slog"
)

// configureLogging points the standard logger at w so command output on
// stdout stays machine readable.
func configureLogging(cfg appconfig.Log, w io.Writer) {
	slog.SetLogLevel(slog.LevelByName(cfg.Level))
	slog.SetFormatter(slog.NewJSONFormatter(func(f *slog.JSONFormatter) {
		f.PrettyPrint = cfg.Pretty
	}))
	slog.Std().Output = w
}
