// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
)

// Output formats accepted by NewHandler.
const (
	FormatTerminal = "terminal"
	FormatJSON     = "json"
	FormatLogfmt   = "logfmt"
)

// NewHandler creates a handler writing records at or above the given legacy verbosity (0-5).
// Terminal output is colored only if w is a terminal.
func NewHandler(w io.Writer, format string, verbosity int) (slog.Handler, error) {
	var level slog.LevelVar
	level.Set(FromLegacyLevel(verbosity))

	switch format {
	case "", FormatTerminal:
		useColor := false
		if f, ok := w.(*os.File); ok {
			useColor = (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) && os.Getenv("TERM") != "dumb"
		}
		return newTerminalHandler(w, &level, useColor), nil
	case FormatJSON:
		return newJSONHandler(w, &level), nil
	case FormatLogfmt:
		return newLogfmtHandler(w, &level), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}
