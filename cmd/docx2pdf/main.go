package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	env := DefaultEnv()
	args := os.Args[1:]

	// Parse flags first to get verbose; runMain reports parse errors.
	if flags, _, err := parseFlags(args); err == nil {
		setMaxProcs(flags.common.verbose, env.Stderr)
	}

	ctx, stop := notifyContext(context.Background())
	code := runMain(ctx, args, env)
	stop()
	os.Exit(code)
}

// setMaxProcs configures GOMAXPROCS with conditional logging.
// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
// in which case Go runtime defaults apply and the program continues safely.
func setMaxProcs(verbose bool, w io.Writer) {
	if verbose {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			fmt.Fprintf(w, format+"\n", args...)
		}))
		return
	}
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
}
