// Command fafo manages the local media catalog from a terminal.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/aussiemaniacs/FafoV2/internal/catalog"
	"github.com/aussiemaniacs/FafoV2/internal/config"
	"github.com/aussiemaniacs/FafoV2/internal/extract"
	"github.com/aussiemaniacs/FafoV2/internal/filestore"
	"github.com/aussiemaniacs/FafoV2/internal/logging"
)

func main() {
	cfg := config.Load()
	// warnings go to stderr, or only to LOG_FILE when one is configured
	logOut := io.Discard
	if cfg.LogFile == "" {
		logOut = os.Stderr
	}
	log := logging.NewLogger("fafo", logging.Options{Level: "warn", File: cfg.LogFile, Output: logOut})

	store := filestore.New(afero.NewOsFs(), cfg.DataDir)
	ytdlp := extract.NewYtdlpExtractor(cfg.YtdlpPath, cfg.SearchTimeout, log)

	a := newApp(store, ytdlp, log, os.Stdout, catalog.WithEnrichTimeout(cfg.EnrichTimeout),
		catalog.WithAddonVersion(cfg.AddonVersion))
	os.Exit(a.run(context.Background(), os.Args[1:], os.Stderr))
}

type app struct {
	store     *filestore.Store
	svc       *catalog.Service
	extractor catalog.Extractor
	out       io.Writer
}

func newApp(store *filestore.Store, extractor catalog.Extractor, log logrus.FieldLogger, out io.Writer, opts ...catalog.Option) *app {
	opts = append([]catalog.Option{catalog.WithExtractor(extractor), catalog.WithLogger(log)}, opts...)
	return &app{
		store:     store,
		svc:       catalog.NewService(store, store, opts...),
		extractor: extractor,
		out:       out,
	}
}

// run dispatches args and returns the process exit code.
func (a *app) run(ctx context.Context, args []string, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		usage(stderr)
		if len(args) == 0 {
			return 2
		}
		return 0
	}

	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(stderr, "fafo: unknown command %q\n\n", args[0])
		usage(stderr)
		return 2
	}

	if err := a.store.Init(ctx); err != nil {
		fmt.Fprintf(stderr, "fafo: %v\n", err)
		return 1
	}
	if err := cmd.run(ctx, a, args[1:]); err != nil {
		fmt.Fprintf(stderr, "fafo %s: %v\n", args[0], err)
		var ue usageError
		if errors.As(err, &ue) {
			fmt.Fprintf(stderr, "usage: fafo %s %s\n", args[0], cmd.usage)
			return 2
		}
		return 1
	}
	return 0
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: fafo <command> [arguments]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")
	for _, name := range commandOrder {
		fmt.Fprintf(w, "  %-12s %s\n", name, commands[name].usage)
	}
}
