package commands

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/entigraph/errors"
	"github.com/teranos/entigraph/loader"
	"github.com/teranos/entigraph/logger"
)

// LoadCmd ingests JSON-lines files into the index
var LoadCmd = &cobra.Command{
	Use:   "load [file...]",
	Short: "Load entities and type edges from JSON lines",
	Long: `Load entities and type hierarchy edges from JSON-lines files (or stdin).

Each line is either an entity:
  {"iri":"wd:Q90","types":["wd:Q515"],"rank":312,
   "claims":[{"property":"schema:name","value":"Paris","locale":"fr"}]}
or a type edge:
  {"type":"wd:Q515","parents":["wd:Q486972"]}

Entities whose types descend from ingest.type_blocklist are rejected.
Claims that do not fit the property schema are dropped and counted.

Examples:
  entigraph load dump.jsonl
  zcat dump.jsonl.gz | entigraph load
  entigraph load dump.jsonl --metrics-addr :9090`,
	RunE: runLoad,
}

var loadMetricsAddr string

func init() {
	LoadCmd.Flags().StringVar(&loadMetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while loading (requires metrics.enabled)")
}

func runLoad(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e, err := openEnv(envOptions{withHierarchy: true})
	if err != nil {
		return err
	}
	defer e.Close()

	if loadMetricsAddr != "" {
		if e.registry == nil {
			return errors.New("--metrics-addr requires metrics.enabled = true")
		}
		srv := &http.Server{
			Addr:              loadMetricsAddr,
			Handler:           promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Logger.Warnw("Metrics server stopped", logger.FieldError, err)
			}
		}()
		defer srv.Close()
	}

	l := loader.New(e.store, e.codec, e.hierarchy, e.cfg.LoaderOptions(), logger.ComponentLogger("loader")).
		WithMetrics(e.metrics)

	// Periodic refresh keeps long loads visible to readers
	runCtx, cancelRun := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := l.Run(runCtx); err != nil {
			logger.Logger.Warnw("Final refresh failed", logger.FieldError, err)
		}
	}()

	started := time.Now()
	loadErr := loadInputs(ctx, l, args)
	cancelRun()
	wg.Wait()

	stats := l.Stats()
	pterm.DefaultSection.Println("Load summary")
	pterm.DefaultTable.WithData(pterm.TableData{
		{"Ingest ID", l.IngestID()},
		{"Added", pterm.Sprint(stats.Added)},
		{"Rejected", pterm.Sprint(stats.Rejected)},
		{"Failed", pterm.Sprint(stats.Failed)},
		{"Type edges", pterm.Sprint(stats.Types)},
		{"Refreshes", pterm.Sprint(stats.Refreshes)},
		{"Duration", time.Since(started).Round(time.Millisecond).String()},
	}).Render()

	if loadErr != nil {
		return loadErr
	}
	pterm.Success.Println("Load complete")
	return nil
}

func loadInputs(ctx context.Context, l *loader.Loader, paths []string) error {
	if len(paths) == 0 {
		return loadOne(ctx, l, "stdin", os.Stdin)
	}
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return errors.Wrapf(err, "failed to open %s", path)
		}
		err = loadOne(ctx, l, path, f)
		f.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func loadOne(ctx context.Context, l *loader.Loader, name string, r io.Reader) error {
	spinner, _ := pterm.DefaultSpinner.Start("Loading " + name)
	_, err := l.LoadJSONLines(ctx, r)
	if err != nil {
		spinner.Fail("Failed to load " + name)
		return errors.Wrapf(err, "load %s", name)
	}
	spinner.Success("Loaded " + name)
	return nil
}
