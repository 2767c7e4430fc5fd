package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/okian/hoopline/internal/replay"
	"github.com/okian/hoopline/pkg/logger"
)

// Default configuration constants.
const (
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 30 * time.Second
	defaultRunDeadline = 10 * time.Minute
)

func main() {
	var (
		baseURL = flag.String("url", "http://localhost:9080", "Base URL of the service")
		slate   = flag.String("slate", "slate.yaml", "YAML slate of games to replay")
		workers = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		output  = flag.String("output", "", "Write projection results to this JSON file")
		dryRun  = flag.Bool("dry-run", false, "Project without recording or reconciling")
		format  = flag.String("log-format", "text", "Log format: text or json")
	)
	flag.Parse()

	if err := logger.Init(logger.WithFormat(*format)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunDeadline)
	defer cancel()

	res, err := replay.Run(ctx, &replay.Config{
		BaseURL:    *baseURL,
		SlateFile:  *slate,
		Workers:    *workers,
		Timeout:    *timeout,
		OutputFile: *output,
		DryRun:     *dryRun,
		Logger:     logger.Get(),
	})
	if err != nil {
		os.Stderr.WriteString("replay failed: " + err.Error() + "\n")
		os.Exit(1)
	}

	r := res.Report
	fmt.Printf("games=%d projected=%d failed=%d reconciled=%d\n",
		res.Stats.GamesLoaded, res.Stats.Projected, res.Stats.Failed, res.Stats.Reconciled)
	fmt.Printf("mae=%.2f hit_rate=%.3f samples=%d pushes=%d\n",
		r.MeanAbsoluteError, r.OverUnderHitRate, r.SampleCount, r.Pushes)
}
