package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"txreplay/internal/engine"
	"txreplay/internal/ingestion"
	"txreplay/internal/ledger"
	"txreplay/internal/observability"
	"txreplay/internal/report"
)

func main() {
	var (
		outputPath  = flag.String("output", "", "Write the summary CSV to this file instead of stdout")
		pretty      = flag.Bool("pretty", false, "Also render the summary as a table on stderr")
		shards      = flag.Int("shards", 0, "Partition clients across N replay workers (0 = sequential)")
		metricsAddr = flag.String("metrics-addr", envOrDefault("TXREPLAY_METRICS_ADDR", ""), "Serve Prometheus metrics on this address for the duration of the run")
		logLevel    = flag.String("log-level", envOrDefault("TXREPLAY_LOG_LEVEL", "info"), "Log level: debug, info, warn, error")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <transactions.csv>\n\n", os.Args[0])
		fmt.Fprintln(flag.CommandLine.Output(), "Replays a transaction log and prints the final per-client account summary.")
		fmt.Fprintln(flag.CommandLine.Output(), "\nFlags:")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := observability.NewLogger("txreplay", level).
		With().
		Str("run_id", uuid.New().String()).
		Logger()

	metrics := observability.NewMetrics()

	if *metricsAddr != "" {
		go serveMetrics(*metricsAddr, logger)
	}

	if err := run(flag.Arg(0), *outputPath, *pretty, *shards, metrics, logger); err != nil {
		logger.Error().Err(err).Msg("replay failed")
		os.Exit(1)
	}
}

// run replays the transaction log at inputPath and writes the summary.
// Per-transaction guard violations are logged and skipped; only an unreadable
// or malformed input aborts the run.
func run(
	inputPath, outputPath string,
	pretty bool,
	shards int,
	metrics *observability.Metrics,
	logger zerolog.Logger,
) error {
	start := time.Now()

	f, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	reader, err := ingestion.NewReader(bufio.NewReader(f))
	if err != nil {
		return fmt.Errorf("read %s: %w", inputPath, err)
	}

	logger.Info().
		Str("input", inputPath).
		Int("shards", shards).
		Msg("replay starting")

	var snaps []ledger.Snapshot
	if shards > 0 {
		snaps, err = replaySharded(reader, shards, metrics, logger)
	} else {
		snaps, err = replaySequential(reader, metrics, logger)
	}
	if err != nil {
		return fmt.Errorf("replay %s: %w", inputPath, err)
	}

	out := io.Writer(os.Stdout)
	if outputPath != "" {
		outFile, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer outFile.Close()
		out = outFile
	}

	if err := report.WriteCSV(out, snaps); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	if pretty {
		report.WriteTable(os.Stderr, snaps)
	}

	metrics.ReplayDuration.Observe(time.Since(start).Seconds())
	logger.Info().
		Int("clients", len(snaps)).
		Dur("elapsed", time.Since(start)).
		Msg("replay complete")
	return nil
}

func replaySequential(reader *ingestion.Reader, metrics *observability.Metrics, logger zerolog.Logger) ([]ledger.Snapshot, error) {
	eng := engine.New(metrics)

	for {
		tx, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		metrics.RecordsRead.Inc()

		if err := eng.Process(tx); err != nil {
			logRejection(logger, tx, err)
		}
	}

	return eng.Summary(), nil
}

func replaySharded(reader *ingestion.Reader, shards int, metrics *observability.Metrics, logger zerolog.Logger) ([]ledger.Snapshot, error) {
	eng := engine.NewSharded(shards, metrics, func(tx engine.Transaction, err error) {
		logRejection(logger, tx, err)
	})

	for {
		tx, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Drain the workers before reporting so no shard goroutine leaks.
			eng.Summary()
			return nil, err
		}
		metrics.RecordsRead.Inc()
		eng.Submit(tx)
	}

	return eng.Summary(), nil
}

// logRejection is safe for concurrent use; zerolog writes are atomic.
func logRejection(logger zerolog.Logger, tx engine.Transaction, err error) {
	logger.Warn().
		Str("kind", tx.Kind.String()).
		Uint64("client", uint64(tx.Client)).
		Uint64("tx", uint64(tx.Tx)).
		Str("reason", engine.RejectReason(err)).
		Err(err).
		Msg("transaction rejected")
}

func serveMetrics(addr string, logger zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	logger.Info().Str("addr", addr).Msg("metrics server listening")
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Warn().Err(err).Msg("metrics server stopped")
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
