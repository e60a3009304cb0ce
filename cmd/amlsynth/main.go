package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/remiges-tech/amlsynth/logger"
	"github.com/remiges-tech/amlsynth/metrics"
	"github.com/remiges-tech/amlsynth/objstore"
	"github.com/remiges-tech/amlsynth/pipeline"
	"github.com/remiges-tech/amlsynth/store"
	"github.com/remiges-tech/logharbour/logharbour"
)

const appName = "amlsynth"

const usage = `Usage: amlsynth <command> [flags]

Commands:
  generate  generate the dataset and write it as CSV
  load      load the CSV export into Postgres
  runsql    run SQL files against Postgres (configured patterns, or the files given)
  pipeline  generate, export, publish, load and run SQL in one go

Flags:
  -config   JSON config file
  -timeout  overall deadline (default 30m)
  -out      output directory, overrides the config (generate, load, pipeline)
  -seed     random seed, overrides the config (generate, pipeline)
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}
	cmd := args[0]
	switch cmd {
	case "generate", "load", "runsql", "pipeline":
	case "-h", "-help", "--help", "help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", cmd, usage)
		return 2
	}

	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "JSON config file")
	timeout := fs.Duration("timeout", 30*time.Minute, "overall deadline")
	outDir := fs.String("out", "", "output directory")
	seed := fs.String("seed", "", "random seed")
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}

	cfg, err := pipeline.LoadAppConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 1
	}
	if *outDir != "" {
		cfg.OutputDir = *outDir
	}
	if *seed != "" {
		if cfg.Generator.Seed, err = strconv.ParseUint(*seed, 10, 64); err != nil {
			fmt.Fprintf(stderr, "invalid -seed %q: %v\n", *seed, err)
			return 2
		}
	}

	lh, err := logger.LoadLogger(appName, stderr, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(stderr, "logger: %v\n", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := execute(ctx, cmd, fs.Args(), cfg, lh, stdout); err != nil {
		lh.Error(err).LogActivity("Command failed", map[string]any{"command": cmd})
		fmt.Fprintf(stderr, "%s: %v\n", cmd, err)
		return 1
	}
	return 0
}

func execute(ctx context.Context, cmd string, args []string, cfg pipeline.AppConfig, lh *logharbour.Logger, stdout io.Writer) error {
	m := metrics.NewPrometheusMetrics()
	metrics.RegisterRunMetrics(m)

	var deps pipeline.Deps
	if cmd == "load" || cmd == "runsql" || (cmd == "pipeline" && cfg.DatabaseURL != "") {
		db, err := openDatabase(ctx, cfg.DatabaseURL, lh)
		if err != nil {
			return err
		}
		defer db.Close()
		deps.Database = db
	}
	if cmd == "pipeline" && cfg.ObjStore.Enabled() {
		objs, err := openObjectStore(ctx, cfg.ObjStore)
		if err != nil {
			return err
		}
		deps.ObjectStore = objs
	}

	p := pipeline.New(cfg, deps, lh, m)
	err := dispatch(ctx, p, cmd, args, stdout)
	if werr := p.WriteMetrics(); werr != nil {
		lh.Warn().LogActivity("Could not write metrics", map[string]any{"error": werr.Error()})
	}
	return err
}

func dispatch(ctx context.Context, p *pipeline.Pipeline, cmd string, args []string, stdout io.Writer) error {
	switch cmd {
	case "generate":
		ds, summary, err := p.Generate()
		if err != nil {
			return err
		}
		if err := p.Export(ds); err != nil {
			return err
		}
		fmt.Fprint(stdout, summary.String())
	case "load":
		res, err := p.LoadFromDir(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "loaded customers=%d accounts=%d merchants=%d transactions=%d\n",
			res.Customers, res.Accounts, res.Merchants, res.Transactions)
	case "runsql":
		done, err := p.RunSQL(ctx, args...)
		for _, f := range done {
			fmt.Fprintf(stdout, "executed %s\n", f)
		}
		return err
	case "pipeline":
		res, err := p.Run(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "run %s\n", res.RunID)
		fmt.Fprint(stdout, res.Summary.String())
		for _, key := range res.Published {
			fmt.Fprintf(stdout, "published %s\n", key)
		}
		for _, f := range res.SQLFiles {
			fmt.Fprintf(stdout, "executed %s\n", f)
		}
	default:
		return errors.New("unknown command " + cmd)
	}
	return nil
}

func openDatabase(ctx context.Context, url string, lh *logharbour.Logger) (*store.Store, error) {
	if url == "" {
		return nil, fmt.Errorf("no database url: set database_url or %s", pipeline.EnvDatabaseURL)
	}
	db, err := store.Open(ctx, url, lh)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func openObjectStore(ctx context.Context, cfg objstore.Config) (objstore.ObjectStore, error) {
	client, err := objstore.NewMinioClient(cfg)
	if err != nil {
		return nil, err
	}
	if err := objstore.EnsureBucket(ctx, client, cfg.Bucket); err != nil {
		return nil, err
	}
	return objstore.NewMinioObjectStore(client), nil
}
