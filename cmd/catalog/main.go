package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/shralptide/tidestations/internal/app"
	"github.com/shralptide/tidestations/internal/config"
	"github.com/shralptide/tidestations/internal/display"
	"github.com/shralptide/tidestations/internal/models"
)

const usage = `usage: catalog <command> [flags]

commands:
  import  load stations from the configured source into a store
  list    list stations, optionally for one state
  near    list the stations nearest a point
`

var errUsage = errors.New("invalid usage")

func main() {
	cfg := config.LoadFromEnv()
	cfg.InitializeLogging()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		log.Fatal().Err(err).Msg("Command failed")
	}
}

func run(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	switch args[0] {
	case "import":
		return runImport(ctx, cfg, args[1:], out)
	case "list":
		return runList(ctx, cfg, args[1:], out)
	case "near":
		return runNear(ctx, cfg, args[1:], out)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
}

func runImport(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	to := fs.String("to", app.PersistSQLite, "destination store (sqlite or dynamo)")
	strict := fs.Bool("strict", false, "fail on the first invalid station instead of skipping it")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	if *to != app.PersistSQLite && *to != app.PersistDynamo {
		return fmt.Errorf("%w: unknown destination %q", errUsage, *to)
	}
	if *to == cfg.StationSource {
		return fmt.Errorf("source and destination are both %s", *to)
	}

	cacheCfg := config.GetCacheConfig()
	cacheCfg.EnableStoreWrites = true
	// Always read the source itself, never a cached copy
	cacheCfg.EnableListCache = false

	components, err := app.Build(ctx, cfg, app.Options{Persist: *to, Strict: *strict, Cache: cacheCfg})
	if err != nil {
		return err
	}
	defer closeComponents(components)

	result, err := components.Catalog.Load(ctx)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(out, "imported %d stations into %s (%d rejected)\n", result.Accepted, *to, result.Rejected)
	return err
}

func runList(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	state := fs.String("state", "", "only list stations in this state")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	components, err := app.Build(ctx, cfg, app.Options{})
	if err != nil {
		return err
	}
	defer closeComponents(components)

	var stations []models.StationRecord
	if *state != "" {
		stations, err = components.Catalog.StationsByState(ctx, *state)
	} else {
		stations, err = components.Catalog.Stations(ctx)
	}
	if err != nil {
		return err
	}

	return printStations(out, stations)
}

func runNear(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("near", flag.ContinueOnError)
	lat := fs.Float64("lat", 0, "latitude in decimal degrees")
	lon := fs.Float64("lon", 0, "longitude in decimal degrees")
	limit := fs.Int("limit", 5, "number of stations to show")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	latSet, lonSet := false, false
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "lat":
			latSet = true
		case "lon":
			lonSet = true
		}
	})
	if !latSet || !lonSet {
		return fmt.Errorf("%w: -lat and -lon are required", errUsage)
	}

	components, err := app.Build(ctx, cfg, app.Options{})
	if err != nil {
		return err
	}
	defer closeComponents(components)

	stations, err := components.Catalog.FindNearestStations(ctx, *lat, *lon, *limit)
	if err != nil {
		return err
	}

	return printStations(out, stations)
}

func printStations(out io.Writer, stations []models.StationRecord) error {
	for _, s := range stations {
		if _, err := fmt.Fprintln(out, display.Summary(s)); err != nil {
			return err
		}
	}
	return nil
}

func closeComponents(c *app.Components) {
	if err := c.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing station database")
	}
}
