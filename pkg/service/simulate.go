package service

import (
	"context"
	"os"
	"time"

	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/analytics"
	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/api"
	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/client"
	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/config"
	clierrors "github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/errors"
	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/formatter"
	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/impressions"
	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/logger"
	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/output"
	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/simulate"
	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/state"
)

// SimulateOptions select the session to replay and where its signals go.
type SimulateOptions struct {
	// ScriptPath is a JSON session script. Ignored when Random > 0.
	ScriptPath string
	Random     int
	Seed       uint64
	// DryRun builds the payloads without sending them.
	DryRun bool
	Env    string
	URL    string
	// SaveTo writes the replayed script, useful with Random.
	SaveTo string
	// Store overrides the state loaded from config and credentials.
	Store state.Reader
}

// SimulateService replays browse sessions through the impressions manager
type SimulateService struct{}

// NewSimulateService creates a new simulate service
func NewSimulateService() *SimulateService {
	return &SimulateService{}
}

// Simulate replays a session and prints its report.
func (ss *SimulateService) Simulate(ctx context.Context, opts SimulateOptions) error {
	report, err := ss.Replay(ctx, opts)
	if err != nil {
		return err
	}

	if output.GetOutputFormat() == output.FormatJSON {
		return output.Print("", report.Payloads)
	}
	if err := output.PrintRecord("Replay", formatter.ReportRecord(report)); err != nil {
		return err
	}
	for _, p := range report.Payloads {
		output.PrintInfo("\n%s", formatter.SignalLine(p, time.Now()))
		if err := output.PrintTable(formatter.TileHeaders, formatter.TileRows(p)); err != nil {
			return err
		}
	}
	return nil
}

// Replay runs the session and waits for its beacons to finish.
func (ss *SimulateService) Replay(ctx context.Context, opts SimulateOptions) (*simulate.Report, error) {
	script, err := loadScript(opts)
	if err != nil {
		return nil, err
	}

	if opts.SaveTo != "" {
		data, err := script.Marshal()
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(opts.SaveTo, data, 0644); err != nil {
			return nil, err
		}
		logger.Debug("Saved script", "path", opts.SaveTo)
	}

	store := opts.Store
	if store == nil {
		loaded, err := state.Load()
		if err != nil {
			return nil, clierrors.NewCLIError(clierrors.ErrorTypeConfig, "Could not load session state", err)
		}
		store = loaded
	}

	endpoint, err := ResolveEndpoint(opts.Env, opts.URL)
	if err != nil {
		return nil, err
	}

	var beacons *client.Beacons
	runOpts := simulate.Options{
		Manager:  ManagerOptions(endpoint),
		Store:    store,
		Registry: impressions.DefaultRegistry(),
	}
	if !opts.DryRun {
		beacons = client.NewBeacons(nil)
		runOpts.Beacon = beacons
	}

	logger.Info("Replaying session", "script", script.Name, "steps", len(script.Steps), "endpoint", endpoint, "dry_run", opts.DryRun)
	report, err := simulate.Run(script, runOpts)
	if err != nil {
		return nil, err
	}

	if beacons != nil {
		if err := beacons.Wait(ctx); err != nil {
			return report, clierrors.CategorizeError(err)
		}
	}
	return report, nil
}

func loadScript(opts SimulateOptions) (*simulate.Script, error) {
	if opts.Random > 0 {
		return simulate.RandomScript(opts.Random, opts.Seed), nil
	}
	if opts.ScriptPath == "" {
		return nil, clierrors.ValidationError("script", "give a script file or --random N")
	}

	script, err := simulate.Load(opts.ScriptPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, clierrors.FileNotFoundError(opts.ScriptPath)
		}
		return nil, clierrors.InvalidFormatError(opts.ScriptPath, err)
	}
	return script, nil
}

// ResolveEndpoint picks the single-event URL from flags, falling back to
// signals.env and signals.url.
func ResolveEndpoint(env, url string) (string, error) {
	if env == "" {
		env = config.GetString("signals.env")
	}
	if url == "" {
		url = config.GetString("signals.url")
	}
	endpoint, err := api.SignalsURL(env, url)
	if err != nil {
		return "", clierrors.ConfigError("signals.env", err.Error())
	}
	return endpoint, nil
}

// ManagerOptions reads the impressions tuning from config. Unset values
// keep the manager defaults.
func ManagerOptions(endpoint string) impressions.Options {
	return impressions.Options{
		Endpoint:      endpoint,
		Platform:      analytics.ParsePlatform(config.GetString("analytics.platform")),
		ValidDuration: time.Duration(config.GetInt("impressions.valid_duration_ms")) * time.Millisecond,
		MaxConcluded:  config.GetInt("impressions.max_concluded"),
		Timeout:       time.Duration(config.GetInt("impressions.timeout_ms")) * time.Millisecond,
	}
}
