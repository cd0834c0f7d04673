// Package timecard wires configuration, the portal and the reconciliation
// engine into the beats commands.
package timecard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/urfave/cli/v3"
	"tangled.org/beats/config"
	beaterr "tangled.org/beats/errors"
	"tangled.org/beats/grid"
	"tangled.org/beats/log"
	"tangled.org/beats/portal"
	"tangled.org/beats/reconcile"
	"tangled.org/beats/timesheet"
)

// now is swapped in tests.
var now = time.Now

func Command(version string) *cli.Command {
	return &cli.Command{
		Name:    "beats",
		Usage:   "tells you when to punch next on the Ahgora portal",
		Version: version,
		Flags:   flags(),
		Action:  Run,
		Commands: []*cli.Command{
			GridCommand(),
			WatchCommand(),
		},
		Description: `
Environment variables:
	AHGORA_COMPANY       (required)
	AHGORA_USER          (required)
	AHGORA_PASS          (required)
	AHGORA_LUNCHAT       (default: 11:30)
	AHGORA_LUNCHTIME     (default: 60)
	AHGORA_TOLERANCE     (default: 10)
	AHGORA_WORKHOURS     (default: 08:00)
	AHGORA_MONTHYEAR     (MM-YYYY, default: current month)
	AHGORA_VERBOSE       (default: false)
	AHGORA_FORCENOCACHE  (default: false)
	AHGORA_DEBUG         (default: false)
	AHGORA_URL           (default: https://www.ahgora.com.br)
`,
	}
}

func GridCommand() *cli.Command {
	return &cli.Command{
		Name:   "grid",
		Usage:  "print every punched day of the month, with predictions when verbose",
		Action: RunGrid,
	}
}

func WatchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "keep printing the message for today, refetching the month at most every five minutes",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:    "interval",
				Aliases: []string{"i"},
				Usage:   "time between messages",
				Value:   time.Minute,
			},
			&cli.IntFlag{
				Name:    "count",
				Aliases: []string{"n"},
				Usage:   "stop after this many messages (0 runs until interrupted)",
			},
		},
		Action: RunWatch,
	}
}

func flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "path to a yaml config file",
			Value: config.DefaultPath(),
		},
		&cli.StringFlag{
			Name:  "url",
			Usage: "portal base url",
		},
		&cli.StringFlag{
			Name:    "company",
			Aliases: []string{"c"},
			Usage:   "Ahgora company code",
		},
		&cli.StringFlag{
			Name:    "user",
			Aliases: []string{"u"},
			Usage:   "Ahgora user code",
		},
		&cli.StringFlag{
			Name:    "pass",
			Aliases: []string{"p"},
			Usage:   "Ahgora password",
		},
		&cli.IntFlag{
			Name:    "tolerance",
			Aliases: []string{"t"},
			Usage:   "tolerance in minutes",
		},
		&cli.StringFlag{
			Name:    "lunch-at",
			Aliases: []string{"a"},
			Usage:   "lunch time (HH:mm)",
		},
		&cli.IntFlag{
			Name:    "lunch-time",
			Aliases: []string{"l"},
			Usage:   "lunch length in minutes",
		},
		&cli.StringFlag{
			Name:    "work-hours",
			Aliases: []string{"w"},
			Usage:   "work day length (HH:mm or hours)",
		},
		&cli.StringFlag{
			Name:    "month-year",
			Aliases: []string{"m"},
			Usage:   "month to fetch (MM-YYYY)",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "print the month grid with predictions",
		},
		&cli.BoolFlag{
			Name:    "force-nocache",
			Aliases: []string{"f"},
			Usage:   "ask the portal for a fresh page",
		},
		&cli.BoolFlag{
			Name:    "debug",
			Aliases: []string{"d"},
			Usage:   "show debug information",
		},
	}
}

// applyFlags overrides the loaded configuration with flags given on the
// command line.
func applyFlags(cmd *cli.Command, cfg *config.Config) {
	strs := map[string]*string{
		"url":        &cfg.Portal.URL,
		"company":    &cfg.Portal.Company,
		"user":       &cfg.Portal.User,
		"pass":       &cfg.Portal.Pass,
		"month-year": &cfg.Portal.MonthYear,
		"lunch-at":   &cfg.Schedule.LunchAt,
		"work-hours": &cfg.Schedule.WorkHours,
	}
	for name, dst := range strs {
		if cmd.IsSet(name) {
			*dst = cmd.String(name)
		}
	}

	ints := map[string]*int{
		"tolerance":  &cfg.Schedule.Tolerance,
		"lunch-time": &cfg.Schedule.LunchTime,
	}
	for name, dst := range ints {
		if cmd.IsSet(name) {
			*dst = int(cmd.Int(name))
		}
	}

	bools := map[string]*bool{
		"verbose":       &cfg.Verbose,
		"force-nocache": &cfg.Portal.ForceNoCache,
		"debug":         &cfg.Debug,
	}
	for name, dst := range bools {
		if cmd.IsSet(name) {
			*dst = cmd.Bool(name)
		}
	}
}

type run struct {
	cfg    *config.Config
	engine *reconcile.Engine
	client *portal.Client
	l      *slog.Logger
}

func setup(ctx context.Context, cmd *cli.Command) (*run, error) {
	l := log.FromContext(ctx)

	cfg, err := config.Load(ctx, cmd.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyFlags(cmd, cfg)

	if cfg.Debug {
		l = log.NewWithOptions("beats", log.Options{Debug: true})
	}
	l.Debug("options", "config", cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ec, err := cfg.Engine()
	if err != nil {
		return nil, err
	}

	client, err := portal.NewClient(
		cfg.Portal.URL,
		portal.WithForceNoCache(cfg.Portal.ForceNoCache),
		portal.WithLogger(log.SubLogger(l, "portal")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to setup portal client: %w", err)
	}

	return &run{
		cfg:    cfg,
		engine: reconcile.New(ec),
		client: client,
		l:      l,
	}, nil
}

func (r *run) login(ctx context.Context) (*portal.Session, error) {
	return r.client.Login(ctx, portal.Credentials{
		Company: r.cfg.Portal.Company,
		User:    r.cfg.Portal.User,
		Pass:    r.cfg.Portal.Pass,
	})
}

func (r *run) month(ctx context.Context, s *portal.Session) (*timesheet.Month, error) {
	m, err := r.client.FetchMonth(ctx, s, r.cfg.Portal.MonthYear)
	if err != nil {
		return nil, err
	}
	r.l.Debug("month fetched", "days", m.Len())

	return m, nil
}

func (r *run) today(m *timesheet.Month) string {
	t := now()
	today, _ := m.Today(t)
	r.l.Debug("today", "date", today.Date, "punches", today.Punches.Strings())
	return Today(today, r.engine, t)
}

// Run prints the grid when verbose, then the message for today.
func Run(ctx context.Context, cmd *cli.Command) error {
	r, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer r.client.Close()

	s, err := r.login(ctx)
	if err != nil {
		return err
	}

	m, err := r.month(ctx, s)
	if err != nil {
		return err
	}

	out := cmd.Root().Writer
	if r.cfg.Verbose {
		fmt.Fprint(out, grid.Build(m, r.engine, true))
		fmt.Fprintln(out, "-----")
	}
	fmt.Fprintf(out, "\n> %s\n\n", r.today(m))

	return nil
}

func RunGrid(ctx context.Context, cmd *cli.Command) error {
	r, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer r.client.Close()

	s, err := r.login(ctx)
	if err != nil {
		return err
	}

	m, err := r.month(ctx, s)
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.Root().Writer, grid.Build(m, r.engine, r.cfg.Verbose))
	return nil
}

// RunWatch logs in once and prints the message for today every interval.
// The month comes from the client's memo until it expires.
func RunWatch(ctx context.Context, cmd *cli.Command) error {
	interval := cmd.Duration("interval")
	if interval <= 0 {
		return beaterr.ConfigurationError("invalid interval %s", interval)
	}
	count := int(cmd.Int("count"))
	if count < 0 {
		return beaterr.ConfigurationError("invalid count %d", count)
	}

	r, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer r.client.Close()

	s, err := r.login(ctx)
	if err != nil {
		return err
	}

	out := cmd.Root().Writer
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for i := 0; count == 0 || i < count; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		}

		m, err := r.month(ctx, s)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "> %s\n", r.today(m))
	}

	return nil
}
