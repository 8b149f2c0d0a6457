package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/colorprofile"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/kylesnowschwartz/agenda/calendar"
	"github.com/kylesnowschwartz/agenda/config"
)

type options struct {
	configPath string
	dump       bool
	width      int
	locale     string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "agenda",
		Short:         "Upcoming meetings from your calendars, one keypress from joining",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.configPath, "config", "", "config file (default ~/.config/agenda/config.yaml)")
	cmd.Flags().BoolVar(&opts.dump, "dump", false, "print the agenda once and exit")
	cmd.Flags().IntVar(&opts.width, "width", 0, "render width for --dump (default: terminal width)")
	cmd.Flags().StringVar(&opts.locale, "locale", "", "locale for date labels, e.g. de-DE")
	return cmd
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts *options) error {
	path := opts.configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if opts.locale != "" {
		cfg.Locale = opts.locale
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	dir := config.Dir(path)

	log, err := newLogger(filepath.Join(dir, "agenda.log"), cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer func() { _ = log.Sync() }()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	locale := cfg.ResolvedLocale()
	f := calendar.NewFormatter(locale, loc)
	log.Info("starting",
		zap.String("config", path),
		zap.String("locale", f.Language().String()),
		zap.String("timezone", loc.String()))

	sources, localFiles, err := buildSources(ctx, cfg, dir, loc, log)
	if err != nil {
		return err
	}

	store, err := calendar.LoadAttachments(filepath.Join(dir, "attachments.yaml"))
	if err != nil {
		return err
	}

	a := &app{
		syncer: &calendar.Syncer{
			Sources:     sources,
			Attachments: store,
			ShowAllDay:  cfg.ShowAllDay,
			Log:         log,
		},
		store:        store,
		server:       cfg.MeetingServer,
		open:         openURL,
		track:        newLogAnalytics(log),
		limiter:      newRefreshLimiter(),
		triggers:     make(chan string, 1),
		log:          log,
		loc:          loc,
		horizonDays:  cfg.HorizonDays,
		backfillDays: cfg.BackfillDays,
	}
	m := newModel(a, f, termenv.HasDarkBackground())

	if opts.dump {
		return dump(ctx, m, opts.width)
	}

	sched, err := a.startSchedule(cfg.Refresh)
	if err != nil {
		return fmt.Errorf("refresh schedule: %w", err)
	}
	defer sched.Stop()

	watched := append(localFiles, store.Path())
	fw := newFileWatcher(watched, func(changed string) {
		if samePath(changed, store.Path()) {
			if err := store.Reload(); err != nil {
				log.Warn("reload attachments", zap.Error(err))
			}
		}
		log.Debug("file changed", zap.String("path", changed))
		a.trigger("file")
	}, log)
	go fw.run()
	defer fw.stop()

	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

// buildSources creates one source per configured feed and returns the
// local feed paths for the file watcher.
func buildSources(ctx context.Context, cfg *config.Config, dir string, loc *time.Location, log *zap.Logger) ([]calendar.Source, []string, error) {
	client := &http.Client{Timeout: 30 * time.Second}
	fetcher := calendar.NewFetcher(client, filepath.Join(dir, "cache"), log)

	var sources []calendar.Source
	var local []string
	for _, c := range cfg.ICS {
		src := &calendar.ICSSource{
			ID:      c.ID,
			Label:   c.Name,
			URL:     c.URL,
			Loc:     loc,
			Fetcher: fetcher,
			Log:     log,
		}
		if src.IsLocal() {
			local = append(local, src.LocalPath())
		}
		sources = append(sources, src)
	}

	if g := cfg.Google; g != nil && g.Credentials != "" {
		creds, err := os.ReadFile(g.Credentials)
		if err != nil {
			return nil, nil, fmt.Errorf("google credentials: %w", err)
		}
		token := g.Token
		if token == "" {
			token = filepath.Join(dir, "google-token.json")
		}
		src, err := calendar.NewGoogleSourceFromCredentials(ctx, creds, token, g.CalendarIDs, loc, log)
		if err != nil {
			return nil, nil, err
		}
		sources = append(sources, src)
	}

	if len(sources) == 0 {
		log.Warn("no calendars configured")
	}
	return sources, local, nil
}

// dump syncs once and prints the agenda without starting the TUI. Colors
// are downsampled to what stdout supports.
func dump(ctx context.Context, m model, width int) error {
	if width <= 0 {
		width = 100
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
			width = w
		}
	}

	from, to := m.app.window(m.now())
	ctx, cancel := context.WithTimeout(ctx, syncTimeout)
	defer cancel()
	events, stats, err := m.app.syncer.Sync(ctx, from, to)

	next, _ := m.applySync(syncResultMsg{events: events, stats: stats, err: err, at: time.Now()})
	m = next.(model)
	m.width = width
	m.height = fitHeight(m)
	m.ensureAgendaVisible()

	w := colorprofile.NewWriter(os.Stdout, os.Environ())
	if _, werr := fmt.Fprintln(w, m.render()); werr != nil {
		return werr
	}
	return err
}

// fitHeight is the terminal height that shows every agenda line at once.
func fitHeight(m model) int {
	body := m.totalLines()
	if body < 2 {
		body = 2
	}
	return headerHeight + body + statusBarHeight
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return filepath.Clean(absA) == filepath.Clean(absB)
}
