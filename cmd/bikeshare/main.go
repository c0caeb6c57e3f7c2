package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lox/bikeshare/internal/analysis"
	"github.com/lox/bikeshare/internal/api"
	"github.com/lox/bikeshare/internal/charts"
	"github.com/lox/bikeshare/internal/config"
	"github.com/lox/bikeshare/internal/dataset"
	"github.com/lox/bikeshare/internal/insights"
	"github.com/lox/bikeshare/internal/metrics"
	"github.com/lox/bikeshare/internal/models"
	"github.com/lox/bikeshare/internal/report"
	"github.com/lox/bikeshare/internal/store"
)

type Globals struct {
	Daily        string `help:"Daily dataset: path, file://, http(s):// or ftp:// URL." default:"data/day.csv" env:"BIKESHARE_DAILY"`
	Hourly       string `help:"Hourly dataset: path, file://, http(s):// or ftp:// URL." default:"data/hour.csv" env:"BIKESHARE_HOURLY"`
	Config       string `help:"Report settings YAML file." env:"BIKESHARE_CONFIG"`
	DB           string `name:"db" help:"SQLite database for report snapshots; empty disables storage." default:"data/bikeshare.db" env:"BIKESHARE_DB"`
	InsightModel string `help:"OpenAI model for generated commentary (needs OPENAI_API_KEY)." default:"gpt-4o-mini" env:"OPENAI_MODEL"`
	LogLevel     string `help:"Log level." default:"info" enum:"debug,info,warn,error" env:"BIKESHARE_LOG_LEVEL"`
}

type CLI struct {
	Globals

	Serve  ServeCmd  `cmd:"" default:"withargs" help:"Build the report and serve the dashboard."`
	Render RenderCmd `cmd:"" help:"Build the report and write it to a file or stdout."`
}

type ServeCmd struct {
	Port string `help:"HTTP server port." default:"8080" env:"PORT"`
}

func (c *ServeCmd) Run(ctx context.Context, g *Globals) error {
	a, err := g.build(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	renderer := charts.NewRenderer(a.report, a.logger)
	server := api.NewServer(a.report, renderer, a.store, a.insight, c.Port, a.logger)
	return server.Run(ctx)
}

type RenderCmd struct {
	Format string `help:"Output format." default:"html" enum:"html,markdown,text,json"`
	Out    string `short:"o" help:"Output file, - for stdout." default:"-"`
}

func (c *RenderCmd) Run(ctx context.Context, g *Globals) error {
	format, err := report.ParseFormat(c.Format)
	if err != nil {
		return err
	}

	a, err := g.build(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	var src report.ChartSource = report.LinkedCharts
	if format == report.FormatHTML {
		src = report.InlineCharts(charts.NewRenderer(a.report, a.logger))
	}
	page, err := report.NewPage(a.report, a.insight, src)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if c.Out != "-" {
		f, err := os.Create(c.Out)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}
	if err := report.Write(w, format, page); err != nil {
		return fmt.Errorf("write %s: %w", format, err)
	}
	if c.Out != "-" {
		a.logger.Info("report written", zap.String("path", c.Out), zap.String("format", string(format)))
	}
	return nil
}

type app struct {
	logger  *zap.Logger
	report  *analysis.Report
	store   *store.Store
	insight string
	close   func() error
}

func (a *app) Close() {
	if a.close != nil {
		if err := a.close(); err != nil {
			a.logger.Warn("close store", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}

// build loads the settings and both datasets, builds the report, records a
// snapshot and fetches the optional commentary. On error everything it opened
// is closed again.
func (g *Globals) build(ctx context.Context) (_ *app, err error) {
	logger, err := newLogger(g.LogLevel)
	if err != nil {
		return nil, err
	}
	a := &app{logger: logger}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	settings, path, err := config.Load(g.Config)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if path != "" {
		logger.Info("settings loaded", zap.String("path", path))
	}

	gen := analysis.NewGenerator(dataset.NewFetcher(), settings, logger)
	a.report, err = gen.Generate(ctx, g.Daily, g.Hourly)
	if err != nil {
		return nil, err
	}

	if g.DB != "" {
		if err := a.openStore(g.DB); err != nil {
			return nil, err
		}
		a.saveSnapshot()
	}

	a.insight = a.generateInsight(ctx, g.InsightModel)
	return a, nil
}

func (a *app) openStore(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data directory: %w", err)
		}
	}
	db, err := store.Open(path)
	if err != nil {
		return err
	}
	st := store.New(db, a.logger)
	if err := st.Migrate(); err != nil {
		db.Close()
		return fmt.Errorf("migrate: %w", err)
	}
	a.store = st
	a.close = db.Close
	return nil
}

// saveSnapshot failures are logged; the report is still served.
func (a *app) saveSnapshot() {
	payload, err := json.Marshal(a.report)
	if err != nil {
		metrics.SnapshotsSaved.WithLabelValues("error").Inc()
		a.logger.Error("encode snapshot", zap.Error(err))
		return
	}
	snap := models.Snapshot{
		ID:           uuid.NewString(),
		CreatedAt:    time.Now().UTC(),
		DailySource:  a.report.DailySource,
		HourlySource: a.report.HourlySource,
		Fingerprint:  a.report.Fingerprint,
	}
	saved, err := a.store.SaveSnapshot(snap, payload)
	switch {
	case err != nil:
		metrics.SnapshotsSaved.WithLabelValues("error").Inc()
		a.logger.Error("save snapshot", zap.Error(err))
	case saved:
		metrics.SnapshotsSaved.WithLabelValues("stored").Inc()
		a.logger.Info("snapshot saved", zap.String("id", snap.ID), zap.Int("bytes", len(payload)))
	default:
		metrics.SnapshotsSaved.WithLabelValues("duplicate").Inc()
		a.logger.Info("snapshot unchanged", zap.String("fingerprint", snap.Fingerprint))
	}
}

func (a *app) generateInsight(ctx context.Context, model string) string {
	gen, err := insights.NewGenerator(model)
	if err != nil {
		a.logger.Info("insights disabled", zap.Error(err))
		return ""
	}

	var cache insights.Cache
	if a.store != nil {
		cache = a.store
	}
	svc := insights.NewService(gen, cache, a.logger)

	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	text, err := svc.Insight(ctx, a.report)
	if err != nil {
		a.logger.Warn("insight generation failed", zap.Error(err))
		return ""
	}
	return text
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("bikeshare"),
		kong.Description("Bike rental analysis dashboard."),
		kong.UsageOnError(),
		kong.Configuration(kongdotenv.ENVFileReader, ".env"),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	kctx.BindTo(ctx, (*context.Context)(nil))
	err := kctx.Run(&cli.Globals)
	cancel()
	kctx.FatalIfErrorf(err)
}
