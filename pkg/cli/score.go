package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mchmarny/rfm/pkg/data"
	"github.com/mchmarny/rfm/pkg/rfm"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v2"
)

const snapshotLayout = "2006-01-02"

var (
	errNoSales = errors.New("no B2C sales found in the database")

	snapshotFlag = &cli.StringFlag{
		Name:  "snapshot",
		Usage: "Snapshot date (YYYY-MM-DD) recency is measured from (default: day after the latest sale)",
	}

	limitFlag = &cli.IntFlag{
		Name:  "limit",
		Usage: "Limits number of customers returned (0 for all)",
	}

	topFlag = &cli.IntFlag{
		Name:  "top",
		Usage: "Number of top customers by monetary value in the report (default from config)",
	}

	windowFlag = &cli.IntFlag{
		Name:  "window",
		Usage: "Prediction window in days after the feature snapshot (default from config)",
	}

	progressFlag = &cli.BoolFlag{
		Name:  "progress",
		Usage: "Show progress while loading sales",
	}

	scoreCmd = &cli.Command{
		Name:    "score",
		Aliases: []string{"s"},
		Usage:   "Score every customer on recency, frequency and monetary value",
		Action:  cmdScore,
		Flags: []cli.Flag{
			snapshotFlag,
			limitFlag,
			progressFlag,
		},
	}

	reportCmd = &cli.Command{
		Name:    "report",
		Aliases: []string{"r"},
		Usage:   "Summarize customer segments (counts, monetary totals, top customers)",
		Action:  cmdReport,
		Flags: []cli.Flag{
			snapshotFlag,
			topFlag,
			progressFlag,
		},
	}

	featuresCmd = &cli.Command{
		Name:    "features",
		Aliases: []string{"f"},
		Usage:   "Build purchase-propensity features (RFM + country, will-purchase label)",
		Action:  cmdFeatures,
		Flags: []cli.Flag{
			windowFlag,
			progressFlag,
		},
	}
)

// CustomerScore is a scored customer with its display name.
type CustomerScore struct {
	rfm.ScoredCustomer `yaml:",inline"`
	Customer           string `json:"customer,omitempty" yaml:"customer,omitempty"`
}

type ScoreResult struct {
	Snapshot  string           `json:"snapshot" yaml:"snapshot"`
	Customers int              `json:"customers" yaml:"customers"`
	Duration  string           `json:"duration" yaml:"duration"`
	Scores    []*CustomerScore `json:"scores" yaml:"scores"`
}

type ReportResult struct {
	Snapshot        string                 `json:"snapshot" yaml:"snapshot"`
	Customers       int                    `json:"customers" yaml:"customers"`
	SegmentCounts   []*rfm.SegmentCount    `json:"segment_counts" yaml:"segment_counts"`
	SegmentMonetary []*rfm.SegmentMonetary `json:"segment_monetary" yaml:"segment_monetary"`
	Top             []*CustomerScore       `json:"top" yaml:"top"`
}

func cmdScore(c *cli.Context) error {
	start := time.Now()
	cfg := getConfig(c)

	snapshot, scored, err := scoreCustomers(c, cfg)
	if err != nil {
		return err
	}

	limit := c.Int(limitFlag.Name)
	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}

	names, err := customerNames(c, cfg)
	if err != nil {
		return err
	}

	res := &ScoreResult{
		Snapshot:  snapshot.Format(snapshotLayout),
		Customers: len(scored),
		Scores:    withNames(scored, names),
		Duration:  time.Since(start).String(),
	}

	return encode(c.App.Writer, cfg.Format, res)
}

func cmdReport(c *cli.Context) error {
	cfg := getConfig(c)

	snapshot, scored, err := scoreCustomers(c, cfg)
	if err != nil {
		return err
	}

	top := c.Int(topFlag.Name)
	if top <= 0 {
		top = cfg.Config.TopCustomers
	}

	names, err := customerNames(c, cfg)
	if err != nil {
		return err
	}

	r := rfm.Summarize(snapshot, scored, top)
	slog.Debug("report ready", "customers", r.Customers, "segments", len(r.SegmentCounts))

	res := &ReportResult{
		Snapshot:        snapshot.Format(snapshotLayout),
		Customers:       r.Customers,
		SegmentCounts:   r.SegmentCounts,
		SegmentMonetary: r.SegmentMonetary,
		Top:             withNames(r.Top, names),
	}

	return encode(c.App.Writer, cfg.Format, res)
}

func cmdFeatures(c *cli.Context) error {
	cfg := getConfig(c)

	window := c.Int(windowFlag.Name)
	if window <= 0 {
		window = cfg.Config.PredictionWindowDays
	}

	txs, err := loadTransactions(c, cfg)
	if err != nil {
		return err
	}

	customers, err := cfg.Store.Customers(c.Context)
	if err != nil {
		return fmt.Errorf("loading customers: %w", err)
	}

	fs, err := rfm.BuildFeatures(txs, data.Countries(customers), window)
	if err != nil {
		return fmt.Errorf("building features: %w", err)
	}
	slog.Info("features built", "rows", len(fs.Rows), "positives", fs.Positives)

	return encode(c.App.Writer, cfg.Format, fs)
}

func scoreCustomers(c *cli.Context, cfg *appConfig) (time.Time, []*rfm.ScoredCustomer, error) {
	txs, err := loadTransactions(c, cfg)
	if err != nil {
		return time.Time{}, nil, err
	}

	snapshot, err := parseSnapshot(c.String(snapshotFlag.Name), txs)
	if err != nil {
		return time.Time{}, nil, err
	}

	scored, err := rfm.Score(snapshot, txs)
	if err != nil {
		return time.Time{}, nil, fmt.Errorf("scoring customers as of %s: %w",
			snapshot.Format(snapshotLayout), err)
	}
	slog.Info("customers scored", "snapshot", snapshot.Format(snapshotLayout), "customers", len(scored))

	return snapshot, scored, nil
}

func loadTransactions(c *cli.Context, cfg *appConfig) ([]rfm.Transaction, error) {
	var (
		bar      *progressbar.ProgressBar
		progress data.Progress
	)
	if c.Bool(progressFlag.Name) {
		n, err := cfg.Store.CountTransactions(c.Context)
		if err != nil {
			return nil, fmt.Errorf("counting sales: %w", err)
		}
		bar = progressbar.Default(int64(n), "loading sales")
		progress = bar
	}

	txs, err := cfg.Store.Transactions(c.Context, progress)
	if bar != nil {
		if ferr := bar.Finish(); ferr != nil {
			slog.Debug("progress bar finish", "error", ferr)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("loading sales: %w", err)
	}
	if len(txs) == 0 {
		return nil, errNoSales
	}
	return txs, nil
}

func customerNames(c *cli.Context, cfg *appConfig) (map[int64]string, error) {
	customers, err := cfg.Store.Customers(c.Context)
	if err != nil {
		return nil, fmt.Errorf("loading customers: %w", err)
	}
	m := make(map[int64]string, len(customers))
	for k, v := range customers {
		m[k] = v.Name
	}
	return m, nil
}

func withNames(list []*rfm.ScoredCustomer, names map[int64]string) []*CustomerScore {
	out := make([]*CustomerScore, 0, len(list))
	for _, s := range list {
		out = append(out, &CustomerScore{
			ScoredCustomer: *s,
			Customer:       names[s.CustomerID],
		})
	}
	return out
}

// parseSnapshot falls back to the day after the latest transaction when v is empty.
func parseSnapshot(v string, txs []rfm.Transaction) (time.Time, error) {
	if v == "" {
		return rfm.DefaultSnapshot(txs), nil
	}
	t, err := time.Parse(snapshotLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid snapshot date %q, expected YYYY-MM-DD: %w", v, err)
	}
	return t, nil
}
