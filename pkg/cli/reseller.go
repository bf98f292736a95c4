package cli

import (
	"fmt"
	"log/slog"

	"github.com/mchmarny/rfm/pkg/reseller"
	"github.com/urfave/cli/v2"
)

var resellersCmd = &cli.Command{
	Name:    "resellers",
	Aliases: []string{"eda"},
	Usage:   "Summarize reseller sales by business type, country and month",
	Action:  cmdResellers,
}

func cmdResellers(c *cli.Context) error {
	cfg := getConfig(c)

	sales, err := cfg.Store.ResellerSales(c.Context)
	if err != nil {
		return fmt.Errorf("loading reseller sales: %w", err)
	}

	types, err := cfg.Store.BusinessTypes(c.Context)
	if err != nil {
		return fmt.Errorf("loading business types: %w", err)
	}

	s := reseller.Summarize(sales, types)
	slog.Info("reseller sales summarized", "orders", s.TotalOrders, "months", len(s.ByMonth))

	return encode(c.App.Writer, cfg.Format, s)
}
