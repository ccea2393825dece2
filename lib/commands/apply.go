package commands

import (
	"flag"
	"fmt"

	"github.com/rangefence/rangefence/lib/config"
	"github.com/rangefence/rangefence/lib/feeds"
)

func CreateApplyCommand() *ApplyCommand {
	gc := &ApplyCommand{
		fs: flag.NewFlagSet("apply", flag.ExitOnError),
	}

	gc.fs.BoolVar(&gc.SkipIPSet, "skip-ipset", false, "Skip ipset and iptables application")
	gc.fs.BoolVar(&gc.SkipRouting, "skip-routing", false, "Skip blackhole route application")
	gc.fs.BoolVar(&gc.DryRun, "dry-run", false, "Only print accepted/rejected prefixes, do not touch the firewall")

	return gc
}

type ApplyCommand struct {
	fs  *flag.FlagSet
	cfg *config.Config

	SkipIPSet   bool
	SkipRouting bool
	DryRun      bool
}

func (g *ApplyCommand) Name() string {
	return g.fs.Name()
}

func (g *ApplyCommand) Init(args []string, ctx *AppContext) error {
	if err := g.fs.Parse(args); err != nil {
		return err
	}

	if g.SkipIPSet && g.SkipRouting && !g.DryRun {
		return fmt.Errorf("--skip-ipset and --skip-routing are used, nothing to do")
	}

	if cfg, err := loadAndValidateConfigOrFail(ctx.ConfigPath); err != nil {
		return err
	} else {
		g.cfg = cfg
	}

	return nil
}

func (g *ApplyCommand) Run() error {
	return feeds.ApplyFeeds(g.cfg, feeds.ApplyOptions{
		SkipIPSet:   g.SkipIPSet,
		SkipRouting: g.SkipRouting,
		DryRun:      g.DryRun,
	})
}
