package commands

import (
	"flag"
	"os"
	"strings"

	"github.com/rangefence/rangefence/lib/config"
	"github.com/rangefence/rangefence/lib/dnscheck"
	"github.com/rangefence/rangefence/lib/log"
	"github.com/rangefence/rangefence/lib/networking"
)

func CreateSelfCheckCommand() *SelfCheckCommand {
	gc := &SelfCheckCommand{
		fs: flag.NewFlagSet("self-check", flag.ExitOnError),
	}
	return gc
}

type SelfCheckCommand struct {
	fs  *flag.FlagSet
	cfg *config.Config
}

func (g *SelfCheckCommand) Name() string {
	return g.fs.Name()
}

func (g *SelfCheckCommand) Init(args []string, ctx *AppContext) error {
	if err := g.fs.Parse(args); err != nil {
		return err
	}

	if cfg, err := loadAndValidateConfigOrFail(ctx.ConfigPath); err != nil {
		return err
	} else {
		g.cfg = cfg
	}

	return nil
}

func (g *SelfCheckCommand) Run() error {
	log.Infof("Running self-check...")
	log.Infof("---------------- Configuration START -----------------")

	if cfg, err := g.cfg.SerializeConfig(); err != nil {
		log.Errorf("Failed to serialize config: %v", err)
		return err
	} else {
		if _, err := os.Stdout.Write(cfg.Bytes()); err != nil {
			log.Errorf("Failed to output config: %v", err)
			return err
		}
	}

	log.Infof("----------------- Configuration END ------------------")

	for _, feed := range g.cfg.Feeds {
		if err := checkFeed(g.cfg, feed); err != nil {
			log.Errorf("Failed to check feed [%s]: %v", feed.Name, err)
			return err
		}
	}

	log.Infof("Self-check completed successfully")
	return nil
}

func checkFeed(cfg *config.Config, feed *config.FeedConfig) error {
	log.Infof("----------------- Feed [%s] ------------------", feed.Name)

	checkFeedHost(cfg, feed)

	for _, binding := range feed.Families() {
		ipset := networking.BuildIPSet(binding.Cfg.IPSetName, binding.Family)
		if exists, err := ipset.Exists(); err != nil {
			log.Errorf("Failed to check ipset presence [%s]: %v", ipset.Name, err)
			return err
		} else if exists {
			log.Infof("ipset [%s] exists", ipset.Name)
		} else {
			log.Errorf("ipset [%s] does NOT exist", ipset.Name)
		}

		rules, err := networking.NewIPTableRules(feed, binding)
		if err != nil {
			return err
		}
		present, err := rules.CheckRulesExist()
		if err != nil {
			return err
		}
		for rule, exists := range present {
			if exists {
				log.Infof("iptables rule [%v] exists", rule)
			} else {
				log.Errorf("iptables rule [%v] does NOT exist", rule)
			}
		}

		if feed.Routing != nil && feed.Routing.Blackhole {
			count, err := networking.CountBlackholeRoutes(binding.Family, feed.Routing.IpRouteTable)
			if err != nil {
				log.Errorf("Failed to list routes in table %d: %v", feed.Routing.IpRouteTable, err)
				return err
			}
			if count > 0 {
				log.Infof("Routing table %d holds %d %s route(s)", feed.Routing.IpRouteTable, count, binding.Family)
			} else {
				log.Warnf("Routing table %d is empty for %s", feed.Routing.IpRouteTable, binding.Family)
			}
		}
	}

	return nil
}

func checkFeedHost(cfg *config.Config, feed *config.FeedConfig) {
	if cfg.General.DNSCheckServer == "" {
		log.Warnf("dns_check_server is not configured, skipping feed host resolution check")
		return
	}

	host, needsResolve, err := dnscheck.HostFromURL(feed.URL)
	if err != nil {
		log.Errorf("Feed [%s] URL check failed: %v", feed.Name, err)
		return
	}
	if !needsResolve {
		log.Infof("Feed [%s] host %s is an IP literal, no resolution needed", feed.Name, host)
		return
	}

	addrs, err := dnscheck.ProbeHost(host, cfg.General.DNSCheckServer)
	if err != nil {
		log.Errorf("Feed [%s] host %s is NOT resolvable: %v", feed.Name, host, err)
		return
	}
	if len(addrs) == 0 {
		log.Warnf("Feed [%s] host %s resolved to no A records", feed.Name, host)
		return
	}
	log.Infof("Feed [%s] host %s resolves to %s", feed.Name, host, strings.Join(addrs, ", "))
}
