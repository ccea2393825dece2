package feeds

import (
	"fmt"
	"strconv"

	"github.com/rangefence/rangefence/lib/config"
	"github.com/rangefence/rangefence/lib/log"
	"github.com/rangefence/rangefence/lib/networking"
	"github.com/rangefence/rangefence/lib/utils"
)

// ApplyOptions controls which enforcement backends an apply run touches.
type ApplyOptions struct {
	SkipIPSet   bool
	SkipRouting bool
	DryRun      bool
}

// ApplyFeeds scans and applies every configured feed.
func ApplyFeeds(cfg *config.Config, opts ApplyOptions) error {
	for _, feed := range cfg.Feeds {
		if _, err := ApplyFeed(cfg, feed, opts); err != nil {
			return err
		}
	}
	log.Infof("All feeds applied")
	return nil
}

// ApplyFeed scans the downloaded document of one feed and pushes the accepted
// prefixes into the configured enforcement backends. Rejected candidates are
// logged and kept in the returned scan for inspection.
func ApplyFeed(cfg *config.Config, feed *config.FeedConfig, opts ApplyOptions) (*FeedScan, error) {
	doc, err := ReadDocument(cfg, feed)
	if err != nil {
		return nil, err
	}

	scan := ScanDocument(doc, feed)

	for _, result := range scan.Results {
		for _, candidate := range result.Rejected {
			log.Warnf("Feed \"%s\": rejected malformed %s candidate \"%s\"", feed.Name, result.Family, candidate)
		}
	}

	log.Infof("Feed \"%s\": %d prefixes accepted, %d rejected",
		feed.Name, scan.AcceptedCount(), scan.RejectedCount())

	if opts.DryRun {
		for _, result := range scan.Results {
			for _, prefix := range result.Accepted {
				log.Infof("Feed \"%s\" (%s): would apply %s", feed.Name, result.Family, prefix)
			}
		}
		return scan, nil
	}

	for i, binding := range feed.Families() {
		result := scan.Results[i]

		if !opts.SkipIPSet {
			if err := importIntoIPSet(feed, binding, result.Accepted); err != nil {
				return scan, err
			}
		}

		if !opts.SkipRouting && feed.Routing != nil && feed.Routing.Blackhole {
			applied, err := networking.ApplyBlackholeRoutes(result.Accepted, binding.Family, feed.Routing.IpRouteTable)
			if err != nil {
				return scan, err
			}
			log.Infof("Feed \"%s\" (%s): %d blackhole routes in table %d",
				feed.Name, result.Family, applied, feed.Routing.IpRouteTable)
		}
	}

	if feed.PostApplyHook != "" {
		if out, err := networking.RunShellScript(feed.PostApplyHook, map[string]string{
			"RANGEFENCE_FEED":     feed.Name,
			"RANGEFENCE_ACCEPTED": strconv.Itoa(scan.AcceptedCount()),
			"RANGEFENCE_REJECTED": strconv.Itoa(scan.RejectedCount()),
		}); err != nil {
			return scan, fmt.Errorf("post-apply hook for feed \"%s\" failed: %v", feed.Name, err)
		} else if out != "" {
			log.Debugf("Post-apply hook output: %s", out)
		}
	}

	return scan, nil
}

func importIntoIPSet(feed *config.FeedConfig, binding config.FamilyBinding, accepted []string) error {
	ipset := networking.BuildIPSet(binding.Cfg.IPSetName, binding.Family)

	if binding.Cfg.FlushBeforeApplying {
		if err := ipset.Flush(); err != nil {
			log.Errorf("Failed to flush ipset \"%s\": %v", ipset.Name, err)
		} else {
			log.Infof("Flushed ipset \"%s\"", ipset.Name)
		}
	}

	if err := ipset.CreateIfNotExists(); err != nil {
		return err
	}

	if err := writeAccepted(ipset, accepted); err != nil {
		return err
	}

	log.Infof("Feed \"%s\": %d networks loaded into ipset \"%s\"", feed.Name, len(accepted), ipset.Name)

	rules, err := networking.NewIPTableRules(feed, binding)
	if err != nil {
		return err
	}
	return rules.AddIfNotExists()
}

func writeAccepted(ipset *networking.IPSet, accepted []string) error {
	writer, err := ipset.OpenWriter()
	if err != nil {
		return err
	}
	defer utils.CloseOrPanic(writer)

	for _, prefix := range accepted {
		if err := writer.Add(prefix); err != nil {
			return err
		}
	}
	return nil
}
