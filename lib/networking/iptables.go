package networking

import (
	"strconv"
	"strings"

	"github.com/coreos/go-iptables/iptables"
	"github.com/rangefence/rangefence/lib/addrsyntax"
	"github.com/rangefence/rangefence/lib/config"
	"github.com/rangefence/rangefence/lib/log"
	"github.com/valyala/fasttemplate"
)

// IPTableRules binds one family of a feed to its expanded iptables rules.
type IPTableRules struct {
	ipt   *iptables.IPTables
	rules []*config.IPTablesRule
}

// NewIPTableRules expands the feed's rule templates for the given family
// binding and opens an iptables handle of the matching protocol.
func NewIPTableRules(feed *config.FeedConfig, binding config.FamilyBinding) (*IPTableRules, error) {
	protocol := iptables.ProtocolIPv4
	if binding.Family == addrsyntax.IPv6 {
		protocol = iptables.ProtocolIPv6
	}

	ipt, err := iptables.NewWithProtocol(protocol)
	if err != nil {
		return nil, err
	}

	return &IPTableRules{ipt: ipt, rules: processRules(feed, binding)}, nil
}

func processRules(feed *config.FeedConfig, binding config.FamilyBinding) []*config.IPTablesRule {
	rules := make([]*config.IPTablesRule, len(feed.IPTablesRules))

	for i, rule := range feed.IPTablesRules {
		ruleSpecs := make([]string, len(rule.Rule))
		for j, ruleSpec := range rule.Rule {
			ruleSpecs[j] = processRulePart(ruleSpec, feed, binding)
		}

		rules[i] = &config.IPTablesRule{
			Chain: processRulePart(rule.Chain, feed, binding),
			Table: processRulePart(rule.Table, feed, binding),
			Rule:  ruleSpecs,
		}
	}

	return rules
}

func processRulePart(template string, feed *config.FeedConfig, binding config.FamilyBinding) string {
	if !strings.Contains(template, "{{") {
		return template
	}

	routeTable := 0
	if feed.Routing != nil {
		routeTable = feed.Routing.IpRouteTable
	}

	t := fasttemplate.New(template, "{{", "}}")
	return t.ExecuteString(map[string]interface{}{
		config.IPTABLES_TMPL_IPSET: binding.Cfg.IPSetName,
		config.IPTABLES_TMPL_TABLE: strconv.Itoa(routeTable),
	})
}

func (i *IPTableRules) AddIfNotExists() error {
	for _, rule := range i.rules {
		exists, err := i.ipt.Exists(rule.Table, rule.Chain, rule.Rule...)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		log.Infof("Adding iptables rule [%v]", rule)
		if err := i.ipt.Append(rule.Table, rule.Chain, rule.Rule...); err != nil {
			return err
		}
	}
	return nil
}

func (i *IPTableRules) DelIfExists() error {
	for _, rule := range i.rules {
		exists, err := i.ipt.Exists(rule.Table, rule.Chain, rule.Rule...)
		if err != nil {
			return err
		}
		if !exists {
			continue
		}

		log.Infof("Deleting iptables rule [%v]", rule)
		if err := i.ipt.Delete(rule.Table, rule.Chain, rule.Rule...); err != nil {
			return err
		}
	}
	return nil
}

func (i *IPTableRules) CheckRulesExist() (map[*config.IPTablesRule]bool, error) {
	rules := make(map[*config.IPTablesRule]bool)

	for _, rule := range i.rules {
		exists, err := i.ipt.Exists(rule.Table, rule.Chain, rule.Rule...)
		if err != nil {
			log.Errorf("Checking iptables rule presence [%v] failed: %v", rule, err)
			return nil, err
		}
		log.Debugf("Checking iptables rule presence [%v]: exists=%v", rule, exists)
		rules[rule] = exists
	}

	return rules, nil
}
