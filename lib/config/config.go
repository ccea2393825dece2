package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/rangefence/rangefence/lib/addrsyntax"
	"github.com/rangefence/rangefence/lib/log"
)

// Template variables usable inside iptables rule specs.
const (
	IPTABLES_TMPL_IPSET = "ipset_name"
	IPTABLES_TMPL_TABLE = "table"
)

type Config struct {
	General *GeneralConfig `toml:"general" validate:"required"`
	Feeds   []*FeedConfig  `toml:"feed" validate:"required,min=1,dive,required"`

	_absConfigFilePath string
}

type GeneralConfig struct {
	// FeedsOutputDir is where downloaded feed documents and their checksum
	// sidecars are stored.
	FeedsOutputDir string `toml:"feeds_output_dir" validate:"required"`
	// DNSCheckServer is the resolver self-check probes feed hosts against.
	// Empty disables the probe.
	DNSCheckServer string `toml:"dns_check_server,omitempty" validate:"hostport_or_empty"`
	// APIBind is the default bind address of the HTTP API server.
	APIBind string `toml:"api_bind,omitempty" validate:"hostport_or_empty"`
}

// FeedConfig describes one remote range document and how to enforce the
// prefixes extracted from it.
type FeedConfig struct {
	Name       string `toml:"name" validate:"required,feed_name"`
	URL        string `toml:"url" validate:"required,url"`
	IgnoreCase bool   `toml:"ignore_case"`

	IPv4 *FamilyConfig `toml:"ipv4"`
	IPv6 *FamilyConfig `toml:"ipv6"`

	Routing       *RoutingConfig  `toml:"routing"`
	IPTablesRules []*IPTablesRule `toml:"iptables_rule"`
	PostApplyHook string          `toml:"post_apply_hook,omitempty"`
}

// FamilyConfig holds the per-family marker tags delimiting prefix tokens
// inside the feed document, and the ipset the accepted prefixes go into.
type FamilyConfig struct {
	IPSetName string `toml:"ipset_name" validate:"required,ipset_name"`
	BeforeTag string `toml:"before_tag" validate:"required"`
	// AfterTag may be empty: extraction then runs to the end of the document.
	AfterTag            string `toml:"after_tag"`
	FlushBeforeApplying bool   `toml:"flush_before_applying"`
}

// RoutingConfig enables null-routing of accepted prefixes in addition to the
// ipset/iptables path.
type RoutingConfig struct {
	Blackhole    bool `toml:"blackhole"`
	IpRouteTable int  `toml:"table"`
}

type IPTablesRule struct {
	Chain string   `toml:"chain"`
	Table string   `toml:"table"`
	Rule  []string `toml:"rule"`
}

// FamilyBinding pairs an address family with its marker/ipset configuration.
type FamilyBinding struct {
	Family addrsyntax.Family
	Cfg    *FamilyConfig
}

// Families returns the configured family bindings of the feed, IPv4 first.
func (f *FeedConfig) Families() []FamilyBinding {
	var bindings []FamilyBinding
	if f.IPv4 != nil {
		bindings = append(bindings, FamilyBinding{Family: addrsyntax.IPv4, Cfg: f.IPv4})
	}
	if f.IPv6 != nil {
		bindings = append(bindings, FamilyBinding{Family: addrsyntax.IPv6, Cfg: f.IPv6})
	}
	return bindings
}

func LoadConfig(configPath string) (*Config, error) {
	configFile := filepath.Clean(configPath)

	if !filepath.IsAbs(configFile) {
		if path, err := filepath.Abs(configFile); err != nil {
			return nil, fmt.Errorf("failed to get absolute path: %v", err)
		} else {
			configFile = path
		}
	}

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configFile)
	}

	content, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %v", err)
	}

	cfg, err := ParseConfig(content)
	if err != nil {
		return nil, err
	}

	cfg._absConfigFilePath = configFile

	log.Debugf("Configuration file path: %s", configFile)

	return cfg, nil
}

// ParseConfig decodes a TOML document into a Config without touching the
// filesystem.
func ParseConfig(content []byte) (*Config, error) {
	var cfg Config
	if err := toml.Unmarshal(content, &cfg); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			log.Errorf("%s", derr.String())
			row, col := derr.Position()
			log.Errorf("Error at line %d, column %d", row, col)
			return nil, fmt.Errorf("failed to parse config file")
		}
		return nil, fmt.Errorf("failed to parse config file: %v", err)
	}
	return &cfg, nil
}

func (c *Config) SerializeConfig() (*bytes.Buffer, error) {
	buf := bytes.Buffer{}
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	return &buf, nil
}

// GetAbsFeedsOutputDir resolves the feeds output directory against the
// directory the config file was loaded from.
func (c *Config) GetAbsFeedsOutputDir() string {
	return makePathAbsolute(c.General.FeedsOutputDir, filepath.Dir(c._absConfigFilePath))
}

// FeedByName returns the configured feed with the given name.
func (c *Config) FeedByName(name string) (*FeedConfig, error) {
	for _, feed := range c.Feeds {
		if feed.Name == name {
			return feed, nil
		}
	}
	return nil, fmt.Errorf("feed \"%s\" not found", name)
}

func makePathAbsolute(path, baseDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Clean(filepath.Join(baseDir, path))
}
