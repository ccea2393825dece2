package config

import (
	"errors"
	"fmt"
	"net"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ipsetRegexp = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
	feedRegexp  = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)
)

// ValidationError is a single validation failure with enough context to fix
// the configuration.
type ValidationError struct {
	ItemName  string // name of the feed the error belongs to, if any
	FieldPath string // dot-notation field path using toml names
	Message   string
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("validation failed with %d error(s):\n", len(ve)))
	for i, err := range ve {
		if err.ItemName != "" {
			sb.WriteString(fmt.Sprintf("  %d. [%s] %s: %s\n", i+1, err.ItemName, err.FieldPath, err.Message))
		} else {
			sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.FieldPath, err.Message))
		}
	}
	return sb.String()
}

var validate *validator.Validate

func init() {
	validate = validator.New()

	if err := validate.RegisterValidation("ipset_name", validateIPSetNameTag); err != nil {
		panic(err)
	}
	if err := validate.RegisterValidation("feed_name", validateFeedNameTag); err != nil {
		panic(err)
	}
	if err := validate.RegisterValidation("hostport_or_empty", validateHostPortOrEmptyTag); err != nil {
		panic(err)
	}

	// Report field names the way they appear in the TOML file.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("toml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateIPSetNameTag(fl validator.FieldLevel) bool {
	return ipsetRegexp.MatchString(fl.Field().String())
}

func validateFeedNameTag(fl validator.FieldLevel) bool {
	return feedRegexp.MatchString(fl.Field().String())
}

func validateHostPortOrEmptyTag(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, _, err := net.SplitHostPort(value)
	return err == nil
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "field is required"
	case "min":
		return fmt.Sprintf("must contain at least %s item(s)", e.Param())
	case "url":
		return "must be a valid URL"
	case "ipset_name":
		return "must consist only of lowercase letters, numbers, and underscores [a-z0-9_]"
	case "feed_name":
		return "must consist only of lowercase letters, numbers, underscores, and hyphens"
	case "hostport_or_empty":
		return "must be in format 'host:port' or empty"
	default:
		return fmt.Sprintf("validation failed: %s", e.Tag())
	}
}

// Validate checks the configuration, fills in defaults (default iptables
// rule, implicit routing section) and returns all problems at once.
func (c *Config) Validate() error {
	var verrs ValidationErrors

	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for _, fe := range fieldErrs {
			verrs = append(verrs, ValidationError{
				FieldPath: strings.TrimPrefix(fe.Namespace(), "Config."),
				Message:   getValidationMessage(fe),
			})
		}
	}

	names := make(map[string]bool)
	ipsetNames := make(map[string]bool)
	tables := make(map[int]bool)

	for _, feed := range c.Feeds {
		if feed == nil {
			continue
		}

		if err := checkDuplicates(feed.Name, names, "feed name"); err != nil {
			verrs = append(verrs, ValidationError{ItemName: feed.Name, FieldPath: "name", Message: err.Error()})
		}

		if feed.IPv4 == nil && feed.IPv6 == nil {
			verrs = append(verrs, ValidationError{
				ItemName:  feed.Name,
				FieldPath: "ipv4/ipv6",
				Message:   "feed should contain at least one of \"ipv4\" or \"ipv6\" sections, check your configuration",
			})
			continue
		}

		for _, binding := range feed.Families() {
			if err := checkDuplicates(binding.Cfg.IPSetName, ipsetNames, "ipset name"); err != nil {
				verrs = append(verrs, ValidationError{ItemName: feed.Name, FieldPath: "ipset_name", Message: err.Error()})
			}
		}

		if feed.Routing != nil && feed.Routing.Blackhole {
			if feed.Routing.IpRouteTable <= 0 {
				verrs = append(verrs, ValidationError{
					ItemName:  feed.Name,
					FieldPath: "routing.table",
					Message:   "blackhole routing requires a positive \"table\" number, check your configuration",
				})
			} else if err := checkDuplicates(feed.Routing.IpRouteTable, tables, "routing table"); err != nil {
				verrs = append(verrs, ValidationError{ItemName: feed.Name, FieldPath: "routing.table", Message: err.Error()})
			}
		}

		if err := applyIPTablesDefaults(feed); err != nil {
			verrs = append(verrs, ValidationError{ItemName: feed.Name, FieldPath: "iptables_rule", Message: err.Error()})
		}
	}

	if len(verrs) > 0 {
		return verrs
	}
	return nil
}

// applyIPTablesDefaults synthesizes the default drop rule when the feed does
// not declare its own rules, and sanity-checks declared ones.
func applyIPTablesDefaults(feed *FeedConfig) error {
	if feed.IPTablesRules == nil {
		feed.IPTablesRules = []*IPTablesRule{
			{
				Chain: "INPUT",
				Table: "filter",
				Rule: []string{
					"-m", "set", "--match-set", "{{" + IPTABLES_TMPL_IPSET + "}}", "src",
					"-j", "DROP",
				},
			},
		}
		return nil
	}

	for _, rule := range feed.IPTablesRules {
		if rule.Chain == "" {
			return fmt.Errorf("iptables rule should contain non-empty \"chain\" field, check your configuration")
		}
		if rule.Table == "" {
			return fmt.Errorf("iptables rule should contain non-empty \"table\" field, check your configuration")
		}
		if len(rule.Rule) == 0 {
			return fmt.Errorf("iptables rule should contain non-empty \"rule\" field, check your configuration")
		}
	}
	return nil
}

func checkDuplicates[T comparable](value T, seen map[T]bool, itemType string) error {
	if seen[value] {
		return fmt.Errorf("duplicate %s found: %v, check your configuration", itemType, value)
	}
	seen[value] = true
	return nil
}
