package networking

import (
	"fmt"
	"net"

	"github.com/rangefence/rangefence/lib/addrsyntax"
	"github.com/rangefence/rangefence/lib/log"
	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"
)

const BLACKHOLE_ROUTE_METRIC = 200

// BlackholeRoute is a null route for one accepted prefix in a dedicated
// routing table.
type BlackholeRoute struct {
	*netlink.Route
}

func (r *BlackholeRoute) String() string {
	dst := "all"
	if r.Dst != nil {
		dst = r.Dst.String()
	}
	return fmt.Sprintf("table %d: blackhole %s", r.Table, dst)
}

// BuildBlackholeRoute builds the null route for a prefix as extracted from a
// feed (bare address or CIDR form).
func BuildBlackholeRoute(prefix string, family addrsyntax.Family, table int) (*BlackholeRoute, error) {
	dst, err := prefixToIPNet(prefix, family)
	if err != nil {
		return nil, err
	}

	ipr := netlink.Route{}
	ipr.Type = unix.RTN_BLACKHOLE
	ipr.Table = table
	ipr.Dst = dst
	ipr.Priority = BLACKHOLE_ROUTE_METRIC
	if family == addrsyntax.IPv6 {
		ipr.Family = netlink.FAMILY_V6
	} else {
		ipr.Family = netlink.FAMILY_V4
	}

	return &BlackholeRoute{&ipr}, nil
}

// AddIfNotExists inserts the route, replacing an identical existing one.
func (r *BlackholeRoute) AddIfNotExists() error {
	if err := netlink.RouteReplace(r.Route); err != nil {
		return fmt.Errorf("failed to add route [%v]: %v", r, err)
	}
	return nil
}

// ApplyBlackholeRoutes null-routes every accepted prefix into table. Prefixes
// that fail to apply are logged and skipped; the count of applied routes is
// returned.
func ApplyBlackholeRoutes(prefixes []string, family addrsyntax.Family, table int) (int, error) {
	applied := 0
	for _, prefix := range prefixes {
		route, err := BuildBlackholeRoute(prefix, family, table)
		if err != nil {
			log.Warnf("Could not build blackhole route for \"%s\": %v", prefix, err)
			continue
		}
		if err := route.AddIfNotExists(); err != nil {
			return applied, err
		}
		applied++
	}
	return applied, nil
}

// CountBlackholeRoutes returns how many routes are currently present in the
// given table for the given family.
func CountBlackholeRoutes(family addrsyntax.Family, table int) (int, error) {
	nlFamily := netlink.FAMILY_V4
	if family == addrsyntax.IPv6 {
		nlFamily = netlink.FAMILY_V6
	}

	filter := &netlink.Route{Table: table}
	routes, err := netlink.RouteListFiltered(nlFamily, filter, netlink.RT_FILTER_TABLE)
	if err != nil {
		return 0, err
	}
	return len(routes), nil
}

// prefixToIPNet turns an accepted feed prefix into a *net.IPNet, treating a
// bare address as a full-length prefix.
func prefixToIPNet(prefix string, family addrsyntax.Family) (*net.IPNet, error) {
	parsed, ok := addrsyntax.Parse(prefix, family)
	if !ok {
		return nil, fmt.Errorf("prefix \"%s\" is not a valid %s network", prefix, family)
	}

	bits := 32
	if family == addrsyntax.IPv6 {
		bits = 128
	}

	if parsed.Bits >= 0 {
		_, ipNet, err := net.ParseCIDR(prefix)
		if err != nil {
			return nil, fmt.Errorf("prefix \"%s\" is not routable: %v", prefix, err)
		}
		return ipNet, nil
	}

	ip := net.ParseIP(prefix)
	if ip == nil {
		return nil, fmt.Errorf("prefix \"%s\" is not routable", prefix)
	}
	return &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)}, nil
}
