// Package dnscheck verifies that feed hosts are resolvable before a sync is
// attempted. It talks to a configured resolver directly instead of going
// through the system stub, so a broken /etc/resolv.conf shows up in
// self-check output.
package dnscheck

import (
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/miekg/dns"
)

const probeTimeout = 3 * time.Second

// ProbeHost resolves host against the given resolver (host:port) and returns
// the A record addresses.
func ProbeHost(host, server string) ([]string, error) {
	client := &dns.Client{
		Net:     "udp",
		Timeout: probeTimeout,
	}

	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(host), dns.TypeA)
	msg.RecursionDesired = true

	resp, _, err := client.Exchange(msg, server)
	if err != nil {
		return nil, fmt.Errorf("failed to query resolver %s: %w", server, err)
	}
	if resp.Rcode != dns.RcodeSuccess {
		return nil, fmt.Errorf("resolver returned %s for %s", dns.RcodeToString[resp.Rcode], host)
	}

	var addrs []string
	for _, rr := range resp.Answer {
		if a, ok := rr.(*dns.A); ok {
			addrs = append(addrs, a.A.String())
		}
	}
	return addrs, nil
}

// HostFromURL extracts the hostname of a feed URL. ok is false when the host
// is an IP literal and needs no resolution.
func HostFromURL(rawURL string) (host string, ok bool, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false, fmt.Errorf("failed to parse URL %s: %v", rawURL, err)
	}

	host = u.Hostname()
	if host == "" {
		return "", false, fmt.Errorf("URL %s has no host", rawURL)
	}
	if net.ParseIP(host) != nil {
		return host, false, nil
	}
	return host, true, nil
}
