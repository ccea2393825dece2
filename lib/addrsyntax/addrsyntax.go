// Package addrsyntax classifies strings as syntactically valid IPv4/IPv6
// addresses or CIDR subnets.
//
// This is a syntax check only: it validates the notation used by published
// range lists (decimal octets, hex fields, one :: compression run, an
// optional /N suffix) and deliberately stays permissive about leading zeros
// and compression placement. It says nothing about reachability or reserved
// ranges.
package addrsyntax

import (
	"strconv"
	"strings"
)

// Family selects the delimiter, field count and numeric base used during
// validation. Values mirror the ipset family numbering.
type Family uint8

const (
	IPv4 Family = 4
	IPv6 Family = 6
)

func (f Family) String() string {
	switch f {
	case IPv4:
		return "IPv4"
	case IPv6:
		return "IPv6"
	}
	return "IPv?"
}

const (
	fieldsV4    = 4
	minFieldsV6 = 3
	maxFieldsV6 = 8
)

// Prefix is the parsed form of a syntactically valid candidate.
type Prefix struct {
	Family Family
	Fields []uint16 // octets for IPv4, hex fields for IPv6 (compression fields as 0)
	Bits   int      // CIDR prefix length, -1 when the candidate carries no suffix
}

// IsValid reports whether candidate is a well-formed address or subnet of the
// given family. It is a pure function and never fails in any other way.
func IsValid(candidate string, family Family) bool {
	_, ok := Parse(candidate, family)
	return ok
}

// Parse validates candidate against the family grammar and returns its
// parsed form. ok is false for anything malformed; Parse never panics and
// never returns an error.
func Parse(candidate string, family Family) (Prefix, bool) {
	var (
		delim       byte
		maxFields   int
		maxFieldLen int
		base        int
		maxValue    uint64
		maxBits     uint64
	)

	switch family {
	case IPv4:
		delim, maxFields, maxFieldLen, base, maxValue, maxBits = '.', fieldsV4, 3, 10, 255, 32
	case IPv6:
		delim, maxFields, maxFieldLen, base, maxValue, maxBits = ':', maxFieldsV6, 4, 16, 0xFFFF, 128
	default:
		return Prefix{}, false
	}

	// The family delimiter must be present at all.
	if strings.IndexByte(candidate, delim) < 0 {
		return Prefix{}, false
	}

	fields, ok := splitFields(candidate, delim, maxFields)
	if !ok {
		return Prefix{}, false
	}

	if family == IPv4 && len(fields) != fieldsV4 {
		return Prefix{}, false
	}
	if family == IPv6 && len(fields) < minFieldsV6 {
		return Prefix{}, false
	}

	// Only the last field may carry a CIDR suffix.
	for _, field := range fields[:len(fields)-1] {
		if strings.IndexByte(field, '/') >= 0 {
			return Prefix{}, false
		}
	}

	bits := -1
	last := len(fields) - 1
	if strings.IndexByte(fields[last], '/') >= 0 {
		addrPart, suffix, ok := splitCIDR(fields[last])
		if !ok {
			return Prefix{}, false
		}
		n, err := strconv.ParseUint(suffix, 10, 64)
		if err != nil || n > maxBits {
			return Prefix{}, false
		}
		fields[last] = addrPart
		bits = int(n)
	}

	if family == IPv6 {
		// A shortened address needs exactly one :: compression run; two
		// runs are never legal. Empty fields at the very ends come from a
		// leading or trailing colon and do not count as the marker.
		interiorEmpty := 0
		for i := 1; i < len(fields)-1; i++ {
			if fields[i] == "" {
				interiorEmpty++
			}
		}
		if interiorEmpty > 1 {
			return Prefix{}, false
		}
		if len(fields) < maxFieldsV6 && interiorEmpty != 1 {
			return Prefix{}, false
		}
	}

	values := make([]uint16, len(fields))
	for i, field := range fields {
		if len(field) > maxFieldLen {
			return Prefix{}, false
		}
		if field == "" {
			// Elided zero field; only IPv6 compression produces these.
			if family != IPv6 {
				return Prefix{}, false
			}
			continue
		}
		v, err := strconv.ParseUint(field, base, 64)
		if err != nil || v > maxValue {
			return Prefix{}, false
		}
		values[i] = uint16(v)
	}

	return Prefix{Family: family, Fields: values, Bits: bits}, true
}

// splitFields tokenizes s on delim, preserving empty fields, and fails once
// more than max fields are produced.
func splitFields(s string, delim byte, max int) ([]string, bool) {
	fields := make([]string, 0, max)
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == delim {
			if len(fields) == max {
				return nil, false
			}
			fields = append(fields, s[start:i])
			start = i + 1
		}
	}
	return fields, true
}

// splitCIDR splits an "addr/bits" field. Exactly one slash is legal.
func splitCIDR(field string) (addrPart, suffix string, ok bool) {
	idx := strings.IndexByte(field, '/')
	if idx < 0 || strings.IndexByte(field[idx+1:], '/') >= 0 {
		return "", "", false
	}
	return field[:idx], field[idx+1:], true
}
