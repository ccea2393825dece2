package feeds

import (
	"strings"

	"github.com/rangefence/rangefence/lib/addrsyntax"
	"github.com/rangefence/rangefence/lib/config"
	"github.com/rangefence/rangefence/lib/textscan"
)

// ScanResult holds the classified candidates of one family pass. Both lists
// preserve the order the tokens were encountered in the document.
type ScanResult struct {
	Family   addrsyntax.Family `json:"family"`
	Accepted []string          `json:"accepted"`
	Rejected []string          `json:"rejected"`
}

// FeedScan is the outcome of scanning one feed document, one ScanResult per
// configured family in pass order.
type FeedScan struct {
	Results []ScanResult `json:"results"`
}

// ScanDocument runs one extraction pass per configured address family over
// the feed document. All passes share a single cursor; the cursor is reset to
// the left edge between passes.
func ScanDocument(text string, feed *config.FeedConfig) *FeedScan {
	var cursor *textscan.Cursor
	if feed.IgnoreCase {
		cursor = textscan.NewFolded(text)
	} else {
		cursor = textscan.New(text)
	}

	scan := &FeedScan{}
	for _, binding := range feed.Families() {
		cursor.Reset()
		scan.Results = append(scan.Results,
			scanFamily(cursor, binding.Family, binding.Cfg.BeforeTag, binding.Cfg.AfterTag))
	}
	return scan
}

// scanFamily pulls every tagged token out of the buffer and classifies it.
// Running out of tokens terminates the loop; it is not an error.
func scanFamily(cursor *textscan.Cursor, family addrsyntax.Family, beforeTag, afterTag string) ScanResult {
	result := ScanResult{Family: family}

	for {
		token, ok := cursor.TrySeekAndExtract("", beforeTag, afterTag)
		if !ok {
			break
		}

		candidate := strings.TrimSpace(token)
		if candidate == "" {
			break
		}

		if addrsyntax.IsValid(candidate, family) {
			result.Accepted = append(result.Accepted, candidate)
		} else {
			result.Rejected = append(result.Rejected, candidate)
		}
	}

	return result
}

// AcceptedCount returns the total number of accepted prefixes across all
// family passes.
func (s *FeedScan) AcceptedCount() int {
	n := 0
	for _, r := range s.Results {
		n += len(r.Accepted)
	}
	return n
}

// RejectedCount returns the total number of rejected candidates across all
// family passes.
func (s *FeedScan) RejectedCount() int {
	n := 0
	for _, r := range s.Results {
		n += len(r.Rejected)
	}
	return n
}
