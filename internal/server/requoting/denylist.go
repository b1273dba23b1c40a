package requoting

import (
	"strings"

	"github.com/dmitrijs2005/quotecore/internal/server/models"
)

// Denylist marks addresses whose fingerprint lookups are too expensive to
// run, typically bulk-traffic addresses like student corridors that match
// thousands of candidates. Denylisted quotes skip blocking and price reuse
// entirely.
type Denylist map[string]struct{}

// NewDenylist builds a denylist from "street|zip" entries. Matching is
// case-insensitive and whitespace-tolerant.
func NewDenylist(entries []string) Denylist {
	d := make(Denylist, len(entries))
	for _, e := range entries {
		street, zip, ok := strings.Cut(e, "|")
		if !ok {
			continue
		}
		d[denylistKey(street, zip)] = struct{}{}
	}
	return d
}

func denylistKey(street, zip string) string {
	return strings.ToLower(strings.TrimSpace(street)) + "|" + strings.ToLower(strings.TrimSpace(zip))
}

// Contains reports whether the payload's address is denylisted. Payloads
// without an address are never denylisted.
func (d Denylist) Contains(data models.ProductData) bool {
	street, zip, ok := data.Address()
	if !ok {
		return false
	}
	_, hit := d[denylistKey(street, zip)]
	return hit
}
