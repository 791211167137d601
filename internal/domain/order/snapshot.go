package order

import "strings"

// Snapshot is the read-only set of candidate orders loaded once per
// reconciliation run. Lookups are substring scans: order codes extracted from
// transaction notes are short prefixes of the upstream IDs, so an index would
// not help here and the snapshot stays a plain slice.
type Snapshot struct {
	orders []*Order
}

// NewSnapshot wraps a slice of orders loaded from the store. The snapshot
// takes ownership of the slice and must not be mutated afterwards.
func NewSnapshot(orders []*Order) *Snapshot {
	return &Snapshot{orders: orders}
}

// Len returns the number of orders in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.orders)
}

// Match searches the snapshot for an order whose transaction ID or source ID
// contains code as a case-insensitive substring, restricted to orders whose
// start date falls within [startMs, endMs]. If the literal code finds nothing,
// two typo normalizations are tried: every O replaced by 0, then every 0
// replaced by O, since operators routinely confuse the two when transcribing
// codes by hand. The first match across the three attempts wins; ties are not
// resolved further (codes are high entropy, collisions are rare).
func (s *Snapshot) Match(code string, startMs, endMs int64) *Order {
	if code == "" {
		return nil
	}

	upper := strings.ToUpper(code)
	variants := []string{upper}
	if v := strings.ReplaceAll(upper, "O", "0"); v != upper {
		variants = append(variants, v)
	}
	if v := strings.ReplaceAll(upper, "0", "O"); v != upper {
		variants = append(variants, v)
	}

	for _, variant := range variants {
		for _, o := range s.orders {
			if o.StartDate < startMs || o.StartDate > endMs {
				continue
			}
			if strings.Contains(strings.ToUpper(o.TranID), variant) ||
				strings.Contains(strings.ToUpper(o.SourceID), variant) {
				return o
			}
		}
	}

	return nil
}

// FindSuffixInNote scans orders of the given store within [startMs, endMs] and
// reports the first order whose last five transaction-ID characters appear as
// a case-insensitive substring of note. Returns the matched suffix and order,
// or "" and nil when nothing matches.
func (s *Snapshot) FindSuffixInNote(note, storeID string, startMs, endMs int64) (string, *Order) {
	if note == "" {
		return "", nil
	}

	upperNote := strings.ToUpper(note)
	for _, o := range s.orders {
		if o.StoreID != storeID {
			continue
		}
		if o.StartDate < startMs || o.StartDate > endMs {
			continue
		}
		if len(o.TranID) < 5 {
			continue
		}
		suffix := o.TranID[len(o.TranID)-5:]
		if strings.Contains(upperNote, strings.ToUpper(suffix)) {
			return suffix, o
		}
	}

	return "", nil
}
