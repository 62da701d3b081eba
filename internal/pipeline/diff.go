package pipeline

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"pricing-ingest/internal/pricing"
)

// Change lists the model keys that differ for one provider. Keys are matched
// exactly, so a renamed model shows up as one removal and one addition.
type Change struct {
	Provider string
	Added    []string
	Removed  []string
	Changed  []string
}

// Empty reports whether nothing changed.
func (c Change) Empty() bool {
	return len(c.Added) == 0 && len(c.Removed) == 0 && len(c.Changed) == 0
}

// Diff holds one Change per provider key, in payload order.
type Diff []Change

// Empty reports whether no provider changed.
func (d Diff) Empty() bool {
	for _, c := range d {
		if !c.Empty() {
			return false
		}
	}
	return true
}

// Compare diffs two provider sets entry by entry. An entry is changed when its
// encoded JSON differs.
func Compare(prev, next pricing.Providers) (Diff, error) {
	before, err := prev.Entries()
	if err != nil {
		return nil, err
	}
	after, err := next.Entries()
	if err != nil {
		return nil, err
	}
	diff := make(Diff, 0, len(pricing.ProviderKeys))
	for _, key := range pricing.ProviderKeys {
		c := Change{Provider: key}
		old, cur := before[key], after[key]
		for model, value := range cur {
			prevValue, ok := old[model]
			switch {
			case !ok:
				c.Added = append(c.Added, model)
			case !bytes.Equal(prevValue, value):
				c.Changed = append(c.Changed, model)
			}
		}
		for model := range old {
			if _, ok := cur[model]; !ok {
				c.Removed = append(c.Removed, model)
			}
		}
		sort.Strings(c.Added)
		sort.Strings(c.Removed)
		sort.Strings(c.Changed)
		diff = append(diff, c)
	}
	return diff, nil
}

// Print writes a human-readable summary of d.
func (d Diff) Print(w io.Writer) {
	if d.Empty() {
		fmt.Fprintln(w, "No pricing changes.")
		return
	}
	for _, c := range d {
		if c.Empty() {
			continue
		}
		fmt.Fprintf(w, "%s: +%d -%d ~%d\n", c.Provider, len(c.Added), len(c.Removed), len(c.Changed))
		printKeys(w, "+", c.Added)
		printKeys(w, "-", c.Removed)
		printKeys(w, "~", c.Changed)
	}
}

func printKeys(w io.Writer, mark string, keys []string) {
	if len(keys) == 0 {
		return
	}
	fmt.Fprintf(w, "  %s %s\n", mark, strings.Join(keys, ", "))
}
