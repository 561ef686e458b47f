package smoketest

import (
	"fmt"
	"strings"
)

// newMatches returns the fish named name whose Id is not in before.
func newMatches(list []Fish, name string, before map[int64]struct{}) []Fish {
	var out []Fish
	for _, f := range list {
		if f.Name != name {
			continue
		}
		if _, seen := before[f.ID]; seen {
			continue
		}
		out = append(out, f)
	}
	return out
}

func idSet(list []Fish) map[int64]struct{} {
	ids := make(map[int64]struct{}, len(list))
	for _, f := range list {
		ids[f.ID] = struct{}{}
	}
	return ids
}

func containsID(list []Fish, id int64) bool {
	for _, f := range list {
		if f.ID == id {
			return true
		}
	}
	return false
}

// withPrefix keeps the fish whose name starts with prefix, in list order.
func withPrefix(list []Fish, prefix string) []Fish {
	var out []Fish
	for _, f := range list {
		if strings.HasPrefix(f.Name, prefix) {
			out = append(out, f)
		}
	}
	return out
}

// verifyAscending checks that names never decrease. Batch names share a
// prefix and differ in their first distinct letter, so a case-insensitive
// comparison agrees with any database collation.
func verifyAscending(list []Fish) error {
	for i := 1; i < len(list); i++ {
		prev, cur := strings.ToLower(list[i-1].Name), strings.ToLower(list[i].Name)
		if prev > cur {
			return fmt.Errorf("list not ordered by Name: %q at %d comes before %q", list[i-1].Name, i-1, list[i].Name)
		}
	}
	return nil
}

// verifyRecord compares the stored fields of got against want.
func verifyRecord(got, want Fish) error {
	switch {
	case got.Name != want.Name:
		return fmt.Errorf("Name = %q, want %q", got.Name, want.Name)
	case got.Sell != want.Sell:
		return fmt.Errorf("Sell = %d, want %d", got.Sell, want.Sell)
	case got.Shadow != want.Shadow:
		return fmt.Errorf("Shadow = %q, want %q", got.Shadow, want.Shadow)
	case got.Where != want.Where:
		return fmt.Errorf("Where = %q, want %q", got.Where, want.Where)
	case got.ID == 0:
		return fmt.Errorf("Id was not assigned")
	}
	return nil
}
