package aggregate

import (
	"fmt"

	"github.com/finwatch/newsscan/internal/feed"
)

// Delta describes how one aggregation differs from the previous one.
// Watch mode uses it to report movement between rounds.
type Delta struct {
	Added   []feed.Article
	Removed []feed.Article
}

// Diff compares two aggregation snapshots by article URL. Additions
// keep next's order, removals keep prev's. A nil side counts as empty,
// so the first watch round reports every article as added. Articles
// without a URL carry no identity and are left out of the comparison.
func Diff(prev, next *Result) Delta {
	prevSet := urlSet(prev)
	nextSet := urlSet(next)

	var d Delta
	if next != nil {
		for _, a := range next.Articles {
			if a.URL != "" && !prevSet[a.URL] {
				d.Added = append(d.Added, a)
			}
		}
	}
	if prev != nil {
		for _, a := range prev.Articles {
			if a.URL != "" && !nextSet[a.URL] {
				d.Removed = append(d.Removed, a)
			}
		}
	}
	return d
}

// HasChanges reports whether the two snapshots differ at all.
func (d Delta) HasChanges() bool {
	return len(d.Added) > 0 || len(d.Removed) > 0
}

// Summary returns a short description for round banners and logs.
func (d Delta) Summary() string {
	if !d.HasChanges() {
		return "no changes since last round"
	}
	return fmt.Sprintf("%d new, %d dropped", len(d.Added), len(d.Removed))
}

func urlSet(r *Result) map[string]bool {
	if r == nil {
		return nil
	}
	set := make(map[string]bool, len(r.Articles))
	for _, a := range r.Articles {
		if a.URL != "" {
			set[a.URL] = true
		}
	}
	return set
}
