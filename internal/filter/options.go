package filter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/skaphos/gitfleet/internal/model"
)

// Options collects the flag-level filter knobs. All selected criteria must
// hold at once (AND-combined).
type Options struct {
	// Names is an allow-list of repository names or owner/name pairs.
	Names []string
	// Orgs is an allow-list of owners.
	Orgs []string
	// Patterns holds glob patterns matched against the repository name.
	Patterns []string
	// IncludeForks keeps forks, which are dropped by default.
	IncludeForks bool
	// IncludeArchived keeps archived repositories, dropped by default.
	IncludeArchived bool
	// PrivateOnly keeps only private repositories.
	PrivateOnly bool
	// PublicOnly keeps only public repositories.
	PublicOnly bool
}

// Validate rejects contradictory or malformed options.
func (o Options) Validate() error {
	if o.PrivateOnly && o.PublicOnly {
		return errors.New("--private-only and --public-only are mutually exclusive")
	}
	for _, pattern := range o.Patterns {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid pattern %q", pattern)
		}
	}
	return nil
}

// Build assembles the combined predicate for the options.
func (o Options) Build() (Predicate, error) {
	if err := o.Validate(); err != nil {
		return Predicate{}, err
	}

	var preds []Predicate
	if len(o.Names) > 0 {
		preds = append(preds, matchNames(o.Names))
	}
	if len(o.Orgs) > 0 {
		preds = append(preds, matchOwners(o.Orgs))
	}
	if len(o.Patterns) > 0 {
		preds = append(preds, matchPatterns(o.Patterns))
	}
	if !o.IncludeForks {
		preds = append(preds, Not(Leaf(func(r model.Repository) bool { return r.Fork })))
	}
	if !o.IncludeArchived {
		preds = append(preds, Not(Leaf(func(r model.Repository) bool { return r.Archived })))
	}
	if o.PrivateOnly {
		preds = append(preds, Leaf(func(r model.Repository) bool { return r.Private }))
	}
	if o.PublicOnly {
		preds = append(preds, Not(Leaf(func(r model.Repository) bool { return r.Private })))
	}
	return And(preds...), nil
}

// matchNames accepts either a bare name or an owner/name pair,
// case-insensitively.
func matchNames(names []string) Predicate {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		set[name] = struct{}{}
	}
	return Leaf(func(r model.Repository) bool {
		if _, ok := set[strings.ToLower(r.Name)]; ok {
			return true
		}
		_, ok := set[strings.ToLower(r.FullName)]
		return ok
	})
}

func matchOwners(orgs []string) Predicate {
	set := make(map[string]struct{}, len(orgs))
	for _, org := range orgs {
		org = strings.ToLower(strings.TrimSpace(org))
		if org == "" {
			continue
		}
		set[org] = struct{}{}
	}
	return Leaf(func(r model.Repository) bool {
		_, ok := set[strings.ToLower(r.Owner)]
		return ok
	})
}

func matchPatterns(patterns []string) Predicate {
	return Leaf(func(r model.Repository) bool {
		name := strings.ToLower(r.Name)
		for _, pattern := range patterns {
			if ok, err := doublestar.Match(strings.ToLower(pattern), name); err == nil && ok {
				return true
			}
		}
		return false
	})
}
