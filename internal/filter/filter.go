// Package filter narrows a repository set with composable predicates.
// Predicates form a small expression tree (leaf, and, or, not) evaluated
// recursively; combinators flatten same-kind nesting.
package filter

import (
	"strings"

	"github.com/skaphos/gitfleet/internal/model"
)

type op int

const (
	opLeaf op = iota
	opAnd
	opOr
	opNot
)

// Predicate is one node of a filter expression. The zero value matches
// every repository.
type Predicate struct {
	op   op
	kids []Predicate
	fn   func(model.Repository) bool
}

// Leaf wraps a plain match function.
func Leaf(fn func(model.Repository) bool) Predicate {
	return Predicate{op: opLeaf, fn: fn}
}

// And matches when every child matches. Nested Ands are flattened into one
// node. And() with no children matches everything.
func And(preds ...Predicate) Predicate {
	kids := make([]Predicate, 0, len(preds))
	for _, p := range preds {
		if p.op == opAnd {
			kids = append(kids, p.kids...)
			continue
		}
		kids = append(kids, p)
	}
	return Predicate{op: opAnd, kids: kids}
}

// Or matches when any child matches. Nested Ors are flattened into one
// node. Or() with no children matches nothing.
func Or(preds ...Predicate) Predicate {
	kids := make([]Predicate, 0, len(preds))
	for _, p := range preds {
		if p.op == opOr {
			kids = append(kids, p.kids...)
			continue
		}
		kids = append(kids, p)
	}
	return Predicate{op: opOr, kids: kids}
}

// Not inverts a predicate.
func Not(p Predicate) Predicate {
	return Predicate{op: opNot, kids: []Predicate{p}}
}

// Eval reports whether repo satisfies the predicate.
func (p Predicate) Eval(repo model.Repository) bool {
	switch p.op {
	case opAnd:
		for _, kid := range p.kids {
			if !kid.Eval(repo) {
				return false
			}
		}
		return true
	case opOr:
		for _, kid := range p.kids {
			if kid.Eval(repo) {
				return true
			}
		}
		return false
	case opNot:
		return !p.kids[0].Eval(repo)
	default:
		if p.fn == nil {
			return true
		}
		return p.fn(repo)
	}
}

// String renders the expression shape for debug output. Leaf functions are
// opaque, so every leaf prints as "leaf".
func (p Predicate) String() string {
	switch p.op {
	case opAnd:
		return "and(" + joinKids(p.kids) + ")"
	case opOr:
		return "or(" + joinKids(p.kids) + ")"
	case opNot:
		return "not(" + p.kids[0].String() + ")"
	default:
		return "leaf"
	}
}

func joinKids(kids []Predicate) string {
	parts := make([]string, len(kids))
	for i, kid := range kids {
		parts[i] = kid.String()
	}
	return strings.Join(parts, ", ")
}

// Apply returns the repositories matching pred, preserving input order.
func Apply(pred Predicate, repos []model.Repository) []model.Repository {
	out := make([]model.Repository, 0, len(repos))
	for _, repo := range repos {
		if pred.Eval(repo) {
			out = append(out, repo)
		}
	}
	return out
}
