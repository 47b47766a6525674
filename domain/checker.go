// Package domain implements DomainChecker: deferred, bitmap-backed
// membership checking of a strict domain link's parent set (spec.md
// §4.7, §9's "cyclic references" design note).
//
// No bitset library appears in the retrieval pack, so the membership
// bitmap is internal/bitset, a small stdlib word-slice implementation —
// see DESIGN.md.
package domain

import "github.com/gdxlib/gdx/internal/bitset"

// Checker owns one membership bitmap per set symbol that has ever had
// records observed through Observe. StoreDomainSets controls whether a
// bitmap survives past the symbol that produced it (spec.md §9: default
// true).
type Checker struct {
	membership      map[int]*bitset.Set
	storeDomainSets bool
}

// NewChecker returns a Checker. storeDomainSets should default to true
// per spec.md §9's resolution of the "store domain sets" open question.
func NewChecker(storeDomainSets bool) *Checker {
	return &Checker{
		membership:      make(map[int]*bitset.Set),
		storeDomainSets: storeDomainSets,
	}
}

// Observe records that rawUEL is a member of symbolNumber's set, called
// for every record written to a set-type symbol so later children can
// check against it.
func (c *Checker) Observe(symbolNumber int, rawUEL uint32) {
	bs, ok := c.membership[symbolNumber]
	if !ok {
		bs = bitset.New()
		c.membership[symbolNumber] = bs
	}

	bs.Set(int(rawUEL))
}

// IsMember reports whether rawUEL was observed as a member of
// parentSymbolNumber. If no membership has ever been observed for that
// parent (it was never written, or its bitmap was forgotten), IsMember
// reports true: the check degrades to a no-op rather than rejecting
// every record (spec.md §9: undefined parent "degrades silently to a
// relaxed link").
func (c *Checker) IsMember(parentSymbolNumber int, rawUEL uint32) bool {
	bs, ok := c.membership[parentSymbolNumber]
	if !ok {
		return true
	}

	return bs.Test(int(rawUEL))
}

// Known reports whether a membership bitmap exists for symbolNumber.
func (c *Checker) Known(symbolNumber int) bool {
	_, ok := c.membership[symbolNumber]
	return ok
}

// Members returns every raw UEL number observed as a member of
// symbolNumber, ascending, or ok=false if no bitmap has been observed
// for it (GetDomainElements).
func (c *Checker) Members(symbolNumber int) (raw []uint32, ok bool) {
	bs, found := c.membership[symbolNumber]
	if !found {
		return nil, false
	}

	elems := bs.Elements()
	raw = make([]uint32, len(elems))
	for i, e := range elems {
		raw[i] = uint32(e) //nolint:gosec
	}

	return raw, true
}

// Forget drops symbolNumber's membership bitmap unless StoreDomainSets
// is enabled, called once that symbol can no longer gain new children
// domain-checked against it within the session (never, in the current
// single-pass write session — Forget exists for callers that want
// tighter peak memory and is a no-op by default).
func (c *Checker) Forget(symbolNumber int) {
	if !c.storeDomainSets {
		delete(c.membership, symbolNumber)
	}
}
