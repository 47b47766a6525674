// Package settext implements SetTextPool: the append-only, content-
// addressed pool of set-element explanatory texts (spec.md §3, §4.4).
// Entry 0 is always the empty string.
//
// The length-prefixed "short string" shape entries are serialized in
// follows the same convention stream.ByteStream uses everywhere else
// in the format.
package settext

// Entry is one pool slot: the text plus its user-settable node number.
type Entry struct {
	Text   string
	NodeNr int
}

// Pool is the per-file set-text pool. Index 0 is the empty string and
// always exists.
type Pool struct {
	entries []Entry
	index   map[string]int
}

// NewPool returns a pool pre-seeded with the mandatory empty entry 0.
func NewPool() *Pool {
	p := &Pool{
		entries: []Entry{{}},
		index:   map[string]int{"": 0},
	}

	return p
}

// AddText interns text, returning its existing index if already present
// (spec.md: "content-addressed") or appending a new entry otherwise.
func (p *Pool) AddText(text string) int {
	if idx, ok := p.index[text]; ok {
		return idx
	}

	idx := len(p.entries)
	p.entries = append(p.entries, Entry{Text: text})
	p.index[text] = idx

	return idx
}

// GetText returns the text and node number at idx.
func (p *Pool) GetText(idx int) (text string, nodeNr int, ok bool) {
	if idx < 0 || idx >= len(p.entries) {
		return "", 0, false
	}

	e := p.entries[idx]

	return e.Text, e.NodeNr, true
}

// SetNodeNr overwrites idx's node number without touching its text.
func (p *Pool) SetNodeNr(idx, nodeNr int) bool {
	if idx < 0 || idx >= len(p.entries) {
		return false
	}

	p.entries[idx].NodeNr = nodeNr

	return true
}

// Count returns the number of entries, including the mandatory empty
// entry 0.
func (p *Pool) Count() int { return len(p.entries) }

// All returns the entries in index order, for section serialization.
func (p *Pool) All() []Entry { return p.entries }

// LoadRaw repopulates a pool from a section read. entries[0] must be
// the empty string, matching what the gdx facade's writeSetTextSection
// always emits.
func LoadRaw(entries []Entry) *Pool {
	p := &Pool{entries: entries, index: make(map[string]int, len(entries))}
	for i, e := range entries {
		if _, exists := p.index[e.Text]; !exists {
			p.index[e.Text] = i
		}
	}

	return p
}
