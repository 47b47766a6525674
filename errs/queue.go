package errs

// Queue is the per-handle error accumulator backing ErrorCount, ErrorStr
// and GetLastError. It never blocks callers: Push is O(1) amortized and
// the queue grows without bound for the life of a handle, matching the
// source's "error queue survives until handle destroy" contract.
//
// Queue is not safe for concurrent use; a Handle is single-threaded by
// spec (§5).
type Queue struct {
	entries []error
}

// Push records err and returns it unchanged, so call sites can write
// `return q.Push(fmt.Errorf(...))`.
func (q *Queue) Push(err error) error {
	q.entries = append(q.entries, err)
	return err
}

// Count returns the total number of errors recorded since the handle was
// created (or since Clear was called).
func (q *Queue) Count() int { return len(q.entries) }

// At returns the human-readable message for the 1-based error number ec,
// or "" if ec is out of range.
func (q *Queue) At(ec int) string {
	if ec < 1 || ec > len(q.entries) {
		return ""
	}

	return q.entries[ec-1].Error()
}

// Last returns the most recently pushed error and removes it from the
// queue, mirroring GetLastError's "returns and clears" contract. Returns
// nil if the queue is empty.
func (q *Queue) Last() error {
	if len(q.entries) == 0 {
		return nil
	}

	last := q.entries[len(q.entries)-1]
	q.entries = q.entries[:len(q.entries)-1]

	return last
}

// Clear empties the queue, retaining the backing array for reuse.
func (q *Queue) Clear() {
	q.entries = q.entries[:0]
}
