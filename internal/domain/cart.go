package domain

import "github.com/cockroachdb/errors"

// MaxRemovedItems caps how many distinct content entries a user may strip
// from a single package before confirming.
const MaxRemovedItems = 2

// CartLine is one package in an ephemeral, pre-booking cart. Content starts
// as a copy of the package content and shrinks as the user removes entries.
type CartLine struct {
	Package      Package
	Content      []ContentLine
	RemovedItems int
}

// Cart is client-side state only. It is never persisted; Snapshot folds it
// into the parallel sequences submitted to the reservation coordinator.
type Cart struct {
	lines []CartLine
}

// Add appends a package to the cart with its full content.
func (c *Cart) Add(p Package) {
	content := make([]ContentLine, len(p.Content))
	copy(content, p.Content)
	if p.Content == nil {
		content = nil
	}
	c.lines = append(c.lines, CartLine{Package: p, Content: content})
}

// Lines returns the cart lines in insertion order.
func (c *Cart) Lines() []CartLine { return c.lines }

// RemoveContentLine strips one content entry from the cart line at lineIdx.
// A package keeps at least one content entry and loses at most
// MaxRemovedItems entries in total.
func (c *Cart) RemoveContentLine(lineIdx, contentIdx int) error {
	if lineIdx < 0 || lineIdx >= len(c.lines) {
		return errors.WithDetailf(ErrInvalidInput, "no cart line %d", lineIdx)
	}
	line := &c.lines[lineIdx]
	if contentIdx < 0 || contentIdx >= len(line.Content) {
		return errors.WithDetailf(ErrInvalidInput, "no content entry %d", contentIdx)
	}
	if len(line.Content) <= 1 {
		return errors.WithDetail(ErrInvalidInput, "cannot remove the last content entry")
	}
	if line.RemovedItems >= MaxRemovedItems {
		return errors.WithDetailf(ErrInvalidInput, "at most %d entries may be removed per package", MaxRemovedItems)
	}
	line.Content = append(line.Content[:contentIdx:contentIdx], line.Content[contentIdx+1:]...)
	line.RemovedItems++
	return nil
}

// Snapshot produces the index-aligned (packageIDs, contentSnapshots) pair for
// CreateBooking, in cart insertion order.
func (c *Cart) Snapshot() ([]int64, [][]ContentLine) {
	ids := make([]int64, len(c.lines))
	snaps := make([][]ContentLine, len(c.lines))
	for i, line := range c.lines {
		ids[i] = line.Package.ID
		snaps[i] = line.Content
	}
	return ids, snaps
}
