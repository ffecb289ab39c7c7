package emit

import (
	"fmt"
	"io"
)

// Progress reports per-item status for a batch of writes, in the style of
// a build tool's status iterator. A nil *Progress is valid and silent.
type Progress struct {
	out   io.Writer
	label string
	total int
	count int
}

// NewProgress creates a progress reporter for total items under a label.
func NewProgress(out io.Writer, label string, total int) *Progress {
	return &Progress{
		out:   out,
		label: label,
		total: total,
	}
}

// Step reports that work on item has started.
func (p *Progress) Step(item string) {
	if p == nil || p.out == nil {
		return
	}
	p.count++
	fmt.Fprintf(p.out, "%s [%d/%d] %s\n", p.label, p.count, p.total, item)
}

// Done reports completion of the batch.
func (p *Progress) Done() {
	if p == nil || p.out == nil {
		return
	}
	fmt.Fprintf(p.out, "%s done (%d of %d)\n", p.label, p.count, p.total)
}
