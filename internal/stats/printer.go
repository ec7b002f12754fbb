package stats

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// Role identifies whether a statistics record describes data received by the
// server or data sent by the client.
type Role int

const (
	RoleServer Role = iota
	RoleClient
)

const tableWidth = 93

// Printer renders statistics records as a fixed-width table. The column
// header is emitted once per role, tracked explicitly per Printer rather
// than through any global state. Each record is written as a single atomic
// write so concurrent handlers cannot interleave mid-row.
type Printer struct {
	mu            sync.Mutex
	out           io.Writer
	headerPrinted [2]bool
}

// NewPrinter creates a Printer writing to out.
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// PrintRecord writes one statistics row, preceded by the table header if this
// is the first record for the given role.
func (p *Printer) PrintRecord(role Role, id, interval, transfer, bandwidth string) {
	transferLabel := "Transfer"
	if role == RoleServer {
		transferLabel = "Received"
	}

	separator := strings.Repeat("-", tableWidth)

	var sb strings.Builder
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.headerPrinted[role] {
		fmt.Fprintf(&sb, "%s\n| %-20s | %-20s | %-20s | %-20s |\n%s\n",
			separator, "ID", "Interval", transferLabel, "Bandwidth", separator)
		p.headerPrinted[role] = true
	}

	fmt.Fprintf(&sb, "| %-20s | %-20s | %-20s | %-20s |\n%s\n",
		id, interval+" s", transfer, bandwidth, separator)

	fmt.Fprint(p.out, sb.String())
}
