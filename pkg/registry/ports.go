package registry

import (
	"errors"
	"fmt"
)

// MaxPort is the highest TCP port number.
const MaxPort = 65535

// ErrPortsExhausted is returned once the allocator has passed MaxPort.
var ErrPortsExhausted = errors.New("no ports left to allocate")

// Ports hands out monotonically increasing port numbers. It has no lock of
// its own; Registry serializes access.
type Ports struct {
	next int
}

// NewPorts returns an allocator whose first allocation is start.
func NewPorts(start int) *Ports {
	return &Ports{next: start}
}

// Allocate returns the next port and advances the counter.
func (p *Ports) Allocate() (int, error) {
	if p.next > MaxPort {
		return 0, fmt.Errorf("%w: next would be %d", ErrPortsExhausted, p.next)
	}
	port := p.next
	p.next++
	return port, nil
}

// Observe records a port already in use so later allocations land above it.
func (p *Ports) Observe(port int) {
	if port >= p.next {
		p.next = port + 1
	}
}

// Next returns the value the next Allocate would return.
func (p *Ports) Next() int {
	return p.next
}
