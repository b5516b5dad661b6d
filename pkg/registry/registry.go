// Package registry holds the orchestrator's authoritative view of its
// agents: name validation, port allocation and the name-to-record map,
// all guarded by a single mutex.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"sorcerer/pkg/protocol"
)

var (
	ErrInvalidName   = errors.New("invalid agent name")
	ErrAlreadyExists = errors.New("agent already exists")
	ErrNotFound      = errors.New("agent not found")
)

// Record is one registered agent. Client is nil when the container exists
// but its RPC server could not be reached.
type Record struct {
	Name        string
	ContainerID string
	Port        int
	Client      protocol.AgentClient

	// pending marks a name reserved by an in-flight create. Pending
	// records block duplicate creates but are invisible to lookups.
	pending bool
}

// Connected reports whether the record has a live RPC client.
func (r Record) Connected() bool {
	return r.Client != nil
}

// Registry maps agent names to records. All methods are safe for
// concurrent use.
type Registry struct {
	mu      sync.Mutex
	ports   *Ports
	records map[string]*Record
}

// New returns an empty registry whose first allocated port is startPort.
func New(startPort int) *Registry {
	return &Registry{
		ports:   NewPorts(startPort),
		records: make(map[string]*Record),
	}
}

// Reserve validates name, claims it and allocates its port in one critical
// section. The caller must follow with Commit or Release.
func (r *Registry) Reserve(name string) (int, error) {
	if !ValidateName(name) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[name]; exists {
		return 0, fmt.Errorf("%w: %s", ErrAlreadyExists, name)
	}
	port, err := r.ports.Allocate()
	if err != nil {
		return 0, err
	}
	r.records[name] = &Record{Name: name, Port: port, pending: true}
	return port, nil
}

// Commit finalizes a reservation with its container and (possibly nil)
// client. It returns ErrNotFound if the reservation no longer exists.
func (r *Registry) Commit(name, containerID string, client protocol.AgentClient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[name]
	if !ok || !rec.pending {
		return fmt.Errorf("%w: no reservation for %s", ErrNotFound, name)
	}
	rec.ContainerID = containerID
	rec.Client = client
	rec.pending = false
	return nil
}

// Release drops a pending reservation. The allocated port is not reused.
func (r *Registry) Release(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec, ok := r.records[name]; ok && rec.pending {
		delete(r.records, name)
	}
}

// Attach registers a pre-existing agent found during discovery and
// advances the port allocator past its port. An existing record of the
// same name is replaced.
func (r *Registry) Attach(rec Record) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ports.Observe(rec.Port)
	rec.pending = false
	r.records[rec.Name] = &rec
}

// Observe advances the port allocator past port without registering
// anything.
func (r *Registry) Observe(port int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ports.Observe(port)
}

// Lookup returns a committed record.
func (r *Registry) Lookup(name string) (Record, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[name]
	if !ok || rec.pending {
		return Record{}, false
	}
	return *rec, true
}

// Take removes a committed record and returns it. It returns ErrNotFound,
// leaving the registry unchanged, when name is absent or still pending.
func (r *Registry) Take(name string) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[name]
	if !ok || rec.pending {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	delete(r.records, name)
	return *rec, nil
}

// Names returns every committed name, sorted, including unreachable agents.
func (r *Registry) Names() []string {
	return r.names(func(*Record) bool { return true })
}

// Connected returns the sorted names of agents with a live client.
func (r *Registry) Connected() []string {
	return r.names(func(rec *Record) bool { return rec.Client != nil })
}

// Snapshot returns copies of the committed records, sorted by name.
func (r *Registry) Snapshot() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Record, 0, len(r.records))
	for _, rec := range r.records {
		if !rec.pending {
			out = append(out, *rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len returns the number of records, pending ones included.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// NextPort returns the port the next Reserve would allocate.
func (r *Registry) NextPort() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ports.Next()
}

func (r *Registry) names(keep func(*Record) bool) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []string
	for name, rec := range r.records {
		if !rec.pending && keep(rec) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
