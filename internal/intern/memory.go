package intern

import "sync"

// MemoryPool is the default intern table: a process-local, thread-safe
// content table with no external dependency. Safe for concurrent use even
// though the task database itself is single-threaded, since interning may
// be called from the server's request loop and background tickers alike.
type MemoryPool struct {
	table sync.Map // string -> string
}

// NewMemoryPool returns an empty in-process pool.
func NewMemoryPool() *MemoryPool {
	return &MemoryPool{}
}

func (p *MemoryPool) Intern(s string) (string, error) {
	if v, ok := p.table.Load(s); ok {
		return v.(string), nil
	}
	actual, _ := p.table.LoadOrStore(s, s)
	return actual.(string), nil
}
