package metrics

import (
	"sort"
	"sync"
)

// Item holds the measurements of one exported file.
type Item struct {
	Bytes  int `json:"bytes"`
	Tokens int `json:"tokens"`
	Lines  int `json:"lines"`
}

// Add adds the given metrics to this item
func (m *Item) Add(bytes, tokens, lines int) {
	m.Bytes += bytes
	m.Tokens += tokens
	m.Lines += lines
}

type job struct {
	key     string
	content string
}

// Tally counts many texts concurrently with a fixed pool of workers. Add
// must not be called after Wait.
type Tally struct {
	mu    sync.Mutex
	wg    sync.WaitGroup
	once  sync.Once
	jobs  chan job
	items map[string]Item
	ctr   Counter
}

// NewTally starts workers goroutines counting with counter.
func NewTally(counter Counter, workers int) *Tally {
	if workers < 1 {
		workers = 1
	}

	t := &Tally{
		jobs:  make(chan job, workers*2),
		items: make(map[string]Item),
		ctr:   counter,
	}

	t.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go t.worker()
	}
	return t
}

func (t *Tally) worker() {
	defer t.wg.Done()

	for j := range t.jobs {
		bytes, tokens, lines := t.ctr.Count(j.content)

		t.mu.Lock()
		item := t.items[j.key]
		item.Add(bytes, tokens, lines)
		t.items[j.key] = item
		t.mu.Unlock()
	}
}

// Add queues content to be counted under key.
func (t *Tally) Add(key, content string) {
	t.jobs <- job{key: key, content: content}
}

// Wait blocks until every queued text has been counted. It is idempotent.
func (t *Tally) Wait() {
	t.once.Do(func() { close(t.jobs) })
	t.wg.Wait()
}

// Get returns the measurements recorded for key.
func (t *Tally) Get(key string) (Item, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	item, ok := t.items[key]
	return item, ok
}

// Keys lists the counted keys in ascending order.
func (t *Tally) Keys() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	keys := make([]string, 0, len(t.items))
	for k := range t.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Total sums every counted item.
func (t *Tally) Total() Item {
	t.mu.Lock()
	defer t.mu.Unlock()
	var sum Item
	for _, v := range t.items {
		sum.Add(v.Bytes, v.Tokens, v.Lines)
	}
	return sum
}
