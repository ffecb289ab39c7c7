// Package registry tracks the documents discovered while scanning a
// documentation tree. The build pipeline registers every scanned page here and
// later consults the registry to decide whether a redirect source refers to a
// real page or to an orphan that needs a standalone redirect page.
package registry

import (
	"sort"
	"sync"
	"time"
)

// PageRegistry manages all discovered documentation pages
type PageRegistry struct {
	pages    map[string]*PageInfo
	mutex    sync.RWMutex
	watchers []chan PageEvent
}

// PageInfo holds metadata about a scanned documentation page
type PageInfo struct {
	Docname    string
	FilePath   string
	Title      string
	Sections   []string
	Directives int
	LastMod    time.Time
	Hash       string
}

// PageEvent represents a change in the page registry
type PageEvent struct {
	Type      EventType
	Page      *PageInfo
	Timestamp time.Time
}

// EventType represents the type of page event
type EventType int

const (
	EventTypeAdded EventType = iota
	EventTypeUpdated
	EventTypeRemoved
)

// NewPageRegistry creates a new page registry
func NewPageRegistry() *PageRegistry {
	return &PageRegistry{
		pages:    make(map[string]*PageInfo),
		watchers: make([]chan PageEvent, 0),
	}
}

// Register adds or updates a page in the registry
func (r *PageRegistry) Register(page *PageInfo) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	eventType := EventTypeAdded
	if _, exists := r.pages[page.Docname]; exists {
		eventType = EventTypeUpdated
	}

	r.pages[page.Docname] = page

	event := PageEvent{
		Type:      eventType,
		Page:      page,
		Timestamp: time.Now(),
	}

	for _, watcher := range r.watchers {
		select {
		case watcher <- event:
		default:
			// Skip if channel is full
		}
	}
}

// Get retrieves a page by docname
func (r *PageRegistry) Get(docname string) (*PageInfo, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	page, exists := r.pages[docname]
	return page, exists
}

// Has reports whether a docname is registered
func (r *PageRegistry) Has(docname string) bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	_, exists := r.pages[docname]
	return exists
}

// GetAll returns all registered pages
func (r *PageRegistry) GetAll() map[string]*PageInfo {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make(map[string]*PageInfo)
	for docname, page := range r.pages {
		result[docname] = page
	}
	return result
}

// Docnames returns all registered docnames in sorted order
func (r *PageRegistry) Docnames() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	names := make([]string, 0, len(r.pages))
	for docname := range r.pages {
		names = append(names, docname)
	}
	sort.Strings(names)

	return names
}

// Remove removes a page from the registry
func (r *PageRegistry) Remove(docname string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	page, exists := r.pages[docname]
	if !exists {
		return
	}

	delete(r.pages, docname)

	event := PageEvent{
		Type:      EventTypeRemoved,
		Page:      page,
		Timestamp: time.Now(),
	}

	for _, watcher := range r.watchers {
		select {
		case watcher <- event:
		default:
			// Skip if channel is full
		}
	}
}

// Watch returns a channel that receives page events
func (r *PageRegistry) Watch() <-chan PageEvent {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	ch := make(chan PageEvent, 100)
	r.watchers = append(r.watchers, ch)
	return ch
}

// UnWatch removes a watcher channel and closes it
func (r *PageRegistry) UnWatch(ch <-chan PageEvent) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for i, watcher := range r.watchers {
		if watcher == ch {
			close(watcher)
			r.watchers = append(r.watchers[:i], r.watchers[i+1:]...)
			break
		}
	}
}

// Count returns the number of registered pages
func (r *PageRegistry) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return len(r.pages)
}

// Clear removes every page without notifying watchers. Used when a full
// rescan replaces the registry contents wholesale.
func (r *PageRegistry) Clear() {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.pages = make(map[string]*PageInfo)
}
