package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neflyte/seoredirect/internal/logging"
)

func newTestWatcher(t *testing.T, delay time.Duration) *FileWatcher {
	t.Helper()
	fw, err := NewFileWatcher(delay, logging.NewLogger(logging.DefaultConfig()))
	require.NoError(t, err)
	return fw
}

func TestEventTypeString(t *testing.T) {
	testCases := []struct {
		eventType EventType
		expected  string
	}{
		{EventTypeCreated, "created"},
		{EventTypeModified, "modified"},
		{EventTypeDeleted, "deleted"},
		{EventTypeRenamed, "renamed"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.eventType.String())
		})
	}
}

func TestNewFileWatcher(t *testing.T) {
	watcher := newTestWatcher(t, 100*time.Millisecond)
	defer watcher.Stop()

	assert.NotNil(t, watcher.watcher)
	assert.NotNil(t, watcher.debouncer)
	assert.Empty(t, watcher.filters)
	assert.Empty(t, watcher.handlers)
}

func TestFileWatcherAddFilter(t *testing.T) {
	watcher := newTestWatcher(t, 100*time.Millisecond)
	defer watcher.Stop()

	watcher.AddFilter(SourceFilter([]string{".md"}))
	assert.Len(t, watcher.filters, 1)

	watcher.AddFilter(NoGitFilter)
	assert.Len(t, watcher.filters, 2)
}

func TestFileWatcherAddHandler(t *testing.T) {
	watcher := newTestWatcher(t, 100*time.Millisecond)
	defer watcher.Stop()

	handlerCalled := false
	handler := func(events []ChangeEvent) error {
		handlerCalled = true
		return nil
	}

	watcher.AddHandler(handler)
	assert.Len(t, watcher.handlers, 1)

	watcher.mutex.RLock()
	for _, h := range watcher.handlers {
		h([]ChangeEvent{{Type: EventTypeCreated, Path: "guide/install.md"}})
	}
	watcher.mutex.RUnlock()

	assert.True(t, handlerCalled)
}

func TestFileWatcherAddPath(t *testing.T) {
	watcher := newTestWatcher(t, 100*time.Millisecond)
	defer watcher.Stop()

	tempDir := "test_temp_dir"
	err := os.MkdirAll(tempDir, 0755)
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	err = watcher.AddPath(tempDir)
	assert.NoError(t, err)

	err = watcher.AddPath("/non/existent/path")
	assert.Error(t, err)
}

func TestFileWatcherStartStop(t *testing.T) {
	watcher := newTestWatcher(t, 50*time.Millisecond)
	defer watcher.Stop()

	tempDir := "test_temp_start_stop"
	err := os.MkdirAll(tempDir, 0755)
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	err = watcher.AddPath(tempDir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var eventReceived bool
	var eventMutex sync.Mutex

	watcher.AddHandler(func(events []ChangeEvent) error {
		eventMutex.Lock()
		eventReceived = true
		eventMutex.Unlock()
		return nil
	})

	err = watcher.Start(ctx)
	require.NoError(t, err)

	// Give watcher time to start
	time.Sleep(100 * time.Millisecond)

	testFile := filepath.Join(tempDir, "page.md")
	err = os.WriteFile(testFile, []byte("# Page"), 0644)
	require.NoError(t, err)

	// Wait for debouncing and event processing
	time.Sleep(200 * time.Millisecond)

	eventMutex.Lock()
	received := eventReceived
	eventMutex.Unlock()

	assert.True(t, received)

	cancel()
	err = watcher.Stop()
	assert.NoError(t, err)
}

func TestSourceFilter(t *testing.T) {
	filter := SourceFilter([]string{".md", ".markdown"})

	testCases := []struct {
		path     string
		expected bool
	}{
		{"docs/index.md", true},
		{"docs/guide/INSTALL.MD", true},
		{"docs/notes.markdown", true},
		{"docs/style.css", false},
		{"redirects.yml", false},
		{"README", false},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.expected, filter(tc.path))
		})
	}
}

func TestRedirectConfigFilter(t *testing.T) {
	testCases := []struct {
		path     string
		expected bool
	}{
		{"redirects.yml", true},
		{"conf/redirects.yaml", true},
		{"docs/index.md", false},
		{"template.html", false},
		{"notes", false},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.expected, RedirectConfigFilter(tc.path))
		})
	}
}

func TestTemplateFilter(t *testing.T) {
	testCases := []struct {
		path     string
		expected bool
	}{
		{"templates/redirect.html", true},
		{"templates/simple.html", true},
		{"docs/index.md", false},
		{"redirects.yml", false},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.expected, TemplateFilter(tc.path))
		})
	}
}

func TestAnyFilter(t *testing.T) {
	filter := AnyFilter(SourceFilter([]string{".md"}), RedirectConfigFilter)

	testCases := []struct {
		path     string
		expected bool
	}{
		{"docs/index.md", true},
		{"redirects.yml", true},
		{"templates/redirect.html", false},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.expected, filter(tc.path))
		})
	}
}

func TestNoGitFilter(t *testing.T) {
	testCases := []struct {
		path     string
		expected bool
	}{
		{"docs/index.md", true},
		{".git/config", false},
		{"docs/.git/objects/ab", false},
		{"index.md", true},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.expected, NoGitFilter(tc.path))
		})
	}
}

func TestExcludeFilter(t *testing.T) {
	filter := ExcludeFilter([]string{"node_modules", "drafts", "*.tmp"})

	testCases := []struct {
		path     string
		expected bool
	}{
		{"docs/index.md", true},
		{"docs/node_modules/pkg/readme.md", false},
		{"drafts/wip.md", false},
		{"docs/scratch.tmp", false},
		{"docs/guide/install.md", true},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.expected, filter(tc.path))
		})
	}
}

func TestDebouncer(t *testing.T) {
	debouncer := &Debouncer{
		delay:   50 * time.Millisecond,
		events:  make(chan ChangeEvent, 100),
		output:  make(chan []ChangeEvent, 10),
		pending: make([]ChangeEvent, 0),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go debouncer.start(ctx)

	var receivedEvents [][]ChangeEvent
	var eventMutex sync.Mutex

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case events := <-debouncer.output:
				eventMutex.Lock()
				receivedEvents = append(receivedEvents, events)
				eventMutex.Unlock()
			}
		}
	}()

	// Send multiple events quickly
	debouncer.events <- ChangeEvent{Path: "docs/a.md", Type: EventTypeModified}
	debouncer.events <- ChangeEvent{Path: "docs/a.md", Type: EventTypeModified}
	debouncer.events <- ChangeEvent{Path: "docs/b.md", Type: EventTypeModified}

	// Wait for debouncing
	time.Sleep(150 * time.Millisecond)

	eventMutex.Lock()
	finalEvents := receivedEvents
	eventMutex.Unlock()

	assert.Greater(t, len(finalEvents), 0)
	if len(finalEvents) > 0 {
		// docs/a.md should have been deduplicated
		assert.LessOrEqual(t, len(finalEvents[0]), 2)
	}
}

func TestChangeEvent(t *testing.T) {
	now := time.Now()
	event := ChangeEvent{
		Type:    EventTypeModified,
		Path:    "docs/guide/install.md",
		ModTime: now,
		Size:    1024,
	}

	assert.Equal(t, EventTypeModified, event.Type)
	assert.Equal(t, "docs/guide/install.md", event.Path)
	assert.Equal(t, now, event.ModTime)
	assert.Equal(t, int64(1024), event.Size)
}

func TestFileWatcherValidation(t *testing.T) {
	watcher := newTestWatcher(t, 100*time.Millisecond)
	defer watcher.Stop()

	err := watcher.AddPath("../../../etc")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "path")

	err = watcher.AddPath("./../../..")
	assert.Error(t, err)
}

func TestFileWatcherConcurrency(t *testing.T) {
	watcher := newTestWatcher(t, 50*time.Millisecond)
	defer watcher.Stop()

	tempDir := "test_temp_concurrency"
	err := os.MkdirAll(tempDir, 0755)
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	err = watcher.AddPath(tempDir)
	require.NoError(t, err)

	var wg sync.WaitGroup
	var eventCount int
	var eventMutex sync.Mutex

	watcher.AddHandler(func(events []ChangeEvent) error {
		eventMutex.Lock()
		eventCount += len(events)
		eventMutex.Unlock()
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err = watcher.Start(ctx)
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			testFile := filepath.Join(tempDir, fmt.Sprintf("page%d.md", i))
			err := os.WriteFile(testFile, []byte("# Page"), 0644)
			assert.NoError(t, err)
		}(i)
	}

	wg.Wait()

	// Wait for all events to be processed
	time.Sleep(200 * time.Millisecond)

	eventMutex.Lock()
	finalCount := eventCount
	eventMutex.Unlock()

	// Exact count varies with debouncing
	assert.Greater(t, finalCount, 0)
	assert.LessOrEqual(t, finalCount, 10)
}

func TestFileWatcherErrorHandling(t *testing.T) {
	watcher := newTestWatcher(t, 100*time.Millisecond)

	err := watcher.Stop()
	assert.NoError(t, err)
	err = watcher.Stop()
	assert.NoError(t, err) // Should not error on double stop
}

func TestAddRecursive(t *testing.T) {
	watcher := newTestWatcher(t, 100*time.Millisecond)
	defer watcher.Stop()

	tempDir := "test_temp_recursive"
	subDir := filepath.Join(tempDir, "guide")
	err := os.MkdirAll(subDir, 0755)
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	err = watcher.AddRecursive(tempDir)
	assert.NoError(t, err)

	err = watcher.AddRecursive("../../../etc")
	assert.Error(t, err)
}
