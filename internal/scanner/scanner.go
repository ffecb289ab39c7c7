// Package scanner provides document discovery for markdown documentation
// trees.
//
// The scanner traverses source directories to find markdown files, parses them
// into document trees with their section anchors and inline redirect
// directives, and registers every page with the page registry so later build
// stages can distinguish live pages from orphaned redirect sources. Scanning
// runs on a persistent worker pool and uses CRC32 content hashes for change
// detection in watch mode.
package scanner

import (
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/neflyte/seoredirect/internal/doctree"
	"github.com/neflyte/seoredirect/internal/registry"
)

// DefaultExtensions are the markdown file extensions scanned when the
// configuration does not name its own set.
var DefaultExtensions = []string{".md", ".markdown"}

// ScanJob represents a scanning job for the worker pool containing the file
// to scan and a result channel for asynchronous communication.
type ScanJob struct {
	// root is the source directory the file was discovered under
	root string
	// filePath is the path to the markdown file to be scanned
	filePath string
	// result channel receives the scan result or error asynchronously
	result chan<- ScanResult
}

// ScanResult represents the result of a scanning operation, containing either
// success status or error information for a specific file.
type ScanResult struct {
	filePath string
	err      error
}

// WorkerPool manages persistent scanning workers so directory scans do not
// pay goroutine startup costs per file.
type WorkerPool struct {
	jobQueue    chan ScanJob
	workers     []*ScanWorker
	workerCount int
	scanner     *DocumentScanner
	stop        chan struct{}
	stopped     bool
	mu          sync.RWMutex
}

// ScanWorker is a persistent worker goroutine that processes scanning jobs
// from the shared job queue.
type ScanWorker struct {
	id       int
	jobQueue <-chan ScanJob
	scanner  *DocumentScanner
	stop     chan struct{}
}

// DocumentScanner discovers markdown documents and parses them into document
// trees.
//
// The scanner provides:
// - Recursive directory traversal with exclude patterns
// - Section and redirect-directive extraction per document
// - Concurrent processing via worker pool
// - Integration with the page registry for event broadcasting
// - File change detection using CRC32 hashing
// - Path validation with a cached working directory
type DocumentScanner struct {
	// registry receives discovered pages and broadcasts change events
	registry *registry.PageRegistry
	// extensions lists the file extensions treated as markdown sources
	extensions []string
	// excludePatterns holds glob patterns matched against relative paths
	excludePatterns []string
	// workerPool manages concurrent scanning operations
	workerPool *WorkerPool
	// pathCache contains cached path validation data to avoid repeated syscalls
	pathCache *pathValidationCache

	mu        sync.RWMutex
	documents map[string]*doctree.Document
}

// pathValidationCache caches the working directory lookup used by path
// validation.
type pathValidationCache struct {
	mu                sync.RWMutex
	currentWorkingDir string
	initialized       bool
}

// NewDocumentScanner creates a new document scanner. Passing nil or empty
// extensions selects DefaultExtensions.
func NewDocumentScanner(reg *registry.PageRegistry, extensions, excludePatterns []string) *DocumentScanner {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}

	scanner := &DocumentScanner{
		registry:        reg,
		extensions:      extensions,
		excludePatterns: excludePatterns,
		pathCache:       &pathValidationCache{},
		documents:       make(map[string]*doctree.Document),
	}

	workerCount := runtime.NumCPU()
	if workerCount > 8 {
		workerCount = 8 // Cap at 8 workers for diminishing returns
	}

	scanner.workerPool = NewWorkerPool(workerCount, scanner)
	return scanner
}

// NewWorkerPool creates a new worker pool for scanning operations
func NewWorkerPool(workerCount int, scanner *DocumentScanner) *WorkerPool {
	pool := &WorkerPool{
		jobQueue:    make(chan ScanJob, workerCount*2),
		workerCount: workerCount,
		scanner:     scanner,
		stop:        make(chan struct{}),
	}

	pool.workers = make([]*ScanWorker, workerCount)
	for i := 0; i < workerCount; i++ {
		worker := &ScanWorker{
			id:       i,
			jobQueue: pool.jobQueue,
			scanner:  scanner,
			stop:     make(chan struct{}),
		}
		pool.workers[i] = worker
		go worker.start()
	}

	return pool
}

// start begins the worker's processing loop
func (w *ScanWorker) start() {
	for {
		select {
		case job := <-w.jobQueue:
			err := w.scanner.scanFileInternal(job.root, job.filePath)
			job.result <- ScanResult{
				filePath: job.filePath,
				err:      err,
			}
		case <-w.stop:
			return
		}
	}
}

// Stop gracefully shuts down the worker pool
func (p *WorkerPool) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return
	}

	p.stopped = true
	close(p.stop)

	for _, worker := range p.workers {
		close(worker.stop)
	}

	close(p.jobQueue)
}

// GetRegistry returns the page registry
func (s *DocumentScanner) GetRegistry() *registry.PageRegistry {
	return s.registry
}

// Close gracefully shuts down the scanner and its worker pool
func (s *DocumentScanner) Close() error {
	if s.workerPool != nil {
		s.workerPool.Stop()
	}
	return nil
}

// ScanRoots scans every configured source directory in order.
func (s *DocumentScanner) ScanRoots(roots []string) error {
	for _, root := range roots {
		if err := s.ScanDirectory(root); err != nil {
			return err
		}
	}
	return nil
}

// ScanDirectory scans a directory tree for markdown documents using the
// worker pool.
func (s *DocumentScanner) ScanDirectory(root string) error {
	// Validate directory path to prevent path traversal
	if _, err := s.validatePath(root); err != nil {
		return fmt.Errorf("invalid directory path: %w", err)
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		if s.isExcluded(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() || !s.hasMarkdownExtension(path) {
			return nil
		}

		// Validate each file path as we encounter it
		if _, err := s.validatePath(path); err != nil {
			// Skip invalid paths silently for security
			return nil
		}

		files = append(files, path)
		return nil
	})

	if err != nil {
		return err
	}

	return s.processBatchWithWorkerPool(root, files)
}

// ScanFile scans a single markdown file discovered under root.
func (s *DocumentScanner) ScanFile(root, path string) error {
	return s.scanFileInternal(root, path)
}

// processBatchWithWorkerPool distributes files across the persistent worker
// pool, falling back to synchronous processing for small batches.
func (s *DocumentScanner) processBatchWithWorkerPool(root string, files []string) error {
	if len(files) == 0 {
		return nil
	}

	// For very small batches, process synchronously to avoid overhead
	if len(files) <= 5 {
		return s.processBatchSynchronous(root, files)
	}

	resultChan := make(chan ScanResult, len(files))

	for _, file := range files {
		job := ScanJob{
			root:     root,
			filePath: file,
			result:   resultChan,
		}

		select {
		case s.workerPool.jobQueue <- job:
		default:
			// Worker pool is full, process synchronously as fallback
			err := s.scanFileInternal(root, file)
			resultChan <- ScanResult{filePath: file, err: err}
		}
	}

	var errors []error
	for i := 0; i < len(files); i++ {
		result := <-resultChan
		if result.err != nil {
			errors = append(errors, fmt.Errorf("scanning %s: %w", result.filePath, result.err))
		}
	}

	close(resultChan)

	if len(errors) > 0 {
		return fmt.Errorf("scan completed with %d errors: %v", len(errors), errors[0])
	}

	return nil
}

func (s *DocumentScanner) processBatchSynchronous(root string, files []string) error {
	var errors []error

	for _, file := range files {
		if err := s.scanFileInternal(root, file); err != nil {
			errors = append(errors, fmt.Errorf("scanning %s: %w", file, err))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("scan completed with %d errors: %v", len(errors), errors[0])
	}

	return nil
}

// scanFileInternal parses one markdown file, stores its document tree and
// registers the page.
func (s *DocumentScanner) scanFileInternal(root, path string) error {
	cleanPath, err := s.validatePath(path)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return fmt.Errorf("getting file info for %s: %w", cleanPath, err)
	}

	content, err := os.ReadFile(cleanPath)
	if err != nil {
		return fmt.Errorf("reading file %s: %w", cleanPath, err)
	}

	hash := fmt.Sprintf("%x", crc32.ChecksumIEEE(content))

	docname, err := Docname(root, cleanPath)
	if err != nil {
		return fmt.Errorf("computing docname for %s: %w", cleanPath, err)
	}

	doc := ParseMarkdown(docname, cleanPath, content)

	s.mu.Lock()
	s.documents[docname] = doc
	s.mu.Unlock()

	directives := 0
	for _, node := range doc.Nodes {
		if _, ok := node.(*doctree.RedirectDirective); ok {
			directives++
		}
	}

	s.registry.Register(&registry.PageInfo{
		Docname:    docname,
		FilePath:   cleanPath,
		Title:      doc.Title,
		Sections:   doc.Sections(),
		Directives: directives,
		LastMod:    info.ModTime(),
		Hash:       hash,
	})

	return nil
}

// Document returns the parsed document tree for a docname.
func (s *DocumentScanner) Document(docname string) (*doctree.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.documents[docname]
	return doc, ok
}

// Documents returns a copy of the parsed document map.
func (s *DocumentScanner) Documents() map[string]*doctree.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]*doctree.Document, len(s.documents))
	for docname, doc := range s.documents {
		result[docname] = doc
	}
	return result
}

// RemoveDocument drops a document from the scanner and the registry. Watch
// mode calls this when a source file is deleted.
func (s *DocumentScanner) RemoveDocument(docname string) {
	s.mu.Lock()
	delete(s.documents, docname)
	s.mu.Unlock()

	s.registry.Remove(docname)
}

func (s *DocumentScanner) hasMarkdownExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, candidate := range s.extensions {
		if ext == strings.ToLower(candidate) {
			return true
		}
	}
	return false
}

// isExcluded matches the slash-separated relative path, and each of its
// segments, against the configured exclude globs.
func (s *DocumentScanner) isExcluded(rel string) bool {
	if rel == "." {
		return false
	}
	for _, pattern := range s.excludePatterns {
		if ok, _ := filepath.Match(pattern, rel); ok {
			return true
		}
		for _, segment := range strings.Split(rel, "/") {
			if ok, _ := filepath.Match(pattern, segment); ok {
				return true
			}
		}
	}
	return false
}

// Docname derives the slash-separated document name for a source file: the
// path relative to its source root with the markdown extension stripped.
func Docname(root, path string) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", err
	}

	rel = filepath.ToSlash(rel)
	if strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("file %s is outside source root %s", path, root)
	}

	ext := filepath.Ext(rel)
	return strings.TrimSuffix(rel, ext), nil
}

// validatePath rejects paths that escape the working directory.
func (s *DocumentScanner) validatePath(path string) (string, error) {
	// Clean the path to resolve . and .. elements
	cleanPath := filepath.Clean(path)

	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return "", fmt.Errorf("getting absolute path: %w", err)
	}

	cwd, err := s.getCachedWorkingDir()
	if err != nil {
		return "", fmt.Errorf("getting current directory: %w", err)
	}

	// Ensure the path stays inside the working directory so a hostile
	// configuration cannot walk arbitrary filesystem locations.
	if !strings.HasPrefix(absPath, cwd) {
		return "", fmt.Errorf("path %s is outside current working directory", path)
	}

	if strings.Contains(cleanPath, "..") {
		return "", fmt.Errorf("path contains directory traversal: %s", path)
	}

	return cleanPath, nil
}

// getCachedWorkingDir returns the current working directory from cache,
// initializing it on first access.
func (s *DocumentScanner) getCachedWorkingDir() (string, error) {
	s.pathCache.mu.RLock()
	if s.pathCache.initialized {
		cwd := s.pathCache.currentWorkingDir
		s.pathCache.mu.RUnlock()
		return cwd, nil
	}
	s.pathCache.mu.RUnlock()

	s.pathCache.mu.Lock()
	defer s.pathCache.mu.Unlock()

	// Another goroutine may have initialized while we waited for the lock.
	if s.pathCache.initialized {
		return s.pathCache.currentWorkingDir, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	absCwd, err := filepath.Abs(cwd)
	if err != nil {
		return "", fmt.Errorf("getting absolute working directory: %w", err)
	}

	s.pathCache.currentWorkingDir = absCwd
	s.pathCache.initialized = true

	return absCwd, nil
}

// InvalidatePathCache clears the cached working directory. Call this if the
// working directory changes during execution.
func (s *DocumentScanner) InvalidatePathCache() {
	s.pathCache.mu.Lock()
	defer s.pathCache.mu.Unlock()
	s.pathCache.initialized = false
	s.pathCache.currentWorkingDir = ""
}
