// Package knowledge owns the file-backed document index and its ranked
// retrieval. The index is built once from a directory of text files and
// is read-only afterwards; reloading replaces the whole index atomically.
package knowledge

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"docqa/internal/domain"
	"docqa/internal/logger"
	"docqa/internal/tokenizer"
)

// ErrCorpusUnavailable wraps unrecoverable load errors. Callers may log it
// and keep going: a failed index answers every search with zero results.
var ErrCorpusUnavailable = errors.New("corpus unavailable")

// DefaultExtensions is the file suffix allow-list applied when none is
// configured.
var DefaultExtensions = []string{".txt", ".md", ".json"}

// State is the index lifecycle: created Unloaded, Loading while a scan is
// in flight, then Ready or Failed. Failed behaves like Ready with an
// empty corpus.
type State int

const (
	Unloaded State = iota
	Loading
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "unloaded"
	}
}

// Index holds the corpus documents, per-term document frequencies, and the
// ranking configuration. Safe for concurrent readers once loaded.
type Index struct {
	dir        string
	extensions []string
	bonuses    Bonuses

	mu      sync.RWMutex
	state   State
	docs    []domain.Document
	docFreq map[string]int

	group  singleflight.Group
	logger *slog.Logger
}

// NewIndex creates an unloaded index over the given directory. Bonuses are
// taken as given; a zero bonus disables that boost.
func NewIndex(dir string, extensions []string, bonuses Bonuses) *Index {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	return &Index{
		dir:        dir,
		extensions: extensions,
		bonuses:    bonuses,
		logger:     logger.WithComponent("knowledge-index"),
	}
}

// Load scans the knowledge directory and builds the index. Concurrent
// callers share a single in-flight scan; once Ready, Load is a no-op.
// A missing directory is created and treated as an empty corpus.
func (ix *Index) Load() error {
	ix.mu.RLock()
	loaded := ix.state == Ready
	ix.mu.RUnlock()
	if loaded {
		return nil
	}

	_, err, _ := ix.group.Do("load", func() (any, error) {
		ix.mu.Lock()
		if ix.state == Ready {
			ix.mu.Unlock()
			return nil, nil
		}
		ix.state = Loading
		ix.mu.Unlock()
		return nil, ix.scan()
	})
	return err
}

// Reload rescans the directory and returns the new document count. Reloads
// run on their own flight key so one issued while the initial load is still
// scanning does not coalesce into it and skip the rescan. The old index
// stays visible until the replacement is complete.
func (ix *Index) Reload() (int, error) {
	_, err, _ := ix.group.Do("reload", func() (any, error) {
		return nil, ix.scan()
	})
	if err != nil {
		return 0, err
	}
	return ix.DocumentCount(), nil
}

// State returns the current lifecycle state.
func (ix *Index) State() State {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.state
}

// DocumentCount returns the number of indexed documents.
func (ix *Index) DocumentCount() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.docs)
}

// DocumentFrequency returns how many documents contain the given term.
func (ix *Index) DocumentFrequency(term string) int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.docFreq[term]
}

func (ix *Index) scan() error {
	entries, err := os.ReadDir(ix.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if mkErr := os.MkdirAll(ix.dir, 0o755); mkErr != nil {
				ix.fail(mkErr)
				return fmt.Errorf("%w: creating %s: %v", ErrCorpusUnavailable, ix.dir, mkErr)
			}
			ix.logger.Info("knowledge directory created", "dir", ix.dir)
			ix.replace(nil, map[string]int{})
			return nil
		}
		ix.fail(err)
		return fmt.Errorf("%w: reading %s: %v", ErrCorpusUnavailable, ix.dir, err)
	}

	var docs []domain.Document
	for _, entry := range entries {
		if entry.IsDir() || !ix.allowed(entry.Name()) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(ix.dir, entry.Name()))
		if err != nil {
			ix.fail(err)
			return fmt.Errorf("%w: reading %s: %v", ErrCorpusUnavailable, entry.Name(), err)
		}
		content := string(data)
		tokens := tokenizer.Tokenize(content)
		stem := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		docs = append(docs, domain.Document{
			Name:            entry.Name(),
			Content:         content,
			TermFrequencies: tokenizer.TermFrequencies(tokens),
			TotalTokens:     len(tokens),
			FilenameTokens:  tokenizer.Tokenize(stem),
		})
	}

	docFreq := make(map[string]int)
	for _, doc := range docs {
		for term := range doc.TermFrequencies {
			docFreq[term]++
		}
	}

	ix.replace(docs, docFreq)
	ix.logger.Info("knowledge base indexed", "dir", ix.dir, "documents", len(docs), "terms", len(docFreq))
	return nil
}

func (ix *Index) replace(docs []domain.Document, docFreq map[string]int) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.docs = docs
	ix.docFreq = docFreq
	ix.state = Ready
}

func (ix *Index) fail(err error) {
	ix.mu.Lock()
	ix.docs = nil
	ix.docFreq = nil
	ix.state = Failed
	ix.mu.Unlock()
	ix.logger.Error("knowledge base load failed", "dir", ix.dir, "error", err)
}

func (ix *Index) allowed(name string) bool {
	for _, ext := range ix.extensions {
		if strings.HasSuffix(name, strings.TrimSpace(ext)) {
			return true
		}
	}
	return false
}
