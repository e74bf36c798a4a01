// Package corpus ships the built-in Docify FAQ corpus used when no
// CORPUS_PATH is configured, so a fresh install answers sensibly out of
// the box.
package corpus

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
)

//go:embed faq.txt
var defaultCorpus string

// Default returns the built-in FAQ corpus text.
func Default() string {
	return defaultCorpus
}

// Materialize writes the built-in corpus to path unless a file already
// exists there, and returns the path. The index builder reads the corpus
// from disk, so the embedded default is written out once on first use.
func Materialize(path string) (string, error) {
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("corpus: creating directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(defaultCorpus), 0o644); err != nil {
		return "", fmt.Errorf("corpus: writing default corpus to %s: %w", path, err)
	}
	return path, nil
}
