// internal/storage/memory/file.go
package memory

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/OCAP2/tacticboard/pkg/core"
)

var gzipMagic = []byte{0x1f, 0x8b}

// readFile loads a savedPlays document: an object keyed by play name.
// Plain and gzip'd files are both accepted. A missing file is empty.
func readFile(path string) (map[string]core.SavedPlay, error) {
	plays := make(map[string]core.SavedPlay)

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return plays, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open plays file: %w", err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	var r io.Reader = br
	if head, _ := br.Peek(2); bytes.Equal(head, gzipMagic) {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip plays file: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	if err := json.NewDecoder(r).Decode(&plays); err != nil {
		if errors.Is(err, io.EOF) {
			return make(map[string]core.SavedPlay), nil
		}
		return nil, fmt.Errorf("failed to decode plays file: %w", err)
	}
	for name, p := range plays {
		p.Name = name
		plays[name] = p
	}
	return plays, nil
}

// writeFile replaces path atomically with the encoded plays.
func writeFile(path string, plays map[string]core.SavedPlay, compress bool) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := encode(tmp, plays, compress); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

func encode(w io.Writer, plays map[string]core.SavedPlay, compress bool) error {
	if !compress {
		return json.NewEncoder(w).Encode(plays)
	}

	gzWriter := gzip.NewWriter(w)
	if err := json.NewEncoder(gzWriter).Encode(plays); err != nil {
		gzWriter.Close()
		return err
	}
	return gzWriter.Close()
}
