package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

// Trace file names under <baseDir>/runs/<runID>/.
const (
	traceFile           = "trace.jsonl"
	traceFileCompressed = "trace.jsonl.zst"
)

// TraceEntry is a single line of the best-cost history. Entry 0 carries the
// best cost right after seeding; entry i the best cost after iteration i.
type TraceEntry struct {
	// Iteration is the 0-based iteration the cost was observed after.
	Iteration int `json:"iteration"`

	// BestCost is the best cost in memory at this iteration.
	BestCost float64 `json:"bestCost"`

	// Timestamp records when this entry was written.
	Timestamp time.Time `json:"timestamp"`
}

// TraceWriter writes trace entries to a JSONL file, optionally
// zstd-compressed. It buffers writes and is safe for concurrent use.
type TraceWriter struct {
	mu     sync.Mutex
	file   *os.File
	comp   *zstd.Encoder // nil when writing plain JSONL
	writer *bufio.Writer
	path   string
}

// NewTraceWriter creates a trace writer for the given run. The file is
// created at <baseDir>/runs/<runID>/trace.jsonl, with a .zst suffix when
// compression is on. An existing trace for the run is truncated.
func NewTraceWriter(baseDir, runID string, compress bool) (*TraceWriter, error) {
	runDir := filepath.Join(baseDir, "runs", runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create run directory: %w", err)
	}

	name := traceFile
	if compress {
		name = traceFileCompressed
	}
	path := filepath.Join(runDir, name)

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace file: %w", err)
	}

	tw := &TraceWriter{file: file, path: path}
	if compress {
		comp, err := zstd.NewWriter(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to create zstd writer: %w", err)
		}
		tw.comp = comp
		tw.writer = bufio.NewWriterSize(comp, 64*1024)
	} else {
		tw.writer = bufio.NewWriterSize(file, 64*1024)
	}
	return tw, nil
}

// Write appends a trace entry. The entry is buffered and hits disk on
// Flush() or Close().
func (tw *TraceWriter) Write(entry TraceEntry) error {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal trace entry: %w", err)
	}
	if _, err := tw.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write trace entry: %w", err)
	}
	if err := tw.writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}
	return nil
}

// Flush pushes buffered data through the compressor (when present) and syncs
// the file.
func (tw *TraceWriter) Flush() error {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if err := tw.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush trace writer: %w", err)
	}
	if tw.comp != nil {
		if err := tw.comp.Flush(); err != nil {
			return fmt.Errorf("failed to flush zstd writer: %w", err)
		}
	}
	if err := tw.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync trace file: %w", err)
	}
	return nil
}

// Close flushes buffered data and closes the trace file.
func (tw *TraceWriter) Close() error {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if err := tw.writer.Flush(); err != nil {
		tw.file.Close()
		return fmt.Errorf("failed to flush on close: %w", err)
	}
	if tw.comp != nil {
		if err := tw.comp.Close(); err != nil {
			tw.file.Close()
			return fmt.Errorf("failed to close zstd writer: %w", err)
		}
	}
	if err := tw.file.Close(); err != nil {
		return fmt.Errorf("failed to close trace file: %w", err)
	}
	return nil
}

// Path returns the filesystem path to the trace file.
func (tw *TraceWriter) Path() string {
	return tw.path
}

// WriteTrace persists a full best-cost history in one shot. Index i of the
// trace becomes entry i, so callers hand over the engine trace unchanged.
func WriteTrace(baseDir, runID string, trace []float64, compress bool) error {
	tw, err := NewTraceWriter(baseDir, runID, compress)
	if err != nil {
		return err
	}
	now := time.Now()
	for i, cost := range trace {
		if err := tw.Write(TraceEntry{Iteration: i, BestCost: cost, Timestamp: now}); err != nil {
			tw.Close()
			return err
		}
	}
	return tw.Close()
}

// TraceReader reads trace entries from a JSONL file, transparently handling
// the compressed variant.
type TraceReader struct {
	file    *os.File
	dec     *zstd.Decoder // nil when reading plain JSONL
	scanner *bufio.Scanner
}

// NewTraceReader opens the trace of the given run, preferring the plain file
// and falling back to the compressed one.
func NewTraceReader(baseDir, runID string) (*TraceReader, error) {
	runDir := filepath.Join(baseDir, "runs", runID)

	file, err := os.Open(filepath.Join(runDir, traceFile))
	if err == nil {
		return newPlainTraceReader(file), nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to open trace file: %w", err)
	}

	file, err = os.Open(filepath.Join(runDir, traceFileCompressed))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{RunID: runID}
		}
		return nil, fmt.Errorf("failed to open trace file: %w", err)
	}
	dec, err := zstd.NewReader(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create zstd reader: %w", err)
	}
	tr := &TraceReader{file: file, dec: dec}
	tr.scanner = newTraceScanner(dec)
	return tr, nil
}

func newPlainTraceReader(file *os.File) *TraceReader {
	return &TraceReader{file: file, scanner: newTraceScanner(file)}
}

func newTraceScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	return scanner
}

// Read returns the next trace entry, or io.EOF when the file is exhausted.
func (tr *TraceReader) Read() (*TraceEntry, error) {
	if !tr.scanner.Scan() {
		if err := tr.scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to scan trace line: %w", err)
		}
		return nil, io.EOF
	}

	var entry TraceEntry
	if err := json.Unmarshal(tr.scanner.Bytes(), &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal trace entry: %w", err)
	}
	return &entry, nil
}

// ReadAll reads the remaining trace entries.
func (tr *TraceReader) ReadAll() ([]TraceEntry, error) {
	var entries []TraceEntry
	for {
		entry, err := tr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return entries, nil
}

// Close closes the trace reader.
func (tr *TraceReader) Close() error {
	if tr.dec != nil {
		tr.dec.Close()
	}
	if err := tr.file.Close(); err != nil {
		return fmt.Errorf("failed to close trace file: %w", err)
	}
	return nil
}

// DeleteTrace removes the trace files for the given run. Missing files are
// not an error.
func DeleteTrace(baseDir, runID string) error {
	runDir := filepath.Join(baseDir, "runs", runID)
	for _, name := range []string{traceFile, traceFileCompressed} {
		err := os.Remove(filepath.Join(runDir, name))
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete trace file: %w", err)
		}
	}
	return nil
}
