package snapshot

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/orbital-sentinel/sentinel/internal/errors"
)

// Document is one parsed workflow snapshot. It wraps the raw JSON behind
// path-based accessors that never panic: absent or malformed fields report
// ok=false and callers decide whether that means zero or missing.
type Document struct {
	workflow     string
	path         string
	root         gjson.Result
	generatedAt  time.Time
	hasTimestamp bool
}

// Read loads and parses the snapshot file for a workflow. A file that does
// not exist and a file that is not valid JSON are distinct failures; both
// stop the pipeline for this cycle only.
func Read(workflow, path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.SnapshotMissingError(workflow, path)
		}
		return nil, errors.SnapshotUnparseableError(workflow, path, err)
	}
	return Parse(workflow, path, data)
}

// Parse builds a Document from raw snapshot bytes.
func Parse(workflow, path string, data []byte) (*Document, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.SnapshotUnparseableError(workflow, path, nil)
	}

	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, errors.SnapshotUnparseableError(workflow, path, nil)
	}

	doc := &Document{
		workflow: workflow,
		path:     path,
		root:     root,
	}

	// The monitor writes generatedAt; older producers wrote timestamp.
	ts := root.Get("generatedAt")
	if !ts.Exists() {
		ts = root.Get("timestamp")
	}
	if t, ok := parseTimestamp(ts); ok {
		doc.generatedAt = t
		doc.hasTimestamp = true
	}

	return doc, nil
}

// Workflow returns the workflow key this document was read for.
func (d *Document) Workflow() string { return d.workflow }

// Path returns the file the document was read from.
func (d *Document) Path() string { return d.path }

// GeneratedAt returns the snapshot's generation time in UTC. ok is false
// when the snapshot carries no usable timestamp, which the freshness gate
// treats as an unconditional skip.
func (d *Document) GeneratedAt() (time.Time, bool) {
	return d.generatedAt, d.hasTimestamp
}

// Exists reports whether a field is present at the given gjson path.
func (d *Document) Exists(path string) bool {
	return d.root.Get(path).Exists()
}

// Float extracts a numeric field. Quoted numbers are tolerated because some
// producers stringify large values; anything else reports ok=false.
func (d *Document) Float(path string) (float64, bool) {
	r := d.root.Get(path)
	switch r.Type {
	case gjson.Number:
		return r.Num, true
	case gjson.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(r.Str), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Uint extracts a non-negative integer field. Fractions truncate; negative
// values report ok=false.
func (d *Document) Uint(path string) (uint64, bool) {
	f, ok := d.Float(path)
	if !ok || f < 0 {
		return 0, false
	}
	return uint64(f), true
}

// Str extracts a string field.
func (d *Document) Str(path string) (string, bool) {
	r := d.root.Get(path)
	if r.Type != gjson.String {
		return "", false
	}
	return r.Str, true
}

// Array returns the elements of an array field, or nil when absent.
func (d *Document) Array(path string) []gjson.Result {
	r := d.root.Get(path)
	if !r.IsArray() {
		return nil
	}
	return r.Array()
}

// ArrayLen returns the length of an array field, 0 when absent.
func (d *Document) ArrayLen(path string) int {
	return len(d.Array(path))
}

// Get exposes the underlying gjson result for callers that need to walk
// nested structures themselves.
func (d *Document) Get(path string) gjson.Result {
	return d.root.Get(path)
}

// parseTimestamp accepts the two timestamp shapes producers emit: an
// ISO-8601 string or a Unix epoch number. Everything is normalized to UTC.
func parseTimestamp(r gjson.Result) (time.Time, bool) {
	switch r.Type {
	case gjson.String:
		s := strings.TrimSpace(r.Str)
		if s == "" {
			return time.Time{}, false
		}
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t.UTC(), true
		}
		// Offset-less producer timestamps are taken as UTC.
		if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
			return t.UTC(), true
		}
		return time.Time{}, false
	case gjson.Number:
		f := r.Num
		if f <= 0 {
			return time.Time{}, false
		}
		// Epoch milliseconds show up from JS producers; anything past the
		// year 33658 in seconds is really milliseconds.
		if f > 1e12 {
			f = f / 1000
		}
		sec := int64(f)
		nsec := int64((f - float64(sec)) * 1e9)
		return time.Unix(sec, nsec).UTC(), true
	default:
		return time.Time{}, false
	}
}
