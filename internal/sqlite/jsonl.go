// JSONL export and import of members, one JSON object per line.
package sqlite

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"cloudeng.io/logging/ctxlog"

	"github.com/mesh-intelligence/almanac/pkg/types"
)

// readJSONL reads a JSONL file and returns each non-empty, parseable line as
// a json.RawMessage. Malformed lines are skipped.
func readJSONL(path string) (records []json.RawMessage, skipped int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if !json.Valid(line) {
			skipped++
			continue
		}
		cp := make([]byte, len(line))
		copy(cp, line)
		records = append(records, json.RawMessage(cp))
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("scanning %s: %w", path, err)
	}
	return records, skipped, nil
}

// writeJSONL atomically writes records to a JSONL file using the temp-file,
// fsync, rename pattern.
func writeJSONL(path string, records []json.RawMessage) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".jsonl-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	w := bufio.NewWriter(tmp)
	for _, rec := range records {
		if _, err := w.Write(rec); err != nil {
			tmp.Close()
			os.Remove(tmpName)
			return fmt.Errorf("writing record: %w", err)
		}
		if err := w.WriteByte('\n'); err != nil {
			tmp.Close()
			os.Remove(tmpName)
			return fmt.Errorf("writing newline: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("flushing buffer: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// ExportMembers writes every member to path as JSONL, ordered by birthday.
// The birthday is written in its encoded form.
func (b *Backend) ExportMembers(ctx context.Context, path string) (int, error) {
	t, err := b.GetTable(types.MembersTable)
	if err != nil {
		return 0, err
	}
	members, err := t.Fetch(nil)
	if err != nil {
		return 0, err
	}
	records := make([]json.RawMessage, 0, len(members))
	for _, m := range members {
		data, err := json.Marshal(m)
		if err != nil {
			return 0, fmt.Errorf("marshaling member: %w", err)
		}
		records = append(records, data)
	}
	if err := writeJSONL(path, records); err != nil {
		return 0, err
	}
	ctxlog.Logger(ctx).Info("exported members", "path", path, "count", len(records))
	return len(records), nil
}

// ImportMembers reads members from a JSONL file written by ExportMembers
// and upserts them by member ID. Lines that are not JSON are skipped. A
// record that is not a valid member stops the import; the count of records
// already applied is returned with the error.
func (b *Backend) ImportMembers(ctx context.Context, path string) (int, error) {
	records, skipped, err := readJSONL(path)
	if err != nil {
		return 0, err
	}
	t, err := b.GetTable(types.MembersTable)
	if err != nil {
		return 0, err
	}
	for i, rec := range records {
		var m types.Member
		if err := json.Unmarshal(rec, &m); err != nil {
			return i, fmt.Errorf("record %d: %w", i+1, err)
		}
		if _, err := t.Set(m.MemberID, &m); err != nil {
			return i, fmt.Errorf("record %d: %w", i+1, err)
		}
	}
	log := ctxlog.Logger(ctx)
	if skipped > 0 {
		log.Warn("skipped malformed lines", "path", path, "count", skipped)
	}
	log.Info("imported members", "path", path, "count", len(records))
	return len(records), nil
}
