package backup

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/cuemby/prefstore/pkg/cell"
	"github.com/cuemby/prefstore/pkg/log"
	"github.com/cuemby/prefstore/pkg/prefserr"
	"github.com/cuemby/prefstore/pkg/store/flatstore"
)

type wireBackup struct {
	Preferences []wireEntry `json:"preferences"`
}

type wireEntry struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// Export walks store's current Snapshot and returns the stable wire
// format for every key that passes classifier's filter. Keys are sorted
// for a reproducible diff-friendly export, even though ordering carries
// no semantic meaning.
func Export(store *flatstore.Store, classifier Classifier, exportPrivate, exportAppState bool) ([]byte, error) {
	snap := store.Current()
	keys := snap.Keys()
	sort.Strings(keys)

	out := wireBackup{Preferences: make([]wireEntry, 0, len(keys))}
	for _, key := range keys {
		if !classifier.Included(key, exportPrivate, exportAppState) {
			continue
		}
		v, ok := snap.Get(key)
		if !ok {
			continue
		}
		raw, err := cell.Marshal(v)
		if err != nil {
			// No primitive cell tag is ever unmarshalable by cell.Marshal;
			// this only guards against a future cell variant gaining a
			// representation this package doesn't know about yet.
			log.WithKey(key).Warn().Err(err).Msg("backup: skipping cell with unsupported encoding")
			continue
		}
		out.Preferences = append(out.Preferences, wireEntry{Key: key, Value: raw})
	}
	return json.Marshal(out)
}

// Import parses data as the wire backup format and applies every
// surviving entry in a single commit. A top-level parse failure returns
// a BackupParse error without mutating the store. An entry with an
// unrecognized tag, or whose JSON payload doesn't match its declared
// tag, is rejected individually and logged; the rest of the import
// still commits. Duplicate keys within one import resolve last-wins.
// A key whose import value has a different primitive type than the
// cell already on disk overwrites it anyway, logged at warn level.
func Import(ctx context.Context, store *flatstore.Store, data []byte, classifier Classifier, importPrivate, importAppState bool) error {
	var wire wireBackup
	if err := json.Unmarshal(data, &wire); err != nil {
		return prefserr.BackupParse("import", err)
	}

	order := make([]string, 0, len(wire.Preferences))
	values := make(map[string]cell.Value, len(wire.Preferences))
	for _, entry := range wire.Preferences {
		v, err := cell.Unmarshal(entry.Value)
		if err != nil {
			log.WithKey(entry.Key).Warn().Err(err).Msg("backup: rejecting unrecognized import entry")
			continue
		}
		if _, seen := values[entry.Key]; !seen {
			order = append(order, entry.Key)
		}
		values[entry.Key] = v
	}

	return store.Commit(ctx, func(base *flatstore.Snapshot) *flatstore.Snapshot {
		tx := flatstore.NewTxn(base)
		for _, key := range order {
			if !classifier.Included(key, importPrivate, importAppState) {
				continue
			}
			v := values[key]
			if existing, ok := tx.Get(key); ok && existing.Tag != v.Tag {
				log.WithKey(key).Warn().Msg("backup: import overwrites cell of a different type")
			}
			tx.Put(key, v)
		}
		return tx.Snapshot()
	})
}
