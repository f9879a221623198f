package backup

import (
	"context"
	"math"
	"sort"

	"github.com/cuemby/prefstore/pkg/cell"
	"github.com/cuemby/prefstore/pkg/log"
	"github.com/cuemby/prefstore/pkg/store/flatstore"
)

// fromAny infers a cell.Value from a native Go value's runtime type:
// integers become int64 if they're out of 32-bit range else int32,
// floats become float64, strings and bools map directly, a []string
// becomes a string-set. Anything else (including nested maps/structs)
// is unsupported and the second return is false.
func fromAny(v any) (cell.Value, bool) {
	switch t := v.(type) {
	case bool:
		return cell.Bool(t), true
	case string:
		return cell.String(t), true
	case []string:
		return cell.Set(cell.NewStringSet(t...)), true
	case int:
		return intCell(int64(t)), true
	case int32:
		return cell.Int32(t), true
	case int64:
		return intCell(t), true
	case float32:
		return cell.Float64(float64(t)), true
	case float64:
		return cell.Float64(t), true
	default:
		return cell.Value{}, false
	}
}

func intCell(n int64) cell.Value {
	if n < math.MinInt32 || n > math.MaxInt32 {
		return cell.Int64(n)
	}
	return cell.Int32(int32(n))
}

// toAny is the inverse projection used by ExportMap: it renders a
// cell.Value back as the native Go type ExportMap's caller expects.
func toAny(v cell.Value) any {
	switch v.Tag {
	case cell.TagBool:
		return v.B
	case cell.TagInt32:
		return v.I32
	case cell.TagInt64:
		return v.I64
	case cell.TagFloat32:
		return v.F32
	case cell.TagFloat64:
		return v.F64
	case cell.TagString:
		return v.S
	case cell.TagStringSet:
		return v.Set.Slice()
	default:
		return nil
	}
}

// ExportMap returns every key passing classifier's filter as a
// free-form map, using the same type-inference rules ImportMap accepts.
func ExportMap(store *flatstore.Store, classifier Classifier, exportPrivate, exportAppState bool) map[string]any {
	snap := store.Current()
	keys := snap.Keys()
	sort.Strings(keys)

	out := make(map[string]any, len(keys))
	for _, key := range keys {
		if !classifier.Included(key, exportPrivate, exportAppState) {
			continue
		}
		v, ok := snap.Get(key)
		if !ok {
			continue
		}
		out[key] = toAny(v)
	}
	return out
}

// ImportMap writes m into store in a single commit, inferring each
// value's cell type from its Go runtime type. Values of an unsupported
// type (notably nested maps/structs) are skipped and logged rather than
// rejecting the whole import.
func ImportMap(ctx context.Context, store *flatstore.Store, m map[string]any, classifier Classifier, importPrivate, importAppState bool) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return store.Commit(ctx, func(base *flatstore.Snapshot) *flatstore.Snapshot {
		tx := flatstore.NewTxn(base)
		for _, key := range keys {
			if !classifier.Included(key, importPrivate, importAppState) {
				continue
			}
			v, ok := fromAny(m[key])
			if !ok {
				log.WithKey(key).Warn().Msg("backup: skipping value of unsupported type")
				continue
			}
			tx.Put(key, v)
		}
		return tx.Snapshot()
	})
}
