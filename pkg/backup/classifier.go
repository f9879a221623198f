package backup

// Classifier declares, for a given key, whether it is "private" or
// "app-state" — two independent, opaque flags the core never
// interprets itself. A nil predicate is treated as always-false. A
// common convention is a key-prefix check (e.g. "_pref_", "app_state_")
// but callers are free to use anything.
type Classifier struct {
	IsPrivate  func(key string) bool
	IsAppState func(key string) bool
}

// Included reports whether key passes the export/import filter: a key
// is included iff (not private OR exportPrivate) AND (not app-state OR
// exportAppState).
func (c Classifier) Included(key string, includePrivate, includeAppState bool) bool {
	private := c.IsPrivate != nil && c.IsPrivate(key)
	appState := c.IsAppState != nil && c.IsAppState(key)
	return (!private || includePrivate) && (!appState || includeAppState)
}

// None classifies every key as neither private nor app-state, so every
// key is always included.
func None() Classifier {
	return Classifier{}
}
