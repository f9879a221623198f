/*
Package prefs implements the preference handle model over the flat
("preferences") backend from pkg/store/flatstore.

Handle[T] is the single concrete type behind every flat-backend variant:
primitive cells (Bool, Int32, ...), codec-backed cells (Enum,
Serialized, Structural, List, Set), Nullable wrappers, and Mapped
transforms. Rather than an inheritance hierarchy, each constructor wires
three closures — read, write, remove — that capture the variant's
codec; Handle[T] is a sealed variant plus accessor protocol expressed
as Go generics instead of a type-erased trait object, since generics
already give call-site type safety for free.

Handles are cheap, stateless (beyond their closures) and safe to share;
the expensive state lives entirely in the flatstore.Store they read
and write through.
*/
package prefs
