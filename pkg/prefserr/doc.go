/*
Package prefserr defines the sentinel error taxonomy shared by every layer
of the preference store.

Five classes escape the core: InvalidArgument, NotSupported, BackupParse,
Io, and Cancellation. A sixth class, codec corruption, is deliberately
NOT represented here — malformed on-disk bytes for a codec-backed cell
are recovered locally by returning the handle's default and are never
surfaced as an error.
*/
package prefserr
