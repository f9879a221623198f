/*
Package cell defines the seven primitive cell types the flat ("preferences")
backend stores, and the tagged JSON envelope used to both persist a cell on
disk and describe it in a backup record.

A Value pairs a Tag with a Go value of the matching type. The same Tag
vocabulary ("int", "long", "float", "double", "string", "boolean",
"stringSet") is used for on-disk bbolt cell encoding and for the backup
wire format, so there is exactly one place that knows how a primitive
round-trips through JSON.
*/
package cell
