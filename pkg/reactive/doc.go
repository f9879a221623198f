/*
Package reactive provides the generic publish/subscribe broadcast
substrate behind every reactive sequence in the store.

Stream[T] is an infinite, restartable, replay-to-new-subscriber
broadcaster: a fresh subscriber always receives the current value as
its first delivery. It follows the shape of a fan-out event broker,
widened with a type parameter and given a
notion of "current value" so subscribers don't need a separate
bootstrap read.

A subscriber's channel is buffered to depth one and publish drops the
stale value in favor of the new one when the subscriber is slow, so
values superseded before the subscriber drains may be coalesced.
*/
package reactive
