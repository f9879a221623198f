/*
Package storemetrics instruments the snapshot stores and the batch
engine with Prometheus metrics in the GaugeVec/Histogram/Counter style:
package-level collectors registered once, updated from the hot path
with no locking of their own (prometheus client_golang handles that
internally).

The commit latency histogram is what makes the batch engine's
advertised speedup over N individual commits an observable, not just a
claim: commit duration is labelled by backend, while the batch-size
histogram carries no labels, so a dashboard sets the two side by side.
*/
package storemetrics
