// Package prometheus renders the engine's in-process counters in Prometheus
// text exposition format, without pulling in a client library: the counters
// are plain monotonic values and the format is a handful of lines.
package prometheus
