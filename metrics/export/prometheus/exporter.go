package prometheus

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	authgate "github.com/mwhitlock/authgate"
)

type metricsSource interface {
	MetricsSnapshot() authgate.MetricsSnapshot
	AuditDropped() uint64
}

// Exporter renders authgate metrics in Prometheus text exposition format.
type Exporter struct {
	source metricsSource
}

// NewExporter creates an Exporter that reads from the given [authgate.Engine].
func NewExporter(engine *authgate.Engine) *Exporter {
	return &Exporter{source: engine}
}

// NewExporterFromSource creates an Exporter from a custom source.
func NewExporterFromSource(source metricsSource) *Exporter {
	return &Exporter{source: source}
}

// Handler returns an http.Handler that serves the current metrics.
func (e *Exporter) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		_, _ = w.Write([]byte(e.Render()))
	})
}

// Render writes the current metrics in Prometheus text exposition format.
// Counter names are stable: authgate_<flow_outcome>_total.
func (e *Exporter) Render() string {
	if e == nil || e.source == nil {
		return ""
	}

	snapshot := e.source.MetricsSnapshot()

	names := make([]string, 0, len(snapshot))
	values := make(map[string]uint64, len(snapshot))
	for id, value := range snapshot {
		name := "authgate_" + id.Name() + "_total"
		names = append(names, name)
		values[name] = value
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		b.WriteString("# TYPE " + name + " counter\n")
		b.WriteString(name + " " + strconv.FormatUint(values[name], 10) + "\n")
	}

	b.WriteString("# TYPE authgate_audit_dropped_total counter\n")
	b.WriteString("authgate_audit_dropped_total " + strconv.FormatUint(e.source.AuditDropped(), 10) + "\n")

	return b.String()
}
