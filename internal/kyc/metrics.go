package kyc

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
)

type snapshotSource interface {
	Snapshot() Snapshot
}

// MetricsExporter renders workflow counters in Prometheus text exposition format.
type MetricsExporter struct {
	source snapshotSource
}

// NewMetricsExporter creates an exporter reading from source (normally a *LogReporter)
func NewMetricsExporter(source snapshotSource) *MetricsExporter {
	return &MetricsExporter{source: source}
}

// Handler returns an http.Handler that serves the metrics.
func (m *MetricsExporter) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		_, _ = w.Write([]byte(m.Render()))
	})
}

// Render writes the current counters in Prometheus text exposition format.
func (m *MetricsExporter) Render() string {
	if m == nil || m.source == nil {
		return ""
	}
	snapshot := m.source.Snapshot()

	var b strings.Builder

	writeHeader(&b, "kyc_session_links_issued_total", "Session links issued, by workflow.")
	workflows := make([]string, 0, len(snapshot.Successes))
	for wf := range snapshot.Successes {
		workflows = append(workflows, wf)
	}
	sort.Strings(workflows)
	for _, wf := range workflows {
		writeSample(&b, "kyc_session_links_issued_total", snapshot.Successes[wf], "workflow", wf)
	}

	writeHeader(&b, "kyc_workflow_failures_total", "Workflow failures, by workflow, step and error kind.")
	for _, k := range snapshot.SortedFailureKeys() {
		writeSample(&b, "kyc_workflow_failures_total", snapshot.Failures[k],
			"workflow", k.Workflow, "step", k.Step, "kind", string(k.Kind))
	}

	writeHeader(&b, "kyc_reset_without_link_total", "Regenerate runs that reset the user but did not issue a new link.")
	writeSample(&b, "kyc_reset_without_link_total", snapshot.ResetWithoutLink)

	return b.String()
}

func writeHeader(b *strings.Builder, name, help string) {
	b.WriteString("# HELP ")
	b.WriteString(name)
	b.WriteByte(' ')
	b.WriteString(escapeHelp(help))
	b.WriteByte('\n')
	b.WriteString("# TYPE ")
	b.WriteString(name)
	b.WriteString(" counter\n")
}

// writeSample writes one sample; labels are name/value pairs
func writeSample(b *strings.Builder, name string, value uint64, labels ...string) {
	b.WriteString(name)
	if len(labels) > 0 {
		b.WriteByte('{')
		for i := 0; i+1 < len(labels); i += 2 {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(labels[i])
			b.WriteString(`="`)
			b.WriteString(escapeLabel(labels[i+1]))
			b.WriteByte('"')
		}
		b.WriteByte('}')
	}
	b.WriteByte(' ')
	b.WriteString(strconv.FormatUint(value, 10))
	b.WriteByte('\n')
}

func escapeHelp(help string) string {
	help = strings.ReplaceAll(help, "\\", "\\\\")
	help = strings.ReplaceAll(help, "\n", "\\n")
	return help
}

func escapeLabel(v string) string {
	v = strings.ReplaceAll(v, "\\", "\\\\")
	v = strings.ReplaceAll(v, "\"", "\\\"")
	v = strings.ReplaceAll(v, "\n", "\\n")
	return v
}
