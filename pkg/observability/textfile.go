package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// TextfileExporter collects OTel metrics into a private Prometheus registry
// and writes them in the text exposition format, for node_exporter's
// textfile collector.
type TextfileExporter struct {
	registry *prometheus.Registry
	exporter *promexporter.Exporter
	path     string
}

// NewTextfileExporter creates an exporter that writes to path.
func NewTextfileExporter(path string) (*TextfileExporter, error) {
	registry := prometheus.NewRegistry()

	exporter, err := promexporter.New(
		promexporter.WithRegisterer(registry),
	)
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	return &TextfileExporter{registry: registry, exporter: exporter, path: path}, nil
}

// Reader returns the metric reader to attach to a MeterProvider.
func (te *TextfileExporter) Reader() sdkmetric.Reader {
	return te.exporter
}

// Write gathers the registry and atomically replaces the metrics file.
func (te *TextfileExporter) Write() error {
	err := prometheus.WriteToTextfile(te.path, te.registry)
	if err != nil {
		return fmt.Errorf("write metrics file: %w", err)
	}

	return nil
}
