package observability

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Span attribute namespaces exported as is.
var exportedNamespaces = []string{
	"gitsig.",
	"signature.",
	"backend.",
	"error.",
	"exception.",
}

// identityKeys hold a person's name or email. They are stripped from spans and
// masked in logs, even inside an exported namespace.
var identityKeys = map[string]bool{
	"name":            true,
	"email":           true,
	"signature.name":  true,
	"signature.email": true,
	"author":          true,
	"committer":       true,
}

// isIdentityKey reports whether key may carry a signature identity.
func isIdentityKey(key string) bool {
	return identityKeys[key] || strings.HasPrefix(key, "user.")
}

// exportable reports whether a span attribute key may leave the process.
func exportable(key string) bool {
	if isIdentityKey(key) {
		return false
	}

	if key == "error" {
		return true
	}

	for _, ns := range exportedNamespaces {
		if strings.HasPrefix(key, ns) {
			return true
		}
	}

	return false
}

// attributeFilter drops non-exportable attributes from ended spans before the
// delegate processor sees them.
type attributeFilter struct {
	sdktrace.SpanProcessor

	logger *slog.Logger
}

// NewAttributeFilter wraps delegate so that only gitsig, signature, backend and
// error attributes are exported. Identity attributes never are. Each dropped key
// is logged at warn level when logger is non-nil.
func NewAttributeFilter(delegate sdktrace.SpanProcessor, logger *slog.Logger) sdktrace.SpanProcessor {
	return &attributeFilter{SpanProcessor: delegate, logger: logger}
}

// OnEnd hands the delegate a view of s holding only exportable attributes.
func (f *attributeFilter) OnEnd(s sdktrace.ReadOnlySpan) {
	all := s.Attributes()
	kept := make([]attribute.KeyValue, 0, len(all))

	for _, kv := range all {
		key := string(kv.Key)
		if exportable(key) {
			kept = append(kept, kv)

			continue
		}

		if f.logger != nil {
			f.logger.Warn("span attribute blocked", "span", s.Name(), "key", key)
		}
	}

	f.SpanProcessor.OnEnd(&filteredSpan{ReadOnlySpan: s, attrs: kept})
}

func (f *attributeFilter) Shutdown(ctx context.Context) error {
	err := f.SpanProcessor.Shutdown(ctx)
	if err != nil {
		return fmt.Errorf("shutdown span processor: %w", err)
	}

	return nil
}

func (f *attributeFilter) ForceFlush(ctx context.Context) error {
	err := f.SpanProcessor.ForceFlush(ctx)
	if err != nil {
		return fmt.Errorf("flush span processor: %w", err)
	}

	return nil
}

type filteredSpan struct {
	sdktrace.ReadOnlySpan

	attrs []attribute.KeyValue
}

func (s *filteredSpan) Attributes() []attribute.KeyValue {
	return s.attrs
}
