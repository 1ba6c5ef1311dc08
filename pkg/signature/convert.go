// Package signature converts between signature records and the signatures
// built by the git engine.
//
// The record-to-signature direction (ToSignature) validates the record, then
// asks the engine for the repository default identity, a signature stamped
// "now", or a signature at an explicit time and offset. The opposite
// direction (FromSignature) decodes name and email in the requested encoding
// and places the timestamp in a zone at the signature's offset.
package signature

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/gitsig/pkg/gitlib"
)

const (
	tracerName = "gitsig/signature"

	opToSignature   = "to_signature"
	opFromSignature = "from_signature"

	pathDefault  = "default"
	pathNow      = "now"
	pathExplicit = "explicit"

	attrPath     = "signature.path"
	attrEncoding = "signature.encoding"

	secondsPerMinute = 60
)

// errNoRepository is wrapped in a RepositoryError when a default identity is
// requested without a repository.
var errNoRepository = errors.New("no repository to resolve the default identity from")

// Factory builds signatures. It is implemented by gitlib.Engine and gogit.Engine.
type Factory interface {
	// NewSignature builds a signature at unix seconds with offset in minutes east of UTC.
	NewSignature(name, email string, unix int64, offset int) (gitlib.Signature, error)
	// NowSignature builds a signature at the current time and local offset.
	NowSignature(name, email string) (gitlib.Signature, error)
}

// Repository resolves the default identity configured for a repository.
type Repository interface {
	DefaultSignature() (gitlib.Signature, error)
}

// Recorder receives one observation per conversion.
type Recorder interface {
	RecordConversion(ctx context.Context, op, outcome string, duration time.Duration)
}

// Converter converts records to signatures and back.
// It holds no mutable state and is safe for concurrent use.
type Converter struct {
	factory  Factory
	logger   *slog.Logger
	tracer   trace.Tracer
	recorder Recorder
}

// Option configures a Converter.
type Option func(*Converter)

// WithLogger sets the logger used for debug and failure messages.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Converter) {
		c.logger = logger
	}
}

// WithTracer sets the tracer used for conversion spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Converter) {
		c.tracer = tracer
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(recorder Recorder) Option {
	return func(c *Converter) {
		c.recorder = recorder
	}
}

// New returns a Converter building signatures with factory.
func New(factory Factory, opts ...Option) *Converter {
	c := &Converter{
		factory: factory,
		logger:  slog.Default(),
		tracer:  otel.Tracer(tracerName),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

var defaultConverter = New(gitlib.Engine{})

// ToSignature converts v with the libgit2 engine. See Converter.ToSignature.
func ToSignature(ctx context.Context, v any, repo Repository) (gitlib.Signature, error) {
	return defaultConverter.ToSignature(ctx, v, repo)
}

// FromSignature converts sig with the default converter. See Converter.FromSignature.
func FromSignature(ctx context.Context, sig gitlib.Signature, encodingName string) (Entry, error) {
	return defaultConverter.FromSignature(ctx, sig, encodingName)
}

// ToSignature builds a signature from v, which is anything Parse accepts.
//
// A nil v resolves the default identity of repo. A record without a time is
// stamped with the current time. Otherwise the signature carries the unix
// seconds of the time and an offset taken from TimeOffset when set, or from
// the zone of the time value. Offsets in seconds are truncated toward zero
// to whole minutes.
func (c *Converter) ToSignature(ctx context.Context, v any, repo Repository) (gitlib.Signature, error) {
	ctx, span := c.tracer.Start(ctx, "signature.ToSignature")
	defer span.End()

	start := time.Now()

	sig, path, err := c.toSignature(v, repo)

	c.finish(ctx, span, opToSignature, path, start, err)

	return sig, err
}

func (c *Converter) toSignature(v any, repo Repository) (gitlib.Signature, string, error) {
	rec, err := Parse(v)
	if err != nil {
		return gitlib.Signature{}, "", err
	}

	if rec == nil {
		sig, defErr := defaultSignature(repo)

		return sig, pathDefault, defErr
	}

	if rec.Time == nil {
		sig, nowErr := c.factory.NowSignature(rec.Name, rec.Email)
		if nowErr != nil {
			return gitlib.Signature{}, pathNow, &RepositoryError{Op: "now signature", Err: nowErr}
		}

		return sig, pathNow, nil
	}

	_, offset := rec.Time.Zone()
	if rec.TimeOffset != nil {
		offset = *rec.TimeOffset
	}

	sig, newErr := c.factory.NewSignature(rec.Name, rec.Email, rec.Time.Unix(), offset/secondsPerMinute)
	if newErr != nil {
		return gitlib.Signature{}, pathExplicit, &RepositoryError{Op: "new signature", Err: newErr}
	}

	return sig, pathExplicit, nil
}

func defaultSignature(repo Repository) (gitlib.Signature, error) {
	if repo == nil {
		return gitlib.Signature{}, &RepositoryError{Op: "default signature", Err: errNoRepository}
	}

	sig, err := repo.DefaultSignature()
	if err != nil {
		return gitlib.Signature{}, &RepositoryError{Op: "default signature", Err: err}
	}

	return sig, nil
}

// FromSignature converts sig back to record form. Name and email are decoded
// from encodingName, which defaults to UTF-8 when empty.
func (c *Converter) FromSignature(ctx context.Context, sig gitlib.Signature, encodingName string) (Entry, error) {
	ctx, span := c.tracer.Start(ctx, "signature.FromSignature",
		trace.WithAttributes(attribute.String(attrEncoding, encodingName)))
	defer span.End()

	start := time.Now()

	entry, err := fromSignature(sig, encodingName)

	c.finish(ctx, span, opFromSignature, "", start, err)

	return entry, err
}

func fromSignature(sig gitlib.Signature, encodingName string) (Entry, error) {
	dec, err := resolveEncoding(encodingName)
	if err != nil {
		return Entry{}, err
	}

	name, err := dec.decode(sig.Name)
	if err != nil {
		return Entry{}, err
	}

	email, err := dec.decode(sig.Email)
	if err != nil {
		return Entry{}, err
	}

	return Entry{
		Name:  name,
		Email: email,
		Time:  sig.When(),
	}, nil
}

func (c *Converter) finish(ctx context.Context, span trace.Span, op, path string, start time.Time, err error) {
	outcome := Kind(err)
	elapsed := time.Since(start)

	if c.recorder != nil {
		c.recorder.RecordConversion(ctx, op, outcome, elapsed)
	}

	if path != "" {
		span.SetAttributes(attribute.String(attrPath, path))
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		c.logger.WarnContext(ctx, "signature conversion failed", "op", op, "kind", outcome, "error", err)

		return
	}

	c.logger.DebugContext(ctx, "signature converted", "op", op, "path", path, "elapsed", elapsed)
}
