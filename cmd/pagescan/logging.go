package main

import (
	"go.uber.org/zap"

	"github.com/wudi/pagescan/observability"
)

// zapLogger adapts a zap.Logger to the observability.Logger seam used by the
// scan runner.
type zapLogger struct {
	z *zap.Logger
}

func newLogger(verbose bool) (observability.Logger, func(), error) {
	var (
		z   *zap.Logger
		err error
	)
	if verbose {
		z, err = zap.NewDevelopment()
	} else {
		z, err = zap.NewProduction()
	}
	if err != nil {
		return nil, nil, err
	}
	flush := func() { _ = z.Sync() }
	return zapLogger{z: z}, flush, nil
}

func (l zapLogger) Debug(msg string, fields ...observability.Field) { l.z.Debug(msg, zf(fields)...) }
func (l zapLogger) Info(msg string, fields ...observability.Field)  { l.z.Info(msg, zf(fields)...) }
func (l zapLogger) Warn(msg string, fields ...observability.Field)  { l.z.Warn(msg, zf(fields)...) }
func (l zapLogger) Error(msg string, fields ...observability.Field) { l.z.Error(msg, zf(fields)...) }

func (l zapLogger) With(fields ...observability.Field) observability.Logger {
	return zapLogger{z: l.z.With(zf(fields)...)}
}

func zf(fields []observability.Field) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		out = append(out, zap.Any(f.Key(), f.Value()))
	}
	return out
}
