// Package log provides the conversion pipeline's structured logger: a thin
// wrapper over a zap.SugaredLogger, plus a Diagnostics counter the drivers
// use to report the non-fatal error categories of spec.md §7 at the end of
// a run without aborting the conversion.
package log

import (
	"sync/atomic"

	"go.uber.org/zap"
)

// New builds a console-friendly logger from zap's development config, with
// stack traces disabled. Conversions are
// one-shot CLI invocations (spec.md §5), so a synced, leveled console
// logger is preferable to a buffered service logger.
func New() *zap.SugaredLogger {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	logger, err := cfg.Build()
	if err != nil {
		// Fall back to a no-op logger rather than fail the whole
		// conversion over a logging misconfiguration.
		return zap.NewNop().Sugar()
	}
	return logger.Sugar()
}

// Diagnostics counts non-fatal error categories (unresolved symbols,
// unknown source-tool extensions) encountered during one conversion, per
// the propagation policy in spec.md §7: these accumulate and do not abort.
type Diagnostics struct {
	unresolvedSymbols int64
	unknownExtensions int64
}

func (d *Diagnostics) UnresolvedSymbol() { atomic.AddInt64(&d.unresolvedSymbols, 1) }
func (d *Diagnostics) UnknownExtension() { atomic.AddInt64(&d.unknownExtensions, 1) }

func (d *Diagnostics) Counts() (unresolvedSymbols, unknownExtensions int64) {
	return atomic.LoadInt64(&d.unresolvedSymbols), atomic.LoadInt64(&d.unknownExtensions)
}
