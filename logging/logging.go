/*package logging configures the logger used by the command line front
end. Library packages stay log-free: conditions there are return values.
*/
package logging

import (
	"runtime"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a logger writing human-readable lines to stderr. With debug
// set, debug-level messages and caller info are included.
func New(debug bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	if !debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		cfg.DisableCaller = true
	}
	return cfg.Build()
}

// MemFields reports current memory usage statistics, for performance
// logging around large batch evaluations.
func MemFields() []zap.Field {
	ms := runtime.MemStats{}
	runtime.ReadMemStats(&ms)
	return []zap.Field{
		zap.Uint64("alloc_mb", ms.Alloc>>20),
		zap.Uint64("sys_mb", ms.Sys>>20),
		zap.Uint64("integrated_mb", ms.TotalAlloc>>20),
	}
}
