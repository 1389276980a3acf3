package application

import "log/slog"

const moduleName = "finance-core/escrow-service"

func ResolveLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// LayerLogger tags every line with this module and the given layer.
func LayerLogger(logger *slog.Logger, layer string) *slog.Logger {
	return ResolveLogger(logger).With("module", moduleName, "layer", layer)
}
