// Package logger provides a small slog factory and the attribute helpers the
// identity packages share.
//
// New reads LOG_LEVEL and LOG_FORMAT (json|text) from the environment and
// applies any options on top. Library constructors default to Discard so
// logging is opt-in for embedders.
//
//	log := logger.New(logger.WithAttr(logger.Component("credstore")))
//	log.Warn("stored blob is undecipherable, starting empty",
//		logger.StorageKey(key), logger.Error(err))
package logger
