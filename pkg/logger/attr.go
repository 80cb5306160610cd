package logger

import "log/slog"

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Email records a user email under the key "email".
func Email(email string) slog.Attr {
	if email == "" {
		return slog.Attr{}
	}
	return slog.String("email", email)
}

// Component records the subsystem emitting the record under the key "component".
func Component(name string) slog.Attr {
	if name == "" {
		return slog.Attr{}
	}
	return slog.String("component", name)
}

// StorageKey records the persistence key involved in a storage operation.
func StorageKey(key string) slog.Attr {
	if key == "" {
		return slog.Attr{}
	}
	return slog.String("storage_key", key)
}
