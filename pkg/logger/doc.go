// Package logger builds configured slog.Logger instances: JSON output
// for production log aggregation, text for local development, plus
// optional context extractors that inject request-scoped attributes
// (request IDs, user IDs) into every record.
package logger
