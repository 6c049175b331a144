// Package logger provides structured logging built on log/slog.
//
// It adds two capabilities over the standard library: context extractors
// that inject request-scoped attributes (request IDs, task names) into every
// record, and optional Sentry forwarding with graceful fallback when no DSN
// is configured.
//
// Create a logger with extractors:
//
//	log := logger.New(func(ctx context.Context) (slog.Attr, bool) {
//		if id, ok := ctx.Value(requestIDKey{}).(string); ok {
//			return slog.String("request_id", id), true
//		}
//		return slog.Attr{}, false
//	})
//
// For production error tracking, use NewWithSentry; with an empty DSN it
// behaves exactly like New.
package logger
