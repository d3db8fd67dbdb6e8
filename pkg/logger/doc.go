// Package logger builds the application's slog.Logger.
//
// New picks a JSON or text handler and wraps it so that values stored in the
// context (request ID, environment) are added to every record logged with a
// *Context method:
//
//	log := logger.New(
//		logger.WithFormat(logger.FormatJSON),
//		logger.WithEnvironment(env, "blogify"),
//		logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	log.InfoContext(ctx, "blog published", logger.BlogID(id.Hex()))
//
// NewFromConfig derives level and format from Config: development logs text
// at debug level, other environments log JSON at info.
//
// The attribute helpers (Error, UserID, BlogID, Email, Duration, ...) keep
// key names consistent across packages.
package logger
