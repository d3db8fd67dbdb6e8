// Package httpserver runs an http.Handler with graceful shutdown.
//
// Run blocks until ctx is cancelled or the listener fails. On cancellation
// it stops accepting connections and waits up to Config.ShutdownTimeout for
// in-flight requests:
//
//	srv := httpserver.New(cfg.HTTP, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//		log.Error("server stopped", logger.Error(err))
//	}
//
// The package also ships the middleware and handlers every service mounts:
// RequestLogger writes one structured record per request, and HealthHandler
// runs named Checks (Mongo, Redis, OpenSearch pings) under a shared timeout
// and answers 503 when any of them fails.
package httpserver
