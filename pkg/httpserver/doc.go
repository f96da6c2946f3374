// Package httpserver runs an http.Handler with graceful shutdown.
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//		return err
//	}
//
// Run returns when ctx is cancelled, on SIGINT or SIGTERM, or after Shutdown.
// Request contexts are cancelled when shutdown begins so streaming handlers
// can exit promptly.
//
// HealthCheckHandler provides JSON liveness and readiness endpoints backed by
// named dependency checks.
package httpserver
