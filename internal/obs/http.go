package obs

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// BootstrapHTTP starts an auxiliary HTTP server (metrics, health, admin
// trigger) in the background and returns it for graceful shutdown.
func BootstrapHTTP(addr string, handler http.Handler, l *zap.Logger) *http.Server {
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		l.Info("admin http listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error("admin http server error", zap.Error(err))
		}
	}()

	return srv
}
