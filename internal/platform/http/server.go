package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Start runs HTTP server on port and shuts it down gracefully on ctx cancellation.
func Start(ctx context.Context, name, port string, handler http.Handler) error {
	listener, listenErr := net.Listen("tcp", ":"+port)
	if listenErr != nil {
		return listenErr
	}
	logrus.Infof("✅ %s server listening on %s", name, port)

	server := &http.Server{Handler: handler, ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
			return shutdownErr
		}
		logrus.Infof("%s server stopped", name)
		return nil
	case serveErr := <-errCh:
		return serveErr
	}
}
