package app

import (
	"context"
	"errors"
	"io"
	stdlog "log"
	"net/http"
	"time"

	"hirehub/internal/config"
	"hirehub/internal/logger"

	"github.com/sirupsen/logrus"
)

type App struct {
	httpServer *http.Server
	cleanup    func() error

	stopJanitor context.CancelFunc
	janitorDone chan struct{}
}

// New wires the application. The session janitor, when the backend needs
// one, starts here and runs until Shutdown.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	srv, err := setupHTTP(ctx, cfg)
	if err != nil {
		return nil, err
	}

	errorLog, errorLogWriter := serverErrorLog()

	a := &App{
		httpServer: &http.Server{
			Addr:              ":" + cfg.AppPort,
			Handler:           srv.router,
			ReadHeaderTimeout: 10 * time.Second,
			ErrorLog:          errorLog,
		},
		cleanup: func() error {
			return errors.Join(srv.cleanup(), errorLogWriter.Close())
		},
	}

	if srv.janitor != nil {
		janitorCtx, cancel := context.WithCancel(context.Background())
		a.stopJanitor = cancel
		a.janitorDone = make(chan struct{})
		go func() {
			defer close(a.janitorDone)
			srv.janitor.Run(janitorCtx)
		}()
	}

	return a, nil
}

// serverErrorLog sends net/http's own error output to the structured logger.
func serverErrorLog() (*stdlog.Logger, io.Closer) {
	w := logger.Logger().WriterLevel(logrus.ErrorLevel)
	return stdlog.New(w, "", 0), w
}

// Run serves until Shutdown. A clean shutdown returns nil.
func (a *App) Run() error {
	if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *App) Shutdown(ctx context.Context) error {
	err := a.httpServer.Shutdown(ctx)

	if a.stopJanitor != nil {
		a.stopJanitor()
		<-a.janitorDone
	}

	if a.cleanup != nil {
		err = errors.Join(err, a.cleanup())
	}
	return err
}
