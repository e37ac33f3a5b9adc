package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"user-view/cmd/userview/di"
	"user-view/cmd/userview/server"
	"user-view/internal/config"
	"user-view/internal/ui/userview"
	"user-view/pkg/logger"
	"user-view/pkg/security"
)

// App represents the application
type App struct {
	Config    *config.Config
	Logger    *zap.Logger
	Server    *server.Server
	Container *di.Container
}

// New loads configuration from configPath and wires the application
func New(configPath string) (*App, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := initLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return NewWithConfig(cfg, l)
}

// NewWithConfig wires the application from an already loaded configuration
func NewWithConfig(cfg *config.Config, l *zap.Logger) (*App, error) {
	container, err := di.NewContainer(cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to create container: %w", err)
	}

	return &App{
		Config:    cfg,
		Logger:    l,
		Container: container,
	}, nil
}

// Show mounts the view once and writes every frame it goes through to w.
// A view that settles in Failed is reported as an error after it is printed.
func (a *App) Show(ctx context.Context, w io.Writer) error {
	view := userview.Mount(ctx, a.Container.UserUC, a.Logger)
	defer view.Unmount()

	for s := range view.Updates() {
		for _, line := range security.SanitizeLines(userview.Lines(s)) {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return fmt.Errorf("failed to write view: %w", err)
			}
		}
	}

	s, err := view.Wait(ctx)
	if err != nil {
		return err
	}
	if failed, ok := s.(userview.Failed); ok {
		return fmt.Errorf("view failed: %w", failed.Reason)
	}
	return nil
}

// TUI runs the view as an interactive Bubble Tea program and returns the
// state it ended in. With once set the program exits as soon as the view settles.
func (a *App) TUI(ctx context.Context, once bool, opts ...tea.ProgramOption) (userview.State, error) {
	// Info and debug lines would interleave with the rendered frames.
	log := a.Logger.WithOptions(zap.IncreaseLevel(zapcore.ErrorLevel))

	modelOpts := []userview.ModelOption{userview.WithSanitizer(security.SanitizeLines)}
	if once {
		modelOpts = append(modelOpts, userview.QuitOnSettle())
	}
	m := userview.NewModel(ctx, a.Container.UserUC, log, modelOpts...)

	p := tea.NewProgram(m, append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)...)
	final, err := p.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return m.State(), nil
		}
		return nil, fmt.Errorf("tui: %w", err)
	}

	if fm, ok := final.(userview.Model); ok {
		return fm.State(), nil
	}
	return m.State(), nil
}

// Run starts the preview host and blocks until ctx is canceled or a server fails
func (a *App) Run(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			a.Logger.Error("panic recovered in application",
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
			err = fmt.Errorf("application panic: %v", r)
		}
	}()

	if err := a.Container.InitPreviewHost(ctx); err != nil {
		return err
	}
	a.Server = server.New(a.Config, a.Logger, a.Container.ViewHandler, a.Container.RateLimiter)

	a.Logger.Info("starting application",
		zap.String("service", a.Config.Logger.ServiceName),
		zap.String("version", a.Config.Logger.ServiceVersion),
		zap.String("environment", a.Config.App.Environment),
		zap.String("user_url", a.Container.Source.URL()),
	)

	errChan := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				errChan <- fmt.Errorf("server panic: %v", r)
			}
		}()
		errChan <- a.Server.Start(ctx)
	}()

	select {
	case <-ctx.Done():
		a.Logger.Info("shutting down application...")
		return a.shutdown()
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}
}

// shutdown gracefully shuts down the servers
func (a *App) shutdown() error {
	timeout := time.Duration(a.Config.App.ShutdownTimeoutSeconds) * time.Second
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	a.Logger.Info("starting graceful shutdown",
		zap.Int("timeout_seconds", a.Config.App.ShutdownTimeoutSeconds),
	)

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	a.Logger.Info("application shutdown complete")
	return nil
}

// Close releases container resources and flushes the logger
func (a *App) Close() error {
	var errs []error

	if a.Container != nil {
		if err := a.Container.Close(); err != nil {
			errs = append(errs, fmt.Errorf("container close: %w", err))
		}
	}

	if err := a.Logger.Sync(); err != nil && !errors.Is(err, syscall.EINVAL) && !errors.Is(err, syscall.ENOTTY) {
		errs = append(errs, fmt.Errorf("logger sync: %w", err))
	}

	return errors.Join(errs...)
}

// initLogger initializes the application logger
func initLogger(cfg *config.Config) (*zap.Logger, error) {
	return logger.NewWithConfig(logger.Config{
		Level:          cfg.Logger.Level,
		Format:         cfg.Logger.Format,
		OutputPath:     cfg.Logger.OutputPath,
		EnableSampling: cfg.Logger.EnableSampling,
		ServiceName:    cfg.Logger.ServiceName,
		ServiceVersion: cfg.Logger.ServiceVersion,
		Environment:    cfg.App.Environment,
	})
}
