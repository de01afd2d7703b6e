// Package main is the entry point for the teamdockd shell daemon.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/teamdock-io/teamdock/internal/bridge"
	"github.com/teamdock-io/teamdock/internal/config"
	"github.com/teamdock-io/teamdock/internal/logger"
	"github.com/teamdock-io/teamdock/internal/models"
	"github.com/teamdock-io/teamdock/internal/shell"
	"github.com/teamdock-io/teamdock/internal/teams"
	"github.com/teamdock-io/teamdock/internal/tray"
)

// defaultSigninURL is where fresh sign-in surfaces point.
const defaultSigninURL = "https://teamdock.io/signin"

func main() {
	foreground := flag.Bool("foreground", false, "Run in foreground (no system tray)")
	port := flag.Int("port", 0, "Bridge port to listen on (0 for dynamic allocation)")
	flag.Parse()

	log := logger.New("main")
	defer logger.Sync()

	if err := config.EnsureGlobalDir(); err != nil {
		log.Fatalw("failed to create global directory", "error", err)
	}

	// Refuse to double-start
	running, info, err := config.IsShellRunning()
	if err != nil {
		log.Fatalw("failed to check daemon status", "error", err)
	}
	if running {
		log.Fatalw("daemon already running", "bridge", info.BridgeAddr, "pid", info.PID)
	}

	settings, err := config.LoadSettings()
	if err != nil {
		log.Fatalw("failed to load settings", "error", err)
	}
	if *port == 0 {
		*port = settings.Bridge.Port
	}

	if *foreground {
		log.Infow("running in foreground mode (no system tray)")
		runForeground(log, settings, *port)
	} else {
		log.Infow("running in background mode (with system tray)")
		runWithTray(log, settings, *port)
	}
}

// services holds the daemon's running parts.
type services struct {
	core   *shell.Shell
	server *bridge.Server
}

// start brings up the bridge and the shell core. The shell loop runs on
// its own goroutine.
func start(log *logger.Logger, settings *models.Settings, port int) (*services, error) {
	hub := bridge.NewHub()
	events := make(chan bridge.Event, 256)

	server := bridge.NewServer(hub, events)
	if err := server.Listen(port); err != nil {
		return nil, err
	}

	core, err := shell.New(shell.Options{
		Settings:  settings,
		Window:    shell.NopWindow{},
		Surfaces:  hub,
		Sink:      hub,
		SigninURL: defaultSigninURL,
	})
	if err != nil {
		return nil, err
	}

	shellInfo := models.NewShellInfo(server.Addr(), os.Getpid())
	if err := config.SaveShellInfo(shellInfo); err != nil {
		return nil, err
	}

	go core.HandleBridgeEvents(events)
	go core.Run()
	go func() {
		if err := server.Serve(); err != nil {
			log.Errorw("bridge server error", "error", err)
		}
	}()

	log.Infow("daemon started", "bridge", server.Addr(), "pid", os.Getpid())
	return &services{core: core, server: server}, nil
}

func (s *services) stop(log *logger.Logger) {
	if err := s.server.Shutdown(context.Background()); err != nil {
		log.Warnw("bridge shutdown error", "error", err)
	}
	s.core.Shutdown()

	if err := config.RemoveShellInfo(); err != nil {
		log.Warnw("failed to remove shell info", "error", err)
	}
	log.Infow("daemon stopped")
}

// runForeground runs the daemon without a system tray, blocking on signals.
func runForeground(log *logger.Logger, settings *models.Settings, port int) {
	svc, err := start(log, settings, port)
	if err != nil {
		log.Fatalw("failed to start daemon", "error", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Infow("received signal, shutting down", "signal", sig.String())

	svc.stop(log)
}

// runWithTray runs the daemon with a system tray icon on the main goroutine.
// systray.Run must occupy the main goroutine on macOS (Cocoa requirement).
func runWithTray(log *logger.Logger, settings *models.Settings, port int) {
	var svc *services

	onStart := func() {
		var err error
		svc, err = start(log, settings, port)
		if err != nil {
			log.Fatalw("failed to start daemon", "error", err)
		}

		// Handle OS signals: quit tray on SIGINT/SIGTERM
		go func() {
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			sig := <-sigCh
			log.Infow("received signal, shutting down", "signal", sig.String())
			tray.Quit()
		}()
	}

	onExit := func() {
		if svc != nil {
			svc.stop(log)
		}
	}

	// The shell is nil at tray startup and created inside onStart, so
	// the tray sees it through a lazy wrapper.
	lazyState := &lazyShellState{get: func() *shell.Shell {
		if svc == nil {
			return nil
		}
		return svc.core
	}}

	// This blocks the main goroutine until tray exits.
	tray.Run(lazyState, onStart, onExit)
}

// lazyShellState defers to the real shell once it exists.
type lazyShellState struct {
	get func() *shell.Shell
}

func (l *lazyShellState) Teams() []tray.TeamInfo {
	if s := l.get(); s != nil {
		return s.Teams()
	}
	return nil
}

func (l *lazyShellState) Badge() teams.GlobalBadge {
	if s := l.get(); s != nil {
		return s.Badge()
	}
	return teams.GlobalBadge{}
}

func (l *lazyShellState) ShowWindow() {
	if s := l.get(); s != nil {
		s.ShowWindow()
	}
}

func (l *lazyShellState) DisplayTeam(teamID string) {
	if s := l.get(); s != nil {
		s.DisplayTeam(teamID)
	}
}

func (l *lazyShellState) CheckForUpdates() {
	if s := l.get(); s != nil {
		s.CheckForUpdates()
	}
}

func (l *lazyShellState) RequestShutdown() {
	if s := l.get(); s != nil {
		s.RequestShutdown()
	}
	tray.Quit()
}
