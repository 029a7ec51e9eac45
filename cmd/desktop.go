package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"pomodoro/internal/core/model"
	"pomodoro/internal/core/timekeeper"
	"pomodoro/internal/platform"
	"pomodoro/internal/storage"
	"pomodoro/internal/ui/preferences"
	"pomodoro/internal/ui/timerview"
	"pomodoro/internal/ui/tray"
	"pomodoro/resources"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
)

func runDesktop(ctx context.Context, opts *globalOptions) error {
	logger := opts.logger

	guard, err := platform.AcquireSingleInstance(appName)
	if errors.Is(err, platform.ErrAlreadyRunning) {
		if notifyErr := platform.NotifyRunning(appName); notifyErr != nil {
			return fmt.Errorf("%w and could not be reached: %v", err, notifyErr)
		}
		logger.Info("already running, brought the existing window forward")
		return nil
	}
	if err != nil {
		return err
	}
	defer func() {
		_ = guard.Release()
	}()

	settingsFile := opts.settingsFile()
	settings, err := settingsFile.Load()
	if err != nil {
		logger.Warn("load settings failed, using defaults", "path", settingsFile.Path(), "error", err)
	}

	keeper, err := timekeeper.New(settings.TimerConfig(), timekeeper.Options{Logger: logger})
	if err != nil {
		return err
	}
	defer keeper.Stop()
	keeper.SetIdleChecker(platform.NewIdleProvider())
	keeper.SetIdlePause(settings.IdlePause())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	history, err := storage.OpenHistory(opts.historyPath())
	if err != nil {
		logger.Error("open history failed, phases will not be recorded", "error", err)
	} else {
		defer history.Close()
	}

	fyneApp := app.NewWithID(appID)
	fyneApp.SetIcon(resources.MustIcon(resources.IconApp))
	desktopApp, hasTray := fyneApp.(desktop.App)

	var (
		view  *timerview.Window
		prefs *preferences.Window
	)

	closeWindow := fyneApp.Quit
	if hasTray {
		closeWindow = func() { view.Hide() }
	}
	view = timerview.New(fyneApp, appTitle, timerview.Callbacks{
		OnStart:    keeper.Start,
		OnPause:    keeper.Pause,
		OnReset:    keeper.Reset,
		OnSkip:     keeper.SkipBreak,
		OnSettings: func() { prefs.Show() },
		OnClose:    closeWindow,
	})

	prefs = preferences.New(fyneApp, settings, func(updated model.Settings) error {
		if err := saveAndApply(settingsFile, keeper, updated); err != nil {
			logger.Error("save settings failed", "path", settingsFile.Path(), "error", err)
			return err
		}
		logger.Info("settings saved", "path", settingsFile.Path())
		return nil
	})

	if !hasTray {
		logger.Warn("system tray unsupported on this platform")
	}
	trayManager := tray.New(desktopApp, appTitle, tray.Icons{
		Running: resources.MustIcon(resources.IconRunning),
		Paused:  resources.MustIcon(resources.IconPaused),
		Break:   resources.MustIcon(resources.IconBreak),
	}, tray.Callbacks{
		OnShow: view.Show,
		OnToggle: func() {
			if keeper.Snapshot().Running {
				keeper.Pause()
				return
			}
			keeper.Start()
		},
		OnReset:       keeper.Reset,
		OnSkipBreak:   keeper.SkipBreak,
		OnPreferences: func() { prefs.Show() },
		OnQuit:        fyneApp.Quit,
	})

	refreshSummary := func() {
		if history == nil {
			return
		}
		go func() {
			queryCtx, queryCancel := context.WithTimeout(ctx, 2*time.Second)
			defer queryCancel()
			summary, err := history.Summarize(queryCtx, storage.StartOfDay(time.Now()))
			if err != nil {
				logger.Warn("load summary failed", "error", err)
				return
			}
			view.SetSummary(summary)
		}()
	}

	var recorder sync.WaitGroup
	if history != nil {
		journal := keeper.Subscribe(64)
		recorder.Add(1)
		go func() {
			defer recorder.Done()
			storage.RecordHistory(ctx, journal, history, logger)
		}()
	}

	events := keeper.Subscribe(32)
	go func() {
		for event := range events {
			snapshot := event.Snapshot
			view.Render(snapshot)
			fyne.Do(func() { trayManager.Render(snapshot) })

			switch event.Type {
			case timekeeper.EventPhaseAdvance:
				refreshSummary()
			case timekeeper.EventIdlePause:
				logger.Info("focus paused while away", "detail", event.Message)
			case timekeeper.EventIdleError:
				logger.Warn("idle detection unavailable", "error", event.Message)
			}
		}
	}()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-guard.Activations():
				logger.Debug("activation requested by another launch")
				fyne.Do(view.Show)
			}
		}
	}()

	fyneApp.Lifecycle().SetOnStarted(func() {
		snapshot := keeper.Snapshot()
		view.Render(snapshot)
		trayManager.Render(snapshot)
		refreshSummary()
	})

	logger.Info("desktop app starting", "config_dir", opts.configDir)
	view.Show()
	fyneApp.Run()

	// Closing the subscriptions lets the recorder flush what is queued.
	keeper.Stop()
	recorder.Wait()
	logger.Info("desktop app stopped")
	return nil
}

type settingsSaver interface {
	Save(settings model.Settings) error
}

// saveAndApply persists updated before handing it to the keeper, so a
// failed save leaves the running timer on the settings still on disk.
func saveAndApply(store settingsSaver, keeper *timekeeper.TimeKeeper, updated model.Settings) error {
	if err := updated.Validate(); err != nil {
		return err
	}
	if err := store.Save(updated); err != nil {
		return err
	}
	if err := keeper.UpdateConfig(updated.TimerConfig()); err != nil {
		return err
	}
	keeper.SetIdlePause(updated.IdlePause())
	return nil
}
