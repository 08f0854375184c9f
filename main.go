//go:build windows

package main

import (
	"errors"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/alex-vit/lutswitch/internal/config"
	"github.com/alex-vit/lutswitch/internal/display"
	"github.com/alex-vit/lutswitch/internal/injector"
	"github.com/alex-vit/lutswitch/internal/keyhook"
	"github.com/alex-vit/lutswitch/internal/lutstate"
	"github.com/energye/systray"
	"golang.org/x/sys/windows"
)

var logPath string

var shutdown = func() {}

func main() {
	name, _ := windows.UTF16PtrFromString("LutSwitchMutex")
	mutex, err := windows.CreateMutex(nil, false, name)
	if errors.Is(err, windows.ERROR_ALREADY_EXISTS) {
		return
	}
	if mutex != 0 {
		defer windows.CloseHandle(mutex)
	}

	log.SetFlags(0)
	dataDir := filepath.Join(os.Getenv("LocalAppData"), "LutSwitch")
	os.MkdirAll(dataDir, 0o755)
	logPath = filepath.Join(dataDir, "log.txt")
	if f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
		log.SetOutput(newStampWriter(f))
	}
	log.Printf("LutSwitch %s starting", displayVersion())

	systray.Run(onReady, onExit)
}

func onReady() {
	cfgPath, err := config.DefaultPath()
	if err != nil {
		log.Printf("locate config: %v", err)
		cfgPath = config.FileName
	}

	hook := keyhook.New(16)
	if err := hook.Start(); err != nil {
		// Keep running; the tray still applies and removes LUTs.
		log.Printf("keyboard hook unavailable: %v", err)
	}

	model := lutstate.New(cfgPath, display.ActivePaths, injector.Unavailable{})
	ticker := time.NewTicker(time.Second)
	a := newApp(model, hook.KeyDown(), hook.KeyUp(), ticker.C)
	newTray(a, cfgPath)

	stopWatch, err := display.WatchChanges(a.displaysChanged)
	if err != nil {
		log.Printf("display change watcher unavailable: %v", err)
		stopWatch = func() {}
	}

	if err := model.ApplyReInject(); err != nil {
		log.Printf("initial apply: %v", err)
	}
	go a.run()

	shutdown = func() {
		stopWatch()
		if err := hook.Stop(); err != nil {
			log.Printf("keyboard hook: %v", err)
		}
		ticker.Stop()
		a.stop()
	}
}

func onExit() {
	shutdown()
	log.Printf("LutSwitch exiting")
}
