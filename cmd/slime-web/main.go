//go:build js && wasm

// Package main is the browser entry point for the Slime engine. It mounts into
// the element with id "slime" and exposes slimeStop() to the page.
package main

import (
	"fmt"
	"syscall/js"

	"go.uber.org/zap"

	"github.com/Faultbox/slime-engine/internal/assets"
	"github.com/Faultbox/slime-engine/internal/config"
	"github.com/Faultbox/slime-engine/internal/engine"
	"github.com/Faultbox/slime-engine/internal/engine/shaders"
	"github.com/Faultbox/slime-engine/internal/engine/web"
	"github.com/Faultbox/slime-engine/internal/logger"
)

const containerID = "slime"

func main() {
	if err := logger.Init("info", ""); err != nil {
		js.Global().Get("console").Call("error", fmt.Sprintf("logger: %v", err))
		return
	}

	container, err := web.NewContainer(containerID)
	if err != nil {
		logger.Error("mount failed", zap.String("id", containerID), zap.Error(err))
		return
	}

	origin := js.Global().Get("location").Get("origin").String()
	loader := assets.NewManager(assets.HTTPLoader{BaseURL: origin})

	opts := engine.ConfigOptions(config.Default())
	opts.Container = container
	opts.Scheduler = web.NewScheduler()
	opts.Loader = loader
	opts.Profile = shaders.Web

	e, err := engine.New(opts)
	if err != nil {
		logger.Error("engine error", zap.Error(err))
		return
	}

	stop := js.FuncOf(func(js.Value, []js.Value) any {
		e.Close()
		return nil
	})
	js.Global().Set("slimeStop", stop)

	e.Start()
	<-e.Done()

	if err := e.Err(); err != nil {
		logger.Error("engine stopped", zap.Error(err))
	}
	e.Close()
	loader.Close()
	js.Global().Delete("slimeStop")
	stop.Release()
}
