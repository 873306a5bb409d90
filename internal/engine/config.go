package engine

import (
	"github.com/Faultbox/slime-engine/internal/config"
	"github.com/Faultbox/slime-engine/internal/engine/sprite"
)

// ConfigOptions maps the loaded configuration onto engine options. The host
// still has to supply Container, Scheduler and Loader.
func ConfigOptions(cfg *config.Config) Options {
	return Options{
		Sprite: sprite.Options{
			ImageURL: cfg.Sprite.Image,
			Width:    cfg.Sprite.FrameWidth,
			Height:   cfg.Sprite.FrameHeight,
		},
		Animation: Animation{
			Columns: float64(cfg.Animation.Columns),
			Row:     float64(cfg.Animation.Row),
			Rate:    cfg.Animation.Rate,
			Step:    cfg.Animation.Step,
			Wrap:    cfg.Animation.Wrap,
		},
		ClearColor: cfg.Graphics.ClearColor,
	}
}
