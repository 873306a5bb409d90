// Package config handles engine configuration loading and management.
package config

// Config holds all engine settings.
type Config struct {
	Graphics  GraphicsConfig  `yaml:"graphics"`
	Sprite    SpriteConfig    `yaml:"sprite"`
	Animation AnimationConfig `yaml:"animation"`
	Assets    AssetsConfig    `yaml:"assets"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width      int        `yaml:"width"`
	Height     int        `yaml:"height"`
	Fullscreen bool       `yaml:"fullscreen"`
	VSync      bool       `yaml:"vsync"`
	ClearColor [4]float32 `yaml:"clear_color"`
}

// SpriteConfig describes the sprite sheet and the size of one animation cell.
type SpriteConfig struct {
	Image       string  `yaml:"image"`
	FrameWidth  float64 `yaml:"frame_width"`
	FrameHeight float64 `yaml:"frame_height"`
}

// AnimationConfig controls how the sprite advances each frame.
type AnimationConfig struct {
	Columns int     `yaml:"columns"` // cells in the walk cycle
	Row     int     `yaml:"row"`     // sheet row used for the cycle
	Rate    float64 `yaml:"rate"`    // cells per millisecond
	Step    float64 `yaml:"step"`    // horizontal units per frame
	Wrap    float64 `yaml:"wrap"`    // horizontal position wraps at this value
}

// AssetsConfig tells the engine where sprite URLs resolve.
type AssetsConfig struct {
	Root    string `yaml:"root"`     // directory for file-backed loading
	BaseURL string `yaml:"base_url"` // when set, images are fetched over HTTP
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      800,
			Height:     600,
			Fullscreen: false,
			VSync:      true,
			ClearColor: [4]float32{0.4, 0.6, 1.0, 1.0},
		},
		Sprite: SpriteConfig{
			Image:       "/sprites/SlimeWalkSheet.png",
			FrameWidth:  32,
			FrameHeight: 32,
		},
		Animation: AnimationConfig{
			Columns: 6,
			Row:     1,
			Rate:    0.006,
			Step:    0.3,
			Wrap:    256,
		},
		Assets: AssetsConfig{
			Root: "assets",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
