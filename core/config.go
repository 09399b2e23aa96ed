// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"errors"
	"io"
	"strconv"

	"github.com/gobuffalo/envy"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Environment variables read by ApplyEnvironment.
const (
	EnvAssetDir       = "GLBOX_ASSET_DIR"
	EnvDefaultShader  = "GLBOX_DEFAULT_SHADER"
	EnvBatchThreshold = "GLBOX_BATCH_THRESHOLD"
	EnvLogLevel       = "GLBOX_LOG_LEVEL"
)

// Configuration defines a global engine configuration setting
type Configuration struct {
	Time     TimeConfiguration     `yaml:"time"`
	Renderer RendererConfiguration `yaml:"renderer"`
	Assets   AssetConfiguration    `yaml:"assets"`
	LogLevel string                `yaml:"logLevel"`
}

// TimeConfiguration is used to configure time services
type TimeConfiguration struct {
	// FramesPerSecond caps frames per second that is put out
	// To unlimit, set to 0
	FramesPerSecond int `yaml:"framesPerSecond"`

	// EventPollDelay is the interval of the event loop in milliseconds.
	EventPollDelay int `yaml:"eventPollDelay"`
}

// RendererConfiguration is used to configure the renderer
type RendererConfiguration struct {
	ScreenWidth  int `yaml:"screenWidth"`
	ScreenHeight int `yaml:"screenHeight"`

	// DefaultShader is the asset path of the shader new materials get.
	DefaultShader string `yaml:"defaultShader"`

	// BatchThreshold is the batch size above which batches
	// are drawn instanced.
	BatchThreshold int `yaml:"batchThreshold"`

	// MaxEntities is the fixed size of the entity slot array.
	MaxEntities int `yaml:"maxEntities"`

	ClearColor [4]float32 `yaml:"clearColor,flow"`
}

// AssetConfiguration tells where assets are searched.
type AssetConfiguration struct {
	// Directory holds loose asset files, searched first.
	Directory string `yaml:"directory"`

	// Archives are kar files searched in order after Directory.
	Archives []string `yaml:"archives"`
}

// DefaultConfiguration returns the settings used when nothing is configured.
func DefaultConfiguration() Configuration {
	return Configuration{
		Time: TimeConfiguration{
			FramesPerSecond: 60,
			EventPollDelay:  8,
		},
		Renderer: RendererConfiguration{
			ScreenWidth:    1280,
			ScreenHeight:   720,
			DefaultShader:  "shaders/default.glsl",
			BatchThreshold: 10,
			MaxEntities:    16384,
			ClearColor:     [4]float32{0, 0, 0.1, 1},
		},
		LogLevel: "info",
	}
}

// ReadConfiguration reads YAML on top of DefaultConfiguration,
// keys that are not present keep their defaults.
func ReadConfiguration(r io.Reader) (Configuration, error) {
	cfg := DefaultConfiguration()
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil && err != io.EOF {
		return cfg, errors.New("yaml.Decode(): " + err.Error())
	}
	return cfg, nil
}

// ApplyEnvironment overrides settings from GLBOX_* environment variables.
func (c *Configuration) ApplyEnvironment() {
	c.Assets.Directory = envy.Get(EnvAssetDir, c.Assets.Directory)
	c.Renderer.DefaultShader = envy.Get(EnvDefaultShader, c.Renderer.DefaultShader)
	c.LogLevel = envy.Get(EnvLogLevel, c.LogLevel)

	if s := envy.Get(EnvBatchThreshold, ""); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			log.WithField("value", s).Warn(EnvBatchThreshold + " is not a valid batch size")
		} else {
			c.Renderer.BatchThreshold = n
		}
	}
}

// ApplyLogLevel sets the logrus level, falling back to info.
func (c *Configuration) ApplyLogLevel() {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		log.WithField("level", c.LogLevel).Warn("unknown log level, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)
}
