package main

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"emberwatch/server/logging"
)

// Config is the full server configuration, loadable from a config file and
// EMBERWATCH_* environment variables.
type Config struct {
	Addr            string        `mapstructure:"addr"`
	TickRate        int           `mapstructure:"tickRate"`
	Seed            int64         `mapstructure:"seed"`
	BroadcastMillis int           `mapstructure:"broadcastMillis"`
	World           WorldConfig   `mapstructure:"world"`
	PlayerSpawn     PointConfig   `mapstructure:"playerSpawn"`
	Agents          []AgentSpawn  `mapstructure:"agents"`
	Logging         LoggingConfig `mapstructure:"logging"`
	Development     bool          `mapstructure:"development"`
}

type WorldConfig struct {
	Width         float64 `mapstructure:"width"`
	Height        float64 `mapstructure:"height"`
	ObstacleCount int     `mapstructure:"obstacleCount"`
}

type PointConfig struct {
	X float64 `mapstructure:"x"`
	Y float64 `mapstructure:"y"`
}

type AgentSpawn struct {
	Archetype string        `mapstructure:"archetype"`
	Home      PointConfig   `mapstructure:"home"`
	Patrol    []PointConfig `mapstructure:"patrol"`
}

type LoggingConfig struct {
	Sinks       []string `mapstructure:"sinks"`
	MinSeverity string   `mapstructure:"minSeverity"`
	BufferSize  int      `mapstructure:"bufferSize"`
}

func defaultConfig() Config {
	return Config{
		Addr:            ":8080",
		TickRate:        15,
		Seed:            1,
		BroadcastMillis: 100,
		World: WorldConfig{
			Width:         100,
			Height:        100,
			ObstacleCount: 12,
		},
		PlayerSpawn: PointConfig{X: 80, Y: 80},
		Agents: []AgentSpawn{
			{Archetype: "sentry", Home: PointConfig{X: 30, Y: 30}},
			{Archetype: "sentry", Home: PointConfig{X: 36, Y: 30}},
			{Archetype: "brute", Home: PointConfig{X: 60, Y: 60}},
			{Archetype: "watcher", Home: PointConfig{X: 20, Y: 70}},
		},
		Logging: LoggingConfig{
			Sinks:       []string{"console"},
			MinSeverity: "info",
			BufferSize:  256,
		},
	}
}

// loadConfig reads configuration from the optional file path, layered over
// the defaults, with environment overrides.
func loadConfig(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("EMBERWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := defaultConfig()
	v.SetDefault("addr", cfg.Addr)
	v.SetDefault("tickRate", cfg.TickRate)
	v.SetDefault("seed", cfg.Seed)
	v.SetDefault("broadcastMillis", cfg.BroadcastMillis)
	v.SetDefault("world.width", cfg.World.Width)
	v.SetDefault("world.height", cfg.World.Height)
	v.SetDefault("world.obstacleCount", cfg.World.ObstacleCount)
	v.SetDefault("playerSpawn.x", cfg.PlayerSpawn.X)
	v.SetDefault("playerSpawn.y", cfg.PlayerSpawn.Y)
	v.SetDefault("logging.sinks", cfg.Logging.Sinks)
	v.SetDefault("logging.minSeverity", cfg.Logging.MinSeverity)
	v.SetDefault("logging.bufferSize", cfg.Logging.BufferSize)
	v.SetDefault("development", cfg.Development)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.TickRate <= 0 || c.TickRate > 120 {
		return fmt.Errorf("tickRate %d out of range (1-120)", c.TickRate)
	}
	if c.World.Width <= 0 || c.World.Height <= 0 {
		return fmt.Errorf("world dimensions %.0fx%.0f must be positive", c.World.Width, c.World.Height)
	}
	if c.World.ObstacleCount < 0 {
		return fmt.Errorf("world.obstacleCount must not be negative")
	}
	if c.BroadcastMillis <= 0 {
		return fmt.Errorf("broadcastMillis must be positive")
	}
	if _, err := c.minSeverity(); err != nil {
		return err
	}
	return nil
}

func (c Config) minSeverity() (logging.Severity, error) {
	switch strings.ToLower(strings.TrimSpace(c.Logging.MinSeverity)) {
	case "debug":
		return logging.SeverityDebug, nil
	case "", "info":
		return logging.SeverityInfo, nil
	case "warn":
		return logging.SeverityWarn, nil
	case "error":
		return logging.SeverityError, nil
	}
	return logging.SeverityInfo, fmt.Errorf("unknown logging.minSeverity %q", c.Logging.MinSeverity)
}
