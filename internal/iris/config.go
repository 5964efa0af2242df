package iris

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"iris/pkg/mjpeg"
)

type Config struct {
	Cameras []CameraConfig `yaml:"cameras"`
	Logging LoggingConfig  `yaml:"logging"`
	Stream  StreamConfig   `yaml:"stream"`
}

type CameraConfig struct {
	Name    string            `yaml:"name"`
	URL     string            `yaml:"url"`
	Headers map[string]string `yaml:"headers"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type StreamConfig struct {
	ConnectTimeoutMs    int `yaml:"connect_timeout_ms"`
	FirstFrameTimeoutMs int `yaml:"first_frame_timeout_ms"`
	StallTimeoutMs      int `yaml:"stall_timeout_ms"`
	MaxFrameBytes       int `yaml:"max_frame_bytes"`
	TargetFps           int `yaml:"target_fps"`
}

// LoadConfig loads configuration from yaml file
func LoadConfig() (*Config, error) {
	// 설정 파일 경로 결정 (프로젝트 루트의 configs/default.yaml)
	configPath := filepath.Join("configs", "default.yaml")

	// 파일 존재 확인
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", configPath)
	}

	// 파일 읽기
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// YAML 파싱
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// 기본값 설정 및 검증
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// validate checks if the configuration is valid
func (c *Config) validate() error {
	// 카메라 설정 검증
	if len(c.Cameras) == 0 {
		return fmt.Errorf("no cameras configured")
	}
	seen := make(map[string]struct{})
	for i, cam := range c.Cameras {
		if cam.Name == "" {
			return fmt.Errorf("camera %d has no name", i)
		}
		if cam.URL == "" {
			return fmt.Errorf("camera %q has no url", cam.Name)
		}
		if !strings.HasPrefix(cam.URL, "http://") && !strings.HasPrefix(cam.URL, "https://") {
			return fmt.Errorf("camera %q has invalid url: %s", cam.Name, cam.URL)
		}
		if _, ok := seen[cam.Name]; ok {
			return fmt.Errorf("duplicate camera name: %s", cam.Name)
		}
		seen[cam.Name] = struct{}{}
	}

	// 로그 레벨 검증
	validLevels := []string{"debug", "info", "warn", "error"}
	levelValid := false
	for _, level := range validLevels {
		if strings.ToLower(c.Logging.Level) == level {
			levelValid = true
			break
		}
	}
	if !levelValid {
		return fmt.Errorf("invalid log level: %s (must be one of: %v)", c.Logging.Level, validLevels)
	}

	// 스트림 설정 검증 (0은 기본값 사용)
	if c.Stream.ConnectTimeoutMs < 0 {
		return fmt.Errorf("invalid connect_timeout_ms: %d (must be non-negative)", c.Stream.ConnectTimeoutMs)
	}
	if c.Stream.FirstFrameTimeoutMs < 0 {
		return fmt.Errorf("invalid first_frame_timeout_ms: %d (must be non-negative)", c.Stream.FirstFrameTimeoutMs)
	}
	if c.Stream.StallTimeoutMs < 0 {
		return fmt.Errorf("invalid stall_timeout_ms: %d (must be non-negative)", c.Stream.StallTimeoutMs)
	}
	if c.Stream.MaxFrameBytes < 0 {
		return fmt.Errorf("invalid max_frame_bytes: %d (must be non-negative)", c.Stream.MaxFrameBytes)
	}
	if c.Stream.TargetFps < 0 {
		return fmt.Errorf("invalid target_fps: %d (must be non-negative)", c.Stream.TargetFps)
	}

	return nil
}

// ToStreamConfig converts the yaml stream section into the mjpeg package config
func (c *Config) ToStreamConfig() mjpeg.StreamConfig {
	cfg := mjpeg.DefaultStreamConfig()
	if c.Stream.ConnectTimeoutMs > 0 {
		cfg.ConnectTimeout = time.Duration(c.Stream.ConnectTimeoutMs) * time.Millisecond
	}
	if c.Stream.FirstFrameTimeoutMs > 0 {
		cfg.FirstFrameTimeout = time.Duration(c.Stream.FirstFrameTimeoutMs) * time.Millisecond
	}
	if c.Stream.StallTimeoutMs > 0 {
		cfg.StallTimeout = time.Duration(c.Stream.StallTimeoutMs) * time.Millisecond
	}
	if c.Stream.MaxFrameBytes > 0 {
		cfg.MaxFrameBytes = c.Stream.MaxFrameBytes
	}
	cfg.TargetFPS = c.Stream.TargetFps
	return cfg
}

// GetSlogLevel returns slog.Level from config
func (c *Config) GetSlogLevel() slog.Level {
	switch strings.ToLower(c.Logging.Level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo // 기본값
	}
}
