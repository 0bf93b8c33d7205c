package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

const (
	// DefaultFocusMinutes 是未配置时的默认专注时长。
	DefaultFocusMinutes = 25
	// DefaultHeatmapWeeks 是未配置时热力图展示的周数。
	DefaultHeatmapWeeks = 52
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr          string
	Port                string
	DatabasePath        string
	SessionSecret       string
	GinMode             string
	LogLevel            slog.Level
	DefaultFocusMinutes int
	HeatmapWeeks        int
	SuperRootUserName   string
	SuperRootPassword   string
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
func Load() AppConfig {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	listenAddr := strings.TrimSpace(os.Getenv("LISTEN_ADDR"))
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	databasePath := strings.TrimSpace(os.Getenv("DATABASE_PATH"))
	if databasePath == "" {
		databasePath = "horizon.db"
	}

	sessionSecret := strings.TrimSpace(os.Getenv("SESSION_SECRET"))
	if sessionSecret == "" {
		sessionSecret = "horizon-dev-secret"
	}

	ginMode := strings.TrimSpace(os.Getenv("GIN_MODE"))
	if ginMode == "" {
		ginMode = "release"
	}

	return AppConfig{
		ListenAddr:          listenAddr,
		Port:                port,
		DatabasePath:        databasePath,
		SessionSecret:       sessionSecret,
		GinMode:             ginMode,
		LogLevel:            parseLogLevel(os.Getenv("HORIZON_LOG_LEVEL")),
		DefaultFocusMinutes: positiveInt(os.Getenv("HORIZON_DEFAULT_FOCUS_MINUTES"), DefaultFocusMinutes),
		HeatmapWeeks:        positiveInt(os.Getenv("HORIZON_HEATMAP_WEEKS"), DefaultHeatmapWeeks),
		SuperRootUserName:   strings.TrimSpace(os.Getenv("SUPER_ROOT_USER_NAME")),
		SuperRootPassword:   strings.TrimSpace(os.Getenv("SUPER_ROOT_PASSWORD")),
	}
}

func positiveInt(raw string, fallback int) int {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func parseLogLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
