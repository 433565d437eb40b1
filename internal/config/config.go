package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates every setting the service reads from the environment.
type Config struct {
	Server  ServerConfig
	Auth    AuthConfig
	Storage StorageConfig
	Chat    ChatConfig
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

// AuthConfig describes token issuance.
type AuthConfig struct {
	Secret   string
	TokenTTL time.Duration
}

// StorageConfig describes where durable data and uploads live.
type StorageConfig struct {
	DataDir        string
	UploadDir      string
	MaxUploadBytes int64
}

// ChatConfig carries messaging policy knobs.
type ChatConfig struct {
	// DedupWindow is the tolerance used when collapsing the live-channel
	// copy of a message with its durable-write twin. It is a heuristic, not
	// a guarantee: identical texts sent within the window merge falsely,
	// and clock skew beyond it leaves real duplicates apart.
	DedupWindow time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	auth, err := loadAuthConfig()
	if err != nil {
		return nil, err
	}

	storage, err := loadStorageConfig()
	if err != nil {
		return nil, err
	}

	chatCfg, err := loadChatConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, Auth: auth, Storage: storage, Chat: chatCfg}, nil
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Allow passing ":8080" or "127.0.0.1:8080" directly.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

func loadAuthConfig() (AuthConfig, error) {
	ttlHours := 168
	if override, err := parseOptionalIntEnv("TOKEN_TTL_HOURS"); err != nil {
		return AuthConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return AuthConfig{}, fmt.Errorf("TOKEN_TTL_HOURS must be positive, got %d", *override)
		}
		ttlHours = *override
	}

	return AuthConfig{
		Secret:   getEnvOrDefault("JWT_SECRET", "college-buddy-secret"),
		TokenTTL: time.Duration(ttlHours) * time.Hour,
	}, nil
}

func loadStorageConfig() (StorageConfig, error) {
	maxUploadMB := 10
	if override, err := parseOptionalIntEnv("MAX_UPLOAD_MB"); err != nil {
		return StorageConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return StorageConfig{}, fmt.Errorf("MAX_UPLOAD_MB must be positive, got %d", *override)
		}
		maxUploadMB = *override
	}

	return StorageConfig{
		DataDir:        getEnvOrDefault("DATA_DIR", "data"),
		UploadDir:      getEnvOrDefault("UPLOAD_DIR", "uploads"),
		MaxUploadBytes: int64(maxUploadMB) * 1024 * 1024,
	}, nil
}

func loadChatConfig() (ChatConfig, error) {
	windowMs := 1000
	if override, err := parseOptionalIntEnv("DEDUP_WINDOW_MS"); err != nil {
		return ChatConfig{}, err
	} else if override != nil {
		if *override < 0 {
			return ChatConfig{}, fmt.Errorf("DEDUP_WINDOW_MS must not be negative, got %d", *override)
		}
		windowMs = *override
	}

	return ChatConfig{DedupWindow: time.Duration(windowMs) * time.Millisecond}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
