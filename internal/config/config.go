package config

import (
	"encoding/json"
	"errors"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	DefaultLinkPlayTimeout = "10s"
	DefaultUnlockLength    = 512
	DefaultAppPort         = 8080
	DefaultLogPath         = "logs"
	DefaultNameCacheSize   = 1024
	DefaultNameCacheTTL    = "10m"
)

type LinkPlayConfig struct {
	Host           string `json:"host"`
	TCPPort        int    `json:"tcp_port"`
	Authentication string `json:"authentication"`
	Timeout        string `json:"timeout"`
	UnlockLength   int    `json:"unlock_length"`
}

type DatabaseConfig struct {
	Driver             string `json:"driver"`
	DSN                string `json:"dsn"`
	Host               string `json:"host"`
	Port               uint64 `json:"port"`
	Username           string `json:"username"`
	Password           string `json:"password"`
	Database           string `json:"database"`
	UseTLS             bool   `json:"use_tls"`
	ConnectTimeout     string `json:"connect_timeout"`
	SocketTimeout      string `json:"socket_timeout"`
	ConnectIdleTimeout string `json:"connect_idle_timeout"`
	OperationTimeout   string `json:"operation_timeout"`
	Heartbeat          string `json:"heartbeat"`
	MinPoolSize        uint64 `json:"min_pool_size"`
	MaxPoolSize        uint64 `json:"max_pool_size"`
	NameCacheSize      int    `json:"name_cache_size"`
	NameCacheTTL       string `json:"name_cache_ttl"`
}

type Config struct {
	LinkPlay  LinkPlayConfig `json:"link_play"`
	Database  DatabaseConfig `json:"database"`
	DebugMode bool           `json:"debug_mode"`
	AppName   string         `json:"app_name"`
	AppPort   int            `json:"app_port"`
	LogPath   string         `json:"log_path"`
}

var config Config
var initialized = false

// ConfigPath is the file ReadConfig loads. EnvPath is optional.
var (
	ConfigPath = "config.json"
	EnvPath    = ".env"
)

func ReadConfig() (Config, error) {
	bytes, err := os.ReadFile(ConfigPath)

	if err != nil {
		writer, _ := os.OpenFile(ConfigPath, os.O_WRONLY|os.O_CREATE, 0644)
		data, _ := json.MarshalIndent(config, "", "\t")
		_, _ = writer.Write(data)
		_ = writer.Close()
		return config, errors.New("the configuration file does not exist and has been created. Please try again after editing the configuration file")
	}

	var loaded Config
	if err = json.Unmarshal(bytes, &loaded); err != nil {
		return config, errors.New("the configuration file does not contain valid JSON")
	}

	applyEnv(&loaded)
	applyDefaults(&loaded)

	config = loaded
	initialized = true
	return config, nil
}

func GetConfig() (Config, error) {
	if initialized {
		return config, nil
	}
	return ReadConfig()
}

func applyEnv(c *Config) {
	// a missing .env is fine, variables may come from the process environment
	env, err := godotenv.Read(EnvPath)
	if err != nil {
		env = map[string]string{}
	}
	lookup := func(key string) (string, bool) {
		if value, ok := os.LookupEnv(key); ok {
			return value, true
		}
		value, ok := env[key]
		return value, ok
	}

	if v, ok := lookup("LINKPLAY_HOST"); ok {
		c.LinkPlay.Host = v
	}
	if v, ok := lookup("LINKPLAY_TCP_PORT"); ok {
		if port, err := parsePort(v); err == nil {
			c.LinkPlay.TCPPort = port
		}
	}
	if v, ok := lookup("LINKPLAY_AUTHENTICATION"); ok {
		c.LinkPlay.Authentication = v
	}
	if v, ok := lookup("LINKPLAY_TIMEOUT"); ok {
		c.LinkPlay.Timeout = v
	}
	if v, ok := lookup("DATABASE_DSN"); ok {
		c.Database.DSN = v
	}
}

func applyDefaults(c *Config) {
	if c.LinkPlay.Timeout == "" {
		c.LinkPlay.Timeout = DefaultLinkPlayTimeout
	}
	if c.LinkPlay.UnlockLength <= 0 {
		c.LinkPlay.UnlockLength = DefaultUnlockLength
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "mongo"
	}
	if c.Database.NameCacheSize <= 0 {
		c.Database.NameCacheSize = DefaultNameCacheSize
	}
	if c.Database.NameCacheTTL == "" {
		c.Database.NameCacheTTL = DefaultNameCacheTTL
	}
	if c.AppPort == 0 {
		c.AppPort = DefaultAppPort
	}
	if c.LogPath == "" {
		c.LogPath = DefaultLogPath
	}
}

func parsePort(value string) (int, error) {
	port, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	if port <= 0 || port > 65535 {
		return 0, errors.New("port out of range")
	}
	return port, nil
}

// reset is used by tests to force the next GetConfig to read from disk.
func reset() {
	config = Config{}
	initialized = false
}
