package internal

import (
	"encoding/json"
	"io"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort    uint16 `json:"server-port"`
	DBName        string `json:"db-name"`
	LogDirectory  string `json:"log-directory"`
	EnableLogging bool   `json:"enable-logging"`
	ReadTimeout   int64  `json:"read-timeout"`
	WriteTimeout  int64  `json:"write-timeout"`
	SecretKey     string `json:"secret-key"`
}

func defaultConfig() *Config {
	return &Config{
		ServerPort:    4000,
		DBName:        "hivechat.db",
		LogDirectory:  "logs",
		EnableLogging: true,
		SecretKey:     "dev-only-secret",
	}
}

// LoadConfig reads the JSON .cfg file in the given folder, then lets the
// environment (optionally seeded from a .env file) override individual
// fields. A missing .cfg file just means defaults plus environment.
func LoadConfig(folderPath string) (*Config, error) {
	config := defaultConfig()

	file, err := os.OpenFile(folderPath+"/.cfg", os.O_RDONLY, 0755)
	if err == nil {
		payload, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			return nil, err
		}
		if err = json.Unmarshal(payload, config); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	godotenv.Load()

	if v := os.Getenv("HIVECHAT_PORT"); v != "" {
		if port, err := strconv.ParseUint(v, 10, 16); err == nil {
			config.ServerPort = uint16(port)
		}
	}
	if v := os.Getenv("HIVECHAT_DB"); v != "" {
		config.DBName = v
	}
	if v := os.Getenv("HIVECHAT_LOG_DIR"); v != "" {
		config.LogDirectory = v
	}
	if v := os.Getenv("HIVECHAT_SECRET_KEY"); v != "" {
		config.SecretKey = v
	}

	return config, nil
}
