package configuration

import (
	"encoding/json"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type MongoConfig struct {
	Uri                string `json:"uri"`
	Database           string `json:"database"`
	UsersCollection    string `json:"usersCollection"`
	MessagesCollection string `json:"messagesCollection"`
}

type ServerConfig struct {
	AppPort        int      `json:"app_port"`
	Environment    string   `json:"environment"`
	AllowedOrigins []string `json:"allowed_origins"`
	AppBaseURL     string   `json:"app_base_url"`
}

type AuthConfig struct {
	JwtSecret     string `json:"jwt_secret"`
	TokenTTLHours int    `json:"token_ttl_hours"`
}

type MediaConfig struct {
	Dir     string `json:"dir"`
	BaseURL string `json:"base_url"`
}

type SMTPConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	From     string `json:"from"`
}

type RateLimitConfig struct {
	PerMinute int `json:"per_minute"`
	Burst     int `json:"burst"`
}

type Config struct {
	ChatDatabase MongoConfig     `json:"mongo"`
	Server       ServerConfig    `json:"server"`
	Auth         AuthConfig      `json:"auth"`
	Media        MediaConfig     `json:"media"`
	SMTP         SMTPConfig      `json:"smtp"`
	RateLimit    RateLimitConfig `json:"rate_limit"`
}

// LoadConfig reads the JSON config file and applies environment overrides.
// Secrets (Mongo URI, JWT secret, SMTP password) are usually supplied via the
// environment or a .env file rather than the config file.
func LoadConfig(configPath string) (*Config, error) {
	_ = godotenv.Load()

	file, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(file, &config); err != nil {
		return nil, err
	}

	applyEnvOverrides(&config)
	applyDefaults(&config)
	return &config, nil
}

func applyEnvOverrides(c *Config) {
	if v := os.Getenv("MONGODB_URI"); v != "" {
		c.ChatDatabase.Uri = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Auth.JwtSecret = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		c.SMTP.Password = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Server.AppPort = n
		}
	}
}

func applyDefaults(c *Config) {
	if c.Server.AppPort == 0 {
		c.Server.AppPort = 5001
	}
	if c.Server.Environment == "" {
		c.Server.Environment = "development"
	}
	if c.Auth.TokenTTLHours == 0 {
		c.Auth.TokenTTLHours = 24 * 7
	}
	if c.Media.Dir == "" {
		c.Media.Dir = "uploads"
	}
	if c.Media.BaseURL == "" {
		c.Media.BaseURL = "/uploads"
	}
	if c.RateLimit.PerMinute == 0 {
		c.RateLimit.PerMinute = 10
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 3
	}
	if c.ChatDatabase.UsersCollection == "" {
		c.ChatDatabase.UsersCollection = "users"
	}
	if c.ChatDatabase.MessagesCollection == "" {
		c.ChatDatabase.MessagesCollection = "messages"
	}
}
