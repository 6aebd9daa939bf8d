package config

import (
	"os"
	"path"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	JwtTTL                    time.Duration `yaml:"jwt_ttl"`
	OtpTTL                    time.Duration `yaml:"otp_ttl"`
	RevocationRefreshInterval time.Duration `yaml:"revocation_refresh_interval"`
	QuestionsPerPage          int           `yaml:"questions_per_page"`
	SecureCookies             bool          `yaml:"secure_cookies"`
	AllowedOrigins            []string      `yaml:"allowed_origins"`
	LogLevel                  string        `yaml:"log_level"`
	LogJSON                   bool          `yaml:"log_json"`
}

type Pg struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Dbname   string `yaml:"dbname"`
}

type Email struct {
	SMTPServer string `yaml:"smtp_server"`
	SMTPPort   int    `yaml:"smtp_port"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	SenderName string `yaml:"sender_name"`
	Timeout    int    `yaml:"timeout"` // seconds
}

type Private struct {
	JwtKey string `yaml:"jwt_key"`
	Pg     Pg     `yaml:"pg"`
	Email  Email  `yaml:"email"`
}

func (c *Config) JwtKey() string {
	return c.Private.JwtKey
}

func (c *Config) JwtTTL() time.Duration {
	return c.Public.JwtTTL
}

func (c *Config) OtpTTL() time.Duration {
	return c.Public.OtpTTL
}

func mustLoadPath(configPath string, output interface{}) {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)

	if err != nil {
		panic("can't read config file")
	}

	err = yaml.Unmarshal(configFile, output)
	if err != nil {
		panic("can't unmarshal config file")
	}
}

func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)
	public.applyDefaults()

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)
	if private.JwtKey == "" {
		panic("jwt_key must be set in private.yaml")
	}

	return &Config{public, private}
}

// Durations are nanosecond integers in yaml, same convention as the
// config files checked into config/.
func (p *Public) applyDefaults() {
	if p.JwtTTL == 0 {
		p.JwtTTL = 60 * time.Minute
	}
	if p.OtpTTL == 0 {
		p.OtpTTL = 10 * time.Minute
	}
	if p.RevocationRefreshInterval == 0 {
		p.RevocationRefreshInterval = time.Minute
	}
	if p.QuestionsPerPage == 0 {
		p.QuestionsPerPage = 20
	}
	if p.LogLevel == "" {
		p.LogLevel = "info"
	}
}
