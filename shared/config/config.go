package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	Port                string        `yaml:"port" validate:"required"`
	JwtTTL              time.Duration `yaml:"jwt_ttl" validate:"required"`
	SecureCookies       bool          `yaml:"secure_cookies"`
	AdminEmails         []string      `yaml:"admin_emails" validate:"required,min=1,dive,email"` // lowercased on load
	CorsOrigins         []string      `yaml:"cors_origins"`
	PasswordResetTTL    time.Duration `yaml:"password_reset_ttl" validate:"required"`
	ConfirmationCodeLen int           `yaml:"confirmation_code_len" validate:"required,min=4,max=36"`
	Fallback            Fallback      `yaml:"fallback"`
	Display             Display       `yaml:"display"`
	Revocation          Revocation    `yaml:"revocation"`
	Log                 Log           `yaml:"log"`
}

type Fallback struct {
	Dir  string `yaml:"dir" validate:"required"`
	Slot string `yaml:"slot"` // file name without extension, "userSubmissions" if empty
}

type Display struct {
	Timezone string `yaml:"timezone"` // IANA name, "Local" if empty
}

type Revocation struct {
	Backend       string        `yaml:"backend" validate:"omitempty,oneof=memory redis"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

type Log struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

type Pg struct {
	Host     string `yaml:"host" validate:"required"`
	Port     int    `yaml:"port" validate:"required"`
	User     string `yaml:"user" validate:"required"`
	Password string `yaml:"password"`
	Dbname   string `yaml:"dbname" validate:"required"`
}

type Email struct {
	SMTPServer string `yaml:"smtp_server"`
	SMTPPort   int    `yaml:"smtp_port"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	SenderName string `yaml:"sender_name"`
	Timeout    int    `yaml:"timeout"` // seconds
}

type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type Private struct {
	JwtKey string `yaml:"jwt_key" validate:"required"`
	Pg     Pg     `yaml:"pg"`
	Email  Email  `yaml:"email"`
	Redis  Redis  `yaml:"redis"`
}

func (s *Config) JwtKey() string {
	return s.Private.JwtKey
}

func (s *Config) JwtTTL() time.Duration {
	return s.Public.JwtTTL
}

// Location is the timezone used for human readable submission dates.
func (s *Public) Location() *time.Location {
	if s.Display.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(s.Display.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// FallbackSlot is the name of the local fallback slot.
func (s *Public) FallbackSlot() string {
	if s.Fallback.Slot == "" {
		return "userSubmissions"
	}
	return s.Fallback.Slot
}

func (s *Public) RevocationBackend() string {
	if s.Revocation.Backend == "" {
		return "memory"
	}
	return s.Revocation.Backend
}

func mustLoadPath(configPath string, output interface{}) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file")
	}

	err = yaml.Unmarshal(configFile, output)
	if err != nil {
		panic("can't unmarshal config file: " + err.Error())
	}
}

// applyEnv lets deployment secrets live in the environment (or a .env file)
// instead of private.yaml.
func applyEnv(cfg *Config) {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				panic(fmt.Sprintf("env %s must be an integer", key))
			}
			*dst = n
		}
	}

	setString("PORT", &cfg.Public.Port)
	setString("JWT_KEY", &cfg.Private.JwtKey)
	setString("PG_HOST", &cfg.Private.Pg.Host)
	setInt("PG_PORT", &cfg.Private.Pg.Port)
	setString("PG_USER", &cfg.Private.Pg.User)
	setString("PG_PASSWORD", &cfg.Private.Pg.Password)
	setString("PG_DBNAME", &cfg.Private.Pg.Dbname)
	setString("SMTP_PASSWORD", &cfg.Private.Email.Password)
	setString("REDIS_ADDR", &cfg.Private.Redis.Addr)
	setString("REDIS_PASSWORD", &cfg.Private.Redis.Password)
}

func normalize(cfg *Config) {
	for i, e := range cfg.Public.AdminEmails {
		cfg.Public.AdminEmails[i] = strings.ToLower(strings.TrimSpace(e))
	}
}

func mustValidate(cfg *Config) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		panic("invalid config: " + err.Error())
	}
	if cfg.Public.Display.Timezone != "" {
		if _, err := time.LoadLocation(cfg.Public.Display.Timezone); err != nil {
			panic("invalid display timezone: " + err.Error())
		}
	}
	if cfg.Public.RevocationBackend() == "redis" && cfg.Private.Redis.Addr == "" {
		panic("redis revocation backend requires redis.addr")
	}
}

func MustLoad(configFolder string) *Config {
	if err := godotenv.Load(path.Join(configFolder, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic("can't load .env file: " + err.Error())
	}

	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	cfg := &Config{public, private}
	applyEnv(cfg)
	normalize(cfg)
	mustValidate(cfg)
	return cfg
}
