package config

import (
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
}

type OpsHTTP struct {
	Host string
	Port int
}

type App struct {
	Name string
	Env  string
	HTTP HTTP
	Ops  OpsHTTP
}

type Log struct {
	Level string
	JSON  bool
}

// Token holds the per-kind signing configuration. The two secrets must
// differ in deployment; kinds are additionally kept disjoint by a purpose
// claim.
type Token struct {
	Issuer        string
	Type          string // token type label returned on sign-in, e.g. "Bearer"
	AccessSecret  string
	AccessTTLMin  int
	RefreshSecret string
	RefreshTTLDay int
}

// Store selects the persistence backend: mysql | postgres | sqlite | memory.
type Store struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

// Redis backs the read cache and the invalidation broadcast. Empty Addr
// disables both and falls back to the in-process bus.
type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type Hash struct {
	Cost int // bcrypt work factor; 0 means library default
}

type Config struct {
	App   App
	Log   Log
	Token Token
	Store Store
	Redis Redis `mapstructure:"redis"`
	Hash  Hash
}

func Load(path string) *Config {
	v := viper.New()
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		log.Fatalf("read config: %v", err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		log.Fatalf("unmarshal config: %v", err)
	}
	return &c
}
