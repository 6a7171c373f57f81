// Package config provides the structures and loading function for the
// application configuration.
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the top-level application configuration.
type Config struct {
	Env                     string `yaml:"env" env-default:"development"`
	AppURL                  string `yaml:"app_url"`
	APIURL                  string `yaml:"api_url"`
	StorageConnectionString string `yaml:"storage_connection_string"`
	MigrationsPath          string `yaml:"migrations_path" env-default:"./migrations"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	Khipu                   `yaml:"khipu"`
	Membership              `yaml:"membership"`
}

// HTTPServer holds the HTTP listener settings.
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

// RedisConnection holds the redis client settings.
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis"`
	Password     string        `yaml:"password"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
}

// JWTToken holds the token signing settings.
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"720h"`
}

// Khipu holds the payment provider credentials and the webhook secret.
type Khipu struct {
	ReceiverID    string `yaml:"receiver_id" env:"KHIPU_RECEIVER_ID"`
	Secret        string `yaml:"secret" env:"KHIPU_SECRET"`
	BaseURL       string `yaml:"base_url" env-default:"https://khipu.com/api/3.0"`
	WebhookSecret string `yaml:"webhook_secret" env:"KHIPU_WEBHOOK_SECRET"`
}

// Membership holds the platform membership billing settings.
type Membership struct {
	Days      int `yaml:"days" env-default:"30"`
	AmountCLP int `yaml:"amount_clp" env-default:"5000"`
}

// MustLoad reads the configuration from the file pointed to by CONFIG_PATH.
// It terminates the process when the file is missing or malformed.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"AppURL: %s\n"+
			"APIURL: %s\n"+
			"StorageConnectionString: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"Khipu:\n"+
			"  ReceiverID: %s\n"+
			"  BaseURL: %s\n"+
			"Membership:\n"+
			"  Days: %d\n"+
			"  AmountCLP: %d\n",
		c.Env,
		c.AppURL,
		c.APIURL,
		c.StorageConnectionString,
		c.AddressRedis,
		c.DB,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.ReceiverID,
		c.BaseURL,
		c.Days,
		c.AmountCLP,
	)
}
