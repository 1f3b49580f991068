package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	DB       DBConfig
	Server   ServerConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Practice PracticeConfig
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type DBConfig struct {
	// Driver is "oracle" (go-ora, pure Go) or "godror" (OCI).
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type LoggerConfig struct {
	Env   string
	Level string
}

type AuthConfig struct {
	// JWTSecret verifies identity tokens. Empty disables attribution and every caller is anonymous.
	JWTSecret string
}

type PracticeConfig struct {
	MasteryMinAttempts  int
	MasteryMinAccuracy  int
	PoolCacheTTL        time.Duration
	WritePolicy         string
	AttemptWriteTimeout time.Duration
	MaxInflightWrites   int
	SessionIdleTimeout  time.Duration
	TickInterval        time.Duration
	// RNGSeed fixes the shuffle seed of every session. Zero seeds from the clock.
	RNGSeed int64
}

func setDefaults() {
	viper.SetDefault("db.driver", "oracle")
	viper.SetDefault("server.port", 8090)
	viper.SetDefault("server.read_timeout", 20)
	viper.SetDefault("server.write_timeout", 20)
	viper.SetDefault("logger.env", "development")
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("practice.mastery_min_attempts", 10)
	viper.SetDefault("practice.mastery_min_accuracy", 80)
	viper.SetDefault("practice.pool_cache_ttl", "10m")
	viper.SetDefault("practice.write_policy", "eventual")
	viper.SetDefault("practice.attempt_write_timeout", "5s")
	viper.SetDefault("practice.max_inflight_writes", 64)
	viper.SetDefault("practice.session_idle_timeout", "30m")
	viper.SetDefault("practice.tick_interval", "1s")
	viper.SetDefault("practice.rng_seed", 0)
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	if os.Getenv("ENV") == "test" {
		viper.AddConfigPath("../../config")
		viper.AddConfigPath("../../")
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}

	setDefaults()
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	configFile := viper.ConfigFileUsed()
	if configFile != "" {
		absPath, _ := filepath.Abs(configFile)
		fmt.Printf("Using config file: %s\n", absPath)
	}

	config := fromViper()
	applyEnvOverrides(config)
	return config, nil
}

func fromViper() *Config {
	return &Config{
		DB: DBConfig{
			Driver:   viper.GetString("db.driver"),
			Host:     viper.GetString("db.host"),
			Port:     viper.GetInt("db.port"),
			User:     viper.GetString("db.user"),
			Password: viper.GetString("db.password"),
			DBName:   viper.GetString("db.name"),
		},
		Server: ServerConfig{
			Port:         viper.GetInt("server.port"),
			ReadTimeout:  viper.GetDuration("server.read_timeout") * time.Second,
			WriteTimeout: viper.GetDuration("server.write_timeout") * time.Second,
		},
		Redis: RedisConfig{
			Address:  viper.GetString("redis.address"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		Logger: LoggerConfig{
			Env:   viper.GetString("logger.env"),
			Level: viper.GetString("logger.level"),
		},
		Auth: AuthConfig{
			JWTSecret: viper.GetString("auth.jwt_secret"),
		},
		Practice: PracticeConfig{
			MasteryMinAttempts:  viper.GetInt("practice.mastery_min_attempts"),
			MasteryMinAccuracy:  viper.GetInt("practice.mastery_min_accuracy"),
			PoolCacheTTL:        viper.GetDuration("practice.pool_cache_ttl"),
			WritePolicy:         viper.GetString("practice.write_policy"),
			AttemptWriteTimeout: viper.GetDuration("practice.attempt_write_timeout"),
			MaxInflightWrites:   viper.GetInt("practice.max_inflight_writes"),
			SessionIdleTimeout:  viper.GetDuration("practice.session_idle_timeout"),
			TickInterval:        viper.GetDuration("practice.tick_interval"),
			RNGSeed:             viper.GetInt64("practice.rng_seed"),
		},
	}
}

func applyEnvOverrides(config *Config) {
	if driver := os.Getenv("DB_DRIVER"); driver != "" {
		config.DB.Driver = driver
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		config.DB.Port = viper.GetInt("DB_PORT")
	}
	if host := os.Getenv("DB_HOST"); host != "" {
		config.DB.Host = host
	}
	if user := os.Getenv("DB_USER"); user != "" {
		config.DB.User = user
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		config.DB.Password = password
	}
	if dbname := os.Getenv("DB_NAME"); dbname != "" {
		config.DB.DBName = dbname
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		config.Server.Port = viper.GetInt("SERVER_PORT")
	}
	if redisAddress := os.Getenv("REDIS_ADDRESS"); redisAddress != "" {
		config.Redis.Address = redisAddress
	}
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		config.Redis.Password = redisPassword
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		config.Auth.JWTSecret = secret
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Logger.Level = level
	}
	if env := os.Getenv("APP_ENV"); env != "" {
		config.Logger.Env = env
	}
}

// GetDSN builds the connection string for the configured driver.
func (c *Config) GetDSN() string {
	if c.DB.Driver == "godror" {
		return fmt.Sprintf(`user="%s" password="%s" connectString="%s:%d/%s"`,
			c.DB.User,
			c.DB.Password,
			c.DB.Host,
			c.DB.Port,
			c.DB.DBName,
		)
	}
	return fmt.Sprintf("oracle://%s:%s@%s:%d/%s",
		c.DB.User,
		c.DB.Password,
		c.DB.Host,
		c.DB.Port,
		c.DB.DBName,
	)
}
