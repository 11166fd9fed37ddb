package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

type JWTConfig struct {
	SecretKey        string        `mapstructure:"secretKey"`
	RefreshSecretKey string        `mapstructure:"refreshSecretKey"`
	Issuer           string        `mapstructure:"issuer"`
	Audience         string        `mapstructure:"audience"`
	AccessTTL        time.Duration `mapstructure:"accessTTL"`
	RefreshTTL       time.Duration `mapstructure:"refreshTTL"`
}

type Config struct {
	Mode     string `mapstructure:"mode"`
	Handlers struct {
		Prometheus struct {
			Port string `mapstructure:"port"`
		} `mapstructure:"prometheus"`
	} `mapstructure:"handlers"`
	Repositories struct {
		Postgres struct {
			Host     string `mapstructure:"host"`
			Password string `mapstructure:"password"`
			Port     string `mapstructure:"port"`
			Username string `mapstructure:"username"`
			DB       string `mapstructure:"db"`
			SSLMode  string `mapstructure:"sslmode"`
		} `mapstructure:"postgres"`
	} `mapstructure:"repositories"`
	Server struct {
		HTTPPort string        `mapstructure:"HTTPPort"`
		Timeout  time.Duration `mapstructure:"HTTPTimeout"`
	} `mapstructure:"server"`
	JWT    JWTConfig `mapstructure:"jwt"`
	Gemini struct {
		Model string `mapstructure:"model"`
	} `mapstructure:"gemini"`
	Assistant struct {
		MaxHints   int           `mapstructure:"maxHints"`
		SessionTTL time.Duration `mapstructure:"sessionTTL"`
	} `mapstructure:"assistant"`
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	// File-based config wins over the embedded default.
	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %s", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %s", err)
	}

	// Secrets come from the environment in real deployments; the yml values
	// are dev-only fallbacks.
	if secret := os.Getenv("PATHAVANA_JWT_SECRET_KEY"); secret != "" {
		config.JWT.SecretKey = secret
	}
	if secret := os.Getenv("PATHAVANA_JWT_REFRESH_SECRET_KEY"); secret != "" {
		config.JWT.RefreshSecretKey = secret
	}
	fmt.Println("Successfully loaded app configs...")
	return config, nil
}
