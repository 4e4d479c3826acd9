package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

type Config struct {
	App struct {
		Env      string `validate:"oneof=dev prod test"`
		Timezone string `validate:"required"`
	} `mapstructure:"app"`

	HTTP struct {
		Addr string `validate:"required"`
	} `mapstructure:"http"`

	Metrics struct {
		Enabled bool
	} `mapstructure:"metrics"`

	Storage struct {
		Driver    string `validate:"oneof=memory file postgres redis"`
		Path      string
		KeyPrefix string `mapstructure:"key_prefix"`
	} `mapstructure:"storage"`

	Postgres struct {
		DSN string
	} `mapstructure:"postgres"`

	Redis struct {
		Addr     string
		Password string
		DB       int `validate:"gte=0"`
	} `mapstructure:"redis"`

	Telegram struct {
		Token       string
		AdminChatID int64 `mapstructure:"admin_chat_id"`
	} `mapstructure:"telegram"`

	Money struct {
		Locale   string `validate:"required"`
		Currency string `validate:"required,len=3"`
	} `mapstructure:"money"`
}

// Location часовой пояс, в котором считается "сегодня" и текущий месяц.
func (c Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.App.Timezone)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "prod")
	v.SetDefault("app.timezone", "UTC")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("storage.driver", "file")
	v.SetDefault("storage.path", "data")
	v.SetDefault("storage.key_prefix", "costbook:")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("money.locale", "es-EC")
	v.SetDefault("money.currency", "USD")
}

func Load(path string) (Config, error) {
	// .env необязателен
	if err := gotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	// APP_STORAGE_DRIVER перекрывает storage.driver и т.п.
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var c Config
	if err := v.ReadInConfig(); err != nil {
		return c, err
	}
	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	switch c.Storage.Driver {
	case "postgres":
		if c.Postgres.DSN == "" {
			return errors.New("invalid config: postgres.dsn is required for storage.driver=postgres")
		}
	case "redis":
		if c.Redis.Addr == "" {
			return errors.New("invalid config: redis.addr is required for storage.driver=redis")
		}
	case "file":
		if c.Storage.Path == "" {
			return errors.New("invalid config: storage.path is required for storage.driver=file")
		}
	}
	if c.Telegram.Token != "" && c.Telegram.AdminChatID == 0 {
		return errors.New("invalid config: telegram.admin_chat_id is required when telegram.token is set")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid config: app.timezone: %w", err)
	}
	return nil
}
