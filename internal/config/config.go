package config

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

type Config struct {
	App struct {
		Env      string
		Timezone string
	} `mapstructure:"app"`

	HTTP struct {
		Addr         string
		AllowOrigins string `mapstructure:"allow_origins"`
	} `mapstructure:"http"`

	Postgres struct {
		DSN string
	} `mapstructure:"postgres"`

	Storage struct {
		// postgres | memory
		Driver string
	} `mapstructure:"storage"`

	Auth struct {
		JWTSecret     string `mapstructure:"jwt_secret"`
		ProviderURL   string `mapstructure:"provider_url"`
		APIKey        string `mapstructure:"api_key"`
		ResetRedirect string `mapstructure:"reset_redirect"`
	} `mapstructure:"auth"`

	Inventory struct {
		AllowNegativeStock bool `mapstructure:"allow_negative_stock"`
	} `mapstructure:"inventory"`

	Metrics struct {
		Enabled bool
	} `mapstructure:"metrics"`

	Telegram struct {
		Token       string
		AdminChatID int64 `mapstructure:"admin_chat_id"`
	} `mapstructure:"telegram"`
}

// Load reads the YAML file at path. Values from .env (if present) and APP_* env
// variables take precedence, e.g. APP_POSTGRES_DSN overrides postgres.dsn.
func Load(path string) (Config, error) {
	if err := gotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("app.env", "prod")
	v.SetDefault("app.timezone", "UTC")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("storage.driver", "postgres")
	v.SetDefault("inventory.allow_negative_stock", true)

	var c Config
	if err := v.ReadInConfig(); err != nil {
		return c, err
	}
	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}
	return c, c.validate()
}

func (c Config) validate() error {
	switch c.Storage.Driver {
	case "postgres":
		if c.Postgres.DSN == "" {
			return errors.New("config: postgres.dsn is required for storage.driver=postgres")
		}
	case "memory":
	default:
		return errors.New("config: storage.driver must be postgres or memory")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("config: auth.jwt_secret is required")
	}
	return nil
}
