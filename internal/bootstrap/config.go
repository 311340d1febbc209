package bootstrap

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/wob25/del-cf-deploy2/internal/cleanup"
)

func LoadConfig[T any]() (T, error) {
	var cfg T
	if err := InitConfig(); err != nil {
		return cfg, err
	}

	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("unable to decode config: %w", err)
	}

	return cfg, nil
}

func InitConfig() error {
	_ = godotenv.Load()

	setDefaults()

	explicit := os.Getenv("APPLICATION_CONFIG")
	if explicit != "" {
		viper.SetConfigFile(explicit)
	} else {
		viper.SetConfigName("application")
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
	}
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// CF_* are the names CI jobs usually export.
	_ = viper.BindEnv("cloudflare.apitoken", "CLOUDFLARE_APITOKEN", "CF_API_TOKEN")
	_ = viper.BindEnv("cloudflare.accountid", "CLOUDFLARE_ACCOUNTID", "CF_ACCOUNT_ID")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

func setDefaults() {
	viper.SetDefault("cloudflare.baseurl", "")
	viper.SetDefault("cloudflare.timeout", "30s")
	viper.SetDefault("cloudflare.forcedelete", false)

	viper.SetDefault("cleanup.keepcount", 3)
	viper.SetDefault("cleanup.perpage", cleanup.MaxPerPage)
	viper.SetDefault("cleanup.pagepause", cleanup.DefaultPagePause.String())
	viper.SetDefault("cleanup.deletepause", cleanup.DefaultDeletePause.String())
	viper.SetDefault("cleanup.dryrun", false)
	viper.SetDefault("cleanup.projects", []string{})
	viper.SetDefault("cleanup.projectsfile", "")
	viper.SetDefault("cleanup.projectssinglepage", false)
	viper.SetDefault("cleanup.exclude", []string{})

	viper.SetDefault("scheduler.cron", "0 3 * * *")
	viper.SetDefault("scheduler.port", "8080")
	viper.SetDefault("scheduler.runonstart", false)

	viper.SetDefault("metrics.pushgatewayurl", "")
	viper.SetDefault("metrics.job", "pages_cleanup")

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")
}
