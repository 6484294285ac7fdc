package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/josephgoksu/tasklane/internal/config"
	"github.com/josephgoksu/tasklane/internal/logger"
	"github.com/josephgoksu/tasklane/types"
	"github.com/spf13/viper"
)

// GlobalAppConfig holds the global application configuration instance.
var GlobalAppConfig types.AppConfig

// validate is a single instance of Validate, it caches struct info
var validate = validator.New()

// validateAppConfig performs validation on the AppConfig struct.
func validateAppConfig(cfg *types.AppConfig) error {
	return validate.Struct(cfg)
}

// InitConfig reads in config file and ENV variables if set.
func InitConfig() {
	if err := loadConfig(); err != nil {
		HandleFatalError("Configuration error: "+err.Error(), err)
	}
}

// loadConfig resolves configuration from flags, environment, .env and config file,
// in that order of precedence, then installs the logger.
func loadConfig() error {
	// It's okay if .env file doesn't exist.
	_ = godotenv.Load()

	for _, name := range []string{"config", "verbose", "json", "quiet"} {
		_ = viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}

	// Environment variable handling must be set up BEFORE reading the config file
	// so that TASKLANE_DATA_DIR can point the search at another project directory.
	viper.SetEnvPrefix(config.EnvPrefix)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	config.SetDefaults(viper.GetViper())

	cfgFileFlag := viper.GetString("config")
	if cfgFileFlag != "" {
		viper.SetConfigFile(cfgFileFlag)
	} else {
		projectDir := viper.GetString("data.dir")
		if info, err := os.Stat(projectDir); err == nil && info.IsDir() {
			viper.AddConfigPath(projectDir)
		}
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(config.ConfigName)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || cfgFileFlag != "" {
			return fmt.Errorf("read config %s: %w", viper.ConfigFileUsed(), err)
		}
	}

	logger.Setup(viper.GetBool("verbose"), os.Stderr)
	if used := viper.ConfigFileUsed(); used != "" {
		slog.Debug("using config file", "path", used)
	}

	cfg := types.AppConfig{}
	if err := viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	if err := validateAppConfig(&cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	dataDir, err := config.ResolveDataDir(cfg.Data.Dir)
	if err != nil {
		return fmt.Errorf("resolve data dir: %w", err)
	}
	cfg.Data.Dir = dataDir
	GlobalAppConfig = cfg
	logger.SetBasePath(dataDir)
	return nil
}

// GetConfig returns a pointer to the global types.AppConfig instance.
func GetConfig() *types.AppConfig {
	return &GlobalAppConfig
}
