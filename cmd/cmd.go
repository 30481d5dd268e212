package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/frahmantamala/warehouse-management/internal"
	"github.com/frahmantamala/warehouse-management/pkg/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	configPath string
	clearData  bool
)

var rootCmd = &cobra.Command{
	Use:   "warehouse-management",
	Short: "Warehouse Management",
	Long:  `For managing articles, shelf racks and stores across a chain of warehouses.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*internal.Config, error) {
	cfg, err := readConfig(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("error validating config: %w", err)
	}
	return cfg, nil
}

// loadClientConfig skips the server sections so the stock command runs without database settings.
func loadClientConfig(path string) (*internal.Config, error) {
	cfg, err := readConfig(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateClient(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readConfig(path string) (*internal.Config, error) {
	// Check if we're running in Docker environment
	if os.Getenv("APP_ENV") == "production" || os.Getenv("DOCKER_ENV") == "true" {
		return internal.LoadConfigFromEnv(), nil
	}

	// Load configuration from file (development)
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.SetEnvPrefix("ENV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config: %w", err)
	}

	var cfg internal.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// initLogger configures the process logger from the observability section.
func initLogger(cfg *internal.Config) *slog.Logger {
	logger.InitWithOptions(os.Getenv("APP_ENV"), logger.Options{
		Level:  cfg.Observability.Logging.Level,
		Format: cfg.Observability.Logging.Format,
	})
	return logger.LoggerWrapper()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", ".", "directory holding config.yml")
	seedCmd.Flags().BoolVar(&clearData, "clear", false, "Clear existing data before seeding")

	rootCmd.AddCommand(httpServerCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}
