package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/datasaur/datasaur-mcp/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	Version   string
	BuildTime string
	cfgFile   string
	envFile   string
)

var rootCmd = &cobra.Command{
	Use:   "datasaur-mcp",
	Short: "MCP tool server relaying prompts and CSV data to Datasaur deployments",
	Long: `datasaur-mcp exposes Datasaur model deployments as MCP tools. Each tool
forwards a prompt or the rows of a local CSV file to one deployment and returns
the model's answer as text.`,
	SilenceUsage: true,
	RunE:         runServe, // no subcommand starts the server
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the environment is read")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug/info/warn/error)")
	rootCmd.PersistentFlags().String("log-file", "", "rotated JSON log file (stderr only when empty)")

	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.output", rootCmd.PersistentFlags().Lookup("log-file"))
}

func initConfig() {
	// stdout carries MCP frames, so nothing here may print to it
	if err := config.LoadDotEnv(envFile); err != nil {
		fmt.Fprintln(os.Stderr, "Warning:", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.datasaur-mcp")
	}

	config.BindEnv(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintln(os.Stderr, "Warning: failed to read config file:", err)
		}
	}
}

// loadConfig resolves the configuration from v
func loadConfig(v *viper.Viper) (*config.Config, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// maskAPIKey returns a masked version of the API key for logging
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
