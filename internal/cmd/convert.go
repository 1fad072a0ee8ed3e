package cmd

import (
	"fmt"

	"github.com/datasaur/datasaur-mcp/internal/logger"
	"github.com/datasaur/datasaur-mcp/internal/relay"
	"github.com/datasaur/datasaur-mcp/internal/tools"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var convertCmd = &cobra.Command{
	Use:   "convert <file>",
	Short: "Convert a CSV file to JSON rows without calling any model",
	Args:  cobra.ExactArgs(1),
	RunE:  runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Logging, nil)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	svc := tools.NewService(relay.New(log), cfg, log)
	_, err = fmt.Fprintln(cmd.OutOrStdout(), svc.ConvertTabularToJSONText(args[0]))
	return err
}
