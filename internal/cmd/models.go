package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/datasaur/datasaur-mcp/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the model tools and whether each endpoint is configured",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}
		return printModels(cmd.OutOrStdout(), cfg)
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

func printModels(w io.Writer, cfg *config.Config) error {
	key := "missing"
	if cfg.Datasaur.APIKey != "" {
		key = maskAPIKey(cfg.Datasaur.APIKey)
	}
	if _, err := fmt.Fprintf(w, "API key: %s\n\n", key); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TOOL\tLABEL\tSTATUS\tTIMEOUT\tURL ENV")
	for _, spec := range config.AllSpecs() {
		ep := cfg.Endpoint(spec.Name)
		status := "missing"
		if ep.Configured() {
			status = "configured"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", spec.Tool, spec.Label, status, ep.Timeout, spec.URLEnv)
	}
	return tw.Flush()
}
