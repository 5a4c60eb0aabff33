package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/nurpe/fleet-reports/internal/fleetapi"
	"github.com/nurpe/fleet-reports/internal/logger"
)

type options struct {
	v *viper.Viper
}

func (o options) client() (*fleetapi.Client, error) {
	baseURL := strings.TrimSpace(o.v.GetString("base-url"))
	if baseURL == "" {
		return nil, fmt.Errorf("--base-url or FLEET_API_BASE_URL is required")
	}
	token := strings.TrimSpace(o.v.GetString("token"))
	if token == "" {
		return nil, fmt.Errorf("--token or FLEET_API_TOKEN is required")
	}
	return fleetapi.NewClient(baseURL, o.v.GetDuration("timeout")).WithToken(token), nil
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	opts := options{v: v}

	rootCmd := &cobra.Command{
		Use:   "fleet-smoke",
		Short: "Drive the fleet backend API end to end",
		Long: `fleet-smoke exercises a running fleet backend through its REST API.

Output Format:
  Results are printed as YAML by default. Use --format json to switch.

Examples:
  fleet-smoke crud --base-url https://fleet.example.com/api --token $TOKEN
  fleet-smoke report --range 7d --format json`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			format := strings.ToLower(v.GetString("format"))
			if format != "yaml" && format != "json" {
				return fmt.Errorf("--format must be yaml or json")
			}
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("base-url", "", "Fleet API root, e.g. https://fleet.example.com/api (env FLEET_API_BASE_URL)")
	flags.String("token", "", "Bearer token used for every request (env FLEET_API_TOKEN)")
	flags.String("format", "yaml", "Output format: yaml | json")
	flags.Duration("timeout", 15*time.Second, "Per-request timeout")
	flags.String("env", "development", "Logger mode")

	_ = v.BindPFlags(flags)
	_ = v.BindEnv("base-url", "FLEET_API_BASE_URL")
	_ = v.BindEnv("token", "FLEET_API_TOKEN")
	_ = v.BindEnv("timeout", "FLEET_API_TIMEOUT")

	rootCmd.AddCommand(newCrudCmd(opts), newReportCmd(opts))
	return rootCmd
}

// log writes to stderr so that stdout carries only the rendered result.
func (o options) log() zerolog.Logger {
	return logger.New(o.v.GetString("env")).Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
}

func (o options) format() string {
	return strings.ToLower(o.v.GetString("format"))
}

func render(w io.Writer, format string, value any) error {
	if strings.ToLower(format) == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(value)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(value); err != nil {
		return err
	}
	return enc.Close()
}
