package cmd

import (
	"fmt"
	"reflect"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/xtreamr/internal/config"
)

const redacted = "********"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management commands",
}

var configDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Dump the effective configuration",
	Long: `Dump the effective configuration in YAML format: built-in defaults,
overlaid with the config file and XTREAMR_ environment variables.
The provider password is masked.

Redirect the output to create a configuration template:

  xtreamr config dump > xtreamr.yaml

Environment variables use the XTREAMR_ prefix and underscores for nesting.
Example: provider.url -> XTREAMR_PROVIDER_URL`,
	RunE: runConfigDump,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configDumpCmd)
}

// toMap converts a config struct to a map keyed by mapstructure tags, with
// durations and sizes in their human-readable form.
func toMap(v any) map[string]any {
	result := make(map[string]any)
	val := reflect.ValueOf(v)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	typ := val.Type()

	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		key := typ.Field(i).Tag.Get("mapstructure")
		if key == "" {
			key = typ.Field(i).Name
		}

		switch fv := field.Interface().(type) {
		case time.Duration:
			result[key] = fv.String()
		case config.ByteSize:
			result[key] = fv.String()
		default:
			if field.Kind() == reflect.Struct {
				result[key] = toMap(fv)
			} else {
				result[key] = fv
			}
		}
	}
	return result
}

func runConfigDump(cmd *cobra.Command, _ []string) error {
	cfg := *appConfig
	if cfg.Provider.Password != "" {
		cfg.Provider.Password = redacted
	}

	yamlData, err := yaml.Marshal(toMap(&cfg))
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "# xtreamr configuration")
	fmt.Fprintln(out, "#")
	fmt.Fprintln(out, "# Duration format: 30s, 5m, 8h")
	fmt.Fprintln(out, "# Size format: 4MiB, 64MB")
	fmt.Fprintln(out)
	fmt.Fprint(out, string(yamlData))
	return nil
}
