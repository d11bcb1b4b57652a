package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sandevgo/cropadvisor/internal/core"
	"github.com/sandevgo/cropadvisor/internal/farm"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Read and change the farm profile and sensor readings",
}

var settingsGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one setting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		store := NewStore(ctx)
		defer store.Close(ctx)

		v, err := store.Settings.Get(ctx, args[0])
		if errors.Is(err, core.ErrSettingNotFound) {
			return fmt.Errorf("%s is not set", args[0])
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), v)
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		store := NewStore(ctx)
		defer store.Close(ctx)

		return store.Settings.Set(ctx, args[0], args[1])
	},
}

var settingsDeleteCmd = &cobra.Command{
	Use:   "delete <key>",
	Short: "Remove one setting so its default applies again",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		store := NewStore(ctx)
		defer store.Close(ctx)

		return store.Settings.Delete(ctx, args[0])
	},
}

var settingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print every stored setting",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		store := NewStore(ctx)
		defer store.Close(ctx)

		values, err := store.Settings.List(ctx)
		if err != nil {
			return err
		}

		keys := make([]string, 0, len(values))
		for k := range values {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		out := cmd.OutOrStdout()
		for _, k := range keys {
			fmt.Fprintf(out, "%s=%s\n", k, values[k])
		}
		return nil
	},
}

var settingsImportCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Load settings from a YAML farm profile",
	Long: `Loads a YAML farm profile. Nested maps become dotted keys (sensor: {ph: 6.5} sets sensor.ph),
selectedCrops and activeAlerts may be given as lists.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		values, err := parseProfile(data)
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}

		store := NewStore(ctx)
		defer store.Close(ctx)

		if err := core.SetAll(ctx, store.Settings, values); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d settings\n", len(values))
		return nil
	},
}

// parseProfile flattens a YAML farm profile into settings keys and values.
func parseProfile(data []byte) (map[string]string, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	out := make(map[string]string)
	if err := flatten("", doc, out); err != nil {
		return nil, err
	}
	return out, nil
}

func flatten(prefix string, node map[string]any, out map[string]string) error {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}

		switch val := v.(type) {
		case map[string]any:
			if err := flatten(key, val, out); err != nil {
				return err
			}
		case []any:
			items, err := scalarList(key, val)
			if err != nil {
				return err
			}
			switch key {
			case core.KeySelectedCrops:
				out[key] = farm.EncodeCrops(items)
			case core.KeyActiveAlerts:
				encoded, _ := json.Marshal(items)
				out[key] = string(encoded)
			default:
				return fmt.Errorf("%s: lists are only supported for %s and %s", key, core.KeySelectedCrops, core.KeyActiveAlerts)
			}
		case nil:
			out[key] = ""
		default:
			out[key] = scalar(val)
		}
	}
	return nil
}

func scalarList(key string, items []any) ([]string, error) {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, nested := item.(map[string]any); nested {
			return nil, fmt.Errorf("%s: list items must be plain values", key)
		}
		if item == nil {
			continue
		}
		if s := scalar(item); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

func scalar(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}

func init() {
	settingsCmd.AddCommand(settingsGetCmd, settingsSetCmd, settingsDeleteCmd, settingsListCmd, settingsImportCmd)
	rootCmd.AddCommand(settingsCmd)
}
