package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/metascope/internal/aggregate"
	cfgpkg "github.com/KaramelBytes/metascope/internal/config"
	"github.com/KaramelBytes/metascope/internal/logging"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set metascope configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := settings()
		if cfg == nil {
			fmt.Println("# no config loaded, showing defaults")
		}
		fmt.Printf("data_path: %s\n", c.DataPath)
		fmt.Printf("top_journals: %d\n", c.TopJournals)
		fmt.Printf("top_words: %d\n", c.TopWords)
		fmt.Printf("word_field: %s\n", c.WordField)
		fmt.Printf("sample_rows: %d\n", c.SampleRows)
		fmt.Printf("default_year_from: %d\n", c.DefaultYearFrom)
		fmt.Printf("default_year_to: %d\n", c.DefaultYearTo)
		fmt.Printf("listen_addr: %s\n", c.ListenAddr)
		fmt.Printf("log_level: %s\n", c.LogLevel)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		next := *cfg
		switch key {
		case "data_path":
			next.DataPath = val
		case "top_journals":
			i, err := parseNonNegative(key, val)
			if err != nil {
				return err
			}
			next.TopJournals = i
		case "top_words":
			i, err := parseNonNegative(key, val)
			if err != nil {
				return err
			}
			next.TopWords = i
		case "word_field":
			f, err := aggregate.ParseField(val)
			if err != nil {
				return err
			}
			next.WordField = string(f)
		case "sample_rows":
			i, err := parseNonNegative(key, val)
			if err != nil {
				return err
			}
			next.SampleRows = i
		case "default_year_from":
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid int for default_year_from: %v", val)
			}
			next.DefaultYearFrom = i
		case "default_year_to":
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid int for default_year_to: %v", val)
			}
			next.DefaultYearTo = i
		case "listen_addr":
			next.ListenAddr = val
		case "log_level":
			if _, err := logging.ParseLevel(val); err != nil {
				return err
			}
			next.LogLevel = val
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := next.Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(&next, cfgFile); err != nil {
			return err
		}
		cfg = &next
		fmt.Println("Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func parseNonNegative(key, val string) (int, error) {
	i, err := strconv.Atoi(val)
	if err != nil || i < 0 {
		return 0, fmt.Errorf("invalid int for %s: %v", key, val)
	}
	return i, nil
}
