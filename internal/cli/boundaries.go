package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/autogate/internal/boundary"
)

var boundariesShowJSON bool

func init() {
	rootCmd.AddCommand(boundariesCmd)
	boundariesCmd.AddCommand(boundariesInitCmd)
	boundariesCmd.AddCommand(boundariesShowCmd)
	boundariesShowCmd.Flags().BoolVar(&boundariesShowJSON, "json", false, "Print as JSON instead of a summary")
}

var boundariesCmd = &cobra.Command{
	Use:   "boundaries",
	Short: "Manage the policy limit tree",
}

var boundariesInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a commented default boundaries file",
	Long: "Writes the built-in boundaries as a commented YAML template.\n" +
		"With no path the template is printed to stdout.\n" +
		"Refuses to overwrite an existing file.",
	Args: cobra.MaximumNArgs(1),
	RunE: runBoundariesInit,
}

func runBoundariesInit(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		fmt.Print(boundary.DefaultConfigYAML())
		return nil
	}

	path := args[0]
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists, refusing to overwrite", path)
	}
	if err := os.WriteFile(path, []byte(boundary.DefaultConfigYAML()), 0o644); err != nil {
		return fmt.Errorf("write boundaries: %w", err)
	}
	fmt.Printf("boundaries written to %s\n", path)
	return nil
}

var boundariesShowCmd = &cobra.Command{
	Use:   "show [path]",
	Short: "Print effective boundaries after defaults and file overlay",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBoundariesShow,
}

func runBoundariesShow(cmd *cobra.Command, args []string) error {
	path := ""
	if len(args) > 0 {
		path = args[0]
	}
	b, err := loadBoundaries(path)
	if err != nil {
		return err
	}

	if boundariesShowJSON {
		out, err := json.MarshalIndent(b, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	if b.Financial != nil {
		fmt.Printf("%-25s max %.0f per action, %.0f per day\n", "Financial:", b.Financial.MaxActionValue, b.Financial.DailyValueCap)
	}
	if b.Content != nil {
		fmt.Printf("%-25s %d actions per day, review topics %v\n", "Content:", b.Content.DailyActionCap, b.Content.ReviewTopics)
	}
	if b.Development != nil {
		fmt.Printf("%-25s %d deploys per day, always-review=%v, protected %v\n", "Development:", b.Development.DailyDeployCap, b.Development.AlwaysReview, b.Development.ProtectedPaths)
	}
	if b.Trading != nil {
		fmt.Printf("%-25s max %.0f per trade, %.0f per day, %d trades per day\n", "Trading:", b.Trading.MaxTradeValue, b.Trading.DailyTradeCap, b.Trading.MaxDailyTrades)
	}
	if b.ActiveHours != nil {
		if b.ActiveHours.Start == b.ActiveHours.End {
			fmt.Printf("%-25s always\n", "Active hours (UTC):")
		} else {
			fmt.Printf("%-25s %02d:00-%02d:00\n", "Active hours (UTC):", b.ActiveHours.Start, b.ActiveHours.End)
		}
	}
	return nil
}
