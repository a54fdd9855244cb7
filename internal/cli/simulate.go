package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/autogate/internal/engine"
	"github.com/ppiankov/autogate/internal/model"
)

var (
	simFile        string
	simBoundaries  string
	simApproveSafe bool
	simAuditOut    string
)

func init() {
	rootCmd.AddCommand(simulateCmd)
	simulateCmd.Flags().StringVar(&simFile, "file", "", "Path to JSON array of actions (required)")
	simulateCmd.Flags().StringVar(&simBoundaries, "boundaries", "", "Path to boundaries YAML (optional)")
	simulateCmd.Flags().BoolVar(&simApproveSafe, "approve-safe", false, "Bulk-approve safe and low-risk queued requests after the run")
	simulateCmd.Flags().StringVar(&simAuditOut, "audit-out", "", "Write the resulting audit snapshot to this file")
	simulateCmd.MarkFlagRequired("file")
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a batch of actions through the engine and summarize outcomes",
	Long: "Reads a JSON array of actions, submits each one, and prints a\n" +
		"per-action outcome table plus queue statistics.\n\n" +
		"Use this to preview how a boundaries file routes a workload\n" +
		"before deploying it.",
	RunE: runSimulate,
}

func runSimulate(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(simFile)
	if err != nil {
		return fmt.Errorf("read actions: %w", err)
	}
	var actions []model.Action
	if err := json.Unmarshal(data, &actions); err != nil {
		return fmt.Errorf("parse actions: %w", err)
	}

	b, err := loadBoundaries(simBoundaries)
	if err != nil {
		return err
	}

	eng := engine.New(engine.Config{Boundaries: b})
	counts := map[model.Outcome]int{}
	invalid := 0

	fmt.Printf("%-30s %-15s %6s  %-10s %s\n", "ACTION", "CATEGORY", "SCORE", "LEVEL", "OUTCOME")
	for _, a := range actions {
		d, err := eng.Submit(a)
		if err != nil {
			invalid++
			fmt.Printf("%-30s %-15s %6s  %-10s error: %v\n", truncate(a.Name, 30), a.Category, "-", "-", err)
			continue
		}
		counts[d.Outcome]++
		fmt.Printf("%-30s %-15s %6d  %-10s %s\n",
			truncate(a.Name, 30), d.Action.Category, d.Assessment.Score, d.Assessment.Level, d.Outcome)
	}

	if simApproveSafe {
		res := eng.Queue().ApproveAllSafe("simulate")
		fmt.Printf("\nbulk-approved %d low-risk requests", len(res.Succeeded))
		if len(res.FailedIDs) > 0 {
			fmt.Printf(" (%d failed)", len(res.FailedIDs))
		}
		fmt.Println()
	}

	stats := eng.QueueStats()
	fmt.Println()
	fmt.Printf("%-25s %d\n", "Auto-executed:", counts[model.AutoExecute])
	fmt.Printf("%-25s %d\n", "Queued for approval:", counts[model.QueueApproval])
	fmt.Printf("%-25s %d\n", "Escalated:", counts[model.Escalate])
	fmt.Printf("%-25s %d\n", "Rejected:", counts[model.Reject])
	if invalid > 0 {
		fmt.Printf("%-25s %d\n", "Invalid:", invalid)
	}
	fmt.Printf("%-25s %d\n", "Still pending:", stats.Pending)

	if simAuditOut != "" {
		snap, err := eng.Audit().Export()
		if err != nil {
			return err
		}
		if err := os.WriteFile(simAuditOut, snap, 0o644); err != nil {
			return fmt.Errorf("write audit snapshot: %w", err)
		}
		fmt.Printf("\naudit snapshot written to %s\n", simAuditOut)
	}

	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
