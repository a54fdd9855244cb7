package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/autogate/internal/audit"
)

var tailEntries int

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditVerifyCmd)
	auditCmd.AddCommand(auditTailCmd)
	auditTailCmd.Flags().IntVarP(&tailEntries, "entries", "n", 10, "Number of recent entries to show")
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Audit snapshot operations",
	Long:  "Commands for verifying and inspecting exported audit snapshots.",
}

var auditVerifyCmd = &cobra.Command{
	Use:   "verify <path>",
	Short: "Verify hash chain integrity of an audit snapshot",
	Long: "Walks an exported audit snapshot and validates that every entry's\n" +
		"prev_hash links to its predecessor and that every hash recomputes.\n" +
		"Exits 0 if valid, 1 if tampered.",
	Args: cobra.ExactArgs(1),
	RunE: runAuditVerify,
}

var auditTailCmd = &cobra.Command{
	Use:   "tail <path>",
	Short: "Show recent entries from an audit snapshot",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuditTail,
}

func runAuditVerify(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}

	result := audit.VerifySnapshot(data)
	if result.Valid {
		fmt.Printf("OK: %d entries verified\n", result.Entries)
		return nil
	}
	if result.BrokenAt >= 0 {
		fmt.Fprintf(os.Stderr, "FAILED at index %d: %s\n", result.BrokenAt, result.Error)
	} else {
		fmt.Fprintf(os.Stderr, "FAILED: %s\n", result.Error)
	}
	os.Exit(1)
	return nil
}

func runAuditTail(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}

	var snap audit.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("parse snapshot: %w", err)
	}

	start := len(snap.Entries) - tailEntries
	if start < 0 {
		start = 0
	}
	for _, e := range snap.Entries[start:] {
		out, _ := json.MarshalIndent(e, "", "  ")
		fmt.Println(string(out))
	}
	return nil
}
