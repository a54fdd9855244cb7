package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/autogate/internal/boundary"
	"github.com/ppiankov/autogate/internal/engine"
	"github.com/ppiankov/autogate/internal/model"
)

var (
	decideFile       string
	decideBoundaries string
	decideFormat     string
)

func init() {
	rootCmd.AddCommand(decideCmd)
	decideCmd.Flags().StringVar(&decideFile, "file", "-", "Path to action JSON, or - for stdin")
	decideCmd.Flags().StringVar(&decideBoundaries, "boundaries", "", "Path to boundaries YAML (optional, built-in defaults otherwise)")
	decideCmd.Flags().StringVarP(&decideFormat, "format", "f", "text", "Output format (text|json)")
}

var decideCmd = &cobra.Command{
	Use:   "decide",
	Short: "Classify and route a single proposed action",
	Long: "Reads one action as JSON, runs it through risk assessment, boundary\n" +
		"checks, and routing, and prints the decision.\n\n" +
		"Exit code 0 for auto_execute, 2 for queue_approval or escalate,\n" +
		"1 for reject or invalid input.",
	RunE: runDecide,
}

func runDecide(cmd *cobra.Command, args []string) error {
	action, err := readAction(decideFile)
	if err != nil {
		return err
	}

	b, err := loadBoundaries(decideBoundaries)
	if err != nil {
		return err
	}

	eng := engine.New(engine.Config{Boundaries: b})
	d, err := eng.Submit(action)
	if err != nil {
		return err
	}

	switch decideFormat {
	case "json":
		out, err := json.MarshalIndent(d, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	default:
		printDecision(d)
	}

	switch d.Outcome {
	case model.AutoExecute:
		return nil
	case model.Reject:
		os.Exit(1)
	default:
		os.Exit(2)
	}
	return nil
}

func readAction(path string) (model.Action, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return model.Action{}, fmt.Errorf("read action: %w", err)
	}

	var a model.Action
	if err := json.Unmarshal(data, &a); err != nil {
		return model.Action{}, fmt.Errorf("parse action: %w", err)
	}
	return a, nil
}

func loadBoundaries(path string) (*boundary.Boundaries, error) {
	if path == "" {
		return boundary.Default(), nil
	}
	return boundary.Load(path)
}

func printDecision(d model.Decision) {
	fmt.Printf("%-12s %s\n", "Action:", d.Action.Name)
	fmt.Printf("%-12s %s\n", "Category:", d.Action.Category)
	fmt.Printf("%-12s %d (%s)\n", "Risk:", d.Assessment.Score, d.Assessment.Level)
	fmt.Printf("%-12s %s\n", "Outcome:", d.Outcome)
	fmt.Printf("%-12s %s\n", "Reason:", d.Reason)
	if len(d.Violations) > 0 {
		fmt.Printf("%-12s %s\n", "Violations:", strings.Join(d.Violations, "; "))
	}
}
