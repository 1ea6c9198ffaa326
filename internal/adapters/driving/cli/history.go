package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/policyshield/internal/core/domain"
)

var historyCmd = &cobra.Command{
	Use:   "history [id]",
	Short: "Show recorded evaluations",
	Long: `List recent evaluations, newest first, or show one in full.

Examples:
  policyshield history
  policyshield history --outcome prompt_rejected -n 5
  policyshield history 3f2b...`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntP("limit", "n", domain.DefaultHistoryLimit, "maximum evaluations to list")
	historyCmd.Flags().String("outcome", "",
		"only list this outcome (completed, authorization_failed, prompt_rejected, generation_failed)")
	historyCmd.Flags().Bool("json", false, "print as JSON")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return fmt.Errorf("getting json flag: %w", err)
	}

	svc, err := loadServices(cmd.Context())
	if err != nil {
		return err
	}
	if svc.History == nil {
		return errors.New("history is not enabled")
	}

	if len(args) == 1 {
		eval, err := svc.History.Get(cmd.Context(), args[0])
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("evaluation %s not found", args[0])
			}
			return fmt.Errorf("getting evaluation: %w", err)
		}
		if asJSON {
			return printJSON(cmd.OutOrStdout(), eval)
		}
		printEvaluationDetails(cmd.OutOrStdout(), eval)
		return nil
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return fmt.Errorf("getting limit flag: %w", err)
	}
	if limit < 0 {
		return errors.New("limit must not be negative")
	}
	outcomeFlag, err := cmd.Flags().GetString("outcome")
	if err != nil {
		return fmt.Errorf("getting outcome flag: %w", err)
	}
	outcome := domain.Outcome(outcomeFlag)
	if outcome != "" && !outcome.IsValid() {
		return fmt.Errorf("unknown outcome %q", outcomeFlag)
	}

	evals, err := svc.History.List(cmd.Context(), domain.HistoryOptions{Limit: limit, Outcome: outcome})
	if err != nil {
		return fmt.Errorf("listing evaluations: %w", err)
	}

	if asJSON {
		if evals == nil {
			evals = []domain.Evaluation{}
		}
		return printJSON(cmd.OutOrStdout(), evals)
	}

	out := cmd.OutOrStdout()
	if len(evals) == 0 {
		fmt.Fprintln(out, "No evaluations recorded yet.")
		return nil
	}

	fmt.Fprintf(out, "%-36s  %-19s  %-20s  %s\n", "ID", "CREATED", "OUTCOME", "PROMPT")
	for i := range evals {
		e := &evals[i]
		fmt.Fprintf(out, "%-36s  %-19s  %-20s  %s\n",
			e.ID,
			e.CreatedAt.Local().Format(time.DateTime),
			e.Outcome,
			oneLine(e.Prompt, 50))
	}
	return nil
}

func printEvaluationDetails(out io.Writer, eval *domain.Evaluation) {
	fmt.Fprintf(out, "ID:       %s\n", eval.ID)
	fmt.Fprintf(out, "Created:  %s\n", eval.CreatedAt.Local().Format(time.DateTime))
	fmt.Fprintf(out, "Outcome:  %s (%s)\n", eval.Outcome, eval.Outcome.Description())
	if eval.Model != "" {
		fmt.Fprintf(out, "Model:    %s\n", eval.Model)
	}
	fmt.Fprintf(out, "Duration: %s\n", eval.Duration.Round(time.Millisecond))
	if eval.BlockedTerm != "" {
		fmt.Fprintf(out, "Blocked:  %s\n", eval.BlockedTerm)
	}
	if eval.Error != "" {
		fmt.Fprintf(out, "Error:    %s\n", eval.Error)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Request:")
	fmt.Fprintln(out, eval.Prompt)
	fmt.Fprintln(out)
	printEvaluation(out, eval)
	for _, line := range eval.RemovedLines {
		fmt.Fprintf(out, "(removed) %s\n", line)
	}
}
