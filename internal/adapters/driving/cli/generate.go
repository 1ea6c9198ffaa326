package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/policyshield/internal/core/domain"
)

var generateCmd = &cobra.Command{
	Use:   "generate [prompt]",
	Short: "Generate a network security policy",
	Long: `Run a policy request through the safety shield and print the result.

Without a prompt the default request is used:
  "` + domain.DefaultPrompt + `"

The authorization phrase is read from --auth, or prompted for without echo
when stdin is a terminal. The command exits non-zero unless a policy was
generated.

Examples:
  policyshield generate "Set up VPN access for remote staff"
  policyshield generate --auth "I am an authorized admin" --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringP("auth", "a", "", "authorization phrase")
	generateCmd.Flags().Bool("json", false, "print the evaluation as JSON")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	prompt := domain.DefaultPrompt
	if len(args) == 1 {
		prompt = args[0]
	}
	if strings.TrimSpace(prompt) == "" {
		return errors.New("please enter a policy request")
	}

	auth, err := cmd.Flags().GetString("auth")
	if err != nil {
		return fmt.Errorf("getting auth flag: %w", err)
	}
	if !cmd.Flags().Changed("auth") {
		fmt.Fprint(cmd.ErrOrStderr(), "Authorization phrase: ")
		auth = readPassword(cmd.InOrStdin())
		fmt.Fprintln(cmd.ErrOrStderr())
	}

	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return fmt.Errorf("getting json flag: %w", err)
	}

	svc, err := loadServices(cmd.Context())
	if err != nil {
		return err
	}

	eval, err := svc.Shield.Evaluate(cmd.Context(), domain.PolicyRequest{
		Prompt:        prompt,
		Authorization: auth,
	})
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	if asJSON {
		if err := printJSON(cmd.OutOrStdout(), eval); err != nil {
			return err
		}
	} else {
		printEvaluation(cmd.OutOrStdout(), eval)
	}

	if !eval.Succeeded() {
		return errors.New(strings.ToLower(eval.Outcome.Description()))
	}
	return nil
}
