package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var guardrailsCmd = &cobra.Command{
	Use:   "guardrails",
	Short: "Show the active deny lists",
	Long: `Show the prompt deny list and the output deny list the shield enforces.

Lists come from shield.rules_file when set, otherwise from settings.`,
	Args: cobra.NoArgs,
	RunE: runGuardrails,
}

func init() {
	guardrailsCmd.Flags().Bool("json", false, "print as JSON")
	rootCmd.AddCommand(guardrailsCmd)
}

func runGuardrails(cmd *cobra.Command, _ []string) error {
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return fmt.Errorf("getting json flag: %w", err)
	}

	svc, err := loadServices(cmd.Context())
	if err != nil {
		return err
	}
	g := svc.Shield.Guardrails()

	if asJSON {
		return printJSON(cmd.OutOrStdout(), g)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "[Prompt deny list]")
	for _, term := range g.PromptDenyList {
		fmt.Fprintf(out, "  - %s\n", term)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "[Output deny list]")
	for _, term := range g.OutputDenyList {
		fmt.Fprintf(out, "  - %s\n", term)
	}
	return nil
}
