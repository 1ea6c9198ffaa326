package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/policyshield/internal/core/domain"
)

// eventMarkers prefix process log lines by level.
var eventMarkers = map[domain.EventLevel]string{
	domain.EventInfo:    "i",
	domain.EventSuccess: "✔",
	domain.EventWarning: "!",
	domain.EventError:   "✘",
}

// printEvaluation writes the process log followed by the final policy, if any.
func printEvaluation(w io.Writer, eval *domain.Evaluation) {
	fmt.Fprintln(w, "Process Log")
	fmt.Fprintln(w, "-----------")
	for _, e := range eval.Events {
		marker, ok := eventMarkers[e.Level]
		if !ok {
			marker = "-"
		}
		fmt.Fprintf(w, "%s %s\n", marker, e.Message)
	}

	if eval.Succeeded() {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Final Security Policy")
		fmt.Fprintln(w, "---------------------")
		fmt.Fprintln(w, eval.Output)
	}
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	return nil
}

// oneLine collapses whitespace and truncates s to n runes.
func oneLine(s string, n int) string {
	r := []rune(strings.Join(strings.Fields(s), " "))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n-1]) + "…"
}
