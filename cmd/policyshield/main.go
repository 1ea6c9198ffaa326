// Command policyshield is the Secure Network Policy Assistant.
package main

import (
	"os"

	"github.com/custodia-labs/policyshield/internal/adapters/driving/cli"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.SetSettingsFactory(openSettings)
	cli.SetServicesFactory(buildServices)
	cli.SetLLMValidator(validateLLM)

	// cobra has already printed the error.
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
