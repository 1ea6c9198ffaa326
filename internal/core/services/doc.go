// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Services are pure Go with no CGO. The shield pipeline lives in
// shield.go; history and settings are thin layers over their stores.
package services
