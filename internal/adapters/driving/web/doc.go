// Package web serves the browser UI and the JSON API for policyshield.
//
// The UI is a single form page: a policy request, the authorization phrase,
// and after submission the process log followed by the final policy. The
// JSON API exposes the same pipeline plus the evaluation history.
package web
