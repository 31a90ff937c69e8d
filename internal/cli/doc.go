// Package cli builds the metagrid cobra command tree. It translates flags
// into app.Config, reports bad flags as ExitError with status 2, and leaves
// process exit handling to main.
package cli
