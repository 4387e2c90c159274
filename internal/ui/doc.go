// Package ui renders the styled, non-interactive output of sysmon's
// subcommands: tables, check lists and alert levels.
//
// # Color Scheme
//
// Colors are ANSI codes so output degrades cleanly on basic terminals:
//
//	ColorSuccess   (green)  - passing checks
//	ColorError     (red)    - failures and critical alerts
//	ColorWarning   (yellow) - warnings
//	ColorInfo      (cyan)   - informational values
//	ColorMuted     (gray)   - secondary text
//
// Lip Gloss drops the colors itself when stdout is not a terminal.
package ui
