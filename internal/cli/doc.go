// Package cli implements the sysmon command-line interface.
//
// # Command Structure
//
// The root command "sysmon" starts the full-screen dashboard. Subcommands
// cover everything that does not need it:
//
//	sysmon                      - Live dashboard
//	sysmon snapshot             - Print one processed snapshot
//	sysmon alerts               - List alerts from the alert journal
//	sysmon init                 - Create a config file
//	sysmon config [show|validate|path|set]
//	sysmon version
//	sysmon completion <shell>
//
// # Startup
//
// The dashboard path loads the config (--config, ./.sysmon.yaml, then
// ~/.config/sysmon/config.yaml), applies the root flags on top, validates
// the result and only then builds the collector, processor and dashboard.
// Every validation problem is printed and the process exits with status 1.
//
// # Flag Handling
//
// --config is persistent and read by every subcommand. The dashboard flags
// (--interval, --layout, --theme, --log, --export-csv) override the file
// only when given.
package cli
