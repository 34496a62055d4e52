// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - Command dispatch and argument parsing for chatterm.
//
// Commands:
//   chatterm                   Start the TUI (default)
//   chatterm ask "question"    One-shot question, reply to stdout
//   chatterm chat              Interactive REPL
//   chatterm status            Backend reachability and config summary
//   chatterm config [...]      Show or set configuration
//   chatterm version           Version information
//   chatterm help              Usage
package cli

import (
	"fmt"
	"os"
	"strings"
)

// =============================================================================
// VERSION INFO
// =============================================================================

// Set at build time via -ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// =============================================================================
// COMMANDS
// =============================================================================

// Command identifies which subcommand was requested.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdChat
	CmdStatus
	CmdConfig
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet    bool   // Suppress stats and banners
	Verbose  bool   // Extra diagnostics on stderr
	Plain    bool   // Disable markdown rendering and colors
	NoStream bool   // Force whole-response mode
	Stream   bool   // Force streaming mode
	Server   string // Backend base URL override

	// Command-specific
	Query      string // ask: the question text
	Subcommand string // config: show|set|path
	ConfigKey  string
	ConfigVal  string

	// Raw args remaining after flag parsing
	Raw []string
}

const usageText = `chatterm - terminal chat client

Chatterm talks to a local chat backend over HTTP. Replies can arrive
whole or streamed, with optional markdown rendering.

Usage:
  chatterm                    Start the TUI (default)
  chatterm ask "question"     Ask a single question
  chatterm chat               Interactive chat REPL
  chatterm status             Backend reachability and config
  chatterm config show        Print current configuration
  chatterm config set K V     Set a configuration value
  chatterm config path        Print the config file location
  chatterm version            Version information
  chatterm help               This text

Flags:
  --server URL      Backend base URL (default http://127.0.0.1:8000)
  --no-stream       Request the whole reply at once
  --stream          Stream the reply chunk by chunk
  --plain           No markdown rendering, no colors
  -q, --quiet       Suppress stats and banners
  -v, --verbose     Extra diagnostics

Examples:
  chatterm ask "how do goroutines work?"
  chatterm ask --no-stream --plain "one-liner please" | tee answer.txt
  chatterm chat --server http://127.0.0.1:9000
  CHATTERM_BASE_URL=http://10.0.0.5:8000 chatterm

Version: %s
`

// PrintUsage prints the usage text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("chatterm version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
}

// =============================================================================
// PARSING
// =============================================================================

// Parse parses os.Args and returns the command and its arguments.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses an argument slice. Split out from Parse for testing.
func ParseArgs(argv []string) (Command, Args) {
	remaining, args := parseGlobalFlags(argv)

	if len(remaining) == 0 {
		return CmdTUI, args
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	args.Raw = remaining

	switch cmd {
	case "tui":
		return CmdTUI, args

	case "ask":
		parseAskArgs(&args, remaining)
		return CmdAsk, args

	case "chat", "repl":
		return CmdChat, args

	case "status", "s":
		return CmdStatus, args

	case "config":
		parseConfigArgs(&args, remaining)
		return CmdConfig, args

	case "version", "-v", "--version":
		return CmdVersion, args

	case "help", "-h", "--help":
		return CmdHelp, args

	default:
		// Unknown word: treat the whole line as an ask query, so
		// `chatterm how do I ...` just works.
		args.Query = strings.Join(append([]string{cmd}, remaining...), " ")
		return CmdAsk, args
	}
}

// parseGlobalFlags extracts global flags and returns the remaining args.
func parseGlobalFlags(argv []string) ([]string, Args) {
	var remaining []string
	var args Args

	i := 0
	for i < len(argv) {
		arg := argv[i]

		switch arg {
		case "-q", "--quiet":
			args.Quiet = true
		case "-v", "--verbose":
			args.Verbose = true
		case "--plain":
			args.Plain = true
		case "--no-stream":
			args.NoStream = true
		case "--stream":
			args.Stream = true
		case "--server":
			if i+1 < len(argv) {
				i++
				args.Server = argv[i]
			}
		default:
			if strings.HasPrefix(arg, "--server=") {
				args.Server = strings.TrimPrefix(arg, "--server=")
			} else {
				remaining = append(remaining, arg)
			}
		}
		i++
	}

	return remaining, args
}

// parseAskArgs joins the remaining words into the query text.
func parseAskArgs(args *Args, remaining []string) {
	args.Query = strings.TrimSpace(strings.Join(remaining, " "))
}

// parseConfigArgs parses `config [show|set|path] [key] [value]`.
func parseConfigArgs(args *Args, remaining []string) {
	if len(remaining) == 0 {
		args.Subcommand = "show"
		return
	}

	args.Subcommand = strings.ToLower(remaining[0])
	if args.Subcommand == "set" {
		if len(remaining) > 1 {
			args.ConfigKey = remaining[1]
		}
		if len(remaining) > 2 {
			args.ConfigVal = strings.Join(remaining[2:], " ")
		}
	}
}
