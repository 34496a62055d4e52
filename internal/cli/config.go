// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - Configuration command for the chatterm CLI.
//
// Command: config
// Short:   Show or change configuration
//
// Examples:
//   chatterm config show
//   chatterm config set server.base_url http://127.0.0.1:9000
//   chatterm config set chat.stream false
//   chatterm config path
package cli

import (
	"fmt"
	"strconv"

	"github.com/jeranaias/chatterm/internal/config"
)

// HandleConfigCommand handles the "config" command.
func HandleConfigCommand(args Args) error {
	switch args.Subcommand {
	case "", "show":
		return configShow()
	case "set":
		return configSet(args.ConfigKey, args.ConfigVal)
	case "path":
		return configPath()
	default:
		return fmt.Errorf("unknown config subcommand: %s (show|set|path)", args.Subcommand)
	}
}

// configShow prints the effective configuration.
func configShow() error {
	cfg := config.Global()

	fmt.Println()
	fmt.Println(summaryHeaderStyle.Render("Configuration"))
	fmt.Println(infoStyle.Render("─────────────"))
	fmt.Println()

	rows := []struct {
		key string
		val string
	}{
		{"server.base_url", cfg.Server.BaseURL},
		{"server.timeout_seconds", strconv.Itoa(cfg.Server.TimeoutSeconds)},
		{"chat.stream", strconv.FormatBool(cfg.Chat.Stream)},
		{"chat.markdown", strconv.FormatBool(cfg.Chat.Markdown)},
		{"ui.theme", cfg.UI.Theme},
		{"ui.word_wrap", strconv.Itoa(cfg.UI.WordWrap)},
		{"history.max_entries", strconv.Itoa(cfg.History.MaxEntries)},
	}

	for _, row := range rows {
		fmt.Printf("  %s %s\n",
			infoStyle.Render(fmt.Sprintf("%-24s", row.key)),
			commandStyle.Render(row.val))
	}

	fmt.Println()
	return nil
}

// configSet updates one key and persists the config file.
func configSet(key, value string) error {
	if key == "" {
		return fmt.Errorf("usage: chatterm config set <key> <value>")
	}

	cfg := config.Global().Clone()

	switch key {
	case "server.base_url":
		cfg.Server.BaseURL = value

	case "server.timeout_seconds":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid timeout: %q", value)
		}
		cfg.Server.TimeoutSeconds = n

	case "chat.stream":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %q", value)
		}
		cfg.Chat.Stream = b

	case "chat.markdown":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %q", value)
		}
		cfg.Chat.Markdown = b

	case "ui.theme":
		cfg.UI.Theme = value

	case "ui.word_wrap":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid width: %q", value)
		}
		cfg.UI.WordWrap = n

	case "history.max_entries":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid count: %q", value)
		}
		cfg.History.MaxEntries = n

	default:
		return fmt.Errorf("unknown config key: %s", key)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return err
	}
	config.SetGlobal(cfg)

	fmt.Printf("%s %s = %s\n", commandStyle.Render("[OK]"), key, value)
	return nil
}

// configPath prints where the config file lives.
func configPath() error {
	path, err := config.ConfigPathTOML()
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}
