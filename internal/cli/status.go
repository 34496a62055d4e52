// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// status.go - Backend status command for the chatterm CLI.
//
// Command: status
// Short:   Show backend reachability and configuration summary
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/jeranaias/chatterm/internal/config"
	"github.com/jeranaias/chatterm/internal/ui/styles"
)

// HandleStatusCommand handles the "status" command.
func HandleStatusCommand(args Args) error {
	cfg := config.Global()
	client := newBackendClient(args)

	fmt.Println()
	fmt.Println(summaryHeaderStyle.Render("chatterm status"))
	fmt.Println(infoStyle.Render("───────────────"))
	fmt.Println()

	fmt.Printf("  %s %s\n",
		infoStyle.Render("Server:"),
		commandStyle.Render(client.GetConfig().BaseURL))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	start := time.Now()
	err := client.Ping(ctx)
	latency := time.Since(start).Round(time.Millisecond)

	if err != nil {
		fmt.Printf("  %s %s\n",
			infoStyle.Render("Backend:"),
			errorStyle.Render(styles.StatusIndicators.Error+" unreachable"))
		fmt.Printf("  %s %v\n", infoStyle.Render("Detail:"), err)
	} else {
		fmt.Printf("  %s %s (%s)\n",
			infoStyle.Render("Backend:"),
			commandStyle.Render(styles.StatusIndicators.Success+" reachable"),
			latency)
	}

	fmt.Println()
	fmt.Printf("  %s stream=%t markdown=%t timeout=%ds\n",
		infoStyle.Render("Config:"),
		cfg.Chat.Stream,
		cfg.Chat.Markdown,
		cfg.Server.TimeoutSeconds)

	if path, pathErr := config.ConfigPathTOML(); pathErr == nil {
		fmt.Printf("  %s %s\n", infoStyle.Render("File:"), path)
	}

	fmt.Println()
	return err
}
