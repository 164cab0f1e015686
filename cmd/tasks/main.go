package main

import (
	"flag"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/ytakahashi/tasks/internal/client"
	"github.com/ytakahashi/tasks/internal/config"
	"github.com/ytakahashi/tasks/internal/page"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config", "err", err)
	}

	apiURL := flag.String("api", cfg.APIURL, "task API base URL")
	flag.Parse()

	p := tea.NewProgram(page.New(client.New(*apiURL, nil)), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Error("Task page exited", "err", err)
		os.Exit(1)
	}
}
