package main

import "github.com/MichalZajkowski/jira-build-health-action/internal/cli"

func main() {
	cli.Execute()
}
