package main

import (
	"os"

	"docsum-backend/cmd/docsumctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
