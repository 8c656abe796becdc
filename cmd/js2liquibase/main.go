// Package main provides the entry point for the js2liquibase CLI tool.
package main

import (
	"os"

	"github.com/praveenchandhar/liquibase-jenkins-based-deployment/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
