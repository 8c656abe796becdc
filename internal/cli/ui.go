package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/praveenchandhar/liquibase-jenkins-based-deployment/internal/review"
)

var (
	success = color.New(color.FgGreen, color.Bold).SprintfFunc()
	failure = color.New(color.FgRed, color.Bold).SprintfFunc()
	caution = color.New(color.FgYellow).SprintfFunc()
	danger  = color.New(color.FgRed).SprintfFunc()
)

func printWarnings(w io.Writer, warnings []review.Warning) {
	for _, warn := range warnings {
		line := "⚠ " + warn.String()
		if warn.Severity == review.SeverityDanger {
			fmt.Fprintln(w, danger("%s", line))
			continue
		}
		fmt.Fprintln(w, caution("%s", line))
	}
}
