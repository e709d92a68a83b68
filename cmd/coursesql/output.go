package main

import (
	"coursesql/internal/ingest"
	"github.com/fatih/color"
)

func printWarnings(ws []ingest.Warning) {
	for _, w := range ws {
		color.Yellow("warning: %s", w.String())
	}
}
