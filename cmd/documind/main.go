package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "documind",
		Short: "OCR document processing engine",
		Long: `Documind classifies noisy OCR text, extracts type-specific fields,
repairs common character confusions, and cross-validates the result.

Commands:
  serve     Run the HTTP API with the async processing queue
  process   Classify and extract a single file or text, print JSON
  watch     Watch directories and process new documents as they land
  export    Write completed results to an XLSX workbook`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		serveCmd(),
		processCmd(),
		watchCmd(),
		exportCmd(),
	)

	if err := root.Execute(); err != nil {
		// commands log their own failures; keep stderr for the bare cause
		if _, werr := os.Stderr.WriteString("error: " + err.Error() + "\n"); werr != nil {
			os.Exit(1)
		}
		os.Exit(1)
	}
}
