package cmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"ragchat/src/log"
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest <file>...",
	Short: "Ingest documents into the vector store",
	Long: `The ingest command extracts, chunks and embeds the given PDF, text or
markdown files so they become queryable by chat`,
	Args: cobra.MinimumNArgs(1),
	Run:  RunIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func RunIngest(cmd *cobra.Command, args []string) {
	a, err := buildApp()
	if err != nil {
		log.Error(err, "Failed to build application")
		return
	}
	defer a.close()

	ctx := context.Background()
	bar := progressbar.Default(int64(len(args)), "ingesting")

	failed := 0
	for _, path := range args {
		filename := filepath.Base(path)

		data, err := os.ReadFile(path)
		if err != nil {
			log.Error(err, "Failed to read file", "path", path)
			failed++
			bar.Add(1)
			continue
		}

		count, err := a.ingestor.Ingest(ctx, filename, data)
		if err != nil {
			log.Error(err, "Failed to ingest document", "filename", filename, "detail", describeFailure(err))
			failed++
			bar.Add(1)
			continue
		}

		log.Info("Ingested document", "filename", filename, "chunks", count)
		bar.Add(1)
	}

	if failed > 0 {
		log.Info("Ingestion finished with failures", "failed", failed, "total", len(args))
		os.Exit(1)
	}
}
