package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"ragchat/src/log"
)

var workspaceReset bool

// workspaceCmd represents the workspace command
var workspaceCmd = &cobra.Command{
	Use:   "workspace",
	Short: "Inspect or reset the vector store workspace",
	Long: `The workspace command shows the state of the configured collection. With
--reset it drops the collection and the conversation history so ingestion can
start from scratch`,
	Run: RunWorkspace,
}

func init() {
	workspaceCmd.Flags().BoolVar(&workspaceReset, "reset", false, "drop the collection and conversation history")
	rootCmd.AddCommand(workspaceCmd)
}

func RunWorkspace(cmd *cobra.Command, args []string) {
	a, err := buildApp()
	if err != nil {
		log.Error(err, "Failed to build application")
		return
	}
	defer a.close()

	ctx := context.Background()

	exists, err := a.store.CollectionExists(ctx, a.collection)
	if err != nil {
		log.Error(err, "Failed to inspect collection", "collection", a.collection)
		return
	}

	if !workspaceReset {
		fmt.Printf("collection: %s\n", a.collection)
		fmt.Printf("exists:     %v\n", exists)
		if a.registry != nil {
			docs, err := a.registry.List(ctx)
			if err != nil {
				log.Error(err, "Failed to list registered documents")
				return
			}
			fmt.Printf("documents:  %d\n", len(docs))
			for _, d := range docs {
				fmt.Printf("  %s (%d chunks, ingested %s)\n",
					d.Filename, d.ChunkCount, d.IngestedAt.Format("2006-01-02 15:04"))
			}
		}
		return
	}

	if exists {
		if err := a.store.DeleteCollection(ctx, a.collection); err != nil {
			log.Error(err, "Failed to delete collection", "collection", a.collection)
			return
		}
	}
	a.session.ClearFiles()
	if err := a.history.Clear(ctx, a.session.ID); err != nil {
		log.Error(err, "Failed to clear history")
		return
	}
	log.Info("Workspace reset", "collection", a.collection)
}
