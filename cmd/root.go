package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"ragchat/src/log"
)

var rootCmd = &cobra.Command{
	Use:   "ragchat",
	Short: "Chat with your documents over a local RAG pipeline",
	Long: `ragchat ingests PDF, text and markdown documents into a vector store
and answers questions about them with retrieval-augmented generation
against a local Ollama instance.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().BoolVar(&production, "production", false, "use production logging")
}

var production bool

func initConfig() {
	// A missing .env file is fine; environment variables still apply.
	_ = godotenv.Load()
	settingDefaultConfig()
	log.Init(production)
}
