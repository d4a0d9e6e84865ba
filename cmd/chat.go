package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ragchat/src/log"
)

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with ingested documents from the terminal",
	Long: `The chat command starts an interactive session. Type a question to get a
streamed answer, or use /ingest, /files, /set, /reset and /quit.`,
	Run: RunChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func RunChat(cmd *cobra.Command, args []string) {
	a, err := buildApp()
	if err != nil {
		log.Error(err, "Failed to build application")
		return
	}
	defer a.close()

	ctx := context.Background()

	prompt := color.New(color.FgCyan, color.Bold)
	answer := color.New(color.FgGreen)
	notice := color.New(color.FgYellow)
	errline := color.New(color.FgRed)

	notice.Println("Session started. Ingest a document with /ingest <path>, ask anything, /quit to exit.")

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		prompt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if quit := runChatCommand(ctx, a, line, notice, errline); quit {
				return
			}
			continue
		}

		ans, err := a.pipeline.Ask(ctx, a.session, line)
		if err != nil {
			errline.Println(describeFailure(err))
			continue
		}

		if len(ans.Sources) > 0 {
			var names []string
			seen := map[string]bool{}
			for _, s := range ans.Sources {
				if !seen[s.Chunk.Document] {
					seen[s.Chunk.Document] = true
					names = append(names, s.Chunk.Document)
				}
			}
			notice.Printf("[context: %s]\n", strings.Join(names, ", "))
		}

		for token := range ans.Tokens() {
			answer.Print(token)
		}
		fmt.Println()

		if err := ans.Err(); err != nil {
			errline.Println(describeFailure(err))
		}
		ans.Close()
	}
}

func runChatCommand(ctx context.Context, a *app, line string, notice, errline *color.Color) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit", "/exit":
		return true

	case "/files":
		files := a.session.Files()
		if len(files) == 0 {
			notice.Println("No documents ingested in this session.")
			return false
		}
		for _, f := range files {
			fmt.Println("  " + f)
		}

	case "/reset":
		a.session.Reset()
		notice.Println("Sampling settings restored to defaults.")

	case "/set":
		if len(fields) != 3 {
			errline.Println("Usage: /set <temperature|top_p|top_k|max_tokens> <value>")
			return false
		}
		value, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			errline.Printf("Not a number: %s\n", fields[2])
			return false
		}
		if err := a.session.Set(fields[1], value); err != nil {
			errline.Println(err.Error())
			return false
		}
		s := a.session.Sampling()
		notice.Printf("temperature=%.2f top_p=%.2f top_k=%d max_tokens=%d\n",
			s.Temperature, s.TopP, s.TopK, s.MaxTokens)

	case "/ingest":
		if len(fields) != 2 {
			errline.Println("Usage: /ingest <path>")
			return false
		}
		data, err := os.ReadFile(fields[1])
		if err != nil {
			errline.Println(err.Error())
			return false
		}
		count, err := a.ingestor.Ingest(ctx, filepath.Base(fields[1]), data)
		if err != nil {
			errline.Println(describeFailure(err))
			return false
		}
		notice.Printf("Ingested %s (%d chunks).\n", filepath.Base(fields[1]), count)

	default:
		errline.Printf("Unknown command: %s\n", fields[0])
	}
	return false
}
