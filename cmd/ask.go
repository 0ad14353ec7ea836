package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/campusbot/internal/chatbot"
	"github.com/ziadkadry99/campusbot/internal/history"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask the campus assistant a question from the command line",
	Long:  `Indexes the document folder, retrieves the most relevant documents and generates an answer, exactly like POST /chat.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().Bool("json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	question := strings.Join(args, " ")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	provider, err := createLLMProviderFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("creating LLM provider: %w", err)
	}

	svc, err := buildService(ctx, cfg, database, provider)
	if err != nil {
		return err
	}

	ans, err := svc.Ask(ctx, question)
	if err != nil {
		return err
	}

	if _, err := history.NewStore(database).Record(ctx, history.Exchange{
		Question: question,
		Answer:   ans.Answer,
		Sources:  ans.Sources,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not record exchange: %v\n", err)
	}

	if jsonOutput {
		return printAnswerJSON(ans)
	}
	printAnswer(ans)
	return nil
}

func printAnswerJSON(ans *chatbot.Answer) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(ans)
}

func printAnswer(ans *chatbot.Answer) {
	fmt.Println(ans.Answer)
	if len(ans.Sources) == 0 {
		return
	}
	fmt.Printf("\nSources (%d):\n", len(ans.Sources))
	for i, src := range ans.Sources {
		fmt.Printf("  %d. %s\n", i+1, truncate(oneLine(src), 120))
	}
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
