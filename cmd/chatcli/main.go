package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/kulim/agrimarket/backend/internal/analysis/intent"
	"github.com/kulim/agrimarket/backend/internal/config"
	model "github.com/kulim/agrimarket/backend/internal/model/chat"
	"github.com/kulim/agrimarket/backend/internal/model/knowledge"
	"github.com/kulim/agrimarket/backend/internal/service/chat"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

type options struct {
	name      string
	delay     time.Duration
	knowledge string
}

func newRootCmd() *cobra.Command {
	_ = godotenv.Load()

	opts := options{}
	cmd := &cobra.Command{
		Use:          "chatcli",
		Short:        "Talk to the agricultural assistant from a terminal",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("name") {
				opts.name = cfg.Assistant.Name
			}
			if !cmd.Flags().Changed("delay") {
				opts.delay = cfg.Assistant.ReplyDelay
			}
			if !cmd.Flags().Changed("knowledge") {
				opts.knowledge = cfg.Assistant.KnowledgeFile
			}
			return run(cmd.Context(), opts, cfg.Assistant.Greeting, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.name, "name", "ChatKulim", "assistant name shown in the greeting")
	cmd.Flags().DurationVar(&opts.delay, "delay", time.Second, "simulated typing delay")
	cmd.Flags().StringVar(&opts.knowledge, "knowledge", "", "YAML knowledge file replacing the built-in table")

	return cmd
}

func run(ctx context.Context, opts options, greeting string, in io.Reader, out io.Writer) error {
	kb, suggestions, err := knowledge.Open(opts.knowledge)
	if err != nil {
		return err
	}

	conv := chat.NewConversation(intent.New(kb), chat.Options{
		AssistantName: opts.name,
		Greeting:      greeting,
		ReplyDelay:    opts.delay,
		Suggestions:   suggestions,
	})
	defer conv.Close()

	r := &repl{conv: conv, name: opts.name, out: out}
	r.printNew()

	lines := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !lines.Scan() {
			fmt.Fprintln(out)
			return lines.Err()
		}

		quit, err := r.handle(ctx, lines.Text())
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
	}
}

type repl struct {
	conv    *chat.Conversation
	name    string
	out     io.Writer
	printed int
}

func (r *repl) handle(ctx context.Context, line string) (bool, error) {
	trimmed := strings.TrimSpace(line)

	switch {
	case trimmed == "/quit" || trimmed == "/exit":
		return true, nil
	case trimmed == "/suggestions":
		for i, s := range r.conv.State().Suggestions {
			fmt.Fprintf(r.out, "  %d. %s\n", i+1, s)
		}
		return false, nil
	case strings.HasPrefix(trimmed, "/pick"):
		suggestions := r.conv.State().Suggestions
		n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(trimmed, "/pick")))
		if err != nil || n < 1 || n > len(suggestions) {
			fmt.Fprintf(r.out, "  pick a number between 1 and %d\n", len(suggestions))
			return false, nil
		}
		if err := r.conv.SelectSuggestion(suggestions[n-1]); err != nil {
			return false, err
		}
		fmt.Fprintf(r.out, "  input: %s (press enter to send)\n", suggestions[n-1])
		return false, nil
	case trimmed == "":
		line = r.conv.State().PendingInput
	}

	accepted, err := r.conv.Submit(line)
	if err != nil {
		return false, err
	}
	if !accepted {
		return false, nil
	}

	r.printNew()
	fmt.Fprintf(r.out, "  %s is typing...\n", r.name)
	if err := r.conv.WaitIdle(ctx); err != nil {
		return false, err
	}
	r.printNew()
	return false, nil
}

// printNew writes assistant messages not shown yet.
func (r *repl) printNew() {
	log := r.conv.State().Log
	for _, msg := range log[r.printed:] {
		if msg.Sender == model.SenderAssistant {
			fmt.Fprintf(r.out, "%s: %s\n", r.name, msg.Text)
		}
	}
	r.printed = len(log)
}
