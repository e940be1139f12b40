package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/sirius-dms/dms-client/internal/api"
	"github.com/sirius-dms/dms-client/internal/apiclient"
	"github.com/sirius-dms/dms-client/internal/async"
	"github.com/spf13/cobra"
)

func newChatCmd() *cobra.Command {
	var (
		noStream bool
		message  string
		docID    string
	)
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Ask the document assistant",
		Long: `Start an interactive session with the document assistant.
With --message a single question is asked and the command exits.`,
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			var focus *string
			if docID != "" {
				focus = &docID
			}
			if message != "" {
				return askOnce(ctx, a, message, focus, noStream)
			}
			return chatLoop(ctx, a, focus, noStream)
		}),
	}
	cmd.Flags().BoolVar(&noStream, "no-stream", false, "Wait for the whole answer instead of streaming it")
	cmd.Flags().StringVarP(&message, "message", "m", "", "Ask a single question")
	cmd.Flags().StringVar(&docID, "document", "", "Document id to focus the conversation on")

	var limit int
	history := &cobra.Command{
		Use:   "history",
		Short: "Show past messages",
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			h, err := a.svc.Chat.History(ctx, limit)
			if err != nil {
				return err
			}
			for _, m := range h.Messages {
				fmt.Fprintf(a.out, "[%s] %s: %s\n", m.Timestamp.Format("2006-01-02 15:04"), m.Role, m.Content)
			}
			return nil
		}),
	}
	history.Flags().IntVar(&limit, "limit", 50, "Number of messages")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the conversation",
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			if err := a.svc.Chat.ClearHistory(ctx); err != nil {
				return err
			}
			a.notes.Info("Chat history cleared", "")
			return nil
		}),
	}

	cmd.AddCommand(history, clearCmd)
	return cmd
}

func chatLoop(ctx context.Context, a *app, focus *string, noStream bool) error {
	rl, err := readline.New("> ")
	if err != nil {
		return fmt.Errorf("failed to initialize readline: %w", err)
	}
	defer func() {
		if err := rl.Close(); err != nil {
			fmt.Fprintf(a.errOut, "Error closing readline: %v\n", err)
		}
	}()

	fmt.Fprintln(a.out, "Type 'exit' or 'quit' to end the session.")
	for {
		input, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if len(input) == 0 {
				return nil
			}
			continue
		} else if errors.Is(err, io.EOF) {
			return nil
		} else if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "exit" || input == "quit" {
			return nil
		}
		if input == "" {
			continue
		}

		err = askOnce(ctx, a, input, focus, noStream)
		if errors.Is(err, apiclient.ErrCancelled) {
			fmt.Fprintln(a.out, "\n[stopped]")
			return nil
		}
		if err != nil {
			a.notes.Error("Assistant unavailable", async.ErrorMessage(err))
		}
	}
}

func askOnce(ctx context.Context, a *app, message string, focus *string, noStream bool) error {
	if noStream {
		reply, err := a.svc.Chat.Send(ctx, message, focus)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, reply.Content)
		printSources(a.out, reply.Documents)
		return nil
	}

	res, err := a.svc.Chat.StreamMessage(ctx, message, focus,
		func(chunk string) { fmt.Fprint(a.out, chunk) },
		nil)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out)
	printSources(a.out, res.Documents)
	return nil
}

func printSources(w io.Writer, docs []api.SourceDocument) {
	if len(docs) == 0 {
		return
	}
	grey := color.New(color.FgHiBlack)
	_, _ = grey.Fprintln(w, "Sources:")
	for _, d := range docs {
		mark := ""
		if !d.Available {
			mark = " (unavailable)"
		}
		_, _ = grey.Fprintf(w, "  %s  %s%s  %.0f%%\n", d.DocumentID, d.Title, mark, d.Similarity*100)
	}
}
