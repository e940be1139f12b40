package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/sirius-dms/dms-client/internal/notify"
	"golang.org/x/term"
)

var kindColors = map[notify.Kind]*color.Color{
	notify.KindSuccess: color.New(color.FgGreen),
	notify.KindWarning: color.New(color.FgYellow),
	notify.KindError:   color.New(color.FgRed),
	notify.KindInfo:    color.New(color.FgCyan),
}

// printNotifications writes each new notification to w once and returns
// a function that stops printing.
func printNotifications(center *notify.Center, w io.Writer) func() error {
	var mu sync.Mutex
	seen := map[string]bool{}
	unsubscribe := center.Subscribe(func(list []notify.Notification) {
		mu.Lock()
		defer mu.Unlock()
		for _, n := range list {
			if seen[n.ID] {
				continue
			}
			seen[n.ID] = true
			c, ok := kindColors[n.Kind]
			if !ok {
				c = color.New(color.Reset)
			}
			if n.Message != "" {
				_, _ = c.Fprintf(w, "%s: %s\n", n.Title, n.Message)
			} else {
				_, _ = c.Fprintln(w, n.Title)
			}
		}
	})
	return func() error {
		unsubscribe()
		return nil
	}
}

func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

var (
	readerMu  sync.Mutex
	readerSrc io.Reader
	reader    *bufio.Reader
)

// lineReader buffers stdin once so consecutive prompts do not lose input.
func lineReader() *bufio.Reader {
	readerMu.Lock()
	defer readerMu.Unlock()
	if reader == nil || readerSrc != stdin {
		reader = bufio.NewReader(stdin)
		readerSrc = stdin
	}
	return reader
}

// prompt reads one line from stdin after printing label.
func prompt(w io.Writer, label string) (string, error) {
	fmt.Fprint(w, label)
	line, err := lineReader().ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptPassword reads a password without echo when stdin is a terminal.
func promptPassword(w io.Writer, label string) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(w, label)
		pw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(w)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(pw), nil
	}
	return prompt(w, label)
}
