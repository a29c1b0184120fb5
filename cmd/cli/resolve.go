package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <line...>",
	Short: "Resolve one chat line",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		a, err := setup(c)
		if err != nil {
			return err
		}
		defer shutdown(a)
		return a.evaluate(c.Context(), strings.Join(args, " "))
	},
}

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Resolve chat lines read from stdin",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, args []string) error {
		a, err := setup(c)
		if err != nil {
			return err
		}
		defer shutdown(a)
		return a.repl(c.Context(), c.InOrStdin())
	},
}

var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "List commands and their usages",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, args []string) error {
		a, err := setup(c)
		if err != nil {
			return err
		}
		defer shutdown(a)
		a.printCommands()
		return nil
	},
}

func setup(c *cobra.Command) (*app, error) {
	opts, err := options()
	if err != nil {
		return nil, err
	}
	return newApp(opts, c.OutOrStdout())
}

func shutdown(a *app) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := a.close(ctx); err != nil {
		log.Warn().Err(err).Msg("Pending reminders did not stop in time")
	}
}

// repl evaluates each non-empty line of in. Errors are printed and the loop
// goes on; it ends at EOF or when ctx is done.
func (a *app) repl(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := a.evaluate(ctx, line); err != nil {
			log.Debug().Err(err).Str("input", line).Msg("Line failed")
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}
