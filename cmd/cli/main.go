// Command cli resolves bot commands offline: it prints what a chat line
// matches and the typed arguments it parses to, and can run the command
// against a console environment.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/keshon/textcmd/internal/config"
	"github.com/keshon/textcmd/internal/logging"
	"github.com/spf13/cobra"
)

var (
	flagPrefix    string
	flagDirectory string
	flagGuild     string
	flagAuthor    string
	flagRun       bool
	flagTokens    bool
	flagNoColor   bool
	flagLogLevel  string
)

var rootCmd = &cobra.Command{
	Use:   "textcmd",
	Short: "Resolve bot text commands without Discord",
	Long: `textcmd matches chat lines against the bot's commands and shows the typed
arguments they resolve to, or why resolution failed.

Entity arguments (users, members, roles, channels) resolve against a YAML
directory given with --directory.

Examples:
  textcmd resolve '!role add bob Moderator'
  textcmd resolve --tokens '!remind 2h "stand up"'
  textcmd repl --directory guild.yaml --run`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if flagNoColor {
			color.NoColor = true
		}
		logging.Setup(logging.Options{Level: flagLogLevel, Console: true})
	},
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&flagPrefix, "prefix", "", "Command prefix (default: COMMAND_PREFIX or !)")
	f.StringVar(&flagDirectory, "directory", "", "YAML file with guild members, roles and channels")
	f.StringVar(&flagGuild, "guild", "", "Guild ID to resolve in (default: first guild in the directory)")
	f.StringVar(&flagAuthor, "author", "", "User ID of the invoking user (default: first member of the guild)")
	f.BoolVar(&flagRun, "run", false, "Run matched commands against the console")
	f.BoolVar(&flagTokens, "tokens", false, "Print the tokens of the argument body")
	f.BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	f.StringVar(&flagLogLevel, "log-level", "warn", "Log level")

	rootCmd.AddCommand(resolveCmd, replCmd, commandsCmd)
}

func options() (appOptions, error) {
	cfg, err := config.Load()
	if err != nil {
		return appOptions{}, err
	}
	opts := appOptions{
		Config:    cfg,
		Directory: flagDirectory,
		Guild:     flagGuild,
		Author:    flagAuthor,
		Run:       flagRun,
		Tokens:    flagTokens,
	}
	if flagPrefix != "" {
		cfg.Prefix = flagPrefix
	}
	return opts, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error: %v", err))
		os.Exit(1)
	}
}
