package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/heringsfish/hf/internal/actions"
	"github.com/heringsfish/hf/internal/plugin"
)

// exitCode is set by the root command's run.
var exitCode int

var rootCmd = &cobra.Command{
	Use:   "hf [action] [options...]",
	Short: "Heringsfish - drive Glassfish/Payara domains and Maven builds",
	Long: `hf runs the day-to-day tasks of a Java EE project: creating and starting
the application server domain, building with Maven, deploying the archives
and managing JDBC resources. Actions and pipelines are listed by 'hf help'.`,
	Args:               cobra.ArbitraryArgs,
	DisableFlagParsing: true,
	SilenceUsage:       true,
	SilenceErrors:      true,
	ValidArgsFunction:  completeActions,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := &App{Out: cmd.OutOrStdout(), Err: cmd.ErrOrStderr()}
		exitCode = app.Run(cmd.Context(), args)
		return nil
	},
}

func init() {
	// "hf help" is an action, not cobra's help command.
	rootCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})
}

// Execute runs the root command and exits with the action's exit code.
// SIGINT and SIGTERM cancel the running action.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		rootCmd.PrintErrln(err)
		os.Exit(1)
	}
	os.Exit(exitCode)
}

// completeActions offers the registered action names for the first word.
func completeActions(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveDefault
	}
	names, err := actionNames(LoadSettings(newEnv()))
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

// actionNames returns "name\tdescription" for every runnable plugin.
func actionNames(settings Settings) ([]string, error) {
	_, defs, err := loadConfig(settings)
	if err != nil {
		return nil, err
	}

	var names []string
	plugin.NewRegistry(defs, actions.Handlers()).ForEach(func(name string, p *plugin.Plugin) {
		if p.Runnable() {
			names = append(names, name+"\t"+p.Title())
		}
	})
	return names, nil
}
