package main

import (
	"os"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/adoscope/internal"
)

func buildRootCommand() *cobra.Command {
	//nolint:exhaustruct // Minimal Command initialization with required fields only
	cmd := &cobra.Command{
		Use:   "adoscope",
		Short: "Read-only migration audit for Azure DevOps organizations",
		Long: `Audit an Azure DevOps organization before migrating it.

adoscope collects every project and repository, derives size and age
metrics, counts the resources a migration has to carry (work items,
pull requests, pipelines, service hooks, teams, security alerts,
users), and can mirror-clone every repository to find oversized files
anywhere in history.

It only ever reads: nothing in the organization is created, changed
or deleted.

Usage:
  adoscope scan              Full audit of the configured organization
  adoscope scan --deep-scan  Full audit plus repository history scan
  adoscope projects          Quick project and repository listing
  adoscope history           Previously recorded scans`,
		RunE: func(command *cobra.Command, _ []string) error {
			return command.Help()
		},
	}

	// Global persistent flags
	cmd.PersistentFlags().StringP("config", "c", "",
		"Path to config file (default: auto-detect)")
	cmd.PersistentFlags().StringP("organization", "o", "",
		"Organization name or URL (overrides config)")
	cmd.PersistentFlags().String("token", "",
		"Personal access token (overrides config and env var detection)")
	cmd.PersistentFlags().BoolP("verbose", "v", false,
		"Enable verbose output")

	return cmd
}

func addSubcommands(rootCmd *cobra.Command, appContext *internal.AppInternal) {
	for _, controller := range appContext.GetControllers() {
		bind := controller.GetBind()
		ctrl := controller // capture for closure
		//nolint:exhaustruct // Minimal Command initialization with required fields only
		subCmd := &cobra.Command{
			Use:   bind.Use,
			Short: bind.Short,
			Long:  bind.Long,
			Run: func(command *cobra.Command, arguments []string) {
				ctrl.Execute(command, arguments)
			},
		}

		// Add controller-specific flags
		if flagged, ok := ctrl.(interface{ AddFlags(*cobra.Command) }); ok {
			flagged.AddFlags(subCmd)
		}

		rootCmd.AddCommand(subCmd)
	}
}

func main() {
	//nolint:exhaustruct // Minimal TextFormatter initialization with required fields only
	logger.SetFormatter(&logger.TextFormatter{
		ForceColors:   true,
		FullTimestamp: true,
	})
	if os.Getenv("DEBUG") == "true" {
		logger.SetLevel(logger.DebugLevel)
	}

	cobraRoot := buildRootCommand()

	// Add all subcommands
	appContext := injectAppContext()
	addSubcommands(cobraRoot, appContext)

	if err := cobraRoot.Execute(); err != nil {
		logger.Fatalf("Error executing 'adoscope': %s", err)
	}
}
