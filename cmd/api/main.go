package main

import (
	"log"

	"github.com/spf13/cobra"

	_ "github.com/redmonkez12/go-accounts-api/docs" // Swagger docs (generated)
)

// @title           Accounts API
// @version         1.0
// @description     Account signup, email verification and single-session login.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:3000
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func newRootCmd() *cobra.Command {
	serve := newServeCmd()

	root := &cobra.Command{
		Use:           "api",
		Short:         "Accounts API server",
		SilenceUsage:  true,
		SilenceErrors: true,
		// running without a subcommand starts the server
		RunE: serve.RunE,
	}
	root.Flags().AddFlagSet(serve.Flags())

	root.AddCommand(serve, newMigrateCmd())
	return root
}
