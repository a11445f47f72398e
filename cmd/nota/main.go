package main

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	notapkg "github.com/unowned-ai/nota/pkg"
	pkgdb "github.com/unowned-ai/nota/pkg/db"
	"github.com/unowned-ai/nota/pkg/utils"
)

var dbPath string

var rootCmd = &cobra.Command{
	Use:     "nota",
	Short:   "A keyword-indexed personal note store backed by SQLite.",
	Long:    ``,
	Version: fmt.Sprintf("v%s", notapkg.Version),
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// openStore resolves the database path and opens the store, creating or
// migrating the schema as needed.
func openStore() (*sql.DB, error) {
	resolved, err := utils.ResolveAndEnsureDBPath(dbPath)
	if err != nil {
		return nil, err
	}
	conn, err := pkgdb.Open(resolved)
	if err != nil {
		var migErr *pkgdb.MigrationError
		if errors.As(err, &migErr) {
			// Migrations are not safe to rerun blindly after a partial
			// failure; make the diagnostic loud before the non-zero exit.
			fmt.Fprintf(os.Stderr, "Fatal: %v\n", migErr)
		}
		return nil, err
	}
	return conn, nil
}

var completionShells = []string{"bash", "zsh", "fish", "powershell"}

var completionCmd = &cobra.Command{
	Use:   fmt.Sprintf("completion %s", strings.Join(completionShells, "|")),
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for nota.

The command prints a completion script to stdout. You can source it in your shell
or install it to the appropriate location for your shell to enable completions permanently.

Examples:

  Bash (current shell):
    $ source <(nota completion bash)

  Zsh:
    $ nota completion zsh > "${fpath[1]}/_nota"

  Fish:
    $ nota completion fish | source`,
	DisableFlagsInUseLine: true,
	ValidArgs:             completionShells,
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(cmd.OutOrStdout())
		case "zsh":
			return rootCmd.GenZshCompletion(cmd.OutOrStdout())
		case "fish":
			return rootCmd.GenFishCompletion(cmd.OutOrStdout(), true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(cmd.OutOrStdout())
		default:
			return fmt.Errorf("unsupported shell: %s", args[0])
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of nota",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(notapkg.Version)
	},
}

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the nota database",
	Long:  `Provides commands for managing the nota SQLite database, including schema upgrades.`,
}

var dbUpgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Upgrade the nota database schema to the latest version",
	Long: `Connects to the SQLite database at the configured path and applies any
pending schema migrations in ascending order. A brand-new or empty database
is created directly at the current schema.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, err := openStore()
		if err != nil {
			return err
		}
		defer conn.Close()

		installed, err := pkgdb.GetSchemaVersion(conn)
		if err != nil {
			return err
		}
		fmt.Printf("Database schema is at version %s\n", installed)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to the note store (default: $NOTA_DB or the per-OS data dir)")

	dbCmd.AddCommand(dbUpgradeCmd)

	rootCmd.AddCommand(completionCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(recentCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(undeleteCmd)
	rootCmd.AddCommand(trashCmd)
	rootCmd.AddCommand(emptyTrashCmd)
	rootCmd.AddCommand(rehashCmd)
	rootCmd.AddCommand(cleanupCmd)
	rootCmd.AddCommand(booksCmd)
	rootCmd.AddCommand(keywordsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(mcpCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
