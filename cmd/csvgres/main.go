// Package main is the csvgres command line tool: a cobra CLI offering
// "exec" (run a .sql file) and "repl" (read statements from stdin),
// both against one engine.Csvgres rooted at a configurable data
// directory. Grounded on the teacher's cmd/smf/main.go cobra wiring
// (root command + subcommands, per-command flag structs).
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"csvgres/internal/config"
	"csvgres/internal/engine"
)

type execFlags struct {
	configFile string
	root       string
}

type replFlags struct {
	configFile string
	root       string
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "csvgres",
		Short: "SQL-over-CSV database engine",
	}

	rootCmd.AddCommand(execCmd())
	rootCmd.AddCommand(replCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func execCmd() *cobra.Command {
	flags := &execFlags{}
	cmd := &cobra.Command{
		Use:   "exec <file.sql>",
		Short: "Execute every statement in a SQL file",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runExec(args[0], flags)
		},
	}
	cmd.Flags().StringVarP(&flags.configFile, "config", "c", "", "Path to a TOML config file")
	cmd.Flags().StringVar(&flags.root, "root", "", "Root data directory (overrides config)")
	return cmd
}

func replCmd() *cobra.Command {
	flags := &replFlags{}
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Read statements from stdin, one per line",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, args []string) error {
			return runRepl(flags)
		},
	}
	cmd.Flags().StringVarP(&flags.configFile, "config", "c", "", "Path to a TOML config file")
	cmd.Flags().StringVar(&flags.root, "root", "", "Root data directory (overrides config)")
	return cmd
}

func loadConfig(configFile, rootOverride string) (config.Config, error) {
	cfg := config.Default()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}
	if rootOverride != "" {
		cfg.Root = rootOverride
	}
	return cfg, nil
}

func runExec(path string, flags *execFlags) error {
	cfg, err := loadConfig(flags.configFile, flags.root)
	if err != nil {
		return err
	}
	cs, err := engine.Open(cfg.Root, cfg.WorkerPoolSize)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	ctx := context.Background()
	for _, stmt := range splitStatements(string(data)) {
		if err := runStatement(ctx, cs, stmt); err != nil {
			return err
		}
	}
	return nil
}

func runRepl(flags *replFlags) error {
	cfg, err := loadConfig(flags.configFile, flags.root)
	if err != nil {
		return err
	}
	cs, err := engine.Open(cfg.Root, cfg.WorkerPoolSize)
	if err != nil {
		return err
	}

	ctx := context.Background()
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := runStatement(ctx, cs, line); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
	}
	if err := scanner.Err(); err != nil && err != io.EOF {
		return err
	}
	return nil
}

func runStatement(ctx context.Context, cs *engine.Csvgres, stmt string) error {
	if engine.IsConnectCommand(stmt) {
		return cs.Connect(ctx, stmt)
	}
	result, err := cs.Execute(ctx, stmt)
	if err != nil {
		return err
	}
	printResult(result)
	return nil
}

func printResult(r *engine.Result) {
	if r.Columns != nil {
		fmt.Println(strings.Join(r.Columns, "\t"))
		for _, row := range r.Rows {
			cells := make([]string, len(r.Columns))
			for i, col := range r.Columns {
				cells[i] = fmt.Sprint(row[col])
			}
			fmt.Println(strings.Join(cells, "\t"))
		}
		return
	}
	fmt.Printf("%s (%d rows affected)\n", r.Message, r.RowsAffected)
}

// splitStatements splits a SQL file on ";" terminators, dropping blank
// statements. It does not try to understand quoting, matching the
// complexity of what the engine's single-statement-at-a-time ParseOne
// already requires from callers.
func splitStatements(sql string) []string {
	var out []string
	for _, part := range strings.Split(sql, ";") {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
