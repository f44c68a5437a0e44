package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var employeesCmd = &cobra.Command{
	Use:   "employees",
	Short: "List registered employees",
	Args:  cobra.NoArgs,
	RunE:  runEmployees,
}

var employeesAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Register an employee",
	Args:  cobra.ExactArgs(1),
	RunE:  runEmployeesAdd,
}

func init() {
	employeesCmd.AddCommand(employeesAddCmd)
}

func runEmployees(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	names, err := store.LoadEmployees(ctx)
	if err != nil {
		return storageError(err)
	}
	out := cmd.OutOrStdout()
	if len(names) == 0 {
		fmt.Fprintln(out, "No employees registered.")
		return nil
	}
	for _, name := range names {
		fmt.Fprintln(out, name)
	}
	return nil
}

func runEmployeesAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.AddEmployee(ctx, args[0]); err != nil {
		return usageError(err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Registered %s\n", args[0])
	return nil
}
