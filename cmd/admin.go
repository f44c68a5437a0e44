package cmd

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Tiliavir/arbeitszeit/internal/auth"
	"github.com/Tiliavir/arbeitszeit/internal/config"
)

var (
	adminPIN     string
	hashPINSave  bool
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Admin account management",
}

var hashPINCmd = &cobra.Command{
	Use:   "hash-pin",
	Short: "Create an argon2id hash of a new admin PIN",
	Long: `Prompts for a new admin PIN (hidden input, asked twice) and prints its
argon2id hash for the admin_pin_hash setting. With --save the hash is
written into the config file directly; comments in the file are lost.`,
	Args: cobra.NoArgs,
	RunE: runHashPIN,
}

func init() {
	hashPINCmd.Flags().BoolVar(&hashPINSave, "save", false, "Write the hash into the config file")
	adminCmd.AddCommand(hashPINCmd)
}

// addPINFlag registers --pin on an admin-only command.
func addPINFlag(c *cobra.Command) {
	c.Flags().StringVar(&adminPIN, "pin", "", "Admin PIN (prompted for when omitted)")
}

// requireAdmin checks the admin PIN from --pin or a hidden prompt. With no
// admin_pin_hash configured the gate is open and a warning is printed.
func requireAdmin(cmd *cobra.Command) error {
	gate := auth.Gate{Name: cfg.AdminName, Hash: cfg.AdminPINHash}
	if gate.Open() {
		fmt.Fprintln(os.Stderr, "Warning: no admin_pin_hash configured, admin commands are unprotected (see: azt admin hash-pin)")
		return nil
	}

	pin := adminPIN
	if pin == "" {
		if !term.IsTerminal(int(syscall.Stdin)) {
			return usageError(errors.New("admin PIN required: use --pin"))
		}
		p, err := readSecret(fmt.Sprintf("PIN für %s: ", cfg.AdminName))
		if err != nil {
			return usageError(err)
		}
		pin = p
	}

	if err := gate.Check(pin); err != nil {
		return usageError(err)
	}
	return nil
}

func runHashPIN(cmd *cobra.Command, args []string) error {
	pin, err := readSecret("New admin PIN:     ")
	if err != nil {
		return usageError(err)
	}
	confirm, err := readSecret("Confirm admin PIN: ")
	if err != nil {
		return usageError(err)
	}
	if pin == "" {
		return usageError(errors.New("PIN cannot be empty"))
	}
	if pin != confirm {
		return usageError(errors.New("PINs do not match"))
	}

	hash, err := auth.HashPIN(pin)
	if err != nil {
		return err
	}

	if !hashPINSave {
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	}
	cfg.AdminPINHash = hash
	if err := config.Save(cfgPath, cfg); err != nil {
		return storageError(err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Admin PIN saved to %s\n", cfgPath)
	return nil
}

// readSecret prompts on stderr and reads a line without echo.
func readSecret(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading PIN: %w", err)
	}
	return string(b), nil
}
