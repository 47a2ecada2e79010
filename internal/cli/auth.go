package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAuthCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "auth",
		Short:       "Password protection",
		Annotations: skip(noAuth),
		Long: `Protect the journal with a password. Once set, every other command
needs a login that lasts 30 days by default (auth.token_ttl).

The password is stored as a plain SHA-256 hash on this machine. It keeps
casual eyes out; it is not encryption.

Examples:
  tradejournal auth setup
  tradejournal auth login
  tradejournal auth recover ABCD-EFGH-JKLM`,
	}
	cmd.AddCommand(
		newAuthSetupCmd(a),
		newAuthLoginCmd(a),
		newAuthLogoutCmd(a),
		newAuthStatusCmd(a),
		newAuthRecoverCmd(a),
		newAuthPasswdCmd(a),
	)
	return cmd
}

// password returns the flag value or prompts for it.
func (a *app) password(cmd *cobra.Command, flag, prompt string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	return a.readLine(cmd, prompt)
}

func newAuthSetupCmd(a *app) *cobra.Command {
	var pw string
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Set the first password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.password(cmd, pw, "New password: ")
			if err != nil {
				return err
			}
			code, err := a.gate.Setup(p)
			if err != nil {
				return fmt.Errorf("setup: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "✓ Password set")
			fmt.Fprintf(out, "  Recovery code: %s\n", code)
			fmt.Fprintln(out, "  Write it down. It is shown only once.")
			return nil
		},
	}
	cmd.Flags().StringVar(&pw, "password", "", "password (prompted when empty)")
	return cmd
}

func newAuthLoginCmd(a *app) *cobra.Command {
	var pw string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Unlock the journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.password(cmd, pw, "Password: ")
			if err != nil {
				return err
			}
			if _, err := a.gate.Login(p); err != nil {
				return fmt.Errorf("login: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✓ Logged in")
			return nil
		},
	}
	cmd.Flags().StringVar(&pw, "password", "", "password (prompted when empty)")
	return cmd
}

func newAuthLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Lock the journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.gate.Logout(); err != nil {
				return fmt.Errorf("logout: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✓ Logged out")
			return nil
		},
	}
}

func newAuthStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether a password is set and the session is valid",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configured, err := a.gate.IsConfigured()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !configured {
				fmt.Fprintln(out, "No password set")
				return nil
			}
			ok, err := a.gate.Authenticated()
			if err != nil {
				return err
			}
			if ok {
				fmt.Fprintln(out, "Unlocked")
			} else {
				fmt.Fprintln(out, "Locked")
			}
			return nil
		},
	}
}

func newAuthRecoverCmd(a *app) *cobra.Command {
	var pw string
	cmd := &cobra.Command{
		Use:   "recover <code>",
		Short: "Reset the password with the recovery code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.password(cmd, pw, "New password: ")
			if err != nil {
				return err
			}
			code, err := a.gate.Recover(args[0], p)
			if err != nil {
				return fmt.Errorf("recover: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "✓ Password reset. Log in again.")
			fmt.Fprintf(out, "  New recovery code: %s\n", code)
			return nil
		},
	}
	cmd.Flags().StringVar(&pw, "password", "", "new password (prompted when empty)")
	return cmd
}

func newAuthPasswdCmd(a *app) *cobra.Command {
	var current, next string
	cmd := &cobra.Command{
		Use:   "passwd",
		Short: "Change the password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cur, err := a.password(cmd, current, "Current password: ")
			if err != nil {
				return err
			}
			n, err := a.password(cmd, next, "New password: ")
			if err != nil {
				return err
			}
			if err := a.gate.ChangePassword(cur, n); err != nil {
				return fmt.Errorf("passwd: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✓ Password changed")
			return nil
		},
	}
	cmd.Flags().StringVar(&current, "current", "", "current password (prompted when empty)")
	cmd.Flags().StringVar(&next, "new", "", "new password (prompted when empty)")
	return cmd
}
