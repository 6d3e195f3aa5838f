package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mithrel/lessonplan/internal/keys"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the backend bearer token",
	}
	cmd.AddCommand(newAuthSetCmd())
	cmd.AddCommand(newAuthClearCmd())
	cmd.AddCommand(newAuthStatusCmd())
	markNoApp(cmd)
	return cmd
}

func newAuthSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set [token]",
		Short: "Store the token (prompted when omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := keys.Open(getConfig(cmd), configPath(cmd))
			if err != nil {
				return err
			}
			token := ""
			if len(args) == 1 {
				token = args[0]
			} else {
				if token, err = readToken(cmd); err != nil {
					return err
				}
			}
			token = strings.TrimSpace(token)
			if token == "" {
				return errors.New("empty token")
			}
			if err := store.Put(token); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "token stored")
			return nil
		},
	}
}

func newAuthClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := keys.Open(getConfig(cmd), configPath(cmd))
			if err != nil {
				return err
			}
			if err := store.Delete(); err != nil && !errors.Is(err, keys.ErrKeyNotFound) {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "token cleared")
			return nil
		},
	}
}

func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show where the token is kept and whether it is set",
		RunE: func(cmd *cobra.Command, args []string) error {
			v := getConfig(cmd)
			provider := v.GetString("auth.key_provider")
			token, err := keys.Resolve(v)
			switch {
			case errors.Is(err, keys.ErrKeyNotFound), err == nil && token == "":
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "provider %s: no token\n", provider)
			case err != nil:
				return err
			default:
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "provider %s: token set (%s)\n", provider, mask(token))
			}
			return nil
		},
	}
}

func readToken(cmd *cobra.Command) (string, error) {
	if f, ok := cmd.InOrStdin().(interface{ Fd() uintptr }); ok && term.IsTerminal(int(f.Fd())) {
		_, _ = fmt.Fprint(cmd.ErrOrStderr(), "Token: ")
		b, err := term.ReadPassword(int(f.Fd()))
		_, _ = fmt.Fprintln(cmd.ErrOrStderr())
		return string(b), err
	}
	var token string
	_, err := fmt.Fscanln(cmd.InOrStdin(), &token)
	return token, err
}

func mask(token string) string {
	if len(token) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(token)-4) + token[len(token)-4:]
}
