package cli

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

func newCatalogCmd() *cobra.Command {
	var user, credential string

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the songs available to play",
		Long: `List the songs available to play.

With --user, each song is marked with whether that account can play it now.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if user != "" {
				if err := signIn(cmd, user, credential); err != nil {
					return err
				}
			}
			app.Kiosk.CheckDayAndMaybeReset()
			out := NewOutput(cfg.Output, cmd.OutOrStdout(), cmd.ErrOrStderr())
			out.Print(newCatalogView(app.Kiosk.Catalog()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "", "Mark songs this account can play")
	cmd.Flags().StringVar(&credential, "credential", "", "Credential; read from stdin when omitted")
	return cmd
}

func newStatusCmd() *cobra.Command {
	var user, credential string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show an account's plays and time remaining today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := signIn(cmd, user, credential); err != nil {
				return err
			}
			app.Kiosk.CheckDayAndMaybeReset()

			status, err := app.Kiosk.Status()
			if err != nil {
				return err
			}
			out := NewOutput(cfg.Output, cmd.OutOrStdout(), cmd.ErrOrStderr())
			out.Print(status)
			return nil
		},
	}

	addCredentialFlags(cmd, &user, &credential)
	return cmd
}

func newPlayCmd() *cobra.Command {
	var user, credential string

	cmd := &cobra.Command{
		Use:   "play <title>",
		Short: "Queue a song for the signed-in account",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := signIn(cmd, user, credential); err != nil {
				return err
			}

			title := strings.Join(args, " ")
			decision, _ := app.Kiosk.Play(title)

			// Denials are expected outcomes, reported without failing the command
			out := NewOutput(cfg.Output, cmd.OutOrStdout(), cmd.ErrOrStderr())
			out.Print(newPlayResult(title, decision))
			return nil
		},
	}

	addCredentialFlags(cmd, &user, &credential)
	return cmd
}

func newQueueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Show songs waiting to play",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output, cmd.OutOrStdout(), cmd.ErrOrStderr())
			out.Print(QueueView{Entries: app.Kiosk.Queued()})
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "next",
		Short: "Remove and show the song due to play next",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, err := app.Kiosk.NextQueued()
			if err != nil {
				return err
			}
			out := NewOutput(cfg.Output, cmd.OutOrStdout(), cmd.ErrOrStderr())
			out.Print(entry)
			return nil
		},
	})

	return cmd
}

func newResetStateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-state",
		Short: "Delete saved state so the next run starts from the built-in seed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Discard(cmd.Context()); err != nil {
				return err
			}
			out := NewOutput(cfg.Output, cmd.OutOrStdout(), cmd.ErrOrStderr())
			out.PrintMessage("Saved state deleted.")
			return nil
		},
	}
}

func addCredentialFlags(cmd *cobra.Command, user, credential *string) {
	cmd.Flags().StringVarP(user, "user", "u", "", "Username (required)")
	cmd.Flags().StringVar(credential, "credential", "", "Credential; read from stdin when omitted")
	_ = cmd.MarkFlagRequired("user")
}

// signIn authenticates user, reading the credential from stdin when not given
func signIn(cmd *cobra.Command, user, credential string) error {
	var secret []byte
	if credential != "" {
		secret = []byte(credential)
	} else {
		line, err := readLine(bufio.NewReader(cmd.InOrStdin()))
		if err != nil {
			return fmt.Errorf("read credential: %w", err)
		}
		secret = line
	}

	_, err := app.Kiosk.Authenticate(user, secret)
	return err
}

// readLine returns the next line without its terminator
func readLine(r *bufio.Reader) ([]byte, error) {
	line, err := r.ReadBytes('\n')
	if err != nil && (err != io.EOF || len(line) == 0) {
		return nil, err
	}
	return bytes.TrimRight(line, "\r\n"), nil
}
