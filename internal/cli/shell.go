package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcoot/jukebox/internal/factory"
	"github.com/mcoot/jukebox/internal/metrics"
	"github.com/mcoot/jukebox/internal/model"
)

const shellHelp = `Commands:
  login <user> [credential]  sign in (prompts for the credential when omitted)
  logout                     sign out
  play <title>               queue a song
  status                     plays and time remaining today
  catalog                    list songs
  queue                      list queued songs
  next                       take the next song off the queue
  midnight                   simulate midnight
  save                       save state now
  metrics                    show counters
  help                       show this help
  quit                       save and exit`

func newShellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Run the interactive kiosk",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output, cmd.OutOrStdout(), cmd.ErrOrStderr())
			return NewShell(app, cmd.InOrStdin(), cmd.OutOrStdout(), out).Run(cmd.Context())
		},
	}
}

// Shell is a line-oriented kiosk session
type Shell struct {
	app *factory.App
	in  *bufio.Reader
	w   io.Writer
	out *Output
}

// NewShell creates a Shell reading commands from in
func NewShell(a *factory.App, in io.Reader, w io.Writer, out *Output) *Shell {
	return &Shell{app: a, in: bufio.NewReader(in), w: w, out: out}
}

// Run reads commands until quit or end of input
func (s *Shell) Run(ctx context.Context) error {
	_, _ = fmt.Fprintln(s.w, "Welcome to the jukebox. Type 'help' for commands.")
	for {
		s.prompt()
		line, err := readLine(s.in)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		name, rest, _ := strings.Cut(strings.TrimSpace(string(line)), " ")
		rest = strings.TrimSpace(rest)
		if name == "quit" || name == "exit" {
			return nil
		}
		if err := s.dispatch(ctx, name, rest); err != nil {
			s.out.PrintError(err)
		}
	}
}

func (s *Shell) prompt() {
	if account, err := s.app.Kiosk.CurrentAccount(); err == nil {
		_, _ = fmt.Fprintf(s.w, "%s> ", account.Username())
		return
	}
	_, _ = fmt.Fprint(s.w, "> ")
}

func (s *Shell) dispatch(ctx context.Context, name, rest string) error {
	k := s.app.Kiosk
	switch name {
	case "":
		return nil
	case "help":
		_, _ = fmt.Fprintln(s.w, shellHelp)
	case "login":
		return s.login(rest)
	case "logout":
		k.Logout()
		s.out.PrintMessage("Signed out.")
	case "play":
		if rest == "" {
			return errors.New("usage: play <title>")
		}
		decision, _ := k.Play(rest)
		s.out.Print(newPlayResult(rest, decision))
	case "status":
		k.CheckDayAndMaybeReset()
		status, err := k.Status()
		if err != nil {
			return err
		}
		s.out.Print(status)
	case "catalog":
		k.CheckDayAndMaybeReset()
		s.out.Print(newCatalogView(k.Catalog()))
	case "queue":
		s.out.Print(QueueView{Entries: k.Queued()})
	case "next":
		entry, err := k.NextQueued()
		if err != nil {
			return err
		}
		s.out.PrintMessage(fmt.Sprintf("Now playing: %s by %s", entry.Title, entry.Artist))
	case "midnight":
		k.AdvanceSimulatedDay()
		if k.CheckDayAndMaybeReset() {
			s.out.PrintMessage("Midnight passed. Daily counters reset.")
		}
	case "save":
		if err := k.SnapshotAll(ctx); err != nil {
			return err
		}
		s.out.PrintMessage("State saved.")
	case "metrics":
		if s.app.Registry == nil {
			return errors.New("metrics are disabled")
		}
		samples, err := metrics.Collect(s.app.Registry)
		if err != nil {
			return err
		}
		s.out.Print(samples)
	default:
		return fmt.Errorf("unknown command %q, type 'help'", name)
	}
	return nil
}

func (s *Shell) login(rest string) error {
	user, credential, _ := strings.Cut(rest, " ")
	if user == "" {
		return errors.New("usage: login <user> [credential]")
	}

	var secret []byte
	if credential != "" {
		secret = []byte(credential)
	} else {
		_, _ = fmt.Fprint(s.w, "Credential: ")
		line, err := readLine(s.in)
		if err != nil {
			return err
		}
		secret = line
	}

	account, err := s.app.Kiosk.Authenticate(user, secret)
	if err != nil {
		if errors.Is(err, model.ErrAuthFailed) {
			return errors.New("invalid username or credential")
		}
		return err
	}
	s.out.PrintMessage("Signed in as " + account.Username() + ".")
	return nil
}
