package app

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/justyntemme/thumbnav/internal/browser"
)

const shellHelp = `commands:
  ls                 list with indices
  cd <index|path>    enter a directory (open on a file)
  up                 parent directory
  copy <index>       put an entry on the clipboard
  cut <index>        same, pasting moves it
  paste              paste into the current directory
  rename <i> <name>  rename an entry
  thumb <index>      thumbnail path
  hidden on|off      toggle dotfiles
  clip               show the clipboard
  pwd, help, quit`

func newShellCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Browse interactively with a persistent clipboard",
		Long: `Reads commands from stdin. Indices refer to the last printed listing;
when the directory changed in the meantime the command is refused and the
listing has to be looked at again.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := o.openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			return runShell(cmd.InOrStdin(), cmd.OutOrStdout(), e.session)
		},
	}
}

func runShell(in io.Reader, out io.Writer, s *browser.Session) error {
	lo := &lsOptions{}
	show := func() {
		listing, _ := s.List()
		printListing(out, s, listing, lo)
	}
	show()

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, mutedStyle.Render(s.Dir())+"> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		var err error
		switch cmd, rest := fields[0], fields[1:]; cmd {
		case "quit", "exit", "q":
			return nil
		case "help", "?":
			fmt.Fprintln(out, shellHelp)
		case "pwd":
			fmt.Fprintln(out, s.Dir())
		case "ls":
			show()
		case "up":
			if err = s.Up(); err == nil {
				show()
			}
		case "cd", "open":
			err = withArg(rest, 1, func() error {
				before := s.Dir()
				var err error
				if i, ok := parseIndex(rest[0]); ok {
					err = s.Open(i)
				} else {
					err = s.OpenPath(rest[0])
				}
				if err == nil && s.Dir() != before {
					show()
				}
				return err
			})
		case "copy", "cut":
			err = withIndex(rest, 1, func(i int) error {
				if cmd == "cut" {
					return s.Cut(i)
				}
				return s.Copy(i)
			})
		case "paste":
			if err = s.Paste(); err == nil {
				show()
			}
		case "rename":
			err = withIndex(rest, 2, func(i int) error {
				if err := s.Rename(i, rest[1]); err != nil {
					return err
				}
				show()
				return nil
			})
		case "thumb":
			err = withIndex(rest, 1, func(i int) error {
				if thumb := s.Thumbnail(i); thumb != "" {
					fmt.Fprintln(out, thumb)
				} else {
					fmt.Fprintln(out, mutedStyle.Render("no thumbnail"))
				}
				return nil
			})
		case "hidden":
			err = withArg(rest, 1, func() error {
				on, err := parseSwitch(rest[0])
				if err != nil {
					return fmt.Errorf("hidden: %w", err)
				}
				s.SetShowHidden(on)
				show()
				return nil
			})
		case "clip":
			clip := s.Clipboard()
			if clip.Empty() {
				fmt.Fprintln(out, mutedStyle.Render("clipboard empty"))
			} else {
				fmt.Fprintf(out, "%s %s\n", clip.Mode, clip.Path)
			}
		default:
			err = fmt.Errorf("unknown command %q, try help", cmd)
		}

		if err != nil {
			fmt.Fprintln(out, errorStyle.Render("error: "+err.Error()))
			if errors.Is(err, browser.ErrStaleListing) {
				show()
			}
		}
	}
}

func withArg(args []string, n int, fn func() error) error {
	if len(args) != n {
		return fmt.Errorf("expected %d argument(s)", n)
	}
	return fn()
}

func withIndex(args []string, n int, fn func(i int) error) error {
	if len(args) != n {
		return fmt.Errorf("expected %d argument(s)", n)
	}
	i, ok := parseIndex(args[0])
	if !ok {
		return fmt.Errorf("%q is not an index", args[0])
	}
	return fn(i)
}
