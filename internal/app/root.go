// Package app wires configuration, the thumbnail cache, the settings
// store and a browser session behind the thumbnav command line.
package app

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/justyntemme/thumbnav/internal/debug"
)

type rootOptions struct {
	configPath string
	debug      string
	dir        string
	hidden     bool
}

// NewRootCmd builds the command tree. Each call returns fresh flag state.
func NewRootCmd() *cobra.Command {
	o := &rootOptions{}

	root := &cobra.Command{
		Use:   "thumbnav",
		Short: "Directory browser with a persistent thumbnail cache",
		Long: `thumbnav lists, opens, renames, copies and moves files and keeps
preview images for pictures, PDFs and videos in a shared cache directory.

Examples:
  thumbnav ls -l
  thumbnav open 3
  thumbnav cp photo.jpg ~/backup
  thumbnav thumb clip.mp4
  thumbnav cache ls
  thumbnav config set hidden on`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			debug.Logger().SetOutput(cmd.ErrOrStderr())
			if o.debug != "" {
				debug.Configure(o.debug)
				logrus.SetLevel(logrus.DebugLevel)
			}
			debug.Log(debug.APP, "thumbnav %s, debug categories %v", cmd.Name(), debug.ListEnabled())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&o.configPath, "config", "", "config file (default is ~/.config/thumbnav/config.json)")
	pf.StringVar(&o.debug, "debug", "", "debug categories: all, none or a list like FS,THUMB")
	pf.StringVarP(&o.dir, "dir", "C", "", "start directory (overrides the restored last path)")
	pf.BoolVarP(&o.hidden, "hidden", "a", false, "show hidden entries")

	root.AddCommand(
		newLsCmd(o),
		newOpenCmd(o),
		newRenameCmd(o),
		newCpCmd(o),
		newMvCmd(o),
		newThumbCmd(o),
		newCacheCmd(o),
		newConfigCmd(o),
		newWatchCmd(o),
		newShellCmd(o),
	)
	return root
}

// Execute runs the command line until ctx is cancelled.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}
