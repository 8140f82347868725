package app

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newThumbCmd(o *rootOptions) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "thumb <index|path>...",
		Short: "Print the cached thumbnail for files, generating it on a miss",
		Long: `Without -o the thumbnail is looked up in the cache directory and
generated there when missing. With -o it is generated straight to the
given file and the cache is left untouched.
An argument made only of digits is an index into the listing; name a
file called 3 as ./3.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if out != "" && len(args) > 1 {
				return fmt.Errorf("thumb: -o takes a single source")
			}
			e, err := o.openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			for _, arg := range args {
				src, err := resolveArg(e.session, arg)
				if err != nil {
					return err
				}
				var thumb string
				if out != "" {
					thumb, err = e.cache.Generate(cmd.Context(), src, out)
				} else {
					thumb, err = e.cache.Get(cmd.Context(), src)
				}
				if err != nil {
					return fmt.Errorf("thumb %s: %w", src, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), thumb)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "write the thumbnail to this file instead of the cache")
	return cmd
}
