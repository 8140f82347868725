package app

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"

	"github.com/justyntemme/thumbnav/internal/store"
)

func newConfigCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the configuration",
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a fresh default config, backing up the current one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := o.loadConfig()
			if err != nil {
				return err
			}
			backup, err := mgr.GenerateConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if backup != "" {
				fmt.Fprintf(out, "backup: %s\n", backup)
			}
			fmt.Fprintf(out, "wrote %s\n", mgr.Path())
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective config and the remembered session settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := o.openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			out := cmd.OutOrStdout()
			data, err := json.MarshalIndent(e.cfg, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(out, headerStyle.Render("# "+e.mgr.Path()))
			fmt.Fprintln(out, string(data))

			settings, err := e.db.Settings()
			if err != nil {
				return err
			}
			keys := make([]string, 0, len(settings))
			for k := range settings {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintln(out, headerStyle.Render("# session"))
			for _, k := range keys {
				fmt.Fprintf(out, "%s = %s\n", k, settings[k])
			}
			return nil
		},
	}

	set := &cobra.Command{
		Use:   "set <hidden|cache-dir> <value>",
		Short: "Change a setting in the config file",
		Long: `hidden takes on/off (or true/false) and also replaces the remembered
session value, so the next listing follows it. cache-dir takes a path;
~ is expanded and relative paths are taken from the working directory.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := o.openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			switch key, value := args[0], args[1]; key {
			case "hidden":
				show, err := parseSwitch(value)
				if err != nil {
					return err
				}
				if err := e.mgr.SetShowHidden(show); err != nil {
					return err
				}
				return e.db.SaveSetting(store.SettingShowHidden, strconv.FormatBool(show))
			case "cache-dir":
				dir, err := homedir.Expand(value)
				if err != nil {
					return err
				}
				if dir, err = filepath.Abs(dir); err != nil {
					return err
				}
				return e.mgr.SetCacheDir(dir)
			default:
				return fmt.Errorf("config set: unknown key %q", key)
			}
		},
	}

	cmd.AddCommand(initCmd, show, set)
	return cmd
}

func parseSwitch(v string) (bool, error) {
	switch v {
	case "on":
		return true, nil
	case "off":
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("want on or off, got %q", v)
	}
	return b, nil
}
