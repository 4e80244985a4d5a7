package main

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/declarr/declarr/internal/config"
	"github.com/declarr/declarr/internal/remotemap"
)

func newDumpRemoteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "dump-remote",
		Short: "Print the instance's current configuration in config file form",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger(opts.logLevel)
			if err != nil {
				return err
			}

			_, run, err := connect(cmd.Context(), log, opts)
			if err != nil {
				return err
			}

			remote, err := config.FetchRemote(cmd.Context(), run)
			if err != nil {
				return err
			}

			settings, err := remotemap.FromStruct(remote)
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(map[string]any{"settings": settings})
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
