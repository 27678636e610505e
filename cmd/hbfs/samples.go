package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/furkanemreguler/Harder-Better-Faster-Stronger/internal/audio"
	"github.com/furkanemreguler/Harder-Better-Faster-Stronger/internal/config"
	"github.com/furkanemreguler/Harder-Better-Faster-Stronger/internal/store"
	"github.com/furkanemreguler/Harder-Better-Faster-Stronger/internal/trigger"
)

// openStore loads config and opens the store it points at.
func openStore(configPath string) (*store.Store, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	st, err := store.New(cfg.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

func newSamplesCmd(configPath *string) *cobra.Command {
	samplesCmd := &cobra.Command{
		Use:   "samples",
		Short: "Show or change which clip each trigger plays",
		Long: `Show or change which clip each trigger plays.

Keys are Left/INDEX .. Left/PINKY, Right/INDEX .. Right/PINKY and ThumbsTogether.
Relative file names resolve against audio.dir.`,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the sample mapping",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(*configPath)
			if err != nil {
				return err
			}
			defer st.Close()

			samples, err := st.Samples().List()
			if err != nil {
				return err
			}
			return printSamples(cmd.OutOrStdout(), samples)
		},
	}

	setCmd := &cobra.Command{
		Use:   "set <key> <file> [label]",
		Short: "Bind a clip to a trigger",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := trigger.ParseKey(args[0])
			if err != nil {
				return err
			}

			st, err := openStore(*configPath)
			if err != nil {
				return err
			}
			defer st.Close()

			label := audio.ClipName(args[1])
			if len(args) == 3 {
				label = args[2]
			}
			smp := &store.Sample{Key: k, Label: label, File: args[1]}
			if err := st.Samples().Set(smp); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%s)\n", k, smp.File, smp.Label)
			return nil
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <key>",
		Short: "Unbind a trigger so it plays nothing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := trigger.ParseKey(args[0])
			if err != nil {
				return err
			}

			st, err := openStore(*configPath)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.Samples().Delete(k); err != nil {
				return fmt.Errorf("delete %s: %w", k, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s unbound\n", k)
			return nil
		},
	}

	resetCmd := &cobra.Command{
		Use:   "reset <key>",
		Short: "Restore a trigger's built-in clip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := trigger.ParseKey(args[0])
			if err != nil {
				return err
			}

			st, err := openStore(*configPath)
			if err != nil {
				return err
			}
			defer st.Close()

			smp, err := st.Samples().Reset(k)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%s)\n", k, smp.File, smp.Label)
			return nil
		},
	}

	samplesCmd.AddCommand(listCmd, setCmd, deleteCmd, resetCmd)
	return samplesCmd
}

func printSamples(w io.Writer, samples []*store.Sample) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tLABEL\tFILE")
	for _, s := range samples {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", s.Key, s.Label, s.File)
	}
	return tw.Flush()
}
