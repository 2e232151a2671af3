package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/go-wii/wiiso/pkg/wiso"
)

var flagCatPartition int

var catCmd = &cobra.Command{
	Use:   "cat IMAGE FILE...",
	Short: "Write the contents of one or more files to stdout",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		img, err := wiso.OpenWithLogger(args[0], log)
		if err != nil {
			return err
		}
		defer img.Close()

		part, err := img.OpenPartition(flagCatPartition)
		if err != nil {
			return err
		}

		for _, fpath := range args[1:] {
			data, err := part.ReadFile(fpath)
			if err != nil {
				return err
			}
			if _, err := os.Stdout.Write(data); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	catCmd.Flags().IntVarP(&flagCatPartition, "partition", "p", 0, "partition index")
}
