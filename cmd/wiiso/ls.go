package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-wii/wiiso/pkg/wiso"
)

var flagLSLong bool
var flagLSPartition int

var lsCmd = &cobra.Command{
	Use:   "ls IMAGE",
	Short: "List every file in a partition",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		img, err := wiso.OpenWithLogger(args[0], log)
		if err != nil {
			return err
		}
		defer img.Close()

		part, err := img.OpenPartition(flagLSPartition)
		if err != nil {
			return err
		}

		files, err := part.Files()
		if err != nil {
			return err
		}

		if !flagLSLong {
			for _, f := range files {
				log.Printf("%s", f.Path)
			}
			return nil
		}

		table := [][]string{{"", ""}}
		for _, f := range files {
			table = append(table, []string{fmt.Sprintf("%s", PrintableSize(f.Length)), f.Path})
		}
		PlainTable(table)
		return nil
	},
}

func init() {
	lsCmd.Flags().BoolVarP(&flagLSLong, "long", "l", false, "show file sizes")
	lsCmd.Flags().IntVarP(&flagLSPartition, "partition", "p", 0, "partition index")
}
