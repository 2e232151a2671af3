package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/go-wii/wiiso/pkg/wiso"
)

var flagExtractPartition int

var extractCmd = &cobra.Command{
	Use:   "extract IMAGE DEST",
	Short: "Extract every file in a partition into DEST",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		img, err := wiso.OpenWithLogger(args[0], log)
		if err != nil {
			return err
		}
		defer img.Close()

		part, err := img.OpenPartition(flagExtractPartition)
		if err != nil {
			return err
		}

		files, err := part.Files()
		if err != nil {
			return err
		}

		progress := log.NewProgress("extracting", "%", int64(len(files)))
		defer progress.Finish(true)

		for _, f := range files {
			dest := filepath.Join(args[1], filepath.FromSlash(f.Path))
			if err := os.MkdirAll(filepath.Dir(dest), 0777); err != nil {
				return err
			}

			data, err := part.ReadFile(f.Path)
			if err != nil {
				return err
			}
			if err := os.WriteFile(dest, data, 0666); err != nil {
				return err
			}
			progress.Increment(1)
		}
		return nil
	},
}

func init() {
	extractCmd.Flags().IntVarP(&flagExtractPartition, "partition", "p", 0, "partition index")
}
