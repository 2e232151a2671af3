package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-wii/wiiso/pkg/wiso"
)

var infoCmd = &cobra.Command{
	Use:   "info IMAGE",
	Short: "Print the outer disc header and partition table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		img, err := wiso.OpenWithLogger(args[0], log)
		if err != nil {
			return err
		}
		defer img.Close()

		h := img.Header()
		log.Printf("game id:    %s", string(h.GameID))
		log.Printf("title:      %s", h.GameTitle)
		log.Printf("disc:       #%d v%d", h.DiscNum, h.DiscVersion)

		table := [][]string{{"", "", ""}}
		for i, e := range img.Partitions() {
			table = append(table, []string{
				fmt.Sprintf("%d", i),
				e.PartType.String(),
				fmt.Sprintf("0x%X", e.Offset),
			})
		}
		PlainTable(table)
		return nil
	},
}
