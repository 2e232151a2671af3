package main

import (
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/go-wii/wiiso/pkg/copybuild"
	"github.com/go-wii/wiiso/pkg/discbuild"
	"github.com/go-wii/wiiso/pkg/wiso"
)

var flagBuildPartition int

// buildCmd repacks a source disc image into a new one, partition by
// partition, through the copy-mode builder pipeline. Building a disc purely
// from a loose directory tree (no pre-existing ticket/TMD/certificate chain
// to reuse) is out of scope for this command; every rebuilt partition
// borrows its trust chain from the corresponding source partition.
var buildCmd = &cobra.Command{
	Use:   "build SOURCE_IMAGE OUT_IMAGE",
	Short: "Rebuild a disc image from a source image, copying each partition through the builder pipeline",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := wiso.OpenWithLogger(args[0], log)
		if err != nil {
			return err
		}
		defer src.Close()

		out, err := os.Create(args[1])
		if err != nil {
			return err
		}
		defer out.Close()

		region := discbuild.NewRegion(3) // region-free; the source image's region descriptor is not read
		b := discbuild.NewBuilder(src.Header(), region)
		b.SetLogger(log)

		for i, entry := range src.Partitions() {
			if flagBuildPartition >= 0 && i != flagBuildPartition {
				continue
			}

			part, err := src.OpenPartition(i)
			if err != nil {
				return err
			}

			boot, err := part.ReadBoot()
			if err != nil {
				return err
			}
			bi2, err := part.ReadBI2()
			if err != nil {
				return err
			}
			apploader, err := part.ReadApploader()
			if err != nil {
				return err
			}
			dol, err := part.ReadDOL()
			if err != nil {
				return err
			}
			fst, err := part.FST()
			if err != nil {
				return err
			}

			content, err := copybuild.New(fst, part.PlaintextReader())
			if err != nil {
				return err
			}

			if part.Header().Ticket.TicketID == nil {
				part.Header().Ticket.TicketID = ticketIDFromUUID()
			}

			progress := log.NewProgress("rebuilding partition "+entry.PartType.String(), "%", int64(len(fst.ListFiles())))
			err = b.AddPartition(out, discbuild.PartitionSource{
				Header:       part.Header(),
				TMD:          part.TMD(),
				Certs:        part.Certificates(),
				InternalDisc: boot,
				BI2:          bi2,
				Apploader:    apploader,
				DOL:          dol,
				Content:      content,
				Progress: func(done, total int) {
					if total > 0 {
						progress.Increment(1)
					}
				},
			}, entry.PartType)
			progress.Finish(err == nil)
			if err != nil {
				return err
			}
		}

		return b.Finish(out)
	},
}

func init() {
	buildCmd.Flags().IntVarP(&flagBuildPartition, "partition", "p", -1, "only rebuild this partition index (-1 for all)")
}

func ticketIDFromUUID() []byte {
	id := uuid.New()
	b := id[:8]
	return b
}
