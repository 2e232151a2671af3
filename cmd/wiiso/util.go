package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/sisatech/tablewriter"
)

// NumbersMode determines how PrintableSize renders.
var NumbersMode int

// SetNumbersMode parses s into NumbersMode ("short", "dec"/"decimal", "hex"/"hexadecimal").
func SetNumbersMode(s string) error {
	switch s {
	case "", "short":
		NumbersMode = 0
	case "dec", "decimal":
		NumbersMode = 1
	case "hex", "hexadecimal":
		NumbersMode = 2
	default:
		return fmt.Errorf("numbers mode must be one of 'dec', 'hex', or 'short'")
	}
	return nil
}

// PrintableSize renders an integer byte count according to NumbersMode.
type PrintableSize int64

func (c PrintableSize) String() string {
	switch NumbersMode {
	case 0:
		x := int64(c)
		if x == 0 {
			return "0"
		}
		var units int
		suffixes := []string{"", "K", "M", "G"}
		for x%1024 == 0 && units < len(suffixes)-1 {
			x /= 1024
			units++
		}
		return fmt.Sprintf("%d%s", x, suffixes[units])
	case 1:
		return fmt.Sprintf("%d", int64(c))
	case 2:
		return fmt.Sprintf("%#x", int64(c))
	default:
		panic("invalid NumbersMode")
	}
}

// PlainTable prints rows[1:] as a borderless, left-aligned grid; rows[0] is
// ignored, matching the header-placeholder convention the callers below use.
func PlainTable(rows [][]string) {
	if len(rows) == 0 {
		panic(errors.New("no rows provided"))
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.SetColumnSeparator("")
	for i := 1; i < len(rows); i++ {
		table.Append(rows[i])
	}
	table.Render()
}
