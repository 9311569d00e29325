package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrlokans/berthplan/internal/quay"
)

func newConvertCommand() *cobra.Command {
	var asBit bool

	cmd := &cobra.Command{
		Use:   "convert <meters|notation>",
		Short: "Convert between quay meters and bit notation",
		Long: "Convert a quay position. Arguments with a signed offset such as 36+04 are\n" +
			"read as bit notation, plain numbers as meters unless --bit is given.",
		Example: "  berthplan convert 320\n" +
			"  berthplan convert 36+04\n" +
			"  berthplan convert --bit 40",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meters, err := parsePosition(args[0], asBit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "meters:   %g\n", meters)
			fmt.Fprintf(out, "notation: %s\n", quay.MetersToBitNotation(meters))
			fmt.Fprintf(out, "position: %.3f\n", quay.MetersToBitPosition(meters))
			fmt.Fprintf(out, "berth:    %d\n", quay.ClassifyBerth(meters, meters))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asBit, "bit", false, "read a plain number as a bit rather than meters")
	return cmd
}

func parsePosition(arg string, asBit bool) (float64, error) {
	if asBit || (len(arg) > 1 && strings.ContainsAny(arg[1:], "+-")) {
		meters, ok := quay.BitNotationToMeters(arg)
		if !ok {
			return 0, fmt.Errorf("invalid bit notation: %q", arg)
		}
		return meters, nil
	}

	meters, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return 0, fmt.Errorf("not a meter value: %q", arg)
	}
	return meters, nil
}
