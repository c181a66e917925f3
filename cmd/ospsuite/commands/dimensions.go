package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	apperrors "github.com/Yuri05/OSPSuite.Core/internal/errors"
	"github.com/Yuri05/OSPSuite.Core/internal/exporter"
)

func (a *app) dimensionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dimensions",
		Short: "Query the unit catalog",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List dimensions and their units",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, dim := range a.registry.Dimensions() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s [%s]: %s\n",
					dim.Name(), dim.BaseUnit().Name, strings.Join(dim.UnitNames(), ", "))
			}
			return nil
		},
	}

	convert := &cobra.Command{
		Use:   "convert <value> <from> <to>",
		Short: "Convert a value between two units of the same dimension",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return apperrors.NewAppValidationError(fmt.Sprintf("invalid value %q", args[0]))
			}
			dim, err := a.registry.LookupUnit(args[1])
			if err != nil {
				return err
			}
			base, err := a.registry.ConvertUnitToBase(dim, args[1], value)
			if err != nil {
				return err
			}
			converted, err := a.registry.ConvertBaseToUnit(dim, args[2], base)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", exporter.FormatFloat(converted), args[2])
			return nil
		},
	}

	cmd.AddCommand(list, convert)
	return cmd
}
