package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"omibyte.io/hilcore/chips/nrf52"
	"omibyte.io/hilcore/mmio"
	"omibyte.io/hilcore/sim"
	"omibyte.io/hilcore/svd"
)

var ErrLayoutMismatch = errors.New("register layout does not match the device description")

var (
	regmapOpts = struct {
		svd        string
		peripheral string
		pkg        string
		prefix     string
		output     string
	}{}

	regmapCmd = &cobra.Command{
		Use:   "regmap",
		Short: "Check or generate register layouts from an SVD file",
	}

	regmapCheckCmd = &cobra.Command{
		Use:   "check",
		Short: "Verify the driver register layouts against an SVD file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dev, err := svd.ParseFile(regmapOpts.svd)
			if err != nil {
				return err
			}
			return checkLayouts(cmd.OutOrStdout(), dev, driverLayouts())
		},
	}

	regmapGenCmd = &cobra.Command{
		Use:   "gen",
		Short: "Generate field declarations for one peripheral",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dev, err := svd.ParseFile(regmapOpts.svd)
			if err != nil {
				return err
			}
			p, err := dev.Find(regmapOpts.peripheral)
			if err != nil {
				return err
			}
			var w io.Writer = cmd.OutOrStdout()
			if len(regmapOpts.output) > 0 {
				f, err := os.Create(regmapOpts.output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return dev.Generate(w, regmapOpts.pkg, regmapOpts.prefix, p)
		},
	}
)

func init() {
	regmapCmd.PersistentFlags().StringVar(&regmapOpts.svd, "svd", "", "SVD file describing the device")
	_ = regmapCmd.MarkPersistentFlagRequired("svd")

	regmapGenCmd.Flags().StringVarP(&regmapOpts.peripheral, "peripheral", "p", "COMP", "peripheral to generate")
	regmapGenCmd.Flags().StringVar(&regmapOpts.pkg, "pkg", "nrf52", "package name of the generated file")
	regmapGenCmd.Flags().StringVar(&regmapOpts.prefix, "prefix", "", "prefix of every generated name")
	regmapGenCmd.Flags().StringVarP(&regmapOpts.output, "output", "o", "", "output file, stdout when empty")

	regmapCmd.AddCommand(regmapCheckCmd, regmapGenCmd)
}

// driverLayouts declares the driver register blocks at their reset
// addresses on a scratch bus.
func driverLayouts() []mmio.Layout {
	var r mmio.Regions
	bus := sim.NewBus()
	var layouts []mmio.Layout
	if b, err := nrf52.CompBlock(&r, bus, nrf52.CompBase); err == nil {
		layouts = append(layouts, b.Layout())
	}
	if b, err := nrf52.GPIOBlock(&r, bus, nrf52.P0Base); err == nil {
		layouts = append(layouts, b.Layout())
	}
	return layouts
}

func checkLayouts(w io.Writer, dev *svd.Device, layouts []mmio.Layout) error {
	var errs []error
	for _, l := range layouts {
		p, err := dev.Find(l.Name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		mismatches := dev.Verify(l, p)
		if len(mismatches) == 0 {
			fmt.Fprintf(w, "%s %s: %d fields\n", color.GreenString("ok"), l.Name, len(l.Fields))
			continue
		}
		for _, m := range mismatches {
			fmt.Fprintf(w, "%s %s %v\n", color.RedString("mismatch"), l.Name, m)
		}
		errs = append(errs, fmt.Errorf("%w: %s has %d differences", ErrLayoutMismatch, l.Name, len(mismatches)))
	}
	return errors.Join(errs...)
}
