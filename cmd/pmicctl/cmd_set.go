package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func init() {
	cmdSet.AddCommand(
		setpointCommand("charge-current", "mA", "Set the fast charge current",
			func(ctx context.Context, v *wrapperspb.UInt32Value) (*wrapperspb.UInt32Value, error) {
				return chargerClient(ctx).SetChargeCurrent(ctx, v)
			}),
		setpointCommand("charge-voltage", "mV", "Set the charge target voltage",
			func(ctx context.Context, v *wrapperspb.UInt32Value) (*wrapperspb.UInt32Value, error) {
				return chargerClient(ctx).SetChargeVoltage(ctx, v)
			}),
		setpointCommand("input-limit", "mA", "Set the input current limit",
			func(ctx context.Context, v *wrapperspb.UInt32Value) (*wrapperspb.UInt32Value, error) {
				return chargerClient(ctx).SetInputCurrentLimit(ctx, v)
			}),
	)
	rootCmd.AddCommand(cmdSet)

	cmdCharging.AddCommand(chargingCommand("enable", true), chargingCommand("disable", false))
	rootCmd.AddCommand(cmdCharging)
}

var (
	cmdSet = &cobra.Command{
		Use:   "set",
		Short: "Change charger setpoints",
	}

	cmdCharging = &cobra.Command{
		Use:   "charging",
		Short: "Enable or disable charging",
	}
)

type setFunc func(context.Context, *wrapperspb.UInt32Value) (*wrapperspb.UInt32Value, error)

// setpointCommand builds a command writing one setpoint. The charger applies
// the nearest lower step, the applied value is printed.
func setpointCommand(name, unit, short string, set setFunc) *cobra.Command {
	return &cobra.Command{
		Use:     name + " <" + unit + ">",
		Example: "pmicctl set " + name + " 1024",
		Short:   short,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := strconv.ParseUint(args[0], 10, 16)
			if err != nil {
				return fmt.Errorf("invalid %s value %q: %w", unit, args[0], err)
			}

			res, err := set(cmd.Context(), wrapperspb.UInt32(uint32(value)))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s set to %d %s\n", name, res.GetValue(), unit)
			return err
		},
	}
}

func chargingCommand(use string, enabled bool) *cobra.Command {
	return &cobra.Command{
		Use:     use,
		Example: "pmicctl charging " + use,
		Short:   use + " charging",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			_, err := chargerClient(ctx).SetCharging(ctx, wrapperspb.Bool(enabled))
			return err
		},
	}
}
