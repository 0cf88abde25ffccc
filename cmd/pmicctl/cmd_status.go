package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
)

func init() {
	rootCmd.AddCommand(cmdStatus)
	rootCmd.AddCommand(cmdFaults)
	rootCmd.AddCommand(cmdWaitFaultClear)
}

var (
	cmdStatus = &cobra.Command{
		Use:     "status",
		Example: "pmicctl status",
		Short:   "Show charger status, telemetry and faults",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			client := chargerClient(ctx)

			res, err := client.GetStatus(ctx, &emptypb.Empty{})
			if err != nil {
				return err
			}
			return printMessage(cmd, res)
		},
	}

	cmdFaults = &cobra.Command{
		Use:     "faults",
		Example: "pmicctl faults",
		Short:   "Read the fault register, latched faults are cleared by the read",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			client := chargerClient(ctx)

			res, err := client.GetFaults(ctx, &emptypb.Empty{})
			if err != nil {
				return err
			}
			return printMessage(cmd, res)
		},
	}

	cmdWaitFaultClear = &cobra.Command{
		Use:     "wait-fault-clear",
		Example: "pmicctl wait-fault-clear --timeout 10m",
		Short:   "Block until the charger reports no fault",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			client := chargerClient(ctx)

			_, err := client.WaitForFaultClear(ctx, &emptypb.Empty{})
			return err
		},
	}
)

func printMessage(cmd *cobra.Command, m proto.Message) error {
	out, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(m)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}
