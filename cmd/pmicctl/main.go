package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/uptime-industries/pmic-agent/pkg/pmicapi"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// session is the connection to pmicd shared by all subcommands of one
// invocation.
type session struct {
	conn   *grpc.ClientConn
	client pmicapi.ChargerServiceClient
	stop   context.CancelFunc
}

type sessionKey struct{}

var (
	daemonAddr     string
	requestTimeout time.Duration
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&daemonAddr, "addr", "unix:///tmp/pmicd.sock", "pmicd gRPC address, unix:///path or host:port")
	flags.DurationVar(&requestTimeout, "timeout", time.Minute, "deadline of the whole command")
}

// chargerClient returns the client opened by the root command.
func chargerClient(ctx context.Context) pmicapi.ChargerServiceClient {
	s, ok := ctx.Value(sessionKey{}).(*session)
	if !ok {
		panic("pmicd session missing from command context")
	}
	return s.client
}

// openSession dials pmicd. The returned context is canceled on SIGINT,
// SIGTERM or once the timeout expires.
func openSession(parent context.Context) (context.Context, error) {
	ctx, stopSignals := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	stop := func() {
		cancel()
		stopSignals()
	}

	conn, err := grpc.DialContext(ctx, daemonAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		stop()
		return nil, fmt.Errorf("connect to pmicd at %s: %w", daemonAddr, err)
	}

	s := &session{conn: conn, client: pmicapi.NewChargerServiceClient(conn), stop: stop}
	return context.WithValue(ctx, sessionKey{}, s), nil
}

func closeSession(ctx context.Context) error {
	s, ok := ctx.Value(sessionKey{}).(*session)
	if !ok {
		return nil
	}
	defer s.stop()
	return s.conn.Close()
}

var rootCmd = &cobra.Command{
	Use:   "pmicctl",
	Short: "Inspect and tune the battery charger managed by pmicd",
	Long: strings.TrimSpace(`
pmicctl reads charger status and faults from pmicd and changes setpoints at
runtime. Setpoints are rounded down to the charger's step size, the value
actually applied is printed.`),
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		ctx, err := openSession(cmd.Root().Context())
		if err != nil {
			return err
		}
		cmd.SetContext(ctx)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
		return closeSession(cmd.Context())
	},
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "pmicctl:", err)
		os.Exit(1)
	}
}
