package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"

	"mercator-hq/budgetd/pkg/cli"
	"mercator-hq/budgetd/pkg/rpc"
	sectls "mercator-hq/budgetd/pkg/security/tls"
)

// defaultClientAddress is the local gRPC listener.
const defaultClientAddress = "127.0.0.1:4434"

var clientFlags struct {
	address    string
	timeout    time.Duration
	format     string
	tls        bool
	caFile     string
	certFile   string
	keyFile    string
	serverName string
}

var recordCmd = &cobra.Command{
	Use:   "record <policy> <project> <amount>",
	Short: "Record spending against a running server",
	Long: `Record spending for a project under a policy on a running budgetd
server over gRPC and print whether the project now exceeds its budget.

Examples:
  budgetd record symbolication-js 42 1.5
  budgetd record symbolication-native 42 0.25 --addr budgetd:4434 --output json`,
	Args: cobra.ExactArgs(3),
	RunE: runRecord,
}

var checkCmd = &cobra.Command{
	Use:   "check <policy> <project>",
	Short: "Query a project's budget decision on a running server",
	Long: `Ask a running budgetd server over gRPC whether a project exceeds its
budget under a policy, without recording any spend.

Examples:
  budgetd check symbolication-js 42`,
	Args: cobra.ExactArgs(2),
	RunE: runCheck,
}

func init() {
	for _, cmd := range []*cobra.Command{recordCmd, checkCmd} {
		rootCmd.AddCommand(cmd)
		cmd.Flags().StringVar(&clientFlags.address, "addr", defaultClientAddress, "gRPC server address")
		cmd.Flags().DurationVar(&clientFlags.timeout, "timeout", 5*time.Second, "request timeout")
		cmd.Flags().StringVarP(&clientFlags.format, "output", "o", "text", "output format: text, json")
		cmd.Flags().BoolVar(&clientFlags.tls, "tls", false, "connect with TLS")
		cmd.Flags().StringVar(&clientFlags.caFile, "ca-file", "", "CA bundle to verify the server (implies --tls)")
		cmd.Flags().StringVar(&clientFlags.certFile, "cert", "", "client certificate for mTLS (implies --tls)")
		cmd.Flags().StringVar(&clientFlags.keyFile, "key", "", "client key for mTLS")
		cmd.Flags().StringVar(&clientFlags.serverName, "server-name", "", "override the server name to verify")
	}
}

type decisionResult struct {
	Policy        string  `json:"config_name"`
	Project       uint64  `json:"project_id"`
	Spent         float64 `json:"spent,omitempty"`
	ExceedsBudget bool    `json:"exceeds_budget"`
}

func (r decisionResult) Text() string {
	state := "within budget"
	if r.ExceedsBudget {
		state = "exceeds budget"
	}
	return fmt.Sprintf("project %d under %s: %s", r.Project, r.Policy, state)
}

func runRecord(cmd *cobra.Command, args []string) error {
	project, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid project id %q: %w", args[1], err)
	}
	amount, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", args[2], err)
	}

	result := decisionResult{Policy: args[0], Project: project, Spent: amount}
	err = withClient(cmd, func(ctx context.Context, c *rpc.Client) (err error) {
		result.ExceedsBudget, err = c.RecordSpending(ctx, result.Policy, project, amount)
		return err
	})
	if err != nil {
		return cli.NewCommandError("record", err)
	}
	return printResult(cmd, result)
}

func runCheck(cmd *cobra.Command, args []string) error {
	project, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid project id %q: %w", args[1], err)
	}

	result := decisionResult{Policy: args[0], Project: project}
	err = withClient(cmd, func(ctx context.Context, c *rpc.Client) (err error) {
		result.ExceedsBudget, err = c.ExceedsBudget(ctx, result.Policy, project)
		return err
	})
	if err != nil {
		return cli.NewCommandError("check", err)
	}
	return printResult(cmd, result)
}

func withClient(cmd *cobra.Command, fn func(context.Context, *rpc.Client) error) error {
	opts, err := clientDialOptions()
	if err != nil {
		return err
	}
	client, err := rpc.Dial(clientFlags.address, opts...)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), clientFlags.timeout)
	defer cancel()
	return fn(ctx, client)
}

// clientDialOptions returns the transport credentials selected by the
// TLS flags. No options means plaintext.
func clientDialOptions() ([]grpc.DialOption, error) {
	if !clientFlags.tls && clientFlags.caFile == "" && clientFlags.certFile == "" {
		return nil, nil
	}
	tlsConfig, err := sectls.ClientConfig(clientFlags.caFile, clientFlags.certFile, clientFlags.keyFile, clientFlags.serverName)
	if err != nil {
		return nil, err
	}
	return []grpc.DialOption{grpc.WithTransportCredentials(credentials.NewTLS(tlsConfig))}, nil
}

func printResult(cmd *cobra.Command, result decisionResult) error {
	format, err := cli.ParseOutputFormat(clientFlags.format)
	if err != nil {
		return err
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), result)
}
