// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// lottery-ctl queries a running lottery-server through its status
// socket and prints results archives.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/lottery/lib/config"
	"github.com/bureau-foundation/lottery/lib/process"
	"github.com/bureau-foundation/lottery/lib/resultarchive"
	"github.com/bureau-foundation/lottery/lib/schema"
	"github.com/bureau-foundation/lottery/lib/service"
	"github.com/bureau-foundation/lottery/lib/version"
)

const binaryName = "lottery-ctl"

// callTimeout bounds one status socket call.
const callTimeout = 10 * time.Second

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		process.Fatal(err)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	return rootCommand(stdout).execute(args, stderr)
}

// socketParams are the flags shared by the commands that talk to the
// status socket.
type socketParams struct {
	socketPath string
	outputJSON bool
}

func (p *socketParams) register(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&p.socketPath, "socket", "", "status socket path (default: status.socket_path from $"+config.EnvironmentVariable+")")
	flagSet.BoolVar(&p.outputJSON, "json", false, "output as JSON")
}

// client resolves the socket path from --socket or the config file.
func (p *socketParams) client() (*service.Client, error) {
	if p.socketPath != "" {
		return service.NewClient(p.socketPath), nil
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("no --socket given: %w", err)
	}
	if cfg.Status.SocketPath == "" {
		return nil, errors.New("no --socket given and status.socket_path is not configured")
	}
	return service.NewClient(cfg.Status.SocketPath), nil
}

func rootCommand(stdout io.Writer) *command {
	return &command{
		Name:    binaryName,
		Summary: "Inspect a lottery server and its results archives.",
		Subcommands: []*command{
			statusCommand(stdout),
			winnersCommand(stdout),
			archiveCommand(stdout),
			versionCommand(),
		},
	}
}

func statusCommand(stdout io.Writer) *command {
	var params socketParams
	return &command{
		Name:    "status",
		Summary: "Show agency readiness and draw progress",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("status", pflag.ContinueOnError)
			params.register(flagSet)
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument %q", args[0])
			}
			client, err := params.client()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
			defer cancel()

			var status schema.StatusResponse
			if err := client.Call(ctx, schema.ActionStatus, nil, &status); err != nil {
				return err
			}
			if params.outputJSON {
				if status.ReadyAgencies == nil {
					status.ReadyAgencies = []int{}
				}
				return writeJSON(stdout, status)
			}
			printStatus(stdout, status)
			return nil
		},
	}
}

func printStatus(w io.Writer, status schema.StatusResponse) {
	fmt.Fprintf(w, "version:     %s\n", status.Version)
	fmt.Fprintf(w, "uptime:      %s\n", (time.Duration(status.UptimeSeconds) * time.Second).String())
	fmt.Fprintf(w, "agencies:    %d/%d ready %s\n", len(status.ReadyAgencies), status.ExpectedAgencies, formatAgencies(status.ReadyAgencies))
	fmt.Fprintf(w, "connections: %d active, %d accepted\n", status.ActiveConnections, status.AcceptedConnections)
	if !status.LotteryDone {
		fmt.Fprintf(w, "lottery:     pending\n")
		return
	}
	fmt.Fprintf(w, "lottery:     done\n")
	for _, agency := range slices.Sorted(maps.Keys(status.WinnerCounts)) {
		fmt.Fprintf(w, "  agency %d: %d winners\n", agency, status.WinnerCounts[agency])
	}
}

func formatAgencies(agencies []int) string {
	parts := make([]string, len(agencies))
	for index, agency := range agencies {
		parts[index] = fmt.Sprint(agency)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func winnersCommand(stdout io.Writer) *command {
	var (
		params socketParams
		agency uint8
	)
	return &command{
		Name:    "winners",
		Summary: "List the winning documents of an agency",
		Usage:   binaryName + " winners --agency N [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("winners", pflag.ContinueOnError)
			params.register(flagSet)
			flagSet.Uint8Var(&agency, "agency", 0, "agency ID (required)")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument %q", args[0])
			}
			if agency == 0 {
				return errors.New("--agency is required")
			}
			client, err := params.client()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
			defer cancel()

			var winners schema.WinnersResponse
			if err := client.Call(ctx, schema.ActionWinners, map[string]any{"agency": agency}, &winners); err != nil {
				return err
			}
			if winners.Documents == nil {
				winners.Documents = []string{}
			}
			if params.outputJSON {
				return writeJSON(stdout, winners)
			}
			for _, document := range winners.Documents {
				fmt.Fprintln(stdout, document)
			}
			return nil
		},
	}
}

// archiveOutput is the JSON form of a results archive.
type archiveOutput struct {
	Path         string             `json:"path"`
	Compression  string             `json:"compression"`
	Size         int                `json:"size"`
	StoredSize   int                `json:"stored_size"`
	Digest       string             `json:"digest"`
	AgencyAmount int                `json:"agency_amount"`
	BetCount     int                `json:"bet_count"`
	CompletedAt  time.Time          `json:"completed_at"`
	Winners      map[uint8][]string `json:"winners"`
}

func archiveCommand(stdout io.Writer) *command {
	var outputJSON bool
	return &command{
		Name:    "archive",
		Summary: "Verify and print a results archive",
		Usage:   binaryName + " archive <path> [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("archive", pflag.ContinueOnError)
			flagSet.BoolVar(&outputJSON, "json", false, "output as JSON")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return errors.New("exactly one archive path is required")
			}
			path := args[0]
			record, info, err := resultarchive.Read(path)
			if err != nil {
				return err
			}

			if outputJSON {
				return writeJSON(stdout, archiveOutput{
					Path:         path,
					Compression:  string(info.Compression),
					Size:         info.Size,
					StoredSize:   info.StoredSize,
					Digest:       info.Digest.String(),
					AgencyAmount: record.AgencyAmount,
					BetCount:     record.BetCount,
					CompletedAt:  record.CompletedAt,
					Winners:      record.Winners,
				})
			}

			fmt.Fprintf(stdout, "archive:   %s (%s, %d bytes, %d stored)\n", path, info.Compression, info.Size, info.StoredSize)
			fmt.Fprintf(stdout, "digest:    %s\n", info.Digest)
			fmt.Fprintf(stdout, "completed: %s\n", record.CompletedAt.Format(time.RFC3339))
			fmt.Fprintf(stdout, "agencies:  %d\n", record.AgencyAmount)
			fmt.Fprintf(stdout, "bets:      %d\n", record.BetCount)
			for _, agency := range slices.Sorted(maps.Keys(record.Winners)) {
				documents := record.Winners[agency]
				fmt.Fprintf(stdout, "  agency %d: %d winners %s\n", agency, len(documents), strings.Join(documents, " "))
			}
			return nil
		},
	}
}

func versionCommand() *command {
	return &command{
		Name:    "version",
		Summary: "Print version information",
		Run: func(args []string) error {
			version.Print(binaryName)
			return nil
		},
	}
}
