// Command intarray-host loads the IntArray library and runs add_one, head
// and tail on the integers given as arguments.
//
//	intarray-host -backend wasm 3 4 5
//	intarray-host -config intarray.yaml -describe
//	intarray-host -schema descriptor
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/joecorcoran/talks/application/schema"
	"github.com/joecorcoran/talks/domain/entities"
	liberrors "github.com/joecorcoran/talks/domain/errors"
	"github.com/joecorcoran/talks/domain/ports"
	"github.com/joecorcoran/talks/host"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

type flags struct {
	config   string
	backend  string
	library  string
	schema   string
	verbose  bool
	describe bool
	noVerify bool
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("intarray-host", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var f flags
	fs.StringVar(&f.config, "config", "", "YAML host configuration file")
	fs.StringVar(&f.backend, "backend", "", "library backend: native or wasm")
	fs.StringVar(&f.library, "lib", "", "explicit library path")
	fs.StringVar(&f.schema, "schema", "", "print a JSON schema (descriptor or config) and exit")
	fs.BoolVar(&f.verbose, "v", false, "debug logging, including library logs")
	fs.BoolVar(&f.describe, "describe", false, "print the library descriptor")
	fs.BoolVar(&f.noVerify, "no-verify", false, "skip the layout check")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	level := slog.LevelInfo
	if f.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if f.schema != "" {
		data, err := schema.ByName(f.schema)
		if err != nil {
			return fail(stderr, err)
		}
		fmt.Fprintln(stdout, string(data))
		return 0
	}

	members, err := parseMembers(fs.Args())
	if err != nil {
		return fail(stderr, err)
	}

	lib, err := host.Open(ctx, f.options(logger)...)
	if err != nil {
		return fail(stderr, err)
	}
	defer func() {
		if err := lib.Close(ctx); err != nil {
			logger.Warn("close library", "error", err)
		}
	}()

	if f.describe {
		d, err := lib.Describe(ctx)
		if err != nil {
			return fail(stderr, err)
		}
		out, _ := json.MarshalIndent(d, "", "  ")
		fmt.Fprintln(stdout, string(out))
	}

	if len(members) == 0 {
		if f.describe {
			return 0
		}
		members = []int32{3, 4, 5}
	}

	if err := report(ctx, lib, members, stdout); err != nil {
		return fail(stderr, err)
	}
	return 0
}

func (f flags) options(logger *slog.Logger) []host.Option {
	opts := []host.Option{host.WithLogger(logger)}
	if f.config != "" {
		opts = append(opts, host.WithConfigFile(f.config))
	}
	if f.backend != "" {
		opts = append(opts, host.WithBackend(entities.Backend(f.backend)))
	}
	if f.library != "" {
		opts = append(opts, host.WithLibraryPath(f.library))
	}
	if f.noVerify {
		opts = append(opts, host.WithVerifyLayout(false))
	}
	return opts
}

// report prints the result of every export for members.
func report(ctx context.Context, lib ports.Library, members []int32, w io.Writer) error {
	n, err := lib.AddOne(ctx, members[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "add_one(%d) = %d\n", members[0], n)

	h, err := lib.Head(ctx, members)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "head(%v) = %d\n", members, h)

	rest, err := lib.Tail(ctx, members)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "tail(%v) = %v\n", members, rest)

	raw, err := lib.TailRaw(ctx, members)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "tail_raw(%v) = %v\n", members, raw)

	stats, err := lib.Stats(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "live allocations: %d (%d bytes)\n", stats.Count, stats.Bytes)
	return nil
}

func parseMembers(args []string) ([]int32, error) {
	members := make([]int32, 0, len(args))
	for _, a := range args {
		v, err := strconv.ParseInt(a, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("argument %q is not a 32-bit integer: %w", a, err)
		}
		members = append(members, int32(v))
	}
	return members, nil
}

// fail prints err as a structured detail and returns the exit code.
func fail(w io.Writer, err error) int {
	detail := liberrors.ToErrorDetail(err)
	out, _ := json.Marshal(detail)
	fmt.Fprintf(w, "error: %s\n", out)
	return 1
}
