// Command kvs-client is a one-shot CLI for talking to a kvs-server: get,
// set, and rm subcommands, each opening a connection, issuing a single
// request, and exiting with the status contract of spec.md §6.
//
// Grounded on the teacher's cmd/main.go for argument-driven, log-to-stderr
// failure handling, adapted to the literal stdout/stderr/exit-code
// contract spec.md §6 specifies (distinct from the teacher's own CLI,
// which never needed exit codes since it was an interactive REPL).
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jassi-singh/kvs/internal/client"
	"github.com/jassi-singh/kvs/internal/config"
	"github.com/jassi-singh/kvs/internal/kverrors"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	addr := fs.String("addr", config.DefaultListenAddr, "server address")

	// flag stops at the first positional argument, so parse repeatedly to
	// accept --addr after the key/value as well as before it.
	var positional []string
	rest := os.Args[2:]
	for {
		fs.Parse(rest)
		rest = fs.Args()
		if len(rest) == 0 {
			break
		}
		positional = append(positional, rest[0])
		rest = rest[1:]
	}

	switch cmd {
	case "get":
		runGet(*addr, positional)
	case "set":
		runSet(*addr, positional)
	case "rm":
		runRemove(*addr, positional)
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: kvs-client get <KEY> [--addr ADDR]")
	fmt.Fprintln(os.Stderr, "       kvs-client set <KEY> <VALUE> [--addr ADDR]")
	fmt.Fprintln(os.Stderr, "       kvs-client rm <KEY> [--addr ADDR]")
}

func runGet(addr string, args []string) {
	if len(args) != 1 {
		usage()
		os.Exit(1)
	}

	c, err := client.Dial(addr)
	if err != nil {
		fail(err)
	}
	defer c.Close()

	value, found, err := c.Get(args[0])
	if err != nil {
		fail(err)
	}
	if !found {
		fmt.Println("Key not found")
		os.Exit(0)
	}
	fmt.Println(value)
}

func runSet(addr string, args []string) {
	if len(args) != 2 {
		usage()
		os.Exit(1)
	}

	c, err := client.Dial(addr)
	if err != nil {
		fail(err)
	}
	defer c.Close()

	if err := c.Set(args[0], args[1]); err != nil {
		fail(err)
	}
}

func runRemove(addr string, args []string) {
	if len(args) != 1 {
		usage()
		os.Exit(1)
	}

	c, err := client.Dial(addr)
	if err != nil {
		fail(err)
	}
	defer c.Close()

	if err := c.Remove(args[0]); err != nil {
		if err.Error() == kverrors.ErrKeyNotFound.Error() {
			fmt.Fprintln(os.Stderr, "Key not found")
			os.Exit(1)
		}
		fail(err)
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
