// Package main provides the command-line calculator.
//
// Usage:
//
//	abacus eval <keys...>     Press keys and print the final display
//	abacus trace <keys...>    Print the display after every key
//	abacus repl               Read keys from stdin, one line at a time
//	abacus version            Show version
//
// Keys are button labels or key names: digits, '.', + - * / × ÷, '=',
// Enter, Backspace, Escape, Delete. Arguments such as "12+3=" are split into
// single keys.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ternarybob/abacus"
)

// version is set via -ldflags at build time
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stdout)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "eval":
		err = cmdEval(os.Stdout, args)
	case "trace":
		err = cmdTrace(os.Stdout, args)
	case "repl":
		err = cmdRepl(os.Stdin, os.Stdout)
	case "version", "-v", "--version":
		fmt.Printf("abacus version %s\n", version)
	case "help", "-h", "--help":
		printUsage(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		printUsage(os.Stderr)
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `abacus - pocket calculator

Usage:
  abacus eval <keys...>     Press keys and print the final display
  abacus trace <keys...>    Print the display after every key
  abacus repl               Read keys from stdin, one line at a time
  abacus version            Show version information

Examples:
  abacus eval 3+4*2=
  abacus trace 8 / 0 Enter
  echo "0.1 + 0.2 =" | abacus repl`)
}

func argKeys(args []string) ([]string, error) {
	keys := abacus.SplitKeys(strings.Join(args, " "))
	if len(keys) == 0 {
		return nil, fmt.Errorf("no keys given")
	}
	return keys, nil
}

func cmdEval(w io.Writer, args []string) error {
	keys, err := argKeys(args)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, abacus.Evaluate(keys...))
	return nil
}

func cmdTrace(w io.Writer, args []string) error {
	keys, err := argKeys(args)
	if err != nil {
		return err
	}

	engine, err := abacus.New()
	if err != nil {
		return err
	}

	for _, key := range keys {
		tok, ok := abacus.Normalize(key)
		if !ok {
			fmt.Fprintf(w, "%-10s (ignored)\n", key)
			continue
		}
		fmt.Fprintf(w, "%-10s %s\n", key, engine.Handle(tok))
	}
	return nil
}

// cmdRepl keeps one engine for the whole input; each line's keys are
// applied in order and the display printed after the line.
func cmdRepl(r io.Reader, w io.Writer) error {
	engine, err := abacus.New()
	if err != nil {
		return err
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "quit" || line == "exit" {
			return nil
		}
		for _, key := range abacus.SplitKeys(line) {
			if tok, ok := abacus.Normalize(key); ok {
				engine.Handle(tok)
			}
		}
		fmt.Fprintln(w, engine.Display())
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}
