// Command dmsconv converts one DMS coordinate to decimal degrees.
//
// Usage:
//
//	dmsconv [-json] [-precision N] <coordinate text...>
//	echo '35°45'"'"'30"N 82°18'"'"'45"W' | dmsconv
//
// With no arguments the first line of stdin is read. Parse failures are
// printed to stderr and exit with status 1.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/dms-converter-service/internal/domain"
)

func main() {
	asJSON := flag.Bool("json", false, "print the result as a JSON object")
	precision := flag.Int("precision", 6, "decimal places in plain output")
	flag.Parse()

	os.Exit(run(flag.Args(), os.Stdin, os.Stdout, os.Stderr, *asJSON, *precision))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer, asJSON bool, precision int) int {
	if precision < 0 {
		fmt.Fprintln(stderr, "dmsconv: -precision must not be negative")
		return 2
	}

	input, err := readInput(args, stdin)
	if err != nil {
		fmt.Fprintf(stderr, "dmsconv: %v\n", err)
		return 1
	}

	coord, err := domain.Convert(input)
	if err != nil {
		fmt.Fprintf(stderr, "dmsconv: %v\n", err)
		return 1
	}

	if asJSON {
		enc := json.NewEncoder(stdout)
		if err := enc.Encode(coord); err != nil {
			fmt.Fprintf(stderr, "dmsconv: %v\n", err)
			return 1
		}
		return 0
	}

	fmt.Fprintf(stdout, "%s, %s\n",
		strconv.FormatFloat(coord.Lat, 'f', precision, 64),
		strconv.FormatFloat(coord.Lon, 'f', precision, 64))
	return 0
}

func readInput(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
