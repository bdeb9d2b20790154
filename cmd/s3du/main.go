// Command s3du reports S3 object sizes and storage costs grouped by key prefix.
package main

import (
	"fmt"
	"os"

	"github.com/s3du/s3du/internal/cli"
)

func main() {
	if err := cli.Run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
