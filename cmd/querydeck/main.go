// Command querydeck runs the saved-query dashboard gateway and its
// companion CLI.
package main

import (
	"os"

	"github.com/querydeck/querydeck/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
