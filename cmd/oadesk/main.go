package main

import (
	"os"

	"github.com/idilsaglam/oadesk/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
