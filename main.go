package main

import (
	"os"

	"github.com/riskibarqy/go-commitrewrite/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
