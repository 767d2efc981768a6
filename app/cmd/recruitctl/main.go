package main

import (
	"context"
	"fmt"
	"os"

	"recruit/tracker/app/internal/cli"
)

func main() {
	if err := cli.RootCmd(cli.FromConfig).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
