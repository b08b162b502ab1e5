package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"go.datum.net/kibanasync/internal/cliutil"
	"go.datum.net/kibanasync/internal/cmd"
)

func main() {
	root := cmd.RootCmd()
	root.SilenceErrors = true
	if err := root.Execute(); err != nil {
		if userErr, ok := cliutil.IsUserError(err); ok {
			fmt.Fprintf(os.Stderr, "error: %s\n", userErr.Error())

			if v := flag.Lookup("v"); v != nil && userErr.Err != nil {
				if level, err := strconv.Atoi(v.Value.String()); err == nil && level >= 4 {
					fmt.Fprintf(os.Stderr, "\ndetails:\n%v\n", userErr.Err)
				}
			}
			os.Exit(1)
		}

		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
