package main

import (
	"fmt"
	"os"

	"ledgerline/bankfeed/cmd/categorize"
	"ledgerline/bankfeed/cmd/ingest"
	"ledgerline/bankfeed/cmd/mappings"
	"ledgerline/bankfeed/cmd/root"
)

func init() {
	root.Init()

	root.Cmd.AddCommand(ingest.Cmd)
	root.Cmd.AddCommand(categorize.Cmd)
	root.Cmd.AddCommand(mappings.Cmd)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
