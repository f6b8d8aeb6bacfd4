// main is the entry point of the safe CLI.
package main

import (
	"github.com/huangsam/safe/cmd"
	"github.com/huangsam/safe/internal/contract"
	"github.com/huangsam/safe/internal/persist"
)

func main() {
	defer persist.CloseStores()
	defer contract.SyncLogger()

	if err := cmd.Execute(); err != nil {
		contract.LogFatal("Command failed", err)
	}
}
