// Command stockctl は台帳の取込・在庫検索・カート出力をコマンドラインから行います。
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"chipstock/config"

	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	Register(commander)

	flag.Parse()

	if _, err := config.LoadConfig(); err != nil {
		config.GetLogger().WithError(err).Warn("Failed to load config file. Using defaults.")
	}
	config.SetLogLevel(*logLevel)

	os.Exit(int(commander.Execute(context.Background())))
}
