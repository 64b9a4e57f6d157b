package main

import (
	"os"

	"git.home.luguber.info/inful/doxybuild/cmd/doxybuild/commands"
)

func main() {
	os.Exit(commands.Main(os.Args[1:], os.Stdout, os.Stderr))
}
