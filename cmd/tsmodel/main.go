package main

import (
	"fmt"

	"github.com/alecthomas/kong"
)

type CLI struct {
	Globals

	Version VersionCmd `cmd:"" help:"Print version information."`
	Gen     GenCmd     `cmd:"" help:"Generate TypeScript declarations."`
	Check   CheckCmd   `cmd:"" help:"Compile and validate the model without writing files."`
	Dump    DumpCmd    `cmd:"" help:"Print the compiled model."`
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println(Version())
	return nil
}

func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("tsmodel"),
		kong.Description("Compile Go types into TypeScript declarations."),
		kong.UsageOnError(),
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
