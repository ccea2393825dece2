package commands

import (
	"flag"

	"github.com/rangefence/rangefence/lib/networking"
)

func CreateInterfacesCommand() *InterfacesCommand {
	gc := &InterfacesCommand{
		fs: flag.NewFlagSet("interfaces", flag.ExitOnError),
	}

	gc.fs.BoolVar(&gc.PrintIPs, "ips", false, "Print IP addresses of each interface")

	return gc
}

type InterfacesCommand struct {
	fs *flag.FlagSet

	PrintIPs bool
}

func (g *InterfacesCommand) Name() string {
	return g.fs.Name()
}

func (g *InterfacesCommand) Init(args []string, ctx *AppContext) error {
	return g.fs.Parse(args)
}

func (g *InterfacesCommand) Run() error {
	ifaces, err := networking.GetInterfaceList()
	if err != nil {
		return err
	}
	networking.PrintInterfaces(ifaces, g.PrintIPs)
	return nil
}
