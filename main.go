package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rangefence/rangefence/lib/commands"
	"github.com/rangefence/rangefence/lib/log"
)

func main() {
	ctx := &commands.AppContext{}

	flag.StringVar(&ctx.ConfigPath, "config", "/etc/rangefence/rangefence.conf", "Path to configuration file")
	flag.BoolVar(&ctx.Verbose, "verbose", false, "Enable verbose logging")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "rangefence - published IP range lists to local firewall\n\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <command>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  download                Download remote feed documents to the feeds directory\n")
		fmt.Fprintf(os.Stderr, "  apply                   Extract prefixes from downloaded feeds and apply them to ipsets/iptables\n")
		fmt.Fprintf(os.Stderr, "  self-check              Verify configuration, feed hosts and firewall state\n")
		fmt.Fprintf(os.Stderr, "  interfaces              Get available interfaces list\n")
		fmt.Fprintf(os.Stderr, "  server                  Run the HTTP API server\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	log.SetVerbose(ctx.Verbose)

	cmds := []commands.Runner{
		commands.CreateDownloadCommand(),
		commands.CreateApplyCommand(),
		commands.CreateSelfCheckCommand(),
		commands.CreateInterfacesCommand(),
		commands.CreateServerCommand(),
	}

	args := flag.Args()

	if len(args) < 1 {
		flag.Usage()
		os.Exit(1)
	}

	subcommand := args[0]
	for _, cmd := range cmds {
		if cmd.Name() == subcommand {
			if err := cmd.Init(args[1:], ctx); err != nil {
				log.Fatalf("Failed to initialize command: %v", err)
			}

			if err := cmd.Run(); err != nil {
				log.Fatalf("Failed to run command: %v", err)
			}

			os.Exit(0)
		}
	}

	log.Fatalf("Unknown subcommand: %s", subcommand)
}
