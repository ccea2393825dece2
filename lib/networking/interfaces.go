package networking

import (
	"fmt"
	"net"

	"github.com/vishvananda/netlink"
)

const colorCyan = "\033[0;36m"
const colorGreen = "\033[0;32m"
const colorRed = "\033[0;31m"
const colorReset = "\033[0m"

type Interface struct {
	netlink.Link
}

func GetInterface(interfaceName string) (*Interface, error) {
	link, err := netlink.LinkByName(interfaceName)
	if err != nil {
		return nil, err
	}
	return &Interface{link}, nil
}

func GetInterfaceList() ([]Interface, error) {
	links, err := netlink.LinkList()
	if err != nil {
		return nil, err
	}
	var interfaces []Interface
	for _, link := range links {
		interfaces = append(interfaces, Interface{link})
	}
	return interfaces, nil
}

func PrintInterfaces(ifaces []Interface, printIPs bool) {
	for _, iface := range ifaces {
		attrs := iface.Attrs()

		up := attrs.Flags&net.FlagUp != 0
		upColor := colorRed
		if up {
			upColor = colorGreen
		}

		fmt.Printf("%d. %s%s%s (%sup%s=%s%v%s)\n",
			attrs.Index,
			colorCyan, attrs.Name, colorReset,
			colorCyan, colorReset,
			upColor, up, colorReset)

		if !printIPs {
			continue
		}

		addrs, err := netlink.AddrList(iface, netlink.FAMILY_ALL)
		if err != nil {
			fmt.Printf("  failed to get addresses for interface %s: %v\n", attrs.Name, err)
			continue
		}
		for _, addr := range addrs {
			fmt.Printf("  IP Address: %v\n", addr.IPNet)
		}
	}
}
