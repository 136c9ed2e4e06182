package fins

import (
	"fmt"
	"net"
)

// FinsAddress A FINS device address: network, node and unit number.
type FinsAddress struct {
	Network byte
	Node    byte
	Unit    byte
}

// Address A full device address: FINS addressing plus the IP endpoint for
// the chosen transport.
type Address struct {
	FinAddress FinsAddress
	UdpAddress *net.UDPAddr
	TcpAddress *net.TCPAddr
}

// NewAddress creates an address for FINS over UDP.
func NewAddress(ip string, port int, network, node, unit byte) Address {
	return Address{
		UdpAddress: &net.UDPAddr{
			IP:   net.ParseIP(ip),
			Port: port,
		},
		FinAddress: FinsAddress{
			Network: network,
			Node:    node,
			Unit:    unit,
		},
	}
}

// NewTCPAddress creates an address for FINS over TCP.
func NewTCPAddress(ip string, port int, network, node, unit byte) Address {
	return Address{
		TcpAddress: &net.TCPAddr{
			IP:   net.ParseIP(ip),
			Port: port,
		},
		FinAddress: FinsAddress{
			Network: network,
			Node:    node,
			Unit:    unit,
		},
	}
}

// NewLocalAddress creates an address with only FINS addressing, letting the
// transport pick the local endpoint.
func NewLocalAddress(network, node, unit byte) Address {
	return Address{
		FinAddress: FinsAddress{
			Network: network,
			Node:    node,
			Unit:    unit,
		},
	}
}

func (a FinsAddress) String() string {
	return fmt.Sprintf("%d.%d.%d", a.Network, a.Node, a.Unit)
}
