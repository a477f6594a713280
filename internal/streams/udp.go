// Package streams registers the concrete URL-scheme openers
// (aes67://, rtp://, srt://, webrtc://) against the plugin-host registry,
// wiring each parsed URL into an rxpath/txpath/srtio/webrtcio pipeline.
// It sits above pluginhost and the transport packages so none of them
// need to import each other.
package streams

import (
	"net"
)

// listenUDP opens a receive socket bound to addr:port. For a multicast
// address it joins the group on iface (or the default interface if nil);
// for a unicast address it binds directly.
func listenUDP(addr net.IP, port int, iface net.IP) (*net.UDPConn, error) {
	if addr.IsMulticast() {
		ifi, err := interfaceFor(iface)
		if err != nil {
			return nil, err
		}
		return net.ListenMulticastUDP("udp", ifi, &net.UDPAddr{IP: addr, Port: port})
	}
	return net.ListenUDP("udp", &net.UDPAddr{IP: addr, Port: port})
}

// dialUDP opens a send socket and resolves dest as the peer address to
// write datagrams to; the conn itself is left unconnected so a single
// Transmitter can, in principle, be redirected.
func dialUDP(addr net.IP, port int) (*net.UDPConn, *net.UDPAddr, error) {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{})
	if err != nil {
		return nil, nil, err
	}
	return conn, &net.UDPAddr{IP: addr, Port: port}, nil
}

func interfaceFor(ip net.IP) (*net.Interface, error) {
	if ip == nil {
		return nil, nil
	}
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	for i := range ifaces {
		addrs, err := ifaces[i].Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			if ipNet, ok := a.(*net.IPNet); ok && ipNet.IP.Equal(ip) {
				return &ifaces[i], nil
			}
		}
	}
	return nil, nil
}
