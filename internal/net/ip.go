package net

import (
	"fmt"
	"log"
	"net"
	"strings"
)

// CustomURLScheme prefixes share links that point at a mirror.
const CustomURLScheme = "inkboard://"

// GetOutgoingIP finds the preferred local IP address to share with viewers.
func GetOutgoingIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		// No route out; look at the interfaces instead.
		return firstIPv4().String()
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP.String()
}

// firstIPv4 returns the first IPv4 address of an interface that is up and
// not loopback, or the loopback address.
func firstIPv4() net.IP {
	ifaces, _ := net.Interfaces()
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, _ := iface.Addrs()
		for _, a := range addrs {
			if ipnet, ok := a.(*net.IPNet); ok && ipnet.IP.To4() != nil {
				return ipnet.IP.To4()
			}
		}
	}
	log.Println("[MIRROR] No suitable local IP found, share link uses loopback")
	return net.IPv4(127, 0, 0, 1)
}

// ShareLink returns the link viewers open to watch a mirror on port.
func ShareLink(host string, port int) string {
	return fmt.Sprintf("%s%s:%d", CustomURLScheme, host, port)
}

// ParseShareLink turns a share link, a host:port pair or a ws:// URL into
// the websocket URL of the mirror.
func ParseShareLink(link string) (string, error) {
	switch {
	case strings.HasPrefix(link, "ws://"), strings.HasPrefix(link, "wss://"):
		return link, nil
	}
	addr := strings.TrimSuffix(strings.TrimPrefix(link, CustomURLScheme), "/")
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "", fmt.Errorf("share link %q: %w", link, err)
	}
	return "ws://" + net.JoinHostPort(host, port) + "/ws", nil
}
