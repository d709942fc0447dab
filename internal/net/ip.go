package net

import (
	"fmt"
	"log"
	"net"
	"net/url"
	"strings"
)

// OutgoingIP finds the preferred local IP address for the host to share.
func OutgoingIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return localIPFallback()
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP.String()
}

// localIPFallback is used on networks without internet access.
func localIPFallback() string {
	ifaces, _ := net.Interfaces()
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, _ := iface.Addrs()
		for _, a := range addrs {
			if ipnet, ok := a.(*net.IPNet); ok && ipnet.IP.To4() != nil {
				return ipnet.IP.String()
			}
		}
	}
	log.Println("[HUB] no suitable local IP found, share links will use loopback")
	return "127.0.0.1"
}

// Invite is everything a client needs to join a hosted board.
type Invite struct {
	Addr string
	Room string
	Key  string
}

// ShareLink renders an invite as scheme://host:port/room?key=secret.
func ShareLink(scheme string, inv Invite) string {
	u := url.URL{Scheme: scheme, Host: inv.Addr, Path: "/" + inv.Room}
	if inv.Key != "" {
		u.RawQuery = url.Values{"key": {inv.Key}}.Encode()
	}
	return u.String()
}

// ParseShareLink is the inverse of ShareLink.
func ParseShareLink(scheme, link string) (Invite, error) {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return Invite{}, fmt.Errorf("parsing share link: %w", err)
	}
	if u.Scheme != scheme {
		return Invite{}, fmt.Errorf("share link must start with %s://", scheme)
	}
	if _, _, err := net.SplitHostPort(u.Host); err != nil {
		return Invite{}, fmt.Errorf("share link has no host:port: %w", err)
	}
	room := strings.Trim(u.Path, "/")
	if room == "" {
		return Invite{}, fmt.Errorf("share link has no room")
	}
	return Invite{Addr: u.Host, Room: room, Key: u.Query().Get("key")}, nil
}
