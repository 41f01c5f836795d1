package config

//
// server.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gitlab.com/kabes/go-chat/internal/aerr"
)

// ListenConf describe one listener: address, optional web root prefix and
// tls key pair.
type ListenConf struct {
	Address string
	WebRoot string
	TLSKey  string
	TLSCert string
}

// Validate check configuration and normalize web root.
func (c *ListenConf) Validate() error {
	switch {
	case c.Address == "":
		return aerr.ErrValidation.WithUserMsg("listen address can't be empty")
	case c.TLSKey == "" && c.TLSCert != "", c.TLSKey != "" && c.TLSCert == "":
		return aerr.ErrValidation.WithUserMsg("both tls key and cert must be defined")
	}

	c.WebRoot = NormalizeWebRoot(c.WebRoot)

	return nil
}

func (c *ListenConf) TLSEnabled() bool {
	return c.TLSKey != "" && c.TLSCert != ""
}

// NormalizeWebRoot return path with one leading slash and no trailing
// slashes; root ("/") is returned as empty string.
func NormalizeWebRoot(webroot string) string {
	webroot = strings.Trim(strings.TrimSpace(webroot), "/")
	if webroot == "" {
		return ""
	}

	return "/" + webroot
}

//-------------------------------------------------------------

// ServerConf configure main (chat api) and management servers.
type ServerConf struct {
	MainServer ListenConf
	MgmtServer ListenConf

	DebugFlags     DebugFlags
	EnableMetrics  bool
	MgmtAccessList string

	mgmtAccessList *AccessList
}

func (c *ServerConf) Validate() error {
	listeners := []struct {
		name string
		conf *ListenConf
	}{
		{"main", &c.MainServer},
		{"mgmt", &c.MgmtServer},
	}

	for _, l := range listeners {
		if l.name == "mgmt" && l.conf.Address == "" {
			continue
		}

		if err := l.conf.Validate(); err != nil {
			return aerr.Wrapf(err, "invalid %s server configuration", l.name)
		}
	}

	if c.MgmtAccessList == "" {
		c.mgmtAccessList = nil

		return nil
	}

	al, err := NewAccessList(c.MgmtAccessList)
	if err != nil {
		return aerr.Wrapf(err, "invalid management access list")
	}

	c.mgmtAccessList = al

	log.Logger.Debug().Object("mgmt_access_list", al).Msg("config: management access list configured")

	return nil
}

// SeparateMgmtEnabled is true when management endpoints have own listener.
func (c *ServerConf) SeparateMgmtEnabled() bool {
	return c.MgmtServer.Address != "" && c.MgmtServer.Address != c.MainServer.Address
}

// MgmtEnabledOnMainServer is true when management endpoints share address
// with main server.
func (c *ServerConf) MgmtEnabledOnMainServer() bool {
	return c.MgmtServer.Address != "" && c.MgmtServer.Address == c.MainServer.Address
}

// AuthMgmtRequest decide if remote address of `req` may access management
// endpoints (first result) and see sensitive data like session ids (second).
// Loopback is always fully trusted. With access list configured only listed
// addresses are allowed; otherwise private networks get access without
// sensitive data.
func (c *ServerConf) AuthMgmtRequest(req *http.Request) (bool, bool) {
	addr, ok := remoteAddr(req.RemoteAddr)

	switch {
	case !ok:
		return false, false
	case addr.IsLoopback():
		return true, true
	case c.mgmtAccessList != nil:
		return c.mgmtAccessList.HasAccess(addr), true
	default:
		return addr.IsPrivate(), false
	}
}

func remoteAddr(remote string) (netip.Addr, bool) {
	host, _, err := net.SplitHostPort(remote)
	if err != nil {
		host = remote
	}

	if host == "localhost" {
		return netip.IPv6Loopback(), true
	}

	addr, err := netip.ParseAddr(host)
	if err != nil {
		return netip.Addr{}, false
	}

	return addr.Unmap(), true
}

//-------------------------------------------------------------

// AccessList is list of networks allowed to access management endpoints.
// Single addresses are kept as full-length prefixes.
type AccessList struct {
	prefixes []netip.Prefix
}

// NewAccessList parse comma separated list of ip addresses and networks in
// CIDR notation.
func NewAccessList(accesslist string) (*AccessList, error) {
	al := &AccessList{}

	for entry := range strings.SplitSeq(accesslist, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		prefix, err := parseAccessEntry(entry)
		if err != nil {
			return nil, aerr.ErrValidation.WithUserMsg("invalid entry in access list: entry=%q", entry).
				WithMeta("error", err.Error())
		}

		al.prefixes = append(al.prefixes, prefix)
	}

	return al, nil
}

func parseAccessEntry(entry string) (netip.Prefix, error) {
	if strings.Contains(entry, "/") {
		prefix, err := netip.ParsePrefix(entry)
		if err != nil {
			return netip.Prefix{}, err //nolint:wrapcheck
		}

		return prefix.Masked(), nil
	}

	addr, err := netip.ParseAddr(entry)
	if err != nil {
		return netip.Prefix{}, err //nolint:wrapcheck
	}

	addr = addr.Unmap()

	return netip.PrefixFrom(addr, addr.BitLen()), nil
}

func (a *AccessList) HasAccess(addr netip.Addr) bool {
	addr = addr.Unmap()

	for _, p := range a.prefixes {
		if p.Contains(addr) {
			return true
		}
	}

	return false
}

func (a *AccessList) MarshalZerologObject(event *zerolog.Event) {
	entries := make([]string, 0, len(a.prefixes))
	for _, p := range a.prefixes {
		entries = append(entries, p.String())
	}

	event.Strs("allowed", entries)
}
