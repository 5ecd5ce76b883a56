package probe

import (
	"context"
	"errors"
	"net"
	"net/url"
	"strings"
	"time"
)

// DiagnoseDNS classifies why a host might not be reachable. It is run only
// after a transport-level probe failure, to enrich the failure log; the
// classification never feeds back into monitor status.

type DNSClass string

const (
	DNSResolves   DNSClass = "RESOLVES"
	DNSNXDomain   DNSClass = "NXDOMAIN"
	DNSNoARecord  DNSClass = "NO_A_RECORD"
	DNSServFail   DNSClass = "SERVFAIL_or_TIMEOUT"
	DNSInvalidName DNSClass = "INVALID_NAME"
)

type DNSDiagnosis struct {
	Host          string
	Class         DNSClass
	Addresses     []net.IP
	Nameservers   []string
	ResolverError string
}

var dnsTimeout = 3 * time.Second

// DiagnoseDNS resolves the host of a monitor URL with the OS resolver.
func DiagnoseDNS(rawURL string) DNSDiagnosis {
	d := DNSDiagnosis{Host: hostOf(rawURL)}
	if d.Host == "" {
		d.Class = DNSInvalidName
		return d
	}

	ctx, cancel := context.WithTimeout(context.Background(), dnsTimeout)
	defer cancel()
	r := &net.Resolver{}

	ips, err := r.LookupIP(ctx, "ip", d.Host)
	if err == nil && len(ips) > 0 {
		d.Class = DNSResolves
		d.Addresses = ips
		return d
	}
	if err != nil {
		d.ResolverError = err.Error()
		var de *net.DNSError
		if errors.As(err, &de) {
			switch {
			case de.IsNotFound:
				d.Class = DNSNXDomain
			case de.IsTemporary || de.Timeout():
				d.Class = DNSServFail
			}
		}
	}

	// A delegated zone with no address records is a different failure than
	// a name that does not exist at all.
	if ns, err := r.LookupNS(ctx, d.Host); err == nil && len(ns) > 0 {
		for _, n := range ns {
			d.Nameservers = append(d.Nameservers, strings.TrimSuffix(n.Host, "."))
		}
		if d.Class == "" || d.Class == DNSNXDomain {
			d.Class = DNSNoARecord
		}
	}

	if d.Class == "" {
		if d.ResolverError != "" {
			d.Class = DNSServFail
		} else {
			d.Class = DNSNXDomain
		}
	}
	return d
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return strings.TrimSpace(raw)
	}
	return u.Hostname()
}
