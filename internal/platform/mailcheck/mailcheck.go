// Copyright (c) 2026 Maildeck. All rights reserved.

// Package mailcheck verifies that an email address belongs to a domain
// capable of receiving mail.
//
// # Architecture
//
// The check is deliverability-oriented, not syntax-oriented: syntax is
// handled by the validate package, while this package asks DNS whether the
// domain publishes MX records. The check is optional and controlled by
// configuration, since DNS lookups add latency to registration.
package mailcheck

import (
	"context"
	"net"
	"strings"
	"time"
)

// Checker resolves MX records for email domains.
type Checker struct {
	resolver *net.Resolver
	timeout  time.Duration
}

// NewChecker returns a Checker that uses the system resolver with the
// given per-lookup timeout.
func NewChecker(timeout time.Duration) *Checker {
	return &Checker{
		resolver: net.DefaultResolver,
		timeout:  timeout,
	}
}

// HasMX reports whether the domain of the address publishes at least one
// MX record. Lookup failures and timeouts count as "no" so that an
// unreachable resolver cannot let unverifiable domains through.
func (c *Checker) HasMX(ctx context.Context, address string) bool {
	at := strings.LastIndex(address, "@")
	if at < 0 || at == len(address)-1 {
		return false
	}
	domain := address[at+1:]

	lookupCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	records, err := c.resolver.LookupMX(lookupCtx, domain)
	if err != nil {
		return false
	}
	return len(records) > 0
}
