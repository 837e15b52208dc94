// Package ports finds TCP ports with no listener behind them. The gate tests
// use it to build targets that are guaranteed to refuse connections.
package ports

import (
	"net"

	"github.com/entrygate/entrygate/internal/errs"
)

// Port is a TCP port number.
type Port = int

// FindAvailable asks the kernel for an unused port by listening on port 0 and
// immediately closing the listener. The returned port is free at the time of
// the call but may be reused by the kernel afterwards.
//
// Copied and slightly modified from https://github.com/phayes/freeport
// Licensed under BSD-3. Copyright (c) 2014, Patrick Hayes
func FindAvailable() (p Port, mErr error) {
	addr, err := net.ResolveTCPAddr("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}
	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return 0, err
	}
	defer errs.Capture(&mErr, l.Close, "close probe listener")
	return l.Addr().(*net.TCPAddr).Port, nil
}
