// Package testutil holds helpers shared by tests that bind real sockets.
package testutil

import (
	"fmt"
	"net"
	"sync"
	"testing"
)

var (
	portMutex sync.Mutex
	usedPorts = make(map[int]struct{})
)

// FreePort returns a loopback TCP port that no other caller of FreePort in this process has
// been handed.
func FreePort(t *testing.T) int {
	t.Helper()
	portMutex.Lock()
	defer portMutex.Unlock()

	for {
		l, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("failed to reserve a port: %v", err)
		}
		p := l.Addr().(*net.TCPAddr).Port
		if err := l.Close(); err != nil {
			t.Fatalf("failed to release port %d: %v", p, err)
		}
		if _, taken := usedPorts[p]; taken {
			continue
		}
		usedPorts[p] = struct{}{}
		return p
	}
}

// FreeAddr returns a listen address on 127.0.0.1 for FreePort.
func FreeAddr(t *testing.T) string {
	t.Helper()
	return fmt.Sprintf("127.0.0.1:%d", FreePort(t))
}
