package testutil

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFreePort(t *testing.T) {
	port := FreePort(t)
	assert.Greater(t, port, 0)
	assert.Less(t, port, 65536)
}

func TestFreePortUnique(t *testing.T) {
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		ports = make(map[int]bool)
	)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			port := FreePort(t)
			mu.Lock()
			defer mu.Unlock()
			assert.False(t, ports[port], "port %d was handed out twice", port)
			ports[port] = true
		}()
	}
	wg.Wait()
	assert.Len(t, ports, 20)
}

func TestFreeAddr(t *testing.T) {
	addr := FreeAddr(t)
	assert.True(t, strings.HasPrefix(addr, "127.0.0.1:"), addr)
}
