package kerneldaemon

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ConnectionInfo mirrors the standard Jupyter kernel connection file shape
// (the JSON a kernel reads from its -f flag), so connection files written
// by this daemon are byte-compatible with any real kernel implementation.
type ConnectionInfo struct {
	ShellPort       int    `json:"shell_port"`
	IOPubPort       int    `json:"iopub_port"`
	StdinPort       int    `json:"stdin_port"`
	ControlPort     int    `json:"control_port"`
	HBPort          int    `json:"hb_port"`
	IP              string `json:"ip"`
	Key             string `json:"key"`
	Transport       string `json:"transport"`
	SignatureScheme string `json:"signature_scheme"`
	KernelName      string `json:"kernel_name"`
}

// NewConnectionInfo allocates five loopback TCP ports and a fresh HMAC key,
// matching the original daemon's TCP-transport, hmac-sha256, UUID-key
// connection setup.
func NewConnectionInfo(kernelName string) (ConnectionInfo, error) {
	ports, err := allocatePorts(5)
	if err != nil {
		return ConnectionInfo{}, fmt.Errorf("kerneldaemon: allocate ports: %w", err)
	}
	return ConnectionInfo{
		ShellPort:       ports[0],
		IOPubPort:       ports[1],
		StdinPort:       ports[2],
		ControlPort:     ports[3],
		HBPort:          ports[4],
		IP:              "127.0.0.1",
		Key:             uuid.NewString(),
		Transport:       "tcp",
		SignatureScheme: "hmac-sha256",
		KernelName:      kernelName,
	}, nil
}

// allocatePorts binds n loopback listeners on port 0 to let the OS assign
// free ports, then closes them so the kernel process can bind in their
// place. Transient TOCTOU risk is inherent to this allocation style and
// matches the original daemon's approach.
func allocatePorts(n int) ([]int, error) {
	listeners := make([]*net.TCPListener, 0, n)
	defer func() {
		for _, l := range listeners {
			l.Close()
		}
	}()
	ports := make([]int, 0, n)
	for i := 0; i < n; i++ {
		l, err := net.ListenTCP("tcp", &net.TCPAddr{IP: net.ParseIP("127.0.0.1")})
		if err != nil {
			return nil, err
		}
		listeners = append(listeners, l)
		ports = append(ports, l.Addr().(*net.TCPAddr).Port)
	}
	return ports, nil
}

// WriteConnectionFile writes info as a connection file under dir, named
// after sessionID, and returns its path.
func WriteConnectionFile(dir, sessionID string, info ConnectionInfo) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("kerneldaemon: create runtime dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("kernel-%s.json", sessionID))
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return "", fmt.Errorf("kerneldaemon: marshal connection info: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("kerneldaemon: write connection file: %w", err)
	}
	return path, nil
}
