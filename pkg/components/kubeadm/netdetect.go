package kubeadm

import (
	"errors"
	"fmt"
	"net"
)

// ErrNetworkDetection indicates the node's primary outbound IP could not be
// determined or is not a well-formed IPv4 address.
var ErrNetworkDetection = errors.New("failed to detect primary node IP")

// detectProbeAddr is a routable address used to resolve the preferred outbound
// interface. UDP dialing performs no handshake, so no packets are sent.
const detectProbeAddr = "8.8.8.8:53"

// DetectPrimaryIPv4 returns the host's primary outbound IPv4 address, the one
// the default route would use. The bootstrap configuration advertises it as
// the control-plane endpoint.
func DetectPrimaryIPv4() (string, error) {
	conn, err := net.Dial("udp4", detectProbeAddr)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNetworkDetection, err)
	}
	defer conn.Close()

	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok {
		return "", fmt.Errorf("%w: unexpected local address type %T", ErrNetworkDetection, conn.LocalAddr())
	}

	return validateIPv4(addr.IP.String())
}

// validateIPv4 rejects anything that is not a well-formed, non-loopback IPv4
// address so a broken route never reaches the bootstrap CLI.
func validateIPv4(raw string) (string, error) {
	ip := net.ParseIP(raw)
	if ip == nil || ip.To4() == nil {
		return "", fmt.Errorf("%w: %q is not a valid IPv4 address", ErrNetworkDetection, raw)
	}
	if ip.IsLoopback() || ip.IsUnspecified() {
		return "", fmt.Errorf("%w: %q is not a routable address", ErrNetworkDetection, raw)
	}
	return ip.String(), nil
}
