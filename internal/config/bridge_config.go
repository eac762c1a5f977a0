package config

import "time"

type BridgeConfig interface {
	GetBridgeURL() string
	GetBridgeSubject() string
	GetBridgeTimeout() time.Duration
}

type Bridge struct{}

var _ BridgeConfig = Bridge{}

// GetBridgeURL is the NATS URL of the desktop shell. Empty means the client
// runs without a host bridge.
func (Bridge) GetBridgeURL() string {
	return GetEnv("BRIDGE_URL", "")
}

func (Bridge) GetBridgeSubject() string {
	return GetEnv("BRIDGE_SUBJECT", "depot.host")
}

func (Bridge) GetBridgeTimeout() time.Duration {
	return GetEnvDuration("BRIDGE_TIMEOUT", 2*time.Second)
}
