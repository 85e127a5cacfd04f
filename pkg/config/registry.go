package config

// Persistent state keys (Registry)
const (
	KeySimProvider     = "sim_provider"
	KeyAircraft        = "aircraft"
	KeySwitchTolerance = "switch_tolerance"
	KeySyncLoop        = "sync_loop"
	KeyRemoteAddr      = "udp_remote"
)
