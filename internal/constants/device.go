package constants

import "time"

// Readable device variables.
const (
	VariablePower    = "power"
	VariableUPSPower = "upspower"
	VariablePressure = "pressure"
	VariableStatus   = "status"
)

// Callable device functions.
const (
	FunctionAlarm     = "alarm"
	FunctionLED       = "led"
	FunctionThreshold = "threshold"
	FunctionTest      = "test"
)

// Fields of the compact status string published by the firmware.
const (
	StatusFieldPower     = "power"
	StatusFieldUPS       = "ups"
	StatusFieldPressure  = "pressure"
	StatusFieldThreshold = "pthresh"
	StatusFieldArmed     = "armed"
)

// Alarm function arguments and the state the firmware acknowledges for each.
const (
	AlarmArm      = "arm"
	AlarmDisarm   = "disarm"
	AlarmArmed    = 1
	AlarmDisarmed = 0
)

const (
	// DisplayPressureLimit is the console's fixed warning limit in mbar. It is
	// not read from the device's configured alarm threshold.
	DisplayPressureLimit = 2501.0

	// DefaultRelayURL is the cloud relay the device is registered with.
	DefaultRelayURL = "https://api.particle.io"

	// DefaultRelayTimeout bounds a single relay round trip.
	DefaultRelayTimeout = 30 * time.Second

	// DefaultWatchInterval matches the firmware's alarm publish period.
	DefaultWatchInterval = 2 * time.Minute

	DefaultConfigFile = "sentinel_config.json"
)
