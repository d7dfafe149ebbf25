package models

import "time"

// StatusReport is the message the watch service publishes for every status poll.
type StatusReport struct {
	Timestamp time.Time    `json:"timestamp"`
	Alarm     bool         `json:"alarm"`  // Firmware alarm condition at poll time
	Armed     bool         `json:"armed"`  // Whether the device would send alarm messages
	Status    StatusRecord `json:"status"` // Decoded status, keys in device order
}
