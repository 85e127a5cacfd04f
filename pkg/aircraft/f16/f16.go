// Package f16 declares the Falcon BMS F-16 interface. Falcon exports flight
// data through shared memory and accepts no commands, so every function is
// a read-only value.
package f16

import (
	"simlink/pkg/catalog"
	"simlink/pkg/netfunc"
	"simlink/pkg/transport/falcon"
)

// Name is the interface name used in configuration.
const Name = "F-16C"

// FlightData is the single device: the shared FlightData block.
const FlightData catalog.DeviceID = 1

// Catalog is the F-16 device catalog.
var Catalog = catalog.MustNew(Name, "f16",
	[]catalog.Device{{ID: FlightData, Name: "FLIGHT_DATA", Ident: "FlightData"}},
	nil,
)

// Functions returns one value per exported FlightData member.
func Functions() []netfunc.Function {
	out := make([]netfunc.Function, 0, len(falcon.DefaultFields))
	for _, f := range falcon.DefaultFields {
		format := f.Format
		if format == "" {
			format = netfunc.FormatDefault
		}
		out = append(out, netfunc.NewNetworkValue(f.ID, f.Name, FlightData, format))
	}
	return out
}
