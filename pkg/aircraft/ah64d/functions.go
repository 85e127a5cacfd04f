package ah64d

import (
	"simlink/pkg/catalog"
	"simlink/pkg/functable"
	"simlink/pkg/netfunc"
)

// Export IDs of values the cockpit definitions do not describe.
const (
	IDFuelQuantity = 2100
	IDRotorRPM     = 2101
	IDEngine1TGT   = 2102
	IDEngine2TGT   = 2103
	IDUFDLine1     = 2110
	IDUFDLine2     = 2111
)

// Functions returns the hand-written functions. They take precedence over
// compiled functions with the same export ID.
func Functions() []netfunc.Function {
	tgt := netfunc.MustCalibration(
		netfunc.Point{X: 0, Y: 0},
		netfunc.Point{X: 0.5, Y: 600},
		netfunc.Point{X: 0.8, Y: 867},
		netfunc.Point{X: 1, Y: 1000},
	)
	return []netfunc.Function{
		netfunc.MustScaledNetworkValue(IDFuelQuantity, "Fuel Quantity", FuelInterface, "%0.0f",
			netfunc.MustCalibration(netfunc.Point{X: 0, Y: 0}, netfunc.Point{X: 1, Y: 2500})),
		netfunc.MustScaledNetworkValue(IDRotorRPM, "Rotor RPM", EngineInterface, netfunc.FormatTenths,
			netfunc.MustCalibration(netfunc.Point{X: 0, Y: 0}, netfunc.Point{X: 1, Y: 110})),
		netfunc.MustScaledNetworkValue(IDEngine1TGT, "Engine 1 TGT", EngineInterface, "%0.0f", tgt),
		netfunc.MustScaledNetworkValue(IDEngine2TGT, "Engine 2 TGT", EngineInterface, "%0.0f", tgt),
		netfunc.NewNetworkValue(IDUFDLine1, "UFD Line 1", CommPanel, netfunc.FormatText),
		netfunc.NewNetworkValue(IDUFDLine2, "UFD Line 2", CommPanel, netfunc.FormatText),

		// Overrides the compiled APU button; the device expects float values.
		netfunc.NewPushButton(34, "APU Start", catalog.Ref{Device: EngineInterface, Command: EngApuBtn}).WithValues("1.0", "0.0"),
	}
}

// Table merges the hand-written and generated functions.
func Table(opts ...functable.Option) (*functable.Table, []functable.Diagnostic) {
	return functable.Merge(Functions(), GeneratedFunctions(), opts...)
}
