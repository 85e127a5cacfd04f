// Package ah64d declares the AH-64D device catalog and network functions.
package ah64d

import "simlink/pkg/catalog"

//go:generate go run simlink/cmd/clickc -interface AH-64D -source clickabledata.lua -output functions_gen.go -package ah64d

// Name is the interface name used in configuration.
const Name = "AH-64D"

// Devices.
const (
	ElecInterface   catalog.DeviceID = 1
	FuelInterface   catalog.DeviceID = 2
	EngineInterface catalog.DeviceID = 3
	ExtLights       catalog.DeviceID = 4
	IntLights       catalog.DeviceID = 5
	CommPanel       catalog.DeviceID = 6
)

// ELEC_INTERFACE commands.
const (
	ElecBat    catalog.CommandID = 3001
	ElecExtPwr catalog.CommandID = 3002
	ElecGen1   catalog.CommandID = 3003
	ElecGen2   catalog.CommandID = 3004
)

// FUEL_INTERFACE commands.
const (
	FuelXfeed   catalog.CommandID = 3001
	FuelBoost   catalog.CommandID = 3002
	FuelCheckDn catalog.CommandID = 3003
	FuelCheckUp catalog.CommandID = 3004
)

// ENGINE_INTERFACE commands.
const (
	EngEng1PwrLever catalog.CommandID = 3001
	EngEng2PwrLever catalog.CommandID = 3002
	EngStartSw      catalog.CommandID = 3003
	EngRotorBrake   catalog.CommandID = 3004
	EngApuBtn       catalog.CommandID = 3005
)

// EXT_LIGHTS commands.
const (
	ExtNavLights       catalog.CommandID = 3001
	ExtAnticol         catalog.CommandID = 3002
	ExtFormationLights catalog.CommandID = 3003
	ExtLandingLight    catalog.CommandID = 3004
)

// INT_LIGHTS commands.
const (
	IntPrimary              catalog.CommandID = 3001
	IntRockerSwitchPositive catalog.CommandID = 3002
	IntRockerSwitchNegative catalog.CommandID = 3003
	IntStbyInst             catalog.CommandID = 3004
	IntFlood                catalog.CommandID = 3005
)

// COMM_PANEL commands.
const (
	CommVolInc    catalog.CommandID = 3001
	CommVolDec    catalog.CommandID = 3002
	CommIcsMode   catalog.CommandID = 3003
	CommHoverMode catalog.CommandID = 3004
	CommIcsVol    catalog.CommandID = 3005
)

// Catalog is the AH-64D device catalog. Arguments 400-401 belong to the
// pilot station and 500-501 to the copilot/gunner.
var Catalog = catalog.MustNew(Name, "ah64d",
	[]catalog.Device{
		{ID: ElecInterface, Name: "ELEC_INTERFACE", Ident: "ElecInterface", Headings: []string{"Electric system", "Electrical"}},
		{ID: FuelInterface, Name: "FUEL_INTERFACE", Ident: "FuelInterface", Headings: []string{"Fuel system"}},
		{ID: EngineInterface, Name: "ENGINE_INTERFACE", Ident: "EngineInterface", Headings: []string{"Engines", "Engine control"}},
		{ID: ExtLights, Name: "EXT_LIGHTS", Ident: "ExtLights", Headings: []string{"External lights"}},
		{ID: IntLights, Name: "INT_LIGHTS", Ident: "IntLights", Headings: []string{"Interior lights", "Internal lights"}},
		{ID: CommPanel, Name: "COMM_PANEL", Ident: "CommPanel", Headings: []string{"Communication panel"}},
	},
	[]catalog.Command{
		{Device: ElecInterface, ID: ElecBat, Name: "BAT", Ident: "ElecBat"},
		{Device: ElecInterface, ID: ElecExtPwr, Name: "EXT_PWR", Ident: "ElecExtPwr"},
		{Device: ElecInterface, ID: ElecGen1, Name: "GEN1", Ident: "ElecGen1"},
		{Device: ElecInterface, ID: ElecGen2, Name: "GEN2", Ident: "ElecGen2"},

		{Device: FuelInterface, ID: FuelXfeed, Name: "FUEL_XFEED", Ident: "FuelXfeed"},
		{Device: FuelInterface, ID: FuelBoost, Name: "FUEL_BOOST", Ident: "FuelBoost"},
		{Device: FuelInterface, ID: FuelCheckDn, Name: "FUEL_CHECK_DN", Ident: "FuelCheckDn"},
		{Device: FuelInterface, ID: FuelCheckUp, Name: "FUEL_CHECK_UP", Ident: "FuelCheckUp"},

		{Device: EngineInterface, ID: EngEng1PwrLever, Name: "ENG1_PWR_LEVER", Ident: "EngEng1PwrLever", Input: true},
		{Device: EngineInterface, ID: EngEng2PwrLever, Name: "ENG2_PWR_LEVER", Ident: "EngEng2PwrLever", Input: true},
		{Device: EngineInterface, ID: EngStartSw, Name: "START_SW", Ident: "EngStartSw"},
		{Device: EngineInterface, ID: EngRotorBrake, Name: "ROTOR_BRAKE", Ident: "EngRotorBrake"},
		{Device: EngineInterface, ID: EngApuBtn, Name: "APU_BTN", Ident: "EngApuBtn"},

		{Device: ExtLights, ID: ExtNavLights, Name: "NAV_LIGHTS", Ident: "ExtNavLights"},
		{Device: ExtLights, ID: ExtAnticol, Name: "ANTICOL", Ident: "ExtAnticol"},
		{Device: ExtLights, ID: ExtFormationLights, Name: "FORMATION_LIGHTS", Ident: "ExtFormationLights", Input: true},
		{Device: ExtLights, ID: ExtLandingLight, Name: "LANDING_LIGHT", Ident: "ExtLandingLight"},

		{Device: IntLights, ID: IntPrimary, Name: "PRIMARY", Ident: "IntPrimary", Input: true},
		{Device: IntLights, ID: IntRockerSwitchPositive, Name: "Rocker_switch_positive", Ident: "IntRockerSwitchPositive"},
		{Device: IntLights, ID: IntRockerSwitchNegative, Name: "Rocker_switch_negative", Ident: "IntRockerSwitchNegative"},
		{Device: IntLights, ID: IntStbyInst, Name: "STBY_INST", Ident: "IntStbyInst"},
		{Device: IntLights, ID: IntFlood, Name: "FLOOD", Ident: "IntFlood"},

		{Device: CommPanel, ID: CommVolInc, Name: "VOL_INC", Ident: "CommVolInc"},
		{Device: CommPanel, ID: CommVolDec, Name: "VOL_DEC", Ident: "CommVolDec"},
		{Device: CommPanel, ID: CommIcsMode, Name: "ICS_MODE", Ident: "CommIcsMode"},
		{Device: CommPanel, ID: CommHoverMode, Name: "HOVER_MODE", Ident: "CommHoverMode"},
		{Device: CommPanel, ID: CommIcsVol, Name: "ICS_VOL", Ident: "CommIcsVol", Input: true},
	},
).WithStations(map[int]catalog.Station{
	400: catalog.StationPilot,
	401: catalog.StationPilot,
	500: catalog.StationCopilot,
	501: catalog.StationCopilot,
})
