package falcon

import (
	"encoding/binary"
	"math"
)

// FieldKind is the binary type of a FlightData field.
type FieldKind int

const (
	Float32 FieldKind = iota
	Int32
)

// Field maps one FlightData member to an export ID.
type Field struct {
	ID     int
	Name   string
	Offset int
	Kind   FieldKind
	Scale  float64 // Multiplier applied before formatting; zero means 1
	Format string
}

// AreaName is the shared-memory area published by Falcon BMS.
const AreaName = "FalconSharedMemoryArea"

// radToDeg converts the attitude members, which Falcon publishes in radians.
const radToDeg = 180 / math.Pi

// FlightData member offsets. Every member is four bytes wide.
const (
	offAlpha        = 6 * 4
	offBeta         = 7 * 4
	offPitch        = 9 * 4
	offRoll         = 10 * 4
	offYaw          = 11 * 4
	offMach         = 12 * 4
	offKIAS         = 13 * 4
	offNozzlePos    = 17 * 4
	offInternalFuel = 18 * 4
	offExternalFuel = 19 * 4
	offFuelFlow     = 20 * 4
	offRPM          = 21 * 4
	offFTIT         = 22 * 4
	offGearPos      = 23 * 4
	offSpeedBrake   = 24 * 4
	offEPUFuel      = 25 * 4
	offOilPressure  = 26 * 4
	offLightBits    = 27 * 4
	offLightBits2   = 31 * 4
	offLightBits3   = 32 * 4
	offChaffCount   = 33 * 4
	offFlareCount   = 34 * 4
	offNoseGearPos  = 35 * 4
	offLeftGearPos  = 36 * 4
	offRightGearPos = 37 * 4

	// MinAreaSize covers every member read by DefaultFields.
	MinAreaSize = offRightGearPos + 4
)

// DefaultFields are the FlightData members exported by the Falcon link.
var DefaultFields = []Field{
	{ID: 2001, Name: "Alpha", Offset: offAlpha, Format: "%0.1f"},
	{ID: 2002, Name: "Beta", Offset: offBeta, Format: "%0.1f"},
	{ID: 2003, Name: "Pitch", Offset: offPitch, Scale: radToDeg, Format: "%0.1f"},
	{ID: 2004, Name: "Roll", Offset: offRoll, Scale: radToDeg, Format: "%0.1f"},
	{ID: 2005, Name: "Yaw", Offset: offYaw, Scale: radToDeg, Format: "%0.1f"},
	{ID: 2006, Name: "Mach", Offset: offMach, Format: "%0.2f"},
	{ID: 2007, Name: "KIAS", Offset: offKIAS, Format: "%0.0f"},
	{ID: 2008, Name: "Nozzle Position", Offset: offNozzlePos, Format: "%0.2f"},
	{ID: 2009, Name: "Internal Fuel", Offset: offInternalFuel, Format: "%0.0f"},
	{ID: 2010, Name: "External Fuel", Offset: offExternalFuel, Format: "%0.0f"},
	{ID: 2011, Name: "Fuel Flow", Offset: offFuelFlow, Format: "%0.0f"},
	{ID: 2012, Name: "RPM", Offset: offRPM, Format: "%0.1f"},
	{ID: 2013, Name: "FTIT", Offset: offFTIT, Scale: 100, Format: "%0.0f"},
	{ID: 2014, Name: "Gear Position", Offset: offGearPos, Format: "%0.2f"},
	{ID: 2015, Name: "Speed Brake", Offset: offSpeedBrake, Format: "%0.2f"},
	{ID: 2016, Name: "EPU Fuel", Offset: offEPUFuel, Format: "%0.0f"},
	{ID: 2017, Name: "Oil Pressure", Offset: offOilPressure, Format: "%0.0f"},
	{ID: 2018, Name: "Light Bits", Offset: offLightBits, Kind: Int32, Format: "%d"},
	{ID: 2019, Name: "Light Bits 2", Offset: offLightBits2, Kind: Int32, Format: "%d"},
	{ID: 2020, Name: "Light Bits 3", Offset: offLightBits3, Kind: Int32, Format: "%d"},
	{ID: 2021, Name: "Chaff Count", Offset: offChaffCount, Format: "%0.0f"},
	{ID: 2022, Name: "Flare Count", Offset: offFlareCount, Format: "%0.0f"},
	{ID: 2023, Name: "Nose Gear Position", Offset: offNoseGearPos, Format: "%0.2f"},
	{ID: 2024, Name: "Left Gear Position", Offset: offLeftGearPos, Format: "%0.2f"},
	{ID: 2025, Name: "Right Gear Position", Offset: offRightGearPos, Format: "%0.2f"},
}

// read decodes a field from a little-endian FlightData block. ok is false
// when the block is too short.
func (f Field) read(b []byte) (v float64, ok bool) {
	if f.Offset < 0 || f.Offset+4 > len(b) {
		return 0, false
	}
	raw := binary.LittleEndian.Uint32(b[f.Offset:])
	switch f.Kind {
	case Int32:
		return float64(int32(raw)), true
	default:
		v = float64(math.Float32frombits(raw))
	}
	if f.Scale != 0 {
		v *= f.Scale
	}
	return v, true
}
