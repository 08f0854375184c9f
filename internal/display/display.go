// Package display enumerates the active display paths of the desktop and
// reports topology changes.
package display

import "fmt"

// Path is one active source→target display path.
type Path struct {
	DevicePath   string // stable target device path, e.g. \\?\DISPLAY#...
	FriendlyName string // EDID monitor name, may be empty
	Connector    string // output technology, see ConnectorName
	X, Y         int32  // source position on the virtual desktop
	AdapterID    uint64
	SourceID     uint32 // 0-based source index on the adapter
	CloneMember  bool   // shares its source with an earlier path
}

// Position formats the desktop position as "x,y".
func (p Path) Position() string {
	return fmt.Sprintf("%d,%d", p.X, p.Y)
}

// DISPLAYCONFIG_VIDEO_OUTPUT_TECHNOLOGY values.
const (
	outputOther               = 0xFFFFFFFF
	outputHD15                = 0
	outputSVideo              = 1
	outputCompositeVideo      = 2
	outputComponentVideo      = 3
	outputDVI                 = 4
	outputHDMI                = 5
	outputLVDS                = 6
	outputDJPN                = 8
	outputSDI                 = 9
	outputDisplayPortExternal = 10
	outputDisplayPortEmbedded = 11
	outputUDIExternal         = 12
	outputUDIEmbedded         = 13
	outputSDTVDongle          = 14
	outputMiracast            = 15
	outputIndirectWired       = 16
	outputIndirectVirtual     = 17
	outputInternal            = 0x80000000
)

var connectorNames = map[uint32]string{
	outputOther:               "Other",
	outputHD15:                "HD15",
	outputSVideo:              "SVideo",
	outputCompositeVideo:      "CompositeVideo",
	outputComponentVideo:      "ComponentVideo",
	outputDVI:                 "DVI",
	outputHDMI:                "HDMI",
	outputLVDS:                "LVDS",
	outputDJPN:                "DJPN",
	outputSDI:                 "SDI",
	outputDisplayPortExternal: "DisplayPort", // external DP is just "DisplayPort" to users
	outputDisplayPortEmbedded: "DisplayPortEmbedded",
	outputUDIExternal:         "UDIExternal",
	outputUDIEmbedded:         "UDIEmbedded",
	outputSDTVDongle:          "SDTVDongle",
	outputMiracast:            "Miracast",
	outputIndirectWired:       "IndirectWired",
	outputIndirectVirtual:     "IndirectVirtual",
	outputInternal:            "Internal",
}

// ConnectorName names an output technology value. Unknown values are "???".
func ConnectorName(tech uint32) string {
	if name, ok := connectorNames[tech]; ok {
		return name
	}
	return "???"
}

// markClones flags every path whose source was already used by an earlier
// path. Those mirror another output rather than being an independent screen.
func markClones(paths []Path) {
	type source struct {
		adapter uint64
		id      uint32
	}
	seen := map[source]bool{}
	for i := range paths {
		s := source{paths[i].AdapterID, paths[i].SourceID}
		paths[i].CloneMember = seen[s]
		seen[s] = true
	}
}
