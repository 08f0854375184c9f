//go:build windows

package display

import (
	"fmt"
	"log"
	"unsafe"

	"golang.org/x/sys/windows"
)

var user32 = windows.NewLazySystemDLL("user32.dll")

var (
	procGetDisplayConfigBufferSizes = user32.NewProc("GetDisplayConfigBufferSizes")
	procQueryDisplayConfig          = user32.NewProc("QueryDisplayConfig")
	procDisplayConfigGetDeviceInfo  = user32.NewProc("DisplayConfigGetDeviceInfo")
)

const (
	qdcOnlyActivePaths = 0x00000002

	modeInfoTypeSource = 1

	deviceInfoGetTargetName = 2
)

type luid struct {
	LowPart  uint32
	HighPart int32
}

func (l luid) id() uint64 { return uint64(uint32(l.HighPart))<<32 | uint64(l.LowPart) }

type rational struct{ Numerator, Denominator uint32 }

type pathSourceInfo struct {
	AdapterID   luid
	ID          uint32
	ModeInfoIdx uint32
	StatusFlags uint32
}

type pathTargetInfo struct {
	AdapterID        luid
	ID               uint32
	ModeInfoIdx      uint32
	OutputTechnology uint32
	Rotation         uint32
	Scaling          uint32
	RefreshRate      rational
	ScanLineOrdering uint32
	TargetAvailable  int32
	StatusFlags      uint32
}

// pathInfo mirrors DISPLAYCONFIG_PATH_INFO.
type pathInfo struct {
	Source pathSourceInfo
	Target pathTargetInfo
	Flags  uint32
}

// modeInfo mirrors DISPLAYCONFIG_MODE_INFO; the union is kept as raw bytes.
type modeInfo struct {
	InfoType  uint32
	ID        uint32
	AdapterID luid
	union     [48]byte
}

type sourceMode struct {
	Width       uint32
	Height      uint32
	PixelFormat uint32
	X, Y        int32
}

type deviceInfoHeader struct {
	Type      uint32
	Size      uint32
	AdapterID luid
	ID        uint32
}

// targetDeviceName mirrors DISPLAYCONFIG_TARGET_DEVICE_NAME.
type targetDeviceName struct {
	Header                    deviceInfoHeader
	Flags                     uint32
	OutputTechnology          uint32
	EdidManufactureID         uint16
	EdidProductCodeID         uint16
	ConnectorInstance         uint32
	MonitorFriendlyDeviceName [64]uint16
	MonitorDevicePath         [128]uint16
}

// ActivePaths returns the active display paths in QueryDisplayConfig order.
func ActivePaths() ([]Path, error) {
	paths, modes, err := queryDisplayConfig()
	if err != nil {
		return nil, err
	}

	out := make([]Path, 0, len(paths))
	for _, p := range paths {
		name, err := targetName(p.Target.AdapterID, p.Target.ID)
		if err != nil {
			log.Printf("display: target %d: %v", p.Target.ID, err)
			continue
		}
		dp := Path{
			DevicePath:   windows.UTF16ToString(name.MonitorDevicePath[:]),
			FriendlyName: windows.UTF16ToString(name.MonitorFriendlyDeviceName[:]),
			Connector:    ConnectorName(p.Target.OutputTechnology),
			AdapterID:    p.Source.AdapterID.id(),
			SourceID:     p.Source.ID,
		}
		if idx := p.Source.ModeInfoIdx; idx < uint32(len(modes)) && modes[idx].InfoType == modeInfoTypeSource {
			sm := (*sourceMode)(unsafe.Pointer(&modes[idx].union[0]))
			dp.X, dp.Y = sm.X, sm.Y
		}
		out = append(out, dp)
	}
	markClones(out)
	return out, nil
}

func queryDisplayConfig() ([]pathInfo, []modeInfo, error) {
	for {
		var numPaths, numModes uint32
		ret, _, _ := procGetDisplayConfigBufferSizes.Call(qdcOnlyActivePaths,
			uintptr(unsafe.Pointer(&numPaths)), uintptr(unsafe.Pointer(&numModes)))
		if ret != 0 {
			return nil, nil, fmt.Errorf("GetDisplayConfigBufferSizes: %w", windows.Errno(ret))
		}
		if numPaths == 0 {
			return nil, nil, nil
		}

		paths := make([]pathInfo, numPaths)
		modes := make([]modeInfo, max(numModes, 1))
		ret, _, _ = procQueryDisplayConfig.Call(qdcOnlyActivePaths,
			uintptr(unsafe.Pointer(&numPaths)), uintptr(unsafe.Pointer(&paths[0])),
			uintptr(unsafe.Pointer(&numModes)), uintptr(unsafe.Pointer(&modes[0])),
			0)
		switch windows.Errno(ret) {
		case windows.ERROR_SUCCESS:
			return paths[:numPaths], modes[:numModes], nil
		case windows.ERROR_INSUFFICIENT_BUFFER:
			// Topology changed between the two calls; size again.
			continue
		default:
			return nil, nil, fmt.Errorf("QueryDisplayConfig: %w", windows.Errno(ret))
		}
	}
}

func targetName(adapter luid, id uint32) (*targetDeviceName, error) {
	name := &targetDeviceName{
		Header: deviceInfoHeader{
			Type:      deviceInfoGetTargetName,
			AdapterID: adapter,
			ID:        id,
		},
	}
	name.Header.Size = uint32(unsafe.Sizeof(*name))
	ret, _, _ := procDisplayConfigGetDeviceInfo.Call(uintptr(unsafe.Pointer(&name.Header)))
	if ret != 0 {
		return nil, fmt.Errorf("DisplayConfigGetDeviceInfo: %w", windows.Errno(ret))
	}
	return name, nil
}
