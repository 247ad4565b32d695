package myaudio

import (
	"encoding/hex"
	"runtime"
	"strings"

	"github.com/gen2brain/malgo"

	"github.com/omotiv/muteone/internal/errors"
)

// DeviceInfo holds an immutable snapshot of an audio device taken at
// enumeration time. Hardware changes can make a snapshot stale; every
// stream open tolerates a missing device by falling back to the default.
type DeviceInfo struct {
	Index     int
	Name      string
	ID        string
	IsDefault bool
}

// Device names that indicate a loopback or system-mix style capture source.
var loopbackPatterns = []string{"stereo mix", "loopback", "blackhole", "monitor", "what u hear"}

// platformBackend returns the malgo backend for the current platform.
func platformBackend() malgo.Backend {
	switch runtime.GOOS {
	case "linux":
		return malgo.BackendAlsa
	case "windows":
		return malgo.BackendWasapi
	case "darwin":
		return malgo.BackendCoreaudio
	default:
		return malgo.BackendNull
	}
}

// ListCaptureDevices returns the available audio capture devices.
func ListCaptureDevices() ([]DeviceInfo, error) {
	return listDevices(malgo.Capture)
}

// ListPlaybackDevices returns the available audio playback devices.
func ListPlaybackDevices() ([]DeviceInfo, error) {
	return listDevices(malgo.Playback)
}

func listDevices(kind malgo.DeviceType) ([]DeviceInfo, error) {
	ctx, err := malgo.InitContext([]malgo.Backend{platformBackend()}, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, errors.New(err).
			Component("myaudio").
			Category(errors.CategoryDevice).
			Context("operation", "init_context").
			Build()
	}
	defer func() { _ = ctx.Uninit() }()

	infos, err := ctx.Devices(kind)
	if err != nil {
		return nil, errors.New(err).
			Component("myaudio").
			Category(errors.CategoryDevice).
			Context("operation", "enumerate_devices").
			Build()
	}

	devices := make([]DeviceInfo, 0, len(infos))
	for i := range infos {
		// Skip the discard/null device
		if strings.Contains(infos[i].Name(), "Discard all samples") {
			continue
		}
		devices = append(devices, DeviceInfo{
			Index:     i,
			Name:      infos[i].Name(),
			ID:        decodedDeviceID(&infos[i]),
			IsDefault: infos[i].IsDefault == 1,
		})
	}
	return devices, nil
}

// selectDevice resolves a device name or ID to an enumerated device.
// The fallback order for capture sources is: explicit name/ID match,
// then a loopback/system-mix style device when preferLoopback is set,
// then the system default.
func selectDevice(infos []malgo.DeviceInfo, name string, preferLoopback bool) (*malgo.DeviceInfo, error) {
	if name != "" && name != "default" && name != "sysdefault" {
		for i := range infos {
			if matchesDevice(&infos[i], name) {
				return &infos[i], nil
			}
		}
		// Requested device is gone, fall through to the default search
	}

	if preferLoopback {
		for i := range infos {
			lower := strings.ToLower(infos[i].Name())
			for _, pattern := range loopbackPatterns {
				if strings.Contains(lower, pattern) {
					return &infos[i], nil
				}
			}
		}
	}

	for i := range infos {
		if infos[i].IsDefault == 1 {
			return &infos[i], nil
		}
	}
	if len(infos) > 0 {
		return &infos[0], nil
	}
	return nil, errors.New(errors.ErrDeviceUnavailable).
		Component("myaudio").
		Category(errors.CategoryDevice).
		Context("requested", name).
		Build()
}

// matchesDevice checks if the device matches the requested name or ID.
func matchesDevice(info *malgo.DeviceInfo, name string) bool {
	return decodedDeviceID(info) == name || strings.Contains(info.Name(), name)
}

// decodedDeviceID converts the hexadecimal device ID to an ASCII string,
// falling back to the raw hex when it does not decode.
func decodedDeviceID(info *malgo.DeviceInfo) string {
	decoded, err := hex.DecodeString(info.ID.String())
	if err != nil {
		return info.ID.String()
	}
	return string(decoded)
}
