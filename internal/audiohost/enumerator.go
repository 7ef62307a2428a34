package audiohost

// BestEffortEnumerator is the production Enumerator. oto/v3 does not
// expose device enumeration itself (it always targets the platform
// default), so this returns the single default device oto would actually
// open, stereo by default; hapticctrl's detection fallback chain still
// runs against this list so the policy is exercised the same way it would
// be against a richer backend.
type BestEffortEnumerator struct {
	// DefaultChannels overrides the assumed channel count of the system
	// default device, for environments known to expose more outputs.
	// Zero means "use the conservative stereo assumption".
	DefaultChannels int
}

// Enumerate returns a single DeviceInfo describing the platform default
// output.
func (e BestEffortEnumerator) Enumerate() ([]DeviceInfo, error) {
	channels := e.DefaultChannels
	if channels == 0 {
		channels = 2
	}
	return []DeviceInfo{
		{Name: "default", OutputChannels: channels, IsDefault: true},
	}, nil
}
