// Package device holds the audio output device records the reconciler works on.
package device

// Device is one active render endpoint as reported by the OS.
// ID is opaque and only stable for the lifetime of the endpoint.
type Device struct {
	ID        string
	Name      string
	IsDefault bool
}

// Inventory is one enumeration snapshot. It is always replaced as a whole,
// never patched in place.
type Inventory []Device

// Build creates an inventory from enumerated (id, name) pairs, marking the
// record whose id equals defaultID. No match leaves every record unmarked.
func Build(ids, names []string, defaultID string) Inventory {
	inv := make(Inventory, 0, len(ids))
	for i, id := range ids {
		name := ""
		if i < len(names) {
			name = names[i]
		}
		inv = append(inv, Device{
			ID:        id,
			Name:      name,
			IsDefault: defaultID != "" && id == defaultID,
		})
	}
	return inv
}

// Find returns the device with the given id
func (inv Inventory) Find(id string) (Device, bool) {
	if id == "" {
		return Device{}, false
	}
	for _, d := range inv {
		if d.ID == id {
			return d, true
		}
	}
	return Device{}, false
}

// Default returns the device currently marked as the system default
func (inv Inventory) Default() (Device, bool) {
	for _, d := range inv {
		if d.IsDefault {
			return d, true
		}
	}
	return Device{}, false
}

// DefaultID returns the id of the default device, or "" when none is marked
func (inv Inventory) DefaultID() string {
	d, _ := inv.Default()
	return d.ID
}

// Clone returns a copy that shares no backing array with inv
func (inv Inventory) Clone() Inventory {
	if len(inv) == 0 {
		return nil
	}
	dup := make(Inventory, len(inv))
	copy(dup, inv)
	return dup
}
