// internal/writer/builder.go
package writer

// Published paths.
const (
	PathProcessName    = "/Mgmt/ProcessName"
	PathProcessVersion = "/Mgmt/ProcessVersion"
	PathConnection     = "/Mgmt/Connection"

	PathDeviceInstance  = "/DeviceInstance"
	PathProductID       = "/ProductId"
	PathProductName     = "/ProductName"
	PathCustomName      = "/CustomName"
	PathFirmwareVersion = "/FirmwareVersion"
	PathConnected       = "/Connected"
	PathStatus          = "/Status"

	PathFluidType = "/FluidType"
	PathCapacity  = "/Capacity"
	PathStandard  = "/Standard"

	PathLevel       = "/Level"
	PathRemaining   = "/Remaining"
	PathUnit        = "/Unit"
	PathUpdateIndex = "/UpdateIndex"
)

// ProductID marks a product without an assigned id.
const ProductID = 0xFFFF

// Identity is the static part of the published service.
type Identity struct {
	ProcessName    string
	ProcessVersion string
	Connection     string

	DeviceInstance  int
	ProductName     string
	CustomName      string
	FirmwareVersion string

	FluidType int
	Capacity  float64
	Standard  int

	// PublishUnit adds /Unit next to /Level.
	PublishUnit bool
}

// BuildItems converts the identity into the full item list.
// Dynamic items start invalid; the caller seeds them with SetInitial.
func BuildItems(id Identity) []Item {
	items := []Item{
		{Path: PathProcessName, Initial: id.ProcessName},
		{Path: PathProcessVersion, Initial: id.ProcessVersion},
		{Path: PathConnection, Initial: id.Connection},

		{Path: PathDeviceInstance, Initial: id.DeviceInstance},
		{Path: PathProductID, Initial: ProductID},
		{Path: PathProductName, Initial: id.ProductName},
		{Path: PathCustomName, Initial: id.CustomName},
		{Path: PathFirmwareVersion, Initial: id.FirmwareVersion},
		{Path: PathConnected, Initial: 1},
		{Path: PathStatus, Initial: 0},

		{Path: PathFluidType, Initial: id.FluidType},
		{Path: PathCapacity, Initial: id.Capacity},
		{Path: PathStandard, Initial: id.Standard},

		{Path: PathLevel, Format: FormatNumber, Writeable: true},
		{Path: PathRemaining, Format: FormatVolume, Writeable: true},
		{Path: PathUpdateIndex, Initial: 0, Format: FormatInt, Writeable: true},
	}

	if id.PublishUnit {
		items = append(items, Item{Path: PathUnit, Format: FormatText, Writeable: true})
	}

	return items
}

// SetInitial replaces the initial value of path. Unknown paths are ignored.
func SetInitial(items []Item, path string, v any) {
	for i := range items {
		if items[i].Path == path {
			items[i].Initial = v
			return
		}
	}
}

// HasPath reports whether path is part of items.
func HasPath(items []Item, path string) bool {
	for _, it := range items {
		if it.Path == path {
			return true
		}
	}
	return false
}
