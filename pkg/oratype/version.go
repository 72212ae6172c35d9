package oratype

import (
	"fmt"

	"github.com/leapstack-labs/oraq/pkg/dpi"
)

// Version is a five-part Oracle client or server version number.
type Version struct {
	Major      int
	Minor      int
	Update     int
	Patch      int
	PortUpdate int
}

// VersionFromInfo converts the native layer's version report.
func VersionFromInfo(v dpi.VersionInfo) Version {
	return Version{
		Major:      v.Version,
		Minor:      v.Release,
		Update:     v.Update,
		Patch:      v.PortRelease,
		PortUpdate: v.PortUpdate,
	}
}

// Compare orders two versions: -1 if v < other, 0 if equal, 1 if v > other.
func (v Version) Compare(other Version) int {
	a := [5]int{v.Major, v.Minor, v.Update, v.Patch, v.PortUpdate}
	b := [5]int{other.Major, other.Minor, other.Update, other.Patch, other.PortUpdate}
	for i := range a {
		switch {
		case a[i] < b[i]:
			return -1
		case a[i] > b[i]:
			return 1
		}
	}
	return 0
}

// String implements fmt.Stringer.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d.%d.%d", v.Major, v.Minor, v.Update, v.Patch, v.PortUpdate)
}
