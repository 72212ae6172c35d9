package oratype

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leapstack-labs/oraq/pkg/dpi"
)

func TestVersionFromInfoAndString(t *testing.T) {
	v := VersionFromInfo(dpi.VersionInfo{Version: 23, Release: 4, Update: 0, PortRelease: 24, PortUpdate: 5})
	assert.Equal(t, "23.4.0.24.5", v.String())
}

func TestVersionCompare(t *testing.T) {
	a := Version{Major: 19, Minor: 3}
	b := Version{Major: 23, Minor: 4}
	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 1, b.Compare(a))
	assert.Equal(t, 0, a.Compare(a))
	assert.Equal(t, -1, Version{Major: 23, Minor: 4}.Compare(Version{Major: 23, Minor: 4, Update: 1}))
}
