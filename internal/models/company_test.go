package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddress(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Address
	}{
		{
			name: "Full address",
			raw:  "Carrera 7 # 71 - 21",
			want: Address{RoadType: "Carrera", MainRoad: "7", CrossRoad: "71", Complement: "21"},
		},
		{
			name: "Without road type",
			raw:  "10 #20-30",
			want: Address{RoadType: "Calle", MainRoad: "10", CrossRoad: "20", Complement: "30"},
		},
		{
			name: "Without complement",
			raw:  "avenida Boyacá # 64",
			want: Address{RoadType: "Avenida", MainRoad: "Boyacá", CrossRoad: "64"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAddress(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, raw := range []string{"", "Calle 10", "# 20 - 30", "Calle 10 # - 30"} {
		_, err := ParseAddress(raw)
		assert.ErrorIs(t, err, ErrInvalidAddress, raw)
	}
}

func TestAddressString(t *testing.T) {
	assert.Equal(t, "Carrera 7 # 71 - 21", Address{RoadType: "Carrera", MainRoad: "7", CrossRoad: "71", Complement: "21"}.String())
	assert.Equal(t, "Calle 10 # 20", Address{MainRoad: "10", CrossRoad: "20"}.String())
}
