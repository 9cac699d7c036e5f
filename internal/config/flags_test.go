package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNetAddress_Set_Valid(t *testing.T) {
	var a NetAddress
	require.NoError(t, a.Set("localhost:8090"))
	assert.Equal(t, "localhost", a.Host)
	assert.Equal(t, 8090, a.Port)
	assert.Equal(t, "localhost:8090", a.String())
}

func TestNetAddress_Set_IP(t *testing.T) {
	var a NetAddress
	require.NoError(t, a.Set("127.0.0.1:9001"))
	assert.Equal(t, "127.0.0.1", a.Host)
	assert.Equal(t, 9001, a.Port)
}

func TestNetAddress_Set_Invalid(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{name: "no port", in: "localhost"},
		{name: "bad port", in: "localhost:abc"},
		{name: "negative port", in: "localhost:-1"},
		{name: "bad host", in: "not-an-ip:8080"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a NetAddress
			assert.Error(t, a.Set(tt.in))
		})
	}
}

func TestNetAddress_String_Zero(t *testing.T) {
	var a NetAddress
	assert.Equal(t, "", a.String())
}
