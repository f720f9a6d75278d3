package resolve

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitHostPort(t *testing.T) {
	cases := []struct {
		spec       string
		defaultPrt uint16
		wantHost   string
		wantPort   uint16
		wantErr    error
	}{
		{spec: "example.com", defaultPrt: 80, wantHost: "example.com", wantPort: 80},
		{spec: "example.com:8080", defaultPrt: 80, wantHost: "example.com", wantPort: 8080},
		{spec: "example.com:notaport", defaultPrt: 80, wantErr: ErrInvalidPort},
		{spec: "::1", defaultPrt: 80, wantHost: "::1", wantPort: 80},
		{spec: "fe80::1:2:3", defaultPrt: 80, wantHost: "fe80::1:2:3", wantPort: 80},
	}
	for _, c := range cases {
		t.Run(c.spec, func(t *testing.T) {
			host, port, err := splitHostPort(c.spec, c.defaultPrt)
			if c.wantErr != nil {
				require.ErrorIs(t, err, c.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, c.wantHost, host)
			assert.Equal(t, c.wantPort, port)
		})
	}
}

func TestHostPortRejectsIPv6Only(t *testing.T) {
	_, _, err := HostPort("::1", 80)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIPv6Unsupported))
}

func TestHostPortResolvesLoopback(t *testing.T) {
	ip, port, err := HostPort("127.0.0.1:9999", 80)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", ip.String())
	assert.EqualValues(t, 9999, port)
}

func TestHostPortUsesDefaultPort(t *testing.T) {
	ip, port, err := HostPort("127.0.0.1", 8888)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", ip.String())
	assert.EqualValues(t, 8888, port)
}

func TestHostPortInvalidPort(t *testing.T) {
	_, _, err := HostPort("127.0.0.1:notaport", 80)
	require.ErrorIs(t, err, ErrInvalidPort)
}
