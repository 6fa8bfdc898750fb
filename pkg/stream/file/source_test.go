package file

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/pcmscope/pkg/stream/common"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func writePCM(t *testing.T, size int) string {
	t.Helper()
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i)
	}
	path := filepath.Join(t.TempDir(), "capture.pcm")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestUnpacedReplay(t *testing.T) {
	config := DefaultConfig()
	config.Path = writePCM(t, 10)
	config.Paced = false
	config.ReadBufferSize = 4

	source, err := Open(config)
	require.NoError(t, err)
	defer source.Close()

	var got []byte
	for range 3 {
		out := source.ReadAvailable()
		require.Equal(t, common.OutcomeData, out.Kind)
		got = append(got, out.Data...)
	}
	assert.Len(t, got, 10)
	assert.Equal(t, common.OutcomeClosed, source.ReadAvailable().Kind)
	assert.Equal(t, common.OutcomeClosed, source.ReadAvailable().Kind)
}

func TestPacedReplay(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}

	config := DefaultConfig()
	config.Path = writePCM(t, 8192)
	config.SampleRate = 1000
	config.Channels = 2 // 4000 bytes per second
	config.ReadBufferSize = 8192

	source, err := Open(config, WithClock(clock.Now))
	require.NoError(t, err)
	defer source.Close()

	assert.Equal(t, common.OutcomeNoData, source.ReadAvailable().Kind)

	clock.now = clock.now.Add(100 * time.Millisecond)
	out := source.ReadAvailable()
	require.Equal(t, common.OutcomeData, out.Kind)
	assert.Len(t, out.Data, 400)

	assert.Equal(t, common.OutcomeNoData, source.ReadAvailable().Kind)

	clock.now = clock.now.Add(time.Second)
	out = source.ReadAvailable()
	require.Equal(t, common.OutcomeData, out.Kind)
	assert.Len(t, out.Data, 4000)
}

func TestLoopRewinds(t *testing.T) {
	config := DefaultConfig()
	config.Path = writePCM(t, 4)
	config.Paced = false
	config.Loop = true

	source, err := Open(config)
	require.NoError(t, err)
	defer source.Close()

	first := source.ReadAvailable()
	require.Equal(t, common.OutcomeData, first.Kind)
	assert.Equal(t, []byte{0, 1, 2, 3}, first.Data)

	assert.Equal(t, common.OutcomeNoData, source.ReadAvailable().Kind)

	again := source.ReadAvailable()
	require.Equal(t, common.OutcomeData, again.Kind)
	assert.Equal(t, []byte{0, 1, 2, 3}, again.Data)
}

func TestOpenErrors(t *testing.T) {
	_, err := Open(&Config{})
	assert.Error(t, err)

	config := DefaultConfig()
	config.Path = filepath.Join(t.TempDir(), "nope.pcm")
	_, err = Open(config)

	var streamErr *common.StreamError
	require.ErrorAs(t, err, &streamErr)
	assert.Equal(t, common.ErrCodeOpen, streamErr.Code)
}

func TestConfigValidate(t *testing.T) {
	type test struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}

	tests := []test{
		{"defaults", func(c *Config) {}, false},
		{"no path", func(c *Config) { c.Path = "" }, true},
		{"zero rate", func(c *Config) { c.SampleRate = 0 }, true},
		{"tiny buffer", func(c *Config) { c.ReadBufferSize = 1 }, true},
		{"odd buffer", func(c *Config) { c.ReadBufferSize = 4095 }, true},
	}

	for _, tt := range tests {
		c := DefaultConfig()
		c.Path = "capture.pcm"
		tt.mutate(c)
		err := c.Validate()
		if tt.wantErr {
			assert.Error(t, err, tt.name)
		} else {
			assert.NoError(t, err, tt.name)
		}
	}
}

func TestReadAfterClose(t *testing.T) {
	config := DefaultConfig()
	config.Path = writePCM(t, 2)

	source, err := Open(config)
	require.NoError(t, err)
	require.NoError(t, source.Close())

	assert.Equal(t, common.OutcomeFatal, source.ReadAvailable().Kind)
}
