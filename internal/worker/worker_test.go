package worker

import (
	"bytes"
	"errors"
	"testing"

	"allocate/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteClockBigEndian(t *testing.T) {
	var buf bytes.Buffer

	low, err := writeClock(&buf, 0x01020304)

	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, buf.Bytes())
	assert.Equal(t, byte(0x04), low)
}

func TestWriteClockLowByteRegardlessOfValue(t *testing.T) {
	tests := []struct {
		clock uint32
		low   byte
	}{
		{0, 0x00},
		{1, 0x01},
		{256, 0x00},
		{0xFFFFFFFF, 0xFF},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		low, err := writeClock(&buf, tt.clock)
		require.NoError(t, err)
		assert.Equal(t, tt.low, low)
	}
}

func TestVerifyEchoMatch(t *testing.T) {
	reader := bytes.NewReader([]byte{0x2a})

	assert.NoError(t, verifyEcho(reader, 0x2a))
}

func TestVerifyEchoMismatchIsProtocolFailure(t *testing.T) {
	reader := bytes.NewReader([]byte{0x2b})

	err := verifyEcho(reader, 0x2a)

	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrProtocolFailure))
}

func TestVerifyEchoShortReadIsProtocolFailure(t *testing.T) {
	reader := bytes.NewReader(nil)

	err := verifyEcho(reader, 0x2a)

	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrProtocolFailure))
}

func TestReadHashFullLength(t *testing.T) {
	payload := bytes.Repeat([]byte{'a'}, HashSize)

	hash, err := readHash(bytes.NewReader(payload))

	require.NoError(t, err)
	assert.Len(t, hash, HashSize)
}

func TestReadHashShortIsProtocolFailure(t *testing.T) {
	payload := bytes.Repeat([]byte{'a'}, HashSize-1)

	_, err := readHash(bytes.NewReader(payload))

	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrProtocolFailure))
}

func TestFakeHandleLifecycle(t *testing.T) {
	launcher := NewFakeLauncher()

	handle, err := launcher.Launch("P1", 0)
	require.NoError(t, err)

	require.NoError(t, handle.Suspend(1))
	require.NoError(t, handle.Resume(2))

	hash, err := handle.Terminate(3)
	require.NoError(t, err)
	assert.Len(t, hash, HashSize)
	assert.Equal(t, FakeHash("P1"), string(hash))

	fake, ok := launcher.Handle("P1")
	require.True(t, ok)
	assert.Equal(t, []string{"run@0", "suspend@1", "continue@2", "terminate@3"}, fake.Ops)
}

func TestFakeHandleRejectsUseAfterTerminate(t *testing.T) {
	launcher := NewFakeLauncher()
	handle, err := launcher.Launch("P1", 0)
	require.NoError(t, err)

	_, err = handle.Terminate(5)
	require.NoError(t, err)

	assert.ErrorIs(t, handle.Suspend(6), common.ErrInvalidState)
	assert.ErrorIs(t, handle.Resume(6), common.ErrInvalidState)
	_, err = handle.Terminate(6)
	assert.ErrorIs(t, err, common.ErrInvalidState)
}
