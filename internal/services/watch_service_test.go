package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/benmeehan/sentinel/internal/device"
	"github.com/benmeehan/sentinel/internal/models"
	"github.com/benmeehan/sentinel/internal/services"
	"github.com/benmeehan/sentinel/tests/mocks"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func decodeStatus(t *testing.T, raw string) models.StatusRecord {
	t.Helper()
	record, err := models.DecodeStatus(raw)
	require.NoError(t, err)
	return record
}

// TestWatchService_Start_Success tests the successful start of the WatchService.
func TestWatchService_Start_Success(t *testing.T) {
	reader := new(mocks.MockDeviceClient)
	reader.On("ReadVariable", mock.Anything, "status").
		Return(device.StatusValue(decodeStatus(t, "power:1,ups:1,pressure:900.00,pthresh:2500,armed:1")), nil)

	w := services.NewWatchService(reader, time.Hour, "sentinel/status", 1, nil, zerolog.Nop())

	err := w.Start()
	assert.NoError(t, err)

	err = w.Start()
	assert.Error(t, err)
	assert.Equal(t, "watch service is already running", err.Error())

	err = w.Stop()
	assert.NoError(t, err)
}

// TestWatchService_Stop_NotRunning tests stopping a service that was never started.
func TestWatchService_Stop_NotRunning(t *testing.T) {
	w := services.NewWatchService(new(mocks.MockDeviceClient), time.Hour, "sentinel/status", 1, nil, zerolog.Nop())

	err := w.Stop()
	assert.Error(t, err)
	assert.Equal(t, "watch service is not running", err.Error())
}

// TestWatchService_PollsImmediately tests that the first poll does not wait for the interval.
func TestWatchService_PollsImmediately(t *testing.T) {
	polled := make(chan struct{}, 1)
	reader := new(mocks.MockDeviceClient)
	reader.On("ReadVariable", mock.Anything, "status").
		Run(func(mock.Arguments) {
			select {
			case polled <- struct{}{}:
			default:
			}
		}).
		Return(device.Value{}, &device.ProtocolError{Name: "status", Field: "result"})

	w := services.NewWatchService(reader, time.Hour, "sentinel/status", 1, nil, zerolog.Nop())
	require.NoError(t, w.Start())

	select {
	case <-polled:
	case <-time.After(2 * time.Second):
		t.Fatal("status was not polled")
	}
	require.NoError(t, w.Stop())
}

func TestWatchService_CheckPublishesReport(t *testing.T) {
	record := decodeStatus(t, "power:0,ups:1,pressure:998.30,pthresh:2500,armed:1")
	reader := new(mocks.MockDeviceClient)
	reader.On("ReadVariable", mock.Anything, "status").Return(device.StatusValue(record), nil)

	var published []byte
	client := new(mocks.MockMQTTClient)
	client.On("Publish", "sentinel/status", byte(1), false, mock.Anything).
		Run(func(args mock.Arguments) { published = args.Get(3).([]byte) }).
		Return(mocks.NewCompletedToken(nil))

	w := services.NewWatchService(reader, time.Hour, "sentinel/status", 1, client, zerolog.Nop())
	report, err := w.Check(context.Background())
	require.NoError(t, err)

	assert.True(t, report.Alarm)
	assert.True(t, report.Armed)
	assert.False(t, report.Timestamp.IsZero())

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(published, &decoded))
	assert.JSONEq(t, `true`, string(decoded["alarm"]))
	assert.JSONEq(t, `{"power":false,"ups":true,"pressure":998.3,"pthresh":2500,"armed":true}`, string(decoded["status"]))
	client.AssertExpectations(t)
}

func TestWatchService_CheckPublishError(t *testing.T) {
	reader := new(mocks.MockDeviceClient)
	reader.On("ReadVariable", mock.Anything, "status").
		Return(device.StatusValue(decodeStatus(t, "power:1,ups:1,pressure:900.00,pthresh:2500,armed:0")), nil)

	client := new(mocks.MockMQTTClient)
	client.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(mocks.NewCompletedToken(errors.New("not connected")))

	w := services.NewWatchService(reader, time.Hour, "sentinel/status", 0, client, zerolog.Nop())
	report, err := w.Check(context.Background())

	assert.EqualError(t, err, "not connected")
	assert.False(t, report.Alarm)
}

func TestWatchService_CheckReadError(t *testing.T) {
	reader := new(mocks.MockDeviceClient)
	reader.On("ReadVariable", mock.Anything, "status").
		Return(device.Value{}, &device.ProtocolError{Name: "status", Field: "result"})
	client := new(mocks.MockMQTTClient)

	w := services.NewWatchService(reader, time.Hour, "sentinel/status", 1, client, zerolog.Nop())
	_, err := w.Check(context.Background())

	assert.ErrorIs(t, err, device.ErrNoResult)
	client.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEvaluateAlarm(t *testing.T) {
	cases := []struct {
		status string
		alarm  bool
		armed  bool
	}{
		{"power:1,ups:1,pressure:998.30,pthresh:2500,armed:1", false, true},
		{"power:0,ups:1,pressure:998.30,pthresh:2500,armed:1", true, true},
		{"power:1,ups:0,pressure:998.30,pthresh:2500,armed:0", true, false},
		{"power:1,ups:1,pressure:2500.00,pthresh:2500,armed:1", true, true},
		{"power:1,ups:1,pressure:2499.99,pthresh:2500", false, false},
		{"power:1,ups:1,pressure:998.30", true, false},
	}

	for _, tc := range cases {
		alarm, armed := services.EvaluateAlarm(decodeStatus(t, tc.status))
		assert.Equal(t, tc.alarm, alarm, tc.status)
		assert.Equal(t, tc.armed, armed, tc.status)
	}
}

func TestAlarmMessage(t *testing.T) {
	record := decodeStatus(t, "power:0,ups:1,pressure:998.3,pthresh:2500")
	assert.Equal(t, "Power DOWN, UPS OK, Pressure 998.30 mbar", services.AlarmMessage(record))
}
