package console_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/benmeehan/sentinel/internal/console"
	"github.com/benmeehan/sentinel/internal/device"
	"github.com/benmeehan/sentinel/internal/models"
	"github.com/benmeehan/sentinel/tests/mocks"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, client *mocks.MockDeviceClient, input string) string {
	t.Helper()
	var out bytes.Buffer
	c := console.New(client, strings.NewReader(input), &out, console.Styler{}, zerolog.Nop())
	require.NoError(t, c.Run(context.Background()))
	return out.String()
}

func TestRun_ExitOption(t *testing.T) {
	client := new(mocks.MockDeviceClient)

	out := run(t, client, "6\n")

	assert.Contains(t, out, "SUXeSs microcontroller interface.")
	assert.Contains(t, out, "6) Exit (or Ctrl-c).")
	assert.True(t, strings.HasSuffix(out, "\nDone\n"))
	client.AssertNotCalled(t, "Invoke", mock.Anything, mock.Anything)
}

func TestRun_EndOfInputIsNormalTermination(t *testing.T) {
	client := new(mocks.MockDeviceClient)

	out := run(t, client, "")

	assert.Contains(t, out, "Done")
}

// TestRun_CancelledWhileWaiting tests that an interrupt ends the loop while it waits for input.
func TestRun_CancelledWhileWaiting(t *testing.T) {
	client := new(mocks.MockDeviceClient)
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	c := console.New(client, pr, &out, console.Styler{}, zerolog.Nop())
	require.NoError(t, c.Run(ctx))
	assert.Contains(t, out.String(), "Done")
}

// TestRun_CancelledWithPendingInput tests that an interrupt wins over input that is already queued.
func TestRun_CancelledWithPendingInput(t *testing.T) {
	for i := 0; i < 20; i++ {
		client := new(mocks.MockDeviceClient)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		var out bytes.Buffer
		c := console.New(client, strings.NewReader("0\n0\n0\n"), &out, console.Styler{}, zerolog.Nop())
		require.NoError(t, c.Run(ctx))

		assert.Contains(t, out.String(), "Done")
		client.AssertNotCalled(t, "Invoke", mock.Anything, mock.Anything)
	}
}

func TestRun_InvalidOptionRedisplaysMenu(t *testing.T) {
	client := new(mocks.MockDeviceClient)

	out := run(t, client, "9\nx\n6\n")

	assert.Equal(t, 2, strings.Count(out, "Wrong option, try again."))
	assert.Equal(t, 3, strings.Count(out, "0) See external power status."))
}

func TestRun_ReadPower(t *testing.T) {
	client := new(mocks.MockDeviceClient)
	client.On("Invoke", mock.Anything, device.Read("power")).Return(device.BoolValue(true), nil)

	out := run(t, client, "0\n6\n")

	assert.Contains(t, out, "Requesting power values..")
	assert.Contains(t, out, "External power is OK.")
	client.AssertExpectations(t)
}

func TestRun_ReadStatusKeepsDeviceOrder(t *testing.T) {
	record := models.NewStatusRecord(
		models.StatusField{Key: "power", Kind: models.FieldBool, Bool: false},
		models.StatusField{Key: "pressure", Kind: models.FieldNumber, Number: 2600},
		models.StatusField{Key: "armed", Kind: models.FieldBool, Bool: true},
	)
	client := new(mocks.MockDeviceClient)
	client.On("Invoke", mock.Anything, device.Read("status")).Return(device.StatusValue(record), nil)

	out := run(t, client, "3\n6\n")

	power := strings.Index(out, "External power is DOWN.")
	pressure := strings.Index(out, "Pressure is 2600.00 mbar.")
	armed := strings.Index(out, "Alarms are enabled.")
	require.True(t, power >= 0 && pressure >= 0 && armed >= 0, out)
	assert.Less(t, power, pressure)
	assert.Less(t, pressure, armed)
}

func TestRun_TransientErrorReturnsToMenu(t *testing.T) {
	client := new(mocks.MockDeviceClient)
	client.On("Invoke", mock.Anything, device.Read("pressure")).
		Return(device.Value{}, &device.ProtocolError{Name: "pressure", Field: "result"})

	out := run(t, client, "2\n6\n")

	assert.Contains(t, out, "Error: no result from API, possible timeout, try again.")
	assert.Contains(t, out, "Done")
}

func TestAlarmMenu(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		argument string
		value    device.Value
		err      error
		want     string
	}{
		{"arm acknowledged", "4\n1\n6\n", "arm", device.IntValue(1), nil, "Alarm enabled."},
		{"arm not acknowledged", "4\n1\n6\n", "arm", device.IntValue(0), nil, "Try again (wrong return value)."},
		{"arm timed out", "4\n1\n6\n", "arm", device.Value{}, &device.ProtocolError{Name: "alarm", Field: "return_value"}, "Try again (wrong return value)."},
		{"disarm acknowledged", "4\n0\n6\n", "disarm", device.IntValue(0), nil, "Alarm disabled"},
		{"disarm wrong argument", "4\n0\n6\n", "disarm", device.IntValue(-1), nil, "Try again (wrong return value)."},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := new(mocks.MockDeviceClient)
			client.On("Invoke", mock.Anything, device.Call("alarm", tc.argument)).Return(tc.value, tc.err)

			out := run(t, client, tc.input)

			assert.Contains(t, out, tc.want)
			client.AssertExpectations(t)
		})
	}
}

func TestAlarmMenu_InvalidOptionRedisplaysSubmenu(t *testing.T) {
	client := new(mocks.MockDeviceClient)
	client.On("Invoke", mock.Anything, device.Call("alarm", "disarm")).Return(device.IntValue(0), nil)

	out := run(t, client, "4\n7\n0\n6\n")

	assert.Contains(t, out, "Wrong option: 7")
	assert.Equal(t, 2, strings.Count(out, "0) Disable the alarms."))
	assert.Contains(t, out, "Alarm disabled")
}

// TestThresholdMenu_SendsSelectedOption tests that ordinal k sends exactly options[k].
func TestThresholdMenu_SendsSelectedOption(t *testing.T) {
	options := device.AcceptedArguments("threshold")

	for k, option := range options {
		t.Run(option, func(t *testing.T) {
			var want int
			_, err := fmt.Sscan(option, &want)
			require.NoError(t, err)

			client := new(mocks.MockDeviceClient)
			client.On("Invoke", mock.Anything, device.Call("threshold", option)).Return(device.IntValue(want), nil)

			out := run(t, client, fmt.Sprintf("5\n%d\n6\n", k))

			assert.Contains(t, out, fmt.Sprintf("%d) %s mbar", k, option))
			assert.Contains(t, out, fmt.Sprintf("Pressure alarm threshold set to %d mbar.", want))
			assert.NotContains(t, out, "Threshold NOT changed")
			client.AssertExpectations(t)
		})
	}
}

func TestThresholdMenu_Mismatch(t *testing.T) {
	client := new(mocks.MockDeviceClient)
	client.On("Invoke", mock.Anything, device.Call("threshold", "2400")).Return(device.IntValue(2500), nil)

	out := run(t, client, "5\n0\n6\n")

	assert.Contains(t, out, "Pressure alarm threshold set to 2500 mbar. Threshold NOT changed, please try again.")
}

func TestThresholdMenu_InvalidOptionRedisplaysSubmenu(t *testing.T) {
	client := new(mocks.MockDeviceClient)
	client.On("Invoke", mock.Anything, device.Call("threshold", "2800")).Return(device.IntValue(2800), nil)

	out := run(t, client, "5\n5\n04\n4\n6\n")

	assert.Equal(t, 2, strings.Count(out, "Wrong option, try again."))
	assert.Equal(t, 3, strings.Count(out, "Set pressure alarm threshold to:"))
	assert.Contains(t, out, "Pressure alarm threshold set to 2800 mbar.")
}

func TestThresholdMenu_FailedCall(t *testing.T) {
	client := new(mocks.MockDeviceClient)
	client.On("Invoke", mock.Anything, device.Call("threshold", "2600")).
		Return(device.Value{}, &device.ProtocolError{Name: "threshold", Field: "return_value"})

	out := run(t, client, "5\n2\n6\n")

	assert.Contains(t, out, "Error: no result from API, possible timeout, try again.")
	assert.Contains(t, out, "Threshold NOT changed, please try again.")
}

func TestStyler(t *testing.T) {
	line := console.Line{Text: "UPS power is DOWN.", Severity: console.SeverityFail}

	assert.Equal(t, "UPS power is DOWN.", console.Styler{}.Format(line))
	assert.Equal(t, "\033[91mUPS power is DOWN.\033[0m", console.Styler{Color: true}.Format(line))
	assert.Equal(t, "plain", console.Styler{Color: true}.Format(console.Line{Text: "plain"}))
	assert.False(t, console.NewStyler(&bytes.Buffer{}).Color)
}
