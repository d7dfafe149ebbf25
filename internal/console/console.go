package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/benmeehan/sentinel/internal/constants"
	"github.com/benmeehan/sentinel/internal/device"
	"github.com/benmeehan/sentinel/internal/models"
	"github.com/benmeehan/sentinel/pkg/relay"
	"github.com/rs/zerolog"
)

const (
	title  = "SUXeSs microcontroller interface."
	prompt = "Select option: "
)

var mainMenu = []string{
	"See external power status.",
	"See UPS power status.",
	"See detector pressure.",
	"See status.",
	"Enable/disable the alarms.",
	"Set pressure alarm threshold.",
	"Exit (or Ctrl-c).",
}

// variableChoices maps the single-variable main menu ordinals to variables.
var variableChoices = []string{
	constants.VariablePower,
	constants.VariableUPSPower,
	constants.VariablePressure,
}

// errQuit ends the menu loop normally.
var errQuit = errors.New("quit")

// Invoker performs one device request.
type Invoker interface {
	Invoke(ctx context.Context, req device.Request) (device.Value, error)
}

// Console is the interactive operator menu.
type Console struct {
	client Invoker
	in     io.Reader
	out    io.Writer
	style  Styler
	logger zerolog.Logger

	lines <-chan string
}

// New creates a console reading selections from in and writing to out.
func New(client Invoker, in io.Reader, out io.Writer, style Styler, logger zerolog.Logger) *Console {
	return &Console{
		client: client,
		in:     in,
		out:    out,
		style:  style,
		logger: logger,
	}
}

// Run shows the main menu until the exit option is chosen, input ends, or
// ctx is cancelled. None of these is an error.
func (c *Console) Run(ctx context.Context) error {
	c.lines = readLines(c.in)

	c.print(Line{Text: title, Severity: SeverityTitle})
	for {
		fmt.Fprintln(c.out)
		if err := c.mainMenu(ctx); err != nil {
			if errors.Is(err, errQuit) {
				break
			}
			return err
		}
	}

	fmt.Fprintln(c.out, "\nDone")
	return nil
}

// readLines feeds input lines over a channel that is closed at end of input.
// The goroutine may outlive Run while blocked on a read; it exits with the
// process.
func readLines(in io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()
	return lines
}

func (c *Console) mainMenu(ctx context.Context) error {
	c.showOptions(mainMenu, "%d) %s")

	idx, raw, err := c.choose(ctx, len(mainMenu))
	if err != nil {
		return err
	}

	switch {
	case idx < 0:
		c.print(Line{Text: "Wrong option, try again.", Severity: SeverityFail})
		c.logger.Debug().Str("choice", raw).Msg("Invalid menu choice")
	case idx < len(variableChoices):
		name := variableChoices[idx]
		fmt.Fprintf(c.out, "Requesting %s values..\n", name)
		c.read(ctx, name)
	case idx == 3:
		fmt.Fprintln(c.out, "Requesting values..")
		c.read(ctx, constants.VariableStatus)
	case idx == 4:
		return c.alarmMenu(ctx)
	case idx == 5:
		return c.thresholdMenu(ctx)
	default:
		return errQuit
	}
	return nil
}

func (c *Console) read(ctx context.Context, name string) {
	value, err := c.client.Invoke(ctx, device.Read(name))
	if err != nil {
		c.reportError(err)
		return
	}
	for _, line := range RenderValue(name, value) {
		c.print(line)
	}
}

func (c *Console) alarmMenu(ctx context.Context) error {
	for {
		c.print(Line{Text: "0) Disable the alarms.", Severity: SeverityHeading})
		c.print(Line{Text: "1) Enable the alarms.", Severity: SeverityHeading})

		idx, raw, err := c.choose(ctx, 2)
		if err != nil {
			return err
		}

		switch idx {
		case 0:
			c.setAlarm(ctx, constants.AlarmDisarm, constants.AlarmDisarmed, "Alarm disabled")
			return nil
		case 1:
			c.setAlarm(ctx, constants.AlarmArm, constants.AlarmArmed, "Alarm enabled.")
			return nil
		default:
			c.print(Line{Text: "Wrong option: " + raw, Severity: SeverityFail})
		}
	}
}

func (c *Console) setAlarm(ctx context.Context, argument string, want int, success string) {
	value, err := c.client.Invoke(ctx, device.Call(constants.FunctionAlarm, argument))
	if err != nil {
		c.reportError(err)
	}
	if err == nil && value.Int() == want {
		c.print(Line{Text: success, Severity: SeverityOK})
		return
	}
	c.print(Line{Text: "Try again (wrong return value).", Severity: SeverityFail})
}

func (c *Console) thresholdMenu(ctx context.Context) error {
	options := device.AcceptedArguments(constants.FunctionThreshold)

	for {
		c.print(Line{Text: "Set pressure alarm threshold to:", Severity: SeverityHeading})
		c.showOptions(options, "%d) %s mbar")

		idx, _, err := c.choose(ctx, len(options))
		if err != nil {
			return err
		}
		if idx < 0 {
			c.print(Line{Text: "Wrong option, try again.", Severity: SeverityFail})
			continue
		}

		requested := options[idx]
		want, err := strconv.Atoi(requested)
		if err != nil {
			return fmt.Errorf("threshold option %q is not an integer: %w", requested, err)
		}

		value, err := c.client.Invoke(ctx, device.Call(constants.FunctionThreshold, requested))
		if err != nil {
			c.reportError(err)
			c.print(Line{Text: "Threshold NOT changed, please try again.", Severity: SeverityWarning})
			return nil
		}

		message := fmt.Sprintf("Pressure alarm threshold set to %d mbar.", value.Int())
		if value.Int() == want {
			c.print(Line{Text: message, Severity: SeverityOK})
		} else {
			c.print(Line{Text: message + " Threshold NOT changed, please try again.", Severity: SeverityWarning})
		}
		return nil
	}
}

// choose prompts for an ordinal in [0, n). It returns -1 with the raw input
// when the input is not one of the ordinals, and errQuit when input ends or
// ctx is cancelled.
func (c *Console) choose(ctx context.Context, n int) (int, string, error) {
	fmt.Fprint(c.out, prompt)

	if ctx.Err() != nil {
		return 0, "", errQuit
	}

	var raw string
	select {
	case <-ctx.Done():
		return 0, "", errQuit
	case line, ok := <-c.lines:
		if !ok {
			return 0, "", errQuit
		}
		raw = strings.TrimSpace(line)
	}

	idx, err := strconv.Atoi(raw)
	if err != nil || idx < 0 || idx >= n || strconv.Itoa(idx) != raw {
		return -1, raw, nil
	}
	return idx, raw, nil
}

func (c *Console) showOptions(options []string, format string) {
	for idx, option := range options {
		c.print(Line{Text: fmt.Sprintf(format, idx, option), Severity: SeverityHeading})
	}
}

func (c *Console) reportError(err error) {
	c.logger.Error().Err(err).Msg("Device request failed")

	var text string
	switch {
	case errors.Is(err, device.ErrNoResult):
		text = "Error: no result from API, possible timeout, try again."
	case errors.Is(err, relay.ErrTransport):
		text = "Error: relay unreachable, try again."
	case errors.Is(err, models.ErrDecode):
		text = "Error: unexpected device response: " + err.Error()
	default:
		text = "Error: " + err.Error()
	}
	c.print(Line{Text: text, Severity: SeverityFail})
}

func (c *Console) print(l Line) {
	fmt.Fprintln(c.out, c.style.Format(l))
}
