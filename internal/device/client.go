package device

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/benmeehan/sentinel/internal/models"
	"github.com/benmeehan/sentinel/pkg/identity"
	"github.com/benmeehan/sentinel/pkg/relay"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	resultField      = "result"
	returnValueField = "return_value"
)

// Transport carries reads and calls to the relay.
type Transport interface {
	GetVariable(ctx context.Context, id identity.Identity, variable string) (relay.Response, error)
	CallFunction(ctx context.Context, id identity.Identity, function, argument string) (relay.Response, error)
}

// Request names one read or one call.
type Request struct {
	Name     string
	Argument string
	IsCall   bool
}

// Read builds a variable read request.
func Read(name string) Request {
	return Request{Name: name}
}

// Call builds a function call request.
func Call(function, argument string) Request {
	return Request{Name: function, Argument: argument, IsCall: true}
}

// Client reads variables from and calls functions on the device. Every
// request is checked against the whitelist before it reaches the transport.
type Client struct {
	identity  identity.Identity
	transport Transport
	logger    zerolog.Logger
}

// NewClient creates a device client bound to one device identity.
func NewClient(id identity.Identity, transport Transport, logger zerolog.Logger) *Client {
	return &Client{
		identity:  id,
		transport: transport,
		logger:    logger,
	}
}

// Invoke performs req: a read returns the variable's value, a call returns
// the device's acknowledged state as a KindInt value.
func (c *Client) Invoke(ctx context.Context, req Request) (Value, error) {
	if !req.IsCall {
		return c.ReadVariable(ctx, req.Name)
	}

	n, err := c.CallFunction(ctx, req.Name, req.Argument)
	if err != nil {
		return Value{}, err
	}
	return IntValue(n), nil
}

// ReadVariable reads one whitelisted variable. The status variable is decoded
// into a StatusRecord.
func (c *Client) ReadVariable(ctx context.Context, name string) (Value, error) {
	if err := ValidateRead(name); err != nil {
		c.logger.Warn().Err(err).Str("variable", name).Msg("Rejected variable read")
		return Value{}, err
	}

	logger := c.logger.With().Str("request_id", uuid.NewString()).Str("variable", name).Logger()
	logger.Debug().Msg("Reading device variable")

	resp, err := c.transport.GetVariable(ctx, c.identity, name)
	if err != nil {
		logger.Error().Err(err).Msg("Variable read failed")
		return Value{}, err
	}

	raw, ok := resp.Field(resultField)
	if !ok {
		perr := &ProtocolError{Name: name, Field: resultField, StatusCode: resp.StatusCode, RelayError: resp.ErrorText()}
		logger.Warn().Err(perr).Msg("No result from relay, possible timeout")
		return Value{}, perr
	}

	value, err := decodeResult(readableVariables[name], raw)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to decode variable")
		return Value{}, err
	}

	logger.Info().Stringer("value", value).Msg("Read device variable")
	return value, nil
}

// CallFunction calls one whitelisted function with one of its accepted
// arguments and returns what the device acknowledged. The caller compares it
// with what it asked for.
func (c *Client) CallFunction(ctx context.Context, function, argument string) (int, error) {
	if err := ValidateCall(function, argument); err != nil {
		c.logger.Warn().Err(err).Str("function", function).Msg("Rejected function call")
		return 0, err
	}

	logger := c.logger.With().
		Str("request_id", uuid.NewString()).
		Str("function", function).
		Str("argument", argument).
		Logger()
	logger.Debug().Msg("Calling device function")

	resp, err := c.transport.CallFunction(ctx, c.identity, function, argument)
	if err != nil {
		logger.Error().Err(err).Msg("Function call failed")
		return 0, err
	}

	raw, ok := resp.Field(returnValueField)
	if !ok {
		perr := &ProtocolError{Name: function, Field: returnValueField, StatusCode: resp.StatusCode, RelayError: resp.ErrorText()}
		logger.Warn().Err(perr).Msg("No return value from relay, possible timeout")
		return 0, perr
	}

	n, err := decodeInt(raw)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to decode return value")
		return 0, err
	}

	logger.Info().Int("return_value", n).Msg("Called device function")
	return n, nil
}

func decodeResult(kind Kind, raw json.RawMessage) (Value, error) {
	switch kind {
	case KindStatus:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Value{}, &models.DecodeError{Token: string(raw), Reason: "status result is not a string", Err: err}
		}
		record, err := models.DecodeStatus(s)
		if err != nil {
			return Value{}, err
		}
		return StatusValue(record), nil
	case KindBool:
		n, err := decodeNumber(raw)
		if err != nil {
			return Value{}, err
		}
		return BoolValue(n != 0), nil
	default:
		n, err := decodeNumber(raw)
		if err != nil {
			return Value{}, err
		}
		return NumberValue(n), nil
	}
}

// decodeNumber accepts a JSON number, a numeric string or a JSON boolean.
func decodeNumber(raw json.RawMessage) (float64, error) {
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, &models.DecodeError{Token: s, Reason: "result is not a number", Err: err}
		}
		return n, nil
	}

	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		if b {
			return 1, nil
		}
		return 0, nil
	}

	return 0, &models.DecodeError{Token: string(raw), Reason: "result is not a number"}
}

func decodeInt(raw json.RawMessage) (int, error) {
	n, err := decodeNumber(raw)
	if err != nil {
		return 0, err
	}
	if n != math.Trunc(n) || math.IsInf(n, 0) {
		return 0, &models.DecodeError{Token: string(raw), Reason: "return value is not an integer"}
	}
	// The firmware returns a C int.
	if n < math.MinInt32 || n > math.MaxInt32 {
		return 0, &models.DecodeError{Token: string(raw), Reason: "return value out of range"}
	}
	return int(n), nil
}
