package device

import "github.com/benmeehan/sentinel/internal/constants"

// readableVariables maps every readable variable to the kind it decodes into.
var readableVariables = map[string]Kind{
	constants.VariablePower:    KindBool,
	constants.VariableUPSPower: KindBool,
	constants.VariablePressure: KindNumber,
	constants.VariableStatus:   KindStatus,
}

// callableFunctions lists each function's accepted arguments in menu order.
var callableFunctions = map[string][]string{
	constants.FunctionAlarm:     {constants.AlarmArm, constants.AlarmDisarm},
	constants.FunctionLED:       {"on", "off"},
	constants.FunctionThreshold: {"2400", "2500", "2600", "2700", "2800"},
	constants.FunctionTest:      {""},
}

var acceptedArguments = func() map[string]map[string]struct{} {
	sets := make(map[string]map[string]struct{}, len(callableFunctions))
	for name, args := range callableFunctions {
		set := make(map[string]struct{}, len(args))
		for _, arg := range args {
			set[arg] = struct{}{}
		}
		sets[name] = set
	}
	return sets
}()

// Variables returns the readable variable names in a stable order.
func Variables() []string {
	return []string{
		constants.VariablePower,
		constants.VariableUPSPower,
		constants.VariablePressure,
		constants.VariableStatus,
	}
}

// Functions returns the callable function names in a stable order.
func Functions() []string {
	return []string{
		constants.FunctionAlarm,
		constants.FunctionLED,
		constants.FunctionThreshold,
		constants.FunctionTest,
	}
}

// AcceptedArguments returns a copy of the arguments function accepts, or nil
// when function is not callable.
func AcceptedArguments(function string) []string {
	args, ok := callableFunctions[function]
	if !ok {
		return nil
	}
	out := make([]string, len(args))
	copy(out, args)
	return out
}

// ValidateRead rejects variables outside the whitelist.
func ValidateRead(name string) error {
	if _, ok := readableVariables[name]; !ok {
		return &ValidationError{Name: name, Reason: "not a readable variable"}
	}
	return nil
}

// ValidateCall rejects unknown functions and arguments outside the function's set.
func ValidateCall(function, argument string) error {
	args, ok := acceptedArguments[function]
	if !ok {
		return &ValidationError{Name: function, Argument: argument, Call: true, Reason: "not a callable function"}
	}
	if _, ok := args[argument]; !ok {
		return &ValidationError{Name: function, Argument: argument, Call: true, Reason: "argument not accepted"}
	}
	return nil
}
