package yiiep

// Operation is a remote procedure name; it is also the path segment appended to the
// base URL and the value the envelope token is bound to.
type Operation string

const (
	OpPreset   Operation = "preset"
	OpUnset    Operation = "unset"
	OpPay      Operation = "pay"
	OpBState   Operation = "bstate"
	OpRefund   Operation = "refund"
	OpAState   Operation = "astate"
	OpTransfer Operation = "transfer"
	OpEvaluate Operation = "evaluate"
)

// Operations lists every operation the platform exposes.
var Operations = []Operation{OpPreset, OpUnset, OpPay, OpBState, OpRefund, OpAState, OpTransfer, OpEvaluate}

// Payload field names injected into every request.
const (
	fieldIdentity = "identity"
	fieldMode     = "mode"
	fieldNonce    = "rseed"
)
