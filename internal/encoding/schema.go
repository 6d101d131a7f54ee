package encoding

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"

	"github.com/orbital-sentinel/sentinel/internal/errors"
)

// Rounding selects how a scaled fractional input collapses to an integer.
type Rounding int

const (
	// RoundNearest rounds half away from zero, the default for every field.
	RoundNearest Rounding = iota
	// Truncate drops the fraction. Used only where the schema explicitly
	// marks a field truncated.
	Truncate
)

// Field describes one uint256 payload slot of a canonical tuple: its name,
// the fixed-point factor applied before integer conversion, and the rounding
// mode. Scale 1 means whole units.
type Field struct {
	Name  string
	Scale int64
	Round Rounding
}

// Schema is the canonical tuple layout for one workflow version. Every
// tuple shares the prefix (uint256 timestamp, string workflowName,
// string riskLabel) followed by the payload fields, all uint256.
//
// The byte layout is Ethereum ABI encoding, so any change to field order,
// count or scale changes every digest downstream. Versions exist for exactly
// that reason: a layout change is a new Version, never an edit in place.
type Schema struct {
	Workflow string
	Version  int
	Fields   []Field
}

var (
	uint256Type = mustABIType("uint256")
	stringType  = mustABIType("string")
)

func mustABIType(t string) abi.Type {
	typ, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(fmt.Sprintf("encoding: bad abi type %q: %v", t, err))
	}
	return typ
}

// Arguments returns the full ABI argument list, prefix included. Exposed so
// tests and tooling can unpack what Encode packs.
func (s Schema) Arguments() abi.Arguments {
	args := make(abi.Arguments, 0, 3+len(s.Fields))
	args = append(args,
		abi.Argument{Name: "timestamp", Type: uint256Type},
		abi.Argument{Name: "workflowName", Type: stringType},
		abi.Argument{Name: "riskLabel", Type: stringType},
	)
	for _, f := range s.Fields {
		args = append(args, abi.Argument{Name: f.Name, Type: uint256Type})
	}
	return args
}

// Encode packs the canonical tuple for one snapshot. values must hold
// exactly one integer per schema field, in schema order. The same inputs
// always produce the same bytes.
func (s Schema) Encode(generatedAt time.Time, riskLabel string, values []*big.Int) ([]byte, error) {
	if len(values) != len(s.Fields) {
		return nil, errors.EncodingFailedError(s.Workflow,
			fmt.Errorf("schema %s v%d wants %d values, got %d", s.Workflow, s.Version, len(s.Fields), len(values)))
	}

	unix := generatedAt.Unix()
	if unix < 0 {
		return nil, errors.EncodingFailedError(s.Workflow,
			fmt.Errorf("generation time %s predates the epoch", generatedAt))
	}

	packArgs := make([]interface{}, 0, 3+len(values))
	packArgs = append(packArgs, new(big.Int).SetInt64(unix), s.Workflow, riskLabel)
	for i, v := range values {
		if v == nil || v.Sign() < 0 {
			return nil, errors.EncodingFailedError(s.Workflow,
				fmt.Errorf("field %s: value must be a non-negative integer", s.Fields[i].Name))
		}
		packArgs = append(packArgs, v)
	}

	encoded, err := s.Arguments().Pack(packArgs...)
	if err != nil {
		return nil, errors.EncodingFailedError(s.Workflow, err)
	}
	return encoded, nil
}
