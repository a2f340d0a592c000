package contract

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/4chain-ag/go-dlc-settlement/pkg/core/outcome"
)

// ReadInput reads a JSON encoded contract input from the given path.
func ReadInput(path string) (ContractInput, error) {
	bb, err := os.ReadFile(path)
	if err != nil {
		return ContractInput{}, fmt.Errorf("failed to read contract input file: %w", err)
	}

	var input ContractInput
	if err := json.Unmarshal(bb, &input); err != nil {
		return ContractInput{}, fmt.Errorf("failed to decode contract input: %w", err)
	}
	return input, nil
}

// ParseContractInput validates the input and flattens its payout curve.
func ParseContractInput(input ContractInput, space outcome.Space) (ParsedContract, error) {
	if err := Validate(input, space); err != nil {
		return nil, err
	}
	return Flatten(input.ContractInfo.ContractDescriptor, space), nil
}

// Parser reads and parses contract input files for one outcome space.
type Parser struct {
	Space outcome.Space
}

// Parse reads the contract at path and returns both the raw input and its
// flattened payout table.
func (p Parser) Parse(path string) (ContractInput, ParsedContract, error) {
	input, err := ReadInput(path)
	if err != nil {
		return ContractInput{}, nil, err
	}

	parsed, err := ParseContractInput(input, p.Space)
	if err != nil {
		return ContractInput{}, nil, err
	}
	return input, parsed, nil
}
