package types

import (
	"fmt"

	sdkmath "cosmossdk.io/math"
)

type InstructionType int32

const (
	// InstructionBond delegates the given amount to the pool's validator
	InstructionBond InstructionType = iota
	// InstructionUnbond undelegates the given amount from the pool's validator
	InstructionUnbond
	// InstructionWithdrawRewards claims all pending delegation rewards
	InstructionWithdrawRewards
	// InstructionPayOwner transfers the accumulated exit tax to the owner
	InstructionPayOwner
)

func (t InstructionType) String() string {
	switch t {
	case InstructionBond:
		return "bond"
	case InstructionUnbond:
		return "unbond"
	case InstructionWithdrawRewards:
		return "withdraw_rewards"
	case InstructionPayOwner:
		return "pay_owner"
	default:
		return fmt.Sprintf("unknown(%d)", int32(t))
	}
}

// Instruction is an outgoing effect descriptor for the external staking module.
// The engine emits instructions alongside its state mutation; they are executed
// after the mutation is committed, so the pool's own accounting may transiently
// run ahead of the external module's view.
type Instruction struct {
	Type   InstructionType
	Denom  string
	Amount sdkmath.Int
}

func BondInstruction(denom string, amount sdkmath.Int) Instruction {
	return Instruction{Type: InstructionBond, Denom: denom, Amount: amount}
}

func UnbondInstruction(denom string, amount sdkmath.Int) Instruction {
	return Instruction{Type: InstructionUnbond, Denom: denom, Amount: amount}
}

func WithdrawRewardsInstruction() Instruction {
	return Instruction{Type: InstructionWithdrawRewards, Amount: sdkmath.ZeroInt()}
}

func PayOwnerInstruction(denom string, amount sdkmath.Int) Instruction {
	return Instruction{Type: InstructionPayOwner, Denom: denom, Amount: amount}
}

func (i Instruction) String() string {
	switch i.Type {
	case InstructionBond:
		return fmt.Sprintf("bond(%s%s)", i.Amount, i.Denom)
	case InstructionUnbond:
		return fmt.Sprintf("unbond(%s%s)", i.Amount, i.Denom)
	case InstructionWithdrawRewards:
		return "withdraw_rewards()"
	case InstructionPayOwner:
		return fmt.Sprintf("pay_owner(%s%s)", i.Amount, i.Denom)
	default:
		return fmt.Sprintf("unknown(%d)", i.Type)
	}
}
