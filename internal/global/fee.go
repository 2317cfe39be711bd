package global

import (
	"fmt"
	"math"

	"github.com/gagliardetto/solana-go"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
	"github.com/gagliardetto/solana-go/programs/system"
)

// OperationKind selects which fee/tip branch of a relay's config applies.
type OperationKind int

const (
	OpBuy OperationKind = iota
	OpSell
	OpCreate
)

func (k OperationKind) String() string {
	switch k {
	case OpBuy:
		return "buy"
	case OpSell:
		return "sell"
	case OpCreate:
		return "create"
	}
	return fmt.Sprintf("op(%d)", int(k))
}

// PriorityFee is a compute-unit limit and per-unit price.
type PriorityFee struct {
	UnitLimit uint32 `json:"unit_limit"`
	UnitPrice uint64 `json:"unit_price"`
}

// Add raises the limit to cover both requests and keeps the higher price.
func (f PriorityFee) Add(o PriorityFee) PriorityFee {
	limit := uint64(f.UnitLimit) + uint64(o.UnitLimit)
	if limit > math.MaxUint32 {
		limit = math.MaxUint32
	}
	return PriorityFee{
		UnitLimit: uint32(limit),
		UnitPrice: max(f.UnitPrice, o.UnitPrice),
	}
}

// Instructions are the compute-budget price and limit instructions, in that order.
func (f PriorityFee) Instructions() []solana.Instruction {
	return []solana.Instruction{
		computebudget.NewSetComputeUnitPriceInstruction(f.UnitPrice).Build(),
		computebudget.NewSetComputeUnitLimitInstruction(f.UnitLimit).Build(),
	}
}

// CombineFees merges an optional base fee with an optional additional fee.
func CombineFees(base, additional *PriorityFee) *PriorityFee {
	switch {
	case base != nil && additional != nil:
		f := base.Add(*additional)
		return &f
	case base != nil:
		f := *base
		return &f
	case additional != nil:
		f := *additional
		return &f
	}
	return nil
}

type TipFee struct {
	TipAccount  solana.PublicKey
	TipLamports uint64
}

func (t TipFee) Instruction(payer solana.PublicKey) solana.Instruction {
	return system.NewTransferInstruction(t.TipLamports, payer, t.TipAccount).Build()
}
