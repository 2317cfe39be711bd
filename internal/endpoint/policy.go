package endpoint

import (
	"math"

	"github.com/gagliardetto/solana-go"

	"github.com/kerokon/solana-trading-sdk/internal/global"
	"github.com/kerokon/solana-trading-sdk/internal/swqos"
	"github.com/kerokon/solana-trading-sdk/internal/xerr"
)

// ResolveFee picks the relay's base fee for op (sells fall back to the buy fee,
// creates use it) and merges the caller's additional fee into it.
func ResolveFee(cfg swqos.Config, op global.OperationKind, additional *global.PriorityFee) *global.PriorityFee {
	var base *global.PriorityFee
	switch op {
	case global.OpSell:
		base = cfg.SellFee
		if base == nil {
			base = cfg.BuyFee
		}
	default:
		base = cfg.BuyFee
	}
	return global.CombineFees(base, additional)
}

func baseTip(cfg swqos.Config, op global.OperationKind) *uint64 {
	if op == global.OpSell && cfg.SellTip != nil {
		return cfg.SellTip
	}
	return cfg.BuyTip
}

// ResolveTip returns nil for relays that take no tip. A tipping relay without a
// base tip for op is a configuration error.
func ResolveTip(rt *swqos.Runtime, op global.OperationKind, additional uint64) (*global.TipFee, error) {
	account, ok := rt.Client.TipAccount()
	if !ok {
		return nil, nil
	}
	base := baseTip(rt.Config, op)
	if base == nil {
		return nil, xerr.ErrMissingFeeOrTip.Withf("no %s tip configured for relay %s", op, rt.Name())
	}
	lamports := *base
	if additional > math.MaxUint64-lamports {
		lamports = math.MaxUint64
	} else {
		lamports += additional
	}
	return &global.TipFee{TipAccount: account, TipLamports: lamports}, nil
}

type AssembleParams struct {
	Nonce        *global.Nonce
	Fee          *global.PriorityFee
	Tip          *global.TipFee
	Instructions []solana.Instruction
}

// Assemble orders a transaction's instructions: nonce advance, compute-unit
// price, compute-unit limit, tip transfer, then the venue instructions.
func Assemble(payer solana.PublicKey, blockhash solana.Hash, p AssembleParams) *global.TxBuilder {
	b := global.NewTxBuilder(payer, blockhash)
	if p.Nonce != nil {
		b.AddInstruction(p.Nonce.AdvanceInstruction())
	}
	if p.Fee != nil {
		b.AddInstruction(p.Fee.Instructions()...)
	}
	if p.Tip != nil {
		b.AddInstruction(p.Tip.Instruction(payer))
	}
	return b.AddInstruction(p.Instructions...)
}
