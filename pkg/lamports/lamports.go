package lamports

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

const PerSol = 1_000_000_000

var (
	ErrNegative = errors.New("lamports: negative amount")
	ErrOverflow = errors.New("lamports: amount overflows uint64")
	ErrInvalid  = errors.New("lamports: invalid amount")

	perSolRat = new(big.Rat).SetInt64(PerSol)
	maxRaw    = new(big.Int).SetUint64(math.MaxUint64)
)

// Lamports is a raw amount of the smallest SOL unit.
type Lamports uint64

// ParseSol converts a decimal SOL string into lamports, rounding half away from zero.
func ParseSol(s string) (Lamports, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalid
	}
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return 0, errors.WithMessagef(ErrInvalid, "%q", s)
	}
	if r.Sign() < 0 {
		return 0, ErrNegative
	}
	r.Mul(r, perSolRat)

	// round half up on a non-negative rational
	num := new(big.Int).Mul(r.Num(), big.NewInt(2))
	num.Add(num, r.Denom())
	den := new(big.Int).Mul(r.Denom(), big.NewInt(2))
	raw := num.Quo(num, den)

	if raw.Cmp(maxRaw) > 0 {
		return 0, ErrOverflow
	}
	return Lamports(raw.Uint64()), nil
}

func FromSol(sol float64) (Lamports, error) {
	if math.IsNaN(sol) || math.IsInf(sol, 0) {
		return 0, ErrInvalid
	}
	if sol < 0 {
		return 0, ErrNegative
	}
	return ParseSol(strconv.FormatFloat(sol, 'f', -1, 64))
}

// FromAny accepts the loose shapes amounts arrive in from config files and flags.
func FromAny(v any) (Lamports, error) {
	switch t := v.(type) {
	case Lamports:
		return t, nil
	case float32:
		return FromSol(float64(t))
	case float64:
		return FromSol(t)
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return 0, errors.WithMessage(ErrInvalid, err.Error())
	}
	return ParseSol(s)
}

func MustFromSol(sol float64) Lamports {
	l, err := FromSol(sol)
	if err != nil {
		panic(err)
	}
	return l
}

func (l Lamports) Uint64() uint64 { return uint64(l) }

func (l Lamports) Sol() float64 {
	return float64(l) / PerSol
}

// String prints the exact SOL value, e.g. 1.5 or 0.000000001.
func (l Lamports) String() string {
	whole := uint64(l) / PerSol
	frac := uint64(l) % PerSol
	if frac == 0 {
		return strconv.FormatUint(whole, 10)
	}
	fs := strings.TrimRight(fmt.Sprintf("%09d", frac), "0")
	return strconv.FormatUint(whole, 10) + "." + fs
}

func (l Lamports) MarshalJSON() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *Lamports) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return errors.WithMessagef(ErrInvalid, "%s", data)
		}
		n = json.Number(s)
	}
	v, err := FromAny(n.String())
	if err != nil {
		return err
	}
	*l = v
	return nil
}
