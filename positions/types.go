package positions

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/bcdannyboy/crr/models"
)

var (
	ErrMaturityMismatch = errors.New("option maturity does not match model maturity")
	ErrUnknownStyle     = errors.New("unknown exercise style")
)

// Pricer is implemented by every lattice-priced contract.
type Pricer interface {
	Price() float64
}

type OptionType int

const (
	Call OptionType = iota
	Put
)

// ParseOptionType treats "call" in any case as a call and anything else as
// a put.
func ParseOptionType(label string) OptionType {
	if strings.ToLower(label) == "call" {
		return Call
	}
	return Put
}

func (o OptionType) String() string {
	if o == Call {
		return "call"
	}
	return "put"
}

type BarrierDirection int

const (
	Down BarrierDirection = iota
	Up
)

type BarrierKnock int

const (
	Out BarrierKnock = iota
	In
)

// BarrierType selects one of the four barrier styles. The zero value is
// down-and-out.
type BarrierType struct {
	Direction BarrierDirection
	Knock     BarrierKnock
}

var DefaultBarrierType = BarrierType{Direction: Down, Knock: Out}

// ParseBarrierType maps a free-text label such as "up-and-in" onto a
// BarrierType. Matching is case-insensitive: a label containing "in" is a
// knock-in, otherwise knock-out; a label containing "up" is an up barrier,
// otherwise down.
func ParseBarrierType(label string) BarrierType {
	l := strings.ToLower(label)

	b := DefaultBarrierType
	if strings.Contains(l, "in") {
		b.Knock = In
	}
	if strings.Contains(l, "up") {
		b.Direction = Up
	}
	return b
}

func (b BarrierType) String() string {
	direction, knock := "down", "out"
	if b.Direction == Up {
		direction = "up"
	}
	if b.Knock == In {
		knock = "in"
	}
	return direction + "-and-" + knock
}

type Style int

const (
	European Style = iota
	American
	Barrier
)

func ParseStyle(label string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "european", "eu":
		return European, nil
	case "american", "us":
		return American, nil
	case "barrier":
		return Barrier, nil
	}
	return 0, errors.Wrapf(ErrUnknownStyle, "%q", label)
}

func (s Style) String() string {
	switch s {
	case European:
		return "european"
	case American:
		return "american"
	case Barrier:
		return "barrier"
	}
	return "unknown"
}

// Contract carries the terms shared by all option variants.
type Contract struct {
	S0     float64 // Spot price of the underlying
	K      float64 // Strike
	T      float64 // Maturity, equal to the model maturity
	IsCall bool

	model *models.BinomialTreeModel
}

func newContract(model *models.BinomialTreeModel, s0, k, t float64, isCall bool) (Contract, error) {
	if t != model.T {
		return Contract{}, errors.Wrapf(ErrMaturityMismatch, "option T=%g, model T=%g", t, model.T)
	}

	return Contract{
		S0:     s0,
		K:      k,
		T:      t,
		IsCall: isCall,
		model:  model,
	}, nil
}

// Model returns the lattice the contract is priced on.
func (c Contract) Model() *models.BinomialTreeModel {
	return c.model
}
