package crrslack

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/slack-go/slack"
	"go.uber.org/zap"

	"github.com/bcdannyboy/crr/models"
	"github.com/bcdannyboy/crr/positions"
)

const crrUsage = "<style> <spot> <strike> <u> <rate> <maturity> <steps> [barrier] [barrier-type] [call|put]"

// Request is a parsed /crr command.
type Request struct {
	Model *models.BinomialTreeModel
	Spec  positions.ContractSpec
}

// ParseRequest reads the /crr arguments. Barrier contracts take the barrier
// level and type after the steps; every style may end with call or put.
func ParseRequest(text string) (*Request, error) {
	args := strings.Fields(text)
	if len(args) < 7 {
		return nil, errors.Errorf("expected at least 7 arguments, got %d", len(args))
	}

	style, err := positions.ParseStyle(args[0])
	if err != nil {
		return nil, err
	}

	names := []string{"spot", "strike", "u", "rate", "maturity"}
	nums := make([]float64, len(names))
	for i, name := range names {
		if nums[i], err = strconv.ParseFloat(args[i+1], 64); err != nil {
			return nil, errors.Wrapf(err, "invalid %s", name)
		}
	}
	steps, err := strconv.Atoi(args[6])
	if err != nil {
		return nil, errors.Wrap(err, "invalid steps")
	}

	spec := positions.ContractSpec{
		Style:       style,
		Spot:        nums[0],
		Strike:      nums[1],
		Maturity:    nums[4],
		OptionType:  positions.Call,
		BarrierType: positions.DefaultBarrierType,
	}

	rest := args[7:]
	if style == positions.Barrier {
		if len(rest) == 0 {
			return nil, errors.New("barrier contracts need a barrier level")
		}
		if spec.Barrier, err = strconv.ParseFloat(rest[0], 64); err != nil {
			return nil, errors.Wrap(err, "invalid barrier")
		}
		rest = rest[1:]
		if len(rest) > 0 {
			spec.BarrierType = positions.ParseBarrierType(rest[0])
			rest = rest[1:]
		}
	}
	if len(rest) > 0 {
		spec.OptionType = positions.ParseOptionType(rest[0])
		rest = rest[1:]
	}
	if len(rest) > 0 {
		return nil, errors.Errorf("unexpected arguments %q", rest)
	}

	return &Request{
		Model: models.NewBinomialTreeModel(nums[2], nums[3], nums[4], steps),
		Spec:  spec,
	}, nil
}

func (r *Request) String() string {
	label := r.Spec.Style.String() + " " + r.Spec.OptionType.String()
	if r.Spec.Style == positions.Barrier {
		label = fmt.Sprintf("%s %s H=%g", r.Spec.BarrierType, r.Spec.OptionType, r.Spec.Barrier)
	}
	return fmt.Sprintf("%s S0=%g K=%g u=%g r=%g T=%g N=%d",
		label, r.Spec.Spot, r.Spec.Strike, r.Model.U, r.Model.R, r.Model.T, r.Model.NumSteps)
}

type CRRHandler struct {
	logger *zap.Logger
}

func NewCRRHandler(logger *zap.Logger) *CRRHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CRRHandler{logger: logger}
}

// Reply prices the command text and formats the answer, or the usage on
// malformed input.
func (h *CRRHandler) Reply(text string) string {
	req, err := ParseRequest(text)
	if err != nil {
		return fmt.Sprintf("Invalid arguments: %v. Usage: /crr %s", err, crrUsage)
	}

	pricer, err := positions.NewPricer(req.Model, req.Spec)
	if err != nil {
		return fmt.Sprintf("Cannot price %s: %v", req, err)
	}
	price := pricer.Price()
	h.logger.Info("priced slash command",
		zap.Stringer("request", req),
		zap.Float64("price", price))

	reply := fmt.Sprintf("%s\nprice: %.6f", req, price)
	if hazards := req.Model.Hazards(); hazards != nil {
		reply += "\nwarning: " + hazards.Error()
	}
	return reply
}

func (h *CRRHandler) HandleCommand(data slack.SlashCommand, client poster) error {
	_, _, err := client.PostMessage(data.ChannelID,
		slack.MsgOptionText(h.Reply(data.Text), false))
	return err
}
