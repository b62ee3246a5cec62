package assistant

import (
	"encoding/json"
	"fmt"

	"github.com/edgard/wonderfulgo/internal/chat"
	"github.com/edgard/wonderfulgo/internal/plan"
	"github.com/edgard/wonderfulgo/internal/profile"
)

// Payload is the request body sent to the assistant service.
type Payload struct {
	PetInfo profile.Record `json:"petInfo"`
	Message string         `json:"message"`
	History []chat.Message `json:"history"`
}

// Reply is a decoded service response: one of ChatReply, PlanResult,
// AppError or Empty.
type Reply interface {
	isReply()
}

// ChatReply is a conversational answer.
type ChatReply struct {
	Text string
}

// PlanResult is a generated plan.
type PlanResult struct {
	Plan plan.Plan
}

// AppError is a rejection delivered with a success status.
type AppError struct {
	Message string
}

// Empty is a response carrying none of the known fields.
type Empty struct{}

func (ChatReply) isReply()  {}
func (PlanResult) isReply() {}
func (AppError) isReply()   {}
func (Empty) isReply()      {}

type rawReply struct {
	Error           string      `json:"error"`
	Response        string      `json:"response"`
	PlanTitle       string      `json:"plan_title"`
	GreetingMessage string      `json:"greeting_message"`
	Spots           []plan.Spot `json:"spots"`
}

// DecodeReply turns a success body into a Reply. Fields are checked in the
// order error, response, plan_title; the first non-empty one wins.
func DecodeReply(body []byte) (Reply, error) {
	raw, err := decodeRaw(body)
	if err != nil {
		return nil, err
	}

	switch {
	case raw.Error != "":
		return AppError{Message: raw.Error}, nil
	case raw.Response != "":
		return ChatReply{Text: raw.Response}, nil
	case raw.PlanTitle != "":
		return raw.plan(), nil
	default:
		return Empty{}, nil
	}
}

// DecodePlanReply decodes the answer to a plan request. Only error outranks
// a non-empty plan_title; a response alongside a plan is ignored.
func DecodePlanReply(body []byte) (Reply, error) {
	raw, err := decodeRaw(body)
	if err != nil {
		return nil, err
	}
	if raw.Error == "" && raw.PlanTitle != "" {
		return raw.plan(), nil
	}
	return DecodeReply(body)
}

func decodeRaw(body []byte) (rawReply, error) {
	var raw rawReply
	if err := json.Unmarshal(body, &raw); err != nil {
		return rawReply{}, fmt.Errorf("failed to decode service response: %w", err)
	}
	return raw, nil
}

func (raw rawReply) plan() PlanResult {
	return PlanResult{Plan: plan.Plan{
		Title:           raw.PlanTitle,
		GreetingMessage: raw.GreetingMessage,
		Spots:           raw.Spots,
	}}
}

// decodeErrorMessage extracts the optional error field of a failure body.
func decodeErrorMessage(body []byte) string {
	var raw struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return ""
	}
	return raw.Error
}
