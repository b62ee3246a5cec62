// Package assistant runs exchanges with the remote plan/chat service: it
// assembles requests from local state, guards each affordance with a
// single-flight state machine, and routes responses into chat or plan
// history.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/edgard/wonderfulgo/internal/chat"
	"github.com/edgard/wonderfulgo/internal/clock"
	"github.com/edgard/wonderfulgo/internal/metrics"
	"github.com/edgard/wonderfulgo/internal/plan"
	"github.com/edgard/wonderfulgo/internal/profile"
)

// DefaultThrottledStatus is the status the service uses when it is
// handling too many requests.
const DefaultThrottledStatus = http.StatusServiceUnavailable

// Mode selects how a response is routed. Each mode is a separately guarded
// affordance.
type Mode string

const (
	ModePlan Mode = "plan"
	ModeChat Mode = "chat"
)

// State is the lifecycle of one affordance.
type State int

const (
	StateIdle State = iota
	StateSending
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ProfileSource provides the pet profile sent with every request.
type ProfileSource interface {
	Load(ctx context.Context) profile.Record
}

// ChatLog is the transcript the orchestrator reads and appends to.
type ChatLog interface {
	List(ctx context.Context) []chat.Message
	Append(ctx context.Context, content string, sender chat.Sender) (chat.Message, error)
}

// PlanLog receives generated plans.
type PlanLog interface {
	Prepend(ctx context.Context, p plan.Plan) error
}

// Messages are the user-visible strings the orchestrator produces itself.
type Messages struct {
	Throttled     string
	ServiceStatus string // format with the status code
	NoPlan        string
	AreaRequired  string
	EmptyMessage  string
	PlanCreated   string // appended to the greeting when chat returns a plan
	InvalidReply  string
}

// DefaultMessages returns the built-in user-visible strings.
func DefaultMessages() Messages {
	return Messages{
		Throttled:     "The service is busy right now. Please wait a moment and try again.",
		ServiceStatus: "Error: %d",
		NoPlan:        "Could not create a plan. Please try again.",
		AreaRequired:  "Please enter an area or your place of residence.",
		EmptyMessage:  "Please enter a message.",
		PlanCreated:   "\n(A plan has been created. Check the guide screen.)",
		InvalidReply:  "The service returned an unreadable response.",
	}
}

// Result describes what a successful exchange changed.
type Result struct {
	Mode Mode
	// Reply is the assistant message appended to the transcript, if any.
	Reply *chat.Message
	// Plan is the plan prepended to plan history, if any.
	Plan *plan.Plan
	// NavigateToPlan asks the caller to show the plan view.
	NavigateToPlan bool
}

type flight struct {
	guard *semaphore.Weighted
	mu    sync.Mutex
	state State
}

// Orchestrator performs guarded exchanges with the assistant service.
type Orchestrator struct {
	profiles  ProfileSource
	chats     ChatLog
	plans     PlanLog
	transport Transport

	flights         map[Mode]*flight
	throttledStatus int
	messages        Messages
	clock           clock.Clock
	metrics         *metrics.Metrics
	onState         func(Mode, State)
	logger          *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClock sets the clock used to timestamp plans.
func WithClock(c clock.Clock) Option {
	return func(o *Orchestrator) { o.clock = c }
}

// WithMessages overrides the user-visible strings. Empty fields keep their defaults.
func WithMessages(m Messages) Option {
	return func(o *Orchestrator) {
		def := o.messages
		o.messages = Messages{
			Throttled:     firstNonEmpty(m.Throttled, def.Throttled),
			ServiceStatus: firstNonEmpty(m.ServiceStatus, def.ServiceStatus),
			NoPlan:        firstNonEmpty(m.NoPlan, def.NoPlan),
			AreaRequired:  firstNonEmpty(m.AreaRequired, def.AreaRequired),
			EmptyMessage:  firstNonEmpty(m.EmptyMessage, def.EmptyMessage),
			PlanCreated:   firstNonEmpty(m.PlanCreated, def.PlanCreated),
			InvalidReply:  firstNonEmpty(m.InvalidReply, def.InvalidReply),
		}
	}
}

// WithThrottledStatus sets the HTTP status treated as throttling.
func WithThrottledStatus(status int) Option {
	return func(o *Orchestrator) {
		if status > 0 {
			o.throttledStatus = status
		}
	}
}

// WithSharedGuard makes plan and chat share one guard, so at most one
// exchange of either kind is in flight.
func WithSharedGuard() Option {
	return func(o *Orchestrator) {
		shared := semaphore.NewWeighted(1)
		for _, f := range o.flights {
			f.guard = shared
		}
	}
}

// WithMetrics records exchange outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithStateObserver registers fn to be called on every state transition.
// It is how a UI drives loading indicators and enables its controls.
func WithStateObserver(fn func(Mode, State)) Option {
	return func(o *Orchestrator) { o.onState = fn }
}

// New creates an Orchestrator.
func New(profiles ProfileSource, chats ChatLog, plans PlanLog, transport Transport, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		profiles:  profiles,
		chats:     chats,
		plans:     plans,
		transport: transport,
		flights: map[Mode]*flight{
			ModePlan: {guard: semaphore.NewWeighted(1)},
			ModeChat: {guard: semaphore.NewWeighted(1)},
		},
		throttledStatus: DefaultThrottledStatus,
		messages:        DefaultMessages(),
		clock:           clock.System,
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = o.logger.With("component", "assistant")
	return o
}

// Messages returns the user-visible strings in use.
func (o *Orchestrator) Messages() Messages {
	return o.messages
}

// State returns the current state of mode's affordance.
func (o *Orchestrator) State(mode Mode) State {
	f, ok := o.flights[mode]
	if !ok {
		return StateIdle
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// CanStart reports whether a call for mode would currently be accepted.
func (o *Orchestrator) CanStart(mode Mode) bool {
	f, ok := o.flights[mode]
	if !ok || !f.guard.TryAcquire(1) {
		return false
	}
	f.guard.Release(1)
	return true
}

// Run sends message in mode and routes the response. It returns ErrBusy
// without side effects when mode already has a call in flight.
func (o *Orchestrator) Run(ctx context.Context, mode Mode, message string) (res Result, err error) {
	end, err := o.begin(ctx, mode)
	if err != nil {
		return Result{}, err
	}
	defer settle(end, &err)
	return o.exchange(ctx, mode, message)
}

// SendChat appends text to the transcript as the user's message, then runs
// a chat exchange that includes it in the history.
func (o *Orchestrator) SendChat(ctx context.Context, text string) (userMsg chat.Message, res Result, err error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return chat.Message{}, Result{}, &Error{Kind: KindValidation, Message: o.messages.EmptyMessage}
	}

	end, err := o.begin(ctx, ModeChat)
	if err != nil {
		return chat.Message{}, Result{}, err
	}
	defer settle(end, &err)

	userMsg, err = o.chats.Append(ctx, text, chat.SenderUser)
	if err != nil {
		return chat.Message{}, Result{}, fmt.Errorf("failed to record user message: %w", err)
	}

	res, err = o.exchange(ctx, ModeChat, text)
	return userMsg, res, err
}

// CreatePlan validates cond, renders the plan request and runs a plan exchange.
// Validation failures return before any network call.
func (o *Orchestrator) CreatePlan(ctx context.Context, cond Conditions) (Result, error) {
	cond = cond.normalized()
	if cond.Residence == "" {
		cond.Residence = strings.TrimSpace(o.profiles.Load(ctx).OwnerResidence)
	}
	if err := cond.Validate(); err != nil {
		o.logger.DebugContext(ctx, "Plan conditions rejected", "error", err)
		return Result{}, &Error{Kind: KindValidation, Message: o.messages.AreaRequired, Err: err}
	}
	return o.Run(ctx, ModePlan, cond.RequestMessage())
}

// begin claims mode's guard and moves it to Sending. The returned func must
// be called exactly once; it settles the state and returns it to Idle.
func (o *Orchestrator) begin(ctx context.Context, mode Mode) (func(error), error) {
	f, ok := o.flights[mode]
	if !ok {
		return nil, fmt.Errorf("unknown mode %q", mode)
	}
	if !f.guard.TryAcquire(1) {
		o.logger.DebugContext(ctx, "Rejected call while another is in flight", "mode", mode)
		o.metrics.Rejected(string(mode))
		return nil, ErrBusy
	}

	o.setState(f, mode, StateSending)
	o.metrics.Started(string(mode))
	start := time.Now()

	return func(err error) {
		defer f.guard.Release(1)

		outcome := metrics.OutcomeSuccess
		settled := StateSucceeded
		if err != nil {
			settled = StateFailed
			outcome = string(KindOf(err))
			if outcome == "" {
				outcome = "internal"
			}
		}
		o.metrics.Finished(string(mode), outcome, time.Since(start))
		o.setState(f, mode, settled)
		o.setState(f, mode, StateIdle)
	}, nil
}

// settle runs end with the call's final error. A panic is settled as a
// failure before it propagates, so the guard is never left held.
func settle(end func(error), err *error) {
	if r := recover(); r != nil {
		end(fmt.Errorf("exchange panicked: %v", r))
		panic(r)
	}
	end(*err)
}

func (o *Orchestrator) setState(f *flight, mode Mode, s State) {
	f.mu.Lock()
	f.state = s
	f.mu.Unlock()
	if o.onState != nil {
		o.onState(mode, s)
	}
}

func (o *Orchestrator) exchange(ctx context.Context, mode Mode, message string) (Result, error) {
	payload := Payload{
		PetInfo: o.profiles.Load(ctx),
		Message: message,
		History: o.chats.List(ctx),
	}

	log := o.logger.With("mode", mode)
	log.DebugContext(ctx, "Sending request", "history_length", len(payload.History))
	startTime := time.Now()

	status, body, err := o.transport.Send(ctx, payload)
	if err != nil {
		log.WarnContext(ctx, "Request did not complete", "error", err)
		return Result{}, &Error{Kind: KindTransport, Message: err.Error(), Err: err}
	}
	log.DebugContext(ctx, "Received response", "status", status, "duration", time.Since(startTime))

	if status < 200 || status > 299 {
		return Result{}, o.classifyFailure(ctx, status, body)
	}

	decode := DecodeReply
	if mode == ModePlan {
		decode = DecodePlanReply
	}
	reply, err := decode(body)
	if err != nil {
		log.WarnContext(ctx, "Unreadable response", "status", status, "error", err)
		return Result{}, &Error{Kind: KindService, Status: status, Message: o.messages.InvalidReply, Err: err}
	}
	if appErr, ok := reply.(AppError); ok {
		log.InfoContext(ctx, "Service rejected request", "message", appErr.Message)
		return Result{}, &Error{Kind: KindApplication, Status: status, Message: appErr.Message}
	}

	if mode == ModePlan {
		return o.routePlan(ctx, reply)
	}
	return o.routeChat(ctx, reply)
}

func (o *Orchestrator) classifyFailure(ctx context.Context, status int, body []byte) error {
	if status == o.throttledStatus {
		o.logger.WarnContext(ctx, "Service throttled request", "status", status)
		return &Error{Kind: KindThrottled, Status: status, Message: o.messages.Throttled}
	}

	msg := decodeErrorMessage(body)
	if msg == "" {
		msg = fmt.Sprintf(o.messages.ServiceStatus, status)
	}
	o.logger.WarnContext(ctx, "Service returned an error", "status", status, "message", msg)
	return &Error{Kind: KindService, Status: status, Message: msg}
}

func (o *Orchestrator) routePlan(ctx context.Context, reply Reply) (Result, error) {
	pr, ok := reply.(PlanResult)
	if !ok {
		return Result{}, &Error{Kind: KindNoPlan, Status: http.StatusOK, Message: o.messages.NoPlan}
	}

	p, err := o.storePlan(ctx, pr.Plan)
	if err != nil {
		return Result{}, err
	}
	return Result{Mode: ModePlan, Plan: &p, NavigateToPlan: true}, nil
}

func (o *Orchestrator) routeChat(ctx context.Context, reply Reply) (Result, error) {
	switch r := reply.(type) {
	case ChatReply:
		msg, err := o.chats.Append(ctx, r.Text, chat.SenderAssistant)
		if err != nil {
			return Result{}, fmt.Errorf("failed to record reply: %w", err)
		}
		return Result{Mode: ModeChat, Reply: &msg}, nil

	case PlanResult:
		// The service may answer a chat message with a full plan; it is
		// acknowledged in the transcript and also kept in plan history.
		msg, err := o.chats.Append(ctx, r.Plan.GreetingMessage+o.messages.PlanCreated, chat.SenderAssistant)
		if err != nil {
			return Result{}, fmt.Errorf("failed to record plan acknowledgment: %w", err)
		}
		p, err := o.storePlan(ctx, r.Plan)
		if err != nil {
			return Result{}, err
		}
		return Result{Mode: ModeChat, Reply: &msg, Plan: &p}, nil
	}

	o.logger.DebugContext(ctx, "Chat response carried no reply")
	return Result{Mode: ModeChat}, nil
}

func (o *Orchestrator) storePlan(ctx context.Context, p plan.Plan) (plan.Plan, error) {
	p.Timestamp = o.clock.Now()
	if err := o.plans.Prepend(ctx, p); err != nil {
		return plan.Plan{}, fmt.Errorf("failed to record plan: %w", err)
	}
	o.logger.InfoContext(ctx, "Plan stored", "title", p.Title, "spots", len(p.Spots))
	return p, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// IsUserVisible reports whether err carries a message meant for the user.
func IsUserVisible(err error) bool {
	var e *Error
	return errors.As(err, &e) || errors.Is(err, ErrBusy)
}
