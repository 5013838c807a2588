package check

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/xy-planning-network/gatekeeper"
	"github.com/xy-planning-network/gatekeeper/http/req"
	"github.com/xy-planning-network/gatekeeper/http/resp"
	"github.com/xy-planning-network/gatekeeper/identity"
	"github.com/xy-planning-network/gatekeeper/logger"
)

// credentialsBody is what POST /validate-admin accepts.
// Missing fields are checked like empty strings.
type credentialsBody struct {
	Email    string `json:"email" schema:"email"`
	Password string `json:"password" schema:"password"`
}

// A Handler answers the admin check endpoints.
//
// Both endpoints always respond 200 with a JSON Result:
// faults are logged and answered with "Validation failed".
type Handler struct {
	admin     gatekeeper.AdminCredentials
	checker   SessionChecker
	logger    logger.Logger
	metrics   *Metrics
	parser    *req.Parser
	responder *resp.Responder
}

// A HandlerOpt configures a *Handler.
type HandlerOpt func(*Handler)

// WithLogger sets the logger.Logger faults are logged through.
func WithLogger(l logger.Logger) HandlerOpt {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithRegisterer registers the Handler's Metrics with reg.
func WithRegisterer(reg prometheus.Registerer) HandlerOpt {
	return func(h *Handler) {
		h.metrics = NewMetrics(reg)
	}
}

// NewHandler constructs a *Handler checking against admin,
// reading sessions from provider.
func NewHandler(admin gatekeeper.AdminCredentials, provider identity.Provider, opts ...HandlerOpt) *Handler {
	h := &Handler{
		admin:  admin,
		parser: req.NewParser(),
	}

	for _, opt := range opts {
		opt(h)
	}

	if h.logger == nil {
		h.logger = logger.New()
	}

	if h.metrics == nil {
		h.metrics = NewMetrics(nil)
	}

	h.checker = SessionChecker{Admin: admin, Logger: h.logger, Provider: provider}
	h.responder = resp.NewResponder(resp.WithLogger(h.logger))

	return h
}

// ValidateAdmin checks the email and password posted as a form, or as JSON whatever the Content-Type.
func (h *Handler) ValidateAdmin(w http.ResponseWriter, r *http.Request) {
	res := h.validateAdmin(r)
	h.metrics.observe(credentialsCheck, res)
	h.respond(w, r, res)
}

// ValidateSession checks the session the request's cookies or bearer token carry.
func (h *Handler) ValidateSession(w http.ResponseWriter, r *http.Request) {
	res := h.validateSession(r)
	h.metrics.observe(sessionCheck, res)
	h.respond(w, r, res)
}

func (h *Handler) validateAdmin(r *http.Request) (res Result) {
	defer h.recoverTo(r, &res)

	var body credentialsBody
	if err := h.parser.Parse(r, &body); err != nil {
		h.logger.Warn("could not parse admin credentials", &logger.LogContext{Request: r, Error: err})
		return Invalid(MsgValidationFailed)
	}

	return Credentials(h.admin, body.Email, body.Password)
}

func (h *Handler) validateSession(r *http.Request) (res Result) {
	defer h.recoverTo(r, &res)
	return h.checker.Check(r)
}

func (h *Handler) recoverTo(r *http.Request, res *Result) {
	v := recover()
	if v == nil {
		return
	}

	err := fmt.Errorf("%w: recovered: %v", gatekeeper.ErrUnexpected, v)
	h.logger.Error(err.Error(), &logger.LogContext{Request: r, Error: err})
	*res = Invalid(MsgValidationFailed)
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, res Result) {
	if err := h.responder.Json(w, r, resp.Data(res)); err != nil {
		h.logger.Error("could not write check result", &logger.LogContext{Request: r, Error: err})
	}
}
