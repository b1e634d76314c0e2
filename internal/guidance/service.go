package guidance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/douggil74/busy-preacher-mvp-sub000/internal/moderation"
	"github.com/douggil74/busy-preacher-mvp-sub000/internal/observability/metrics"
	"github.com/douggil74/busy-preacher-mvp-sub000/pkg/logging"
)

var serviceTracer = otel.Tracer("busypreacher/guidance-service")

var (
	// ErrEmptyQuestion is returned when the request carries no question text.
	ErrEmptyQuestion = errors.New("guidance: question is required")
	// ErrGenerationFailed is returned when the reply provider fails or times
	// out. The caller sees a generic message, never provider detail.
	ErrGenerationFailed = errors.New("guidance: failed to generate a response")
)

const defaultGenerationTimeout = 30 * time.Second

// Service sequences one guidance exchange: classify, optionally short-circuit,
// retrieve context, generate, scan the output, and decide escalation.
type Service struct {
	classifier *PatternClassifier
	retriever  SermonRetriever
	llm        LLMClient
	alerter    Alerter
	history    HistoryStore
	metrics    *metrics.GuidanceMetrics
	logger     *logging.Logger
	choose     Chooser

	generationTimeout time.Duration
}

// ServiceOptions configures a Service. Nil collaborators fall back to no-op
// implementations so partial wiring works in dev mode.
type ServiceOptions struct {
	Classifier        *PatternClassifier
	Retriever         SermonRetriever
	LLM               LLMClient
	Alerter           Alerter
	History           HistoryStore
	Metrics           *metrics.GuidanceMetrics
	Logger            *logging.Logger
	Chooser           Chooser
	GenerationTimeout time.Duration
}

// NewService wires the pipeline. LLM is the only required collaborator.
func NewService(opts ServiceOptions) (*Service, error) {
	if opts.LLM == nil {
		return nil, errors.New("guidance: llm client is required")
	}
	if opts.Classifier == nil {
		opts.Classifier = NewPatternClassifier(opts.Logger)
	}
	if opts.Retriever == nil {
		opts.Retriever = NoopSermonRetriever{}
	}
	if opts.Alerter == nil {
		opts.Alerter = NoopAlerter{}
	}
	if opts.History == nil {
		opts.History = NoopHistoryStore{}
	}
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
	if opts.Chooser == nil {
		opts.Chooser = RandomChooser
	}
	if opts.GenerationTimeout <= 0 {
		opts.GenerationTimeout = defaultGenerationTimeout
	}

	return &Service{
		classifier:        opts.Classifier,
		retriever:         opts.Retriever,
		llm:               opts.LLM,
		alerter:           opts.Alerter,
		history:           opts.History,
		metrics:           opts.Metrics,
		logger:            opts.Logger,
		choose:            opts.Chooser,
		generationTimeout: opts.GenerationTimeout,
	}, nil
}

// Respond handles one exchange. Stages run strictly in sequence; only
// validation and generation failures surface as errors, every other external
// failure degrades.
func (s *Service) Respond(ctx context.Context, req GuidanceRequest) (GuidanceResponse, error) {
	ctx, span := serviceTracer.Start(ctx, "guidance.respond")
	defer span.End()

	question := strings.TrimSpace(req.Question)
	if question == "" {
		return GuidanceResponse{}, ErrEmptyQuestion
	}

	history := req.ConversationHistory
	if len(history) == 0 && req.SessionID != "" {
		stored, err := s.history.Load(ctx, req.SessionID)
		if err != nil {
			s.logger.Warn("session history unavailable, continuing without it",
				"session_id", req.SessionID,
				"error", err,
			)
		} else {
			history = stored
		}
	}

	cls := s.classifier.Classify(ctx, question)
	s.metrics.ObserveRequest(string(cls.Label))
	span.SetAttributes(attribute.String("guidance.label", string(cls.Label)))

	if reply := CannedReply(cls.Label, s.choose); reply != "" {
		return s.shortCircuit(ctx, req, cls, question, reply, history)
	}

	var passages []SermonPassage
	if cls.Label != LabelFollowUp {
		passages = s.retriever.Retrieve(ctx, question)
		if len(passages) == 0 {
			s.metrics.ObserveRetrievalFailure()
		}
	}

	llmReq := AssemblePrompt(cls, passages, history, question)

	genCtx, cancel := context.WithTimeout(ctx, s.generationTimeout)
	defer cancel()

	start := time.Now()
	llmResp, err := s.llm.Complete(genCtx, llmReq)
	s.metrics.ObserveGenerationLatency(time.Since(start).Seconds())
	if err != nil {
		s.logger.Error("reply generation failed",
			"session_id", req.SessionID,
			"error", err,
		)
		return GuidanceResponse{}, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	answer := llmResp.Text
	if !cls.Crisis && !cls.MandatoryReport {
		answer = answer + "\n\n" + SignOff(s.choose)
	}

	ending := IsConversationEnding(llmResp.Text)

	fullHistory := appendTurns(history, question, answer)

	event := DecideEscalation(EscalationInput{
		Classification: cls,
		Ending:         ending,
		Question:       question,
		Answer:         answer,
		SessionID:      req.SessionID,
		ClientIP:       req.ClientIP,
		UserAgent:      req.UserAgent,
		FirstName:      firstName(req.UserName),
		History:        fullHistory,
	})
	if event != nil {
		s.metrics.ObserveEscalation(string(event.Type))
		s.alerter.Dispatch(*event)
		s.alerter.Log(moderation.Entry{
			Type:         string(event.Type),
			Question:     question,
			ClientIP:     req.ClientIP,
			UserAgent:    req.UserAgent,
			ResponseSent: answer,
		})
	}

	s.saveHistory(ctx, req.SessionID, fullHistory)

	return GuidanceResponse{
		Answer:            answer,
		IsCrisis:          cls.Crisis,
		IsSerious:         event != nil && event.Type == NotifySerious,
		IsMandatoryReport: cls.MandatoryReport,
	}, nil
}

// shortCircuit returns a canned reply without generation. Abusive inputs fire
// their abuse-report event here, immediately, since no generated answer will
// ever exist for them.
func (s *Service) shortCircuit(ctx context.Context, req GuidanceRequest, cls Classification, question, reply string, history []ConversationTurn) (GuidanceResponse, error) {
	fullHistory := appendTurns(history, question, reply)

	if cls.Label == LabelAbusive {
		event := NewAbuseEvent(EscalationInput{
			Classification: cls,
			Question:       question,
			Answer:         reply,
			SessionID:      req.SessionID,
			ClientIP:       req.ClientIP,
			UserAgent:      req.UserAgent,
			FirstName:      firstName(req.UserName),
			History:        fullHistory,
		})
		s.metrics.ObserveEscalation(string(event.Type))
		s.alerter.Dispatch(*event)
	}

	s.alerter.Log(moderation.Entry{
		Type:         string(cls.Label),
		Question:     question,
		ClientIP:     req.ClientIP,
		UserAgent:    req.UserAgent,
		ResponseSent: reply,
	})

	s.saveHistory(ctx, req.SessionID, fullHistory)

	return GuidanceResponse{
		Answer:            reply,
		IsCrisis:          cls.Crisis,
		IsMandatoryReport: cls.MandatoryReport,
	}, nil
}

func (s *Service) saveHistory(ctx context.Context, sessionID string, history []ConversationTurn) {
	if sessionID == "" {
		return
	}
	if err := s.history.Save(ctx, sessionID, history); err != nil {
		s.logger.Warn("failed to persist session history",
			"session_id", sessionID,
			"error", err,
		)
	}
}

func appendTurns(history []ConversationTurn, question, answer string) []ConversationTurn {
	out := make([]ConversationTurn, 0, len(history)+2)
	out = append(out, history...)
	out = append(out,
		ConversationTurn{Role: RoleUser, Content: question},
		ConversationTurn{Role: RoleAssistant, Content: answer},
	)
	return out
}

func firstName(userName string) string {
	fields := strings.Fields(strings.TrimSpace(userName))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
