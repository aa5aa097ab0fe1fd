package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taicc-readiness/internal/chart"
	"taicc-readiness/internal/delivery"
	"taicc-readiness/internal/document"
	"taicc-readiness/internal/llm"
	"taicc-readiness/internal/metrics"
	"taicc-readiness/internal/model"
	"taicc-readiness/internal/payment"
	"taicc-readiness/internal/questions"
	"taicc-readiness/internal/report"
	"taicc-readiness/internal/repository"
	"taicc-readiness/internal/scoring"
	"taicc-readiness/internal/session"
	"taicc-readiness/utilities"
)

var (
	ErrUnknownSelection   = errors.New("unknown domain or tier")
	ErrUnknownQuestion    = errors.New("unknown question id")
	ErrUnknownChoice      = errors.New("unknown answer choice")
	ErrIncompleteAnswers  = errors.New("not every question has been answered")
	ErrPaymentGateway     = errors.New("payment gateway request failed")
	ErrResultsUnavailable = errors.New("results ledger is not configured")
)

const (
	reportPath      = "/session/report"
	deliveryTimeout = 2 * time.Minute
)

// AssessmentService drives one session through login, payment, questions
// and results.
type AssessmentService interface {
	Ready() error
	Catalog() Catalog
	Start(ctx context.Context, req LoginRequest) (SessionView, error)
	View(ctx context.Context, sessionID string) (SessionView, error)
	Pay(ctx context.Context, sessionID string) (PaymentView, error)
	Continue(ctx context.Context, sessionID string) (SessionView, error)
	Questions(ctx context.Context, sessionID string) (QuestionsView, error)
	Answer(ctx context.Context, sessionID string, answers []AnswerInput) (Progress, error)
	Submit(ctx context.Context, sessionID string) (ResultsView, error)
	Report(ctx context.Context, sessionID string) (*model.ReportDocument, error)
	StoredResults(ctx context.Context, limit int) ([]model.AssessmentResult, error)
}

// Dependencies are the collaborators of the service. Gateway, Results and
// Bus may be nil.
type Dependencies struct {
	Bank       *questions.Bank
	Store      *session.Store
	Compiler   *report.Compiler
	Assembler  document.Assembler
	Dispatcher *delivery.Dispatcher
	Gateway    payment.Gateway
	Poller     *payment.Poller
	Results    repository.ResultRepository
	Bus        *utilities.EventBus

	PriceRupees   int64
	Currency      string
	CheckoutKeyID string
	Now           func() time.Time
}

type assessmentService struct {
	deps Dependencies
	now  func() time.Time
}

func NewAssessmentService(deps Dependencies) AssessmentService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	if deps.Poller == nil {
		deps.Poller = payment.NewPoller(12, 5*time.Second)
	}
	if deps.Currency == "" {
		deps.Currency = "INR"
	}
	return &assessmentService{deps: deps, now: now}
}

// Ready fails when no text generation client is configured; sessions are
// useless without one.
func (s *assessmentService) Ready() error {
	if !s.deps.Compiler.Available() {
		return llm.ErrTextGenerationUnavailable
	}
	return nil
}

func (s *assessmentService) Catalog() Catalog {
	c := Catalog{
		Choices:        model.Choices,
		MaturityLevels: model.MaturityLevels,
		PriceRupees:    s.deps.PriceRupees,
	}
	for _, d := range s.deps.Bank.Domains() {
		c.Domains = append(c.Domains, CatalogEntry{Name: d, Description: model.DomainExplanations[d]})
	}
	for _, t := range s.deps.Bank.Tiers() {
		c.Tiers = append(c.Tiers, CatalogEntry{Name: t, Description: model.TierExplanations[t]})
	}
	return c
}

func (s *assessmentService) Start(ctx context.Context, req LoginRequest) (SessionView, error) {
	if !s.deps.Bank.Has(req.Domain, req.Tier) {
		return SessionView{}, fmt.Errorf("%w: %q / %q", ErrUnknownSelection, req.Domain, req.Tier)
	}

	sess := s.deps.Store.Create()
	sess.Lock()
	defer sess.Unlock()

	profile := model.UserProfile{Name: req.Name, Company: req.Company, Email: req.Email, Phone: req.Phone}
	if err := sess.Login(profile, req.Domain, req.Tier); err != nil {
		return SessionView{}, err
	}
	utilities.Info("Session %s started for %s (%s, %s)", sess.ID, profile.Company, req.Domain, req.Tier)
	s.deps.Bus.Publish(metrics.EventSessionStarted, sess.ID)
	s.transition(sess.ID, session.StateLogin, session.StatePayment)
	return s.view(sess, false), nil
}

func (s *assessmentService) View(ctx context.Context, sessionID string) (SessionView, error) {
	sess, err := s.deps.Store.Get(sessionID)
	if err != nil {
		return SessionView{}, err
	}
	sess.Lock()
	defer sess.Unlock()
	recovered := sess.Recover()
	if recovered {
		utilities.Warn("Session %s had an unknown state and was reset to login", sess.ID)
	}
	return s.view(sess, recovered), nil
}

// Pay makes sure the session has an order and waits for its capture. When
// no gateway is configured the payment is waived.
func (s *assessmentService) Pay(ctx context.Context, sessionID string) (PaymentView, error) {
	sess, err := s.deps.Store.Get(sessionID)
	if err != nil {
		return PaymentView{}, err
	}
	sess.Lock()
	defer sess.Unlock()
	sess.Recover()

	if sess.State != session.StatePayment {
		return PaymentView{}, fmt.Errorf("%w: payment needs state %s, session is in %s",
			session.ErrInvalidTransition, session.StatePayment, sess.State)
	}
	if sess.Payment.Cleared() {
		return s.paymentView(sess, 0, "Payment already confirmed."), nil
	}

	if s.deps.Gateway == nil {
		if err := sess.ConfirmPayment(true); err != nil {
			return PaymentView{}, err
		}
		utilities.Warn("Payment gateway not configured; waiving payment for session %s", sess.ID)
		s.deps.Bus.Publish(metrics.EventPaymentPolled, metrics.PaymentPollEvent{Result: "waived"})
		return s.paymentView(sess, 0, "Payment is not configured; continuing without payment."), nil
	}

	if sess.Payment.OrderID == "" {
		amount := s.deps.PriceRupees * 100
		order, err := s.deps.Gateway.CreateOrder(ctx, amount, s.deps.Currency)
		if err != nil {
			utilities.Error("Order creation for session %s failed: %v", sess.ID, err)
			return PaymentView{}, fmt.Errorf("%w: %v", ErrPaymentGateway, err)
		}
		if err := sess.AttachOrder(order.ID, order.Amount); err != nil {
			return PaymentView{}, err
		}
		utilities.Info("Order %s created for session %s", order.ID, sess.ID)
	}

	res, err := s.deps.Poller.AwaitCapture(ctx, s.deps.Gateway, sess.Payment.OrderID)
	if err != nil {
		s.deps.Bus.Publish(metrics.EventPaymentPolled, metrics.PaymentPollEvent{Result: "cancelled", Attempts: res.Attempts})
		return s.paymentView(sess, res.Attempts, "Payment check interrupted; try again."), nil
	}
	if !res.Captured {
		s.deps.Bus.Publish(metrics.EventPaymentPolled, metrics.PaymentPollEvent{Result: "not_captured", Attempts: res.Attempts})
		return s.paymentView(sess, res.Attempts, "Awaiting payment completion. Complete the checkout and try again."), nil
	}

	if err := sess.ConfirmPayment(false); err != nil {
		return PaymentView{}, err
	}
	utilities.Info("Payment for session %s captured after %d checks", sess.ID, res.Attempts)
	s.deps.Bus.Publish(metrics.EventPaymentPolled, metrics.PaymentPollEvent{Result: "captured", Attempts: res.Attempts})
	return s.paymentView(sess, res.Attempts, "Payment successful."), nil
}

func (s *assessmentService) Continue(ctx context.Context, sessionID string) (SessionView, error) {
	sess, err := s.deps.Store.Get(sessionID)
	if err != nil {
		return SessionView{}, err
	}
	sess.Lock()
	defer sess.Unlock()
	sess.Recover()

	if err := sess.BeginQuestions(); err != nil {
		return SessionView{}, err
	}
	s.transition(sess.ID, session.StatePayment, session.StateQuestions)
	return s.view(sess, false), nil
}

func (s *assessmentService) Questions(ctx context.Context, sessionID string) (QuestionsView, error) {
	sess, err := s.deps.Store.Get(sessionID)
	if err != nil {
		return QuestionsView{}, err
	}
	sess.Lock()
	defer sess.Unlock()

	qs, err := s.questionsFor(sess)
	if err != nil {
		return QuestionsView{}, err
	}
	view := QuestionsView{
		Domain:    sess.Domain,
		Tier:      sess.Tier,
		Questions: make([]QuestionView, 0, len(qs)),
		Choices:   model.Choices,
	}
	answered := 0
	for _, q := range qs {
		qv := QuestionView{Question: q}
		if score, ok := sess.Answers.Get(q.ID); ok {
			qv.Choice = choiceLabel(score)
			answered++
		}
		view.Questions = append(view.Questions, qv)
	}
	view.Progress = newProgress(answered, len(qs))
	return view, nil
}

// Answer records a batch of answers. The batch is validated as a whole
// before any answer is stored.
func (s *assessmentService) Answer(ctx context.Context, sessionID string, answers []AnswerInput) (Progress, error) {
	sess, err := s.deps.Store.Get(sessionID)
	if err != nil {
		return Progress{}, err
	}
	sess.Lock()
	defer sess.Unlock()

	qs, err := s.questionsFor(sess)
	if err != nil {
		return Progress{}, err
	}
	known := make(map[string]bool, len(qs))
	for _, q := range qs {
		known[q.ID] = true
	}

	resolved := make([]model.Answer, 0, len(answers))
	for _, in := range answers {
		if !known[in.QuestionID] {
			return Progress{}, fmt.Errorf("%w: %q", ErrUnknownQuestion, in.QuestionID)
		}
		score := in.Score
		if in.Choice != "" {
			v, ok := model.ChoiceScore(in.Choice)
			if !ok {
				return Progress{}, fmt.Errorf("%w: %q", ErrUnknownChoice, in.Choice)
			}
			score = v
		}
		if !scoring.ValidScore(score) {
			return Progress{}, fmt.Errorf("%w: got %d", session.ErrInvalidScore, score)
		}
		resolved = append(resolved, model.Answer{QuestionID: in.QuestionID, Score: score})
	}
	for _, a := range resolved {
		if err := sess.RecordAnswer(a.QuestionID, a.Score); err != nil {
			return Progress{}, err
		}
	}
	return newProgress(sess.Answers.Len(), len(qs)), nil
}

// Submit scores the answers, compiles and lays out the report, delivers it
// and moves the session to results. A generation failure leaves the session
// in questions so it can be submitted again.
func (s *assessmentService) Submit(ctx context.Context, sessionID string) (ResultsView, error) {
	sess, err := s.deps.Store.Get(sessionID)
	if err != nil {
		return ResultsView{}, err
	}
	sess.Lock()
	defer sess.Unlock()

	qs, err := s.questionsFor(sess)
	if err != nil {
		return ResultsView{}, err
	}
	values := make([]int, 0, len(qs))
	for _, q := range qs {
		if v, ok := sess.Answers.Get(q.ID); ok {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return ResultsView{}, scoring.ErrNoAnswers
	}
	if len(values) < len(qs) {
		return ResultsView{}, fmt.Errorf("%w: %d of %d answered", ErrIncompleteAnswers, len(values), len(qs))
	}

	score, err := scoring.Score(values)
	if err != nil {
		return ResultsView{}, err
	}

	compiled, err := s.deps.Compiler.Compile(ctx, sess.Profile, score)
	if err != nil {
		s.deps.Bus.Publish(metrics.EventReportGenerated, metrics.ReportEvent{Result: "error"})
		return ResultsView{}, err
	}
	s.deps.Bus.Publish(metrics.EventReportGenerated, metrics.ReportEvent{Result: "ok"})

	completedAt := s.now()
	doc, err := s.deps.Assembler.Assemble(ctx, document.Input{
		Profile:     sess.Profile,
		Maturity:    score.Maturity,
		Report:      compiled,
		Charts:      s.charts(sess, score, values),
		GeneratedAt: completedAt,
	})
	if err != nil {
		return ResultsView{}, fmt.Errorf("assemble report: %w", err)
	}

	// Delivery outlives the request so a dropped client does not cut off the email.
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), deliveryTimeout)
	defer cancel()
	outcomes := s.deps.Dispatcher.Dispatch(dctx, delivery.Job{
		SessionID: sess.ID,
		Row:       sess.ResultRow(completedAt, score),
		Document:  doc,
	})
	for _, o := range outcomes {
		s.deps.Bus.Publish(metrics.EventDeliveryFinished, metrics.DeliveryEvent{Channel: string(o.Channel), Status: string(o.Status)})
	}

	if err := sess.Complete(session.Results{Score: score, Report: compiled, Document: doc, Outcomes: outcomes}); err != nil {
		return ResultsView{}, err
	}
	s.transition(sess.ID, session.StateQuestions, session.StateResults)
	utilities.Info("Session %s completed: %.2f (%s)", sess.ID, score.Average, score.Maturity)
	return s.resultsView(sess, completedAt), nil
}

func (s *assessmentService) Report(ctx context.Context, sessionID string) (*model.ReportDocument, error) {
	sess, err := s.deps.Store.Get(sessionID)
	if err != nil {
		return nil, err
	}
	sess.Lock()
	defer sess.Unlock()

	if sess.State != session.StateResults || sess.Results == nil || sess.Results.Document == nil {
		return nil, fmt.Errorf("%w: report needs state %s, session is in %s",
			session.ErrInvalidTransition, session.StateResults, sess.State)
	}
	return sess.Results.Document, nil
}

func (s *assessmentService) StoredResults(ctx context.Context, limit int) ([]model.AssessmentResult, error) {
	if s.deps.Results == nil {
		return nil, ErrResultsUnavailable
	}
	return s.deps.Results.ListResults(ctx, limit)
}

func (s *assessmentService) questionsFor(sess *session.Session) ([]model.Question, error) {
	if sess.State != session.StateQuestions {
		return nil, fmt.Errorf("%w: questions need state %s, session is in %s",
			session.ErrInvalidTransition, session.StateQuestions, sess.State)
	}
	qs, err := s.deps.Bank.Questions(sess.Domain, sess.Tier)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownSelection, err)
	}
	return qs, nil
}

// charts renders the three report charts. A chart that fails to render is
// left out of the document.
func (s *assessmentService) charts(sess *session.Session, score model.ScoreResult, values []int) document.Charts {
	var out document.Charts
	var err error

	if out.Bar, err = chart.Bar([]chart.NamedValue{{Label: "Overall Score", Value: score.Average}}); err != nil {
		utilities.Warn("Bar chart for session %s skipped: %v", sess.ID, err)
		out.Bar = nil
	}
	if out.Pie, err = chart.Pie([]chart.NamedValue{{Label: sess.Tier, Value: 1}}); err != nil {
		utilities.Warn("Pie chart for session %s skipped: %v", sess.ID, err)
		out.Pie = nil
	}

	running := scoring.RunningAverages(values)
	trend := make([]chart.NamedValue, len(running))
	for i, v := range running {
		trend[i] = chart.NamedValue{Label: fmt.Sprintf("Q%d", i+1), Value: v}
	}
	if out.Line, err = chart.Line(trend); err != nil {
		utilities.Warn("Trend chart for session %s skipped: %v", sess.ID, err)
		out.Line = nil
	}
	return out
}

func (s *assessmentService) transition(id string, from, to session.State) {
	s.deps.Bus.Publish(metrics.EventTransition, metrics.TransitionEvent{SessionID: id, From: from.String(), To: to.String()})
}

func (s *assessmentService) view(sess *session.Session, recovered bool) SessionView {
	v := SessionView{
		SessionID: sess.ID,
		State:     sess.State,
		Profile:   sess.Profile,
		Domain:    sess.Domain,
		Tier:      sess.Tier,
		Payment:   sess.Payment,
		Recovered: recovered,
	}
	if sess.State == session.StateResults && sess.Results != nil {
		rv := s.resultsView(sess, sess.Results.Document.GeneratedAt)
		v.Results = &rv
	}
	return v
}

func (s *assessmentService) paymentView(sess *session.Session, attempts int, msg string) PaymentView {
	return PaymentView{
		SessionID: sess.ID,
		State:     sess.State,
		Paid:      sess.Payment.Paid,
		Waived:    sess.Payment.Waived,
		OrderID:   sess.Payment.OrderID,
		Amount:    sess.Payment.Amount,
		Currency:  s.deps.Currency,
		KeyID:     s.deps.CheckoutKeyID,
		Attempts:  attempts,
		Message:   msg,
	}
}

func (s *assessmentService) resultsView(sess *session.Session, completedAt time.Time) ResultsView {
	res := sess.Results
	return ResultsView{
		SessionID:      sess.ID,
		Score:          res.Score,
		Report:         res.Report.FullText,
		MaturityLevels: model.MaturityLevels,
		FileName:       res.Document.FileName,
		DownloadPath:   reportPath,
		Deliveries:     res.Outcomes,
		Warnings:       delivery.Warnings(res.Outcomes),
		TimeTaken:      formatElapsed(completedAt.Sub(sess.StartedAt)),
	}
}

func choiceLabel(score int) string {
	for _, c := range model.Choices {
		if c.Score == score {
			return c.Label
		}
	}
	return ""
}

// formatElapsed renders d as "N minutes and M seconds".
func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d / time.Second)
	return fmt.Sprintf("%d minutes and %d seconds", secs/60, secs%60)
}
