package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taicc-readiness/internal/delivery"
	"taicc-readiness/internal/document"
	"taicc-readiness/internal/llm"
	"taicc-readiness/internal/model"
	"taicc-readiness/internal/payment"
	"taicc-readiness/internal/questions"
	"taicc-readiness/internal/report"
	"taicc-readiness/internal/scoring"
	"taicc-readiness/internal/session"
)

const testBank = `{
  "BFSI": {
    "Tier 1": ["Do you have an AI strategy?", "Is data governed?"],
    "Tier 2": ["Do you run pilots?", "Is leadership engaged?"]
  },
  "Healthcare": {
    "Tier 1": ["Are clinical models validated?", "Is patient data protected?"],
    "Tier 2": ["Do you automate triage?", "Do you track outcomes?"]
  }
}`

type stubLLM struct {
	mu    sync.Mutex
	text  string
	err   error
	calls int
}

func (s *stubLLM) GenerateResponse(context.Context, string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.text, s.err
}

type captureMailer struct {
	mu   sync.Mutex
	to   []string
	docs []*model.ReportDocument
}

func (m *captureMailer) SendReport(_ context.Context, to, _ string, doc *model.ReportDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.to = append(m.to, to)
	m.docs = append(m.docs, doc)
	return nil
}

type failingMailer struct {
	captureMailer
}

func (m *failingMailer) SendReport(ctx context.Context, to, name string, doc *model.ReportDocument) error {
	_ = m.captureMailer.SendReport(ctx, to, name, doc)
	return errors.New("smtp unreachable")
}

type failingSheet struct{}

func (failingSheet) AppendRow(context.Context, model.ResultRow) error {
	return errors.New("sheet quota exceeded")
}

type stubGateway struct {
	mu       sync.Mutex
	orders   int
	statuses [][]string
	polls    int
	orderErr error
}

func (g *stubGateway) CreateOrder(_ context.Context, amount int64, currency string) (payment.Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.orderErr != nil {
		return payment.Order{}, g.orderErr
	}
	g.orders++
	return payment.Order{ID: "order_test", Amount: amount, Currency: currency}, nil
}

func (g *stubGateway) PaymentStatuses(context.Context, string) ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	i := g.polls
	g.polls++
	if i < len(g.statuses) {
		return g.statuses[i], nil
	}
	return nil, nil
}

type fixture struct {
	svc    AssessmentService
	llm    *stubLLM
	mailer *captureMailer
}

func newFixture(t *testing.T, gw payment.Gateway) *fixture {
	t.Helper()
	bank, err := questions.Parse([]byte(testBank))
	require.NoError(t, err)

	f := &fixture{
		llm:    &stubLLM{text: "Executive Summary\nSolid start.\n\n1. Current Maturity Level\nEstablished."},
		mailer: &captureMailer{},
	}
	deps := Dependencies{
		Bank:        bank,
		Store:       session.NewStore(16, time.Hour),
		Compiler:    report.NewCompiler(f.llm),
		Assembler:   document.NewAssembler(nil),
		Dispatcher:  delivery.NewDispatcher(f.mailer, nil, nil),
		Poller:      payment.NewPoller(1, 0),
		PriceRupees: 1,
	}
	if gw != nil {
		deps.Gateway = gw
	}
	f.svc = NewAssessmentService(deps)
	return f
}

func login() LoginRequest {
	return LoginRequest{
		Name:    "Asha Rao",
		Company: "Acme",
		Email:   "asha@example.com",
		Phone:   "99999",
		Domain:  "BFSI",
		Tier:    "Tier 2",
	}
}

// toQuestions walks a fresh session through a waived payment.
func (f *fixture) toQuestions(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	v, err := f.svc.Start(ctx, login())
	require.NoError(t, err)
	_, err = f.svc.Pay(ctx, v.SessionID)
	require.NoError(t, err)
	_, err = f.svc.Continue(ctx, v.SessionID)
	require.NoError(t, err)
	return v.SessionID
}

func (f *fixture) answerAll(t *testing.T, id, choice string) {
	t.Helper()
	qv, err := f.svc.Questions(context.Background(), id)
	require.NoError(t, err)
	var in []AnswerInput
	for _, q := range qv.Questions {
		in = append(in, AnswerInput{QuestionID: q.ID, Choice: choice})
	}
	_, err = f.svc.Answer(context.Background(), id, in)
	require.NoError(t, err)
}

func TestFullFlowWithWaivedPayment(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	v, err := f.svc.Start(ctx, login())
	require.NoError(t, err)
	assert.Equal(t, session.StatePayment, v.State)

	pv, err := f.svc.Pay(ctx, v.SessionID)
	require.NoError(t, err)
	assert.True(t, pv.Waived)
	assert.False(t, pv.Paid)

	v, err = f.svc.Continue(ctx, v.SessionID)
	require.NoError(t, err)
	assert.Equal(t, session.StateQuestions, v.State)

	qv, err := f.svc.Questions(ctx, v.SessionID)
	require.NoError(t, err)
	require.Len(t, qv.Questions, 2)
	assert.Equal(t, "Do you run pilots?", qv.Questions[0].Text)
	assert.Equal(t, Progress{Answered: 0, Total: 2, Percent: 0}, qv.Progress)

	progress, err := f.svc.Answer(ctx, v.SessionID, []AnswerInput{
		{QuestionID: qv.Questions[0].ID, Choice: "Very"},
	})
	require.NoError(t, err)
	assert.Equal(t, Progress{Answered: 1, Total: 2, Percent: 50}, progress)

	progress, err = f.svc.Answer(ctx, v.SessionID, []AnswerInput{
		{QuestionID: qv.Questions[1].ID, Score: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, 100, progress.Percent)

	res, err := f.svc.Submit(ctx, v.SessionID)
	require.NoError(t, err)
	assert.Equal(t, model.ScoreResult{Average: 3.5, Maturity: model.Advanced}, res.Score)
	assert.Equal(t, "TAICC_AI_Readiness_Report_Asha_Rao.pdf", res.FileName)
	assert.Contains(t, res.Report, "Client: Asha Rao")
	assert.Len(t, res.MaturityLevels, 5)
	require.Len(t, res.Deliveries, 3)
	assert.Equal(t, delivery.StatusDelivered, res.Deliveries[0].Status)
	assert.Len(t, res.Warnings, 2)

	doc, err := f.svc.Report(ctx, v.SessionID)
	require.NoError(t, err)
	require.Len(t, f.mailer.docs, 1)
	assert.Equal(t, f.mailer.docs[0].Bytes, doc.Bytes)
	assert.Equal(t, []string{"asha@example.com"}, f.mailer.to)

	v, err = f.svc.View(ctx, v.SessionID)
	require.NoError(t, err)
	assert.Equal(t, session.StateResults, v.State)
	require.NotNil(t, v.Results)
	assert.Equal(t, 3.5, v.Results.Score.Average)

	_, err = f.svc.Submit(ctx, v.SessionID)
	assert.ErrorIs(t, err, session.ErrInvalidTransition)
}

func TestFailedDeliveriesKeepDownload(t *testing.T) {
	f := newFixture(t, nil)
	mailer := &failingMailer{}
	bank, err := questions.Parse([]byte(testBank))
	require.NoError(t, err)
	f.svc = NewAssessmentService(Dependencies{
		Bank:        bank,
		Store:       session.NewStore(16, time.Hour),
		Compiler:    report.NewCompiler(f.llm),
		Assembler:   document.NewAssembler(nil),
		Dispatcher:  delivery.NewDispatcher(mailer, failingSheet{}, nil),
		Poller:      payment.NewPoller(1, 0),
		PriceRupees: 1,
	})
	ctx := context.Background()
	id := f.toQuestions(t)
	f.answerAll(t, id, "Very")

	res, err := f.svc.Submit(ctx, id)
	require.NoError(t, err)
	require.Len(t, res.Deliveries, 3)
	assert.Equal(t, delivery.StatusFailed, res.Deliveries[0].Status)
	assert.Equal(t, delivery.StatusFailed, res.Deliveries[1].Status)
	assert.Equal(t, delivery.StatusSkipped, res.Deliveries[2].Status)
	require.Len(t, res.Warnings, 3)
	assert.Equal(t, "email failed: smtp unreachable", res.Warnings[0])
	assert.Equal(t, "spreadsheet failed: sheet quota exceeded", res.Warnings[1])

	doc, err := f.svc.Report(ctx, id)
	require.NoError(t, err)
	require.NotEmpty(t, doc.Bytes)
	require.Len(t, mailer.docs, 1)
	assert.Equal(t, mailer.docs[0].Bytes, doc.Bytes)
	assert.Equal(t, res.FileName, doc.FileName)

	v, err := f.svc.View(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, session.StateResults, v.State)
}

func TestChartsSingleQuestion(t *testing.T) {
	svc := newFixture(t, nil).svc.(*assessmentService)
	sess := &session.Session{ID: "s1", Tier: "Tier 1"}
	out := svc.charts(sess, model.ScoreResult{Average: 4, Maturity: model.Advanced}, []int{4})
	assert.NotEmpty(t, out.Bar)
	assert.NotEmpty(t, out.Pie)
	assert.NotEmpty(t, out.Line)
}

func TestPaymentRetryReusesOrder(t *testing.T) {
	gw := &stubGateway{statuses: [][]string{{"created"}, {"captured"}}}
	f := newFixture(t, gw)
	ctx := context.Background()

	v, err := f.svc.Start(ctx, login())
	require.NoError(t, err)

	pv, err := f.svc.Pay(ctx, v.SessionID)
	require.NoError(t, err)
	assert.False(t, pv.Paid)
	assert.Equal(t, "order_test", pv.OrderID)
	assert.EqualValues(t, 100, pv.Amount)

	_, err = f.svc.Continue(ctx, v.SessionID)
	assert.ErrorIs(t, err, session.ErrPaymentPending)

	pv, err = f.svc.Pay(ctx, v.SessionID)
	require.NoError(t, err)
	assert.True(t, pv.Paid)
	assert.Equal(t, 1, gw.orders)

	pv, err = f.svc.Pay(ctx, v.SessionID)
	require.NoError(t, err)
	assert.True(t, pv.Paid)
	assert.Equal(t, 2, gw.polls)

	_, err = f.svc.Continue(ctx, v.SessionID)
	require.NoError(t, err)
}

func TestPaymentOrderFailure(t *testing.T) {
	f := newFixture(t, &stubGateway{orderErr: errors.New("bad key")})
	v, err := f.svc.Start(context.Background(), login())
	require.NoError(t, err)

	_, err = f.svc.Pay(context.Background(), v.SessionID)
	assert.ErrorIs(t, err, ErrPaymentGateway)
}

func TestPaymentCancelledLeavesRetryableState(t *testing.T) {
	gw := &stubGateway{}
	f := newFixture(t, gw)
	v, err := f.svc.Start(context.Background(), login())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	pv, err := f.svc.Pay(ctx, v.SessionID)
	require.NoError(t, err)
	assert.False(t, pv.Paid)

	view, err := f.svc.View(context.Background(), v.SessionID)
	require.NoError(t, err)
	assert.Equal(t, session.StatePayment, view.State)
}

func TestStartRejectsUnknownSelection(t *testing.T) {
	f := newFixture(t, nil)
	req := login()
	req.Tier = "Tier 9"
	_, err := f.svc.Start(context.Background(), req)
	assert.ErrorIs(t, err, ErrUnknownSelection)
}

func TestOutOfOrderCalls(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	v, err := f.svc.Start(ctx, login())
	require.NoError(t, err)

	_, err = f.svc.Questions(ctx, v.SessionID)
	assert.ErrorIs(t, err, session.ErrInvalidTransition)
	_, err = f.svc.Submit(ctx, v.SessionID)
	assert.ErrorIs(t, err, session.ErrInvalidTransition)
	_, err = f.svc.Report(ctx, v.SessionID)
	assert.ErrorIs(t, err, session.ErrInvalidTransition)
	_, err = f.svc.Continue(ctx, v.SessionID)
	assert.ErrorIs(t, err, session.ErrPaymentPending)

	_, err = f.svc.View(ctx, "missing")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestAnswerBatchIsAtomic(t *testing.T) {
	f := newFixture(t, nil)
	id := f.toQuestions(t)
	qv, err := f.svc.Questions(context.Background(), id)
	require.NoError(t, err)

	cases := []struct {
		name string
		in   AnswerInput
		want error
	}{
		{"unknown question", AnswerInput{QuestionID: "Q9-nope", Choice: "Very"}, ErrUnknownQuestion},
		{"unknown choice", AnswerInput{QuestionID: qv.Questions[1].ID, Choice: "Always"}, ErrUnknownChoice},
		{"score out of range", AnswerInput{QuestionID: qv.Questions[1].ID, Score: 6}, session.ErrInvalidScore},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Answer(context.Background(), id, []AnswerInput{
				{QuestionID: qv.Questions[0].ID, Choice: "Fully"},
				tc.in,
			})
			assert.ErrorIs(t, err, tc.want)
		})
	}

	qv, err = f.svc.Questions(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 0, qv.Progress.Answered)
	assert.Empty(t, qv.Questions[0].Choice)
}

func TestSubmitNeedsEveryAnswer(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	id := f.toQuestions(t)

	_, err := f.svc.Submit(ctx, id)
	assert.ErrorIs(t, err, scoring.ErrNoAnswers)

	qv, err := f.svc.Questions(ctx, id)
	require.NoError(t, err)
	_, err = f.svc.Answer(ctx, id, []AnswerInput{{QuestionID: qv.Questions[0].ID, Choice: "Slightly"}})
	require.NoError(t, err)

	_, err = f.svc.Submit(ctx, id)
	assert.ErrorIs(t, err, ErrIncompleteAnswers)
	assert.Equal(t, 0, f.llm.calls)
}

func TestGenerationFailureKeepsQuestions(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	id := f.toQuestions(t)
	f.answerAll(t, id, "Moderately")

	f.llm.err = errors.New("quota exceeded")
	_, err := f.svc.Submit(ctx, id)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")

	v, err := f.svc.View(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, session.StateQuestions, v.State)
	assert.Empty(t, f.mailer.docs)

	f.llm.err = nil
	res, err := f.svc.Submit(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.Established, res.Score.Maturity)
	assert.Equal(t, 2, f.llm.calls)
}

func TestReady(t *testing.T) {
	f := newFixture(t, nil)
	assert.NoError(t, f.svc.Ready())

	bank, err := questions.Parse([]byte(testBank))
	require.NoError(t, err)
	svc := NewAssessmentService(Dependencies{Bank: bank, Compiler: report.NewCompiler(nil)})
	assert.ErrorIs(t, svc.Ready(), llm.ErrTextGenerationUnavailable)

	_, err = svc.StoredResults(context.Background(), 10)
	assert.ErrorIs(t, err, ErrResultsUnavailable)
}

func TestCatalog(t *testing.T) {
	c := newFixture(t, nil).svc.Catalog()
	require.Len(t, c.Domains, 2)
	assert.Equal(t, "BFSI", c.Domains[0].Name)
	assert.NotEmpty(t, c.Domains[0].Description)
	assert.Equal(t, []string{"Tier 1", "Tier 2"}, []string{c.Tiers[0].Name, c.Tiers[1].Name})
	assert.Len(t, c.Choices, 5)
	assert.EqualValues(t, 1, c.PriceRupees)
}

func TestFormatElapsed(t *testing.T) {
	assert.Equal(t, "0 minutes and 0 seconds", formatElapsed(-time.Second))
	assert.Equal(t, "2 minutes and 5 seconds", formatElapsed(125*time.Second+400*time.Millisecond))
}

func TestSummarizeResults(t *testing.T) {
	assert.Equal(t, 0, SummarizeResults(nil).Count)

	t0 := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	sum := SummarizeResults([]model.AssessmentResult{
		{Domain: "BFSI", Score: 3.5, Maturity: "Advanced", CompletedAt: t0.Add(time.Hour)},
		{Domain: "BFSI", Score: 2, Maturity: "Emerging", CompletedAt: t0},
		{Domain: "Pharma", Score: 4.25, Maturity: "AI Leader", CompletedAt: t0.Add(2 * time.Hour)},
	})
	assert.Equal(t, 3, sum.Count)
	assert.Equal(t, 3.25, sum.AverageScore)
	assert.Equal(t, map[string]int{"BFSI": 2, "Pharma": 1}, sum.ByDomain)
	assert.Equal(t, 1, sum.ByMaturity["Emerging"])
	assert.Equal(t, t0, *sum.FirstAt)
	assert.Equal(t, t0.Add(2*time.Hour), *sum.LatestAt)
}
