// Package session holds the per-user questionnaire state machine and the
// in-memory store of live sessions.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"taicc-readiness/internal/delivery"
	"taicc-readiness/internal/model"
	"taicc-readiness/internal/scoring"
)

var (
	ErrInvalidTransition = errors.New("invalid session transition")
	ErrPaymentPending    = errors.New("payment has not been confirmed")
	ErrInvalidScore      = errors.New("answer score must be between 1 and 5")
)

// Payment is the session's payment gate.
type Payment struct {
	Paid    bool   `json:"paid"`
	Waived  bool   `json:"waived"`
	OrderID string `json:"order_id,omitempty"`
	Amount  int64  `json:"amount,omitempty"`
}

// Cleared reports whether the questions may be opened.
func (p Payment) Cleared() bool {
	return p.Paid || p.Waived
}

// Results is filled in once when the session completes.
type Results struct {
	Score    model.ScoreResult
	Report   model.CompiledReport
	Document *model.ReportDocument
	Outcomes []delivery.Outcome
}

// Session is one user's walk through login, payment, questions and results.
// Callers hold Lock for the duration of a request; the transition methods
// assume it is held.
type Session struct {
	mu sync.Mutex

	ID        string
	State     State
	Profile   model.UserProfile
	Domain    string
	Tier      string
	Answers   *model.AnswerSet
	Payment   Payment
	StartedAt time.Time
	Results   *Results
}

func newSession(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		State:     StateLogin,
		Answers:   model.NewAnswerSet(),
		StartedAt: now,
	}
}

func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

func (s *Session) require(want State, op string) error {
	if s.State != want {
		return fmt.Errorf("%w: %s needs state %s, session is in %s", ErrInvalidTransition, op, want, s.State)
	}
	return nil
}

// Recover resets a session whose state is not recognised back to login and
// reports whether it did.
func (s *Session) Recover() bool {
	if s.State.Valid() {
		return false
	}
	s.reset()
	return true
}

func (s *Session) reset() {
	s.State = StateLogin
	s.Profile = model.UserProfile{}
	s.Domain, s.Tier = "", ""
	s.Answers = model.NewAnswerSet()
	s.Payment = Payment{}
	s.Results = nil
}

// Login captures the profile and selection: login → payment.
func (s *Session) Login(profile model.UserProfile, domain, tier string) error {
	if err := s.require(StateLogin, "login"); err != nil {
		return err
	}
	s.Profile = profile
	s.Domain = domain
	s.Tier = tier
	s.State = StatePayment
	return nil
}

// AttachOrder records the gateway order created for this session.
func (s *Session) AttachOrder(orderID string, amount int64) error {
	if err := s.require(StatePayment, "attach order"); err != nil {
		return err
	}
	s.Payment.OrderID = orderID
	s.Payment.Amount = amount
	return nil
}

// ConfirmPayment marks the payment as captured, or waived when no gateway
// is configured. The state does not change until BeginQuestions.
func (s *Session) ConfirmPayment(waived bool) error {
	if err := s.require(StatePayment, "confirm payment"); err != nil {
		return err
	}
	if waived {
		s.Payment.Waived = true
	} else {
		s.Payment.Paid = true
	}
	return nil
}

// BeginQuestions opens the questionnaire: payment → questions.
func (s *Session) BeginQuestions() error {
	if err := s.require(StatePayment, "begin questions"); err != nil {
		return err
	}
	if !s.Payment.Cleared() {
		return ErrPaymentPending
	}
	s.State = StateQuestions
	return nil
}

// RecordAnswer sets or replaces one answer.
func (s *Session) RecordAnswer(questionID string, score int) error {
	if err := s.require(StateQuestions, "record answer"); err != nil {
		return err
	}
	if !scoring.ValidScore(score) {
		return fmt.Errorf("%w: got %d", ErrInvalidScore, score)
	}
	s.Answers.Set(questionID, score)
	return nil
}

// Complete stores the results: questions → results. Results is terminal.
func (s *Session) Complete(res Results) error {
	if err := s.require(StateQuestions, "complete"); err != nil {
		return err
	}
	s.Results = &res
	s.State = StateResults
	return nil
}

// ResultRow is the record delivered for a completed assessment.
func (s *Session) ResultRow(at time.Time, score model.ScoreResult) model.ResultRow {
	return model.ResultRow{
		Timestamp: at,
		Profile:   s.Profile,
		Domain:    s.Domain,
		Tier:      s.Tier,
		Score:     score.Average,
		Maturity:  score.Maturity,
	}
}
