package model

import (
	"fmt"
	"strings"
	"time"
)

// UserProfile is captured once at login and never changes afterwards.
type UserProfile struct {
	Name    string `json:"name"`
	Company string `json:"company"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
}

// Fields returns the profile as ordered label/value pairs, the order used on
// the report and in the spreadsheet row.
func (p UserProfile) Fields() [][2]string {
	return [][2]string{
		{"Name", p.Name},
		{"Company", p.Company},
		{"Email", p.Email},
		{"Phone", p.Phone},
	}
}

// Question is one Likert item of the selected domain and tier.
type Question struct {
	ID    string `json:"id"`
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// QuestionID builds the identifier answers are keyed by.
func QuestionID(index int, text string) string {
	return fmt.Sprintf("Q%d-%s", index, text)
}

// Answer pairs a question with its 1..5 score.
type Answer struct {
	QuestionID string `json:"question_id"`
	Score      int    `json:"score"`
}

// AnswerSet keeps answers in first-insertion order. Re-answering a question
// replaces the score in place.
type AnswerSet struct {
	order  []string
	scores map[string]int
}

func NewAnswerSet() *AnswerSet {
	return &AnswerSet{scores: make(map[string]int)}
}

func (s *AnswerSet) Set(questionID string, score int) {
	if _, ok := s.scores[questionID]; !ok {
		s.order = append(s.order, questionID)
	}
	s.scores[questionID] = score
}

func (s *AnswerSet) Get(questionID string) (int, bool) {
	v, ok := s.scores[questionID]
	return v, ok
}

func (s *AnswerSet) Len() int {
	return len(s.order)
}

// Answers returns a copy in insertion order.
func (s *AnswerSet) Answers() []Answer {
	out := make([]Answer, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, Answer{QuestionID: id, Score: s.scores[id]})
	}
	return out
}

// Values returns the scores in insertion order.
func (s *AnswerSet) Values() []int {
	out := make([]int, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.scores[id])
	}
	return out
}

type MaturityLabel string

const (
	Beginner    MaturityLabel = "Beginner"
	Emerging    MaturityLabel = "Emerging"
	Established MaturityLabel = "Established"
	Advanced    MaturityLabel = "Advanced"
	AILeader    MaturityLabel = "AI Leader"
	Undefined   MaturityLabel = "Undefined"
)

// ScoreResult is computed once per session.
type ScoreResult struct {
	Average  float64       `json:"average"`
	Maturity MaturityLabel `json:"maturity"`
}

// CompiledReport is the generated report text and its two layout blocks.
type CompiledReport struct {
	FullText         string `json:"full_text"`
	ExecutiveSummary string `json:"executive_summary"`
	Detailed         string `json:"detailed"`
}

// ReportDocument is the rendered PDF. Bytes back both the download and the
// email attachment.
type ReportDocument struct {
	FileName    string    `json:"file_name"`
	Bytes       []byte    `json:"-"`
	GeneratedAt time.Time `json:"generated_at"`
}

func (d *ReportDocument) Size() int {
	if d == nil {
		return 0
	}
	return len(d.Bytes)
}

// ReportFileName derives the deterministic attachment/download name.
func ReportFileName(name string) string {
	if name == "" {
		name = "User"
	}
	return "TAICC_AI_Readiness_Report_" + strings.ReplaceAll(name, " ", "_") + ".pdf"
}

// ResultRow is the record appended to the spreadsheet and the results ledger.
type ResultRow struct {
	Timestamp time.Time
	Profile   UserProfile
	Domain    string
	Tier      string
	Score     float64
	Maturity  MaturityLabel
}

const RowTimeLayout = "2006-01-02 15:04:05"

// Values returns the spreadsheet cell values in column order.
func (r ResultRow) Values() []interface{} {
	return []interface{}{
		r.Timestamp.Format(RowTimeLayout),
		r.Profile.Name,
		r.Profile.Company,
		r.Profile.Email,
		r.Profile.Phone,
		r.Domain,
		r.Tier,
		r.Score,
		string(r.Maturity),
	}
}

// AssessmentResult is the persisted form of a ResultRow.
type AssessmentResult struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	SessionID   string    `json:"session_id" gorm:"not null;uniqueIndex"`
	Name        string    `json:"name"`
	Company     string    `json:"company"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Domain      string    `json:"domain"`
	Tier        string    `json:"tier"`
	Score       float64   `json:"score"`
	Maturity    string    `json:"maturity"`
	CompletedAt time.Time `json:"completed_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewAssessmentResult maps a row onto the ledger model.
func NewAssessmentResult(sessionID string, row ResultRow) *AssessmentResult {
	return &AssessmentResult{
		SessionID:   sessionID,
		Name:        row.Profile.Name,
		Company:     row.Profile.Company,
		Email:       row.Profile.Email,
		Phone:       row.Profile.Phone,
		Domain:      row.Domain,
		Tier:        row.Tier,
		Score:       row.Score,
		Maturity:    string(row.Maturity),
		CompletedAt: row.Timestamp,
	}
}
