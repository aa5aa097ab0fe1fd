package service

import (
	"taicc-readiness/internal/delivery"
	"taicc-readiness/internal/model"
	"taicc-readiness/internal/session"
)

// LoginRequest is the login form.
type LoginRequest struct {
	Name    string `json:"name"`
	Company string `json:"company"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Domain  string `json:"domain" binding:"required"`
	Tier    string `json:"tier" binding:"required"`
}

// AnswerInput is one answer; Choice is a scale label, Score is used when
// Choice is empty.
type AnswerInput struct {
	QuestionID string `json:"question_id" binding:"required"`
	Choice     string `json:"choice"`
	Score      int    `json:"score"`
}

type CatalogEntry struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type Catalog struct {
	Domains        []CatalogEntry        `json:"domains"`
	Tiers          []CatalogEntry        `json:"tiers"`
	Choices        []model.Choice        `json:"choices"`
	MaturityLevels []model.MaturityLevel `json:"maturity_levels"`
	PriceRupees    int64                 `json:"price_rupees"`
}

type Progress struct {
	Answered int `json:"answered"`
	Total    int `json:"total"`
	Percent  int `json:"percent"`
}

func newProgress(answered, total int) Progress {
	p := Progress{Answered: answered, Total: total}
	if total > 0 {
		p.Percent = answered * 100 / total
	}
	return p
}

type SessionView struct {
	SessionID string            `json:"session_id"`
	State     session.State     `json:"state"`
	Profile   model.UserProfile `json:"profile"`
	Domain    string            `json:"domain,omitempty"`
	Tier      string            `json:"tier,omitempty"`
	Payment   session.Payment   `json:"payment"`
	Recovered bool              `json:"recovered,omitempty"`
	Results   *ResultsView      `json:"results,omitempty"`
}

type PaymentView struct {
	SessionID string        `json:"session_id"`
	State     session.State `json:"state"`
	Paid      bool          `json:"paid"`
	Waived    bool          `json:"waived"`
	OrderID   string        `json:"order_id,omitempty"`
	Amount    int64         `json:"amount,omitempty"`
	Currency  string        `json:"currency,omitempty"`
	KeyID     string        `json:"key_id,omitempty"`
	Attempts  int           `json:"attempts"`
	Message   string        `json:"message"`
}

type QuestionView struct {
	model.Question
	Choice string `json:"choice,omitempty"`
}

type QuestionsView struct {
	Domain    string         `json:"domain"`
	Tier      string         `json:"tier"`
	Questions []QuestionView `json:"questions"`
	Choices   []model.Choice `json:"choices"`
	Progress  Progress       `json:"progress"`
}

type ResultsView struct {
	SessionID      string                `json:"session_id"`
	Score          model.ScoreResult     `json:"score"`
	Report         string                `json:"report"`
	MaturityLevels []model.MaturityLevel `json:"maturity_levels"`
	FileName       string                `json:"file_name"`
	DownloadPath   string                `json:"download_path"`
	Deliveries     []delivery.Outcome    `json:"deliveries"`
	Warnings       []string              `json:"warnings,omitempty"`
	TimeTaken      string                `json:"time_taken"`
}
