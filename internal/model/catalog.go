package model

// Choice is one option of the Likert scale.
type Choice struct {
	Label string `json:"label"`
	Score int    `json:"score"`
}

// Choices is the answer scale in presentation order.
var Choices = []Choice{
	{Label: "Not at all", Score: 1},
	{Label: "Slightly", Score: 2},
	{Label: "Moderately", Score: 3},
	{Label: "Very", Score: 4},
	{Label: "Fully", Score: 5},
}

// ChoiceScore maps a choice label onto its score.
func ChoiceScore(label string) (int, bool) {
	for _, c := range Choices {
		if c.Label == label {
			return c.Score, true
		}
	}
	return 0, false
}

// MaturityLevel describes one readiness band for display.
type MaturityLevel struct {
	ScoreRange  string        `json:"score_range"`
	Level       MaturityLabel `json:"level"`
	Description string        `json:"description"`
}

var MaturityLevels = []MaturityLevel{
	{ScoreRange: "0.0 - 1.0", Level: Beginner, Description: "Just starting AI journey, minimal awareness."},
	{ScoreRange: "1.1 - 2.0", Level: Emerging, Description: "Early experiments, limited AI integration."},
	{ScoreRange: "2.1 - 3.0", Level: Established, Description: "Defined AI strategy, some successful projects."},
	{ScoreRange: "3.1 - 4.0", Level: Advanced, Description: "Mature AI adoption, integrated into processes."},
	{ScoreRange: "4.1 - 5.0", Level: AILeader, Description: "Industry-leading AI innovation and scale."},
}

var DomainExplanations = map[string]string{
	"BFSI":                           "Banking, Financial Services, and Insurance including NBFCs, Co-op Banks, Stock Broking, and more.",
	"Manufacturing":                  "Industries such as Automobiles, Textiles, and Machinery.",
	"Healthcare":                     "Hospitals, diagnostics, health-tech platforms, and telemedicine.",
	"Hospitality":                    "Hotels, resorts, restaurants, and travel accommodations.",
	"Pharma":                         "Pharmaceutical research, biotech, and medicine production.",
	"Travel and Tourism":             "Tour operators, online travel platforms, airlines, etc.",
	"Construction":                   "Infrastructure, civil engineering, and public works.",
	"Real Estate":                    "Residential and commercial property development and sales.",
	"Education & EdTech":             "Schools, universities, online learning platforms.",
	"Retail & E-commerce":            "Retail chains, marketplaces, and D2C brands.",
	"Logistics & Supply Chain":       "Warehousing, distribution, and delivery services.",
	"Agritech":                       "Smart farming, agri-inputs, and precision agriculture.",
	"IT & ITES":                      "Software companies, IT services, and BPOs.",
	"Legal & Compliance":             "Law firms, compliance tools, and contract automation.",
	"Energy & Utilities":             "Power generation, oil & gas, renewables.",
	"Telecommunications":             "Network providers, internet services, and 5G tech.",
	"Media & Entertainment":          "Broadcasting, streaming platforms, and gaming.",
	"PropTech":                       "Real estate technology platforms.",
	"FMCG & Consumer Goods":          "Packaged goods and fast-moving consumer brands.",
	"Public Sector":                  "Government departments, PSUs, and public welfare.",
	"Automotive":                     "OEMs, auto ancillaries, and connected vehicles.",
	"Environmental & Sustainability": "Climate tech, carbon tracking, and ESG.",
	"Smart Cities":                   "Urban tech, IoT infrastructure, and city planning.",
}

var TierExplanations = map[string]string{
	"Tier 1": "Enterprise Leaders – Large organizations with significant AI investments and robust strategies.",
	"Tier 2": "Strategic Innovators – Established companies actively experimenting and implementing AI.",
	"Tier 3": "Growth Enablers – Mid-sized firms beginning structured AI adoption efforts.",
	"Tier 4": "Agile Starters – Startups or small businesses with a high willingness to explore AI.",
	"Tier 5": "Traditional Operators – Individuals or firms with minimal or no current AI engagement.",
}
