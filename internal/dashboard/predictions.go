package dashboard

// Prediction is one forecast entry on the dashboard outlook panel.
type Prediction struct {
	Category   string `json:"category"`
	Likelihood int    `json:"likelihood"`
	TimeFrame  string `json:"timeFrame"`
	Details    string `json:"details"`
}

// Predictor supplies the outlook entries. The dashboard treats predictions
// as an external concern so a model-backed implementation can replace the
// static one without touching the aggregation.
type Predictor interface {
	Predictions() []Prediction
}

// StaticPredictor serves the hand-authored outlook. It is not derived from
// the corpus.
type StaticPredictor struct{}

// Predictions returns the fixed forecast entries.
func (StaticPredictor) Predictions() []Prediction {
	return []Prediction{
		{
			Category:   "Diplomatic Relations",
			Likelihood: 70,
			TimeFrame:  "3-6 months",
			Details:    "Continued high-volume coverage of bilateral talks, with tone tracking border and trade developments.",
		},
		{
			Category:   "Trade & Economy",
			Likelihood: 60,
			TimeFrame:  "6-12 months",
			Details:    "Economic coverage expected to grow around transit, energy and garment-sector agreements.",
		},
		{
			Category:   "Border Security",
			Likelihood: 55,
			TimeFrame:  "1-3 months",
			Details:    "Periodic spikes in security reporting after border incidents, typically short-lived.",
		},
		{
			Category:   "Water Sharing",
			Likelihood: 45,
			TimeFrame:  "6-12 months",
			Details:    "Teesta and Ganges coverage resurfaces seasonally with monsoon and dry-season flows.",
		},
	}
}
